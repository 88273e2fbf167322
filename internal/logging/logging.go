package logging

import (
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Namespace is the DEBUG namespace that enables diagnostics.
const Namespace = "convig"

// New creates a production-ready structured logger configured for JSON output.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Option configures NewDiagnostics.
type Option func(*diagnosticsConfig)

type diagnosticsConfig struct {
	outputPaths []string
	rps         float64
	burst       int
	limiter     rateLimiter
}

// WithOutputPaths overrides the diagnostic sinks (stderr by default).
func WithOutputPaths(paths ...string) Option {
	return func(cfg *diagnosticsConfig) {
		cfg.outputPaths = paths
	}
}

// WithRateLimit caps diagnostic lines to rps per second with the given burst.
// A non-positive rps disables the cap.
func WithRateLimit(rps float64, burst int) Option {
	return func(cfg *diagnosticsConfig) {
		cfg.rps = rps
		cfg.burst = burst
	}
}

// WithRateLimiter overrides the diagnostic rate limiter (primarily for tests).
func WithRateLimiter(limiter rateLimiter) Option {
	return func(cfg *diagnosticsConfig) {
		cfg.limiter = limiter
	}
}

// NewDiagnostics returns the logger that receives default value warnings.
// When disabled it returns a no-op logger.
func NewDiagnostics(enabled bool, opts ...Option) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}

	dc := diagnosticsConfig{outputPaths: []string{"stderr"}}
	for _, opt := range opts {
		opt(&dc)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "json"
	cfg.OutputPaths = dc.outputPaths
	cfg.Sampling = nil
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	limiter := dc.limiter
	if limiter == nil && dc.rps > 0 {
		limiter = newTokenBucketLimiter(dc.rps, dc.burst)
	}

	var buildOpts []zap.Option
	if limiter != nil {
		buildOpts = append(buildOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return newRateLimitedCore(core, limiter)
		}))
	}

	logger, err := cfg.Build(buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("build diagnostics logger: %w", err)
	}
	return logger.Named(Namespace), nil
}

// Enabled reports whether diagnostics are switched on by the environment:
// CONVIG_ENV or APP_ENV set to production, or DEBUG naming the convig
// namespace. A "-convig" entry in DEBUG wins over any match.
func Enabled(getenv func(string) string) bool {
	enabled := false
	for _, pattern := range strings.FieldsFunc(getenv("DEBUG"), func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		if excluded, ok := strings.CutPrefix(pattern, "-"); ok {
			if matchNamespace(excluded) {
				return false
			}
			continue
		}
		if matchNamespace(pattern) {
			enabled = true
		}
	}
	if enabled {
		return true
	}

	for _, key := range []string{"CONVIG_ENV", "APP_ENV"} {
		if strings.EqualFold(strings.TrimSpace(getenv(key)), "production") {
			return true
		}
	}
	return false
}

func matchNamespace(pattern string) bool {
	ok, err := path.Match(pattern, Namespace)
	return err == nil && ok
}
