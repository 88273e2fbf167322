package logging

import (
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *limiterAdapter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	return l.limiter.Allow()
}

// rateLimitedCore drops entries once the shared limiter runs out of tokens.
type rateLimitedCore struct {
	zapcore.Core
	limiter rateLimiter
}

func newRateLimitedCore(core zapcore.Core, limiter rateLimiter) zapcore.Core {
	if limiter == nil {
		return core
	}
	return &rateLimitedCore{Core: core, limiter: limiter}
}

func (c *rateLimitedCore) With(fields []zapcore.Field) zapcore.Core {
	return &rateLimitedCore{Core: c.Core.With(fields), limiter: c.limiter}
}

func (c *rateLimitedCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) || !c.limiter.Allow() {
		return checked
	}
	return checked.AddCore(entry, c)
}
