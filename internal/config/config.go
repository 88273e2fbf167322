package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/convig/internal/cascade"
	"github.com/eugenenazirov/convig/internal/logging"
)

// EnvPrefix prefixes the environment variables that configure convig itself.
const EnvPrefix = "CONVIG_"

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

const (
	defaultFormat         = FormatYAML
	defaultSplitter       = ","
	defaultRateLimitRPS   = 0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > Defaults
type Config struct {
	Format         string
	Splitter       string
	UseEnv         bool
	WarnAll        bool
	Diagnostics    bool
	RateLimitRPS   float64
	RateLimitBurst int
}

// CLIOverrides holds command-line flag overrides. Nil fields were not set.
type CLIOverrides struct {
	Format         *string
	Splitter       *string
	UseEnv         *bool
	WarnAll        *bool
	Diagnostics    *bool
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load resolves configuration with precedence:
// CLI flags > Environment variables (CONVIG_*) > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	conf, err := cascade.Build([]cascade.Source{
		overrides.source(),
		cascade.OSEnv().Prefixed(EnvPrefix),
		defaults(),
	}, cascade.WithLogger(zap.NewNop()))
	if err != nil {
		return Config{}, fmt.Errorf("build config chain: %w", err)
	}

	cfg, err := read(conf)
	if err != nil {
		return Config{}, err
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaults declares every setting; each default's type drives how flag and
// environment values are coerced.
func defaults() *cascade.Defaults {
	return cascade.NewDefaults(
		cascade.Field("format", defaultFormat),
		cascade.Field("split", defaultSplitter),
		cascade.Field("use_env", true),
		cascade.Field("warn", false),
		cascade.Field("debug", false),
		cascade.Field("diagnostics", cascade.Func(func(c *cascade.Chain) (any, error) {
			debug, err := c.Bool("debug")
			if err != nil {
				return nil, err
			}
			return debug || logging.Enabled(os.Getenv), nil
		})),
		cascade.Field("rate_limit_rps", defaultRateLimitRPS),
		cascade.Field("rate_limit_burst", defaultRateLimitBurst),
	)
}

func (o *CLIOverrides) source() cascade.Map {
	m := cascade.Map{}
	if o == nil {
		return m
	}
	if o.Format != nil && *o.Format != "" {
		m["format"] = *o.Format
	}
	if o.Splitter != nil {
		m["split"] = *o.Splitter
	}
	if o.UseEnv != nil {
		m["use_env"] = *o.UseEnv
	}
	if o.WarnAll != nil {
		m["warn"] = *o.WarnAll
	}
	if o.Diagnostics != nil {
		m["diagnostics"] = *o.Diagnostics
	}
	if o.RateLimitRPS != nil && *o.RateLimitRPS >= 0 {
		m["rate_limit_rps"] = *o.RateLimitRPS
	}
	if o.RateLimitBurst != nil && *o.RateLimitBurst >= 0 {
		m["rate_limit_burst"] = *o.RateLimitBurst
	}
	return m
}

func read(conf *cascade.Chain) (Config, error) {
	var (
		cfg Config
		err error
	)

	if cfg.Format, err = conf.Text("format"); err != nil {
		return Config{}, fmt.Errorf("read format: %w", err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))

	if cfg.Splitter, err = conf.Text("split"); err != nil {
		return Config{}, fmt.Errorf("read split: %w", err)
	}
	if cfg.UseEnv, err = conf.Bool("use_env"); err != nil {
		return Config{}, fmt.Errorf("read use_env: %w", err)
	}
	if cfg.WarnAll, err = conf.Bool("warn"); err != nil {
		return Config{}, fmt.Errorf("read warn: %w", err)
	}

	diagnostics, err := conf.Get("diagnostics")
	if err != nil {
		return Config{}, fmt.Errorf("read diagnostics: %w", err)
	}
	// computed default, so flag and environment values arrive uncoerced
	cfg.Diagnostics = cascade.Truthy(diagnostics)

	if cfg.RateLimitRPS, err = conf.Float("rate_limit_rps"); err != nil {
		return Config{}, fmt.Errorf("read rate_limit_rps: %w", err)
	}
	if cfg.RateLimitBurst, err = conf.Int("rate_limit_burst"); err != nil {
		return Config{}, fmt.Errorf("read rate_limit_burst: %w", err)
	}

	return cfg, nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.Format != FormatYAML && cfg.Format != FormatJSON {
		return fmt.Errorf("format must be %q or %q, got %q", FormatYAML, FormatJSON, cfg.Format)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate_limit_burst must be >= 0")
	}
	return nil
}
