package application

import (
	"errors"
	"fmt"
	"io"
	"syscall"

	"go.uber.org/zap"

	"github.com/eugenenazirov/convig/internal/cascade"
	"github.com/eugenenazirov/convig/internal/config"
	"github.com/eugenenazirov/convig/internal/literal"
	"github.com/eugenenazirov/convig/internal/logging"
	"github.com/eugenenazirov/convig/internal/storage"
)

// ErrNoDefaults is returned when no default is declared.
var ErrNoDefaults = errors.New("at least one default must be declared")

// Declarations are the key=value arguments given on the command line.
type Declarations struct {
	Defaults []string
	Sets     []string
}

// App encapsulates the resolved chain and its dependencies.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	diagnostics *zap.Logger
	overrides   storage.Storage
	env         *cascade.Environment
	chain       *cascade.Chain
}

// Option configures New.
type Option func(*App)

// WithEnvironment replaces the process environment (primarily for tests).
func WithEnvironment(env *cascade.Environment) Option {
	return func(a *App) {
		a.env = env
	}
}

// WithOverrides replaces the override store. The chain reads it on every
// lookup, so values set after New are visible to later runs.
func WithOverrides(store storage.Storage) Option {
	return func(a *App) {
		if store != nil {
			a.overrides = store
		}
	}
}

// WithDiagnostics overrides the diagnostics logger built from configuration.
func WithDiagnostics(logger *zap.Logger) Option {
	return func(a *App) {
		a.diagnostics = logger
	}
}

// New initializes the application from the provided configuration and
// declarations.
func New(cfg config.Config, decl Declarations, logger *zap.Logger, opts ...Option) (*App, error) {
	app := &App{
		cfg:       cfg,
		logger:    logger,
		overrides: storage.NewMemoryStorage(nil),
		env:       cascade.OSEnv(),
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.diagnostics == nil {
		diagnostics, err := logging.NewDiagnostics(cfg.Diagnostics,
			logging.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize diagnostics: %w", err)
		}
		app.diagnostics = diagnostics
	}

	defaults, err := parseDefaults(decl.Defaults)
	if err != nil {
		return nil, err
	}

	for _, raw := range decl.Sets {
		set, err := literal.ParseAssignment(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse override: %w", err)
		}
		if err := app.overrides.Set(set.Key, set.Value); err != nil {
			return nil, fmt.Errorf("failed to store override %q: %w", set.Key, err)
		}
	}

	chainOpts := []cascade.Option{
		cascade.WithLogger(app.diagnostics),
		cascade.WithSplitter(cfg.Splitter),
	}
	if app.usesEnv() {
		chainOpts = append(chainOpts, cascade.WithLabel("env"))
	}

	chain, err := cascade.Build(app.sources(defaults), chainOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build chain: %w", err)
	}
	app.chain = chain

	return app, nil
}

func parseDefaults(raw []string) (*cascade.Defaults, error) {
	if len(raw) == 0 {
		return nil, ErrNoDefaults
	}

	defaults := cascade.NewDefaults()
	for _, arg := range raw {
		decl, err := literal.ParseAssignment(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse default: %w", err)
		}
		value, err := literal.Parse(decl.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse default %q: %w", decl.Key, err)
		}
		defaults.Set(decl.Key, value)
	}
	return defaults, nil
}

// sources orders the chain: overrides > environment > defaults.
func (a *App) sources(defaults *cascade.Defaults) []cascade.Source {
	sources := []cascade.Source{a.overrides}
	if a.usesEnv() {
		sources = append(sources, a.env)
	}
	return append(sources, defaults)
}

func (a *App) usesEnv() bool {
	return a.cfg.UseEnv && a.env != nil
}

// Run resolves every declared key and writes the result to w.
func (a *App) Run(w io.Writer) error {
	if a.cfg.WarnAll {
		if _, err := a.chain.WarnAll(); err != nil {
			return fmt.Errorf("warn: %w", err)
		}
	}

	entries, err := a.chain.All()
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	a.logger.Debug("resolved configuration", zap.Int("keys", len(entries)))
	return Render(w, entries, a.cfg.Format)
}

// Chain returns the resolved chain.
func (a *App) Chain() *cascade.Chain {
	return a.chain
}

// Close flushes the diagnostics logger.
func (a *App) Close() error {
	if err := a.diagnostics.Sync(); err != nil && !isIgnorableSyncError(err) {
		return err
	}
	return nil
}

// isIgnorableSyncError reports errors returned when syncing terminals or
// pipes, which do not support fsync.
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
