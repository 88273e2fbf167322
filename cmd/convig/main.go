package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/convig/internal/application"
	"github.com/eugenenazirov/convig/internal/config"
	"github.com/eugenenazirov/convig/internal/logging"
)

func main() {
	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Fatal("convig failed", zap.Error(err))
	}
}

func run(args []string, stdout io.Writer, logger *zap.Logger) error {
	kingpinApp := kingpin.New("convig", "Resolve configuration values across cascading sources with typed defaults")
	defaults := kingpinApp.Flag("default", "Declare key=value; the value's shape (19, 1.5, true, [a, b], /re/i) sets the key's type").Short('d').Strings()
	sets := kingpinApp.Flag("set", "Override key=value; the value is coerced like an environment string").Short('s').Strings()

	var formatSet, splitSet, envSet, warnSet, debugSet bool
	format := kingpinApp.Flag("format", "Output format").IsSetByUser(&formatSet).Enum(config.FormatYAML, config.FormatJSON)
	split := kingpinApp.Flag("split", "Separator used to split strings into arrays").IsSetByUser(&splitSet).String()
	useEnv := kingpinApp.Flag("env", "Consult the process environment (disable with --no-env)").IsSetByUser(&envSet).Bool()
	warn := kingpinApp.Flag("warn", "Read every key so all default value warnings are emitted").IsSetByUser(&warnSet).Bool()
	debug := kingpinApp.Flag("debug", "Emit default value diagnostics to stderr").IsSetByUser(&debugSet).Bool()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Diagnostic lines per second (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for diagnostic lines").Default("-1").Int()

	if _, err := kingpinApp.Parse(args); err != nil {
		return fmt.Errorf("parse arguments: %w", err)
	}

	overrides := &config.CLIOverrides{}

	if formatSet {
		overrides.Format = format
	}

	if splitSet {
		overrides.Splitter = split
	}

	if envSet {
		overrides.UseEnv = useEnv
	}

	if warnSet {
		overrides.WarnAll = warn
	}

	if debugSet {
		overrides.Diagnostics = debug
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	app, err := application.New(cfg, application.Declarations{
		Defaults: *defaults,
		Sets:     *sets,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to flush diagnostics", zap.Error(err))
		}
	}()

	return app.Run(stdout)
}
