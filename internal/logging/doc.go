// Package logging builds the zap loggers used by convig: a JSON production
// logger for the command itself and an environment-gated, optionally rate
// limited diagnostics logger that receives default value warnings.
package logging
