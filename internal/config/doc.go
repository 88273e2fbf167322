// Package config loads convig's own runtime configuration from CLI flags,
// CONVIG_* environment variables and defaults, with precedence: CLI flags >
// Environment variables > Defaults. The settings are resolved through a
// cascade chain, so environment strings are coerced to each default's type.
package config
