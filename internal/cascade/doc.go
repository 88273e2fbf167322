// Package cascade resolves configuration values by walking an ordered list of
// sources and falling back to a last resort mapping. The last resort declares
// which keys exist and, through the shape of each default value, the type every
// value found for that key is coerced to on read. Lookups are lazy: nothing is
// cached, so function-valued entries and live sources such as the process
// environment are consulted again on every access.
package cascade
