package cascade

import (
	"os"
	"sort"
	"strings"
)

// Environment is a source backed by environment variables. The OS-backed
// form is a live view: every lookup reads the current process environment.
type Environment struct {
	prefix  string
	lookup  func(string) (string, bool)
	environ func() []string
}

// OSEnv returns a live view of the process environment.
func OSEnv() *Environment {
	return &Environment{lookup: os.LookupEnv, environ: os.Environ}
}

// EnvironmentOf returns a fixed environment holding a copy of vars.
func EnvironmentOf(vars map[string]string) *Environment {
	snapshot := make(map[string]string, len(vars))
	for k, v := range vars {
		snapshot[k] = v
	}
	return &Environment{
		lookup: func(key string) (string, bool) {
			v, ok := snapshot[key]
			return v, ok
		},
		environ: func() []string {
			out := make([]string, 0, len(snapshot))
			for k, v := range snapshot {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
}

// Prefixed returns a view where key "rate_limit" reads variable
// prefix+"RATE_LIMIT". Only variables carrying the prefix are listed by Keys.
func (e *Environment) Prefixed(prefix string) *Environment {
	return &Environment{
		prefix:  e.prefix + prefix,
		lookup:  e.lookup,
		environ: e.environ,
	}
}

// Lookup implements Source.
func (e *Environment) Lookup(key string) (any, bool) {
	name := key
	if e.prefix != "" {
		name = e.prefix + strings.ToUpper(key)
	}
	v, ok := e.lookup(name)
	if !ok {
		return nil, false
	}
	return v, true
}

// Keys implements Declarer. Keys are sorted; under a prefix they are
// lower-cased with the prefix removed.
func (e *Environment) Keys() []string {
	vars := e.environ()
	keys := make([]string, 0, len(vars))
	for _, kv := range vars {
		name, _, _ := strings.Cut(kv, "=")
		if name == "" {
			continue
		}
		if e.prefix != "" {
			rest, ok := strings.CutPrefix(name, e.prefix)
			if !ok || rest == "" {
				continue
			}
			name = strings.ToLower(rest)
		}
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}
