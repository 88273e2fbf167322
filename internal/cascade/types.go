package cascade

import "sort"

// Source is a mapping consulted during lookup. A key that is absent, or whose
// value is nil, is treated as not set.
type Source interface {
	Lookup(key string) (any, bool)
}

// Declarer is a Source that can act as a last resort: it declares the keys a
// chain exposes, in the order they are exposed.
type Declarer interface {
	Source
	Keys() []string
}

// Func is a computed value. It is invoked with the chain being read on every
// access, so it may read sibling keys through the chain.
type Func func(c *Chain) (any, error)

// Map is a plain, unordered source. Used as a last resort its keys are
// exposed in sorted order.
type Map map[string]any

// Lookup implements Source.
func (m Map) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys implements Declarer.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pair is a single key/value declaration for Defaults.
type Pair struct {
	Key   string
	Value any
}

// Field declares key with its default value.
func Field(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// Defaults is an ordered last resort mapping. Keys keep the position of their
// first declaration; a repeated key replaces the value only.
type Defaults struct {
	keys   []string
	values map[string]any
}

// NewDefaults builds an ordered last resort from pairs.
func NewDefaults(pairs ...Pair) *Defaults {
	d := &Defaults{values: make(map[string]any, len(pairs))}
	for _, p := range pairs {
		d.Set(p.Key, p.Value)
	}
	return d
}

// Set declares key, appending it to the key order when new.
func (d *Defaults) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Lookup implements Source.
func (d *Defaults) Lookup(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys implements Declarer.
func (d *Defaults) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Entry is one resolved key of a chain.
type Entry struct {
	Key   string
	Kind  Kind
	Value any
}
