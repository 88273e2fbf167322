package cascade

import (
	"fmt"
	"math"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

const defaultSplitter = ","

// Chain is a read-only view over an ordered list of sources. It exposes
// exactly the keys declared by its last resort.
type Chain struct {
	sources    []Source
	lastResort Declarer
	keys       []string
	resolvers  map[string]func() (any, error)
	kinds      map[string]Kind
	logger     *zap.Logger
	label      string

	mu       sync.Mutex
	splitter string
	warned   map[string]struct{}
}

// Option configures Build.
type Option func(*Chain)

// WithLogger sets the logger receiving default value warnings. Chains log to
// zap.L() otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLabel sets the source name reported in default value warnings. Chains
// led by an Environment report "env", others "chain".
func WithLabel(label string) Option {
	return func(c *Chain) {
		if label != "" {
			c.label = label
		}
	}
}

// WithSplitter sets the initial separator for array values.
func WithSplitter(splitter string) Option {
	return func(c *Chain) {
		c.splitter = splitter
	}
}

// New builds a chain from sources, highest priority first. The last source is
// the last resort.
func New(sources ...Source) (*Chain, error) {
	return Build(sources)
}

// Env builds a chain whose highest priority source is the process environment.
func Env(sources ...Source) (*Chain, error) {
	return EnvFrom(OSEnv(), sources...)
}

// EnvFrom builds a chain with env prepended to sources. A nil env is the
// process environment.
func EnvFrom(env *Environment, sources ...Source) (*Chain, error) {
	if env == nil {
		env = OSEnv()
	}
	all := make([]Source, 0, len(sources)+1)
	all = append(all, env)
	all = append(all, sources...)
	return Build(all)
}

// Build builds a chain from sources, highest priority first, applying opts.
// The last source is the last resort; when it is itself a chain, that chain's
// own last resort is used instead. Chains among the other sources are
// replaced by their flattened sources followed by their last resort, which
// only answers for the keys that chain declares.
func Build(sources []Source, opts ...Option) (*Chain, error) {
	if len(sources) == 0 {
		return nil, ErrNoLastResort
	}

	lastResort, err := resolveLastResort(sources[len(sources)-1])
	if err != nil {
		return nil, err
	}

	c := &Chain{
		sources:    flatten(sources[:len(sources)-1]),
		lastResort: lastResort,
		logger:     zap.L(),
		label:      "chain",
		splitter:   defaultSplitter,
		warned:     make(map[string]struct{}),
	}
	if len(c.sources) > 0 {
		if _, ok := c.sources[0].(*Environment); ok {
			c.label = "env"
		}
	}
	for _, opt := range opts {
		opt(c)
	}

	keys := lastResort.Keys()
	c.keys = make([]string, 0, len(keys))
	c.resolvers = make(map[string]func() (any, error), len(keys))
	c.kinds = make(map[string]Kind, len(keys))
	for _, key := range keys {
		if _, dup := c.resolvers[key]; dup {
			continue
		}
		key := key
		def, _ := lastResort.Lookup(key)
		kind := inferKind(def)
		c.keys = append(c.keys, key)
		c.kinds[key] = kind
		c.resolvers[key] = func() (any, error) {
			return c.resolve(key, kind)
		}
	}

	return c, nil
}

func resolveLastResort(src Source) (Declarer, error) {
	switch lr := src.(type) {
	case *Chain:
		if lr == nil {
			return nil, ErrNoLastResort
		}
		return lr.lastResort, nil
	case Declarer:
		return lr, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNoLastResort, src)
	}
}

// flatten splices nested chains in place: a chain contributes its own
// flattened sources followed by a view of its last resort. Nil sources are
// skipped.
func flatten(sources []Source) []Source {
	out := make([]Source, 0, len(sources))
	for _, src := range sources {
		switch s := src.(type) {
		case nil:
			continue
		case *Chain:
			if s == nil {
				continue
			}
			out = append(out, s.sources...)
			out = append(out, lastResortView{chain: s})
		default:
			out = append(out, s)
		}
	}
	return out
}

// lastResortView exposes a nested chain's defaults for the keys that chain
// declares. Values are resolved, coerced and warned about by the nested chain.
type lastResortView struct {
	chain *Chain
}

func (v lastResortView) Lookup(key string) (any, bool) {
	kind, ok := v.chain.kinds[key]
	if !ok {
		return nil, false
	}
	val, err := v.chain.fallback(key, kind)
	if err != nil {
		return failure{err: err}, true
	}
	if val == nil {
		return nil, false
	}
	return val, true
}

// failure carries an error raised while a source produced its value.
type failure struct {
	err error
}

// resolve returns the first non-nil value the sources hold for key.
func (c *Chain) resolve(key string, kind Kind) (any, error) {
	for _, src := range c.sources {
		if raw, ok := src.Lookup(key); ok && raw != nil {
			return c.evaluate(key, raw, kind)
		}
	}

	return c.fallback(key, kind)
}

// fallback evaluates the last resort value for key, warning the first time a
// non-nil default is used.
func (c *Chain) fallback(key string, kind Kind) (any, error) {
	raw, _ := c.lastResort.Lookup(key)
	val, err := c.evaluate(key, raw, kind)
	if err != nil {
		return nil, err
	}
	if val != nil && c.markWarned(key) {
		c.logger.Warn("default value used",
			zap.String("source", c.label),
			zap.String("key", key),
			zap.String("value", stringify(val)),
		)
	}
	return val, nil
}

func (c *Chain) markWarned(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.warned[key]; ok {
		return false
	}
	c.warned[key] = struct{}{}
	return true
}

// Keys returns the declared keys in last resort order.
func (c *Chain) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Has reports whether key is declared.
func (c *Chain) Has(key string) bool {
	_, ok := c.resolvers[key]
	return ok
}

// Kind returns the type inferred for key from its default.
func (c *Chain) Kind(key string) (Kind, bool) {
	kind, ok := c.kinds[key]
	return kind, ok
}

// Get resolves key. Every call walks the chain again.
func (c *Chain) Get(key string) (any, error) {
	resolver, ok := c.resolvers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return resolver()
}

// Lookup implements Source. Undeclared keys, nil values and resolution
// failures are all reported as not set; use Get to observe failures.
func (c *Chain) Lookup(key string) (any, bool) {
	if !c.Has(key) {
		return nil, false
	}
	v, err := c.Get(key)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// Split returns the separator used for array values.
func (c *Chain) Split() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.splitter
}

// SetSplit changes the separator for subsequent array reads.
func (c *Chain) SetSplit(splitter string) {
	c.mu.Lock()
	c.splitter = splitter
	c.mu.Unlock()
}

// WarnAll reads every declared key so that pending default warnings fire.
// It returns c so calls can be chained.
func (c *Chain) WarnAll() (*Chain, error) {
	for _, key := range c.keys {
		if _, err := c.Get(key); err != nil {
			return c, err
		}
	}
	return c, nil
}

// All resolves every declared key in order.
func (c *Chain) All() ([]Entry, error) {
	entries := make([]Entry, 0, len(c.keys))
	for _, key := range c.keys {
		v, err := c.Get(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: key, Kind: c.kinds[key], Value: v})
	}
	return entries, nil
}

// Int resolves key as an integer. Infinite values saturate.
func (c *Chain) Int(key string) (int, error) {
	f, err := c.Float(key)
	if err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(f):
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, key)
	case f >= math.MaxInt:
		return math.MaxInt, nil
	case f <= math.MinInt:
		return math.MinInt, nil
	}
	return int(f), nil
}

// Float resolves key as a float64.
func (c *Chain) Float(key string) (float64, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, wrongType(key, v)
	}
}

// Bool resolves key as a bool.
func (c *Chain) Bool(key string) (bool, error) {
	v, err := c.Get(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(key, v)
	}
	return b, nil
}

// Strings resolves key as a string slice. Elements of other sequences are
// rendered as strings.
func (c *Chain) Strings(key string) ([]string, error) {
	v, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	switch s := v.(type) {
	case []string:
		return s, nil
	case []any:
		out := make([]string, len(s))
		for i, elem := range s {
			out[i] = stringify(elem)
		}
		return out, nil
	default:
		return nil, wrongType(key, v)
	}
}

// Regexp resolves key as a compiled regular expression.
func (c *Chain) Regexp(key string) (*regexp.Regexp, error) {
	v, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	re, ok := v.(*regexp.Regexp)
	if !ok {
		return nil, wrongType(key, v)
	}
	return re, nil
}

// Text resolves key and renders the value as a string.
func (c *Chain) Text(key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return stringify(v), nil
}

func wrongType(key string, v any) error {
	return fmt.Errorf("%w: %q is %T", ErrWrongType, key, v)
}
