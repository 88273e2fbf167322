package cascade

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// regexpLiteral recognises "/pattern/flags" strings.
	regexpLiteral = regexp.MustCompile(`^/(.*)/([gimy]*)$`)
	floatPrefix   = regexp.MustCompile(`^[+-]?(?:Infinity|(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)`)
	intPrefix     = regexp.MustCompile(`^[+-]?[0-9]+`)
)

var truthy = map[string]struct{}{
	"true": {},
	"on":   {},
	"1":    {},
	"yes":  {},
}

// evaluate turns a raw value found for key into its exposed form. Func values
// are invoked first; their result is then coerced like any literal.
func (c *Chain) evaluate(key string, raw any, kind Kind) (any, error) {
	if f, ok := raw.(failure); ok {
		return nil, f.err
	}
	if fn, ok := asFunc(raw); ok {
		v, err := fn(c)
		if err != nil {
			return nil, &ResolveError{Key: key, Err: err}
		}
		raw = v
	}

	switch kind {
	case KindInt:
		return toInt(raw), nil
	case KindFloat:
		return parseFloat(stringify(raw)), nil
	case KindBool:
		return Truthy(raw), nil
	case KindArray:
		if s, ok := raw.(string); ok {
			return strings.Split(s, c.Split()), nil
		}
		return raw, nil
	case KindRegexp:
		re, err := toRegexp(raw)
		if err != nil {
			return nil, fmt.Errorf("coerce %q: %w", key, err)
		}
		return re, nil
	default:
		return raw, nil
	}
}

func asFunc(v any) (Func, bool) {
	switch fn := v.(type) {
	case Func:
		return fn, fn != nil
	case func(*Chain) (any, error):
		return fn, fn != nil
	default:
		return nil, false
	}
}

func toInt(v any) float64 {
	switch val := v.(type) {
	case string:
		switch val {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
	case float64:
		if math.IsInf(val, 0) {
			return val
		}
	case float32:
		if math.IsInf(float64(val), 0) {
			return float64(val)
		}
	}
	return parseInt(stringify(v))
}

// parseInt reads the leading base-10 integer of s, ignoring leading white
// space. Anything without such a prefix is NaN.
func parseInt(s string) float64 {
	m := intPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return math.NaN()
	}
	return parseDecimal(m)
}

// parseFloat reads the longest leading decimal literal of s, ignoring leading
// white space. "Infinity" with an optional sign is accepted.
func parseFloat(s string) float64 {
	m := floatPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return math.NaN()
	}
	return parseDecimal(m)
}

// parseDecimal saturates out of range literals to the signed infinity.
func parseDecimal(m string) float64 {
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// Truthy reports whether v reads as true: the literals true, on, 1 and yes,
// ignoring case.
func Truthy(v any) bool {
	_, ok := truthy[strings.ToLower(stringify(v))]
	return ok
}

func toRegexp(v any) (*regexp.Regexp, error) {
	if re, ok := v.(*regexp.Regexp); ok {
		return re, nil
	}
	s := ""
	if v != nil {
		s = stringify(v)
	}
	if m := regexpLiteral.FindStringSubmatch(s); m != nil {
		return compileRegexp(m[1], m[2])
	}
	return compileRegexp(s, "")
}

// compileRegexp maps the i and m flags onto RE2 flag groups. The g and y
// flags carry no state in RE2 and are dropped.
func compileRegexp(pattern, flags string) (*regexp.Regexp, error) {
	var prefix strings.Builder
	if strings.Contains(flags, "i") {
		prefix.WriteString("i")
	}
	if strings.Contains(flags, "m") {
		prefix.WriteString("m")
	}
	if prefix.Len() > 0 {
		pattern = "(?" + prefix.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile regexp: %w", err)
	}
	return re, nil
}

// stringify renders v the way loosely typed sources spell values: numbers in
// shortest form, sequences comma-joined, nil as "null".
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case float32:
		return formatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case *regexp.Regexp:
		return "/" + val.String() + "/"
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = stringify(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CompileRegexp compiles s the way string values of regexp keys are coerced:
// "/pattern/flags" honours the flags, anything else is a literal pattern.
func CompileRegexp(s string) (*regexp.Regexp, error) {
	return toRegexp(s)
}
