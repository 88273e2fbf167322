package cascade

import (
	"math"
	"reflect"
	"regexp"
)

// Kind is the type a key's values are coerced to, inferred from its default.
type Kind int

const (
	KindAny Kind = iota
	KindInt
	KindFloat
	KindBool
	KindArray
	KindRegexp
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindRegexp:
		return "regexp"
	default:
		return "any"
	}
}

// inferKind classifies a default value. Integral floats, including the
// infinities, are ints; NaN is a float.
func inferKind(v any) Kind {
	switch val := v.(type) {
	case nil, string, Func, func(*Chain) (any, error):
		return KindAny
	case bool:
		return KindBool
	case *regexp.Regexp:
		return KindRegexp
	case float64:
		return numericKind(val)
	case float32:
		return numericKind(float64(val))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return KindArray
	default:
		return KindAny
	}
}

func numericKind(f float64) Kind {
	if math.Round(f) == f {
		return KindInt
	}
	return KindFloat
}
