package literal

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/convig/internal/cascade"
)

var (
	// ErrInvalidAssignment is returned when an argument is not of the form key=value.
	ErrInvalidAssignment = errors.New("expected key=value")

	delimitedRegexp = regexp.MustCompile(`^/.*/[gimy]*$`)
)

// Assignment is a parsed key=value argument.
type Assignment struct {
	Key   string
	Value string
}

// ParseAssignment splits raw on the first '='. The key is trimmed and must
// not be empty; the value is kept verbatim.
func ParseAssignment(raw string) (Assignment, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Assignment{}, fmt.Errorf("%w, got %q", ErrInvalidAssignment, raw)
	}
	return Assignment{Key: key, Value: value}, nil
}

// Parse types a default value written on the command line. "/pattern/flags"
// becomes a regular expression; everything else is typed as a YAML scalar or
// flow collection, so 19 is an int, 19.5 a float, true a bool, [a, b] a
// sequence and .inf positive infinity. An empty value is nil.
func Parse(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if delimitedRegexp.MatchString(trimmed) {
		re, err := cascade.CompileRegexp(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", raw, err)
		}
		return re, nil
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	if seq, ok := value.([]any); ok {
		return toStrings(seq), nil
	}
	return value, nil
}

// toStrings keeps sequences of scalars as []string so array defaults read
// the same way split strings do. Mixed sequences are returned unchanged.
func toStrings(seq []any) any {
	out := make([]string, len(seq))
	for i, elem := range seq {
		s, ok := elem.(string)
		if !ok {
			return seq
		}
		out[i] = s
	}
	return out
}
