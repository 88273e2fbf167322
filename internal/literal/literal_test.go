package literal

import (
	"errors"
	"math"
	"regexp"
	"slices"
	"testing"
)

func TestParseAssignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want Assignment
	}{
		{"port=8080", Assignment{Key: "port", Value: "8080"}},
		{" name = x", Assignment{Key: "name", Value: " x"}},
		{"expr=a=b", Assignment{Key: "expr", Value: "a=b"}},
		{"empty=", Assignment{Key: "empty", Value: ""}},
	}
	for _, tc := range tests {
		got, err := ParseAssignment(tc.raw)
		if err != nil {
			t.Fatalf("ParseAssignment(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAssignment(%q): expected %+v, got %+v", tc.raw, tc.want, got)
		}
	}

	for _, raw := range []string{"", "novalue", "=value", "  =x"} {
		if _, err := ParseAssignment(raw); !errors.Is(err, ErrInvalidAssignment) {
			t.Fatalf("ParseAssignment(%q): expected ErrInvalidAssignment, got %v", raw, err)
		}
	}
}

func TestParseScalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want any
	}{
		{"19", 19},
		{"19.5", 19.5},
		{"true", true},
		{"false", false},
		{"hello", "hello"},
		{"'42'", "42"},
		{"", nil},
		{"~", nil},
	}
	for _, tc := range tests {
		got, err := Parse(tc.raw)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q): expected %#v, got %#v", tc.raw, tc.want, got)
		}
	}
}

func TestParseInfinity(t *testing.T) {
	t.Parallel()

	got, err := Parse(".inf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f, ok := got.(float64); !ok || !math.IsInf(f, 1) {
		t.Fatalf("expected +Inf, got %#v", got)
	}
}

func TestParseSequences(t *testing.T) {
	t.Parallel()

	got, err := Parse("[a, b, c]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := got.([]string); !ok || !slices.Equal(s, []string{"a", "b", "c"}) {
		t.Fatalf("expected []string{a b c}, got %#v", got)
	}

	got, err = Parse("[1, b]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got.([]any); !ok {
		t.Fatalf("expected mixed sequence to stay []any, got %#v", got)
	}
}

func TestParseRegexp(t *testing.T) {
	t.Parallel()

	got, err := Parse("/fire/i")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	re, ok := got.(*regexp.Regexp)
	if !ok {
		t.Fatalf("expected regexp, got %#v", got)
	}
	if !re.MatchString("FIRE") {
		t.Fatalf("expected case-insensitive match")
	}

	if _, err := Parse("/(/"); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	t.Parallel()

	if _, err := Parse("[a"); err == nil {
		t.Fatalf("expected error for unterminated sequence")
	}
}
