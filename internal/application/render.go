package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/convig/internal/cascade"
	"github.com/eugenenazirov/convig/internal/config"
)

// Render writes entries in key order as a YAML mapping or a JSON object.
func Render(w io.Writer, entries []cascade.Entry, format string) error {
	switch format {
	case config.FormatYAML:
		return renderYAML(w, entries)
	case config.FormatJSON:
		return renderJSON(w, entries)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func renderYAML(w io.Writer, entries []cascade.Entry) error {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range entries {
		var value yaml.Node
		if err := value.Encode(plain(entry.Value, false)); err != nil {
			return fmt.Errorf("encode %q: %w", entry.Key, err)
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Key},
			&value,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}

func renderJSON(w io.Writer, entries []cascade.Entry) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, entry := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return fmt.Errorf("encode key %q: %w", entry.Key, err)
		}
		value, err := json.Marshal(plain(entry.Value, true))
		if err != nil {
			return fmt.Errorf("encode %q: %w", entry.Key, err)
		}
		buf.Write(key)
		buf.WriteString(":")
		buf.Write(value)
	}
	buf.WriteString("}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("indent json: %w", err)
	}
	out.WriteString("\n")
	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// plain converts resolved values into encodable form. Regexps render as
// /pattern/; JSON has no non-finite numbers, so those become strings.
func plain(v any, forJSON bool) any {
	switch val := v.(type) {
	case *regexp.Regexp:
		return "/" + val.String() + "/"
	case float64:
		if forJSON && (math.IsInf(val, 0) || math.IsNaN(val)) {
			return nonFinite(val)
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = plain(elem, forJSON)
		}
		return out
	default:
		return v
	}
}

func nonFinite(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f > 0:
		return "Infinity"
	default:
		return "-Infinity"
	}
}
