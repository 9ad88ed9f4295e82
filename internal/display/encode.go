package display

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format selects machine-readable output.
type Format int

const (
	Text Format = iota
	JSON
	YAML
)

// FormatFromFlags maps the --json/--yaml flags to a Format.
func FormatFromFlags(asJSON, asYAML bool) (Format, error) {
	switch {
	case asJSON && asYAML:
		return Text, fmt.Errorf("--json and --yaml are mutually exclusive")
	case asJSON:
		return JSON, nil
	case asYAML:
		return YAML, nil
	}
	return Text, nil
}

// Encode writes v as indented JSON or as YAML.
//
// YAML is produced from the JSON form so both formats share the upstream
// key names (noticeId, responseDeadLine, ...) and omit the same fields.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case YAML:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %d", f)
	}
}
