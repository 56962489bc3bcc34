// Package display renders wdlint results for people (pterm) and for other
// programs (JSON, YAML).
package display

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/wdlint/errors"
)

// Format selects how results are written.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPretty, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.WithHint(
			errors.Newf("unsupported format: %q", s),
			"supported formats: pretty, json, yaml")
	}
}

// FormatFlag reads the --format flag of cmd, honouring the global --json flag
func FormatFlag(cmd *cobra.Command) (Format, error) {
	if cmd == nil {
		return FormatPretty, nil
	}
	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		return FormatJSON, nil
	}
	raw, err := cmd.Flags().GetString("format")
	if err != nil {
		return FormatPretty, nil
	}
	return ParseFormat(raw)
}

// OutputYAML marshals v as YAML to w
func OutputYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to marshal YAML")
	}
	return enc.Close()
}

// Output writes v in a machine format. FormatPretty callers render
// themselves; passing it here falls back to YAML.
func Output(w io.Writer, format Format, v interface{}) error {
	if format == FormatJSON {
		return OutputJSON(w, v, false)
	}
	return OutputYAML(w, v)
}
