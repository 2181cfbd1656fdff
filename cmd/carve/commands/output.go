// Package commands implements CLI command handlers for carve.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output format identifiers shared by all commands.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// ErrUnknownOutputFormat indicates an unsupported --format value.
var ErrUnknownOutputFormat = errors.New("unknown output format, expected table, json, or yaml")

// renderMachine serializes v as JSON or YAML.
func renderMachine(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutputFormat, format)
	}
}

// sectionHeader prints a colored section title.
func sectionHeader(w io.Writer, title string) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "%s\n", title)
}

// newTable creates a go-pretty table mirrored to w.
func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	return tbl
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
