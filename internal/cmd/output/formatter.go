// Package output renders command results as tables, JSON, or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Format names an output encoding selected by --format.
type Format string

const (
	// FormatTable renders an aligned text table.
	FormatTable Format = "table"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
	// FormatWide renders a table including the extra columns commands
	// reserve for it.
	FormatWide Format = "wide"
)

// Align positions cell content within a table column.
type Align int

const (
	// AlignDefault defers to the renderer.
	AlignDefault Align = iota
	// AlignLeft flushes content left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight flushes content right.
	AlignRight
)

// Data is a rendered table: headers, rows, and optional per-column
// alignment applied to both.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// Formatter renders one value to a writer.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format, defaulting to a
// plain table for anything unrecognized.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatWide:
		return &TableFormatter{Wide: true}
	default:
		return &TableFormatter{}
	}
}

// DetectFormat resolves the effective format: an explicit flag value
// wins, interactive terminals get tables, pipes get JSON.
func DetectFormat(explicitFormat string) Format {
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}
	if stdoutIsTerminal() {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat validates a --format value. The empty string is valid
// and means auto-detect.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatWide, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml, wide", s)
	}
}

// JSONFormatter renders indented JSON.
type JSONFormatter struct {
	Indent string
}

// Format writes data as JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(data)
}

// YAMLFormatter renders YAML with two-space indents.
type YAMLFormatter struct{}

// Format writes data as YAML.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	encoded, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(encoded)
	return err
}

// TableFormatter renders Data as an aligned table. Values that are
// not table data fall back to JSON so commands can hand any payload
// to one formatter.
type TableFormatter struct {
	Wide bool
}

// Format writes data as a table when it is table data, JSON
// otherwise.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.render(w, v)
	case *Data:
		return f.render(w, *v)
	default:
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}
}

func (f *TableFormatter) render(w io.Writer, data Data) error {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tableConfig(data.ColumnAlignment)))

	if len(data.Headers) > 0 {
		table.Header(anyRow(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := table.Append(anyRow(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

// tableConfig applies per-column alignment to both headers and rows.
func tableConfig(alignment []Align) tablewriter.Config {
	var config tablewriter.Config
	if len(alignment) == 0 {
		return config
	}

	perColumn := make([]tw.Align, len(alignment))
	for i, align := range alignment {
		switch align {
		case AlignLeft:
			perColumn[i] = tw.AlignLeft
		case AlignCenter:
			perColumn[i] = tw.AlignCenter
		case AlignRight:
			perColumn[i] = tw.AlignRight
		default:
			perColumn[i] = tw.Skip
		}
	}

	cells := tw.CellAlignment{PerColumn: perColumn}
	config.Header.Alignment = cells
	config.Row.Alignment = cells
	return config
}

// anyRow widens a string row for the renderer's variadic API.
func anyRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}

// stdoutIsTerminal reports whether stdout is interactive, including
// Cygwin and MSYS pseudo-terminals.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
