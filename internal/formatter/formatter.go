// package formatter renders query results, batch rejections and catalog stats as text tables, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hx-hudson/Music-datbase/internal/shared"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Dataset is a titled table of string cells. Value is what the JSON format encodes.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
	Value   any
}

// ParseFormat normalizes a --format value. The empty string means text.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatText, "table":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q (want text, json or csv)", shared.ErrUnsupportedFormat, s)
	}
}

// FormatForPath picks an output format from a file extension, defaulting to text.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	default:
		return FormatText
	}
}

// Render encodes one or more datasets in the given format.
//
// Several datasets in JSON become an object keyed by title; in CSV they are separated by a blank line.
func Render(format string, sets ...Dataset) ([]byte, error) {
	switch format {
	case FormatText:
		return ToText(sets...), nil
	case FormatCSV:
		return ToCSV(sets...)
	case FormatJSON:
		if len(sets) == 1 {
			return ToJSON(sets[0].Value)
		}
		obj := make(map[string]any, len(sets))
		for _, ds := range sets {
			obj[ds.Title] = ds.Value
		}
		return ToJSON(obj)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, format)
	}
}

// Write renders datasets to w.
func Write(w io.Writer, format string, sets ...Dataset) error {
	data, err := Render(format, sets...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile renders datasets to path, choosing the format from its extension.
func WriteFile(path string, sets ...Dataset) error {
	data, err := Render(FormatForPath(path), sets...)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ToText draws each dataset as a bordered table under its title.
func ToText(sets ...Dataset) []byte {
	var buf bytes.Buffer
	for i, ds := range sets {
		if i > 0 {
			buf.WriteString("\n")
		}
		if ds.Title != "" {
			buf.WriteString(styles.Title(ds.Title))
			buf.WriteString("\n")
		}
		if len(ds.Rows) == 0 {
			buf.WriteString(styles.Help("(no rows)"))
			buf.WriteString("\n")
			continue
		}
		buf.WriteString(newTable(ds).String())
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func newTable(ds Dataset) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.border).
		Headers(ds.Headers...).
		Rows(ds.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			return styles.cell
		})
}

// ToCSV writes each dataset as a header line followed by its rows.
func ToCSV(sets ...Dataset) ([]byte, error) {
	var buf bytes.Buffer
	for i, ds := range sets {
		if i > 0 {
			buf.WriteString("\n")
		}
		writer := csv.NewWriter(&buf)
		if err := writer.Write(ds.Headers); err != nil {
			return nil, fmt.Errorf("failed to write CSV headers: %w", err)
		}
		if err := writer.WriteAll(ds.Rows); err != nil {
			return nil, fmt.Errorf("CSV writer error: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// ToJSON encodes v as indented JSON with a trailing newline.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}
