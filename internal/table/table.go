// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table holds loaded rows with a dynamic column set and renders
// them as a terminal listing, CSV, JSON, or YAML.
package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cord-loader/pkg/types"
)

// Table is a set of rows sharing a column list. A row may lack some
// columns; such cells render empty (or are omitted in JSON and YAML).
type Table struct {
	Columns []string
	Rows    []types.Row
}

// FromRows builds a Table whose columns are the union of the rows' keys.
// Columns named in preferred come first, in that order, when at least one
// row carries them; any remaining keys follow in sorted order.
func FromRows(rows []types.Row, preferred []string) *Table {
	present := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			present[k] = true
		}
	}

	var cols []string
	for _, c := range preferred {
		if present[c] && !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	var rest []string
	for k := range present {
		if !slices.Contains(cols, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)

	if rows == nil {
		rows = []types.Row{}
	}
	return &Table{Columns: append(cols, rest...), Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the values of column name, in row order. Missing cells are nil.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Write renders t in the given format.
func (t *Table) Write(w io.Writer, format types.OutputFormat) error {
	switch format {
	case types.OutputText, "":
		return t.WriteText(w)
	case types.OutputCSV:
		return t.WriteCSV(w)
	case types.OutputJSON:
		return t.WriteJSON(w)
	case types.OutputYAML:
		return t.WriteYAML(w)
	default:
		return fmt.Errorf("unsupported format %q: use table, csv, json, or yaml", format)
	}
}

// WriteCSV writes a header line followed by one record per row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = Cell(r[c])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rows as a JSON array of objects with keys in column
// order.
func (t *Table) WriteJSON(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, r := range t.Rows {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		first := true
		for _, c := range t.Columns {
			v, ok := r[c]
			if !ok {
				continue
			}
			key, _ := json.Marshal(c)
			val, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshaling row %d column %s: %w", i, c, err)
			}
			if !first {
				buf.WriteString(", ")
			}
			first = false
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(val)
		}
		buf.WriteString("}")
	}
	if len(t.Rows) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteYAML writes the rows as a YAML sequence of mappings with keys in
// column order.
func (t *Table) WriteYAML(w io.Writer) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for i, r := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range t.Columns {
			v, ok := r[c]
			if !ok {
				continue
			}
			var val yaml.Node
			if err := val.Encode(v); err != nil {
				return fmt.Errorf("encoding row %d column %s: %w", i, c, err)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c}, &val)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

const maxCellWidth = 60

// WriteText writes a fixed-width listing for terminals. Long cells are
// truncated; the row count follows the listing.
func (t *Table) WriteText(w io.Writer) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No rows loaded.")
		return err
	}

	widths := make([]int, len(t.Columns))
	for j, c := range t.Columns {
		widths[j] = utf8.RuneCountInString(c)
	}
	cells := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		cells[i] = make([]string, len(t.Columns))
		for j, c := range t.Columns {
			s := truncate(strings.ReplaceAll(Cell(r[c]), "\n", " "), maxCellWidth)
			cells[i][j] = s
			widths[j] = max(widths[j], utf8.RuneCountInString(s))
		}
	}

	total := 0
	for j, c := range t.Columns {
		fmt.Fprintf(w, "%-*s  ", widths[j], c)
		total += widths[j] + 2
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", total))
	for _, row := range cells {
		for j, s := range row {
			fmt.Fprintf(w, "%-*s  ", widths[j], s)
		}
		fmt.Fprintln(w)
	}
	_, err := fmt.Fprintf(w, "\n%d rows\n", len(t.Rows))
	return err
}

// Cell formats a row value for CSV and text output. nil renders empty;
// whole floats (as decoded from JSON numbers) render without a fraction.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

// truncate shortens s to at most n runes, cutting on rune boundaries.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
