// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cord-loader/pkg/types"
)

func sampleTable() *Table {
	return FromRows([]types.Row{
		{"paper_id": "abc", "section": "INTRO", "text": "Hello world.", "position": 0},
		{"paper_id": "abc", "text": "This is a test.", "position": 1},
	}, []string{"paper_id", "section", "text", "position"})
}

func TestFromRows_Columns(t *testing.T) {
	tests := []struct {
		name      string
		rows      []types.Row
		preferred []string
		want      []string
	}{
		{
			name:      "preferred order",
			rows:      []types.Row{{"text": "t", "paper_id": "p", "section": "s"}},
			preferred: []string{"paper_id", "section", "text"},
			want:      []string{"paper_id", "section", "text"},
		},
		{
			name:      "preferred column absent from every row is dropped",
			rows:      []types.Row{{"paper_id": "p", "text": "t"}},
			preferred: []string{"paper_id", "section", "text"},
			want:      []string{"paper_id", "text"},
		},
		{
			name:      "extra keys follow sorted",
			rows:      []types.Row{{"paper_id": "p", "zeta": 1}, {"alpha": 2}},
			preferred: []string{"paper_id"},
			want:      []string{"paper_id", "alpha", "zeta"},
		},
		{
			name: "no rows",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRows(tt.rows, tt.preferred)
			if tt.want == nil {
				assert.Empty(t, got.Columns)
			} else {
				assert.Equal(t, tt.want, got.Columns)
			}
			assert.NotNil(t, got.Rows)
		})
	}
}

func TestColumn(t *testing.T) {
	tbl := sampleTable()
	assert.Equal(t, []any{"INTRO", nil}, tbl.Column("section"))
	assert.Equal(t, []any{0, 1}, tbl.Column("position"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable().WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"paper_id", "section", "text", "position"},
		{"abc", "INTRO", "Hello world.", "0"},
		{"abc", "", "This is a test.", "1"},
	}, records)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable().WriteJSON(&buf))

	out := buf.String()
	assert.True(t, strings.Index(out, `"paper_id"`) < strings.Index(out, `"section"`), "keys keep column order")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Hello world.", decoded[0]["text"])
	assert.NotContains(t, decoded[1], "section")
	assert.Equal(t, float64(1), decoded[1]["position"])
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FromRows(nil, nil).WriteJSON(&buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable().WriteYAML(&buf))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "abc", decoded[0]["paper_id"])
	assert.Equal(t, 1, decoded[1]["position"])
	assert.True(t, strings.HasPrefix(buf.String(), "- paper_id: abc\n"))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable().WriteText(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "paper_id"))
	assert.Contains(t, lines[2], "Hello world.")
	assert.Equal(t, "2 rows", lines[len(lines)-1])
}

func TestWriteText_TruncatesLongCells(t *testing.T) {
	long := strings.Repeat("x", 200)
	tbl := FromRows([]types.Row{{"paper_id": "p", "text": long}}, []string{"paper_id", "text"})

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteText(&buf))
	assert.NotContains(t, buf.String(), long)
	assert.Contains(t, buf.String(), "...")
}

func TestWriteText_TruncatesMultiByteCells(t *testing.T) {
	long := strings.Repeat("é", 80)
	tbl := FromRows([]types.Row{
		{"paper_id": "p1", "text": long},
		{"paper_id": "p2", "text": "short"},
	}, []string{"paper_id", "text"})

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteText(&buf))
	require.True(t, utf8.Valid(buf.Bytes()), "output must stay valid UTF-8")

	lines := strings.Split(buf.String(), "\n")
	want := strings.Repeat("é", maxCellWidth-3) + "..."
	assert.Contains(t, lines[2], want)

	// Columns line up when measured in runes.
	assert.Equal(t, utf8.RuneCountInString(lines[2]), utf8.RuneCountInString(lines[3]))
	assert.Equal(t, utf8.RuneCountInString(lines[0]), utf8.RuneCountInString(lines[2]))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "日本...", truncate("日本語のテキスト", 5))
	assert.Equal(t, "日本語のテ", truncate("日本語のテ", 5))
}

func TestWrite_Formats(t *testing.T) {
	for _, f := range []types.OutputFormat{"", types.OutputText, types.OutputCSV, types.OutputJSON, types.OutputYAML} {
		var buf bytes.Buffer
		assert.NoError(t, sampleTable().Write(&buf, f), "format %q", f)
		assert.NotEmpty(t, buf.String())
	}

	var buf bytes.Buffer
	assert.Error(t, sampleTable().Write(&buf, "parquet"))
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{3, "3"},
		{float64(12), "12"},
		{1.5, "1.5"},
		{true, "true"},
		{[]any{"a", 1.0}, `["a",1]`},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Cell(tt.in))
	}
}
