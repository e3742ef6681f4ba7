// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the cord-loader pipeline:
// parsed articles, extracted rows, field queries, and stage configuration.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Well-known field names in CORD-19 article records and extracted rows.
const (
	FieldPaperID  = "paper_id"
	FieldSection  = "section"
	FieldText     = "text"
	FieldPosition = "position"
)

// Well-known section keys. Any top-level array of objects may be used.
const (
	SectionAbstract = "abstract"
	SectionBodyText = "body_text"
)

// Row is one flattened record: an Extracted Row (paper_id plus the requested
// fields of one Section Entry) or a Sentence Row (which adds position).
type Row map[string]any

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// PaperID returns the row's paper_id, or "" when absent or not a string.
func (r Row) PaperID() string {
	s, _ := r[FieldPaperID].(string)
	return s
}

// Text returns the row's text field and whether it is a string.
func (r Row) Text() (string, bool) {
	s, ok := r[FieldText].(string)
	return s, ok
}

// Article is a parsed article document. Every top-level field is kept raw so
// any array name can act as a section key; paper_id is decoded on demand.
type Article struct {
	Fields map[string]json.RawMessage
}

// UnmarshalJSON decodes a CORD-19 article record.
func (a *Article) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("article is not a JSON object")
	}
	a.Fields = fields
	return nil
}

// PaperID decodes the article's paper_id. It fails when the field is
// missing, null, or not a string.
func (a *Article) PaperID() (string, error) {
	raw, ok := a.Fields[FieldPaperID]
	if !ok {
		return "", fmt.Errorf("no %s", FieldPaperID)
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return "", fmt.Errorf("%s is null", FieldPaperID)
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", fmt.Errorf("decoding %s: %w", FieldPaperID, err)
	}
	return id, nil
}

// Section returns the raw entries stored under key. ok is false when the
// article has no such field. A present field that is not an array of JSON
// values returns an error.
func (a *Article) Section(key string) (entries []json.RawMessage, ok bool, err error) {
	raw, ok := a.Fields[key]
	if !ok {
		return nil, false, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, true, fmt.Errorf("section %q is not an array: %w", key, err)
	}
	return entries, true, nil
}
