// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"slices"
	"strings"
)

// FieldQuery names the fields copied out of each Section Entry.
// Keys are copied in order when present; Mandatory keys must be present or
// the entry is discarded.
type FieldQuery struct {
	// Keys lists the fields to copy, in column order.
	Keys []string `json:"keys" yaml:"keys"`

	// Mandatory lists the fields whose absence invalidates an entry.
	Mandatory []string `json:"mandatory" yaml:"mandatory"`
}

// DefaultFieldQuery returns the query used for abstracts and body text:
// section and text, with text mandatory.
func DefaultFieldQuery() FieldQuery {
	return FieldQuery{
		Keys:      []string{FieldSection, FieldText},
		Mandatory: []string{FieldText},
	}
}

// Normalize trims names, drops blanks, and appends any mandatory key missing
// from Keys so that every mandatory field is also emitted.
func (q FieldQuery) Normalize() FieldQuery {
	out := FieldQuery{
		Keys:      cleanNames(q.Keys),
		Mandatory: cleanNames(q.Mandatory),
	}
	for _, m := range out.Mandatory {
		if !slices.Contains(out.Keys, m) {
			out.Keys = append(out.Keys, m)
		}
	}
	return out
}

// Validate reports the first structural problem with q: no keys, a
// duplicate name, a reserved name, or a mandatory key not requested.
func (q FieldQuery) Validate() error {
	if len(q.Keys) == 0 {
		return fmt.Errorf("field query has no keys")
	}
	seen := make(map[string]bool, len(q.Keys))
	for _, k := range q.Keys {
		switch {
		case strings.TrimSpace(k) == "":
			return fmt.Errorf("field query has an empty key")
		case k == FieldPaperID || k == FieldPosition:
			return fmt.Errorf("field %q is reserved", k)
		case seen[k]:
			return fmt.Errorf("duplicate key %q", k)
		}
		seen[k] = true
	}
	for _, m := range q.Mandatory {
		if !seen[m] {
			return fmt.Errorf("mandatory key %q is not in keys", m)
		}
	}
	return nil
}

func cleanNames(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
