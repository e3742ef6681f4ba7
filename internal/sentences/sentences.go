// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sentences expands text rows into one row per sentence using a
// pluggable sentence boundary detector. The default detector is the English
// Punkt model from github.com/neurosnap/sentences.
package sentences

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neurosnap/sentences/english"

	"github.com/pdiddy/cord-loader/pkg/types"
)

// ErrTokenize marks a row whose text could not be split into sentences.
var ErrTokenize = errors.New("sentence tokenization failed")

// Tokenizer detects sentence boundaries in a block of text.
type Tokenizer interface {
	// Tokenize returns the sentences of text in order.
	Tokenize(text string) ([]string, error)
}

// TokenizerFunc adapts a plain function to the Tokenizer interface.
type TokenizerFunc func(text string) ([]string, error)

// Tokenize calls f(text).
func (f TokenizerFunc) Tokenize(text string) ([]string, error) { return f(text) }

// NewPunktTokenizer loads the bundled English Punkt model.
func NewPunktTokenizer() (Tokenizer, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading english sentence model: %w", err)
	}
	return TokenizerFunc(func(text string) ([]string, error) {
		var out []string
		for _, s := range tok.Tokenize(text) {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
		return out, nil
	}), nil
}

// Splitter turns text rows into sentence rows.
type Splitter struct {
	tokenizer Tokenizer
}

// NewSplitter returns a Splitter backed by t.
func NewSplitter(t Tokenizer) *Splitter {
	return &Splitter{tokenizer: t}
}

// Split emits, for each input row, one shallow copy per sentence of its text
// field, with text replaced by the sentence and position set to the
// sentence's zero-based index. Sentences of one row are contiguous and rows
// keep their input order. Input rows are not modified.
func (s *Splitter) Split(rows []types.Row) ([]types.Row, error) {
	var out []types.Row
	for i, row := range rows {
		text, ok := row.Text()
		if !ok {
			return nil, fmt.Errorf("%w: row %d (paper %s) has no string text field", ErrTokenize, i, row.PaperID())
		}
		sents, err := s.tokenizer.Tokenize(text)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d (paper %s): %w", ErrTokenize, i, row.PaperID(), err)
		}
		for pos, sent := range sents {
			r := row.Clone()
			r[types.FieldText] = sent
			r[types.FieldPosition] = pos
			out = append(out, r)
		}
	}
	return out, nil
}
