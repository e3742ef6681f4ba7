// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads CORD-19 article records from disk and flattens one of
// their section arrays (abstract, body_text, ...) into table rows.
//
// The pipeline is EnumeratePaths → Loader.Load (ExtractFields per entry) →
// optional sentence splitting → table.Table.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/pdiddy/cord-loader/internal/sentences"
	"github.com/pdiddy/cord-loader/internal/table"
	"github.com/pdiddy/cord-loader/pkg/types"
)

// ErrInvalidEntry marks a Section Entry that is not a JSON object.
var ErrInvalidEntry = errors.New("section entry is not an object")

// LoadOptions selects which part of each article is extracted and which
// slice of the path list is processed.
type LoadOptions struct {
	// SectionKey names the top-level array to extract.
	SectionKey string

	// Query selects the fields copied from each entry.
	Query types.FieldQuery

	// Offset is the index of the first path to load.
	Offset int

	// Limit caps the number of paths loaded. Zero means through the end.
	Limit int

	// SplitSentences expands rows into sentence rows.
	SplitSentences bool

	// OnError is the per-file failure policy. Empty means PolicyCollect.
	OnError types.ErrorPolicy
}

// OptionsFromConfig converts a LoaderConfig into LoadOptions.
func OptionsFromConfig(cfg types.LoaderConfig) LoadOptions {
	return LoadOptions{
		SectionKey:     cfg.SectionKey,
		Query:          cfg.Query,
		Offset:         cfg.Offset,
		Limit:          cfg.Limit,
		SplitSentences: cfg.SplitSentences,
		OnError:        cfg.OnError,
	}
}

// Discard records a Section Entry dropped during extraction.
type Discard struct {
	Path    string
	PaperID string
	Index   int
	Err     error
}

// Summary holds per-run counts.
type Summary struct {
	// Opened is the number of files attempted: end - offset.
	Opened int
	// Loaded counts files that contained the section key.
	Loaded int
	// Skipped counts files without the section key.
	Skipped int
	// Failed counts files that could not be read or parsed.
	Failed int
	// Rows is the number of rows in the result table.
	Rows int
	// Discarded is the number of entries dropped by ExtractFields.
	Discarded int
}

// Result is the outcome of one Load call.
type Result struct {
	Table     *table.Table
	Discarded []Discard
	Failures  []FileError
	Summary   Summary
}

// HasFailures reports whether any file failed to load.
func (r *Result) HasFailures() bool {
	return len(r.Failures) > 0
}

// Loader reads article files and extracts section rows.
type Loader struct {
	splitter *sentences.Splitter
	logger   *zap.Logger
	progress io.Writer
}

// NewLoader returns a Loader. splitter may be nil when sentence splitting is
// never requested; a nil logger discards log output.
func NewLoader(splitter *sentences.Splitter, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		splitter: splitter,
		logger:   logger,
		progress: io.Discard,
	}
}

// WithProgress sets the writer that receives one status line per file.
func (l *Loader) WithProgress(w io.Writer) *Loader {
	if w == nil {
		w = io.Discard
	}
	l.progress = w
	return l
}

// Window returns the [start, end) slice of a path list of length total
// selected by offset and limit. Limit zero means through the end.
func Window(total, offset, limit int) (start, end int, err error) {
	if offset < 0 || offset >= total || limit < 0 {
		return 0, 0, &PaginationError{Offset: offset, Limit: limit, Total: total}
	}
	end = total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end, nil
}

// LoadDir enumerates cfg.RootPath and loads the configured window.
func (l *Loader) LoadDir(ctx context.Context, cfg types.LoaderConfig) (*Result, error) {
	paths, err := EnumeratePaths(cfg.RootPath, cfg.Extension)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, paths, OptionsFromConfig(cfg))
}

// Load extracts opts.SectionKey entries from paths[offset:end]. Entries
// missing a mandatory field are dropped and listed in Result.Discarded.
// Files that cannot be read or parsed are handled per opts.OnError. An
// offset outside the path list fails with a *PaginationError before any
// file is opened.
func (l *Loader) Load(ctx context.Context, paths []string, opts LoadOptions) (*Result, error) {
	start, end, err := Window(len(paths), opts.Offset, opts.Limit)
	if err != nil {
		return nil, err
	}
	if opts.SectionKey == "" {
		return nil, fmt.Errorf("section key is required")
	}
	query := opts.Query.Normalize()
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid field query: %w", err)
	}
	if opts.SplitSentences && l.splitter == nil {
		return nil, fmt.Errorf("sentence splitting requested but no splitter configured")
	}
	policy, err := types.ParseErrorPolicy(string(opts.OnError))
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var rows []types.Row

	for _, path := range paths[start:end] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res.Summary.Opened++

		article, err := readArticle(path)
		var (
			entries []json.RawMessage
			paperID string
			found   bool
		)
		if err == nil {
			entries, found, err = article.Section(opts.SectionKey)
			if err == nil && found {
				paperID, err = article.PaperID()
			}
			if err != nil {
				err = fmt.Errorf("%w: %w", ErrParse, err)
			}
		}
		if err != nil {
			fe := FileError{Path: path, Err: err}
			res.Summary.Failed++
			fmt.Fprintf(l.progress, "failed  %s: %v\n", path, err)
			switch policy {
			case types.PolicyAbort:
				return nil, &fe
			case types.PolicySkip:
				l.logger.Warn("skipping unreadable article", zap.String("path", path), zap.Error(err))
			default:
				res.Failures = append(res.Failures, fe)
			}
			continue
		}

		if !found {
			res.Summary.Skipped++
			fmt.Fprintf(l.progress, "skipped %s (no %s)\n", path, opts.SectionKey)
			continue
		}

		res.Summary.Loaded++
		before := len(rows)
		for i, raw := range entries {
			row, err := extractEntry(raw, query)
			if err != nil {
				res.Discarded = append(res.Discarded, Discard{
					Path: path, PaperID: paperID, Index: i, Err: err,
				})
				continue
			}
			row[types.FieldPaperID] = paperID
			rows = append(rows, row)
		}
		fmt.Fprintf(l.progress, "loaded  %s (%d rows)\n", path, len(rows)-before)
	}

	if opts.SplitSentences {
		rows, err = l.splitter.Split(rows)
		if err != nil {
			return nil, err
		}
	}

	columns := append([]string{types.FieldPaperID}, query.Keys...)
	if opts.SplitSentences {
		columns = append(columns, types.FieldPosition)
	}
	res.Table = table.FromRows(rows, columns)
	res.Summary.Rows = len(rows)
	res.Summary.Discarded = len(res.Discarded)

	l.logger.Debug("load completed",
		zap.String("section_key", opts.SectionKey),
		zap.Int("offset", start),
		zap.Int("end", end),
		zap.Int("rows", res.Summary.Rows),
		zap.Int("discarded", res.Summary.Discarded),
		zap.Int("failed", res.Summary.Failed))

	fmt.Fprintf(l.progress, "\nopened: %d, loaded: %d, skipped: %d, failed: %d, rows: %d, discarded entries: %d\n",
		res.Summary.Opened, res.Summary.Loaded, res.Summary.Skipped, res.Summary.Failed,
		res.Summary.Rows, res.Summary.Discarded)

	return res, nil
}

// readArticle opens, fully decodes, and closes one article file.
func readArticle(path string) (*types.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening article: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading article: %w", err)
	}

	var article types.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &article, nil
}

func extractEntry(raw json.RawMessage, q types.FieldQuery) (types.Row, error) {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil || record == nil {
		return nil, ErrInvalidEntry
	}
	return ExtractFields(record, q)
}
