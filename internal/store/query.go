// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/cord-loader/internal/table"
	"github.com/pdiddy/cord-loader/pkg/types"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, section_key, start_offset, lim, split, columns, created_at, row_count, discarded, failed
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunMeta
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Run returns the metadata of one run.
func (s *Store) Run(ctx context.Context, id string) (RunMeta, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, section_key, start_offset, lim, split, columns, created_at, row_count, discarded, failed
		 FROM runs WHERE id = ?`, id)
	m, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunMeta{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return m, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunMeta, error) {
	var (
		m           RunMeta
		columnsJSON string
		createdAt   string
	)
	if err := sc.Scan(&m.ID, &m.SectionKey, &m.Offset, &m.Limit, &m.Split,
		&columnsJSON, &createdAt, &m.Rows, &m.Discarded, &m.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return m, err
		}
		return m, fmt.Errorf("scanning run: %w", err)
	}
	if err := json.Unmarshal([]byte(columnsJSON), &m.Columns); err != nil {
		return m, fmt.Errorf("decoding columns of run %s: %w", m.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return m, fmt.Errorf("parsing created_at of run %s: %w", m.ID, err)
	}
	m.CreatedAt = t
	return m, nil
}

// Table reloads the rows of a run in their original order.
func (s *Store) Table(ctx context.Context, runID string) (*table.Table, error) {
	meta, err := s.Run(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT fields, position FROM rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	var out []types.Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table.FromRows(out, meta.Columns), nil
}

// SearchOptions holds parameters for Search.
type SearchOptions struct {
	// Query is matched case-insensitively as a substring of the row text.
	Query string

	// RunID restricts the search to one run.
	RunID string

	// PaperID restricts the search to one paper.
	PaperID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Search returns rows whose text contains opts.Query, ordered by run and
// row sequence.
func (s *Store) Search(ctx context.Context, opts SearchOptions) (*table.Table, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT fields, position FROM rows WHERE 1=1`)
	if opts.Query != "" {
		qb.WriteString(` AND text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Query)+"%")
	}
	if opts.RunID != "" {
		qb.WriteString(` AND run_id = ?`)
		args = append(args, opts.RunID)
	}
	if opts.PaperID != "" {
		qb.WriteString(` AND paper_id = ?`)
		args = append(args, opts.PaperID)
	}
	qb.WriteString(` ORDER BY rowid LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching rows: %w", err)
	}
	defer rows.Close()

	var out []types.Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table.FromRows(out, []string{types.FieldPaperID, types.FieldSection, types.FieldText, types.FieldPosition}), nil
}

// scanRow decodes a stored row. position is restored as an int since JSON
// decoding would otherwise yield a float64.
func scanRow(sc scanner) (types.Row, error) {
	var (
		fieldsJSON string
		position   sql.NullInt64
	)
	if err := sc.Scan(&fieldsJSON, &position); err != nil {
		return nil, fmt.Errorf("scanning row: %w", err)
	}
	var r types.Row
	if err := json.Unmarshal([]byte(fieldsJSON), &r); err != nil {
		return nil, fmt.Errorf("decoding row fields: %w", err)
	}
	if position.Valid {
		r[types.FieldPosition] = int(position.Int64)
	}
	return r, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
