// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists loaded tables to a local SQLite database so that a
// run can be inspected, searched, or reloaded without re-reading the corpus.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/cord-loader/internal/table"
	"github.com/pdiddy/cord-loader/pkg/types"
)

const dbFile = "cord.db"

// Store manages the run database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the database at cfg.DBDir/cord.db and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DBDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			section_key TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			lim INTEGER NOT NULL,
			split INTEGER NOT NULL,
			columns TEXT NOT NULL,
			created_at TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			discarded INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rows (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			paper_id TEXT NOT NULL,
			position INTEGER,
			section TEXT,
			text TEXT,
			fields TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_run ON rows(run_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_paper_id ON rows(paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunMeta describes the load that produced a table.
type RunMeta struct {
	ID         string    `json:"id" yaml:"id"`
	SectionKey string    `json:"section_key" yaml:"section_key"`
	Offset     int       `json:"offset" yaml:"offset"`
	Limit      int       `json:"limit" yaml:"limit"`
	Split      bool      `json:"split" yaml:"split"`
	Columns    []string  `json:"columns" yaml:"columns"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	Rows       int       `json:"rows" yaml:"rows"`
	Discarded  int       `json:"discarded" yaml:"discarded"`
	Failed     int       `json:"failed" yaml:"failed"`
}

// SaveRun writes t and its metadata in one transaction. When meta.ID is empty
// a new UUID is assigned. It returns the run ID.
func (s *Store) SaveRun(ctx context.Context, meta RunMeta, t *table.Table) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	columnsJSON, _ := json.Marshal(t.Columns)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, section_key, start_offset, lim, split, columns, created_at, row_count, discarded, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.SectionKey, meta.Offset, meta.Limit, meta.Split, string(columnsJSON),
		meta.CreatedAt.Format(time.RFC3339Nano), t.Len(), meta.Discarded, meta.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rows (run_id, seq, paper_id, position, section, text, fields)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range t.Rows {
		fieldsJSON, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("marshaling row %d: %w", i, err)
		}
		var position sql.NullInt64
		if p, ok := r[types.FieldPosition].(int); ok {
			position = sql.NullInt64{Int64: int64(p), Valid: true}
		}
		_, err = stmt.ExecContext(ctx,
			meta.ID, i, r.PaperID(), position,
			nullString(r[types.FieldSection]), nullString(r[types.FieldText]),
			string(fieldsJSON),
		)
		if err != nil {
			return "", fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return meta.ID, nil
}

func nullString(v any) sql.NullString {
	s, ok := v.(string)
	return sql.NullString{String: s, Valid: ok}
}
