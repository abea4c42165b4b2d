// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog records batch conversion runs in a SQLite database so
// past results and their diagnostics can be listed and exported.
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/deckconv/pkg/types"
)

const (
	dbFile = "catalog.db"

	// timeFormat has fixed width so stored timestamps sort as text.
	timeFormat = "2006-01-02T15:04:05.000000000Z"
)

//go:embed schema.sql
var schemaSQL string

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the catalog database at cfg.Dir/catalog.db
// and creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded batch conversion.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	Converted  int       `json:"converted" yaml:"converted"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Failed     int       `json:"failed" yaml:"failed"`
}

// Record stores a finished batch with its per-deck reports and
// diagnostics in one transaction, and returns the new run.
func (s *Store) Record(ctx context.Context, outputDir string, started time.Time, reports []types.DeckReport) (Run, error) {
	run := Run{
		ID:         uuid.New().String(),
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		OutputDir:  outputDir,
	}
	for _, r := range reports {
		switch r.Status {
		case types.DeckConverted:
			run.Converted++
		case types.DeckSkipped:
			run.Skipped++
		default:
			run.Failed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, output_dir, converted, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(timeFormat), run.FinishedAt.Format(timeFormat),
		run.OutputDir, run.Converted, run.Skipped, run.Failed,
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	deckStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO decks (run_id, path, dialect, status, starter, engine, counts, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing deck insert: %w", err)
	}
	defer deckStmt.Close()

	diagStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO diagnostics (deck_id, kind, path, line, section, content, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing diagnostic insert: %w", err)
	}
	defer diagStmt.Close()

	for _, r := range reports {
		countsJSON, _ := json.Marshal(r.Counts)
		res, err := deckStmt.ExecContext(ctx,
			run.ID, r.Path, string(r.Dialect), string(r.Status), r.Starter, r.Engine,
			string(countsJSON), r.Error, r.Duration.Milliseconds(),
		)
		if err != nil {
			return Run{}, fmt.Errorf("inserting deck %s: %w", r.Path, err)
		}
		deckID, err := res.LastInsertId()
		if err != nil {
			return Run{}, fmt.Errorf("reading deck id: %w", err)
		}
		for _, d := range r.Diagnostics {
			_, err := diagStmt.ExecContext(ctx,
				deckID, string(d.Kind), d.Path, d.Line, d.Section, d.Content, d.Message(),
			)
			if err != nil {
				return Run{}, fmt.Errorf("inserting diagnostic for %s: %w", r.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// Runs returns the most recent runs, newest first. A limit of zero uses
// the store default.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, output_dir, converted, skipped, failed
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.OutputDir, &r.Converted, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeFormat, started)
		r.FinishedAt, _ = time.Parse(timeFormat, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
