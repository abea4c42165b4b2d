// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

// QueryOptions holds filters for deck listings.
type QueryOptions struct {
	// RunID restricts results to one run.
	RunID string

	// Status filters by conversion outcome.
	Status types.DeckStatus

	// Dialect filters by input dialect.
	Dialect model.Dialect

	// Path matches decks whose input path contains this substring.
	Path string

	// Kind keeps only decks with at least one diagnostic of this kind.
	Kind model.DiagnosticKind

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no filters.
func (q QueryOptions) IsEmpty() bool {
	return q.RunID == "" && q.Status == "" && q.Dialect == "" && q.Path == "" && q.Kind == ""
}

// DeckEntry is a recorded deck with the run it belongs to.
type DeckEntry struct {
	ID          int64              `json:"id" yaml:"id"`
	RunID       string             `json:"run_id" yaml:"run_id"`
	Path        string             `json:"path" yaml:"path"`
	Dialect     model.Dialect      `json:"dialect" yaml:"dialect"`
	Status      types.DeckStatus   `json:"status" yaml:"status"`
	Starter     string             `json:"starter,omitempty" yaml:"starter,omitempty"`
	Engine      string             `json:"engine,omitempty" yaml:"engine,omitempty"`
	Counts      model.Summary      `json:"counts" yaml:"counts"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
	Duration    time.Duration      `json:"duration" yaml:"duration"`
	RecordedAt  time.Time          `json:"recorded_at" yaml:"recorded_at"`
	Diagnostics []DiagnosticRecord `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// DiagnosticRecord is a stored diagnostic. The cause is kept as text.
type DiagnosticRecord struct {
	Kind    model.DiagnosticKind `json:"kind" yaml:"kind"`
	Path    string               `json:"path" yaml:"path"`
	Line    int                  `json:"line,omitempty" yaml:"line,omitempty"`
	Section string               `json:"section,omitempty" yaml:"section,omitempty"`
	Content string               `json:"content" yaml:"content"`
	Message string               `json:"message" yaml:"message"`
}

// Decks lists recorded decks matching opts, newest run first and in
// input order within a run.
func (s *Store) Decks(ctx context.Context, opts QueryOptions) ([]DeckEntry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT d.id, d.run_id, d.path, d.dialect, d.status, d.starter, d.engine,
			d.counts, d.error, d.duration_ms, r.finished_at
		FROM decks d
		JOIN runs r ON r.id = d.run_id
		WHERE 1=1`)

	if opts.RunID != "" {
		qb.WriteString(` AND d.run_id = ?`)
		args = append(args, opts.RunID)
	}
	if opts.Status != "" {
		qb.WriteString(` AND d.status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Dialect != "" {
		qb.WriteString(` AND d.dialect = ?`)
		args = append(args, string(opts.Dialect))
	}
	if opts.Path != "" {
		qb.WriteString(` AND instr(d.path, ?) > 0`)
		args = append(args, opts.Path)
	}
	if opts.Kind != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM diagnostics g WHERE g.deck_id = d.id AND g.kind = ?)`)
		args = append(args, string(opts.Kind))
	}

	qb.WriteString(` ORDER BY r.started_at DESC, d.id ASC LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []DeckEntry
	for rows.Next() {
		var (
			e                       DeckEntry
			dialect, status         string
			starter, engine, errMsg sql.NullString
			countsJSON              sql.NullString
			durationMS              int64
			finished                string
		)
		if err := rows.Scan(
			&e.ID, &e.RunID, &e.Path, &dialect, &status, &starter, &engine,
			&countsJSON, &errMsg, &durationMS, &finished,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Dialect = model.Dialect(dialect)
		e.Status = types.DeckStatus(status)
		e.Starter = starter.String
		e.Engine = engine.String
		e.Error = errMsg.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.RecordedAt, _ = time.Parse(timeFormat, finished)
		if countsJSON.Valid {
			json.Unmarshal([]byte(countsJSON.String), &e.Counts)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Diagnostics returns the stored diagnostics of one deck in recorded order.
func (s *Store) Diagnostics(ctx context.Context, deckID int64) ([]DiagnosticRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, path, line, section, content, message
		 FROM diagnostics WHERE deck_id = ? ORDER BY id`, deckID)
	if err != nil {
		return nil, fmt.Errorf("querying diagnostics: %w", err)
	}
	defer rows.Close()

	var out []DiagnosticRecord
	for rows.Next() {
		var (
			d                               DiagnosticRecord
			kind                            string
			path, section, content, message sql.NullString
			line                            sql.NullInt64
		)
		if err := rows.Scan(&kind, &path, &line, &section, &content, &message); err != nil {
			return nil, fmt.Errorf("scanning diagnostic: %w", err)
		}
		d.Kind = model.DiagnosticKind(kind)
		d.Path = path.String
		d.Line = int(line.Int64)
		d.Section = section.String
		d.Content = content.String
		d.Message = message.String
		out = append(out, d)
	}
	return out, rows.Err()
}
