// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "catalog")

	store, err := NewStore(types.CatalogConfig{Dir: dir, MaxResults: 20})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func sampleReports() []types.DeckReport {
	return []types.DeckReport{
		{
			Path:     "decks/beam.k",
			Dialect:  model.DialectLsDyna,
			Status:   types.DeckConverted,
			Starter:  "out/beam.rad",
			Engine:   "out/beam.D00",
			Counts:   model.Summary{Nodes: 8, Elements: 1, Diagnostics: 1},
			Duration: 1500 * time.Millisecond,
			Diagnostics: []model.Diagnostic{
				{
					Kind:    model.KindUnmappedKeyword,
					Path:    "decks/beam.k",
					Line:    12,
					Section: "DATABASE_BINARY_D3PLOT",
					Content: "DATABASE_BINARY_D3PLOT",
					Err:     model.ErrUnsupportedVariant,
				},
			},
		},
		{
			Path:    "decks/plate.rad",
			Dialect: model.DialectRadioss,
			Status:  types.DeckSkipped,
		},
		{
			Path:    "decks/empty.k",
			Dialect: model.DialectLsDyna,
			Status:  types.DeckFailed,
			Error:   "model has no mesh",
			Diagnostics: []model.Diagnostic{
				{Kind: model.KindStructural, Path: "decks/empty.k", Err: model.ErrNoMesh},
				{Kind: model.KindLineParse, Path: "decks/empty.k", Line: 3, Content: "x y", Err: errors.New("bad float")},
			},
		},
	}
}

func recordSample(t *testing.T, s *Store, started time.Time) Run {
	t.Helper()
	run, err := s.Record(context.Background(), "out", started, sampleReports())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	return run
}

// --- tests ---

func TestNewStore(t *testing.T) {
	s, dir := testSetup(t)

	if _, err := os.Stat(filepath.Join(dir, dbFile)); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
	for _, table := range []string{"runs", "decks", "diagnostics"} {
		var name string
		err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestNewStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	cfg := types.CatalogConfig{Dir: dir}

	s, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	recordSample(t, s, time.Now())
	s.Close()

	s, err = NewStore(cfg)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()
	runs, err := s.Runs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after reopen, want 1", len(runs))
	}
}

func TestRecord(t *testing.T) {
	s, _ := testSetup(t)
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	run := recordSample(t, s, started)
	if run.ID == "" {
		t.Error("run ID should be set")
	}
	if run.Converted != 1 || run.Skipped != 1 || run.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", run.Converted, run.Skipped, run.Failed)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("started = %v, want %v", run.StartedAt, started)
	}

	runs, err := s.Runs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].ID != run.ID || runs[0].OutputDir != "out" {
		t.Errorf("stored run = %+v", runs[0])
	}
	if !runs[0].StartedAt.Equal(started) {
		t.Errorf("stored start = %v, want %v", runs[0].StartedAt, started)
	}
}

func TestRecord_Empty(t *testing.T) {
	s, _ := testSetup(t)
	run, err := s.Record(context.Background(), "out", time.Now(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if run.Converted+run.Skipped+run.Failed != 0 {
		t.Errorf("empty run has counts %+v", run)
	}
}

func TestRuns_NewestFirst(t *testing.T) {
	s, _ := testSetup(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 3 {
		ids = append(ids, recordSample(t, s, base.Add(time.Duration(i)*time.Minute)).ID)
	}

	runs, err := s.Runs(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("runs not newest first: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestDecks(t *testing.T) {
	s, _ := testSetup(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := recordSample(t, s, base)
	second := recordSample(t, s, base.Add(time.Hour))
	ctx := context.Background()

	tests := []struct {
		name      string
		opts      QueryOptions
		wantPaths []string
	}{
		{
			name:      "all decks newest run first",
			opts:      QueryOptions{},
			wantPaths: []string{"decks/beam.k", "decks/plate.rad", "decks/empty.k", "decks/beam.k", "decks/plate.rad", "decks/empty.k"},
		},
		{
			name:      "by run",
			opts:      QueryOptions{RunID: first.ID},
			wantPaths: []string{"decks/beam.k", "decks/plate.rad", "decks/empty.k"},
		},
		{
			name:      "by status",
			opts:      QueryOptions{RunID: second.ID, Status: types.DeckFailed},
			wantPaths: []string{"decks/empty.k"},
		},
		{
			name:      "by dialect",
			opts:      QueryOptions{RunID: second.ID, Dialect: model.DialectRadioss},
			wantPaths: []string{"decks/plate.rad"},
		},
		{
			name:      "by path substring",
			opts:      QueryOptions{RunID: first.ID, Path: "beam"},
			wantPaths: []string{"decks/beam.k"},
		},
		{
			name:      "by diagnostic kind",
			opts:      QueryOptions{RunID: first.ID, Kind: model.KindLineParse},
			wantPaths: []string{"decks/empty.k"},
		},
		{
			name:      "limit",
			opts:      QueryOptions{MaxResults: 2},
			wantPaths: []string{"decks/beam.k", "decks/plate.rad"},
		},
		{
			name: "no match",
			opts: QueryOptions{Path: "missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.Decks(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, e := range entries {
				got = append(got, e.Path)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.wantPaths) {
				t.Errorf("paths = %v, want %v", got, tt.wantPaths)
			}
		})
	}

	entries, err := s.Decks(ctx, QueryOptions{RunID: second.ID, Path: "beam"})
	if err != nil || len(entries) != 1 {
		t.Fatalf("Decks: %v (%d entries)", err, len(entries))
	}
	e := entries[0]
	if e.RunID != second.ID || e.Starter != "out/beam.rad" || e.Engine != "out/beam.D00" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Counts.Nodes != 8 || e.Counts.Elements != 1 {
		t.Errorf("counts = %+v", e.Counts)
	}
	if e.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", e.Duration)
	}
	if e.RecordedAt.IsZero() {
		t.Error("recorded time should be set")
	}
}

func TestQueryOptions_IsEmpty(t *testing.T) {
	if !(QueryOptions{MaxResults: 5}).IsEmpty() {
		t.Error("options with only a limit should be empty")
	}
	if (QueryOptions{Kind: model.KindIO}).IsEmpty() {
		t.Error("options with a kind filter should not be empty")
	}
}

func TestDiagnostics(t *testing.T) {
	s, _ := testSetup(t)
	run := recordSample(t, s, time.Now())
	ctx := context.Background()

	entries, err := s.Decks(ctx, QueryOptions{RunID: run.ID, Status: types.DeckFailed})
	if err != nil || len(entries) != 1 {
		t.Fatalf("Decks: %v (%d entries)", err, len(entries))
	}
	diags, err := s.Diagnostics(ctx, entries[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(diags))
	}
	if diags[0].Kind != model.KindStructural || diags[0].Message != model.ErrNoMesh.Error() {
		t.Errorf("first diagnostic = %+v", diags[0])
	}
	want := DiagnosticRecord{
		Kind:    model.KindLineParse,
		Path:    "decks/empty.k",
		Line:    3,
		Content: "x y",
		Message: "bad float",
	}
	if diags[1] != want {
		t.Errorf("second diagnostic = %+v, want %+v", diags[1], want)
	}

	skipped, err := s.Decks(ctx, QueryOptions{RunID: run.ID, Status: types.DeckSkipped})
	if err != nil || len(skipped) != 1 {
		t.Fatalf("Decks: %v", err)
	}
	none, err := s.Diagnostics(ctx, skipped[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("skipped deck has %d diagnostics", len(none))
	}
}

func TestExportYAML(t *testing.T) {
	s, dir := testSetup(t)
	run := recordSample(t, s, time.Now())

	path, err := s.ExportYAML(context.Background(), QueryOptions{RunID: run.ID})
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "export.yaml") {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []DeckEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("exported %d decks, want 3", len(entries))
	}
	if len(entries[0].Diagnostics) != 1 || entries[0].Diagnostics[0].Line != 12 {
		t.Errorf("beam diagnostics = %+v", entries[0].Diagnostics)
	}
	if len(entries[2].Diagnostics) != 2 {
		t.Errorf("empty.k has %d exported diagnostics, want 2", len(entries[2].Diagnostics))
	}
}

func TestExportJSON(t *testing.T) {
	s, _ := testSetup(t)
	recordSample(t, s, time.Now())

	path, err := s.ExportJSON(context.Background(), QueryOptions{Status: types.DeckConverted})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []DeckEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "decks/beam.k" {
		t.Fatalf("unexpected export %+v", entries)
	}
	if entries[0].Diagnostics[0].Kind != model.KindUnmappedKeyword {
		t.Errorf("diagnostic kind = %q", entries[0].Diagnostics[0].Kind)
	}
}
