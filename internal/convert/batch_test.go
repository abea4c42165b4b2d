// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/deckconv/internal/radioss"
	"github.com/pdiddy/deckconv/internal/testutil"
	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

const radDeck = `/NODE
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
/SH3N/1
1 1 2 3
/PROP/SHELL/1
2.0
/MAT/LAW2/1
Steel 210000.0 0.3 7.8e-9
`

// writeDeck creates a deck file under dir and returns its path.
func writeDeck(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(outDir string) types.ConvertConfig {
	return types.ConvertConfig{OutputDir: outDir, Workers: 2}
}

func TestConvertDeck(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		preCreate  bool // create the Starter output before running
		overwrite  bool
		wantStatus types.DeckStatus
		wantLog    string
	}{
		{
			name:       "ls-dyna deck",
			file:       "model.k",
			content:    dynaDeck,
			wantStatus: types.DeckConverted,
			wantLog:    "converted: model.k",
		},
		{
			name:       "radioss deck",
			file:       "model.rad",
			content:    radDeck,
			wantStatus: types.DeckConverted,
			wantLog:    "converted: model.rad\n",
		},
		{
			name:       "skip existing output",
			file:       "model.k",
			content:    dynaDeck,
			preCreate:  true,
			wantStatus: types.DeckSkipped,
			wantLog:    "skipped: model.k (already exists)",
		},
		{
			name:       "overwrite existing output",
			file:       "model.k",
			content:    dynaDeck,
			preCreate:  true,
			overwrite:  true,
			wantStatus: types.DeckConverted,
			wantLog:    "converted:",
		},
		{
			name:       "no mesh",
			file:       "materials.k",
			content:    "*MAT_ELASTIC\n1 7.85e-9 2.1e5 0.3\n",
			wantStatus: types.DeckFailed,
			wantLog:    "failed:  materials.k",
		},
		{
			name:       "unknown extension",
			file:       "notes.txt",
			content:    "hello",
			wantStatus: types.DeckFailed,
			wantLog:    "failed:  notes.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inDir := t.TempDir()
			outDir := filepath.Join(t.TempDir(), "out")
			input := writeDeck(t, inDir, tt.file, tt.content)

			if tt.preCreate {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					t.Fatal(err)
				}
				writeDeck(t, outDir, "model.rad", "existing")
			}

			cfg := testConfig(outDir)
			cfg.Overwrite = tt.overwrite
			var log bytes.Buffer
			rep := NewBatch(cfg, testutil.NewTestLogger(t)).ConvertDeck(input, &log)

			if rep.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q (error %q)", rep.Status, tt.wantStatus, rep.Error)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
			if rep.Status == types.DeckConverted {
				for _, p := range []string{rep.Starter, rep.Engine} {
					if _, err := os.Stat(p); err != nil {
						t.Errorf("expected output file at %s", p)
					}
				}
			}
		})
	}
}

func TestConvertDeck_Output(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	input := writeDeck(t, inDir, "model.k", dynaDeck)

	var log bytes.Buffer
	rep := NewBatch(testConfig(outDir), nil).ConvertDeck(input, &log)
	if rep.Status != types.DeckConverted {
		t.Fatalf("status = %q, error %q", rep.Status, rep.Error)
	}
	if rep.Dialect != model.DialectLsDyna {
		t.Errorf("dialect = %q, want lsdyna", rep.Dialect)
	}
	if rep.Counts.Nodes != 4 || rep.Counts.Elements != 1 || rep.Counts.Contacts != 2 {
		t.Errorf("unexpected counts %+v", rep.Counts)
	}

	doc, err := radioss.ParseFile(rep.Starter, nil)
	if err != nil {
		t.Fatalf("reading starter: %v", err)
	}
	if len(doc.Nodes) != 4 {
		t.Errorf("starter has %d nodes, want 4", len(doc.Nodes))
	}
	if len(doc.Materials) != 2 || doc.Materials[0].Law != "LAW36" {
		t.Errorf("unexpected materials %+v", doc.Materials)
	}

	eng, err := radioss.ParseEngineFile(rep.Engine, nil)
	if err != nil {
		t.Fatalf("reading engine: %v", err)
	}
	// Section headers are read upper-cased.
	if eng.RunName != "MODEL" {
		t.Errorf("run name = %q, want MODEL", eng.RunName)
	}
	if eng.Analysis.TerminationTime != model.DefaultAnalysisProperties().TerminationTime {
		t.Errorf("termination time = %g, want the default", eng.Analysis.TerminationTime)
	}
}

func TestConvertDeck_AnalysisSources(t *testing.T) {
	t.Run("deck control cards", func(t *testing.T) {
		inDir := t.TempDir()
		deck := strings.Replace(dynaDeck, "*END", "*CONTROL_TERMINATION\n0.02\n*END", 1)
		input := writeDeck(t, inDir, "ctrl.k", deck)
		cfg := testConfig(filepath.Join(inDir, "out"))
		cfg.Analysis = &model.AnalysisProperties{TerminationTime: 5}

		rep := NewBatch(cfg, nil).ConvertDeck(input, &bytes.Buffer{})
		eng, err := radioss.ParseEngineFile(rep.Engine, nil)
		if err != nil {
			t.Fatal(err)
		}
		if eng.Analysis.TerminationTime != 0.02 {
			t.Errorf("termination time = %g, want 0.02", eng.Analysis.TerminationTime)
		}
	})

	t.Run("configured analysis", func(t *testing.T) {
		inDir := t.TempDir()
		input := writeDeck(t, inDir, "cfg.k", dynaDeck)
		a := model.DefaultAnalysisProperties()
		a.TerminationTime = 0.5
		cfg := testConfig(filepath.Join(inDir, "out"))
		cfg.Analysis = &a

		rep := NewBatch(cfg, nil).ConvertDeck(input, &bytes.Buffer{})
		eng, err := radioss.ParseEngineFile(rep.Engine, nil)
		if err != nil {
			t.Fatal(err)
		}
		if eng.Analysis.TerminationTime != 0.5 {
			t.Errorf("termination time = %g, want 0.5", eng.Analysis.TerminationTime)
		}
	})

	t.Run("sibling engine deck", func(t *testing.T) {
		inDir := t.TempDir()
		input := writeDeck(t, inDir, "crash.rad", radDeck)
		writeDeck(t, inDir, "crash.D00", "/RUN/crash/1\n0.25\n")

		rep := NewBatch(testConfig(filepath.Join(inDir, "out")), nil).ConvertDeck(input, &bytes.Buffer{})
		eng, err := radioss.ParseEngineFile(rep.Engine, nil)
		if err != nil {
			t.Fatal(err)
		}
		if eng.Analysis.TerminationTime != 0.25 {
			t.Errorf("termination time = %g, want 0.25", eng.Analysis.TerminationTime)
		}
	})
}

func TestConvertDeck_RefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	input := writeDeck(t, dir, "model.rad", radDeck)
	cfg := testConfig(dir)
	cfg.Overwrite = true

	rep := NewBatch(cfg, nil).ConvertDeck(input, &bytes.Buffer{})
	if rep.Status != types.DeckFailed {
		t.Errorf("status = %q, want failed", rep.Status)
	}
	data, _ := os.ReadFile(input)
	if string(data) != radDeck {
		t.Error("input deck was modified")
	}
}

func TestConvertFiles(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	// Four decks: two convert, one is pre-existing, one has no mesh.
	paths := []string{
		writeDeck(t, inDir, "a.k", dynaDeck),
		writeDeck(t, inDir, "b.k", dynaDeck),
		writeDeck(t, inDir, "c.rad", radDeck),
		writeDeck(t, inDir, "d.k", "*MAT_ELASTIC\n1 7.85e-9 2.1e5 0.3\n"),
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeDeck(t, outDir, "b.rad", "existing")

	var log bytes.Buffer
	result, err := ConvertFiles(context.Background(), paths, testConfig(outDir), &log, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("ConvertFiles: %v", err)
	}

	if result.Converted != 2 {
		t.Errorf("converted = %d, want 2", result.Converted)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 4 {
		t.Errorf("total = %d, want 4", result.Total())
	}
	for i, rep := range result.Reports {
		if rep.Path != paths[i] {
			t.Errorf("report %d is for %s, want %s", i, rep.Path, paths[i])
		}
	}
	if !strings.Contains(log.String(), "Batch summary: 2 converted, 1 skipped, 1 failed (total: 4)") {
		t.Errorf("batch output should contain summary line, got %q", log.String())
	}

	failed := result.Reports[3]
	var found bool
	for _, d := range failed.Diagnostics {
		if d.Kind == model.KindStructural && errors.Is(d, model.ErrNoMesh) {
			found = true
		}
	}
	if !found {
		t.Errorf("failed deck should carry a structural diagnostic, got %+v", failed.Diagnostics)
	}
}

func TestConvertFiles_OutputCollision(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(inDir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	paths := []string{
		writeDeck(t, filepath.Join(inDir, "a"), "model.rad", radDeck),
		writeDeck(t, filepath.Join(inDir, "b"), "model.rad", radDeck),
		writeDeck(t, inDir, "model.k", dynaDeck),
	}

	cfg := testConfig(outDir)
	cfg.Overwrite = true
	cfg.Workers = 3
	var log bytes.Buffer
	result, err := ConvertFiles(context.Background(), paths, cfg, &log, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("ConvertFiles: %v", err)
	}

	if result.Converted != 1 || result.Failed != 2 {
		t.Errorf("converted = %d, failed = %d; want 1 and 2", result.Converted, result.Failed)
	}
	if got := result.Reports[0].Status; got != types.DeckConverted {
		t.Errorf("first deck status = %s, want converted", got)
	}
	for _, rep := range result.Reports[1:] {
		if rep.Status != types.DeckFailed {
			t.Errorf("%s status = %s, want failed", rep.Path, rep.Status)
		}
		if !strings.Contains(rep.Error, ErrOutputCollision.Error()) || !strings.Contains(rep.Error, paths[0]) {
			t.Errorf("%s error = %q, want a collision with %s", rep.Path, rep.Error, paths[0])
		}
	}
	if result.Reports[2].Dialect != model.DialectLsDyna {
		t.Errorf("collided deck dialect = %q, want lsdyna", result.Reports[2].Dialect)
	}
	if !strings.Contains(log.String(), "failed:  model.k (") {
		t.Errorf("batch output should report the collision, got %q", log.String())
	}
}

func TestConvertFiles_Cancelled(t *testing.T) {
	inDir := t.TempDir()
	paths := []string{writeDeck(t, inDir, "a.k", dynaDeck)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ConvertFiles(ctx, paths, testConfig(filepath.Join(inDir, "out")), &bytes.Buffer{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
}

func TestReadDeck(t *testing.T) {
	dir := t.TempDir()
	doc, err := ReadDeck(writeDeck(t, dir, "a.k", dynaDeck), nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Dialect != model.DialectLsDyna {
		t.Errorf("dialect = %q", doc.Dialect)
	}
	if _, err := ReadDeck(writeDeck(t, dir, "a.txt", ""), nil); !errors.Is(err, ErrUnknownDialect) {
		t.Errorf("err = %v, want ErrUnknownDialect", err)
	}
}
