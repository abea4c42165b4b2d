// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/deckconv/internal/testutil"
	"github.com/pdiddy/deckconv/pkg/types"
)

func TestIsDeck(t *testing.T) {
	for path, want := range map[string]bool{
		"a.k":       true,
		"a.KEY":     true,
		"b/c.dyn":   true,
		"model.rad": true,
		"model.D00": false,
		"notes.txt": false,
		"noext":     false,
	} {
		if got := IsDeck(path); got != want {
			t.Errorf("IsDeck(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDeckFiles(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	for _, dir := range []string{"sub", ".hidden", "out"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeDeck(t, root, "b.k", dynaDeck)
	writeDeck(t, root, "a.rad", radDeck)
	writeDeck(t, root, "readme.txt", "")
	writeDeck(t, filepath.Join(root, "sub"), "c.key", dynaDeck)
	writeDeck(t, filepath.Join(root, ".hidden"), "d.k", dynaDeck)
	writeDeck(t, out, "a.rad", radDeck)
	explicit := writeDeck(t, t.TempDir(), "notes.txt", "")

	got, err := DeckFiles([]string{root, explicit}, out)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "a.rad"),
		filepath.Join(root, "b.k"),
		filepath.Join(root, "sub", "c.key"),
		explicit,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := DeckFiles([]string{filepath.Join(root, "missing")}, ""); err == nil {
		t.Error("expected error for a missing path")
	}
}

// syncBuffer guards a buffer written by the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestWatcher(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(inDir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(types.ConvertConfig{OutputDir: outDir, Workers: 2}, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.SetDebounce(50 * time.Millisecond)
	if err := w.Add(inDir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan BatchResult, 4)
	var log syncBuffer
	stopped := make(chan error, 1)
	go func() { stopped <- w.Run(ctx, &log, func(r BatchResult) { results <- r }) }()

	writeDeck(t, inDir, "notes.txt", "ignored")
	writeDeck(t, inDir, "model.k", dynaDeck)

	select {
	case r := <-results:
		if r.Converted != 1 || r.Total() != 1 {
			t.Errorf("result = %+v, want one converted deck", r)
		}
		if r.Reports[0].Path != filepath.Join(inDir, "model.k") {
			t.Errorf("converted %s", r.Reports[0].Path)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("no conversion after writing a deck")
	}
	if _, err := os.Stat(filepath.Join(outDir, "model.rad")); err != nil {
		t.Errorf("starter not written: %v", err)
	}

	cancel()
	select {
	case err := <-stopped:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	w, err := NewWatcher(types.ConvertConfig{OutputDir: outDir, Workers: 1}, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.SetDebounce(50 * time.Millisecond)
	if err := w.Add(inDir); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan BatchResult, 4)
	go func() { _ = w.Run(ctx, &syncBuffer{}, func(r BatchResult) { results <- r }) }()

	sub := filepath.Join(inDir, "plates")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeDeck(t, sub, "plate.k", dynaDeck)

	deadline := time.After(10 * time.Second)
	for {
		select {
		case <-results:
			if _, err := os.Stat(filepath.Join(outDir, "plate.rad")); err == nil {
				return
			}
		case <-deadline:
			t.Fatal("deck in a new directory was never converted")
		}
	}
}
