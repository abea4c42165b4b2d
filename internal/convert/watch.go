// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/deckconv/pkg/types"
)

// DefaultDebounce is how long a watcher waits after the last change
// before converting.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-converts decks when they change on disk. Changes arriving
// within the debounce window are converted together as one batch.
type Watcher struct {
	batch    *Batch
	logger   *slog.Logger
	notify   *fsnotify.Watcher
	outDir   string
	debounce time.Duration
}

// NewWatcher returns a Watcher converting with cfg. Existing outputs are
// always replaced, since a change to a deck makes its output stale.
func NewWatcher(cfg types.ConvertConfig, logger *slog.Logger) (*Watcher, error) {
	cfg.Overwrite = true
	b := NewBatch(cfg, logger)
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{
		batch:    b,
		logger:   b.logger,
		notify:   fw,
		outDir:   cfg.OutputDir,
		debounce: DefaultDebounce,
	}, nil
}

// SetDebounce changes the debounce window.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Add watches dir and its subdirectories, except hidden ones and the
// output directory.
func (w *Watcher) Add(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (strings.HasPrefix(d.Name(), ".") || w.inOutput(path)) {
			return filepath.SkipDir
		}
		w.logger.Debug("watching", "dir", path)
		return w.notify.Add(path)
	})
}

// addCreated starts watching a directory created after Add and returns
// the decks already inside it, which were written before the watch took
// hold. Anything that is not a visible directory returns nil.
func (w *Watcher) addCreated(path string) []string {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() || strings.HasPrefix(filepath.Base(path), ".") {
		return nil
	}
	if err := w.Add(path); err != nil {
		w.logger.Warn("cannot watch new directory", "dir", path, "error", err)
		return nil
	}
	decks, err := DeckFiles([]string{path}, w.outDir)
	if err != nil {
		w.logger.Warn("cannot list new directory", "dir", path, "error", err)
		return nil
	}
	return decks
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.notify.Close()
}

func (w *Watcher) inOutput(path string) bool {
	if w.outDir == "" {
		return false
	}
	out, err1 := filepath.Abs(w.outDir)
	p, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return false
	}
	return p == out || strings.HasPrefix(p, out+string(filepath.Separator))
}

// Run converts changed decks until ctx is cancelled, printing progress to
// out. done, if not nil, is called after every batch. Run returns nil on
// cancellation.
func (w *Watcher) Run(ctx context.Context, out io.Writer, done func(BatchResult)) error {
	pending := make(map[string]bool)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.notify.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || w.inOutput(ev.Name) {
				continue
			}
			var changed []string
			if ev.Op&fsnotify.Create != 0 {
				changed = w.addCreated(ev.Name)
			}
			if IsDeck(ev.Name) {
				changed = append(changed, ev.Name)
			}
			if len(changed) == 0 {
				continue
			}
			w.logger.Debug("decks changed", "paths", changed, "op", ev.Op.String())
			for _, p := range changed {
				pending[p] = true
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)

			result, err := w.batch.Run(ctx, paths, out)
			if err != nil {
				return nil
			}
			if done != nil {
				done(result)
			}

		case err, ok := <-w.notify.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
