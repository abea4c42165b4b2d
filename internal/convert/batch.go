// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/deckconv/internal/deck"
	"github.com/pdiddy/deckconv/internal/lsdyna"
	"github.com/pdiddy/deckconv/internal/radioss"
	"github.com/pdiddy/deckconv/pkg/model"
	"github.com/pdiddy/deckconv/pkg/types"
)

// StarterExt is the extension of written Starter decks.
const StarterExt = ".rad"

// ErrUnknownDialect is returned for input files whose extension names no
// supported deck dialect.
var ErrUnknownDialect = errors.New("unrecognized deck extension")

// ErrOutputCollision is reported for a deck whose output path is already
// claimed by an earlier deck of the same batch.
var ErrOutputCollision = errors.New("output already written by another deck")

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int

	// Reports has one entry per input path, in input order.
	Reports []types.DeckReport
}

// Total returns the total number of decks processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any deck failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ReadDeck parses a deck of either dialect, chosen by file extension.
func ReadDeck(path string, logger *slog.Logger) (*model.Document, error) {
	dialect, ok := deck.DetectDialect(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, path)
	}
	if dialect == model.DialectLsDyna {
		return lsdyna.ParseFile(path, logger)
	}
	return radioss.ParseFile(path, logger)
}

// StarterPath returns where the Starter deck for input is written.
func StarterPath(input, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outputDir, base+StarterExt)
}

// Batch converts decks into Radioss Starter and Engine files.
type Batch struct {
	cfg       types.ConvertConfig
	logger    *slog.Logger
	converter *Converter
	writer    *radioss.Writer

	// mu serializes progress lines written by concurrent decks.
	mu sync.Mutex
}

// NewBatch returns a Batch. A nil logger discards log output.
func NewBatch(cfg types.ConvertConfig, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Batch{
		cfg:       cfg,
		logger:    logger,
		converter: NewConverter(logger),
		writer:    radioss.NewWriter(cfg.WriterConfig, logger),
	}
}

func (b *Batch) printf(w io.Writer, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// ConvertDeck converts a single deck, writing the Starter and Engine decks
// to the output directory. If the Starter output already exists and
// Overwrite is off, the deck is skipped.
func (b *Batch) ConvertDeck(path string, w io.Writer) types.DeckReport {
	start := time.Now()
	base := filepath.Base(path)
	rep := types.DeckReport{Path: path}
	fail := func(err error) types.DeckReport {
		rep.Status = types.DeckFailed
		rep.Error = err.Error()
		rep.Duration = time.Since(start)
		b.logger.Error("deck conversion failed", "path", path, "error", err)
		b.printf(w, "failed:  %s (%v)\n", base, err)
		return rep
	}

	dialect, ok := deck.DetectDialect(path)
	if !ok {
		return fail(fmt.Errorf("%w: %s", ErrUnknownDialect, path))
	}
	rep.Dialect = dialect

	starter := StarterPath(path, b.cfg.OutputDir)
	if same(starter, path) {
		return fail(fmt.Errorf("output %s would overwrite the input deck", starter))
	}
	if _, err := os.Stat(starter); err == nil && !b.cfg.Overwrite {
		rep.Status = types.DeckSkipped
		rep.Duration = time.Since(start)
		b.printf(w, "skipped: %s (already exists)\n", base)
		return rep
	}

	src, err := ReadDeck(path, b.logger)
	if err != nil {
		return fail(err)
	}
	doc := b.converter.Convert(src)
	b.applyAnalysis(path, doc)

	rep.Counts = doc.Summary()
	rep.Diagnostics = doc.Diagnostics
	if err := b.writer.Export(starter, doc); err != nil {
		var se *model.StructuralError
		if errors.As(err, &se) {
			rep.Diagnostics = append(rep.Diagnostics, se.Diagnostic())
		}
		return fail(err)
	}

	rep.Status = types.DeckConverted
	rep.Starter = starter
	rep.Engine = radioss.EnginePath(starter)
	rep.Duration = time.Since(start)
	b.logger.Info("converted deck", "path", path, "starter", starter,
		"diagnostics", len(rep.Diagnostics), "duration", rep.Duration)
	if n := len(rep.Diagnostics); n > 0 {
		b.printf(w, "converted: %s (%d diagnostics)\n", base, n)
	} else {
		b.printf(w, "converted: %s\n", base)
	}
	return rep
}

// applyAnalysis fills in run control for documents that carry none: the
// Engine deck next to a Radioss input if there is one, then the
// configured analysis, then the defaults.
func (b *Batch) applyAnalysis(path string, doc *model.Document) {
	if doc.Analysis != nil {
		return
	}
	if filepath.Ext(path) == StarterExt {
		if eng, err := radioss.ParseEngineFile(radioss.EnginePath(path), b.logger); err == nil {
			a := eng.Analysis
			doc.Analysis = &a
			for _, d := range eng.Diagnostics {
				doc.AddDiagnostic(d)
			}
			return
		}
	}
	a := model.DefaultAnalysisProperties()
	if b.cfg.Analysis != nil {
		a = *b.cfg.Analysis
	}
	doc.Analysis = &a
}

// Run converts every path with at most cfg.Workers decks in flight,
// printing per-deck status and a summary line to w. A failing deck is
// counted and never stops the others. Decks whose Starter path matches an
// earlier deck's (same base name) fail with ErrOutputCollision before any
// work starts, so no two decks write the same file. Run returns ctx.Err()
// if the context is cancelled; decks not yet started are then counted as
// failed.
func (b *Batch) Run(ctx context.Context, paths []string, w io.Writer) (BatchResult, error) {
	reports := make([]types.DeckReport, len(paths))
	claimed := make(map[string]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i, p := range paths {
		starter := StarterPath(p, b.cfg.OutputDir)
		key := starter
		if abs, err := filepath.Abs(starter); err == nil {
			key = abs
		}
		if prev, ok := claimed[key]; ok {
			reports[i] = b.collision(p, starter, prev, w)
			continue
		}
		claimed[key] = p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				reports[i] = types.DeckReport{Path: p, Status: types.DeckFailed, Error: err.Error()}
				return nil
			}
			reports[i] = b.ConvertDeck(p, w)
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Reports: reports}
	for _, r := range reports {
		switch r.Status {
		case types.DeckConverted:
			result.Converted++
		case types.DeckSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}
	b.printf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result, ctx.Err()
}

func (b *Batch) collision(path, starter, prev string, w io.Writer) types.DeckReport {
	err := fmt.Errorf("%w: %s is the output of %s", ErrOutputCollision, starter, prev)
	b.logger.Error("deck conversion failed", "path", path, "error", err)
	b.printf(w, "failed:  %s (%v)\n", filepath.Base(path), err)
	rep := types.DeckReport{Path: path, Status: types.DeckFailed, Error: err.Error()}
	if d, ok := deck.DetectDialect(path); ok {
		rep.Dialect = d
	}
	return rep
}

// ConvertFiles runs a batch over paths with the given configuration.
func ConvertFiles(ctx context.Context, paths []string, cfg types.ConvertConfig, w io.Writer, logger *slog.Logger) (BatchResult, error) {
	return NewBatch(cfg, logger).Run(ctx, paths, w)
}

func same(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
