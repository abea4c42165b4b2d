// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package radioss

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pdiddy/deckconv/internal/deck"
	"github.com/pdiddy/deckconv/pkg/model"
)

// Engine is the run control read back from an Engine deck.
type Engine struct {
	RunName     string
	Analysis    model.AnalysisProperties
	Diagnostics []model.Diagnostic
}

// ParseEngine reads an Engine deck. Output toggles, damping and the
// time-integration selector are set only by their keywords; numeric
// run control missing from the deck keeps its default value.
func ParseEngine(r io.Reader, path string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	eng := &Engine{Analysis: model.DefaultAnalysisProperties()}
	a := &eng.Analysis
	a.StressOutput, a.StrainOutput, a.DisplacementOutput = false, false, false
	a.TimeIntegration = ""

	tok := deck.NewTokenizer(r, deck.Radioss)
	report := func(l deck.Line, err error) {
		logger.Warn("engine diagnostic", "path", path, "line", l.Number, "error", err)
		eng.Diagnostics = append(eng.Diagnostics, model.Diagnostic{
			Kind:    model.KindLineParse,
			Path:    path,
			Line:    l.Number,
			Section: l.Section.Header,
			Content: l.Text,
			Err:     err,
		})
	}
	for l := range tok.Lines() {
		parts := l.Section.Parts()
		if len(parts) == 0 {
			continue
		}
		vals, err := deck.ParseFloats(l.Fields())
		if err != nil {
			report(l, err)
			continue
		}
		switch {
		case parts[0] == "RUN" && len(vals) >= 1:
			a.TerminationTime = vals[0]
		case parts[0] == "DT" && len(vals) >= 1:
			a.TimeStep = vals[0]
			if len(vals) > 1 {
				a.TimeStepScale = vals[1]
			}
		case parts[0] == "PRINT" && len(vals) >= 1:
			a.PrintInterval = vals[0]
		case parts[0] == "ANIM" && len(parts) > 1 && parts[1] == "DT" && len(vals) >= 2:
			a.AnimationInterval = vals[1]
		case parts[0] == "DAMPING" && len(vals) >= 1:
			a.Damping = vals[0]
		default:
			report(l, fmt.Errorf("%w: unexpected data under %s", model.ErrArity, l.Section.Header))
		}
	}
	if err := tok.Err(); err != nil {
		return eng, fmt.Errorf("reading %s: %w", path, err)
	}

	// Keyword-only sections carry no data lines, so they are read from
	// the header list.
	for _, sec := range tok.Sections() {
		parts := sec.Parts()
		switch {
		case len(parts) >= 2 && parts[0] == "RUN":
			eng.RunName = parts[1]
		case len(parts) == 3 && parts[0] == "ANIM" && parts[2] == "STRESS":
			a.StressOutput = true
		case len(parts) == 3 && parts[0] == "ANIM" && parts[2] == "STRAIN":
			a.StrainOutput = true
		case len(parts) == 3 && parts[0] == "ANIM" && parts[2] == "DISP":
			a.DisplacementOutput = true
		case len(parts) == 2 && parts[0] == "DEF_CENT" && parts[1] == "ON":
			a.TimeIntegration = model.CentralDifference
		}
	}
	if a.AnimationInterval == a.PrintInterval {
		a.AnimationInterval = 0
	}
	return eng, nil
}

// ParseEngineFile opens and parses an Engine deck.
func ParseEngineFile(path string, logger *slog.Logger) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deck %s: %w", path, err)
	}
	defer f.Close()
	return ParseEngine(f, path, logger)
}
