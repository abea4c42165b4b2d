// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lsdyna reads the LS-DYNA keyword subset deckconv converts:
// nodes, shell and solid elements, parts, materials, sets, nodal SPCs,
// nodal loads, contacts and basic run control.
package lsdyna

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdiddy/deckconv/internal/deck"
	"github.com/pdiddy/deckconv/pkg/model"
)

// keyword is one header occurrence split into family and variant:
// "*CONTACT_TIED_SURFACE_TO_SURFACE" has family CONTACT and variant
// TIED_SURFACE_TO_SURFACE.
type keyword struct {
	name    string
	family  string
	variant string
}

func splitKeyword(sec deck.Section) keyword {
	name := strings.TrimPrefix(sec.Header, "*")
	if f := strings.Fields(name); len(f) > 0 {
		name = f[0]
	}
	family, variant, _ := strings.Cut(name, "_")
	return keyword{name: name, family: family, variant: variant}
}

// occurrence is the parse state of one keyword occurrence.
type occurrence struct {
	sec  deck.Section
	kw   keyword
	h    *handler
	skip bool

	// unknown keywords are reported on their first data line.
	unknown  bool
	reported bool

	// lines counts the data lines seen so far.
	lines int

	// title marks a _TITLE/_ID keyword whose first card is a heading.
	title bool
	name  string

	elementKind model.ElementKind
	law         string
	setKind     model.SetKind
	setName     string

	constraintID   int
	constraintOpen bool

	loadID    int
	loadDOF   int
	loadScale float64

	contact     *model.Contact
	contactCard int
	contactLine deck.Line
}

type parser struct {
	doc    *model.Document
	path   string
	logger *slog.Logger
	cur    *occurrence
}

// Parse reads an LS-DYNA keyword deck. Records the parser does not
// handle become diagnostics; the error is non-nil only when reading r
// fails.
func Parse(r io.Reader, path string, logger *slog.Logger) (*model.Document, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &parser{
		doc:    model.NewDocument(model.DialectLsDyna, path),
		path:   path,
		logger: logger,
	}
	if err := deck.NewTokenizer(r, deck.LsDyna).Walk(p); err != nil {
		return p.doc, fmt.Errorf("reading %s: %w", path, err)
	}
	for _, d := range model.Validate(p.doc) {
		p.doc.AddDiagnostic(d)
	}
	logger.Debug("parsed ls-dyna deck", "path", path, "nodes", len(p.doc.Nodes),
		"elements", len(p.doc.Elements), "diagnostics", len(p.doc.Diagnostics))
	return p.doc, nil
}

// ParseFile opens and parses an LS-DYNA keyword deck.
func ParseFile(path string, logger *slog.Logger) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deck %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path, logger)
}

// Open binds a keyword occurrence to its handler.
func (p *parser) Open(sec deck.Section) {
	o := &occurrence{sec: sec, kw: splitKeyword(sec), skip: true}
	p.cur = o
	if ignored[o.kw.family] {
		return
	}
	h, ok := handlers[o.kw.family]
	if !ok {
		o.unknown = true
		return
	}
	o.h = h
	if h.open != nil {
		if err := h.open(p, o); err != nil {
			if errors.Is(err, model.ErrUnsupportedVariant) {
				p.unmapped(o, err)
			} else {
				p.diag(model.Diagnostic{
					Kind:    model.KindLineParse,
					Line:    sec.Line,
					Section: sec.Header,
					Content: sec.Header,
					Err:     err,
				})
			}
			return
		}
	}
	o.skip = false
}

// Line feeds one data line to the open handler.
func (p *parser) Line(l deck.Line) {
	o := p.cur
	if o.unknown && !o.reported {
		o.reported = true
		p.unmapped(o, fmt.Errorf("%w: %s", model.ErrUnknownKeyword, o.kw.name))
	}
	if o.skip {
		return
	}
	n := o.lines
	o.lines++
	if err := o.h.line(p, o, l, n); err != nil {
		kind := model.KindLineParse
		if errors.Is(err, model.ErrUnsupportedVariant) {
			kind = model.KindUnmappedKeyword
		}
		p.diag(model.Diagnostic{
			Kind:    kind,
			Line:    l.Number,
			Section: l.Section.Header,
			Content: l.Text,
			Err:     err,
		})
	}
}

// Close flushes records that span several cards.
func (p *parser) Close(deck.Section) {
	o := p.cur
	if o.skip || o.h.close == nil {
		return
	}
	if err := o.h.close(p, o); err != nil {
		p.diag(model.Diagnostic{
			Kind:    model.KindLineParse,
			Line:    o.sec.Line,
			Section: o.sec.Header,
			Content: o.sec.Header,
			Err:     err,
		})
	}
}

func (p *parser) unmapped(o *occurrence, err error) {
	p.doc.MarkUnmapped(o.kw.name)
	p.diag(model.Diagnostic{
		Kind:    model.KindUnmappedKeyword,
		Line:    o.sec.Line,
		Section: o.sec.Header,
		Content: o.sec.Header,
		Err:     err,
	})
}

// origin records l as the source line of a record.
func (p *parser) origin(l deck.Line, kind string, key any) {
	p.doc.SetOrigin(model.RecordLabel(kind, key), model.Origin{
		Line:    l.Number,
		Section: l.Section.Header,
		Content: l.Text,
	})
}

func (p *parser) diag(d model.Diagnostic) {
	d.Path = p.path
	p.logger.Warn("deck diagnostic", "path", d.Path, "line", d.Line, "kind", d.Kind,
		"content", d.Content, "error", d.Err)
	p.doc.AddDiagnostic(d)
}
