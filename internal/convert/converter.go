// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert maps LS-DYNA models onto their Radioss equivalents and
// runs batch deck conversion.
package convert

import (
	"fmt"
	"log/slog"

	"github.com/pdiddy/deckconv/pkg/model"
)

// Converter rewrites dialect-specific records of a document into Radioss
// records. It never modifies its input.
type Converter struct {
	logger *slog.Logger
}

// NewConverter returns a Converter. A nil logger discards log output.
func NewConverter(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{logger: logger}
}

// Convert returns a new Radioss document built from src. Nodes, elements,
// properties, sets and rigid bodies carry over unchanged; material laws
// and contact types go through MaterialLaw and ContactType. Keywords the
// parser could not map, and laws or types with no Radioss equivalent, are
// reported as unmapped-keyword diagnostics on the result. Converting a
// Radioss document again yields an equal document.
func (c *Converter) Convert(src *model.Document) *model.Document {
	dst := src.Clone()
	dst.Dialect = model.DialectRadioss

	if src.Dialect != model.DialectRadioss {
		for _, kw := range src.Unmapped {
			c.logger.Warn("dropping unmapped keyword", "path", src.Source, "keyword", kw)
			c.report(dst, kw, fmt.Errorf("%w: %s has no Radioss mapping", model.ErrUnsupportedVariant, kw))
		}
	}

	for i := range dst.Materials {
		m := &dst.Materials[i]
		law, ok := MaterialLaw(m.Law)
		if !ok {
			c.logger.Warn("unmapped material law", "path", src.Source, "material", m.ID, "law", m.Law, "fallback", law)
			c.report(dst, fmt.Sprintf("material %d", m.ID),
				fmt.Errorf("%w: material law %s, using %s", model.ErrUnsupportedVariant, m.Law, law))
		}
		m.Law = law
	}

	for i := range dst.Contacts {
		ct := &dst.Contacts[i]
		typ, ok := ContactType(string(ct.Type))
		if !ok {
			c.logger.Warn("unmapped contact type", "path", src.Source, "contact", ct.Name, "type", ct.Type, "fallback", typ)
			c.report(dst, "contact "+ct.Name,
				fmt.Errorf("%w: contact type %s, using %s", model.ErrUnsupportedVariant, ct.Type, typ))
		}
		ct.Type = typ
	}
	return dst
}

func (c *Converter) report(dst *model.Document, content string, err error) {
	dst.AddDiagnostic(model.Diagnostic{
		Kind:    model.KindUnmappedKeyword,
		Path:    dst.Source,
		Content: content,
		Err:     err,
	})
}
