// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package radioss

import (
	"fmt"
	"strings"

	"github.com/pdiddy/deckconv/internal/deck"
	"github.com/pdiddy/deckconv/pkg/model"
)

// rule maps one header family to its field extractor. Header-embedded ids
// and positional ids are options on the rule rather than separate paths.
type rule struct {
	// family is the first header part ("NODE", "PROP", ...).
	family string
	// prefix matches any first part starting with family ("BOUNDARY").
	prefix bool
	// resolve reads the rest of the header into the binding. It returns
	// an error wrapping model.ErrUnsupportedVariant for variants the
	// parser does not handle.
	resolve func(b *binding, parts []string) error
	// extract consumes one data line.
	extract func(p *parser, b *binding, toks []string) error
	// empty runs for header occurrences that had no data lines.
	empty func(p *parser, b *binding) error
}

// ignored families carry no model data.
var ignored = map[string]bool{
	"BEGIN": true,
	"END":   true,
	"TITLE": true,
}

var rules = []rule{
	{family: "NODE", extract: (*parser).node},
	{family: "SHELL", resolve: embeddedElement(model.ElementShell), extract: (*parser).element},
	{family: "SH3N", resolve: embeddedElement(model.ElementSh3n), extract: (*parser).element},
	{family: "BRICK", resolve: embeddedElement(model.ElementSolid), extract: (*parser).element},
	{family: "ELEMENT", resolve: explicitElement, extract: (*parser).element},
	{family: "PROP", resolve: resolveProp, extract: (*parser).property, empty: (*parser).defaultProperty},
	{family: "PART", resolve: resolvePart, extract: (*parser).property, empty: (*parser).defaultProperty},
	{family: "MAT", resolve: resolveMat, extract: (*parser).material},
	{family: "SET", resolve: resolveSet, extract: (*parser).set},
	{family: "BOUND", prefix: true, resolve: variant("", "FIXED"), extract: (*parser).constraint},
	{family: "LOAD", prefix: true, resolve: variant("", "FORCE", "CLOAD"), extract: (*parser).load},
	{family: "RBODY", prefix: true, extract: (*parser).rigidBody},
	{family: "INTER", resolve: resolveInter, extract: (*parser).contact},
}

// lookup returns the rule for a header's first part.
func lookup(family string) (*rule, bool) {
	for i := range rules {
		r := &rules[i]
		if family == r.family || (r.prefix && strings.HasPrefix(family, r.family)) {
			return r, true
		}
	}
	return nil, false
}

func unsupported(parts []string) error {
	return fmt.Errorf("%w: /%s", model.ErrUnsupportedVariant, strings.Join(parts, "/"))
}

func headerID(parts []string, i int) (int, error) {
	if len(parts) <= i {
		return 0, fmt.Errorf("%w: header /%s has no id", model.ErrArity, strings.Join(parts, "/"))
	}
	return deck.ParseInt(parts[i])
}

// embeddedElement handles /SHELL/<pid>, /SH3N/<pid> and /BRICK/<pid>.
func embeddedElement(kind model.ElementKind) func(*binding, []string) error {
	return func(b *binding, parts []string) error {
		pid, err := headerID(parts, 1)
		if err != nil {
			return err
		}
		b.elementKind = kind
		b.id = pid
		return nil
	}
}

// explicitElement handles /ELEMENT/<kind>, whose lines carry the pid.
func explicitElement(b *binding, parts []string) error {
	if len(parts) < 2 {
		return unsupported(parts)
	}
	switch parts[1] {
	case "SHELL":
		b.elementKind = model.ElementShell
	case "SH3N":
		b.elementKind = model.ElementSh3n
	case "SOLID", "BRICK":
		b.elementKind = model.ElementSolid
	default:
		return unsupported(parts)
	}
	b.explicitPID = true
	return nil
}

func resolveProp(b *binding, parts []string) error {
	if len(parts) < 2 {
		return unsupported(parts)
	}
	switch parts[1] {
	case "SHELL":
		b.propertyKind = model.PropertyShell
	case "SOLID":
		b.propertyKind = model.PropertySolid
	default:
		return unsupported(parts)
	}
	id, err := headerID(parts, 2)
	b.id = id
	return err
}

func resolvePart(b *binding, parts []string) error {
	b.propertyKind = model.PropertyPart
	id, err := headerID(parts, 1)
	b.id = id
	return err
}

// resolveMat reads /MAT[/<law>[/<id>]]. The law may instead come from
// the data line.
func resolveMat(b *binding, parts []string) error {
	if len(parts) > 1 {
		b.law = parts[1]
	}
	if len(parts) > 2 {
		id, err := deck.ParseInt(parts[2])
		if err != nil {
			return err
		}
		b.id = id
	}
	return nil
}

func resolveSet(b *binding, parts []string) error {
	if len(parts) < 2 {
		return unsupported(parts)
	}
	kind := model.SetKind(parts[1])
	if kind == "BRICK" {
		kind = model.SetSolid
	}
	if !kind.Valid() {
		return unsupported(parts)
	}
	b.setKind = kind
	return nil
}

func resolveInter(b *binding, parts []string) error {
	if len(parts) < 2 {
		return unsupported(parts)
	}
	switch t := model.ContactType(parts[1]); t {
	case model.ContactType2, model.ContactType7, model.ContactType11, model.ContactType19:
		b.contactType = t
		return nil
	}
	return unsupported(parts)
}

// variant accepts the listed second header parts ("" for none).
func variant(allowed ...string) func(*binding, []string) error {
	return func(_ *binding, parts []string) error {
		v := ""
		if len(parts) > 1 {
			v = parts[1]
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return unsupported(parts)
	}
}
