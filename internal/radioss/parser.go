// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package radioss reads and writes Radioss Starter and Engine decks.
package radioss

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

// binding is the parse state of one header occurrence.
type binding struct {
	sec  deck.Section
	rule *rule
	skip bool

	// unknown marks an unrecognized family; it is reported on its first
	// data line so header-only sections stay silent.
	unknown  bool
	reported bool

	id           int
	elementKind  model.ElementKind
	explicitPID  bool
	propertyKind model.PropertyKind
	propertyDone bool
	law          string
	materials    int
	setKind      model.SetKind
	openSet      string
	contactType  model.ContactType

	// open is the id of the BOUND or LOAD record whose node list later
	// integer lines extend; zero when lines start new records.
	open int
	// broken drops continuation lines of a head that failed to parse.
	broken bool
}

type parser struct {
	doc    *model.Document
	path   string
	logger *slog.Logger
	cur    *binding
	line   deck.Line
}

// Parse reads a Radioss Starter deck. Malformed lines and unsupported
// keywords become diagnostics on the returned document; the error is
// non-nil only when reading r fails.
func Parse(r io.Reader, path string, logger *slog.Logger) (*model.Document, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &parser{
		doc:    model.NewDocument(model.DialectRadioss, path),
		path:   path,
		logger: logger,
	}
	if err := deck.NewTokenizer(r, deck.Radioss).Walk(p); err != nil {
		return p.doc, fmt.Errorf("reading %s: %w", path, err)
	}

	for _, d := range model.Validate(p.doc) {
		p.doc.AddDiagnostic(d)
	}
	logger.Debug("parsed radioss deck", "path", path, "nodes", len(p.doc.Nodes),
		"elements", len(p.doc.Elements), "diagnostics", len(p.doc.Diagnostics))
	return p.doc, nil
}

// ParseFile opens and parses a Radioss Starter deck.
func ParseFile(path string, logger *slog.Logger) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deck %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path, logger)
}

// Open resolves a header occurrence against the rule table.
func (p *parser) Open(sec deck.Section) {
	b := &binding{sec: sec, skip: true}
	p.cur = b
	parts := sec.Parts()
	if len(parts) == 0 || ignored[parts[0]] {
		return
	}
	r, ok := lookup(parts[0])
	if !ok {
		b.unknown = true
		return
	}
	b.rule = r
	if r.resolve != nil {
		if err := r.resolve(b, parts); err != nil {
			if errors.Is(err, model.ErrUnsupportedVariant) {
				p.unmapped(sec, strings.Join(parts[:min(2, len(parts))], "/"), err)
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
	b.skip = false
}

// Line runs the open rule's extractor on one data line.
func (p *parser) Line(l deck.Line) {
	b := p.cur
	if b.unknown && !b.reported {
		b.reported = true
		p.unmapped(b.sec, b.sec.Parts()[0], fmt.Errorf("%w: %s", model.ErrUnknownKeyword, b.sec.Header))
	}
	toks := l.Fields()
	if b.skip || len(toks) == 0 {
		return
	}
	p.line = l
	if err := b.rule.extract(p, b, toks); err != nil {
		p.lineError(l, err)
	}
}

// Close materializes records of occurrences that had no usable data.
func (p *parser) Close(deck.Section) {
	b := p.cur
	if b.skip || b.rule.empty == nil {
		return
	}
	if err := b.rule.empty(p, b); err != nil {
		p.diag(model.Diagnostic{
			Kind:    model.KindLineParse,
			Line:    b.sec.Line,
			Section: b.sec.Header,
			Content: b.sec.Header,
			Err:     err,
		})
	}
}

func (p *parser) unmapped(sec deck.Section, keyword string, err error) {
	p.doc.MarkUnmapped(keyword)
	p.diag(model.Diagnostic{
		Kind:    model.KindUnmappedKeyword,
		Line:    sec.Line,
		Section: sec.Header,
		Content: sec.Header,
		Err:     err,
	})
}

func (p *parser) lineError(l deck.Line, err error) {
	p.diag(model.Diagnostic{
		Kind:    model.KindLineParse,
		Line:    l.Number,
		Section: l.Section.Header,
		Content: l.Text,
		Err:     err,
	})
}

// origin records the current data line as the source of a record.
func (p *parser) origin(kind string, key any) {
	p.doc.SetOrigin(model.RecordLabel(kind, key), model.Origin{
		Line:    p.line.Number,
		Section: p.line.Section.Header,
		Content: p.line.Text,
	})
}

func (p *parser) diag(d model.Diagnostic) {
	d.Path = p.path
	p.logger.Warn("deck diagnostic", "path", d.Path, "line", d.Line, "kind", d.Kind,
		"content", d.Content, "error", d.Err)
	p.doc.AddDiagnostic(d)
}

func arity(what string, got int) error {
	return fmt.Errorf("%w: %s, got %d", model.ErrArity, what, got)
}

func tailInts(toks []string) ([]int, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	return deck.ParseInts(toks)
}

func (p *parser) node(_ *binding, toks []string) error {
	if len(toks) < 4 {
		return arity("NODE needs id x y z", len(toks))
	}
	id, err := deck.ParseInt(toks[0])
	if err != nil {
		return err
	}
	xyz, err := deck.ParseFloats(toks[1:4])
	if err != nil {
		return err
	}
	return p.doc.AddNode(model.Node{ID: id, X: xyz[0], Y: xyz[1], Z: xyz[2]})
}

func (p *parser) element(b *binding, toks []string) error {
	first := 1
	if b.explicitPID {
		first = 2
	}
	if len(toks) <= first {
		return arity("element line has no nodes", len(toks))
	}
	ids, err := deck.ParseInts(toks)
	if err != nil {
		return err
	}
	pid := b.id
	if b.explicitPID {
		pid = ids[1]
	}
	nodes := ids[first:]
	lo, hi := b.elementKind.NodeRange()
	if len(nodes) < lo || len(nodes) > hi {
		return fmt.Errorf("%w: %s element needs %d..%d nodes, got %d",
			model.ErrArity, b.elementKind, lo, hi, len(nodes))
	}
	if err := p.doc.AddElement(model.Element{
		ID:         ids[0],
		Kind:       b.elementKind,
		Nodes:      nodes,
		PropertyID: pid,
	}); err != nil {
		return err
	}
	p.origin("element", ids[0])
	return nil
}

// property reads the first numeric line of a /PROP or /PART occurrence.
// Title lines and any further cards are ignored.
func (p *parser) property(b *binding, toks []string) error {
	if b.propertyDone || !deck.IsNumeric(toks[0]) {
		return nil
	}
	b.propertyDone = true
	prop := model.NewProperty(b.id, b.propertyKind)
	switch b.propertyKind {
	case model.PropertyShell:
		switch len(toks) {
		case 1:
		case 2:
			mid, err := deck.ParseInt(toks[0])
			if err != nil {
				return err
			}
			prop.MaterialID = mid
			toks = toks[1:]
		default:
			return arity("PROP/SHELL takes [matid] thickness", len(toks))
		}
		t, err := deck.ParseFloat(toks[0])
		if err != nil {
			return err
		}
		prop.Thickness = t
	case model.PropertySolid:
		if len(toks) != 1 {
			return arity("PROP/SOLID takes matid", len(toks))
		}
		mid, err := deck.ParseInt(toks[0])
		if err != nil {
			return err
		}
		prop.MaterialID = mid
	case model.PropertyPart:
		// /PART lines are "matid" or "propid matid [subset]".
		var tok string
		switch len(toks) {
		case 1:
			tok = toks[0]
		case 2, 3:
			tok = toks[1]
		default:
			return arity("PART takes [propid] matid [subset]", len(toks))
		}
		mid, err := deck.ParseInt(tok)
		if err != nil {
			return err
		}
		prop.MaterialID = mid
	}
	if err := p.doc.AddProperty(prop); err != nil {
		return err
	}
	p.origin("property", prop.ID)
	return nil
}

func (p *parser) defaultProperty(b *binding) error {
	if b.propertyDone {
		return nil
	}
	b.propertyDone = true
	if err := p.doc.AddProperty(model.NewProperty(b.id, b.propertyKind)); err != nil {
		return err
	}
	p.doc.SetOrigin(model.RecordLabel("property", b.id), model.Origin{
		Line:    b.sec.Line,
		Section: b.sec.Header,
		Content: b.sec.Header,
	})
	return nil
}

// material reads "name [law] E nu rho [yield [hardening]]". The header id
// applies to the first material of the occurrence only.
func (p *parser) material(b *binding, toks []string) error {
	name, rest := toks[0], toks[1:]
	law := b.law
	if len(rest) > 0 && !deck.IsNumeric(rest[0]) {
		law = strings.ToUpper(rest[0])
		rest = rest[1:]
	}
	if law == "" {
		return fmt.Errorf("%w: material %s has no law", model.ErrArity, name)
	}
	if len(rest) < 3 || len(rest) > 5 {
		return arity("MAT needs E nu rho [yield [hardening]]", len(rest))
	}
	vals, err := deck.ParseFloats(rest)
	if err != nil {
		return err
	}
	id := b.id
	if id == 0 || b.materials > 0 {
		id = p.doc.NextMaterialID()
	}
	m := model.Material{
		ID:      id,
		Name:    name,
		Law:     law,
		Young:   vals[0],
		Poisson: vals[1],
		Density: vals[2],
	}
	if len(vals) > 3 {
		m.Yield = model.Float(vals[3])
	}
	if len(vals) > 4 {
		m.Hardening = model.Float(vals[4])
	}
	if err := p.doc.AddMaterial(m); err != nil {
		return err
	}
	b.materials++
	return nil
}

// set reads "name [ids...]"; lines of integers only extend the open set.
func (p *parser) set(b *binding, toks []string) error {
	if deck.IsInteger(toks[0]) {
		if b.openSet == "" {
			return fmt.Errorf("%w: member line without a set name", model.ErrArity)
		}
		ids, err := deck.ParseInts(toks)
		if err != nil {
			return err
		}
		return p.doc.ExtendSet(b.openSet, ids...)
	}
	b.openSet = ""
	members, err := tailInts(toks[1:])
	if err != nil {
		return err
	}
	if err := p.doc.AddSet(model.SetDef{Name: toks[0], Kind: b.setKind, Members: members}); err != nil {
		return err
	}
	p.origin("set", toks[0])
	b.openSet = toks[0]
	return nil
}

// constraint reads one "id [nodes...]" record per line. A head line
// holding only the id, as the writer emits it, opens the record: the
// integer lines after it extend its node list.
func (p *parser) constraint(b *binding, toks []string) error {
	ids, err := deck.ParseInts(toks)
	if b.open != 0 || b.broken {
		if b.broken {
			return nil
		}
		if err != nil {
			return err
		}
		return p.doc.ExtendConstraint(b.open, ids...)
	}
	if err == nil {
		err = p.doc.AddConstraint(model.Constraint{ID: ids[0], Fixed: true, Nodes: tail(ids)})
	}
	if err != nil {
		b.broken = len(toks) == 1
		return err
	}
	p.origin("constraint", ids[0])
	if len(ids) == 1 {
		b.open = ids[0]
	}
	return nil
}

// load reads one record head per line, laid out by token count:
//
//	id
//	id magnitude dx dy dz
//	id node magnitude dx dy dz
//
// A line of integers only extends the node list of the previous head; any
// other line starts a new record.
func (p *parser) load(b *binding, toks []string) error {
	if (b.open != 0 || b.broken) && deck.AllIntegers(toks) {
		if b.broken {
			return nil
		}
		ids, err := deck.ParseInts(toks)
		if err != nil {
			return err
		}
		return p.doc.ExtendLoad(b.open, ids...)
	}
	b.open, b.broken = 0, false
	l, err := loadHead(toks)
	if err == nil {
		err = p.doc.AddLoad(l)
	}
	if err != nil {
		b.broken = true
		return err
	}
	p.origin("load", l.ID)
	b.open = l.ID
	return nil
}

func loadHead(toks []string) (model.Load, error) {
	var l model.Load
	id, err := deck.ParseInt(toks[0])
	if err != nil {
		return l, err
	}
	l.ID = id
	vec := toks[1:]
	switch len(toks) {
	case 1:
		return l, nil
	case 5:
	case 6:
		node, err := deck.ParseInt(toks[1])
		if err != nil {
			return l, err
		}
		l.Nodes = []int{node}
		vec = toks[2:]
	default:
		return l, arity("LOAD head takes id [node] [magnitude dx dy dz]", len(toks))
	}
	vals, err := deck.ParseFloats(vec)
	if err != nil {
		return l, err
	}
	l.Magnitude = model.Float(vals[0])
	l.Direction = &model.Vec3{X: vals[1], Y: vals[2], Z: vals[3]}
	return l, nil
}

// rigidBody reads "name set [mass [cx cy cz [ix iy iz [dof...]]]]".
func (p *parser) rigidBody(_ *binding, toks []string) error {
	switch n := len(toks); {
	case n < 2, n == 4, n == 5, n == 7, n == 8:
		return arity("RBODY takes name set [mass [com [inertia [dofs]]]]", n)
	}
	rb := model.RigidBody{Name: toks[0], NodeSet: toks[1]}
	if len(toks) > 2 {
		upto := min(len(toks), 9)
		vals, err := deck.ParseFloats(toks[2:upto])
		if err != nil {
			return err
		}
		rb.Mass = vals[0]
		if len(vals) >= 4 {
			rb.CenterOfMass = model.Vec3{X: vals[1], Y: vals[2], Z: vals[3]}
		}
		if len(vals) == 7 {
			rb.Inertia = model.Vec3{X: vals[4], Y: vals[5], Z: vals[6]}
		}
	}
	for _, tok := range toks[min(len(toks), 9):] {
		code, err := deck.ParseInt(tok)
		if err != nil {
			return err
		}
		dof, err := model.ParseDOF(code)
		if err != nil {
			return err
		}
		rb.Locked = rb.Locked.With(dof)
	}
	if err := p.doc.AddRigidBody(rb); err != nil {
		return err
	}
	p.origin("rigid body", rb.Name)
	return nil
}

// contact reads "name slave master [gap [friction [stiffness [damping]]]]".
func (p *parser) contact(b *binding, toks []string) error {
	if len(toks) < 3 || len(toks) > 7 {
		return arity("INTER takes name slave master [gap [fric [stiff [damp]]]]", len(toks))
	}
	vals, err := deck.ParseFloats(toks[3:])
	if err != nil {
		return err
	}
	c := model.Contact{
		Name:      toks[0],
		Type:      b.contactType,
		SlaveSet:  toks[1],
		MasterSet: toks[2],
	}
	for i, dst := range []**float64{&c.Gap, &c.Friction, &c.Stiffness, &c.Damping} {
		if i < len(vals) {
			*dst = model.Float(vals[i])
		}
	}
	if err := p.doc.AddContact(c); err != nil {
		return err
	}
	p.origin("contact", c.Name)
	return nil
}

func tail(ids []int) []int {
	if len(ids) < 2 {
		return nil
	}
	return ids[1:]
}
