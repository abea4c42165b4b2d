// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lsdyna

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pdiddy/deckconv/internal/deck"
	"github.com/pdiddy/deckconv/pkg/model"
)

// handler reads one keyword family. open inspects the variant and
// returns an error wrapping model.ErrUnsupportedVariant for variants
// outside the handled subset; line consumes the n-th data line of the
// occurrence; close flushes records assembled from several cards.
type handler struct {
	open  func(p *parser, o *occurrence) error
	line  func(p *parser, o *occurrence, l deck.Line, n int) error
	close func(p *parser, o *occurrence) error
}

var ignored = map[string]bool{
	"KEYWORD": true,
	"END":     true,
	"TITLE":   true,
}

var handlers = map[string]*handler{
	"NODE":     {open: variants(""), line: (*parser).node},
	"ELEMENT":  {open: openElement, line: (*parser).element},
	"PART":     {open: variants(""), line: (*parser).part},
	"MAT":      {open: openMaterial, line: (*parser).material},
	"SET":      {open: openSet, line: (*parser).set},
	"BOUNDARY": {open: openSPC, line: (*parser).spc},
	"LOAD":     {open: variants("NODE", "NODE_POINT"), line: (*parser).load},
	"CONTACT":  {open: openContact, line: (*parser).contact, close: (*parser).closeContact},
	"CONTROL":  {open: variants("TERMINATION", "TIMESTEP"), line: (*parser).control},
}

func unsupported(o *occurrence) error {
	return fmt.Errorf("%w: *%s", model.ErrUnsupportedVariant, o.kw.name)
}

func variants(allowed ...string) func(*parser, *occurrence) error {
	return func(_ *parser, o *occurrence) error {
		if !slices.Contains(allowed, o.kw.variant) {
			return unsupported(o)
		}
		return nil
	}
}

// cutTitle strips a trailing _TITLE or _ID option, which adds a heading
// card in front of the keyword's data cards.
func cutTitle(v string) (string, bool) {
	for _, suffix := range []string{"_TITLE", "_ID"} {
		if s, ok := strings.CutSuffix(v, suffix); ok {
			return s, true
		}
	}
	switch v {
	case "TITLE", "ID":
		return "", true
	}
	return v, false
}

// card maps the n-th data line to its card index. It reports false for
// the heading card of a _TITLE/_ID keyword, storing the heading.
func (o *occurrence) card(l deck.Line, n int) (int, bool) {
	if !o.title {
		return n, true
	}
	if n == 0 {
		o.name = l.Text
		return 0, false
	}
	return n - 1, true
}

func arity(what string, got int) error {
	return fmt.Errorf("%w: %s, got %d fields", model.ErrArity, what, got)
}

func (p *parser) node(_ *occurrence, l deck.Line, _ int) error {
	rec := record(l, nodeCol)
	if len(rec) < 1 {
		return arity("NODE needs nid x y z", len(rec))
	}
	id, err := deck.ParseInt(rec[0])
	if err != nil {
		return err
	}
	var xyz [3]float64
	for i := range xyz {
		if xyz[i], err = floatAt(rec, i+1, 0); err != nil {
			return err
		}
	}
	return p.doc.AddNode(model.Node{ID: id, X: xyz[0], Y: xyz[1], Z: xyz[2]})
}

func openElement(_ *parser, o *occurrence) error {
	switch o.kw.variant {
	case "", "SOLID":
		o.elementKind = model.ElementSolid
	case "SHELL":
		o.elementKind = model.ElementShell
	default:
		return unsupported(o)
	}
	return nil
}

// element reads "eid pid n1 .. n8". Zero node slots are padding. A shell
// with three nodes, or with n3 == n4, is a triangle.
func (p *parser) element(o *occurrence, l deck.Line, _ int) error {
	rec := record(l, narrow8)
	if len(rec) < 3 {
		return arity("ELEMENT needs eid pid nodes", len(rec))
	}
	eid, err := deck.ParseInt(rec[0])
	if err != nil {
		return err
	}
	pid, err := intAt(rec, 1, 0)
	if err != nil {
		return err
	}
	nodes, err := nonZeroInts(rec[2:])
	if err != nil {
		return err
	}
	kind := o.elementKind
	if kind == model.ElementShell {
		if len(nodes) == 4 && nodes[2] == nodes[3] {
			nodes = nodes[:3]
		}
		if len(nodes) == 3 {
			kind = model.ElementSh3n
		}
	}
	lo, hi := kind.NodeRange()
	if len(nodes) < lo || len(nodes) > hi {
		return fmt.Errorf("%w: %s element needs %d..%d nodes, got %d",
			model.ErrArity, kind, lo, hi, len(nodes))
	}
	if err := p.doc.AddElement(model.Element{ID: eid, Kind: kind, Nodes: nodes, PropertyID: pid}); err != nil {
		return err
	}
	p.origin(l, "element", eid)
	return nil
}

// part reads alternating heading and "pid secid mid" cards.
func (p *parser) part(_ *occurrence, l deck.Line, n int) error {
	if n%2 == 0 {
		return nil
	}
	rec := record(l, wide10)
	pid, err := deck.ParseInt(field(rec, 0))
	if err != nil {
		return err
	}
	mid, err := intAt(rec, 2, model.DefaultMaterialID)
	if err != nil {
		return err
	}
	prop := model.NewProperty(pid, model.PropertyPart)
	prop.MaterialID = mid
	if err := p.doc.AddProperty(prop); err != nil {
		return err
	}
	p.origin(l, "property", pid)
	return nil
}

// materialAliases maps numeric material keywords to their names.
var materialAliases = map[string]string{
	"001": "ELASTIC",
	"003": "PLASTIC_KINEMATIC",
	"024": "PIECEWISE_LINEAR_PLASTICITY",
}

// plasticLaws carry a yield stress and tangent modulus on card 1.
var plasticLaws = map[string]bool{
	"PLASTIC_KINEMATIC":           true,
	"PIECEWISE_LINEAR_PLASTICITY": true,
}

func openMaterial(_ *parser, o *occurrence) error {
	law, title := cutTitle(o.kw.variant)
	if law == "" {
		return unsupported(o)
	}
	if name, ok := materialAliases[law]; ok {
		law = name
	}
	o.law = law
	o.title = title
	return nil
}

// material reads card 1, "mid ro e pr [sigy [etan]]". Later cards are
// law-specific curves and options and are skipped.
func (p *parser) material(o *occurrence, l deck.Line, n int) error {
	c, ok := o.card(l, n)
	if !ok || c > 0 {
		return nil
	}
	rec := record(l, wide10)
	if len(rec) < 4 {
		return arity("MAT card 1 needs mid ro e pr", len(rec))
	}
	vals := make([]float64, 3)
	for i := range vals {
		v, err := floatAt(rec, i+1, 0)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	m := model.Material{
		Name:    o.name,
		Law:     o.law,
		Density: vals[0],
		Young:   vals[1],
		Poisson: vals[2],
	}
	if id, err := deck.ParseInt(rec[0]); err == nil {
		m.ID = id
	} else {
		// Alphanumeric material labels get a fresh numeric id.
		m.ID = p.doc.NextMaterialID()
		if m.Name == "" {
			m.Name = rec[0]
		}
	}
	if m.Name == "" {
		m.Name = fmt.Sprintf("%s_%d", o.law, m.ID)
	}
	if plasticLaws[o.law] {
		var err error
		if m.Yield, err = optFloatAt(rec, 4); err != nil {
			return err
		}
		if m.Hardening, err = optFloatAt(rec, 5); err != nil {
			return err
		}
	}
	return p.doc.AddMaterial(m)
}

func openSet(_ *parser, o *occurrence) error {
	v, title := cutTitle(o.kw.variant)
	kind, _ := strings.CutSuffix(v, "_LIST")
	switch model.SetKind(kind) {
	case model.SetNode, model.SetShell, model.SetSolid, model.SetPart:
		o.setKind = model.SetKind(kind)
	default:
		return unsupported(o)
	}
	o.title = title
	return nil
}

// set reads "sid ..." and then member cards of eight ids each.
func (p *parser) set(o *occurrence, l deck.Line, n int) error {
	c, ok := o.card(l, n)
	if !ok {
		return nil
	}
	rec := record(l, wide10)
	if c == 0 {
		sid, err := deck.ParseInt(field(rec, 0))
		if err != nil {
			return err
		}
		name := fmt.Sprint(sid)
		if err := p.doc.AddSet(model.SetDef{Name: name, Kind: o.setKind}); err != nil {
			return err
		}
		p.origin(l, "set", name)
		o.setName = name
		return nil
	}
	if o.setName == "" {
		return nil
	}
	ids, err := nonZeroInts(rec)
	if err != nil {
		return err
	}
	return p.doc.ExtendSet(o.setName, ids...)
}

func openSPC(_ *parser, o *occurrence) error {
	v, title := cutTitle(o.kw.variant)
	if v != "SPC_NODE" {
		return unsupported(o)
	}
	o.title = title
	return nil
}

// spc reads "nid cid dofx dofy dofz dofrx dofry dofrz". Each keyword
// occurrence becomes one constraint; only fully fixed nodes are kept.
func (p *parser) spc(o *occurrence, l deck.Line, n int) error {
	rec := record(l, wide10)
	if _, ok := o.card(l, n); !ok {
		if id, err := deck.ParseInt(field(rec, 0)); err == nil {
			o.constraintID = id
		}
		return nil
	}
	nid, err := deck.ParseInt(field(rec, 0))
	if err != nil {
		return err
	}
	for i := 2; i < 8; i++ {
		flag, err := intAt(rec, i, 0)
		if err != nil {
			return err
		}
		if flag != 1 {
			return fmt.Errorf("%w: partial fixity on node %d", model.ErrUnsupportedVariant, nid)
		}
	}
	if o.constraintOpen {
		return p.doc.ExtendConstraint(o.constraintID, nid)
	}
	if o.constraintID == 0 {
		o.constraintID = len(p.doc.Constraints) + 1
	}
	if err := p.doc.AddConstraint(model.Constraint{ID: o.constraintID, Fixed: true, Nodes: []int{nid}}); err != nil {
		o.skip = true
		return err
	}
	p.origin(l, "constraint", o.constraintID)
	o.constraintOpen = true
	return nil
}

// load reads "nid dof lcid [sf]". Consecutive lines with the same dof and
// scale factor extend one load; translational dofs 1..3 only.
func (p *parser) load(o *occurrence, l deck.Line, _ int) error {
	rec := record(l, wide10)
	nid, err := deck.ParseInt(field(rec, 0))
	if err != nil {
		return err
	}
	dof, err := intAt(rec, 1, 0)
	if err != nil {
		return err
	}
	sf, err := floatAt(rec, 3, 1.0)
	if err != nil {
		return err
	}
	if dof < 1 || dof > 3 {
		return fmt.Errorf("%w: load dof %d on node %d", model.ErrUnsupportedVariant, dof, nid)
	}
	if o.loadID != 0 && o.loadDOF == dof && o.loadScale == sf {
		return p.doc.ExtendLoad(o.loadID, nid)
	}
	var dir model.Vec3
	switch dof {
	case 1:
		dir.X = 1
	case 2:
		dir.Y = 1
	case 3:
		dir.Z = 1
	}
	ld := model.Load{
		ID:        len(p.doc.Loads) + 1,
		Magnitude: model.Float(sf),
		Direction: &dir,
		Nodes:     []int{nid},
	}
	if err := p.doc.AddLoad(ld); err != nil {
		return err
	}
	p.origin(l, "load", ld.ID)
	o.loadID, o.loadDOF, o.loadScale = ld.ID, dof, sf
	return nil
}

func openContact(_ *parser, o *occurrence) error {
	v, title := cutTitle(o.kw.variant)
	if v == "" {
		v = "AUTOMATIC"
	}
	o.contact = &model.Contact{Type: model.ContactType(v)}
	o.title = title
	return nil
}

// contact collects card 1 "ssid msid ...", card 2 "fs fd dc vc vdc ..."
// and card 3 "sfs ...". The record is added when the keyword closes.
func (p *parser) contact(o *occurrence, l deck.Line, n int) error {
	c, ok := o.card(l, n)
	if !ok {
		rec := record(l, wide10)
		if id := field(rec, 0); id != "" {
			o.contact.Name = "CONTACT_" + id
		}
		return nil
	}
	rec := record(l, wide10)
	var err error
	switch c {
	case 0:
		ssid, err := intAt(rec, 0, 0)
		if err != nil {
			return err
		}
		msid, err := intAt(rec, 1, 0)
		if err != nil {
			return err
		}
		o.contact.SlaveSet = fmt.Sprint(ssid)
		o.contact.MasterSet = fmt.Sprint(msid)
		o.contactLine = l
	case 1:
		if o.contact.Friction, err = optFloatAt(rec, 0); err != nil {
			return err
		}
		if o.contact.Damping, err = optFloatAt(rec, 4); err != nil {
			return err
		}
	case 2:
		if o.contact.Stiffness, err = optFloatAt(rec, 0); err != nil {
			return err
		}
	}
	o.contactCard = c + 1
	return nil
}

func (p *parser) closeContact(o *occurrence) error {
	if o.contactCard == 0 {
		return arity("CONTACT needs card 1", 0)
	}
	if o.contact.Name == "" {
		o.contact.Name = fmt.Sprintf("CONTACT_%d", len(p.doc.Contacts)+1)
	}
	if err := p.doc.AddContact(*o.contact); err != nil {
		return err
	}
	p.origin(o.contactLine, "contact", o.contact.Name)
	return nil
}

// control reads the first card of CONTROL_TERMINATION ("endtim") and
// CONTROL_TIMESTEP ("dtinit tssfac") into the document's run control.
func (p *parser) control(o *occurrence, l deck.Line, n int) error {
	if n > 0 {
		return nil
	}
	if p.doc.Analysis == nil {
		a := model.DefaultAnalysisProperties()
		p.doc.Analysis = &a
	}
	rec := record(l, wide10)
	a := p.doc.Analysis
	switch o.kw.variant {
	case "TERMINATION":
		v, err := floatAt(rec, 0, 0)
		if err != nil {
			return err
		}
		if v > 0 {
			a.TerminationTime = v
		}
	case "TIMESTEP":
		dt, err := floatAt(rec, 0, 0)
		if err != nil {
			return err
		}
		scale, err := floatAt(rec, 1, 0)
		if err != nil {
			return err
		}
		if dt > 0 {
			a.TimeStep = dt
		}
		if scale > 0 {
			a.TimeStepScale = scale
		}
	}
	return nil
}
