// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"fmt"
	"maps"
	"slices"
)

// Document is one finite-element model. Tables keep insertion order; the
// Add methods reject duplicate ids so each table stays unique per kind.
// A document is built append-only during a parse and is otherwise treated
// as read-only.
type Document struct {
	Dialect Dialect `json:"dialect" yaml:"dialect"`
	Source  string  `json:"source" yaml:"source"`

	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Elements    []Element    `json:"elements" yaml:"elements"`
	Properties  []Property   `json:"properties" yaml:"properties"`
	Materials   []Material   `json:"materials" yaml:"materials"`
	Sets        []SetDef     `json:"sets" yaml:"sets"`
	Constraints []Constraint `json:"constraints" yaml:"constraints"`
	Loads       []Load       `json:"loads" yaml:"loads"`
	RigidBodies []RigidBody  `json:"rigid_bodies" yaml:"rigid_bodies"`
	Contacts    []Contact    `json:"contacts" yaml:"contacts"`

	// Analysis is nil unless the deck or the caller supplied run control.
	Analysis *AnalysisProperties `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// Unmapped lists keyword families seen in the source but not handled,
	// in first-seen order.
	Unmapped []string `json:"unmapped,omitempty" yaml:"unmapped,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	nodeIdx        map[int]int
	elementIdx     map[int]int
	propertyIdx    map[int]int
	materialIdx    map[int]int
	setIdx         map[string]int
	constraintIdx  map[int]int
	loadIdx        map[int]int
	rigidBodyNames map[string]bool
	contactNames   map[string]bool

	// origins maps a record label to the source line that defined it.
	origins map[string]Origin
}

// Origin is the source location of a record.
type Origin struct {
	Line    int
	Section string
	Content string
}

// RecordLabel names a record in diagnostics, e.g. "element 10".
func RecordLabel(kind string, key any) string {
	return fmt.Sprintf("%s %v", kind, key)
}

// SetOrigin remembers where the record labelled label was read.
func (d *Document) SetOrigin(label string, o Origin) {
	if d.origins == nil {
		d.origins = make(map[string]Origin)
	}
	d.origins[label] = o
}

// Origin returns the source location of the record labelled label.
func (d *Document) Origin(label string) (Origin, bool) {
	o, ok := d.origins[label]
	return o, ok
}

// NewDocument returns an empty document for the given dialect and source path.
func NewDocument(dialect Dialect, source string) *Document {
	d := &Document{Dialect: dialect, Source: source}
	d.reindex()
	return d
}

func (d *Document) reindex() {
	d.nodeIdx = make(map[int]int, len(d.Nodes))
	for i, n := range d.Nodes {
		d.nodeIdx[n.ID] = i
	}
	d.elementIdx = make(map[int]int, len(d.Elements))
	for i, e := range d.Elements {
		d.elementIdx[e.ID] = i
	}
	d.propertyIdx = make(map[int]int, len(d.Properties))
	for i, p := range d.Properties {
		d.propertyIdx[p.ID] = i
	}
	d.materialIdx = make(map[int]int, len(d.Materials))
	for i, m := range d.Materials {
		d.materialIdx[m.ID] = i
	}
	d.setIdx = make(map[string]int, len(d.Sets))
	for i, s := range d.Sets {
		d.setIdx[s.Name] = i
	}
	d.constraintIdx = make(map[int]int, len(d.Constraints))
	for i, c := range d.Constraints {
		d.constraintIdx[c.ID] = i
	}
	d.loadIdx = make(map[int]int, len(d.Loads))
	for i, l := range d.Loads {
		d.loadIdx[l.ID] = i
	}
	d.rigidBodyNames = make(map[string]bool, len(d.RigidBodies))
	for _, r := range d.RigidBodies {
		d.rigidBodyNames[r.Name] = true
	}
	d.contactNames = make(map[string]bool, len(d.Contacts))
	for _, c := range d.Contacts {
		d.contactNames[c.Name] = true
	}
}

// ensureIndex rebuilds the lookup tables for documents that were not
// created with NewDocument (for example decoded from JSON).
func (d *Document) ensureIndex() {
	if d.nodeIdx == nil {
		d.reindex()
	}
}

func duplicate(kind string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrDuplicateID, kind, id)
}

// AddNode appends n.
func (d *Document) AddNode(n Node) error {
	d.ensureIndex()
	if _, ok := d.nodeIdx[n.ID]; ok {
		return duplicate("node", n.ID)
	}
	d.nodeIdx[n.ID] = len(d.Nodes)
	d.Nodes = append(d.Nodes, n)
	return nil
}

// AddElement appends e.
func (d *Document) AddElement(e Element) error {
	d.ensureIndex()
	if _, ok := d.elementIdx[e.ID]; ok {
		return duplicate("element", e.ID)
	}
	d.elementIdx[e.ID] = len(d.Elements)
	d.Elements = append(d.Elements, e)
	return nil
}

// AddProperty appends p.
func (d *Document) AddProperty(p Property) error {
	d.ensureIndex()
	if _, ok := d.propertyIdx[p.ID]; ok {
		return duplicate("property", p.ID)
	}
	d.propertyIdx[p.ID] = len(d.Properties)
	d.Properties = append(d.Properties, p)
	return nil
}

// AddMaterial appends m.
func (d *Document) AddMaterial(m Material) error {
	d.ensureIndex()
	if _, ok := d.materialIdx[m.ID]; ok {
		return duplicate("material", m.ID)
	}
	d.materialIdx[m.ID] = len(d.Materials)
	d.Materials = append(d.Materials, m)
	return nil
}

// NextMaterialID returns one past the largest material id in use.
func (d *Document) NextMaterialID() int {
	next := 1
	for _, m := range d.Materials {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	return next
}

// AddSet appends s. Set names are unique.
func (d *Document) AddSet(s SetDef) error {
	d.ensureIndex()
	if _, ok := d.setIdx[s.Name]; ok {
		return duplicate("set", s.Name)
	}
	d.setIdx[s.Name] = len(d.Sets)
	d.Sets = append(d.Sets, s)
	return nil
}

// ExtendSet appends members to the named set, keeping order.
func (d *Document) ExtendSet(name string, members ...int) error {
	d.ensureIndex()
	i, ok := d.setIdx[name]
	if !ok {
		return fmt.Errorf("%w: set %q", ErrDanglingReference, name)
	}
	d.Sets[i].Members = append(d.Sets[i].Members, members...)
	return nil
}

// AddConstraint appends c.
func (d *Document) AddConstraint(c Constraint) error {
	d.ensureIndex()
	if _, ok := d.constraintIdx[c.ID]; ok {
		return duplicate("constraint", c.ID)
	}
	d.constraintIdx[c.ID] = len(d.Constraints)
	d.Constraints = append(d.Constraints, c)
	return nil
}

// ExtendConstraint appends node ids to constraint id.
func (d *Document) ExtendConstraint(id int, nodes ...int) error {
	d.ensureIndex()
	i, ok := d.constraintIdx[id]
	if !ok {
		return fmt.Errorf("%w: constraint %d", ErrDanglingReference, id)
	}
	d.Constraints[i].Nodes = append(d.Constraints[i].Nodes, nodes...)
	return nil
}

// AddLoad appends l.
func (d *Document) AddLoad(l Load) error {
	d.ensureIndex()
	if _, ok := d.loadIdx[l.ID]; ok {
		return duplicate("load", l.ID)
	}
	d.loadIdx[l.ID] = len(d.Loads)
	d.Loads = append(d.Loads, l)
	return nil
}

// ExtendLoad appends node ids to load id.
func (d *Document) ExtendLoad(id int, nodes ...int) error {
	d.ensureIndex()
	i, ok := d.loadIdx[id]
	if !ok {
		return fmt.Errorf("%w: load %d", ErrDanglingReference, id)
	}
	d.Loads[i].Nodes = append(d.Loads[i].Nodes, nodes...)
	return nil
}

// AddRigidBody appends r. Rigid body names are unique.
func (d *Document) AddRigidBody(r RigidBody) error {
	d.ensureIndex()
	if d.rigidBodyNames[r.Name] {
		return duplicate("rigid body", r.Name)
	}
	d.rigidBodyNames[r.Name] = true
	d.RigidBodies = append(d.RigidBodies, r)
	return nil
}

// AddContact appends c. Contact names are unique.
func (d *Document) AddContact(c Contact) error {
	d.ensureIndex()
	if d.contactNames[c.Name] {
		return duplicate("contact", c.Name)
	}
	d.contactNames[c.Name] = true
	d.Contacts = append(d.Contacts, c)
	return nil
}

// Node looks up a node by id.
func (d *Document) Node(id int) (Node, bool) {
	d.ensureIndex()
	i, ok := d.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return d.Nodes[i], true
}

// Element looks up an element by id.
func (d *Document) Element(id int) (Element, bool) {
	d.ensureIndex()
	i, ok := d.elementIdx[id]
	if !ok {
		return Element{}, false
	}
	return d.Elements[i], true
}

// Property looks up a property by id.
func (d *Document) Property(id int) (Property, bool) {
	d.ensureIndex()
	i, ok := d.propertyIdx[id]
	if !ok {
		return Property{}, false
	}
	return d.Properties[i], true
}

// Material looks up a material by id.
func (d *Document) Material(id int) (Material, bool) {
	d.ensureIndex()
	i, ok := d.materialIdx[id]
	if !ok {
		return Material{}, false
	}
	return d.Materials[i], true
}

// Set looks up a set by name.
func (d *Document) Set(name string) (SetDef, bool) {
	d.ensureIndex()
	i, ok := d.setIdx[name]
	if !ok {
		return SetDef{}, false
	}
	return d.Sets[i], true
}

// HasMesh reports whether the document carries any mesh nodes.
func (d *Document) HasMesh() bool {
	return len(d.Nodes) > 0
}

// AddDiagnostic records a diagnostic on the document.
func (d *Document) AddDiagnostic(diag Diagnostic) {
	d.Diagnostics = append(d.Diagnostics, diag)
}

// MarkUnmapped records an unhandled keyword family once.
func (d *Document) MarkUnmapped(keyword string) {
	if !slices.Contains(d.Unmapped, keyword) {
		d.Unmapped = append(d.Unmapped, keyword)
	}
}

// Summary holds entity counts for reporting.
type Summary struct {
	Nodes       int `json:"nodes" yaml:"nodes"`
	Elements    int `json:"elements" yaml:"elements"`
	Properties  int `json:"properties" yaml:"properties"`
	Materials   int `json:"materials" yaml:"materials"`
	Sets        int `json:"sets" yaml:"sets"`
	Constraints int `json:"constraints" yaml:"constraints"`
	Loads       int `json:"loads" yaml:"loads"`
	RigidBodies int `json:"rigid_bodies" yaml:"rigid_bodies"`
	Contacts    int `json:"contacts" yaml:"contacts"`
	Diagnostics int `json:"diagnostics" yaml:"diagnostics"`
}

// Summary counts the document's entities.
func (d *Document) Summary() Summary {
	return Summary{
		Nodes:       len(d.Nodes),
		Elements:    len(d.Elements),
		Properties:  len(d.Properties),
		Materials:   len(d.Materials),
		Sets:        len(d.Sets),
		Constraints: len(d.Constraints),
		Loads:       len(d.Loads),
		RigidBodies: len(d.RigidBodies),
		Contacts:    len(d.Contacts),
		Diagnostics: len(d.Diagnostics),
	}
}

// Clone returns a deep copy of d that shares no mutable state with it.
func (d *Document) Clone() *Document {
	c := &Document{
		Dialect:     d.Dialect,
		Source:      d.Source,
		Nodes:       slices.Clone(d.Nodes),
		Properties:  slices.Clone(d.Properties),
		Unmapped:    slices.Clone(d.Unmapped),
		Diagnostics: slices.Clone(d.Diagnostics),
	}
	for _, e := range d.Elements {
		e.Nodes = slices.Clone(e.Nodes)
		c.Elements = append(c.Elements, e)
	}
	for _, m := range d.Materials {
		c.Materials = append(c.Materials, m.Clone())
	}
	for _, s := range d.Sets {
		s.Members = slices.Clone(s.Members)
		c.Sets = append(c.Sets, s)
	}
	for _, k := range d.Constraints {
		k.Nodes = slices.Clone(k.Nodes)
		c.Constraints = append(c.Constraints, k)
	}
	for _, l := range d.Loads {
		c.Loads = append(c.Loads, l.Clone())
	}
	c.RigidBodies = slices.Clone(d.RigidBodies)
	for _, ct := range d.Contacts {
		c.Contacts = append(c.Contacts, ct.Clone())
	}
	if d.Analysis != nil {
		a := *d.Analysis
		c.Analysis = &a
	}
	c.origins = maps.Clone(d.origins)
	c.reindex()
	return c
}

// Clone returns a copy of m with its own optional fields.
func (m Material) Clone() Material {
	m.Yield = cloneFloat(m.Yield)
	m.Hardening = cloneFloat(m.Hardening)
	return m
}

// Clone returns a copy of l with its own node list and optional fields.
func (l Load) Clone() Load {
	l.Magnitude = cloneFloat(l.Magnitude)
	if l.Direction != nil {
		dir := *l.Direction
		l.Direction = &dir
	}
	l.Nodes = slices.Clone(l.Nodes)
	return l
}

// Clone returns a copy of c with its own optional fields.
func (c Contact) Clone() Contact {
	c.Gap = cloneFloat(c.Gap)
	c.Friction = cloneFloat(c.Friction)
	c.Stiffness = cloneFloat(c.Stiffness)
	c.Damping = cloneFloat(c.Damping)
	return c
}
