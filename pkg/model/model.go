// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package model holds the canonical in-memory representation of a
// finite-element deck. A Document owns every entity table; entities refer
// to each other by id or name and never own one another.
package model

import (
	"fmt"
	"strings"
)

// Dialect identifies the deck format a document was parsed from.
type Dialect string

const (
	DialectRadioss Dialect = "radioss"
	DialectLsDyna  Dialect = "lsdyna"
)

// Vec3 is a 3-component vector (coordinates, directions, inertia).
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Node is a mesh point. Nodes are immutable once added to a document.
type Node struct {
	ID int     `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
	Z  float64 `json:"z" yaml:"z"`
}

// ElementKind is the element topology.
type ElementKind string

const (
	ElementShell ElementKind = "SHELL"
	ElementSh3n  ElementKind = "SH3N"
	ElementSolid ElementKind = "SOLID"
)

// NodeRange returns the minimum and maximum connectivity length for k.
func (k ElementKind) NodeRange() (lo, hi int) {
	switch k {
	case ElementShell:
		return 4, 4
	case ElementSh3n:
		return 3, 3
	case ElementSolid:
		return 4, 8
	}
	return 0, 0
}

// Valid reports whether k is one of the supported element kinds.
func (k ElementKind) Valid() bool {
	_, hi := k.NodeRange()
	return hi > 0
}

// Element references its nodes and, optionally, a property.
type Element struct {
	ID    int         `json:"id" yaml:"id"`
	Kind  ElementKind `json:"kind" yaml:"kind"`
	Nodes []int       `json:"nodes" yaml:"nodes"`

	// PropertyID is zero when the element carries no property reference.
	PropertyID int `json:"property_id,omitempty" yaml:"property_id,omitempty"`
}

// PropertyKind distinguishes section property records.
type PropertyKind string

const (
	PropertyShell PropertyKind = "SHELL"
	PropertySolid PropertyKind = "SOLID"
	PropertyPart  PropertyKind = "PART"
)

const (
	// DefaultMaterialID is the material every property points at unless the
	// deck says otherwise; multi-material assemblies are not modelled.
	DefaultMaterialID = 1

	// DefaultShellThickness applies to SHELL properties without explicit data.
	DefaultShellThickness = 1.0
)

// Property is a section property referencing a material.
type Property struct {
	ID         int          `json:"id" yaml:"id"`
	Kind       PropertyKind `json:"kind" yaml:"kind"`
	MaterialID int          `json:"material_id" yaml:"material_id"`
	Thickness  float64      `json:"thickness,omitempty" yaml:"thickness,omitempty"`
}

// NewProperty returns a property with the subset's defaults applied.
func NewProperty(id int, kind PropertyKind) Property {
	p := Property{ID: id, Kind: kind, MaterialID: DefaultMaterialID}
	if kind == PropertyShell {
		p.Thickness = DefaultShellThickness
	}
	return p
}

// Material is a constitutive law with its elastic constants. Law is a
// dialect tag: "LAW2"/"LAW36" for Radioss, the keyword variant
// ("ELASTIC", "PLASTIC_KINEMATIC", ...) for LS-DYNA documents.
type Material struct {
	ID      int     `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Law     string  `json:"law" yaml:"law"`
	Young   float64 `json:"young" yaml:"young"`
	Poisson float64 `json:"poisson" yaml:"poisson"`
	Density float64 `json:"density" yaml:"density"`

	Yield     *float64 `json:"yield,omitempty" yaml:"yield,omitempty"`
	Hardening *float64 `json:"hardening,omitempty" yaml:"hardening,omitempty"`
}

// SetKind is the kind of entity a set collects.
type SetKind string

const (
	SetNode    SetKind = "NODE"
	SetElement SetKind = "ELEMENT"
	SetShell   SetKind = "SHELL"
	SetSolid   SetKind = "SOLID"
	SetPart    SetKind = "PART"
)

// Valid reports whether k is a supported set kind.
func (k SetKind) Valid() bool {
	switch k {
	case SetNode, SetElement, SetShell, SetSolid, SetPart:
		return true
	}
	return false
}

// SetDef is a named, ordered list of member ids. Member order is kept
// because writers wrap the list in order.
type SetDef struct {
	Name    string  `json:"name" yaml:"name"`
	Kind    SetKind `json:"kind" yaml:"kind"`
	Members []int   `json:"members" yaml:"members"`
}

// Constraint fixes nodes. Only full fixity is modelled.
type Constraint struct {
	ID    int   `json:"id" yaml:"id"`
	Fixed bool  `json:"fixed" yaml:"fixed"`
	Nodes []int `json:"nodes" yaml:"nodes"`
}

// Load is a nodal force. Magnitude and Direction are nil when the source
// record did not carry them.
type Load struct {
	ID        int      `json:"id" yaml:"id"`
	Magnitude *float64 `json:"magnitude,omitempty" yaml:"magnitude,omitempty"`
	Direction *Vec3    `json:"direction,omitempty" yaml:"direction,omitempty"`
	Nodes     []int    `json:"nodes" yaml:"nodes"`
}

// DOF is a rigid-body degree of freedom, coded 1..6 on deck lines.
type DOF int

const (
	DOFX DOF = iota + 1
	DOFY
	DOFZ
	DOFRX
	DOFRY
	DOFRZ
)

var dofNames = [...]string{"", "X", "Y", "Z", "RX", "RY", "RZ"}

func (d DOF) String() string {
	if d < DOFX || d > DOFRZ {
		return fmt.Sprintf("DOF(%d)", int(d))
	}
	return dofNames[d]
}

// ParseDOF converts a deck code to a DOF.
func ParseDOF(code int) (DOF, error) {
	if code < int(DOFX) || code > int(DOFRZ) {
		return 0, fmt.Errorf("%w: %d not in 1..6", ErrBadDOF, code)
	}
	return DOF(code), nil
}

// DOFSet is a set of locked degrees of freedom.
type DOFSet uint8

// With returns s with d added.
func (s DOFSet) With(d DOF) DOFSet { return s | 1<<uint(d-1) }

// Has reports whether d is in s.
func (s DOFSet) Has(d DOF) bool { return s&(1<<uint(d-1)) != 0 }

// DOFs lists the members of s in code order.
func (s DOFSet) DOFs() []DOF {
	var out []DOF
	for d := DOFX; d <= DOFRZ; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s DOFSet) String() string {
	dofs := s.DOFs()
	names := make([]string, len(dofs))
	for i, d := range dofs {
		names[i] = d.String()
	}
	return strings.Join(names, ",")
}

// RigidBody is a node set treated as infinitely stiff.
type RigidBody struct {
	Name         string  `json:"name" yaml:"name"`
	NodeSet      string  `json:"node_set" yaml:"node_set"`
	Mass         float64 `json:"mass" yaml:"mass"`
	CenterOfMass Vec3    `json:"center_of_mass" yaml:"center_of_mass"`
	Inertia      Vec3    `json:"inertia" yaml:"inertia"`
	Locked       DOFSet  `json:"locked" yaml:"locked"`
}

// ContactType is a contact interface type. Radioss documents carry TYPEn
// tags; LS-DYNA documents carry the keyword variant until converted.
type ContactType string

const (
	ContactType2  ContactType = "TYPE2"
	ContactType7  ContactType = "TYPE7"
	ContactType11 ContactType = "TYPE11"
	ContactType19 ContactType = "TYPE19"
)

// Contact couples a slave and a master set. Numeric parameters are nil
// when the source record left them out.
type Contact struct {
	Name      string      `json:"name" yaml:"name"`
	Type      ContactType `json:"type" yaml:"type"`
	SlaveSet  string      `json:"slave_set" yaml:"slave_set"`
	MasterSet string      `json:"master_set" yaml:"master_set"`

	Gap       *float64 `json:"gap,omitempty" yaml:"gap,omitempty"`
	Friction  *float64 `json:"friction,omitempty" yaml:"friction,omitempty"`
	Stiffness *float64 `json:"stiffness,omitempty" yaml:"stiffness,omitempty"`
	Damping   *float64 `json:"damping,omitempty" yaml:"damping,omitempty"`
}

// Float returns a pointer to v, for optional record fields.
func Float(v float64) *float64 { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}
