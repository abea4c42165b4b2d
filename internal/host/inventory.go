// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package host

import (
	"fmt"

	"github.com/pdiddy/deckconv/pkg/model"
)

// Object describes one object a host would create.
type Object struct {
	Kind  string `json:"kind" yaml:"kind"`
	Label string `json:"label" yaml:"label"`

	// Size is the number of nodes, members or elements the object covers.
	Size int `json:"size" yaml:"size"`
}

// Inventory is a Repository that only lists what would be created. The
// CLI uses it to preview host import of a deck. Handles are indexes into
// Objects.
type Inventory struct {
	Objects []Object
}

func (inv *Inventory) add(kind, label string, size int) (Handle, error) {
	inv.Objects = append(inv.Objects, Object{Kind: kind, Label: label, Size: size})
	return len(inv.Objects) - 1, nil
}

func (inv *Inventory) CreateMesh(nodes []model.Node, elements []model.Element) (Handle, error) {
	return inv.add("mesh", fmt.Sprintf("%d nodes", len(nodes)), len(elements))
}

func (inv *Inventory) CreateMaterial(m model.Material) (Handle, error) {
	return inv.add("material", fmt.Sprintf("%s (%s)", m.Name, m.Law), 0)
}

func (inv *Inventory) CreateConstraint(c model.Constraint) (Handle, error) {
	return inv.add("constraint", fmt.Sprintf("BCS_%d", c.ID), len(c.Nodes))
}

func (inv *Inventory) CreateLoad(l model.Load) (Handle, error) {
	return inv.add("load", fmt.Sprintf("LOAD_%d", l.ID), len(l.Nodes))
}

func (inv *Inventory) CreateSet(s model.SetDef) (Handle, error) {
	return inv.add("set", fmt.Sprintf("%s (%s)", s.Name, s.Kind), len(s.Members))
}

func (inv *Inventory) CreateRigidBody(r model.RigidBody) (Handle, error) {
	return inv.add("rigid body", r.Name, 0)
}

func (inv *Inventory) CreateContact(c model.Contact) (Handle, error) {
	return inv.add("contact", fmt.Sprintf("%s (%s)", c.Name, c.Type), 0)
}
