// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Clean(t *testing.T) {
	assert.Empty(t, Validate(buildDocument(t)))
}

func TestValidate_Dangling(t *testing.T) {
	d := buildDocument(t)
	require.NoError(t, d.AddElement(Element{ID: 2, Kind: ElementSh3n, Nodes: []int{1, 2, 9}, PropertyID: 5}))
	require.NoError(t, d.AddProperty(Property{ID: 2, Kind: PropertySolid, MaterialID: 4}))
	require.NoError(t, d.AddSet(SetDef{Name: "shells", Kind: SetShell, Members: []int{1, 7}}))
	require.NoError(t, d.AddSet(SetDef{Name: "parts", Kind: SetPart, Members: []int{1}}))
	require.NoError(t, d.AddConstraint(Constraint{ID: 2, Nodes: []int{8}}))
	require.NoError(t, d.AddLoad(Load{ID: 2, Nodes: []int{8}}))
	require.NoError(t, d.AddRigidBody(RigidBody{Name: "missing", NodeSet: "nope"}))
	require.NoError(t, d.AddRigidBody(RigidBody{Name: "wrong", NodeSet: "shells"}))
	require.NoError(t, d.AddContact(Contact{Name: "pc", SlaveSet: "edge", MasterSet: "parts"}))

	diags := Validate(d)

	var got []string
	for _, diag := range diags {
		assert.Equal(t, KindDanglingReference, diag.Kind)
		assert.Equal(t, "plate.rad", diag.Path)
		assert.True(t, errors.Is(diag, ErrDanglingReference))
		got = append(got, diag.Content+": "+strings.TrimPrefix(diag.Message(), ErrDanglingReference.Error()+": "))
	}
	assert.Equal(t, []string{
		"element 2: node 9",
		"element 2: property 5",
		"property 2: material 4",
		"set shells: SHELL 7",
		"constraint 2: node 8",
		"load 2: node 8",
		"rigid body missing: set nope",
		"rigid body wrong: set shells is a SHELL set, want NODE",
		"contact pc: set parts is a PART set",
	}, got)
}

func TestValidate_UsesRecordOrigin(t *testing.T) {
	d := buildDocument(t)
	require.NoError(t, d.AddConstraint(Constraint{ID: 3, Nodes: []int{1, 77}}))
	d.SetOrigin(RecordLabel("constraint", 3), Origin{Line: 14, Section: "/BOUND/FIXED", Content: "3 1 77"})

	diags := Validate(d)
	require.Len(t, diags, 1)
	assert.Equal(t, 14, diags[0].Line)
	assert.Equal(t, "/BOUND/FIXED", diags[0].Section)
	assert.Equal(t, "3 1 77", diags[0].Content)
	assert.Equal(t, "plate.rad:14: dangling-reference: dangling reference: node 77 (\"3 1 77\")", diags[0].Error())
}

func TestValidate_MaterialsOptional(t *testing.T) {
	d := NewDocument(DialectRadioss, "m.rad")
	require.NoError(t, d.AddProperty(NewProperty(1, PropertyShell)))
	assert.Empty(t, Validate(d), "properties need no materials when none are defined")
}

func TestValidate_DoesNotModify(t *testing.T) {
	d := buildDocument(t)
	require.NoError(t, d.AddLoad(Load{ID: 2, Nodes: []int{42}}))
	before := d.Clone()
	Validate(d)
	assert.Equal(t, before, d)
}
