// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deckconv/internal/testutil"
	"github.com/pdiddy/deckconv/pkg/model"
)

// mockRepository records call order and fails the calls named in fail.
type mockRepository struct {
	calls []string
	fail  map[string]bool
}

func (m *mockRepository) create(kind string) (Handle, error) {
	m.calls = append(m.calls, kind)
	if m.fail[kind] {
		return nil, errors.New(kind + " rejected")
	}
	return kind, nil
}

func (m *mockRepository) CreateMesh([]model.Node, []model.Element) (Handle, error) {
	return m.create("mesh")
}
func (m *mockRepository) CreateMaterial(model.Material) (Handle, error) {
	return m.create("material")
}
func (m *mockRepository) CreateConstraint(model.Constraint) (Handle, error) {
	return m.create("constraint")
}
func (m *mockRepository) CreateLoad(model.Load) (Handle, error) { return m.create("load") }
func (m *mockRepository) CreateSet(model.SetDef) (Handle, error) {
	return m.create("set")
}
func (m *mockRepository) CreateRigidBody(model.RigidBody) (Handle, error) {
	return m.create("rigid body")
}
func (m *mockRepository) CreateContact(model.Contact) (Handle, error) {
	return m.create("contact")
}

func sampleDocument(t *testing.T) *model.Document {
	t.Helper()
	doc := model.NewDocument(model.DialectRadioss, "model.rad")
	for i := 1; i <= 3; i++ {
		require.NoError(t, doc.AddNode(model.Node{ID: i, X: float64(i)}))
	}
	require.NoError(t, doc.AddElement(model.Element{ID: 1, Kind: model.ElementSh3n, Nodes: []int{1, 2, 3}}))
	require.NoError(t, doc.AddMaterial(model.Material{ID: 1, Name: "Steel", Law: "LAW2"}))
	require.NoError(t, doc.AddSet(model.SetDef{Name: "fixed", Kind: model.SetNode, Members: []int{1, 2}}))
	require.NoError(t, doc.AddConstraint(model.Constraint{ID: 1, Fixed: true, Nodes: []int{1, 2}}))
	require.NoError(t, doc.AddLoad(model.Load{ID: 1, Nodes: []int{3}}))
	require.NoError(t, doc.AddRigidBody(model.RigidBody{Name: "rb", NodeSet: "fixed"}))
	require.NoError(t, doc.AddContact(model.Contact{Name: "c1", Type: model.ContactType7, SlaveSet: "fixed", MasterSet: "fixed"}))
	return doc
}

func TestPopulate_Order(t *testing.T) {
	repo := &mockRepository{}
	handles, err := Populate(repo, sampleDocument(t), testutil.NewTestLogger(t))
	require.NoError(t, err)

	want := []string{"mesh", "material", "set", "constraint", "load", "rigid body", "contact"}
	assert.Equal(t, want, repo.calls)
	require.Len(t, handles, len(want))
	for i, h := range handles {
		assert.Equal(t, want[i], h)
	}
}

func TestPopulate_MeshNeedsNodesAndElements(t *testing.T) {
	tests := []struct {
		name     string
		nodes    bool
		elements bool
		wantMesh bool
	}{
		{name: "nodes and elements", nodes: true, elements: true, wantMesh: true},
		{name: "nodes only", nodes: true},
		{name: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := model.NewDocument(model.DialectLsDyna, "m.k")
			if tt.nodes {
				require.NoError(t, doc.AddNode(model.Node{ID: 1}))
			}
			if tt.elements {
				require.NoError(t, doc.AddElement(model.Element{ID: 1, Kind: model.ElementSh3n, Nodes: []int{1, 1, 1}}))
			}
			repo := &mockRepository{}
			_, err := Populate(repo, doc, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMesh, len(repo.calls) == 1 && repo.calls[0] == "mesh")
		})
	}
}

func TestPopulate_ContinuesAfterFailure(t *testing.T) {
	repo := &mockRepository{fail: map[string]bool{"material": true, "load": true}}
	handles, err := Populate(repo, sampleDocument(t), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating material 1: material rejected")
	assert.Contains(t, err.Error(), "creating load 1: load rejected")
	assert.Len(t, repo.calls, 7, "every object should be attempted")
	assert.Equal(t, []Handle{"mesh", "set", "constraint", "rigid body", "contact"}, handles)
}

func TestInventory(t *testing.T) {
	inv := &Inventory{}
	handles, err := Populate(inv, sampleDocument(t), nil)
	require.NoError(t, err)
	require.Len(t, inv.Objects, 7)
	assert.Equal(t, []Handle{0, 1, 2, 3, 4, 5, 6}, handles)

	assert.Equal(t, Object{Kind: "mesh", Label: "3 nodes", Size: 1}, inv.Objects[0])
	assert.Equal(t, Object{Kind: "material", Label: "Steel (LAW2)"}, inv.Objects[1])
	assert.Equal(t, Object{Kind: "set", Label: "fixed (NODE)", Size: 2}, inv.Objects[2])
	assert.Equal(t, Object{Kind: "contact", Label: "c1 (TYPE7)"}, inv.Objects[6])
}
