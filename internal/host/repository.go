// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package host hands a parsed model to the application that owns the
// engineering objects. The host side is reached only through Repository;
// deckconv never inspects the handles it returns.
package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdiddy/deckconv/pkg/model"
)

// Handle is an opaque reference to an object created by the host. The
// caller adds it to whatever analysis container the host provides.
type Handle any

// Repository creates host objects from model records.
type Repository interface {
	// CreateMesh builds one mesh object from the full node and element
	// tables.
	CreateMesh(nodes []model.Node, elements []model.Element) (Handle, error)

	CreateMaterial(m model.Material) (Handle, error)
	CreateConstraint(c model.Constraint) (Handle, error)
	CreateLoad(l model.Load) (Handle, error)
	CreateSet(s model.SetDef) (Handle, error)
	CreateRigidBody(r model.RigidBody) (Handle, error)
	CreateContact(c model.Contact) (Handle, error)
}

// Populate creates host objects for doc in import order: the mesh (only
// when the document has both nodes and elements), then materials, sets,
// constraints, loads, rigid bodies and contacts. A failed creation does
// not stop the rest; the handles that were created are returned along
// with every failure joined into one error.
func Populate(repo Repository, doc *model.Document, logger *slog.Logger) ([]Handle, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var (
		handles []Handle
		errs    []error
	)
	add := func(what string, h Handle, err error) {
		if err != nil {
			logger.Warn("host object not created", "object", what, "error", err)
			errs = append(errs, fmt.Errorf("creating %s: %w", what, err))
			return
		}
		handles = append(handles, h)
	}

	if len(doc.Nodes) > 0 && len(doc.Elements) > 0 {
		h, err := repo.CreateMesh(doc.Nodes, doc.Elements)
		add("mesh", h, err)
	}
	for _, m := range doc.Materials {
		h, err := repo.CreateMaterial(m)
		add(fmt.Sprintf("material %d", m.ID), h, err)
	}
	for _, s := range doc.Sets {
		h, err := repo.CreateSet(s)
		add("set "+s.Name, h, err)
	}
	for _, c := range doc.Constraints {
		h, err := repo.CreateConstraint(c)
		add(fmt.Sprintf("constraint %d", c.ID), h, err)
	}
	for _, l := range doc.Loads {
		h, err := repo.CreateLoad(l)
		add(fmt.Sprintf("load %d", l.ID), h, err)
	}
	for _, r := range doc.RigidBodies {
		h, err := repo.CreateRigidBody(r)
		add("rigid body "+r.Name, h, err)
	}
	for _, c := range doc.Contacts {
		h, err := repo.CreateContact(c)
		add("contact "+c.Name, h, err)
	}

	logger.Debug("host objects created", "source", doc.Source, "count", len(handles), "failed", len(errs))
	return handles, errors.Join(errs...)
}
