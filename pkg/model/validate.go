// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import "fmt"

// Validate checks cross references between the document's tables and
// returns one KindDanglingReference diagnostic per missing target. The
// document is not modified. Property-to-material references are only
// checked when the document defines materials at all.
//
// A diagnostic carries the line and text of the referencing record when
// the parser recorded its origin; otherwise Content is the record label.
func Validate(d *Document) []Diagnostic {
	d.ensureIndex()
	var out []Diagnostic
	dangling := func(record, format string, args ...any) {
		diag := Diagnostic{
			Kind:    KindDanglingReference,
			Path:    d.Source,
			Content: record,
			Err:     fmt.Errorf("%w: %s", ErrDanglingReference, fmt.Sprintf(format, args...)),
		}
		if o, ok := d.Origin(record); ok {
			diag.Line = o.Line
			diag.Section = o.Section
			diag.Content = o.Content
		}
		out = append(out, diag)
	}

	for _, e := range d.Elements {
		rec := RecordLabel("element", e.ID)
		for _, n := range e.Nodes {
			if _, ok := d.nodeIdx[n]; !ok {
				dangling(rec, "node %d", n)
			}
		}
		if e.PropertyID != 0 {
			if _, ok := d.propertyIdx[e.PropertyID]; !ok {
				dangling(rec, "property %d", e.PropertyID)
			}
		}
	}

	if len(d.Materials) > 0 {
		for _, p := range d.Properties {
			if _, ok := d.materialIdx[p.MaterialID]; !ok {
				dangling(RecordLabel("property", p.ID), "material %d", p.MaterialID)
			}
		}
	}

	for _, s := range d.Sets {
		rec := RecordLabel("set", s.Name)
		for _, m := range s.Members {
			var ok bool
			switch s.Kind {
			case SetNode:
				_, ok = d.nodeIdx[m]
			case SetElement, SetShell, SetSolid:
				_, ok = d.elementIdx[m]
			case SetPart:
				_, ok = d.propertyIdx[m]
			default:
				ok = true
			}
			if !ok {
				dangling(rec, "%s %d", s.Kind, m)
			}
		}
	}

	for _, c := range d.Constraints {
		rec := RecordLabel("constraint", c.ID)
		for _, n := range c.Nodes {
			if _, ok := d.nodeIdx[n]; !ok {
				dangling(rec, "node %d", n)
			}
		}
	}

	for _, l := range d.Loads {
		rec := RecordLabel("load", l.ID)
		for _, n := range l.Nodes {
			if _, ok := d.nodeIdx[n]; !ok {
				dangling(rec, "node %d", n)
			}
		}
	}

	for _, r := range d.RigidBodies {
		rec := RecordLabel("rigid body", r.Name)
		s, ok := d.Set(r.NodeSet)
		switch {
		case !ok:
			dangling(rec, "set %s", r.NodeSet)
		case s.Kind != SetNode:
			dangling(rec, "set %s is a %s set, want NODE", r.NodeSet, s.Kind)
		}
	}

	for _, c := range d.Contacts {
		rec := RecordLabel("contact", c.Name)
		for _, name := range []string{c.SlaveSet, c.MasterSet} {
			s, ok := d.Set(name)
			switch {
			case !ok:
				dangling(rec, "set %s", name)
			case s.Kind == SetPart:
				dangling(rec, "set %s is a PART set", name)
			}
		}
	}
	return out
}
