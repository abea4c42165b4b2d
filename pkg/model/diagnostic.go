// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes carried by diagnostics and returned errors.
var (
	ErrArity              = errors.New("wrong number of fields")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrBadDOF             = errors.New("invalid DOF code")
	ErrUnsupportedVariant = errors.New("unsupported keyword variant")
	ErrUnknownKeyword     = errors.New("unrecognized keyword")
	ErrDanglingReference  = errors.New("dangling reference")
	ErrNoMesh             = errors.New("model has no mesh")
	ErrNoAnalysis         = errors.New("model has no analysis properties")
)

// DiagnosticKind classifies a diagnostic.
type DiagnosticKind string

const (
	// KindLineParse: a malformed data line was dropped; the scan continued.
	KindLineParse DiagnosticKind = "line-parse"
	// KindUnmappedKeyword: a keyword or variant is not handled; its records were dropped.
	KindUnmappedKeyword DiagnosticKind = "unmapped-keyword"
	// KindDanglingReference: a record references an id or set that does not exist.
	KindDanglingReference DiagnosticKind = "dangling-reference"
	// KindStructural: a required record (mesh, analysis properties) is missing.
	KindStructural DiagnosticKind = "structural"
	// KindIO: reading or writing a file failed.
	KindIO DiagnosticKind = "io"
)

// Diagnostic records a problem found while reading, converting or writing a
// deck. Path and Content always identify the offending file and line text.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Path    string         `json:"path" yaml:"path"`
	Line    int            `json:"line,omitempty" yaml:"line,omitempty"`
	Section string         `json:"section,omitempty" yaml:"section,omitempty"`
	Content string         `json:"content" yaml:"content"`
	Err     error          `json:"-" yaml:"-"`
}

// Message returns the cause text.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return string(d.Kind)
	}
	return d.Err.Error()
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Path)
	if d.Line > 0 {
		fmt.Fprintf(&b, ":%d", d.Line)
	}
	fmt.Fprintf(&b, ": %s: %s", d.Kind, d.Message())
	if d.Content != "" {
		fmt.Fprintf(&b, " (%q)", d.Content)
	}
	return b.String()
}

func (d Diagnostic) Unwrap() error { return d.Err }

// StructuralError reports that an export or import step could not run
// because a required record is absent. It is fatal to that step only.
type StructuralError struct {
	Path string
	Op   string
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Diagnostic converts e into a KindStructural diagnostic.
func (e *StructuralError) Diagnostic() Diagnostic {
	return Diagnostic{Kind: KindStructural, Path: e.Path, Content: e.Op, Err: e.Err}
}

// CountKind returns how many diagnostics in ds have the given kind.
func CountKind(ds []Diagnostic, kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
