// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/deckconv/internal/host"
	"github.com/pdiddy/deckconv/pkg/model"
)

func TestRenderParse(t *testing.T) {
	var buf bytes.Buffer
	renderParse(&buf, parseOutput{
		Path:     "model.k",
		Dialect:  model.DialectLsDyna,
		Counts:   model.Summary{Nodes: 4, Elements: 1},
		Unmapped: []string{"DATABASE_BINARY_D3PLOT"},
		Diagnostics: []diagnosticOutput{
			{Kind: model.KindLineParse, Line: 7, Content: "1 x", Message: "bad float"},
		},
		Objects: []host.Object{{Kind: "mesh", Label: "4 nodes", Size: 1}},
	})
	out := buf.String()

	for _, want := range []string{
		"model.k (lsdyna)",
		"Nodes",
		"Unmapped keywords: [DATABASE_BINARY_D3PLOT]",
		"4 nodes",
		"bad float",
		"1 diagnostics",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderParse_NoDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	renderParse(&buf, parseOutput{Path: "a.rad", Dialect: model.DialectRadioss})
	if !strings.Contains(buf.String(), "No diagnostics.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer than ten", 10, "much lo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.rad")
	if err := os.WriteFile(a, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	same, err := sameFile(a, filepath.Join(dir, ".", "a.rad"))
	if err != nil || !same {
		t.Errorf("sameFile = %v, %v; want true", same, err)
	}
	if _, err := sameFile(filepath.Join(dir, "missing.rad"), a); err == nil {
		t.Error("expected error for a missing file")
	}
}
