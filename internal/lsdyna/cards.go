// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lsdyna

import (
	"strings"

	"github.com/pdiddy/deckconv/internal/deck"
)

// Standard LS-DYNA card layouts.
var (
	wide10  = []int{10, 10, 10, 10, 10, 10, 10, 10}
	narrow8 = []int{8, 8, 8, 8, 8, 8, 8, 8, 8, 8}
	nodeCol = []int{8, 16, 16, 16, 8, 8}
)

// record splits a card into positional fields. Comma-separated cards keep
// empty fields in place. Otherwise the line is read in fixed columns when
// every token sits inside a single column, and as whitespace-separated
// free format when it does not. Missing fields come back as "".
func record(l deck.Line, widths []int) []string {
	if strings.Contains(l.Text, ",") {
		parts := strings.Split(l.Text, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	free := strings.Fields(l.Text)
	cols := deck.FixedColumns(l.Raw, widths...)
	if fixedLayout(cols, free) {
		for len(cols) > 0 && cols[len(cols)-1] == "" {
			cols = cols[:len(cols)-1]
		}
		return cols
	}
	return free
}

func fixedLayout(cols, free []string) bool {
	var b strings.Builder
	for _, c := range cols {
		if strings.ContainsAny(c, " \t") {
			return false
		}
		b.WriteString(c)
	}
	return b.String() == strings.Join(free, "")
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// intAt parses field i, returning def for a blank or missing field.
func intAt(rec []string, i, def int) (int, error) {
	s := field(rec, i)
	if s == "" {
		return def, nil
	}
	return deck.ParseInt(s)
}

// floatAt parses field i, returning def for a blank or missing field.
func floatAt(rec []string, i int, def float64) (float64, error) {
	s := field(rec, i)
	if s == "" {
		return def, nil
	}
	return deck.ParseFloat(s)
}

// optFloatAt parses field i into a pointer; blank fields stay nil.
func optFloatAt(rec []string, i int) (*float64, error) {
	s := field(rec, i)
	if s == "" {
		return nil, nil
	}
	v, err := deck.ParseFloat(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// nonZeroInts parses every non-blank field and drops zeros, which LS-DYNA
// uses to pad id lists.
func nonZeroInts(rec []string) ([]int, error) {
	var out []int
	for _, s := range rec {
		if s == "" {
			continue
		}
		v, err := deck.ParseInt(s)
		if err != nil {
			return nil, err
		}
		if v != 0 {
			out = append(out, v)
		}
	}
	return out, nil
}
