// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package radioss

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/pdiddy/deckconv/internal/deck"
)

// idsPerLine is the wrap width of SET, BOUND and LOAD member lists.
const idsPerLine = 8

// Float formats v as a 12-character field with 5 significant digits and
// an explicit exponent.
func Float(v float64) string { return fmt.Sprintf("%12.4E", v) }

// Int formats v right-justified in an 8-character field.
func Int(v int) string { return fmt.Sprintf("%8d", v) }

// writeIDs writes ids in lines of at most idsPerLine fields. An empty
// list writes nothing.
func writeIDs(w io.Writer, ids []int) {
	for i := 0; i < len(ids); i += idsPerLine {
		chunk := ids[i:min(i+idsPerLine, len(ids))]
		fields := make([]string, len(chunk))
		for j, id := range chunk {
			fields[j] = Int(id)
		}
		fmt.Fprintln(w, strings.Join(fields, " "))
	}
}

// optionalFloats formats trailing optional parameters. Unset values that
// precede a set one are written as 0 (the solver default); unset values
// after the last set one are omitted.
func optionalFloats(vals ...*float64) []string {
	last := -1
	for i, v := range vals {
		if v != nil {
			last = i
		}
	}
	out := make([]string, 0, last+1)
	for _, v := range vals[:last+1] {
		if v == nil {
			out = append(out, Float(0))
			continue
		}
		out = append(out, Float(*v))
	}
	return out
}

// token makes a name safe to write as a single whitespace-separated field.
func token(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ',' {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "unnamed"
	}
	return name
}

// setLabel is the written form of a set name. Set names must not read
// back as member ids, so integer names get a prefix.
func setLabel(name string) string {
	name = token(name)
	if deck.IsInteger(name) {
		return "SET_" + name
	}
	return name
}
