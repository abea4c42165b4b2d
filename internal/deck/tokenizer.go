// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck implements the dialect-neutral layer of deck reading:
// section tokenization, field splitting and numeric parsing.
package deck

import (
	"bufio"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/deckconv/pkg/model"
)

// maxLineSize bounds a single deck line. Keyword decks exported by
// pre-processors occasionally carry very long comment lines.
const maxLineSize = 1 << 20

// Syntax holds the two characters that shape a dialect's line structure.
type Syntax struct {
	Marker  byte // first character of a section header line
	Comment byte // first character of a comment line
}

var (
	Radioss = Syntax{Marker: '/', Comment: '#'}
	LsDyna  = Syntax{Marker: '*', Comment: '$'}
)

// SyntaxFor returns the line syntax of a dialect.
func SyntaxFor(d model.Dialect) Syntax {
	if d == model.DialectLsDyna {
		return LsDyna
	}
	return Radioss
}

// DetectDialect infers the dialect from a file extension. The second
// result is false for extensions that belong to neither format.
func DetectDialect(path string) (model.Dialect, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rad":
		return model.DialectRadioss, true
	case ".k", ".key", ".dyn", ".kw":
		return model.DialectLsDyna, true
	}
	return "", false
}

// Section is one occurrence of a section header.
type Section struct {
	// Header is the trimmed, upper-cased header text including the marker.
	Header string
	// Ordinal numbers header occurrences from 1 in file order.
	Ordinal int
	// Line is the 1-based source line of the header.
	Line int

	marker byte
}

// Parts splits the header on the section marker, dropping empty parts:
// "/PROP/SHELL/3" yields ["PROP", "SHELL", "3"].
func (s Section) Parts() []string {
	var parts []string
	for p := range strings.SplitSeq(s.Header, string(s.marker)) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Line is a data line paired with the section it belongs to.
type Line struct {
	Section Section
	Number  int
	Text    string

	// Raw keeps the leading whitespace that fixed-column layouts depend on.
	Raw string
}

// Fields tokenizes the line text.
func (l Line) Fields() []string { return Fields(l.Text) }

// Tokenizer turns raw deck text into (section, data line) pairs. It owns
// the current-section state; one Tokenizer serves one pass over one input.
type Tokenizer struct {
	r      io.Reader
	syn    Syntax
	upper  cases.Caser
	cur    *Section
	seen   []Section
	lineNo int
	err    error
}

// NewTokenizer returns a tokenizer reading r with the given syntax.
func NewTokenizer(r io.Reader, syn Syntax) *Tokenizer {
	return &Tokenizer{r: r, syn: syn, upper: cases.Upper(language.Und)}
}

// Lines returns the lazy sequence of data lines. Blank and comment lines
// are skipped, header lines only switch the current section, and data
// lines that precede every header are dropped without a record. The
// sequence can be ranged over once.
func (t *Tokenizer) Lines() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		sc := bufio.NewScanner(t.r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			t.lineNo++
			raw := strings.TrimRight(sc.Text(), " \t\r")
			text := strings.TrimSpace(raw)
			if text == "" || text[0] == t.syn.Comment {
				continue
			}
			if text[0] == t.syn.Marker {
				t.cur = &Section{
					Header:  t.upper.String(text),
					Ordinal: len(t.seen) + 1,
					Line:    t.lineNo,
					marker:  t.syn.Marker,
				}
				t.seen = append(t.seen, *t.cur)
				continue
			}
			if t.cur == nil {
				continue
			}
			if !yield(Line{Section: *t.cur, Number: t.lineNo, Text: text, Raw: raw}) {
				return
			}
		}
		t.err = sc.Err()
	}
}

// Visitor receives the section occurrences and data lines of one pass.
type Visitor interface {
	// Open is called for every section occurrence, in file order,
	// including occurrences without data lines.
	Open(sec Section)
	// Line is called for each data line of the open section.
	Line(l Line)
	// Close is called when the next section opens or the input ends.
	Close(sec Section)
}

// Walk runs a full pass over the input, reporting it to v. It returns
// the read error that ended the pass, if any.
func (t *Tokenizer) Walk(v Visitor) error {
	opened := 0
	openThrough := func(ord int) {
		for ; opened < ord; opened++ {
			if opened > 0 {
				v.Close(t.seen[opened-1])
			}
			v.Open(t.seen[opened])
		}
	}
	for l := range t.Lines() {
		openThrough(l.Section.Ordinal)
		v.Line(l)
	}
	openThrough(len(t.seen))
	if opened > 0 {
		v.Close(t.seen[opened-1])
	}
	return t.Err()
}

// Sections returns every header occurrence read so far, in order.
func (t *Tokenizer) Sections() []Section { return t.seen }

// Err returns the read error that ended the pass, if any.
func (t *Tokenizer) Err() error { return t.err }
