// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Fields splits a data line into tokens. Lines containing a comma are
// split on commas, all others on runs of whitespace; empty tokens are
// discarded either way.
func Fields(s string) []string {
	if !strings.Contains(s, ",") {
		if f := strings.Fields(s); len(f) > 0 {
			return f
		}
		return nil
	}
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseFloat parses decimal or engineering notation. Fortran-style
// exponents ("1.0D+03") are accepted.
func ParseFloat(tok string) (float64, error) {
	s := strings.TrimSpace(tok)
	if strings.ContainsAny(s, "dD") {
		s = strings.NewReplacer("d", "e", "D", "e").Replace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}
	return v, nil
}

// ParseInt parses a decimal integer id or code.
func ParseInt(tok string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", tok)
	}
	return v, nil
}

// ParseFloats parses every token as a float.
func ParseFloats(toks []string) ([]float64, error) {
	out := make([]float64, len(toks))
	for i, t := range toks {
		v, err := ParseFloat(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ParseInts parses every token as an integer.
func ParseInts(toks []string) ([]int, error) {
	out := make([]int, len(toks))
	for i, t := range toks {
		v, err := ParseInt(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// IsInteger reports whether tok parses as an integer.
func IsInteger(tok string) bool {
	_, err := ParseInt(tok)
	return err == nil
}

// IsNumeric reports whether tok parses as a number.
func IsNumeric(tok string) bool {
	_, err := ParseFloat(tok)
	return err == nil
}

// AllIntegers reports whether every token is an integer. It is false for
// an empty slice.
func AllIntegers(toks []string) bool {
	if len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		if !IsInteger(t) {
			return false
		}
	}
	return true
}

// FixedColumns cuts a line into fixed-width fields, trimming each one.
// Fields past the end of the line are returned empty; a trailing
// remainder is ignored.
func FixedColumns(line string, widths ...int) []string {
	out := make([]string, len(widths))
	pos := 0
	for i, w := range widths {
		if pos >= len(line) {
			break
		}
		end := min(pos+w, len(line))
		out[i] = strings.TrimSpace(line[pos:end])
		pos = end
	}
	return out
}
