package parser

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const utf8BOM = "\uFEFF"

// normalizeHeader produces the column names for a header row: the UTF-8
// BOM is stripped from the first cell, every cell is NFC-normalized, control
// characters are dropped and surrounding space trimmed. HeaderMap is then
// applied. Empty names become "col_N" with N the 1-based column number, the
// same numbering error messages use; duplicate names are an error since
// records are keyed by name.
func normalizeHeader(cells []string, opt Options) ([]string, error) {
	// A transform chain carries state, so build one per header.
	clean := transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc)))

	out := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	for i, cell := range cells {
		if i == 0 {
			cell = strings.TrimPrefix(cell, utf8BOM)
		}
		s, _, err := transform.String(clean, cell)
		if err != nil {
			return nil, fmt.Errorf("header column %d: %w", i+1, err)
		}
		s = strings.TrimSpace(s)
		if m, ok := opt.HeaderMap[s]; ok {
			s = m
		}
		if s == "" {
			s = fmt.Sprintf("col_%d", i+1)
		}
		if j, dup := seen[s]; dup {
			return nil, fmt.Errorf("duplicate header %q in columns %d and %d", s, j+1, i+1)
		}
		seen[s] = i
		out[i] = s
	}
	return out, nil
}

// blankRow reports whether every cell is empty after trimming. A row with
// no cells is blank.
func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
