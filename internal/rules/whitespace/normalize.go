package whitespace

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// jsSpace is the ECMAScript \s class: WhiteSpace plus LineTerminator.
var jsSpace = rangetable.New(
	'\t', '\n', '\v', '\f', '\r', ' ',
	'\u00a0', '\u1680',
	'\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005',
	'\u2006', '\u2007', '\u2008', '\u2009', '\u200a',
	'\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff',
)

// IsSpace reports whether r is whitespace for class lists.
func IsSpace(r rune) bool {
	return unicode.Is(jsSpace, r)
}

// Normalize collapses whitespace runs to one space and trims both ends.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	return strings.Join(strings.FieldsFunc(s, IsSpace), " ")
}
