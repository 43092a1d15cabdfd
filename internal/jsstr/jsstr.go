// Package jsstr decodes and re-encodes the bodies of JS string literals.
//
// Decoded values are byte strings, not always valid UTF-8: raw invalid bytes
// of the source are kept as they are, and a lone surrogate escape (\uD800) is
// stored as its 3-byte generalized UTF-8 form so that Quote can restore it.
package jsstr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Cook decodes the escapes of a JS string body (delimiters removed).
// Malformed escapes keep the escaped character, as engines in sloppy mode do.
func Cook(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); {
		ch := raw[i]
		if ch != '\\' || i+1 >= len(raw) {
			b.WriteByte(ch)
			i++
			continue
		}
		i++ // backslash
		esc := raw[i]
		switch esc {
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0', '1', '2', '3', '4', '5', '6', '7':
			r, n := octalEscape(raw, i)
			b.WriteRune(r)
			i += n
		case '\r':
			// line continuation
			i++
			if i < len(raw) && raw[i] == '\n' {
				i++
			}
		case '\n':
			i++
		case 'x':
			if r, ok := hexRune(raw, i+1, 2); ok {
				b.WriteRune(r)
				i += 3
			} else {
				b.WriteByte('x')
				i++
			}
		case 'u':
			r, n := unicodeEscape(raw, i+1)
			if n == 0 {
				b.WriteByte('u')
				i++
				continue
			}
			i += 1 + n
			if utf16.IsSurrogate(r) && strings.HasPrefix(raw[i:], `\u`) {
				if lo, m := unicodeEscape(raw, i+2); m > 0 {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			if utf16.IsSurrogate(r) {
				writeSurrogate(&b, r)
			} else {
				b.WriteRune(r)
			}
		default:
			r, size := utf8.DecodeRuneInString(raw[i:])
			switch {
			case r == utf8.RuneError && size == 1:
				b.WriteByte(raw[i])
			case r == '\u2028', r == '\u2029':
				// LS and PS after a backslash are line continuations too
			default:
				b.WriteRune(r)
			}
			i += size
		}
	}
	return b.String()
}

// Quote escapes s for a string body delimited by quote. Cook(Quote(s, q))
// returns s for every s that Cook can produce, except a lone high surrogate
// directly followed by a lone low one: re-escaped, the two form a pair.
func Quote(s string, quote byte) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			if sr, ok := surrogateAt(s, i); ok {
				fmt.Fprintf(&b, `\u%04X`, sr)
				i += 3
				continue
			}
			b.WriteByte(s[i])
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

// octalEscape reads a legacy octal escape at raw[i:]: up to three digits
// starting with 0-3, up to two otherwise, so the value never exceeds \377.
// \0 not followed by an octal digit is NUL.
func octalEscape(raw string, i int) (rune, int) {
	v := rune(raw[i] - '0')
	limit := 2
	if v <= 3 {
		limit = 3
	}
	n := 1
	for n < limit && i+n < len(raw) && raw[i+n] >= '0' && raw[i+n] <= '7' {
		v = v*8 + rune(raw[i+n]-'0')
		n++
	}
	return v, n
}

// unicodeEscape reads XXXX or {X...} at raw[i:] and returns the rune and the
// number of bytes consumed.
func unicodeEscape(raw string, i int) (rune, int) {
	if i < len(raw) && raw[i] == '{' {
		end := strings.IndexByte(raw[i:], '}')
		if end < 2 {
			return 0, 0
		}
		v, err := strconv.ParseUint(raw[i+1:i+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0
		}
		return rune(v), end + 1
	}
	r, ok := hexRune(raw, i, 4)
	if !ok {
		return 0, 0
	}
	return r, 4
}

func hexRune(raw string, i, digits int) (rune, bool) {
	if i+digits > len(raw) {
		return 0, false
	}
	v, err := strconv.ParseUint(raw[i:i+digits], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// writeSurrogate stores a surrogate code point in 3-byte form (ED A0..BF xx),
// which utf8 rejects and Quote recognizes.
func writeSurrogate(b *strings.Builder, r rune) {
	b.WriteByte(byte(0xE0 | r>>12))
	b.WriteByte(byte(0x80 | (r>>6)&0x3F))
	b.WriteByte(byte(0x80 | r&0x3F))
}

func surrogateAt(s string, i int) (rune, bool) {
	if i+2 >= len(s) || s[i] != 0xED || s[i+1] < 0xA0 || s[i+1] > 0xBF || s[i+2]&0xC0 != 0x80 {
		return 0, false
	}
	return rune(s[i]&0x0F)<<12 | rune(s[i+1]&0x3F)<<6 | rune(s[i+2]&0x3F), true
}
