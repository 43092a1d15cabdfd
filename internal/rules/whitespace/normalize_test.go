package whitespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"clean", "foo bar baz", "foo bar baz"},
		{"padded", "  foo   bar baz   ", "foo bar baz"},
		{"tabs and newlines", "foo\t\tbar\n\r\nbaz", "foo bar baz"},
		{"only spaces", "     ", ""},
		{"nbsp and ideographic", "foo\u00a0\u3000bar", "foo bar"},
		{"bom and line separator", "\ufefffoo\u2028bar", "foo bar"},
		{"zero width space is not whitespace", "foo\u200bbar", "foo\u200bbar"},
		{"single", "a", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "idempotent")
		})
	}
}

func TestIsSpace(t *testing.T) {
	for _, r := range []rune{'\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u1680', '\u2000', '\u200a', '\u202f', '\u3000'} {
		assert.True(t, IsSpace(r), "%U", r)
	}
	for _, r := range []rune{'a', '-', '\u200b', '\u0085', 0} {
		assert.False(t, IsSpace(r), "%U", r)
	}
}
