package jsstr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCook(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`plain`, "plain"},
		{`a\tb`, "a\tb"},
		{`a\nb\r\v\f\b`, "a\nb\r\v\f\b"},
		{`it\'s`, "it's"},
		{`say \"hi\"`, `say "hi"`},
		{`back\\slash`, `back\slash`},
		{`\x41B\u{43}`, "ABC"},
		{`\uD83D\uDE00`, "\U0001F600"},
		{`\0`, "\x00"},
		{`\09`, "\x009"},
		{`\101`, "A"},
		{`\01`, "\x01"},
		{`\377`, "\u00ff"},
		{`\400`, " 0"},
		{`\777`, "?7"},
		{`\8`, "8"},
		{`\uD800`, "\xed\xa0\x80"},
		{`\u{DFFF}x`, "\xed\xbf\xbfx"},
		{`\uD800A`, "\xed\xa0\x80A"},
		{"raw \xff", "raw \xff"},
		{"\\\xff", "\xff"},
		{"a\\\nb", "ab"},
		{"a\\\r\nb", "ab"},
		{"a\\\u2028b", "ab"},
		{`\q`, "q"},
		{`\xZZ`, "xZZ"},
		{`\u12`, "u12"},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Cook(tt.raw))
		})
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in    string
		quote byte
		want  string
	}{
		{"a b", '\'', "a b"},
		{"it's", '\'', `it\'s`},
		{"it's", '"', "it's"},
		{`say "hi"`, '"', `say \"hi\"`},
		{`a\b`, '\'', `a\\b`},
		{"tab\there", '\'', `tab\x09here`},
		{"\xed\xa0\x80", '\'', `\uD800`},
		{"\xff", '\'', "\xff"},
		{"\U0001F600 \u00ff", '\'', "\U0001F600 \u00ff"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in, tt.quote))
		})
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, raw := range []string{
		`a  b\101`,
		`a  b\01`,
		`a  b\uD800`,
		`x\u{DC00}  y`,
		"a  \xfe b",
		`it\'s  "q"\\`,
		`\0  \x7f`,
	} {
		t.Run(raw, func(t *testing.T) {
			value := Cook(raw)
			for _, q := range []byte{'\'', '"'} {
				assert.Equal(t, value, Cook(Quote(value, q)))
			}
		})
	}
}
