package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// document is an open editor buffer.
type document struct {
	uri     string
	path    string
	version int
	text    string
}

// apply folds content changes into the buffer in order. A change without
// a range replaces the whole text.
func (d *document) apply(changes []textDocumentContentChangeEvent) {
	for _, change := range changes {
		if change.Range == nil {
			d.text = change.Text
			continue
		}
		start := textOffset(d.text, change.Range.Start)
		end := max(start, textOffset(d.text, change.Range.End))
		d.text = d.text[:start] + change.Text + d.text[end:]
	}
}

// textOffset maps a UTF-16 position to a byte offset in raw buffer text.
// A trailing \r is not counted as part of the line.
func textOffset(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := 0
	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			return len(text)
		}
		i += nl + 1
	}
	units := 0
	for i < len(text) && units < pos.Character {
		if text[i] == '\n' || (text[i] == '\r' && strings.HasPrefix(text[i:], "\r\n")) {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if units+utf16Len(r) > pos.Character {
			break
		}
		units += utf16Len(r)
		i += size
	}
	return i
}

// uriToPath returns the absolute filesystem path for a file:// URI, or ""
// for any other scheme.
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	path := u.Path
	// file:///C:/x на Windows
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}
