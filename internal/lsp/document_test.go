package lsp

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentApplyChanges(t *testing.T) {
	rng := func(l1, c1, l2, c2 int) *lspRange {
		return &lspRange{Start: position{l1, c1}, End: position{l2, c2}}
	}
	tests := []struct {
		name    string
		text    string
		changes []textDocumentContentChangeEvent
		want    string
	}{
		{
			name:    "full replace",
			text:    "old",
			changes: []textDocumentContentChangeEvent{{Text: "new"}},
			want:    "new",
		},
		{
			name:    "insert",
			text:    "clsx('a b')\n",
			changes: []textDocumentContentChangeEvent{{Range: rng(0, 7, 0, 7), Text: " "}},
			want:    "clsx('a  b')\n",
		},
		{
			name:    "delete across lines",
			text:    "one\ntwo\nthree",
			changes: []textDocumentContentChangeEvent{{Range: rng(0, 2, 2, 1), Text: ""}},
			want:    "onhree",
		},
		{
			name: "sequential",
			text: "ab",
			changes: []textDocumentContentChangeEvent{
				{Range: rng(0, 2, 0, 2), Text: "c"},
				{Range: rng(0, 0, 0, 1), Text: "X"},
			},
			want: "Xbc",
		},
		{
			name:    "utf16 columns",
			text:    "'🙂  x'",
			changes: []textDocumentContentChangeEvent{{Range: rng(0, 3, 0, 4), Text: ""}},
			want:    "'🙂 x'",
		},
		{
			name:    "crlf line end",
			text:    "ab\r\ncd",
			changes: []textDocumentContentChangeEvent{{Range: rng(0, 9, 0, 9), Text: "!"}},
			want:    "ab!\r\ncd",
		},
		{
			name:    "past end",
			text:    "ab",
			changes: []textDocumentContentChangeEvent{{Range: rng(5, 0, 6, 0), Text: "!"}},
			want:    "ab!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &document{text: tt.text}
			doc.apply(tt.changes)
			assert.Equal(t, tt.want, doc.text)
		})
	}
}

func TestURIToPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix paths")
	}
	assert.Equal(t, "/work/my dir/App.vue", uriToPath("file:///work/my%20dir/App.vue"))
	assert.Empty(t, uriToPath("untitled:Untitled-1"))
	assert.Empty(t, uriToPath("https://example.com/a.js"))
}

func TestTextEnd(t *testing.T) {
	assert.Equal(t, position{0, 0}, textEnd(""))
	assert.Equal(t, position{1, 0}, textEnd("abc\n"))
	assert.Equal(t, position{1, 3}, textEnd("x\na🙂"))
}
