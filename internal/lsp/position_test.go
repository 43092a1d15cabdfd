package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quibble/internal/source"
)

func TestUTF16PositionMapping(t *testing.T) {
	fs := source.NewFileSet()
	// "é" is 2 bytes / 1 unit, "🙂" is 4 bytes / 2 units.
	content := "ab\né🙂x\n"
	file := fs.Get(fs.AddVirtual("a.js", []byte(content)))

	tests := []struct {
		name   string
		offset uint32
		pos    position
	}{
		{"start", 0, position{0, 0}},
		{"end of first line", 2, position{0, 2}},
		{"start of second line", 3, position{1, 0}},
		{"after two-byte rune", 5, position{1, 1}},
		{"after astral rune", 9, position{1, 3}},
		{"eof", 11, position{2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pos, filePosition(file, tt.offset))
			assert.Equal(t, tt.offset, fileOffset(file, tt.pos))
		})
	}

	t.Run("clamps", func(t *testing.T) {
		assert.Equal(t, uint32(2), fileOffset(file, position{0, 40}))
		assert.Equal(t, uint32(11), fileOffset(file, position{9, 0}))
		// внутри суррогатной пары
		assert.Equal(t, uint32(5), fileOffset(file, position{1, 2}))
		assert.Equal(t, position{2, 0}, filePosition(file, 99))
	})

	assert.Equal(t, lspRange{Start: position{1, 1}, End: position{1, 3}},
		spanRange(file, source.Span{File: file.ID, Start: 5, End: 9}))
}

func TestRangeOverlaps(t *testing.T) {
	diagRange := lspRange{Start: position{1, 4}, End: position{1, 10}}
	tests := []struct {
		name string
		r    lspRange
		want bool
	}{
		{"cursor inside", lspRange{position{1, 6}, position{1, 6}}, true},
		{"cursor at end", lspRange{position{1, 10}, position{1, 10}}, true},
		{"whole file", lspRange{position{0, 0}, position{5, 0}}, true},
		{"before", lspRange{position{1, 0}, position{1, 3}}, false},
		{"next line", lspRange{position{2, 0}, position{2, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diagRange.overlaps(tt.r))
		})
	}
}
