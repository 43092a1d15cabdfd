package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"

	"quibble/internal/source"
)

// clampUint32 narrows n, saturating at both ends.
func clampUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// utf16Len is the number of UTF-16 code units r occupies.
func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// lineBounds returns the byte range of zero-based line in file, without the newline.
func lineBounds(file *source.File, line int) (start, end uint32) {
	size := clampUint32(len(file.Content))
	if line > 0 {
		start = file.LineIdx[line-1] + 1
	}
	end = size
	if line < len(file.LineIdx) {
		end = file.LineIdx[line]
	}
	return start, max(start, end)
}

// fileOffset converts an LSP position in file to a byte offset. Positions
// past the end of a line clamp to the line end; past the last line, to EOF.
func fileOffset(file *source.File, pos position) uint32 {
	if file == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line > len(file.LineIdx) {
		return clampUint32(len(file.Content))
	}
	start, end := lineBounds(file, pos.Line)
	units := 0
	off := start
	for off < end && units < pos.Character {
		r, size := utf8.DecodeRune(file.Content[off:end])
		if units+utf16Len(r) > pos.Character {
			break
		}
		units += utf16Len(r)
		off += clampUint32(size)
	}
	return off
}

// filePosition converts a byte offset in file to an LSP position.
func filePosition(file *source.File, offset uint32) position {
	if file == nil {
		return position{}
	}
	offset = min(offset, clampUint32(len(file.Content)))
	line := sort.Search(len(file.LineIdx), func(i int) bool { return file.LineIdx[i] >= offset })
	start, _ := lineBounds(file, line)
	units := 0
	for off := start; off < offset; {
		r, size := utf8.DecodeRune(file.Content[off:offset])
		units += utf16Len(r)
		off += clampUint32(size)
	}
	return position{Line: line, Character: units}
}

func spanRange(file *source.File, span source.Span) lspRange {
	return lspRange{Start: filePosition(file, span.Start), End: filePosition(file, span.End)}
}

// before reports whether a sorts strictly before b.
func (a position) before(b position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

// overlaps treats ranges as closed so an empty cursor range touching a
// diagnostic edge still matches it.
func (r lspRange) overlaps(other lspRange) bool {
	return !r.End.before(other.Start) && !other.End.before(r.Start)
}
