package diagfmt

import (
	"strings"

	"fortio.org/safecast"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/diag"
	"quibble/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview renders the full lines touched by edit before and
// after applying it.
func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, errors.New("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, errors.Errorf("file %d not found in FileSet", edit.Span.File)
	}

	startPos, endPos := fs.Resolve(edit.Span)
	startLine := startPos.Line
	endLine := max(endPos.Line, startLine)

	lenFileContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, errors.Errorf("len file content overflow: %w", err)
	}
	blockStart := lineStartOffset(file, startLine, lenFileContent)
	blockEnd := min(max(lineEndOffsetInclusive(file, endLine, lenFileContent), blockStart), lenFileContent)

	original := file.Content[blockStart:blockEnd]
	if edit.Span.Start < blockStart || edit.Span.End > blockEnd || edit.Span.End < edit.Span.Start {
		return fixEditPreview{}, errors.Errorf("edit span %d..%d out of range for preview block", edit.Span.Start, edit.Span.End)
	}
	relStart := int(edit.Span.Start - blockStart)
	relEnd := int(edit.Span.End - blockStart)

	after := make([]byte, 0, len(original)+len(edit.NewText))
	after = append(after, original[:relStart]...)
	after = append(after, edit.NewText...)
	after = append(after, original[relEnd:]...)

	return fixEditPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

// splitPreviewLines drops the final newline so a one-line block stays one line.
func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

func lineStartOffset(f *source.File, line, size uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return size
}

func lineEndOffsetInclusive(f *source.File, line, size uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := line - 1
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return size
}
