// Package ast holds the read-only syntax trees the rules inspect. Trees are
// built by internal/parser and are never mutated afterwards.
package ast

import "quibble/internal/source"

// Node is implemented by every tree node.
type Node interface {
	Kind() Kind
	Span() source.Span
}

// Base carries the span shared by all nodes.
type Base struct {
	Sp source.Span
}

func (b *Base) Span() source.Span { return b.Sp }

// SourceCode is one parsed file. Programs holds every script body found in the
// file (one for plain scripts, one per <script> block for SFCs). Template is set
// only when the parser provides template traversal; HasTemplate reports that
// capability.
type SourceCode struct {
	File        *source.File
	Path        string
	Programs    []*Program
	Template    *Document
	HasTemplate bool
}

// Text returns the source bytes covered by span.
func (s *SourceCode) Text(span source.Span) string {
	if s == nil || s.File == nil {
		return ""
	}
	if int(span.End) > len(s.File.Content) || span.Start > span.End {
		return ""
	}
	return string(s.File.Content[span.Start:span.End])
}
