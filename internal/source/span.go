package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Contains reports whether other lies completely inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// Shrink trims n bytes from both ends; used to drop quote delimiters.
// A span shorter than 2n collapses to an empty span at its start.
func (s Span) Shrink(n uint32) Span {
	if s.Len() < 2*n {
		return Span{File: s.File, Start: s.Start, End: s.Start}
	}
	return Span{File: s.File, Start: s.Start + n, End: s.End - n}
}
