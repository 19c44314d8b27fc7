package source

import "fmt"

// Span is a half-open byte range [Start, End) within a single File.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// Empty reports whether the span covers zero bytes.
func (s Span) Empty() bool { return s.Start == s.End }

// Len returns the number of bytes the span covers.
func (s Span) Len() uint32 { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span enclosing both s and other. Spans from
// different files cannot be merged; s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
