package ruc

import "fmt"

// Location pinpoints a single byte in the source, plus the line and
// column a diagnostic should report it at. Lines and columns are
// 1-based; Cursor is the 0-based byte offset handed out by the I/O
// buffer.
type Location struct {
	Line   int
	Column int
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span covers the region between two locations, normally the point
// where a token or construct started and where it ended.
type Span struct {
	Start Location
	End   Location
}

// NewSpan builds a Span out of two locations already produced by the
// I/O buffer.
func NewSpan(start, end Location) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		if s.Start.Column == s.End.Column {
			return s.Start.String()
		}
		return fmt.Sprintf("%d:%d..%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}
