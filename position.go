package sightline

import "fmt"

// Position is a zero-based (line, column) point in a source file. Columns
// are measured in the same units the span producer uses for span boundaries.
type Position struct {
	Line int
	Col  int
}

// Range is a half-open position interval: Start is the first included
// character, End points one past the last.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether p falls inside the range. The start bound is
// inclusive and the end bound exclusive: a cursor sitting exactly on End is
// outside, a cursor on Start is inside.
func (r Range) Contains(p Position) bool {
	lower := r.Start.Line < p.Line || (r.Start.Line == p.Line && r.Start.Col <= p.Col)
	upper := r.End.Line > p.Line || (r.End.Line == p.Line && r.End.Col > p.Col)
	return lower && upper
}

// Location is a position range within a named file.
type Location struct {
	File  string
	Range Range
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Range.Start.Line, l.Range.Start.Col)
}
