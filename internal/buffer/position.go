package buffer

import "fmt"

// Pos is a line/column position. Col counts characters (runes), not bytes.
// A Pos only means something against the buffer snapshot it was taken from.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Order is the result of comparing two positions.
type Order int

const (
	Before Order = -1
	Equal  Order = 0
	After  Order = 1
)

func (o Order) String() string {
	switch o {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "equal"
	}
}

// Compare reports where a sits relative to b.
func Compare(a, b Pos) Order {
	if a.Line != b.Line {
		if a.Line < b.Line {
			return Before
		}
		return After
	}
	if a.Col < b.Col {
		return Before
	}
	if a.Col > b.Col {
		return After
	}
	return Equal
}

func (p Pos) Less(other Pos) bool {
	return Compare(p, other) == Before
}

// Shift moves p by lineDelta lines. colDelta is only applied when p sits on
// line onLine (the line the edit happened on).
func Shift(p Pos, lineDelta, colDelta, onLine int) Pos {
	if p.Line == onLine {
		p.Col += colDelta
	}
	p.Line += lineDelta
	return p
}

func minPos(a, b Pos) Pos {
	if b.Less(a) {
		return b
	}
	return a
}

func maxPos(a, b Pos) Pos {
	if a.Less(b) {
		return b
	}
	return a
}

// Range is a selection. Anchor is where it started, Head is where the caret
// is. Anchor == Head is a plain cursor.
type Range struct {
	Anchor Pos
	Head   Pos
}

// Cursor returns a zero-width range at p.
func Cursor(p Pos) Range {
	return Range{Anchor: p, Head: p}
}

// Span returns a forward range from -> to.
func Span(from, to Pos) Range {
	return Range{Anchor: from, Head: to}
}

func (r Range) Empty() bool {
	return r.Anchor == r.Head
}

// Reversed reports whether the anchor sits after the head.
func (r Range) Reversed() bool {
	return r.Head.Less(r.Anchor)
}

// Ordered returns the range endpoints in document order without touching r.
func (r Range) Ordered() (from, to Pos) {
	if r.Reversed() {
		return r.Head, r.Anchor
	}
	return r.Anchor, r.Head
}

// Oriented builds a range from document-ordered endpoints, restoring the
// orientation of the range they came from.
func Oriented(from, to Pos, reversed bool) Range {
	if reversed {
		return Range{Anchor: to, Head: from}
	}
	return Range{Anchor: from, Head: to}
}

func (r Range) String() string {
	return r.Anchor.String() + "-" + r.Head.String()
}

// Selections is the ordered set of simultaneous ranges. Order matters to the
// caller; ranges may overlap.
type Selections []Range

// Primary is the main range, the most recently added one.
func (s Selections) Primary() Range {
	if len(s) == 0 {
		return Range{}
	}
	return s[len(s)-1]
}

func (s Selections) Clone() Selections {
	if s == nil {
		return nil
	}
	out := make(Selections, len(s))
	copy(out, s)
	return out
}

func (s Selections) Equal(other Selections) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether some range covers exactly from..to, in either
// orientation.
func (s Selections) Contains(from, to Pos) bool {
	for _, r := range s {
		f, t := r.Ordered()
		if f == from && t == to {
			return true
		}
	}
	return false
}
