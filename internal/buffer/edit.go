package buffer

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Edit replaces From..To with Text. An empty range inserts; empty Text deletes.
// All edits of one command are expressed against the same snapshot.
type Edit struct {
	From Pos
	To   Pos
	Text string
}

func Insert(at Pos, text string) Edit {
	return Edit{From: at, To: at, Text: text}
}

func Delete(from, to Pos) Edit {
	return Edit{From: from, To: to}
}

func (e Edit) String() string {
	return fmt.Sprintf("%v-%v %q", e.From, e.To, e.Text)
}

// end is where the inserted text stops once the edit is applied.
func (e Edit) end() Pos {
	nl := strings.Count(e.Text, "\n")
	if nl == 0 {
		return Pos{Line: e.From.Line, Col: e.From.Col + utf8.RuneCountInString(e.Text)}
	}
	last := e.Text[strings.LastIndexByte(e.Text, '\n')+1:]
	return Pos{Line: e.From.Line + nl, Col: utf8.RuneCountInString(last)}
}

// descending orders edits last-in-document first. Ties keep later input
// first so equal insertion points end up in input order, and a deletion
// starting where an insertion sits is applied before the insertion.
func descending(edits []Edit) []Edit {
	type indexed struct {
		Edit
		idx int
	}
	tmp := make([]indexed, len(edits))
	for i, e := range edits {
		if e.To.Less(e.From) {
			e.From, e.To = e.To, e.From
		}
		tmp[i] = indexed{Edit: e, idx: i}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		a, b := tmp[i], tmp[j]
		if c := Compare(a.From, b.From); c != Equal {
			return c == After
		}
		if c := Compare(a.To, b.To); c != Equal {
			return c == After
		}
		return a.idx > b.idx
	})
	out := make([]Edit, len(tmp))
	for i, e := range tmp {
		out[i] = e.Edit
	}
	return out
}

// Apply applies edits computed against the current snapshot, last edit in the
// document first so earlier positions stay valid. Overlapping edits are a
// programming error.
func (b *Buffer) Apply(edits []Edit) {
	sorted := descending(edits)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].From.Less(sorted[i].To) {
			panic(fmt.Sprintf("buffer: overlapping edits %v and %v", sorted[i], sorted[i-1]))
		}
	}
	for _, e := range sorted {
		b.Replace(e.From, e.To, e.Text)
	}
}

// MapPos reports where p, a position in the snapshot the edits were computed
// against, lands once the edits are applied. Positions inside a replaced
// range move to the end of the replacement; insertions at p push it forward.
func MapPos(p Pos, edits []Edit) Pos {
	for _, e := range descending(edits) {
		switch {
		case !p.Less(e.To):
			end := e.end()
			p = Shift(p, end.Line-e.To.Line, end.Col-e.To.Col, e.To.Line)
		case e.From.Less(p):
			p = e.end()
		}
	}
	return p
}
