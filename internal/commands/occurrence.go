package commands

import (
	"context"

	"github.com/kobzarvs/jsxpad/internal/buffer"
)

// OccurrenceState is what selectNextOccurrence remembers between calls. The
// host owns it and hands it back on the next call. Whole-word matching stays
// on only while the selections are still exactly the ones the previous call
// produced.
type OccurrenceState struct {
	Last      buffer.Selections `json:"last,omitempty"`
	WholeWord bool              `json:"whole_word,omitempty"`
}

func (s OccurrenceState) wholeWord(current buffer.Selections) bool {
	return s.WholeWord && current.Equal(s.Last)
}

// expandWord grows a cursor to the word around it.
func expandWord(b *buffer.Buffer, p buffer.Pos) (buffer.Range, bool) {
	line := b.LineRunes(p.Line)
	start, end := p.Col, p.Col
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	for end < len(line) && isWordRune(line[end]) {
		end++
	}
	if start == end {
		return buffer.Range{}, false
	}
	return buffer.Span(buffer.Pos{Line: p.Line, Col: start}, buffer.Pos{Line: p.Line, Col: end}), true
}

// expandPrimary replaces a bare primary cursor by its word.
func expandPrimary(in Input) (Result, bool) {
	word, ok := expandWord(in.Buffer, in.Selections.Primary().Head)
	if !ok {
		return Result{}, false
	}
	sels := in.Selections.Clone()
	sels[len(sels)-1] = word
	return Result{
		Selections: sels,
		Occurrence: OccurrenceState{Last: sels.Clone(), WholeWord: true},
	}, true
}

type matcher struct {
	text      []rune
	needle    []rune
	wholeWord bool
}

func (m matcher) at(i int) bool {
	n := len(m.needle)
	if i < 0 || i+n > len(m.text) {
		return false
	}
	for k, r := range m.needle {
		if m.text[i+k] != r {
			return false
		}
	}
	if !m.wholeWord {
		return true
	}
	if isWordRune(m.needle[0]) && i > 0 && isWordRune(m.text[i-1]) {
		return false
	}
	if isWordRune(m.needle[n-1]) && i+n < len(m.text) && isWordRune(m.text[i+n]) {
		return false
	}
	return true
}

// next finds the first match at or after from, wrapping to the start.
func (m matcher) next(from int) (int, bool) {
	for i := from; i+len(m.needle) <= len(m.text); i++ {
		if m.at(i) {
			return i, true
		}
	}
	for i := 0; i < from && i+len(m.needle) <= len(m.text); i++ {
		if m.at(i) {
			return i, true
		}
	}
	return 0, false
}

func newMatcher(in Input, wholeWord bool) (matcher, buffer.Pos, bool) {
	from, to := in.Selections.Primary().Ordered()
	needle := []rune(in.Buffer.Slice(from, to))
	if len(needle) == 0 {
		return matcher{}, to, false
	}
	return matcher{text: []rune(in.Buffer.Text()), needle: needle, wholeWord: wholeWord}, to, true
}

func selectNextOccurrence(_ context.Context, in Input) (Result, bool) {
	if len(in.Selections) == 0 {
		return Result{}, false
	}
	if in.Selections.Primary().Empty() {
		return expandPrimary(in)
	}
	whole := in.Occurrence.wholeWord(in.Selections)
	m, end, ok := newMatcher(in, whole)
	if !ok {
		return Result{}, false
	}
	off, found := m.next(in.Buffer.Offset(end))
	if !found {
		return Result{}, false
	}
	from := in.Buffer.PosAt(off)
	to := in.Buffer.PosAt(off + len(m.needle))
	if in.Selections.Contains(from, to) {
		return Result{}, false
	}
	sels := append(in.Selections.Clone(), buffer.Span(from, to))
	return Result{
		Selections: sels,
		Occurrence: OccurrenceState{Last: sels.Clone(), WholeWord: whole},
	}, true
}

// selectAllOccurrences adds every match of the primary selection at once. A
// bare cursor is first expanded to its word and matched as a whole word.
func selectAllOccurrences(_ context.Context, in Input) (Result, bool) {
	if len(in.Selections) == 0 {
		return Result{}, false
	}
	expanded := false
	if in.Selections.Primary().Empty() {
		res, ok := expandPrimary(in)
		if !ok {
			return Result{}, false
		}
		in.Selections, in.Occurrence = res.Selections, res.Occurrence
		expanded = true
	}
	whole := in.Occurrence.wholeWord(in.Selections)
	m, _, ok := newMatcher(in, whole)
	if !ok {
		return Result{}, false
	}
	sels := in.Selections.Clone()
	for i := 0; i+len(m.needle) <= len(m.text); i++ {
		if !m.at(i) {
			continue
		}
		from := in.Buffer.PosAt(i)
		to := in.Buffer.PosAt(i + len(m.needle))
		if !sels.Contains(from, to) {
			sels = append(sels, buffer.Span(from, to))
		}
		i += len(m.needle) - 1
	}
	if len(sels) == len(in.Selections) && !expanded {
		return Result{}, false
	}
	return Result{
		Selections: sels,
		Occurrence: OccurrenceState{Last: sels.Clone(), WholeWord: whole},
	}, true
}
