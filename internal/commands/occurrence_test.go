package commands

import (
	"testing"

	"github.com/kobzarvs/jsxpad/internal/buffer"
)

// next runs selectNextOccurrence the way a host does, feeding the returned
// state into the following call.
func next(t *testing.T, b *buffer.Buffer, sels buffer.Selections, state OccurrenceState) (buffer.Selections, OccurrenceState, bool) {
	t.Helper()
	_, res, ok := runInput(t, SelectNextOccurrence, Input{Buffer: b, Selections: sels, Occurrence: state})
	if !ok {
		return sels, state, false
	}
	if len(res.Edits) != 0 {
		t.Fatalf("occurrence selection edited the buffer: %v", res.Edits)
	}
	return res.Selections, res.Occurrence, true
}

func TestSelectNextCoversEveryOccurrence(t *testing.T) {
	b := buffer.New("foo bar foo\nfoo")
	sels := buffer.Selections{cursor(0, 1)}
	var state OccurrenceState
	for i := 0; i < 3; i++ {
		var ok bool
		sels, state, ok = next(t, b, sels, state)
		if !ok {
			t.Fatalf("call %d was a no-op", i+1)
		}
	}
	wantSelections(t, sels, span(0, 0, 0, 3), span(0, 8, 0, 11), span(1, 0, 1, 3))
	if _, _, ok := next(t, b, sels, state); ok {
		t.Fatalf("fourth call should find nothing new")
	}
}

func TestSelectNextWholeWord(t *testing.T) {
	b := buffer.New("foo food foo")
	sels, state, ok := next(t, b, buffer.Selections{cursor(0, 0)}, OccurrenceState{})
	if !ok || !state.WholeWord {
		t.Fatalf("expand = %v %+v", sels, state)
	}
	sels, _, ok = next(t, b, sels, state)
	if !ok {
		t.Fatalf("no next match")
	}
	wantSelections(t, sels, span(0, 0, 0, 3), span(0, 9, 0, 12))
}

func TestSelectNextSubstring(t *testing.T) {
	b := buffer.New("foo food foo")
	sels, state, ok := next(t, b, buffer.Selections{span(0, 0, 0, 3)}, OccurrenceState{})
	if !ok {
		t.Fatalf("no next match")
	}
	if state.WholeWord {
		t.Fatalf("explicit selection entered whole-word mode")
	}
	wantSelections(t, sels, span(0, 0, 0, 3), span(0, 4, 0, 7))
}

func TestSelectNextStaleStateDropsWholeWord(t *testing.T) {
	b := buffer.New("foo food")
	stale := OccurrenceState{Last: buffer.Selections{span(0, 4, 0, 7)}, WholeWord: true}
	sels, _, ok := next(t, b, buffer.Selections{span(0, 0, 0, 3)}, stale)
	if !ok {
		t.Fatalf("no next match")
	}
	wantSelections(t, sels, span(0, 0, 0, 3), span(0, 4, 0, 7))
}

func TestSelectNextWraps(t *testing.T) {
	b := buffer.New("x foo\nfoo")
	sels, _, ok := next(t, b, buffer.Selections{span(1, 0, 1, 3)}, OccurrenceState{})
	if !ok {
		t.Fatalf("no wrapped match")
	}
	wantSelections(t, sels, span(1, 0, 1, 3), span(0, 2, 0, 5))
}

func TestSelectNextNoWord(t *testing.T) {
	if _, _, ok := run(t, SelectNextOccurrence, "a  b", cursor(0, 2)); ok {
		t.Fatalf("cursor between spaces should be a no-op")
	}
}

func TestSelectNextKeepsReversedPrimary(t *testing.T) {
	_, res, ok := run(t, SelectNextOccurrence, "foo foo", span(0, 3, 0, 0))
	if !ok {
		t.Fatalf("no next match")
	}
	wantSelections(t, res.Selections, span(0, 3, 0, 0), span(0, 4, 0, 7))
}

func TestSelectAllOccurrences(t *testing.T) {
	_, res, ok := run(t, SelectAllOccurrences, "x.foo foo food", cursor(0, 3))
	if !ok {
		t.Fatalf("select all was a no-op")
	}
	wantSelections(t, res.Selections, span(0, 2, 0, 5), span(0, 6, 0, 9))

	_, res, ok = run(t, SelectAllOccurrences, "ab ab ab", span(0, 3, 0, 5))
	if !ok {
		t.Fatalf("select all was a no-op")
	}
	wantSelections(t, res.Selections, span(0, 3, 0, 5), span(0, 0, 0, 2), span(0, 6, 0, 8))
}
