package commands

import (
	"context"
	"testing"

	"github.com/kobzarvs/jsxpad/internal/buffer"
)

func pos(line, col int) buffer.Pos {
	return buffer.Pos{Line: line, Col: col}
}

func span(l1, c1, l2, c2 int) buffer.Range {
	return buffer.Range{Anchor: pos(l1, c1), Head: pos(l2, c2)}
}

func cursor(line, col int) buffer.Range {
	return buffer.Cursor(pos(line, col))
}

// run dispatches name against text and returns the resulting text.
func run(t *testing.T, name, text string, sels ...buffer.Range) (string, Result, bool) {
	t.Helper()
	return runInput(t, name, Input{Buffer: buffer.New(text), Selections: sels})
}

func runInput(t *testing.T, name string, in Input) (string, Result, bool) {
	t.Helper()
	res, ok, err := Run(context.Background(), name, in)
	if err != nil {
		t.Fatalf("Run(%s) error: %v", name, err)
	}
	b := in.Buffer.Clone()
	b.Apply(res.Edits)
	return b.Text(), res, ok
}

func wantSelections(t *testing.T, got buffer.Selections, want ...buffer.Range) {
	t.Helper()
	if !got.Equal(buffer.Selections(want)) {
		t.Fatalf("selections = %v, want %v", got, want)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 9 {
		t.Fatalf("Names = %v", names)
	}
	for _, name := range names {
		if _, ok := Lookup(name); !ok {
			t.Fatalf("Lookup(%q) failed", name)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if _, _, err := Run(context.Background(), "nope", Input{Buffer: buffer.New("")}); err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if _, _, err := Run(context.Background(), ToggleComment, Input{}); err == nil {
		t.Fatalf("expected error without buffer")
	}
}

func TestRunNoOpKeepsSelections(t *testing.T) {
	sels := buffer.Selections{cursor(0, 0)}
	res, ok, err := Run(context.Background(), SwapLineUp, Input{Buffer: buffer.New("a\nb"), Selections: sels})
	if err != nil || ok {
		t.Fatalf("Run = ok %v err %v, want no-op", ok, err)
	}
	if len(res.Edits) != 0 {
		t.Fatalf("no-op returned edits %v", res.Edits)
	}
	wantSelections(t, res.Selections, cursor(0, 0))
}

func TestRunDefaultsToCursorAtStart(t *testing.T) {
	got, res, ok := run(t, DuplicateLineDown, "a")
	if !ok || got != "a\na" {
		t.Fatalf("text = %q ok=%v", got, ok)
	}
	wantSelections(t, res.Selections, cursor(1, 0))
}

func TestReversalPreservedByEveryEngine(t *testing.T) {
	text := "<div>\n  foo\n  foo bar\n</div>"
	rev := span(2, 5, 1, 2)
	for _, name := range []string{ToggleComment, SwapLineUp, SwapLineDown, DuplicateLineUp, DuplicateLineDown} {
		t.Run(name, func(t *testing.T) {
			_, res, ok := run(t, name, text, rev)
			if !ok {
				t.Fatalf("%s was a no-op", name)
			}
			if !res.Selections[0].Reversed() {
				t.Fatalf("%s lost reversal: %v", name, res.Selections[0])
			}
		})
	}
}
