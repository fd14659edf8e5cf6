// Package commands implements the selection-aware editing commands. Every
// command is a pure function of a buffer snapshot and a selection set: it
// returns the edits to apply, all expressed against that snapshot, and the
// selections to install afterwards. The host applies both as one undo step.
package commands

import (
	"context"
	"fmt"
	"sort"
	"unicode"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/format"
	"github.com/kobzarvs/jsxpad/internal/syntax"
)

const (
	ToggleComment        = "toggleComment"
	WrapInTag            = "wrapInTag"
	SwapLineUp           = "swapLineUp"
	SwapLineDown         = "swapLineDown"
	DuplicateLineUp      = "duplicateLineUp"
	DuplicateLineDown    = "duplicateLineDown"
	SelectNextOccurrence = "selectNextOccurrence"
	SelectAllOccurrences = "selectAllOccurrences"
	FormatCode           = "formatCode"
)

// Input is the snapshot a command runs against.
type Input struct {
	Buffer     *buffer.Buffer
	Selections buffer.Selections
	// Syntax classifies Buffer. When nil a Lexer is built on demand.
	Syntax     syntax.Classifier
	Formatter  format.Formatter
	Occurrence OccurrenceState
}

// Result is what the host applies. Edits may be empty when only the
// selections change.
type Result struct {
	Edits      []buffer.Edit
	Selections buffer.Selections
	Occurrence OccurrenceState
}

// Command computes a Result, or reports false for a no-op.
type Command func(ctx context.Context, in Input) (Result, bool)

var registry = map[string]Command{
	ToggleComment:        toggleComment,
	WrapInTag:            wrapInTag,
	SwapLineUp:           swapLineUp,
	SwapLineDown:         swapLineDown,
	DuplicateLineUp:      duplicateLineUp,
	DuplicateLineDown:    duplicateLineDown,
	SelectNextOccurrence: selectNextOccurrence,
	SelectAllOccurrences: selectAllOccurrences,
	FormatCode:           formatCode,
}

// Lookup returns the command registered under name.
func Lookup(name string) (Command, bool) {
	cmd, ok := registry[name]
	return cmd, ok
}

// Names lists every command name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run dispatches name. ok is false when the command had nothing to do.
func Run(ctx context.Context, name string, in Input) (Result, bool, error) {
	cmd, found := Lookup(name)
	if !found {
		return Result{}, false, fmt.Errorf("unknown command %q", name)
	}
	if in.Buffer == nil {
		return Result{}, false, fmt.Errorf("%s: no buffer", name)
	}
	if len(in.Selections) == 0 {
		in.Selections = buffer.Selections{buffer.Cursor(buffer.Pos{})}
	}
	res, ok := cmd(ctx, in)
	if !ok {
		return Result{Selections: in.Selections, Occurrence: in.Occurrence}, false, nil
	}
	return res, true, nil
}

func classifier(in Input) syntax.Classifier {
	if in.Syntax != nil {
		return in.Syntax
	}
	return syntax.Lex(in.Buffer)
}

// lineSpan returns the lines a range covers. A multi-line range ending at
// column 0 does not include that last line.
func lineSpan(r buffer.Range) (start, end int) {
	from, to := r.Ordered()
	end = to.Line
	if to.Col == 0 && to.Line > from.Line {
		end--
	}
	return from.Line, end
}

// block is a run of lines several ranges act on together.
type block struct {
	start, end int
	members    []int
}

// mergeBlocks groups ranges by line span. Spans that overlap, or that are
// adjacent when adjacent is set, end up in one block. Blocks come back in
// document order.
func mergeBlocks(sels buffer.Selections, adjacent bool) []block {
	spans := make([]block, len(sels))
	for i, r := range sels {
		s, e := lineSpan(r)
		spans[i] = block{start: s, end: e, members: []int{i}}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	reach := 0
	if adjacent {
		reach = 1
	}
	var out []block
	for _, sp := range spans {
		if n := len(out); n > 0 && sp.start <= out[n-1].end+reach {
			last := &out[n-1]
			if sp.end > last.end {
				last.end = sp.end
			}
			last.members = append(last.members, sp.members...)
			continue
		}
		out = append(out, sp)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func firstNonBlank(line []rune) int {
	for i, r := range line {
		if !unicode.IsSpace(r) {
			return i
		}
	}
	return -1
}

func lastNonBlank(line []rune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if !unicode.IsSpace(line[i]) {
			return i
		}
	}
	return -1
}
