package commands

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/kobzarvs/jsxpad/internal/buffer"
)

const (
	tagOpen  = "<>"
	tagClose = "</>"
	tagShift = "  "
)

type wrapTarget struct {
	from, to buffer.Pos
	first    int // lowest caller index merged into this target
}

// wrapTargets orders ranges by start and merges the ones that overlap or
// touch. A multi-line range ending at column 0 stops at the end of the line
// before.
func wrapTargets(b *buffer.Buffer, sels buffer.Selections) []wrapTarget {
	targets := make([]wrapTarget, len(sels))
	for i, r := range sels {
		from, to := r.Ordered()
		if to.Col == 0 && to.Line > from.Line {
			to = buffer.Pos{Line: to.Line - 1, Col: b.LineLen(to.Line - 1)}
		}
		targets[i] = wrapTarget{from: from, to: to, first: i}
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].from.Less(targets[j].from) })
	var out []wrapTarget
	for _, t := range targets {
		if n := len(out); n > 0 && !out[n-1].to.Less(t.from) {
			last := &out[n-1]
			if last.to.Less(t.to) {
				last.to = t.to
			}
			if t.first < last.first {
				last.first = t.first
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

func wrapInTag(_ context.Context, in Input) (Result, bool) {
	b := in.Buffer
	targets := wrapTargets(b, in.Selections)
	edits := make([]buffer.Edit, 0, len(targets))
	cursors := make([][2]buffer.Pos, len(targets))
	for i, t := range targets {
		// where this target starts once the wraps before it are applied
		at := buffer.MapPos(t.from, edits)
		if t.from.Line == t.to.Line {
			text := b.Slice(t.from, t.to)
			edits = append(edits, buffer.Edit{From: t.from, To: t.to, Text: tagOpen + text + tagClose})
			cursors[i] = [2]buffer.Pos{
				{Line: at.Line, Col: at.Col + 1},
				{Line: at.Line, Col: at.Col + len(tagOpen) + len([]rune(text)) + 2},
			}
			continue
		}
		pad := wrapPad(b.LineRunes(t.from.Line), t.from.Col)
		lines := strings.Split(b.Slice(t.from, t.to), "\n")
		var sb strings.Builder
		sb.WriteString(tagOpen)
		for j, line := range lines {
			sb.WriteByte('\n')
			if line == "" {
				continue
			}
			if j == 0 {
				sb.WriteString(pad)
			}
			sb.WriteString(tagShift)
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
		sb.WriteString(pad)
		sb.WriteString(tagClose)
		edits = append(edits, buffer.Edit{From: t.from, To: t.to, Text: sb.String()})
		cursors[i] = [2]buffer.Pos{
			{Line: at.Line, Col: at.Col + 1},
			{Line: at.Line + len(lines) + 1, Col: len([]rune(pad)) + 2},
		}
	}

	// caller order: targets by the first range they came from
	order := make([]int, len(targets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return targets[order[i]].first < targets[order[j]].first })
	sels := make(buffer.Selections, 0, 2*len(targets))
	for _, i := range order {
		sels = append(sels, buffer.Cursor(cursors[i][0]), buffer.Cursor(cursors[i][1]))
	}
	return Result{Edits: edits, Selections: sels, Occurrence: in.Occurrence}, true
}

// wrapPad is the indentation the wrapper's own lines get: the whitespace
// before col when that is all whitespace, else col spaces.
func wrapPad(line []rune, col int) string {
	if col > len(line) {
		col = len(line)
	}
	for _, r := range line[:col] {
		if !unicode.IsSpace(r) {
			return strings.Repeat(" ", col)
		}
	}
	return string(line[:col])
}
