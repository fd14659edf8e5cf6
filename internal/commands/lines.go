package commands

import (
	"context"
	"strings"

	"github.com/kobzarvs/jsxpad/internal/buffer"
)

func swapLineUp(_ context.Context, in Input) (Result, bool) {
	return reorder(in, func(b *buffer.Buffer, blk block) ([]buffer.Edit, int, bool) {
		if blk.start == 0 {
			return nil, 0, false
		}
		above := b.Line(blk.start - 1)
		edits := []buffer.Edit{buffer.Delete(
			buffer.Pos{Line: blk.start - 1},
			buffer.Pos{Line: blk.start},
		)}
		if blk.end == b.LineCount()-1 {
			edits = append(edits, buffer.Insert(buffer.Pos{Line: blk.end, Col: b.LineLen(blk.end)}, "\n"+above))
		} else {
			edits = append(edits, buffer.Insert(buffer.Pos{Line: blk.end + 1}, above+"\n"))
		}
		return edits, -1, true
	}, false)
}

func swapLineDown(_ context.Context, in Input) (Result, bool) {
	return reorder(in, func(b *buffer.Buffer, blk block) ([]buffer.Edit, int, bool) {
		if blk.end >= b.LineCount()-1 {
			return nil, 0, false
		}
		below := b.Line(blk.end + 1)
		return []buffer.Edit{
			buffer.Delete(
				buffer.Pos{Line: blk.end, Col: b.LineLen(blk.end)},
				buffer.Pos{Line: blk.end + 1, Col: b.LineLen(blk.end + 1)},
			),
			buffer.Insert(buffer.Pos{Line: blk.start}, below+"\n"),
		}, 1, true
	}, false)
}

func duplicateLineUp(_ context.Context, in Input) (Result, bool) {
	return reorder(in, func(b *buffer.Buffer, blk block) ([]buffer.Edit, int, bool) {
		text := blockText(b, blk)
		return []buffer.Edit{buffer.Insert(buffer.Pos{Line: blk.start}, text+"\n")}, 0, true
	}, true)
}

func duplicateLineDown(_ context.Context, in Input) (Result, bool) {
	return reorder(in, func(b *buffer.Buffer, blk block) ([]buffer.Edit, int, bool) {
		text := blockText(b, blk)
		at := buffer.Pos{Line: blk.end, Col: b.LineLen(blk.end)}
		return []buffer.Edit{buffer.Insert(at, "\n"+text)}, blk.end - blk.start + 1, true
	}, true)
}

func blockText(b *buffer.Buffer, blk block) string {
	lines := make([]string, 0, blk.end-blk.start+1)
	for line := blk.start; line <= blk.end; line++ {
		lines = append(lines, b.Line(line))
	}
	return strings.Join(lines, "\n")
}

// blockMove computes the edits for one block and how many lines its own
// selections move. ok false leaves the block where it is.
type blockMove func(b *buffer.Buffer, blk block) (edits []buffer.Edit, move int, ok bool)

// reorder runs move over every block of adjacent or overlapping line spans.
// When grows is set each block adds its own size to the document, which
// pushes every later block down.
func reorder(in Input, move blockMove, grows bool) (Result, bool) {
	b := in.Buffer
	type placed struct {
		blk   block
		shift int
	}
	var edits []buffer.Edit
	var blocks []placed
	added := 0
	for _, blk := range mergeBlocks(in.Selections, true) {
		blockEdits, delta, ok := move(b, blk)
		if !ok {
			delta = 0
		}
		edits = append(edits, blockEdits...)
		blocks = append(blocks, placed{blk: blk, shift: added + delta})
		if ok && grows {
			added += blk.end - blk.start + 1
		}
	}
	if len(edits) == 0 {
		return Result{}, false
	}

	after := b.Clone()
	after.Apply(edits)
	sels := in.Selections.Clone()
	for _, p := range blocks {
		last := p.blk.end + p.shift
		at := func(pos buffer.Pos) buffer.Pos {
			line := pos.Line + p.shift
			// a column-0 end just past the block stays after the block's
			// last line, which may now be the last line of the document
			if pos.Line > p.blk.end && line >= after.LineCount() {
				return buffer.Pos{Line: last, Col: after.LineLen(last)}
			}
			return after.Clamp(buffer.Pos{Line: line, Col: pos.Col})
		}
		for _, i := range p.blk.members {
			from, to := sels[i].Ordered()
			sels[i] = buffer.Oriented(at(from), at(to), sels[i].Reversed())
		}
	}
	return Result{Edits: edits, Selections: sels, Occurrence: in.Occurrence}, true
}
