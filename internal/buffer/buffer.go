package buffer

import (
	"fmt"
	"strings"
)

// Buffer is an ordered list of lines. It always holds at least one line.
type Buffer struct {
	lines [][]rune
}

func New(text string) *Buffer {
	return &Buffer{lines: splitLines(text)}
}

func splitLines(text string) [][]rune {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

func joinLines(lines [][]rune) string {
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

func (b *Buffer) LineCount() int {
	return len(b.lines)
}

func (b *Buffer) Line(n int) string {
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return string(b.lines[n])
}

// LineRunes returns line n. The slice must not be modified.
func (b *Buffer) LineRunes(n int) []rune {
	if n < 0 || n >= len(b.lines) {
		return nil
	}
	return b.lines[n]
}

func (b *Buffer) LineLen(n int) int {
	if n < 0 || n >= len(b.lines) {
		return 0
	}
	return len(b.lines[n])
}

func (b *Buffer) Text() string {
	return joinLines(b.lines)
}

func (b *Buffer) Clone() *Buffer {
	lines := make([][]rune, len(b.lines))
	for i, line := range b.lines {
		lines[i] = append([]rune(nil), line...)
	}
	return &Buffer{lines: lines}
}

// End is the position after the last character.
func (b *Buffer) End() Pos {
	last := len(b.lines) - 1
	return Pos{Line: last, Col: len(b.lines[last])}
}

func (b *Buffer) Valid(p Pos) bool {
	return p.Line >= 0 && p.Line < len(b.lines) && p.Col >= 0 && p.Col <= len(b.lines[p.Line])
}

// Clamp pulls p back inside the buffer.
func (b *Buffer) Clamp(p Pos) Pos {
	if p.Line < 0 {
		return Pos{}
	}
	if p.Line >= len(b.lines) {
		return b.End()
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := len(b.lines[p.Line]); p.Col > n {
		p.Col = n
	}
	return p
}

// Offset converts p into a linear character offset, counting one per newline.
func (b *Buffer) Offset(p Pos) int {
	p = b.Clamp(p)
	off := 0
	for i := 0; i < p.Line; i++ {
		off += len(b.lines[i]) + 1
	}
	return off + p.Col
}

// PosAt converts a linear character offset back into a position.
func (b *Buffer) PosAt(off int) Pos {
	if off <= 0 {
		return Pos{}
	}
	for i, line := range b.lines {
		if off <= len(line) {
			return Pos{Line: i, Col: off}
		}
		off -= len(line) + 1
	}
	return b.End()
}

// Slice returns the text between two positions in document order.
func (b *Buffer) Slice(from, to Pos) string {
	from, to = b.Clamp(from), b.Clamp(to)
	if to.Less(from) {
		from, to = to, from
	}
	if from.Line == to.Line {
		return string(b.lines[from.Line][from.Col:to.Col])
	}
	var sb strings.Builder
	sb.WriteString(string(b.lines[from.Line][from.Col:]))
	for i := from.Line + 1; i < to.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(string(b.lines[i]))
	}
	sb.WriteByte('\n')
	sb.WriteString(string(b.lines[to.Line][:to.Col]))
	return sb.String()
}

// Replace swaps the text between from and to for text. Positions outside the
// buffer are a programming error.
func (b *Buffer) Replace(from, to Pos, text string) {
	if !b.Valid(from) || !b.Valid(to) {
		panic(fmt.Sprintf("buffer: replace %v-%v outside buffer of %d lines", from, to, len(b.lines)))
	}
	if to.Less(from) {
		from, to = to, from
	}
	head := b.lines[from.Line][:from.Col]
	tail := b.lines[to.Line][to.Col:]
	inserted := splitLines(text)

	repl := make([][]rune, len(inserted))
	for i, line := range inserted {
		repl[i] = append([]rune(nil), line...)
	}
	repl[0] = append(append([]rune(nil), head...), repl[0]...)
	last := len(repl) - 1
	repl[last] = append(repl[last], tail...)

	lines := make([][]rune, 0, len(b.lines)-(to.Line-from.Line)+last)
	lines = append(lines, b.lines[:from.Line]...)
	lines = append(lines, repl...)
	lines = append(lines, b.lines[to.Line+1:]...)
	b.lines = lines
}
