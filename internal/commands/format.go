package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/logger"
)

// The buffer may hold several sibling elements; printers want one root, so
// formatCode wraps the text in a fragment and unwraps the result.
const (
	rootOpen   = "<>\n"
	rootClose  = "\n</>"
	rootIndent = 2
)

var errRootLost = errors.New("formatter output lost the synthetic root")

func formatCode(ctx context.Context, in Input) (Result, bool) {
	if in.Formatter == nil {
		return Result{}, false
	}
	b := in.Buffer
	text := b.Text()
	cursor := b.Offset(in.Selections.Primary().Head)

	out, outCursor, err := in.Formatter.Format(ctx, rootOpen+text+rootClose, cursor+len(rootOpen))
	if err != nil {
		logger.Debug("format failed", "error", err)
		return Result{}, false
	}
	formatted, pos, err := unwrapRoot(out, outCursor)
	if err != nil {
		logger.Debug("format failed", "error", err)
		return Result{}, false
	}

	res := Result{Selections: buffer.Selections{buffer.Cursor(pos)}, Occurrence: in.Occurrence}
	if formatted != text {
		res.Edits = []buffer.Edit{{From: buffer.Pos{}, To: b.End(), Text: formatted}}
	} else if res.Selections.Equal(in.Selections) {
		return Result{}, false
	}
	return res, true
}

// unwrapRoot drops the fragment lines and one level of indentation, and
// carries the cursor offset back to a position in the unwrapped text.
func unwrapRoot(out string, cursor int) (string, buffer.Pos, error) {
	lines := strings.Split(out, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 1 && strings.TrimRight(strings.TrimSpace(lines[0]), ";") == "<></>" {
		return "", buffer.Pos{}, nil
	}
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "<>" ||
		!strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "</>") {
		return "", buffer.Pos{}, errRootLost
	}

	inner := lines[1 : len(lines)-1]
	if len(inner) == 0 {
		return "", buffer.Pos{}, nil
	}
	at := buffer.New(out).PosAt(cursor)
	for i, line := range inner {
		inner[i] = unindent(line, rootIndent)
	}

	pos := buffer.Pos{Line: at.Line - 1, Col: at.Col}
	if pos.Col != 0 {
		pos.Col -= rootIndent
	}
	switch {
	case pos.Line < 0:
		pos = buffer.Pos{}
	case pos.Line >= len(inner):
		last := len(inner) - 1
		pos = buffer.Pos{Line: last, Col: len([]rune(inner[last]))}
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if n := len([]rune(inner[pos.Line])); pos.Col > n {
		pos.Col = n
	}
	return strings.Join(inner, "\n"), pos, nil
}

func unindent(line string, n int) string {
	for i := 0; i < n && strings.HasPrefix(line, " "); i++ {
		line = line[1:]
	}
	return line
}
