// Package format holds the pretty-printers the formatCode command drives.
// Cursors are linear character offsets into the text.
package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/kobzarvs/jsxpad/internal/syntax"
)

// Formatter reformats text and reports where cursor lands in the result.
type Formatter interface {
	Format(ctx context.Context, text string, cursor int) (string, int, error)
}

// Reindent re-indents every line by its nesting depth and trims trailing
// whitespace. It never reflows lines.
type Reindent struct {
	Indent string
}

func (r Reindent) Format(ctx context.Context, text string, cursor int) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	indent := r.Indent
	if indent == "" {
		indent = "  "
	}
	lx := syntax.NewLexer(text)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		depth := lx.Depth(i)
		if closesLevel(trimmed) {
			depth--
		}
		if depth < 0 {
			depth = 0
		}
		lines[i] = strings.Repeat(indent, depth) + trimmed
	}
	out := strings.Join(lines, "\n")
	return out, MapCursor(text, cursor, out), nil
}

func closesLevel(line string) bool {
	for _, p := range []string{"</", "/>", ">", "}"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Command pipes text through an external formatter such as prettier.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

var ErrNoCommand = errors.New("format: no command configured")

func (c Command) Format(ctx context.Context, text string, cursor int) (string, int, error) {
	if c.Name == "" {
		return "", 0, ErrNoCommand
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(text)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", 0, fmt.Errorf("%s: %w: %s", c.Name, err, msg)
		}
		return "", 0, fmt.Errorf("%s: %w", c.Name, err)
	}
	formatted := out.String()
	return formatted, MapCursor(text, cursor, formatted), nil
}

// MapCursor carries a cursor from src to dst, assuming the two differ only in
// whitespace. A cursor right after a visible character stays after it;
// otherwise it stays before the next visible character.
func MapCursor(src string, cursor int, dst string) int {
	srcRunes := []rune(src)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(srcRunes) {
		cursor = len(srcRunes)
	}
	seen := 0
	for _, r := range srcRunes[:cursor] {
		if !unicode.IsSpace(r) {
			seen++
		}
	}
	attached := cursor > 0 && !unicode.IsSpace(srcRunes[cursor-1])

	dstRunes := []rune(dst)
	count := 0
	for i, r := range dstRunes {
		if unicode.IsSpace(r) {
			continue
		}
		if !attached && count == seen {
			return i
		}
		count++
		if attached && count == seen {
			return i + 1
		}
	}
	if seen == 0 {
		return 0
	}
	// fewer visible characters than before: end of the last one
	for i := len(dstRunes); i > 0; i-- {
		if !unicode.IsSpace(dstRunes[i-1]) {
			return i
		}
	}
	return 0
}
