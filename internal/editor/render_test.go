package editor

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/afero"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/config"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	return s
}

func rowText(cells []tcell.SimCell, w, y int) string {
	var sb strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(string(c.Runes))
	}
	return sb.String()
}

func TestRenderGutterAndCursor(t *testing.T) {
	e := newTestEditor("<a>x</a>")
	e.sels = buffer.Selections{cursorAt(0, 3)}
	s := newScreen(t, 20, 5)

	e.Render(s)

	cells, w, _ := s.GetContents()
	if got := rowText(cells, w, 0); !strings.HasPrefix(got, "  1 <a>x</a>") {
		t.Fatalf("row 0 = %q", got)
	}
	x, y, visible := s.GetCursor()
	if !visible || x != 7 || y != 0 {
		t.Fatalf("cursor = (%d,%d) visible=%v, want (7,0)", x, y, visible)
	}
}

func TestRenderSyntaxColors(t *testing.T) {
	cfg := config.Default()
	cfg.Editor.LineNumbers = false
	e := New(cfg, afero.NewMemMapFs())
	e.load("<a>x</a>")
	s := newScreen(t, 20, 3)

	e.Render(s)

	cells, _, _ := s.GetContents()
	tagFg, _, _ := cells[1].Style.Decompose()
	if want := parseColor(cfg.Theme.SyntaxTag, tcell.ColorWhite); tagFg != want {
		t.Fatalf("tag color = %v, want %v", tagFg, want)
	}
	textFg, _, _ := cells[3].Style.Decompose()
	if want := parseColor(cfg.Theme.SyntaxText, tcell.ColorWhite); textFg != want {
		t.Fatalf("text color = %v, want %v", textFg, want)
	}
}

func TestRenderWideCharacters(t *testing.T) {
	cfg := config.Default()
	cfg.Editor.LineNumbers = false
	e := New(cfg, afero.NewMemMapFs())
	e.load("日本x")
	e.sels = buffer.Selections{cursorAt(0, 2)}
	s := newScreen(t, 20, 3)

	e.Render(s)

	x, _, _ := s.GetCursor()
	if x != 4 {
		t.Fatalf("cursor x = %d, want 4", x)
	}
}

func TestRenderSelectionsAndSecondaryCursor(t *testing.T) {
	cfg := config.Default()
	cfg.Editor.LineNumbers = false
	e := New(cfg, afero.NewMemMapFs())
	e.load("abcd\nef")
	e.sels = buffer.Selections{cursorAt(1, 1), buffer.Span(pos(0, 0), pos(0, 2))}
	s := newScreen(t, 60, 4)

	e.Render(s)

	cells, w, h := s.GetContents()
	_, selBg, _ := e.styles.selection.Decompose()
	if _, bg, _ := cells[1].Style.Decompose(); bg != selBg {
		t.Fatalf("selected cell background = %v, want %v", bg, selBg)
	}
	if _, bg, _ := cells[2].Style.Decompose(); bg == selBg {
		t.Fatalf("cell past the selection is highlighted")
	}
	_, curBg, _ := e.styles.cursor.Decompose()
	if _, bg, _ := cells[w+1].Style.Decompose(); bg != curBg {
		t.Fatalf("secondary cursor background = %v, want %v", bg, curBg)
	}
	if status := rowText(cells, w, h-1); !strings.Contains(status, "2 selections") {
		t.Fatalf("status line = %q", status)
	}
}

func TestRenderScrollsToCursor(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "x"
	}
	e := newTestEditor(lines...)
	e.sels = buffer.Selections{cursorAt(29, 0)}
	s := newScreen(t, 10, 6)

	e.Render(s)

	_, y, visible := s.GetCursor()
	if !visible || y >= 5 {
		t.Fatalf("cursor row = %d visible=%v, want inside the 5-row view", y, visible)
	}
	if e.scroll == 0 {
		t.Fatalf("view did not scroll")
	}
}

func TestVisualColWithTabs(t *testing.T) {
	line := []rune("a\tb")
	if got := visualCol(line, 0, 4); got != 0 {
		t.Fatalf("col0 = %d, want 0", got)
	}
	if got := visualCol(line, 2, 4); got != 4 {
		t.Fatalf("col2 = %d, want 4", got)
	}
	if got := visualCol(line, 3, 4); got != 5 {
		t.Fatalf("col3 = %d, want 5", got)
	}
}

func TestComposeStatusLine(t *testing.T) {
	if got := string(composeStatusLine("ab", "cd", 6)); got != "ab  cd" {
		t.Fatalf("composeStatusLine = %q", got)
	}
	if got := string(composeStatusLine("abcdef", "xy", 4)); got != "abxy" {
		t.Fatalf("composeStatusLine truncated = %q", got)
	}
}

func TestRenderStatusShowsBranch(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/repo/.git/HEAD", []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		t.Fatalf("write HEAD: %v", err)
	}
	if err := afero.WriteFile(fs, "/repo/app.jsx", []byte("<a/>"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	e := New(config.Default(), fs)
	if err := e.OpenFile("/repo/app.jsx"); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	s := newScreen(t, 40, 3)

	e.Render(s)

	cells, w, h := s.GetContents()
	if status := rowText(cells, w, h-1); !strings.HasPrefix(status, " app.jsx | main ") {
		t.Fatalf("status line = %q", status)
	}
}
