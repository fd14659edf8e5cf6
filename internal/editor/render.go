package editor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/jsxpad/internal/config"
	"github.com/kobzarvs/jsxpad/internal/syntax"
)

type styles struct {
	main             tcell.Style
	status           tcell.Style
	lineNumber       tcell.Style
	lineNumberActive tcell.Style
	selection        tcell.Style
	cursor           tcell.Style
	roles            map[syntax.Role]tcell.Style
}

func newStyles(theme config.Theme) styles {
	mainFg := parseColor(theme.Foreground, tcell.ColorWhite)
	mainBg := parseColor(theme.Background, tcell.ColorBlack)
	statusFg := parseColor(theme.StatuslineForeground, tcell.ColorBlack)
	statusBg := parseColor(theme.StatuslineBackground, tcell.ColorGray)
	lineNumberFg := parseColor(theme.LineNumberForeground, tcell.ColorGray)
	lineNumberActiveFg := parseColor(theme.LineNumberActiveForeground, mainFg)
	selectionFg := parseColor(theme.SelectionForeground, mainFg)
	selectionBg := parseColor(theme.SelectionBackground, mainBg)
	cursorBg := parseColor(theme.CursorBackground, tcell.ColorYellow)

	fg := func(name string) tcell.Style {
		return tcell.StyleDefault.Foreground(parseColor(name, mainFg)).Background(mainBg)
	}
	main := tcell.StyleDefault.Foreground(mainFg).Background(mainBg)
	return styles{
		main:             main,
		status:           tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		lineNumber:       tcell.StyleDefault.Foreground(lineNumberFg).Background(mainBg),
		lineNumberActive: tcell.StyleDefault.Foreground(lineNumberActiveFg).Background(mainBg),
		selection:        tcell.StyleDefault.Foreground(selectionFg).Background(selectionBg),
		cursor:           tcell.StyleDefault.Foreground(mainBg).Background(cursorBg),
		roles: map[syntax.Role]tcell.Style{
			syntax.RoleWhitespace:         main,
			syntax.RoleTagName:            fg(theme.SyntaxTag),
			syntax.RoleAttributeName:      fg(theme.SyntaxAttribute),
			syntax.RoleAttributeValue:     fg(theme.SyntaxValue),
			syntax.RoleElementBody:        fg(theme.SyntaxText),
			syntax.RoleEmbeddedExpression: fg(theme.SyntaxExpression),
			syntax.RoleComment:            fg(theme.SyntaxComment),
		},
	}
}

func (st styles) forRole(role syntax.Role) tcell.Style {
	if style, ok := st.roles[role]; ok {
		return style
	}
	return st.main
}

func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	statusY := h - 1
	viewHeight := h - 1
	e.viewHeight = viewHeight
	e.ensureCursorVisible(viewHeight)

	s.SetStyle(e.styles.main)
	s.Clear()

	gutterWidth := e.gutterWidth()
	for y := 0; y < viewHeight; y++ {
		lineIdx := e.scroll + y
		if lineIdx >= e.buf.LineCount() {
			clearLine(s, y, w, e.styles.main)
			continue
		}
		e.drawLineWithGutter(s, y, w, gutterWidth, lineIdx)
	}
	e.renderStatusline(s, w, statusY)

	head := e.sels.Primary().Head
	cy := head.Line - e.scroll
	cx := gutterWidth + visualCol(e.buf.LineRunes(head.Line), head.Col, e.tabWidth)
	if cy < 0 || cy >= viewHeight || cx >= w {
		s.HideCursor()
		s.Show()
		return
	}
	s.SetCursorStyle(tcell.CursorStyleSteadyBar)
	s.ShowCursor(cx, cy)
	s.Show()
}

func (e *Editor) ensureCursorVisible(viewHeight int) {
	if viewHeight <= 0 {
		return
	}
	row := e.sels.Primary().Head.Line
	// Far outside the view: center it
	if row < e.scroll-1 || row >= e.scroll+viewHeight+1 {
		e.scroll = row - viewHeight/2
		if e.scroll < 0 {
			e.scroll = 0
		}
		return
	}
	if row < e.scroll {
		e.scroll = row
		return
	}
	if row >= e.scroll+viewHeight {
		e.scroll = row - viewHeight + 1
	}
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	name := e.filename
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	dirty := ""
	if e.dirty {
		dirty = "*"
	}
	status := fmt.Sprintf(" %s%s ", name, dirty)
	if e.branch != "" {
		status += "| " + e.branch + " "
	}
	if n := len(e.sels); n > 1 {
		status += fmt.Sprintf("| %d selections ", n)
	}
	if e.statusMessage != "" {
		status += "| " + e.statusMessage + " "
	}
	head := e.sels.Primary().Head
	col := visualCol(e.buf.LineRunes(head.Line), head.Col, e.tabWidth) + 1
	right := fmt.Sprintf(" Ln %d, Col %d ", head.Line+1, col)

	line := composeStatusLine(status, right, w)
	for x, r := range line {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, e.styles.status)
	}
}

func (e *Editor) gutterWidth() int {
	if !e.lineNumbers {
		return 0
	}
	digits := len(strconv.Itoa(e.buf.LineCount()))
	if digits < 2 {
		digits = 2
	}
	// Format: " " + digits + " "
	return 1 + digits + 1
}

func (e *Editor) drawLineWithGutter(s tcell.Screen, y, w, gutterWidth, lineIdx int) {
	if gutterWidth > 0 {
		numStr := fmt.Sprintf("%*d", gutterWidth-2, lineIdx+1)
		style := e.styles.lineNumber
		if lineIdx == e.sels.Primary().Head.Line {
			style = e.styles.lineNumberActive
		}
		s.SetContent(0, y, ' ', nil, e.styles.main)
		for i, r := range numStr {
			if x := 1 + i; x < w {
				s.SetContent(x, y, r, nil, style)
			}
		}
		if gutterWidth-1 < w {
			s.SetContent(gutterWidth-1, y, ' ', nil, e.styles.main)
		}
	}
	if gutterWidth >= w {
		return
	}
	e.drawLine(s, y, w, gutterWidth, lineIdx)
}

// drawLine paints one buffer line: syntax colors first, then selections, then
// secondary cursors. The primary cursor is the terminal cursor.
func (e *Editor) drawLine(s tcell.Screen, y, w, startX, lineIdx int) {
	line := e.buf.LineRunes(lineIdx)
	tokens := e.cls.Tokens(lineIdx)
	selected := e.selectedCols(lineIdx, len(line))
	cursors := e.secondaryCursors(lineIdx)

	x := startX
	for _, c := range layoutLine(line, e.tabWidth) {
		if x >= w {
			return
		}
		tok := syntax.TokenAt(tokens, lineIdx, c.col, syntax.ScopeMarkup)
		style := e.styles.forRole(tok.Role)
		if selected[c.col] {
			_, selBg, _ := e.styles.selection.Decompose()
			fg, _, _ := style.Decompose()
			style = style.Foreground(fg).Background(selBg)
		}
		if cursors[c.col] {
			style = e.styles.cursor
		}
		if c.runes[0] == '\t' {
			for i := 0; i < c.width && x < w; i++ {
				s.SetContent(x, y, ' ', nil, style)
				x++
			}
			continue
		}
		s.SetContent(x, y, c.runes[0], c.runes[1:], style)
		x += c.width
	}
	if cursors[len(line)] && x < w {
		s.SetContent(x, y, ' ', nil, e.styles.cursor)
		x++
	}
	for x < w {
		s.SetContent(x, y, ' ', nil, e.styles.main)
		x++
	}
}

// selectedCols marks the columns of lineIdx covered by a non-empty range.
func (e *Editor) selectedCols(lineIdx, lineLen int) map[int]bool {
	out := map[int]bool{}
	for _, r := range e.sels {
		if r.Empty() {
			continue
		}
		from, to := r.Ordered()
		if lineIdx < from.Line || lineIdx > to.Line {
			continue
		}
		start, end := 0, lineLen
		if lineIdx == from.Line {
			start = from.Col
		}
		if lineIdx == to.Line {
			end = to.Col
		}
		for col := start; col < end; col++ {
			out[col] = true
		}
	}
	return out
}

func (e *Editor) secondaryCursors(lineIdx int) map[int]bool {
	out := map[int]bool{}
	if len(e.sels) < 2 {
		return out
	}
	for _, r := range e.sels[:len(e.sels)-1] {
		if r.Head.Line == lineIdx {
			out[r.Head.Col] = true
		}
	}
	return out
}

// cell is one grapheme cluster of a line as it appears on screen.
type cell struct {
	col   int
	runes []rune
	width int
}

func layoutLine(line []rune, tabWidth int) []cell {
	if tabWidth < 1 {
		tabWidth = 1
	}
	var cells []cell
	col, x := 0, 0
	g := uniseg.NewGraphemes(string(line))
	for g.Next() {
		runes := g.Runes()
		width := g.Width()
		if runes[0] == '\t' {
			width = tabWidth - (x % tabWidth)
		}
		cells = append(cells, cell{col: col, runes: runes, width: width})
		col += len(runes)
		x += width
	}
	return cells
}

// visualCol is the screen column of logicalCol, counting tab stops and wide
// characters.
func visualCol(line []rune, logicalCol int, tabWidth int) int {
	x := 0
	for _, c := range layoutLine(line, tabWidth) {
		if c.col >= logicalCol {
			break
		}
		x += c.width
	}
	return x
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := width - len(leftRunes) - len(rightRunes)
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := 0; i < spaceCount; i++ {
		line = append(line, ' ')
	}
	line = append(line, rightRunes...)
	return line
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
