// Package editor is the interactive host for the editing commands. It owns
// the buffer, the selection set, undo history and occurrence state, maps keys
// to commands or host actions, and renders onto a tcell screen.
package editor

import (
	"context"
	"errors"
	"path/filepath"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/afero"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/commands"
	"github.com/kobzarvs/jsxpad/internal/config"
	"github.com/kobzarvs/jsxpad/internal/format"
	"github.com/kobzarvs/jsxpad/internal/gitinfo"
	"github.com/kobzarvs/jsxpad/internal/logger"
	"github.com/kobzarvs/jsxpad/internal/session"
	"github.com/kobzarvs/jsxpad/internal/syntax"
)

const (
	actionMoveLeft          = "move_left"
	actionMoveRight         = "move_right"
	actionMoveUp            = "move_up"
	actionMoveDown          = "move_down"
	actionExtendLeft        = "extend_left"
	actionExtendRight       = "extend_right"
	actionExtendUp          = "extend_up"
	actionExtendDown        = "extend_down"
	actionLineStart         = "line_start"
	actionLineEnd           = "line_end"
	actionAddCursorBelow    = "add_cursor_below"
	actionCollapseSelection = "collapse_selection"
	actionSelectAll         = "select_all"
	actionNewline           = "newline"
	actionIndent            = "indent"
	actionBackspace         = "backspace"
	actionUndo              = "undo"
	actionRedo              = "redo"
	actionSave              = "save"
	actionQuit              = "quit"
)

var errNoFile = errors.New("no file name")

// SyntaxFunc classifies the text of the file at path. It runs after every
// change to the buffer.
type SyntaxFunc func(path, text string) syntax.Classifier

func lexSyntax(_, text string) syntax.Classifier {
	return syntax.NewLexer(text)
}

type snapshot struct {
	text string
	sels buffer.Selections
}

type Editor struct {
	buf        *buffer.Buffer
	sels       buffer.Selections
	occurrence commands.OccurrenceState
	cls        syntax.Classifier
	syntaxFor  SyntaxFunc
	formatter  format.Formatter

	fs        afero.Fs
	filename  string
	branch    string
	savedText string
	dirty     bool

	undo   []snapshot
	redo   []snapshot
	typing bool

	keymap        map[string]string
	tabWidth      int
	indent        string
	lineNumbers   bool
	scroll        int
	viewHeight    int
	statusMessage string
	styles        styles

	// actionHook observes every dispatched action or command name.
	actionHook func(string)
}

func New(cfg config.Config, fs afero.Fs) *Editor {
	keymap := make(map[string]string, len(cfg.Keymap))
	for k, v := range cfg.Keymap {
		keymap[k] = v
	}
	tabWidth := cfg.Editor.TabWidth
	if tabWidth < 1 {
		tabWidth = 1
	}
	indent := cfg.Editor.Indent
	if indent == "" {
		indent = "  "
	}
	e := &Editor{
		buf:         buffer.New(""),
		sels:        buffer.Selections{buffer.Cursor(buffer.Pos{})},
		syntaxFor:   lexSyntax,
		formatter:   format.Reindent{Indent: indent},
		fs:          fs,
		keymap:      keymap,
		tabWidth:    tabWidth,
		indent:      indent,
		lineNumbers: cfg.Editor.LineNumbers,
		styles:      newStyles(cfg.Theme),
	}
	e.reclassify()
	return e
}

// SetSyntaxFunc replaces the classifier factory and reclassifies the buffer.
func (e *Editor) SetSyntaxFunc(fn SyntaxFunc) {
	if fn == nil {
		fn = lexSyntax
	}
	e.syntaxFor = fn
	e.reclassify()
}

func (e *Editor) SetFormatter(f format.Formatter) {
	e.formatter = f
}

func (e *Editor) OpenFile(path string) error {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return err
	}
	e.filename = path
	e.branch = gitinfo.Branch(e.fs, path)
	e.load(string(data))
	return nil
}

// NewFile starts an empty buffer that saves to path.
func (e *Editor) NewFile(path string) {
	e.filename = path
	e.branch = gitinfo.Branch(e.fs, path)
	e.load("")
}

func (e *Editor) load(text string) {
	e.buf = buffer.New(text)
	e.sels = buffer.Selections{buffer.Cursor(buffer.Pos{})}
	e.occurrence = commands.OccurrenceState{}
	e.savedText = text
	e.undo = nil
	e.redo = nil
	e.typing = false
	e.scroll = 0
	e.statusMessage = ""
	e.reclassify()
	e.updateDirty()
}

func (e *Editor) Save() error {
	if e.filename == "" {
		return errNoFile
	}
	text := e.buf.Text()
	if err := afero.WriteFile(e.fs, e.filename, []byte(text), 0o644); err != nil {
		return err
	}
	e.savedText = text
	e.updateDirty()
	return nil
}

func (e *Editor) Content() string {
	return e.buf.Text()
}

func (e *Editor) Filename() string {
	return e.filename
}

func (e *Editor) Dirty() bool {
	return e.dirty
}

func (e *Editor) Selections() buffer.Selections {
	return e.sels.Clone()
}

// State captures what the session file keeps for the open file.
func (e *Editor) State() session.FileState {
	return session.FileState{
		Selections: e.sels.Clone(),
		Occurrence: e.occurrence,
		ScrollY:    e.scroll,
	}
}

// RestoreState installs a saved state, clamping positions that no longer
// exist in the buffer.
func (e *Editor) RestoreState(st session.FileState) {
	if len(st.Selections) > 0 {
		e.sels = clampSelections(e.buf, st.Selections)
	}
	e.occurrence = st.Occurrence
	if st.ScrollY >= 0 && st.ScrollY < e.buf.LineCount() {
		e.scroll = st.ScrollY
	}
}

func (e *Editor) SetStatusMessage(msg string) {
	e.statusMessage = msg
}

// HandleKey processes one key event and reports whether the editor should quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	e.statusMessage = ""
	key := keyString(ev)
	if name, ok := e.keymap[key]; ok {
		return e.execAction(name)
	}
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
		e.insertText(string(ev.Rune()), true)
	}
	return false
}

func (e *Editor) execAction(name string) bool {
	if e.actionHook != nil {
		e.actionHook(name)
	}
	e.typing = false
	switch name {
	case actionMoveLeft:
		e.moveEach(false, e.left)
	case actionMoveRight:
		e.moveEach(false, e.right)
	case actionMoveUp:
		e.moveEach(false, e.up)
	case actionMoveDown:
		e.moveEach(false, e.down)
	case actionExtendLeft:
		e.moveEach(true, e.left)
	case actionExtendRight:
		e.moveEach(true, e.right)
	case actionExtendUp:
		e.moveEach(true, e.up)
	case actionExtendDown:
		e.moveEach(true, e.down)
	case actionLineStart:
		e.moveEach(false, func(p buffer.Pos) buffer.Pos { return buffer.Pos{Line: p.Line} })
	case actionLineEnd:
		e.moveEach(false, func(p buffer.Pos) buffer.Pos { return buffer.Pos{Line: p.Line, Col: e.buf.LineLen(p.Line)} })
	case actionAddCursorBelow:
		e.addCursorBelow()
	case actionCollapseSelection:
		e.sels = buffer.Selections{buffer.Cursor(e.sels.Primary().Head)}
	case actionSelectAll:
		e.sels = buffer.Selections{buffer.Span(buffer.Pos{}, e.buf.End())}
	case actionNewline:
		e.newline()
	case actionIndent:
		e.insertText(e.indent, false)
	case actionBackspace:
		e.backspace()
	case actionUndo:
		e.Undo()
	case actionRedo:
		e.Redo()
	case actionSave:
		if err := e.Save(); err != nil {
			e.setStatus(err.Error())
		} else {
			e.setStatus("saved " + filepath.Base(e.filename))
		}
	case actionQuit:
		return true
	default:
		if _, ok := commands.Lookup(name); ok {
			e.RunCommand(context.Background(), name)
			return false
		}
		e.setStatus("unknown action: " + name)
		logger.Warn("unknown action", "action", name)
	}
	return false
}

// RunCommand dispatches an editing command against the current buffer and
// applies its result as one undo step.
func (e *Editor) RunCommand(ctx context.Context, name string) bool {
	res, ok, err := commands.Run(ctx, name, commands.Input{
		Buffer:     e.buf,
		Selections: e.sels,
		Syntax:     e.cls,
		Formatter:  e.formatter,
		Occurrence: e.occurrence,
	})
	if err != nil {
		e.setStatus(err.Error())
		logger.Warn("command failed", "command", name, "error", err)
		return false
	}
	logger.Command(name, len(e.sels), ok, "file", e.filename)
	if !ok {
		return false
	}
	if len(res.Edits) > 0 {
		e.pushUndo()
		e.buf.Apply(res.Edits)
		e.changed()
	}
	e.sels = clampSelections(e.buf, res.Selections)
	if len(e.sels) == 0 {
		e.sels = buffer.Selections{buffer.Cursor(buffer.Pos{})}
	}
	e.occurrence = res.Occurrence
	return true
}

func clampSelections(b *buffer.Buffer, sels buffer.Selections) buffer.Selections {
	out := make(buffer.Selections, len(sels))
	for i, r := range sels {
		out[i] = buffer.Range{Anchor: b.Clamp(r.Anchor), Head: b.Clamp(r.Head)}
	}
	return out
}

func (e *Editor) Undo() {
	if len(e.undo) == 0 {
		e.setStatus("nothing to undo")
		return
	}
	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.redo = append(e.redo, e.snapshot())
	e.restore(last)
}

func (e *Editor) Redo() {
	if len(e.redo) == 0 {
		e.setStatus("nothing to redo")
		return
	}
	last := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.undo = append(e.undo, e.snapshot())
	e.restore(last)
}

func (e *Editor) snapshot() snapshot {
	return snapshot{text: e.buf.Text(), sels: e.sels.Clone()}
}

func (e *Editor) restore(s snapshot) {
	e.buf = buffer.New(s.text)
	e.sels = s.sels
	e.typing = false
	e.changed()
}

func (e *Editor) pushUndo() {
	e.undo = append(e.undo, e.snapshot())
	e.redo = nil
}

func (e *Editor) changed() {
	e.reclassify()
	e.updateDirty()
}

func (e *Editor) reclassify() {
	e.cls = e.syntaxFor(e.filename, e.buf.Text())
}

func (e *Editor) updateDirty() {
	e.dirty = e.buf.Text() != e.savedText
}

func (e *Editor) setStatus(msg string) {
	e.statusMessage = msg
}

func (e *Editor) left(p buffer.Pos) buffer.Pos {
	if p.Col > 0 {
		return buffer.Pos{Line: p.Line, Col: p.Col - 1}
	}
	if p.Line > 0 {
		return buffer.Pos{Line: p.Line - 1, Col: e.buf.LineLen(p.Line - 1)}
	}
	return p
}

func (e *Editor) right(p buffer.Pos) buffer.Pos {
	if p.Col < e.buf.LineLen(p.Line) {
		return buffer.Pos{Line: p.Line, Col: p.Col + 1}
	}
	if p.Line+1 < e.buf.LineCount() {
		return buffer.Pos{Line: p.Line + 1}
	}
	return p
}

func (e *Editor) up(p buffer.Pos) buffer.Pos {
	if p.Line == 0 {
		return buffer.Pos{}
	}
	return e.buf.Clamp(buffer.Pos{Line: p.Line - 1, Col: p.Col})
}

func (e *Editor) down(p buffer.Pos) buffer.Pos {
	if p.Line+1 >= e.buf.LineCount() {
		return e.buf.End()
	}
	return e.buf.Clamp(buffer.Pos{Line: p.Line + 1, Col: p.Col})
}

// moveEach moves the head of every range. Without extend the ranges collapse
// onto their new heads.
func (e *Editor) moveEach(extend bool, move func(buffer.Pos) buffer.Pos) {
	for i, r := range e.sels {
		head := move(r.Head)
		if extend {
			e.sels[i] = buffer.Range{Anchor: r.Anchor, Head: head}
			continue
		}
		e.sels[i] = buffer.Cursor(head)
	}
	e.sels = dedupe(e.sels)
}

func (e *Editor) addCursorBelow() {
	head := e.sels.Primary().Head
	if head.Line+1 >= e.buf.LineCount() {
		return
	}
	below := e.buf.Clamp(buffer.Pos{Line: head.Line + 1, Col: head.Col})
	e.sels = dedupe(append(e.sels, buffer.Cursor(below)))
}

// editEach replaces every range with what fn returns and leaves a cursor
// after each replacement. Overlapping ranges collapse into one edit.
func (e *Editor) editEach(fn func(from, to buffer.Pos) (buffer.Edit, bool)) bool {
	var edits []buffer.Edit
	var ends []buffer.Pos
	for _, r := range disjoint(e.sels) {
		from, to := r.Ordered()
		edit, ok := fn(from, to)
		if !ok {
			ends = append(ends, to)
			continue
		}
		edits = append(edits, edit)
		ends = append(ends, edit.To)
	}
	if len(edits) == 0 {
		return false
	}
	if !e.typing {
		e.pushUndo()
	}
	sels := make(buffer.Selections, len(ends))
	for i, p := range ends {
		sels[i] = buffer.Cursor(buffer.MapPos(p, edits))
	}
	e.buf.Apply(edits)
	e.sels = dedupe(sels)
	e.changed()
	return true
}

func (e *Editor) insertText(text string, typed bool) {
	e.editEach(func(from, to buffer.Pos) (buffer.Edit, bool) {
		return buffer.Edit{From: from, To: to, Text: text}, true
	})
	e.typing = typed
}

func (e *Editor) newline() {
	e.editEach(func(from, to buffer.Pos) (buffer.Edit, bool) {
		line := e.buf.LineRunes(from.Line)
		n := 0
		for n < len(line) && n < from.Col && unicode.IsSpace(line[n]) {
			n++
		}
		return buffer.Edit{From: from, To: to, Text: "\n" + string(line[:n])}, true
	})
}

func (e *Editor) backspace() {
	e.editEach(func(from, to buffer.Pos) (buffer.Edit, bool) {
		if from != to {
			return buffer.Delete(from, to), true
		}
		if from == (buffer.Pos{}) {
			return buffer.Edit{}, false
		}
		return buffer.Delete(e.left(from), to), true
	})
}

// disjoint returns the ranges in document order with overlapping ones merged.
// Orientation is dropped; callers collapse the result to cursors anyway.
func disjoint(sels buffer.Selections) buffer.Selections {
	type span struct{ from, to buffer.Pos }
	spans := make([]span, 0, len(sels))
	for _, r := range sels {
		from, to := r.Ordered()
		spans = append(spans, span{from, to})
	}
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].from.Less(spans[j-1].from); j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
	var out buffer.Selections
	for _, s := range spans {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if s.from.Less(last.Head) || (s.from == last.Head && s.from == s.to) {
				if last.Head.Less(s.to) {
					last.Head = s.to
				}
				continue
			}
		}
		out = append(out, buffer.Span(s.from, s.to))
	}
	return out
}

// dedupe drops ranges identical to an earlier one, keeping the last copy so
// the primary survives.
func dedupe(sels buffer.Selections) buffer.Selections {
	out := make(buffer.Selections, 0, len(sels))
	for i, r := range sels {
		dup := false
		for _, later := range sels[i+1:] {
			if later == r {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}
