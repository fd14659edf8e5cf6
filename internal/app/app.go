package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/commands"
	"github.com/kobzarvs/jsxpad/internal/config"
	"github.com/kobzarvs/jsxpad/internal/editor"
	"github.com/kobzarvs/jsxpad/internal/format"
	"github.com/kobzarvs/jsxpad/internal/logger"
	"github.com/kobzarvs/jsxpad/internal/session"
	"github.com/kobzarvs/jsxpad/internal/syntax"
	"github.com/kobzarvs/jsxpad/internal/treesitter"
)

const autosaveInterval = 15 * time.Second

// App is the top-level runtime for jsxpad. All file access goes through fs.
type App struct {
	fs  afero.Fs
	out io.Writer

	// SessionPath overrides the session file location.
	SessionPath string
	// Config and Languages skip loading from the config directory when set.
	Config    *config.Config
	Languages *config.Languages
}

func New(fs afero.Fs, out io.Writer) *App {
	return &App{fs: fs, out: out}
}

func (a *App) loadConfig() (config.Config, config.Languages, error) {
	var cfg config.Config
	var langs config.Languages
	if a.Config != nil {
		cfg = *a.Config
	} else {
		loaded, err := config.Load()
		if err != nil {
			return cfg, langs, err
		}
		cfg = loaded
	}
	if a.Languages != nil {
		langs = *a.Languages
	} else {
		loaded, err := config.LoadLanguages()
		if err != nil {
			return cfg, langs, err
		}
		langs = loaded
	}
	return cfg, langs, nil
}

func (a *App) openSession() (*session.Manager, error) {
	if a.SessionPath != "" {
		return session.Open(a.fs, a.SessionPath)
	}
	return session.NewManager(a.fs)
}

// syntaxFunc picks the classifier configured for the editor. The tree-sitter
// engine falls back to the lexer when a parse fails.
func syntaxFunc(cfg config.Config, engine *treesitter.Engine) editor.SyntaxFunc {
	if cfg.Editor.Syntax == config.SyntaxLexer || engine == nil {
		return func(_, text string) syntax.Classifier {
			return syntax.NewLexer(text)
		}
	}
	return func(path, text string) syntax.Classifier {
		snap, err := engine.Parse(path, text)
		if err != nil {
			logger.Warn("tree-sitter parse failed, using lexer", "path", path, "error", err)
			return syntax.NewLexer(text)
		}
		return snap
	}
}

// formatterFor builds the printer formatCode uses for path.
func formatterFor(cfg config.Config, langs config.Languages, path string) format.Formatter {
	opts := langs.FormatterFor(path, cfg.Format)
	if opts.Command == "" {
		return format.Reindent{Indent: cfg.Editor.Indent}
	}
	return format.Command{
		Name:    opts.Command,
		Args:    opts.Args,
		Timeout: opts.TimeoutDuration(),
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// startPath picks the file to open. Without an argument the file active in
// the previous session reopens if it still exists.
func (a *App) startPath(sm *session.Manager, path string) string {
	if path != "" {
		return path
	}
	last := sm.GetActiveFile()
	if last == "" {
		return ""
	}
	if ok, _ := afero.Exists(a.fs, last); !ok {
		return ""
	}
	return last
}

// Run starts the interactive editor on path. An empty path reopens the last
// active file or a scratch buffer; a missing file is created on first save.
func (a *App) Run(path string) (err error) {
	runtime.LockOSThread()
	cfg, langs, err := a.loadConfig()
	if err != nil {
		return err
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	sm, err := a.openSession()
	if err != nil {
		return err
	}
	sm.StartAutosave(autosaveInterval)

	var engine *treesitter.Engine
	if cfg.Editor.Syntax == config.SyntaxTreeSitter {
		engine = treesitter.New()
		defer engine.Close()
	}

	ed := editor.New(cfg, a.fs)
	ed.SetSyntaxFunc(syntaxFunc(cfg, engine))
	path = a.startPath(sm, path)
	var key string
	if path != "" {
		key = absPath(path)
		ed.SetFormatter(formatterFor(cfg, langs, path))
		if ok, _ := afero.Exists(a.fs, path); ok {
			if err := ed.OpenFile(path); err != nil {
				return multierr.Append(err, sm.Stop())
			}
			if st, ok := sm.GetFileState(key); ok {
				ed.RestoreState(st)
			}
		} else {
			ed.NewFile(path)
		}
	}
	defer func() {
		if key != "" {
			sm.SetFileState(key, ed.State())
		}
		err = multierr.Append(err, sm.Stop())
	}()

	ed.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			if ed.HandleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
		case nil:
			return nil
		}
		ed.Render(s)
	}
}

// CommandOptions controls a headless command run.
type CommandOptions struct {
	// Selections replaces the saved selection set when non-empty.
	Selections buffer.Selections
	// Write saves the result back to the file.
	Write bool
}

// CommandResult is the outcome of a headless command run.
type CommandResult struct {
	Text       string
	Selections buffer.Selections
	Applied    bool
}

// RunCommand applies one editing command to the file at path without a
// screen. Occurrence state and selections persist in the session file so
// repeated runs behave like repeated key presses.
func (a *App) RunCommand(ctx context.Context, name, path string, opts CommandOptions) (res CommandResult, err error) {
	cfg, langs, err := a.loadConfig()
	if err != nil {
		return res, err
	}
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return res, err
	}
	sm, err := a.openSession()
	if err != nil {
		return res, err
	}
	defer func() { err = multierr.Append(err, sm.Save()) }()

	var engine *treesitter.Engine
	if cfg.Editor.Syntax == config.SyntaxTreeSitter {
		engine = treesitter.New()
		defer engine.Close()
	}

	key := absPath(path)
	state, _ := sm.GetFileState(key)
	buf := buffer.New(string(data))
	sels := opts.Selections
	if len(sels) == 0 {
		sels = state.Selections
	}
	for i, r := range sels {
		sels[i] = buffer.Range{Anchor: buf.Clamp(r.Anchor), Head: buf.Clamp(r.Head)}
	}

	out, applied, err := commands.Run(ctx, name, commands.Input{
		Buffer:     buf,
		Selections: sels,
		Syntax:     syntaxFunc(cfg, engine)(key, buf.Text()),
		Formatter:  formatterFor(cfg, langs, path),
		Occurrence: state.Occurrence,
	})
	if err != nil {
		return res, err
	}
	logger.Command(name, len(sels), applied, "file", key)
	buf.Apply(out.Edits)

	res = CommandResult{Text: buf.Text(), Selections: out.Selections, Applied: applied}
	state.Selections = out.Selections
	state.Occurrence = out.Occurrence
	sm.SetFileState(key, state)

	if opts.Write && len(out.Edits) > 0 {
		if err := afero.WriteFile(a.fs, path, []byte(res.Text), 0o644); err != nil {
			return res, err
		}
	}
	return res, nil
}

// PrintCommandResult writes the resulting text followed by one line per
// selection.
func (a *App) PrintCommandResult(res CommandResult) {
	fmt.Fprintln(a.out, res.Text)
	fmt.Fprintln(a.out, "---")
	for _, r := range res.Selections {
		fmt.Fprintln(a.out, FormatRange(r))
	}
	if !res.Applied {
		fmt.Fprintln(a.out, "(no-op)")
	}
}

// Tokens prints every token of the file at path as
// "line:col length role scope".
func (a *App) Tokens(path string) error {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return err
	}
	var engine *treesitter.Engine
	if cfg.Editor.Syntax == config.SyntaxTreeSitter {
		engine = treesitter.New()
		defer engine.Close()
	}
	text := string(data)
	cls := syntaxFunc(cfg, engine)(absPath(path), text)
	lines := strings.Count(text, "\n") + 1
	for line := 0; line < lines; line++ {
		for _, tok := range cls.Tokens(line) {
			fmt.Fprintf(a.out, "%s %d %s %s\n", tok.Pos, tok.Length, tok.Role, tok.Scope)
		}
	}
	return nil
}

// ListCommands prints the registered command names.
func (a *App) ListCommands() {
	for _, name := range commands.Names() {
		fmt.Fprintln(a.out, name)
	}
}

// ParseRange reads "L:C" as a cursor or "L:C-L:C" as anchor-head. Lines and
// columns are zero-based, matching the output of FormatRange.
func ParseRange(s string) (buffer.Range, error) {
	anchorText, headText, isSpan := strings.Cut(s, "-")
	anchor, err := parsePos(anchorText)
	if err != nil {
		return buffer.Range{}, fmt.Errorf("selection %q: %w", s, err)
	}
	if !isSpan {
		return buffer.Cursor(anchor), nil
	}
	head, err := parsePos(headText)
	if err != nil {
		return buffer.Range{}, fmt.Errorf("selection %q: %w", s, err)
	}
	return buffer.Range{Anchor: anchor, Head: head}, nil
}

func parsePos(s string) (buffer.Pos, error) {
	lineText, colText, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return buffer.Pos{}, fmt.Errorf("want line:col")
	}
	line, err := strconv.Atoi(lineText)
	if err != nil {
		return buffer.Pos{}, err
	}
	col, err := strconv.Atoi(colText)
	if err != nil {
		return buffer.Pos{}, err
	}
	if line < 0 || col < 0 {
		return buffer.Pos{}, fmt.Errorf("negative position")
	}
	return buffer.Pos{Line: line, Col: col}, nil
}

func FormatRange(r buffer.Range) string {
	if r.Empty() {
		return r.Head.String()
	}
	return r.String()
}
