package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/kobzarvs/jsxpad/internal/buffer"
	"github.com/kobzarvs/jsxpad/internal/commands"
	"github.com/kobzarvs/jsxpad/internal/config"
	"github.com/kobzarvs/jsxpad/internal/format"
	"github.com/kobzarvs/jsxpad/internal/session"
)

const testSession = "/state/jsxpad/session.json"

func newTestApp(t *testing.T, files map[string]string) (*App, afero.Fs, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, text := range files {
		if err := afero.WriteFile(fs, path, []byte(text), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	cfg := config.Default()
	cfg.Editor.Syntax = config.SyntaxLexer
	var out bytes.Buffer
	a := New(fs, &out)
	a.SessionPath = testSession
	a.Config = &cfg
	a.Languages = &config.Languages{}
	return a, fs, &out
}

func cursorAt(line, col int) buffer.Selections {
	return buffer.Selections{buffer.Cursor(buffer.Pos{Line: line, Col: col})}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRunCommandWritesResult(t *testing.T) {
	a, fs, _ := newTestApp(t, map[string]string{"/src/app.jsx": "<div>First line</div>"})

	res, err := a.RunCommand(context.Background(), commands.ToggleComment, "/src/app.jsx", CommandOptions{
		Selections: cursorAt(0, 5),
		Write:      true,
	})
	if err != nil {
		t.Fatalf("RunCommand error: %v", err)
	}
	want := "{/* <div>First line</div> */}"
	if !res.Applied || res.Text != want {
		t.Fatalf("result = %q applied=%v, want %q", res.Text, res.Applied, want)
	}
	if got := readFile(t, fs, "/src/app.jsx"); got != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
	if len(res.Selections) != 1 || FormatRange(res.Selections[0]) != "0:9" {
		t.Fatalf("selections = %v, want [0:9]", res.Selections)
	}
}

func TestRunCommandWithoutWriteLeavesFile(t *testing.T) {
	a, fs, _ := newTestApp(t, map[string]string{"/src/app.jsx": "<a/>\n<b/>"})

	res, err := a.RunCommand(context.Background(), commands.SwapLineDown, "/src/app.jsx", CommandOptions{
		Selections: cursorAt(0, 0),
	})
	if err != nil {
		t.Fatalf("RunCommand error: %v", err)
	}
	if res.Text != "<b/>\n<a/>" {
		t.Fatalf("result = %q", res.Text)
	}
	if got := readFile(t, fs, "/src/app.jsx"); got != "<a/>\n<b/>" {
		t.Fatalf("file changed to %q", got)
	}
}

func TestRunCommandPersistsOccurrenceState(t *testing.T) {
	a, fs, _ := newTestApp(t, map[string]string{"/src/app.jsx": "foo bar foo\nfoo"})
	ctx := context.Background()

	if _, err := a.RunCommand(ctx, commands.SelectNextOccurrence, "/src/app.jsx", CommandOptions{
		Selections: cursorAt(0, 1),
	}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	var res CommandResult
	var err error
	for i := 0; i < 2; i++ {
		res, err = a.RunCommand(ctx, commands.SelectNextOccurrence, "/src/app.jsx", CommandOptions{})
		if err != nil {
			t.Fatalf("run %d: %v", i+2, err)
		}
	}
	var got []string
	for _, r := range res.Selections {
		got = append(got, FormatRange(r))
	}
	if want := "0:0-0:3 0:8-0:11 1:0-1:3"; strings.Join(got, " ") != want {
		t.Fatalf("selections = %v, want %s", got, want)
	}

	sm, err := session.Open(fs, testSession)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	st, ok := sm.GetFileState("/src/app.jsx")
	if !ok {
		t.Fatalf("session has no state for the file")
	}
	if !st.Occurrence.WholeWord || len(st.Occurrence.Last) != 3 {
		t.Fatalf("occurrence = %+v", st.Occurrence)
	}
}

func TestRunCommandNoOp(t *testing.T) {
	a, _, out := newTestApp(t, map[string]string{"/src/app.jsx": "<a/>"})

	res, err := a.RunCommand(context.Background(), commands.SwapLineUp, "/src/app.jsx", CommandOptions{
		Selections: cursorAt(0, 2),
	})
	if err != nil {
		t.Fatalf("RunCommand error: %v", err)
	}
	if res.Applied || res.Text != "<a/>" {
		t.Fatalf("result = %q applied=%v", res.Text, res.Applied)
	}
	a.PrintCommandResult(res)
	if want := "<a/>\n---\n0:2\n(no-op)\n"; out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}

func TestRunCommandErrors(t *testing.T) {
	a, _, _ := newTestApp(t, map[string]string{"/src/app.jsx": "<a/>"})
	ctx := context.Background()

	if _, err := a.RunCommand(ctx, "noSuchCommand", "/src/app.jsx", CommandOptions{}); err == nil {
		t.Fatalf("unknown command should fail")
	}
	if _, err := a.RunCommand(ctx, commands.ToggleComment, "/src/missing.jsx", CommandOptions{}); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestRunCommandClampsSelections(t *testing.T) {
	a, _, _ := newTestApp(t, map[string]string{"/src/app.jsx": "<a/>"})

	res, err := a.RunCommand(context.Background(), commands.DuplicateLineDown, "/src/app.jsx", CommandOptions{
		Selections: cursorAt(9, 9),
	})
	if err != nil {
		t.Fatalf("RunCommand error: %v", err)
	}
	if res.Text != "<a/>\n<a/>" {
		t.Fatalf("result = %q", res.Text)
	}
}

func TestTokens(t *testing.T) {
	a, _, out := newTestApp(t, map[string]string{"/src/app.jsx": "<a>x</a>"})

	if err := a.Tokens("/src/app.jsx"); err != nil {
		t.Fatalf("Tokens error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "0:0 ") {
		t.Fatalf("first token line = %q", out.String())
	}
	if !strings.Contains(out.String(), " tag markup") {
		t.Fatalf("no tag token in %q", out.String())
	}
	if !strings.Contains(out.String(), "0:3 1 body markup") {
		t.Fatalf("no body token in %q", out.String())
	}
}

func TestListCommands(t *testing.T) {
	a, _, out := newTestApp(t, nil)
	a.ListCommands()
	got := strings.Fields(out.String())
	if len(got) != len(commands.Names()) {
		t.Fatalf("listed %d commands, want %d", len(got), len(commands.Names()))
	}
	if !strings.Contains(out.String(), commands.FormatCode+"\n") {
		t.Fatalf("formatCode missing from %q", out.String())
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		want buffer.Range
	}{
		{"0:5", buffer.Cursor(buffer.Pos{Line: 0, Col: 5})},
		{"1:2-3:4", buffer.Range{Anchor: buffer.Pos{Line: 1, Col: 2}, Head: buffer.Pos{Line: 3, Col: 4}}},
		{"3:4-1:2", buffer.Range{Anchor: buffer.Pos{Line: 3, Col: 4}, Head: buffer.Pos{Line: 1, Col: 2}}},
	}
	for _, tt := range cases {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if err != nil {
				t.Fatalf("ParseRange error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseRange(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if FormatRange(got) != tt.in {
				t.Fatalf("FormatRange = %q, want %q", FormatRange(got), tt.in)
			}
		})
	}

	for _, bad := range []string{"", "5", "a:b", "1:-2", "1:2-"} {
		if _, err := ParseRange(bad); err == nil {
			t.Fatalf("ParseRange(%q) should fail", bad)
		}
	}
}

func TestFormatterFor(t *testing.T) {
	cfg := config.Default()
	cfg.Editor.Indent = "\t"
	langs := config.Languages{
		Languages: []config.Language{{Name: "jsx", FileTypes: []string{"jsx"}, Formatter: "prettier"}},
		Formatters: map[string]config.FormatOptions{
			"prettier": {Command: "prettier", Args: []string{"--parser", "babel"}, Timeout: "2s"},
		},
	}

	got := formatterFor(cfg, langs, "/src/app.jsx")
	cmd, ok := got.(format.Command)
	if !ok || cmd.Name != "prettier" || len(cmd.Args) != 2 || cmd.Timeout.String() != "2s" {
		t.Fatalf("jsx formatter = %#v", got)
	}

	got = formatterFor(cfg, langs, "/src/notes.txt")
	if re, ok := got.(format.Reindent); !ok || re.Indent != "\t" {
		t.Fatalf("fallback formatter = %#v", got)
	}
}

func TestStartPathReopensActiveFile(t *testing.T) {
	a, fs, _ := newTestApp(t, map[string]string{"/src/app.jsx": "<a/>"})
	sm, err := session.Open(fs, testSession)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	if got := a.startPath(sm, ""); got != "" {
		t.Fatalf("startPath with empty session = %q, want empty", got)
	}
	sm.SetFileState("/src/app.jsx", session.FileState{})
	if got := a.startPath(sm, ""); got != "/src/app.jsx" {
		t.Fatalf("startPath = %q, want %q", got, "/src/app.jsx")
	}
	if got := a.startPath(sm, "/src/other.jsx"); got != "/src/other.jsx" {
		t.Fatalf("explicit path = %q", got)
	}
	sm.SetFileState("/src/gone.jsx", session.FileState{})
	if got := a.startPath(sm, ""); got != "" {
		t.Fatalf("startPath for a deleted file = %q, want empty", got)
	}
}
