package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Syntax engines the editor can classify markup with.
const (
	SyntaxTreeSitter = "treesitter"
	SyntaxLexer      = "lexer"
)

// Keymap maps key names ("ctrl+d", "alt+up", "enter") to command names or
// editor actions.
type Keymap map[string]string

type EditorOptions struct {
	TabWidth    int    `toml:"tab-width"`
	LineNumbers bool   `toml:"line-numbers"`
	Syntax      string `toml:"syntax"`
	Indent      string `toml:"indent"`
}

// FormatOptions selects the printer formatCode runs. An empty Command uses
// the built-in reindenter.
type FormatOptions struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout string   `toml:"timeout"`
}

// TimeoutDuration parses Timeout, falling back to five seconds.
func (f FormatOptions) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(f.Timeout); err == nil && d > 0 {
		return d
	}
	return 5 * time.Second
}

type Theme struct {
	Theme                      string `toml:"theme"`
	Foreground                 string `toml:"foreground"`
	Background                 string `toml:"background"`
	StatuslineForeground       string `toml:"statusline-foreground"`
	StatuslineBackground       string `toml:"statusline-background"`
	LineNumberForeground       string `toml:"line-number-foreground"`
	LineNumberActiveForeground string `toml:"line-number-active-foreground"`
	SelectionForeground        string `toml:"selection-foreground"`
	SelectionBackground        string `toml:"selection-background"`
	CursorBackground           string `toml:"cursor-background"`
	SyntaxTag                  string `toml:"syntax-tag"`
	SyntaxAttribute            string `toml:"syntax-attribute"`
	SyntaxValue                string `toml:"syntax-value"`
	SyntaxText                 string `toml:"syntax-text"`
	SyntaxExpression           string `toml:"syntax-expression"`
	SyntaxComment              string `toml:"syntax-comment"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Format FormatOptions `toml:"format"`
	Theme  Theme         `toml:"theme"`
	Keymap Keymap        `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:    2,
			LineNumbers: true,
			Syntax:      SyntaxTreeSitter,
			Indent:      "  ",
		},
		Format: FormatOptions{
			Timeout: "5s",
		},
		Theme: Theme{
			Theme:                      "",
			Foreground:                 "#B3B1AD",
			Background:                 "#0A0E14",
			StatuslineForeground:       "#B3B1AD",
			StatuslineBackground:       "#0F1419",
			LineNumberForeground:       "#3E4B59",
			LineNumberActiveForeground: "#B3B1AD",
			SelectionForeground:        "#B3B1AD",
			SelectionBackground:        "#27425A",
			CursorBackground:           "#E6B450",
			SyntaxTag:                  "#39BAE6",
			SyntaxAttribute:            "#FFB454",
			SyntaxValue:                "#BAE67E",
			SyntaxText:                 "#B3B1AD",
			SyntaxExpression:           "#F29668",
			SyntaxComment:              "#5C6773",
		},
		Keymap: Keymap{
			"ctrl+_":         "toggleComment",
			"ctrl+/":         "toggleComment",
			"alt+w":          "wrapInTag",
			"alt+up":         "swapLineUp",
			"alt+down":       "swapLineDown",
			"alt+shift+up":   "duplicateLineUp",
			"alt+shift+down": "duplicateLineDown",
			"ctrl+d":         "selectNextOccurrence",
			"alt+d":          "selectAllOccurrences",
			"alt+f":          "formatCode",

			"left":        "move_left",
			"right":       "move_right",
			"up":          "move_up",
			"down":        "move_down",
			"shift+left":  "extend_left",
			"shift+right": "extend_right",
			"shift+up":    "extend_up",
			"shift+down":  "extend_down",
			"home":        "line_start",
			"end":         "line_end",
			"ctrl+down":   "add_cursor_below",
			"esc":         "collapse_selection",
			"ctrl+a":      "select_all",
			"enter":       "newline",
			"tab":         "indent",
			"backspace":   "backspace",
			"ctrl+z":      "undo",
			"ctrl+y":      "redo",
			"ctrl+s":      "save",
			"ctrl+q":      "quit",
			"ctrl+c":      "quit",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.LineNumbers {
		cfg.Editor.LineNumbers = userCfg.Editor.LineNumbers
	}
	if userCfg.Editor.Syntax != "" {
		switch userCfg.Editor.Syntax {
		case SyntaxTreeSitter, SyntaxLexer:
			cfg.Editor.Syntax = userCfg.Editor.Syntax
		default:
			return cfg, fmt.Errorf("%s: unknown syntax engine %q", path, userCfg.Editor.Syntax)
		}
	}
	if userCfg.Editor.Indent != "" {
		cfg.Editor.Indent = userCfg.Editor.Indent
	}
	if userCfg.Format.Command != "" {
		cfg.Format.Command = userCfg.Format.Command
		cfg.Format.Args = userCfg.Format.Args
	}
	if userCfg.Format.Timeout != "" {
		cfg.Format.Timeout = userCfg.Format.Timeout
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	for k, v := range userCfg.Keymap {
		if v == "" {
			delete(cfg.Keymap, k)
			continue
		}
		cfg.Keymap[k] = v
	}

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.LineNumberForeground != "" {
		dst.LineNumberForeground = src.LineNumberForeground
	}
	if src.LineNumberActiveForeground != "" {
		dst.LineNumberActiveForeground = src.LineNumberActiveForeground
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.CursorBackground != "" {
		dst.CursorBackground = src.CursorBackground
	}
	if src.SyntaxTag != "" {
		dst.SyntaxTag = src.SyntaxTag
	}
	if src.SyntaxAttribute != "" {
		dst.SyntaxAttribute = src.SyntaxAttribute
	}
	if src.SyntaxValue != "" {
		dst.SyntaxValue = src.SyntaxValue
	}
	if src.SyntaxText != "" {
		dst.SyntaxText = src.SyntaxText
	}
	if src.SyntaxExpression != "" {
		dst.SyntaxExpression = src.SyntaxExpression
	}
	if src.SyntaxComment != "" {
		dst.SyntaxComment = src.SyntaxComment
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("JSXPAD_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "jsxpad"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jsxpad"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
