package editor

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func eventForKeyString(t *testing.T, key string) *tcell.EventKey {
	t.Helper()
	parts := strings.Split(key, "+")
	base := parts[len(parts)-1]
	if base == "" {
		// "ctrl++" style names are not used
		t.Fatalf("bad key %q", key)
	}
	var mod tcell.ModMask
	for _, part := range parts[:len(parts)-1] {
		switch part {
		case "ctrl":
			mod |= tcell.ModCtrl
		case "alt":
			mod |= tcell.ModAlt
		case "shift":
			mod |= tcell.ModShift
		default:
			t.Fatalf("unknown modifier %q in %q", part, key)
		}
	}

	if mod == tcell.ModCtrl {
		if r := []rune(base); len(r) == 1 {
			if ctrlKey := ctrlKeyForRune(r[0]); ctrlKey != 0 {
				return tcell.NewEventKey(ctrlKey, 0, 0)
			}
		}
	}

	switch base {
	case "left":
		return tcell.NewEventKey(tcell.KeyLeft, 0, mod)
	case "right":
		return tcell.NewEventKey(tcell.KeyRight, 0, mod)
	case "up":
		return tcell.NewEventKey(tcell.KeyUp, 0, mod)
	case "down":
		return tcell.NewEventKey(tcell.KeyDown, 0, mod)
	case "home":
		return tcell.NewEventKey(tcell.KeyHome, 0, mod)
	case "end":
		return tcell.NewEventKey(tcell.KeyEnd, 0, mod)
	case "enter":
		return tcell.NewEventKey(tcell.KeyEnter, 0, mod)
	case "backspace":
		return tcell.NewEventKey(tcell.KeyBackspace2, 0, mod)
	case "del":
		return tcell.NewEventKey(tcell.KeyDelete, 0, mod)
	case "tab":
		return tcell.NewEventKey(tcell.KeyTab, 0, mod)
	case "esc":
		return tcell.NewEventKey(tcell.KeyEscape, 0, mod)
	case "space":
		return tcell.NewEventKey(tcell.KeyRune, ' ', mod)
	}

	if r := []rune(base); len(r) == 1 {
		return tcell.NewEventKey(tcell.KeyRune, r[0], mod)
	}
	t.Fatalf("unsupported key %q", key)
	return nil
}

func ctrlKeyForRune(r rune) tcell.Key {
	switch {
	case r >= 'a' && r <= 'z':
		return tcell.KeyCtrlA + tcell.Key(r-'a')
	case r == '_':
		return tcell.KeyCtrlUnderscore
	}
	return 0
}

func TestKeyString(t *testing.T) {
	cases := []struct {
		name string
		ev   *tcell.EventKey
		want string
	}{
		{"plain rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), "x"},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "space"},
		{"ctrl letter", tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModNone), "ctrl+d"},
		{"ctrl underscore", tcell.NewEventKey(tcell.KeyCtrlUnderscore, 0, tcell.ModNone), "ctrl+_"},
		{"ctrl slash rune", tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModCtrl), "ctrl+/"},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'W', tcell.ModAlt), "alt+w"},
		{"alt arrow", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModAlt), "alt+up"},
		{"alt shift arrow", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModAlt|tcell.ModShift), "alt+shift+down"},
		{"shift arrow", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModShift), "shift+right"},
		{"ctrl arrow", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModCtrl), "ctrl+down"},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "enter"},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), "tab"},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "shift+tab"},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), "backspace"},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "esc"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyString(tt.ev); got != tt.want {
				t.Fatalf("keyString = %q, want %q", got, tt.want)
			}
		})
	}
}
