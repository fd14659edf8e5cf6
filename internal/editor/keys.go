package editor

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// keyString names ev the way keymaps spell keys: modifiers first in the
// order ctrl, alt, shift, then the key ("alt+shift+up", "ctrl+d", "x").
func keyString(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	alt := mods&tcell.ModAlt != 0 || mods&tcell.ModMeta != 0
	shift := mods&tcell.ModShift != 0
	ctrl := mods&tcell.ModCtrl != 0

	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		name := string(r)
		if r == ' ' {
			name = "space"
		}
		switch {
		case ctrl:
			return "ctrl+" + strings.ToLower(name)
		case alt:
			return "alt+" + strings.ToLower(name)
		}
		return name
	}

	// Tab, Backspace and Enter share codes with ctrl+i, ctrl+h and ctrl+m.
	switch ev.Key() {
	case tcell.KeyTab:
		if shift {
			return "shift+tab"
		}
		return "tab"
	case tcell.KeyBacktab:
		return "shift+tab"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyEscape:
		return "esc"
	}
	if name := ctrlKeyName(ev.Key()); name != "" {
		return name
	}

	var base string
	switch ev.Key() {
	case tcell.KeyUp:
		base = "up"
	case tcell.KeyDown:
		base = "down"
	case tcell.KeyLeft:
		base = "left"
	case tcell.KeyRight:
		base = "right"
	case tcell.KeyPgUp:
		base = "pgup"
	case tcell.KeyPgDn:
		base = "pgdn"
	case tcell.KeyHome:
		base = "home"
	case tcell.KeyEnd:
		base = "end"
	case tcell.KeyDelete:
		base = "del"
	default:
		return ""
	}
	var prefix string
	if ctrl {
		prefix += "ctrl+"
	}
	if alt {
		prefix += "alt+"
	}
	if shift {
		prefix += "shift+"
	}
	return prefix + base
}

func ctrlKeyName(key tcell.Key) string {
	switch {
	case key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ:
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	case key == tcell.KeyCtrlUnderscore:
		return "ctrl+_"
	case key == tcell.KeyCtrlBackslash:
		return "ctrl+\\"
	}
	return ""
}
