package rod

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"browser-automation/internal/domain/entity"

	"github.com/go-rod/rod/lib/input"
)

var namedKeys = map[string]input.Key{
	"enter":      input.Enter,
	"return":     input.Enter,
	"tab":        input.Tab,
	"escape":     input.Escape,
	"esc":        input.Escape,
	"backspace":  input.Backspace,
	"delete":     input.Delete,
	"space":      input.Space,
	"arrowup":    input.ArrowUp,
	"arrowdown":  input.ArrowDown,
	"arrowleft":  input.ArrowLeft,
	"arrowright": input.ArrowRight,
	"home":       input.Home,
	"end":        input.End,
	"pageup":     input.PageUp,
	"pagedown":   input.PageDown,
	"insert":     input.Insert,
	"f1":         input.F1,
	"f2":         input.F2,
	"f3":         input.F3,
	"f4":         input.F4,
	"f5":         input.F5,
	"f6":         input.F6,
	"f7":         input.F7,
	"f8":         input.F8,
	"f9":         input.F9,
	"f10":        input.F10,
	"f11":        input.F11,
	"f12":        input.F12,
}

var modifierKeys = map[string]input.Key{
	"control": input.ControlLeft,
	"ctrl":    input.ControlLeft,
	"shift":   input.ShiftLeft,
	"alt":     input.AltLeft,
	"meta":    input.MetaLeft,
	"cmd":     input.MetaLeft,
}

// ParseCombo splits "Control+Shift+a" into held modifiers and the key typed
// while they are down. A single printable character maps to its own key.
func ParseCombo(combo string) ([]input.Key, input.Key, error) {
	parts := strings.Split(combo, "+")
	// "Control++" presses the plus key
	if strings.HasSuffix(combo, "++") {
		parts = append(strings.Split(strings.TrimSuffix(combo, "++"), "+"), "+")
	}

	var mods []input.Key
	for _, name := range parts[:len(parts)-1] {
		k, ok := modifierKeys[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, 0, fmt.Errorf("unknown modifier %q in %q: %w", name, combo, entity.ErrInvalidArguments)
		}
		mods = append(mods, k)
	}

	last := parts[len(parts)-1]
	if k, ok := lookupKey(last); ok {
		return mods, k, nil
	}
	return nil, 0, fmt.Errorf("unknown key %q in %q: %w", last, combo, entity.ErrInvalidArguments)
}

func lookupKey(name string) (input.Key, bool) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		k := input.Key(r)
		if known(k) {
			return k, true
		}
		return 0, false
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	if k, ok := namedKeys[lower]; ok {
		return k, true
	}
	if k, ok := modifierKeys[lower]; ok {
		return k, true
	}
	return 0, false
}

// known guards against keys rod would panic on.
func known(k input.Key) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = k.Info()
	return true
}
