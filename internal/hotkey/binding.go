package hotkey

import (
	"fmt"
	"strings"
)

// Binding is a parsed modifier+key combination such as "Super+V".
type Binding struct {
	Mods []string // normalized: ctrl, shift, alt, super
	Key  string   // single upper-case rune or key name
}

// ParseBinding splits and normalizes a binding descriptor. The last
// plus-separated token is the key; everything before it must be a known
// modifier.
func ParseBinding(s string) (Binding, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("binding %q needs at least one modifier and a key", s)
	}

	b := Binding{Key: strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))}
	if b.Key == "" {
		return Binding{}, fmt.Errorf("binding %q has an empty key", s)
	}

	for _, raw := range parts[:len(parts)-1] {
		mod := strings.ToLower(strings.TrimSpace(raw))
		switch mod {
		case "ctrl", "control":
			mod = "ctrl"
		case "shift":
		case "alt":
		case "super", "win", "meta", "cmd":
			mod = "super"
		default:
			return Binding{}, fmt.Errorf("binding %q has unknown modifier %q", s, raw)
		}
		b.Mods = append(b.Mods, mod)
	}
	return b, nil
}

// String renders the binding back in its canonical form.
func (b Binding) String() string {
	parts := make([]string, 0, len(b.Mods)+1)
	for _, mod := range b.Mods {
		parts = append(parts, strings.ToUpper(mod[:1])+mod[1:])
	}
	return strings.Join(append(parts, b.Key), "+")
}
