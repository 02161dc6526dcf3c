//go:build linux

package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A daemon on a headless box or a pure-Wayland session has no X display.
// Registration must fail per binding so the manager walks its fallbacks and
// disables the feature; constructing the registrar or linking this package
// must never take the process down.
func TestSystemRegistrarWithoutDisplayDegrades(t *testing.T) {
	t.Setenv("DISPLAY", "")

	r := NewSystemRegistrar()
	_, err := r.Register("Super+V", func() {})
	require.Error(t, err)

	m := NewManager(ManagerConfig{
		Registrar: r,
		Default:   "Super+V",
		Fallbacks: []string{"Ctrl+Alt+V", "Ctrl+Shift+V"},
	})
	m.Start()
	assert.False(t, m.Enabled())
	assert.Empty(t, m.Active())
}

func TestSystemRegistrarRejectsUnsupportedKey(t *testing.T) {
	r := NewSystemRegistrar()
	_, err := r.Register("Ctrl+F13", func() {})
	assert.Error(t, err)
}
