// Package session detects which display protocol the active graphical
// session speaks. Injection tooling differs between the two: X11 allows
// querying and re-activating windows, Wayland compositors do not.
package session

import (
	"os"
	"os/exec"
	"strings"
)

// Environment describes the detected graphical session.
type Environment struct {
	wayland bool
}

// Detect inspects the process environment and classifies the session.
// When neither signal is present it assumes X11, which is what most
// injection tooling targets.
func Detect() Environment {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return Environment{wayland: true}
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland") {
		return Environment{wayland: true}
	}
	return Environment{}
}

// IsWayland reports whether the session speaks the Wayland protocol.
func (e Environment) IsWayland() bool {
	return e.wayland
}

// Name returns a human-readable protocol name for logging.
func (e Environment) Name() string {
	if e.wayland {
		return "wayland"
	}
	return "x11"
}

// HasCommand reports whether an external tool is present on PATH.
func HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
