// Package hotkey binds the global show/hide key combination and owns the
// picker visibility state machine.
package hotkey

import (
	"context"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/pkg/utils"
)

// DefaultCooldown absorbs the latency of positioning the picker window after
// a show request; a second hotkey press inside it is dropped.
const DefaultCooldown = 500 * time.Millisecond

// Presenter is the window service the toggle drives. Implemented by the
// presentation layer; the daemon forwards the calls over the IPC boundary.
type Presenter interface {
	ShowNearCursor(ctx context.Context) error
	Hide(ctx context.Context) error
}

// ToggleConfig holds configuration for Toggle construction.
type ToggleConfig struct {
	Presenter Presenter
	Prepare   func() // runs before showing, while the target still has focus
	Cooldown  time.Duration
	Logger    *utils.Logger
}

// Toggle is the picker visibility state machine: Hidden or Visible, plus a
// transient in-flight guard so a rapid double-press cannot fire two
// overlapping show sequences. Hide is treated as instantaneous; show holds
// the guard for the cooldown.
type Toggle struct {
	mu       sync.Mutex
	visible  bool
	inFlight bool

	presenter Presenter
	prepare   func()
	cooldown  time.Duration
	logger    *utils.Logger
}

// NewToggle builds the controller.
func NewToggle(cfg ToggleConfig) *Toggle {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Toggle{
		presenter: cfg.Presenter,
		prepare:   cfg.Prepare,
		cooldown:  cooldown,
		logger:    logger,
	}
}

// Toggle flips picker visibility. Requests arriving while a toggle is in
// flight are dropped, not queued.
func (t *Toggle) Toggle(ctx context.Context) {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		t.logger.Debug("Toggle ignored, previous toggle still in flight")
		return
	}

	if t.visible {
		t.visible = false
		t.mu.Unlock()
		if err := t.presenter.Hide(ctx); err != nil {
			t.logger.Warn("Failed to hide picker", "error", err)
		}
		return
	}

	t.inFlight = true
	t.mu.Unlock()

	// Snapshot the focused window before the picker steals focus.
	if t.prepare != nil {
		t.prepare()
	}

	err := t.presenter.ShowNearCursor(ctx)

	t.mu.Lock()
	if err != nil {
		t.logger.Warn("Failed to show picker", "error", err)
	} else {
		t.visible = true
	}
	t.mu.Unlock()

	time.AfterFunc(t.cooldown, func() {
		t.mu.Lock()
		t.inFlight = false
		t.mu.Unlock()
	})
}

// Show makes the picker visible regardless of current state; a second
// daemon launch signals the running instance through this path. In-flight
// toggles still win.
func (t *Toggle) Show(ctx context.Context) error {
	t.mu.Lock()
	if t.inFlight || t.visible {
		t.mu.Unlock()
		return nil
	}
	t.inFlight = true
	t.mu.Unlock()

	if t.prepare != nil {
		t.prepare()
	}
	err := t.presenter.ShowNearCursor(ctx)

	t.mu.Lock()
	if err == nil {
		t.visible = true
	}
	t.mu.Unlock()

	time.AfterFunc(t.cooldown, func() {
		t.mu.Lock()
		t.inFlight = false
		t.mu.Unlock()
	})
	return err
}

// Hide hides the picker unconditionally (the explicit hide-window request on
// the IPC boundary, and the injector's pre-paste hide).
func (t *Toggle) Hide(ctx context.Context) error {
	t.mu.Lock()
	wasVisible := t.visible
	t.visible = false
	t.mu.Unlock()

	if !wasVisible {
		return nil
	}
	return t.presenter.Hide(ctx)
}

// Visible reports the current picker state.
func (t *Toggle) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}
