// Package xwin remembers which X11 window held focus before the picker was
// shown, so the injector can re-activate it ahead of synthesizing the paste
// keystroke. Wayland compositors do not expose focus, so no tracker exists
// there.
package xwin

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/berrythewa/clipdeck/pkg/utils"
)

const pollInterval = 300 * time.Millisecond

// Tracker samples the EWMH _NET_ACTIVE_WINDOW root property and keeps the
// last observed focused window. Remember snapshots it into the paste target
// right before the picker steals focus.
type Tracker struct {
	conn       *xgb.Conn
	root       xproto.Window
	activeAtom xproto.Atom
	logger     *utils.Logger

	mu      sync.Mutex
	current xproto.Window
	target  xproto.Window

	cancel context.CancelFunc
	done   chan struct{}
}

// NewTracker connects to the X server. Returns an error when no display is
// reachable; callers treat that as "no tracker" rather than fatal.
func NewTracker(logger *utils.Logger) (*Tracker, error) {
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	reply, err := xproto.InternAtom(conn, true, uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	return &Tracker{
		conn:       conn,
		root:       xproto.Setup(conn).DefaultScreen(conn).Root,
		activeAtom: reply.Atom,
		logger:     logger,
	}, nil
}

// Start launches the sampling loop.
func (t *Tracker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go t.run(ctx)
}

// Stop cancels the sampling loop and closes the X connection.
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
		<-t.done
	}
	t.conn.Close()
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if id, err := t.queryActive(); err == nil && id != 0 {
				t.mu.Lock()
				t.current = id
				t.mu.Unlock()
			}
		}
	}
}

func (t *Tracker) queryActive() (xproto.Window, error) {
	reply, err := xproto.GetProperty(t.conn, false, t.root, t.activeAtom,
		xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to read active window: %w", err)
	}
	if len(reply.Value) < 4 {
		return 0, nil
	}
	return xproto.Window(xgb.Get32(reply.Value)), nil
}

// Remember snapshots the currently focused window as the paste target. Call
// it before showing the picker, while the target still holds focus.
func (t *Tracker) Remember() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != 0 {
		t.target = t.current
		t.logger.Debug("Remembered focused window", "window", uint32(t.current))
	}
}

// Target returns the remembered paste target, or zero when none is known.
func (t *Tracker) Target() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return uint32(t.target)
}

// Activate synchronously re-activates the window so it regains input focus
// before the paste keystroke fires. Best-effort: window managers may refuse.
func (t *Tracker) Activate(ctx context.Context, id uint32) error {
	cmd := exec.CommandContext(ctx, "xdotool", "windowactivate", "--sync", strconv.FormatUint(uint64(id), 10))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to activate window %d: %w", id, err)
	}
	return nil
}
