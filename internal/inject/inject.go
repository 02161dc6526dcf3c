// Package inject delivers a history entry into whatever native window last
// held focus: it stages the content on the OS clipboard, restores focus, and
// synthesizes a paste keystroke through an ordered chain of external
// injection tools.
package inject

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/session"
	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/pkg/utils"
)

// ErrBusy is returned when a paste is requested while another is in flight.
// The OS clipboard is a single global resource; interleaving two staging
// writes would corrupt which content gets pasted.
var ErrBusy = errors.New("paste already in flight")

// Runner executes one external injection command. Success is its exit
// status; no output is inspected.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Noter receives the injector's own clipboard writes so the poller treats
// them as its new baseline.
type Noter interface {
	NoteText(text string)
	NoteImage(encoded string)
}

// Activator re-activates the remembered previously-focused window. Only X11
// sessions have one; a nil Activator skips the step.
type Activator interface {
	Target() uint32
	Activate(ctx context.Context, id uint32) error
}

// Config holds configuration for Injector construction.
type Config struct {
	Env        session.Environment
	Clipboard  clipboard.Clipboard
	Noter      Noter
	Activator  Activator
	HidePicker func(ctx context.Context) error
	Logger     *utils.Logger
	Settle     time.Duration
	Runner     Runner
}

// Injector performs the staged-clipboard paste sequence. At most one paste
// runs at a time; a concurrent request fails fast with ErrBusy.
type Injector struct {
	env        session.Environment
	clip       clipboard.Clipboard
	noter      Noter
	activator  Activator
	hidePicker func(ctx context.Context) error
	logger     *utils.Logger
	settle     time.Duration
	runner     Runner

	mu sync.Mutex
}

// New builds an injector.
func New(cfg Config) *Injector {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}
	settle := cfg.Settle
	if settle <= 0 {
		settle = 60 * time.Millisecond
	}
	runner := cfg.Runner
	if runner == nil {
		runner = execRunner{}
	}
	return &Injector{
		env:        cfg.Env,
		clip:       cfg.Clipboard,
		noter:      cfg.Noter,
		activator:  cfg.Activator,
		hidePicker: cfg.HidePicker,
		logger:     logger,
		settle:     settle,
		runner:     runner,
	}
}

// Paste stages the entry on the OS clipboard and runs the injection chain.
// The bool reports whether any injection command succeeded; when false the
// content is still staged, so the user can paste manually. The error is
// non-nil only when the operation could not start (busy, or staging failed).
func (in *Injector) Paste(ctx context.Context, entry types.ClipboardEntry) (bool, error) {
	if !in.mu.TryLock() {
		return false, ErrBusy
	}
	defer in.mu.Unlock()

	if err := in.stage(entry); err != nil {
		return false, fmt.Errorf("failed to stage content: %w", err)
	}

	// Hiding the picker hands focus back to the target application; the
	// settle delay lets the window manager finish the transfer.
	if in.hidePicker != nil {
		if err := in.hidePicker(ctx); err != nil {
			in.logger.Warn("Failed to hide picker before paste", "error", err)
		}
	}
	select {
	case <-time.After(in.settle):
	case <-ctx.Done():
		return false, ctx.Err()
	}

	// On X11 the remembered window is re-activated explicitly: hiding the
	// picker does not deterministically restore focus to the right window.
	if !in.env.IsWayland() && in.activator != nil {
		if id := in.activator.Target(); id != 0 {
			if err := in.activator.Activate(ctx, id); err != nil {
				in.logger.Warn("Failed to reactivate target window", "window", id, "error", err)
			}
		}
	}

	for _, cmd := range in.chain(entry) {
		if err := in.runner.Run(ctx, cmd.name, cmd.args...); err != nil {
			in.logger.Debug("Injection command failed, trying next",
				"command", cmd.name, "error", err)
			continue
		}
		in.logger.Debug("Injection succeeded", "command", cmd.name)
		return true, nil
	}

	in.logger.Warn("All injection commands failed, content left on clipboard")
	return false, nil
}

// Stage writes the entry onto the OS clipboard without injecting anything,
// backing the copy-only operations on the IPC boundary.
func (in *Injector) Stage(entry types.ClipboardEntry) error {
	if !in.mu.TryLock() {
		return ErrBusy
	}
	defer in.mu.Unlock()
	return in.stage(entry)
}

func (in *Injector) stage(entry types.ClipboardEntry) error {
	switch entry.Type {
	case types.TypeImage:
		data, err := clipboard.DecodeImage(entry.Content)
		if err != nil {
			return err
		}
		if err := in.clip.WriteImage(data); err != nil {
			return err
		}
		if in.noter != nil {
			in.noter.NoteImage(entry.Content)
		}
	default:
		if err := in.clip.WriteText(entry.Content); err != nil {
			return err
		}
		if in.noter != nil {
			in.noter.NoteText(entry.Content)
		}
	}
	return nil
}

type command struct {
	name string
	args []string
}

// chain returns the ordered injection fallback commands for the entry.
// Images are never typed as keystrokes, so their chain stops after the
// paste-keychord attempts.
func (in *Injector) chain(entry types.ClipboardEntry) []command {
	isText := entry.Type != types.TypeImage

	if in.env.IsWayland() {
		cmds := []command{
			{"wtype", []string{"-M", "ctrl", "v", "-m", "ctrl"}},
			{"ydotool", []string{"key", "29:1", "47:1", "47:0", "29:0"}},
		}
		if isText {
			cmds = append(cmds, command{"wtype", []string{"--", entry.Content}})
		}
		return cmds
	}

	cmds := []command{
		{"xdotool", []string{"key", "--clearmodifiers", "ctrl+v"}},
	}
	if isText {
		cmds = append(cmds,
			command{"sh", []string{"-c", "xdotool type --clearmodifiers -- " + Quote(entry.Content)}},
			// Read the staged clipboard back and stream it as keystrokes;
			// covers targets where direct Unicode typing is unreliable.
			command{"sh", []string{"-c", "xclip -o -selection clipboard | xdotool type --clearmodifiers --file -"}},
		)
	}
	return cmds
}
