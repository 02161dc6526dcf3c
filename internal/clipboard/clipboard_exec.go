package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecClipboard drives the session's command-line clipboard tools: xclip on
// X11, wl-paste/wl-copy on Wayland. It is the only adapter with an image
// channel.
type ExecClipboard struct {
	wayland bool
}

func newExecClipboard(wayland bool) *ExecClipboard {
	return &ExecClipboard{wayland: wayland}
}

func (c *ExecClipboard) ReadText() (string, error) {
	var cmd *exec.Cmd
	if c.wayland {
		cmd = exec.Command("wl-paste", "--no-newline")
	} else {
		cmd = exec.Command("xclip", "-selection", "clipboard", "-o")
	}
	output, err := cmd.Output()
	if err != nil {
		if isEmptyClipboardExit(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read clipboard text: %w", err)
	}
	return string(output), nil
}

// isEmptyClipboardExit reports whether err is the exit both tools use for an
// empty clipboard. Exactly status 1: crashes and signal deaths carry other
// codes and must surface as read errors.
func isEmptyClipboardExit(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == 1
}

func (c *ExecClipboard) WriteText(text string) error {
	var cmd *exec.Cmd
	if c.wayland {
		cmd = exec.Command("wl-copy")
	} else {
		cmd = exec.Command("xclip", "-selection", "clipboard", "-i")
	}
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to write clipboard text: %w", err)
	}
	return nil
}

func (c *ExecClipboard) ReadImage() ([]byte, error) {
	var cmd *exec.Cmd
	if c.wayland {
		cmd = exec.Command("wl-paste", "--type", "image/png")
	} else {
		cmd = exec.Command("xclip", "-selection", "clipboard", "-t", "image/png", "-o")
	}
	output, err := cmd.Output()
	if err != nil {
		// Non-zero exit means the clipboard holds no image target.
		return nil, nil
	}
	return output, nil
}

func (c *ExecClipboard) WriteImage(data []byte) error {
	var cmd *exec.Cmd
	if c.wayland {
		cmd = exec.Command("wl-copy", "--type", "image/png")
	} else {
		cmd = exec.Command("xclip", "-selection", "clipboard", "-t", "image/png", "-i")
	}
	cmd.Stdin = bytes.NewReader(data)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to write clipboard image: %w", err)
	}
	return nil
}
