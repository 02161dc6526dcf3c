// Package clipboard reads and writes the OS clipboard and runs the polling
// loop that feeds new captures to the history engine.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/berrythewa/clipdeck/internal/session"
	"github.com/berrythewa/clipdeck/pkg/utils"
)

// ErrUnavailable is returned by adapters for channels the underlying tool
// cannot serve (for example image access without xclip/wl-paste).
var ErrUnavailable = errors.New("clipboard channel unavailable")

// Clipboard is the capability surface the poller and the injector share.
// Text is raw UTF-8; images are raw PNG bytes.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
	ReadImage() ([]byte, error)
	WriteImage(data []byte) error
}

// New picks the best adapter for the detected session: the exec-based
// adapter when its tools are installed (the only one with image support),
// otherwise the portable text-only fallback.
func New(env session.Environment, logger *utils.Logger) Clipboard {
	if env.IsWayland() {
		if session.HasCommand("wl-paste") && session.HasCommand("wl-copy") {
			return newExecClipboard(true)
		}
	} else if session.HasCommand("xclip") {
		return newExecClipboard(false)
	}

	if logger != nil {
		logger.Warn("Clipboard tools not found, falling back to text-only clipboard",
			"session", env.Name())
	}
	return &AtottoClipboard{}
}

const imageURIPrefix = "data:image/png;base64,"

// EncodeImage converts raw PNG bytes to the data-URI string stored in
// history entries.
func EncodeImage(data []byte) string {
	return imageURIPrefix + base64.StdEncoding.EncodeToString(data)
}

// DecodeImage converts a stored data-URI back to raw PNG bytes.
func DecodeImage(content string) ([]byte, error) {
	encoded := strings.TrimPrefix(content, imageURIPrefix)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}
