package clipboard

import (
	"fmt"

	atottoClip "github.com/atotto/clipboard"
)

// AtottoClipboard is the portable fallback built on atotto/clipboard. It
// only supports the text channel; image reads report nothing on the
// clipboard and image writes fail.
type AtottoClipboard struct{}

func (c *AtottoClipboard) ReadText() (string, error) {
	text, err := atottoClip.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

func (c *AtottoClipboard) WriteText(text string) error {
	return atottoClip.WriteAll(text)
}

func (c *AtottoClipboard) ReadImage() ([]byte, error) {
	return nil, nil
}

func (c *AtottoClipboard) WriteImage(data []byte) error {
	return ErrUnavailable
}
