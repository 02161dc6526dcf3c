package inject

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/session"
	"github.com/berrythewa/clipdeck/internal/types"
)

type call struct {
	name string
	args []string
}

// fakeRunner scripts per-command outcomes and records the attempt order.
type fakeRunner struct {
	mu    sync.Mutex
	fail  int // commands that fail before one succeeds; -1 fails everything
	calls []call
	block chan struct{} // when set, Run blocks until closed
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	n := len(f.calls)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.fail < 0 || n <= f.fail {
		return errors.New("exit status 1")
	}
	return nil
}

func (f *fakeRunner) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.name
	}
	return out
}

type fakeClip struct {
	mu    sync.Mutex
	text  string
	image []byte
}

func (f *fakeClip) ReadText() (string, error)  { return f.text, nil }
func (f *fakeClip) ReadImage() ([]byte, error) { return f.image, nil }
func (f *fakeClip) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	return nil
}
func (f *fakeClip) WriteImage(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = data
	return nil
}

type fakeNoter struct {
	texts  []string
	images []string
}

func (f *fakeNoter) NoteText(text string)     { f.texts = append(f.texts, text) }
func (f *fakeNoter) NoteImage(encoded string) { f.images = append(f.images, encoded) }

type fakeActivator struct {
	target    uint32
	activated []uint32
}

func (f *fakeActivator) Target() uint32 { return f.target }
func (f *fakeActivator) Activate(ctx context.Context, id uint32) error {
	f.activated = append(f.activated, id)
	return nil
}

func x11Env(t *testing.T) session.Environment {
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("XDG_SESSION_TYPE", "x11")
	return session.Detect()
}

func waylandEnv(t *testing.T) session.Environment {
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	return session.Detect()
}

func textEntry(content string) types.ClipboardEntry {
	return types.ClipboardEntry{ID: 1, Type: types.TypeText, Content: content}
}

func TestPasteX11FirstCommandWins(t *testing.T) {
	runner := &fakeRunner{}
	clip := &fakeClip{}
	noter := &fakeNoter{}
	act := &fakeActivator{target: 42}
	hidden := false

	in := New(Config{
		Env:       x11Env(t),
		Clipboard: clip,
		Noter:     noter,
		Activator: act,
		HidePicker: func(ctx context.Context) error {
			hidden = true
			return nil
		},
		Settle: time.Millisecond,
		Runner: runner,
	})

	ok, err := in.Paste(context.Background(), textEntry("hello"))
	require.NoError(t, err)
	assert.True(t, ok)

	// Staged before anything else, picker hidden, window reactivated.
	assert.Equal(t, "hello", clip.text)
	assert.Equal(t, []string{"hello"}, noter.texts)
	assert.True(t, hidden)
	assert.Equal(t, []uint32{42}, act.activated)

	// First chain command succeeded; nothing else was tried.
	assert.Equal(t, []string{"xdotool"}, runner.names())
}

func TestPasteX11FallsThroughChainInOrder(t *testing.T) {
	runner := &fakeRunner{fail: 2}
	in := New(Config{
		Env:       x11Env(t),
		Clipboard: &fakeClip{},
		Settle:    time.Millisecond,
		Runner:    runner,
	})

	ok, err := in.Paste(context.Background(), textEntry("it's text"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.Equal(t, []string{"xdotool", "sh", "sh"}, runner.names())
	// The typed-text fallback interpolates the payload as a quoted literal.
	assert.Contains(t, runner.calls[1].args[1], Quote("it's text"))
	// The final fallback streams the clipboard back as keystrokes.
	assert.Contains(t, runner.calls[2].args[1], "xclip -o")
}

func TestPasteExhaustedChainStillResolves(t *testing.T) {
	runner := &fakeRunner{fail: -1}
	clip := &fakeClip{}
	in := New(Config{
		Env:       x11Env(t),
		Clipboard: clip,
		Settle:    time.Millisecond,
		Runner:    runner,
	})

	ok, err := in.Paste(context.Background(), textEntry("degraded"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Content stays staged so the user can paste manually.
	assert.Equal(t, "degraded", clip.text)
	assert.Len(t, runner.names(), 3)
}

func TestPasteWaylandTextChain(t *testing.T) {
	runner := &fakeRunner{fail: -1}
	in := New(Config{
		Env:       waylandEnv(t),
		Clipboard: &fakeClip{},
		Settle:    time.Millisecond,
		Runner:    runner,
	})

	_, err := in.Paste(context.Background(), textEntry("wayland text"))
	require.NoError(t, err)

	require.Equal(t, []string{"wtype", "ydotool", "wtype"}, runner.names())
	assert.Equal(t, []string{"--", "wayland text"}, runner.calls[2].args)
}

func TestPasteImageSkipsTextTyping(t *testing.T) {
	runner := &fakeRunner{fail: -1}
	clip := &fakeClip{}
	noter := &fakeNoter{}
	png := strings.Repeat("\x89PNG", 32)
	entry := types.ClipboardEntry{ID: 2, Type: types.TypeImage, Content: clipboard.EncodeImage([]byte(png))}

	in := New(Config{
		Env:       waylandEnv(t),
		Clipboard: clip,
		Noter:     noter,
		Settle:    time.Millisecond,
		Runner:    runner,
	})

	ok, err := in.Paste(context.Background(), entry)
	require.NoError(t, err)
	assert.False(t, ok)

	// Only the paste-keychord attempts ran; no keystroke typing of payload.
	assert.Equal(t, []string{"wtype", "ydotool"}, runner.names())
	assert.Equal(t, []byte(png), clip.image)
	assert.Equal(t, []string{entry.Content}, noter.images)
}

func TestPasteRejectsConcurrentRequests(t *testing.T) {
	block := make(chan struct{})
	runner := &fakeRunner{block: block}
	in := New(Config{
		Env:       x11Env(t),
		Clipboard: &fakeClip{},
		Settle:    time.Millisecond,
		Runner:    runner,
	})

	go func() {
		_, _ = in.Paste(context.Background(), textEntry("first"))
	}()

	// Wait until the first paste holds the in-flight slot inside the chain.
	require.Eventually(t, func() bool {
		return len(runner.names()) >= 1
	}, time.Second, 5*time.Millisecond)

	_, err := in.Paste(context.Background(), textEntry("second"))
	assert.ErrorIs(t, err, ErrBusy)

	close(block)
}

func TestStageWritesWithoutInjecting(t *testing.T) {
	runner := &fakeRunner{}
	clip := &fakeClip{}
	noter := &fakeNoter{}
	in := New(Config{
		Env:       x11Env(t),
		Clipboard: clip,
		Noter:     noter,
		Runner:    runner,
	})

	require.NoError(t, in.Stage(textEntry("copy only")))
	assert.Equal(t, "copy only", clip.text)
	assert.Equal(t, []string{"copy only"}, noter.texts)
	assert.Empty(t, runner.names())
}
