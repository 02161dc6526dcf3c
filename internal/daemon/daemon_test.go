package daemon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/history"
	"github.com/berrythewa/clipdeck/internal/hotkey"
	"github.com/berrythewa/clipdeck/internal/inject"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/session"
	"github.com/berrythewa/clipdeck/internal/storage"
	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/pkg/utils"
)

type fakeClip struct {
	text  string
	image []byte
}

func (c *fakeClip) ReadText() (string, error)    { return c.text, nil }
func (c *fakeClip) WriteText(text string) error  { c.text = text; return nil }
func (c *fakeClip) ReadImage() ([]byte, error)   { return c.image, nil }
func (c *fakeClip) WriteImage(data []byte) error { c.image = data; return nil }

type fakeRunner struct{ ran []string }

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.ran = append(r.ran, name)
	return nil
}

type fakeRegistrar struct{}

func (fakeRegistrar) Register(binding string, onPress func()) (func(), error) {
	return func() {}, nil
}

// newTestDaemon wires a daemon on in-memory state with no external commands,
// so handler tests exercise the real dispatch path.
func newTestDaemon(t *testing.T) (*Daemon, *fakeClip, *fakeRunner) {
	t.Helper()
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")

	store := storage.NewMemory()
	clip := &fakeClip{}
	runner := &fakeRunner{}
	env := session.Detect()

	d := &Daemon{store: store}
	d.engine = history.NewEngine(history.EngineConfig{MaxItems: 5, Store: store})
	d.emojis = history.NewRecentEmojis(store, 0, nil)
	d.env = env
	d.clip = clip
	d.monitor = clipboard.NewMonitor(clipboard.MonitorConfig{Clipboard: clip, Sink: d.engine})
	d.server = ipc.NewServer(filepath.Join(t.TempDir(), "test.sock"), nil, nil)
	d.toggle = hotkey.NewToggle(hotkey.ToggleConfig{Presenter: &ipcPresenter{server: d.server}})
	d.injector = inject.New(inject.Config{
		Env:        env,
		Clipboard:  clip,
		Noter:      d.monitor,
		HidePicker: d.toggle.Hide,
		Runner:     runner,
		Settle:     1,
	})
	d.hotkeys = hotkey.NewManager(hotkey.ManagerConfig{
		Registrar: fakeRegistrar{},
		Settings:  store,
		Default:   "Super+V",
	})
	d.hotkeys.Start()
	d.logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	return d, clip, runner
}

func TestHandlePing(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	resp := d.handle(&ipc.Request{Command: ipc.CmdPing})
	assert.Equal(t, ipc.StatusOK, resp.Status)
	assert.Equal(t, "pong", resp.Data)
}

func TestHandleGetHistoryIsPinnedFirst(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	d.engine.Add(types.TypeText, "old")
	pinned := d.engine.Add(types.TypeText, "keep")
	d.engine.Add(types.TypeText, "new")
	require.True(t, d.engine.TogglePin(pinned.ID))

	resp := d.handle(&ipc.Request{Command: ipc.CmdGetHistory})
	require.Equal(t, ipc.StatusOK, resp.Status)
	entries := resp.Data.([]types.ClipboardEntry)
	require.Len(t, entries, 3)
	assert.Equal(t, "keep", entries[0].Content)
	assert.Equal(t, "new", entries[1].Content)
}

func TestHandleCopyTextAddsAndStages(t *testing.T) {
	d, clip, _ := newTestDaemon(t)

	resp := d.handle(&ipc.Request{
		Command: ipc.CmdCopyText,
		Args:    map[string]interface{}{"text": "hello"},
	})
	require.Equal(t, ipc.StatusOK, resp.Status)
	assert.Equal(t, "hello", clip.text)
	assert.Equal(t, 1, d.engine.Len())
}

func TestHandlePasteRunsChain(t *testing.T) {
	d, clip, runner := newTestDaemon(t)
	entry := d.engine.Add(types.TypeText, "paste me")

	resp := d.handle(&ipc.Request{
		Command: ipc.CmdPasteItem,
		Args:    map[string]interface{}{"id": float64(entry.ID)},
	})
	require.Equal(t, ipc.StatusOK, resp.Status)
	assert.Equal(t, "paste me", clip.text)
	assert.NotEmpty(t, runner.ran)
	assert.Equal(t, map[string]interface{}{"injected": true}, resp.Data)
}

func TestHandlePasteUnknownID(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	resp := d.handle(&ipc.Request{
		Command: ipc.CmdPasteItem,
		Args:    map[string]interface{}{"id": float64(42)},
	})
	assert.Equal(t, ipc.StatusError, resp.Status)
	assert.Equal(t, "no such entry", resp.Message)
}

func TestHandleTogglePinAndDelete(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	entry := d.engine.Add(types.TypeText, "x")

	resp := d.handle(&ipc.Request{
		Command: ipc.CmdTogglePin,
		Args:    map[string]interface{}{"id": float64(entry.ID)},
	})
	assert.Equal(t, ipc.StatusOK, resp.Status)

	resp = d.handle(&ipc.Request{
		Command: ipc.CmdDeleteItem,
		Args:    map[string]interface{}{"id": float64(entry.ID)},
	})
	assert.Equal(t, ipc.StatusOK, resp.Status)
	assert.Equal(t, 0, d.engine.Len())

	resp = d.handle(&ipc.Request{
		Command: ipc.CmdDeleteItem,
		Args:    map[string]interface{}{"id": float64(entry.ID)},
	})
	assert.Equal(t, ipc.StatusError, resp.Status)
}

func TestHandleRecentEmojis(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	resp := d.handle(&ipc.Request{
		Command: ipc.CmdAddRecentEmoji,
		Args:    map[string]interface{}{"glyph": "🎉"},
	})
	require.Equal(t, ipc.StatusOK, resp.Status)

	resp = d.handle(&ipc.Request{Command: ipc.CmdGetRecentEmojis})
	require.Equal(t, ipc.StatusOK, resp.Status)
	assert.Equal(t, []string{"🎉"}, resp.Data)
}

func TestHandleHotkeyRoundTrip(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	resp := d.handle(&ipc.Request{Command: ipc.CmdGetHotkey})
	require.Equal(t, ipc.StatusOK, resp.Status)
	assert.Equal(t, "Super+V", resp.Data)

	resp = d.handle(&ipc.Request{
		Command: ipc.CmdSetHotkey,
		Args:    map[string]interface{}{"binding": "Ctrl+Alt+C"},
	})
	require.Equal(t, ipc.StatusOK, resp.Status)
	assert.Equal(t, "Ctrl+Alt+C", d.hotkeys.Active())
}

func TestHandleSetHotkeyRejectsGarbage(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	resp := d.handle(&ipc.Request{
		Command: ipc.CmdSetHotkey,
		Args:    map[string]interface{}{"binding": "NotAKey+"},
	})
	assert.Equal(t, ipc.StatusError, resp.Status)
	assert.Equal(t, "Super+V", d.hotkeys.Active())
}

func TestHandleUnknownCommand(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	resp := d.handle(&ipc.Request{Command: "frobnicate"})
	assert.Equal(t, ipc.StatusError, resp.Status)
}

func TestAcquireLockRejectsSecondHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipdeck.lock")

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	defer lock.Release()

	_, err = AcquireLock(path)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
