// Package daemon assembles the clipboard engine, the OS integrations and the
// IPC boundary into the long-running background process.
package daemon

import (
	"context"
	"strconv"

	"github.com/berrythewa/clipdeck/internal/clipboard"
	"github.com/berrythewa/clipdeck/internal/config"
	"github.com/berrythewa/clipdeck/internal/history"
	"github.com/berrythewa/clipdeck/internal/hotkey"
	"github.com/berrythewa/clipdeck/internal/inject"
	"github.com/berrythewa/clipdeck/internal/ipc"
	"github.com/berrythewa/clipdeck/internal/session"
	"github.com/berrythewa/clipdeck/internal/storage"
	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/internal/xwin"
	"github.com/berrythewa/clipdeck/pkg/utils"
)

// Daemon is the composed background process.
type Daemon struct {
	cfg    *config.Config
	logger *utils.Logger

	store    storage.Store
	engine   *history.Engine
	emojis   *history.RecentEmojis
	env      session.Environment
	clip     clipboard.Clipboard
	monitor  *clipboard.Monitor
	tracker  *xwin.Tracker
	toggle   *hotkey.Toggle
	hotkeys  *hotkey.Manager
	injector *inject.Injector
	server   *ipc.Server
}

// ipcPresenter forwards show/hide to the presentation layer as pushed IPC
// events; the daemon itself draws nothing.
type ipcPresenter struct {
	server *ipc.Server
}

func (p *ipcPresenter) ShowNearCursor(ctx context.Context) error {
	p.server.Broadcast(ipc.Event{Event: ipc.EventShowWindow})
	return nil
}

func (p *ipcPresenter) Hide(ctx context.Context) error {
	p.server.Broadcast(ipc.Event{Event: ipc.EventHideWindow})
	return nil
}

// New wires up a daemon from configuration. Every optional integration
// degrades rather than failing construction: a broken database falls back to
// in-memory state, a missing X connection just disables focus tracking.
func New(cfg *config.Config, logger *utils.Logger) *Daemon {
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: cfg.LogLevel})
	}

	d := &Daemon{cfg: cfg, logger: logger}

	store, err := storage.NewBoltStore(storage.StoreConfig{
		DBPath: cfg.SystemPaths.DBFile,
		Logger: logger.Zap(),
	})
	if err != nil {
		logger.Error("Failed to open database, history will not survive restarts",
			"path", cfg.SystemPaths.DBFile, "error", err)
		d.store = storage.NewMemory()
	} else {
		d.store = store
	}

	// The store may carry a max_items the presentation layer set at runtime;
	// it wins over the config file.
	maxItems := cfg.MaxItems
	if v, err := d.store.GetSetting("max_items", ""); err == nil && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxItems = n
		}
	}

	d.engine = history.NewEngine(history.EngineConfig{
		MaxItems: maxItems,
		Store:    d.store,
		Logger:   logger,
	})
	d.emojis = history.NewRecentEmojis(d.store, history.DefaultEmojiLimit, logger)

	d.env = session.Detect()
	logger.Info("Detected session", "type", d.env.Name())

	d.clip = clipboard.New(d.env, logger)
	d.monitor = clipboard.NewMonitor(clipboard.MonitorConfig{
		Clipboard: d.clip,
		Sink:      d.engine,
		Logger:    logger,
		Interval:  cfg.PollEvery(),
	})

	if !d.env.IsWayland() {
		tracker, err := xwin.NewTracker(logger)
		if err != nil {
			logger.Warn("X connection unavailable, focus tracking disabled", "error", err)
		} else {
			d.tracker = tracker
		}
	}

	d.server = ipc.NewServer(cfg.SystemPaths.SocketFile, d.handle, logger)

	var prepare func()
	if d.tracker != nil {
		prepare = d.tracker.Remember
	}
	d.toggle = hotkey.NewToggle(hotkey.ToggleConfig{
		Presenter: &ipcPresenter{server: d.server},
		Prepare:   prepare,
		Logger:    logger,
	})

	injectCfg := inject.Config{
		Env:        d.env,
		Clipboard:  d.clip,
		Noter:      d.monitor,
		HidePicker: d.toggle.Hide,
		Logger:     logger,
	}
	// A nil *Tracker must not become a non-nil Activator interface.
	if d.tracker != nil {
		injectCfg.Activator = d.tracker
	}
	d.injector = inject.New(injectCfg)

	d.hotkeys = hotkey.NewManager(hotkey.ManagerConfig{
		Registrar: hotkey.NewSystemRegistrar(),
		Settings:  d.store,
		Default:   cfg.Hotkey,
		Fallbacks: cfg.HotkeyFallbacks,
		OnPress:   func() { d.toggle.Toggle(context.Background()) },
		Logger:    logger,
	})

	return d
}

// Run takes the single-instance lock and serves until the context is
// cancelled. ErrAlreadyRunning means another daemon owns the machine; the
// caller should signal it instead.
func (d *Daemon) Run(ctx context.Context) error {
	lock, err := AcquireLock(d.cfg.SystemPaths.LockFile)
	if err != nil {
		return err
	}
	defer lock.Release()

	// Subscribers render pinned-first, so the pushed snapshot is already in
	// presentation order. The delivered snapshot is sorted directly; the
	// engine must not be re-entered from its change callback.
	d.engine.SetOnChange(func(entries []types.ClipboardEntry) {
		d.server.Broadcast(ipc.Event{
			Event:   ipc.EventHistoryChanged,
			History: history.PinnedFirst(entries),
		})
	})

	d.monitor.Seed(d.engine.All())

	if d.tracker != nil {
		d.tracker.Start(ctx)
	}
	d.monitor.Start(ctx)
	d.hotkeys.Start()

	d.logger.Info("Daemon running",
		"socket", d.cfg.SystemPaths.SocketFile,
		"db", d.cfg.SystemPaths.DBFile,
		"hotkey", d.hotkeys.Active())

	err = d.server.Serve(ctx)

	d.hotkeys.Stop()
	d.monitor.Stop()
	if d.tracker != nil {
		d.tracker.Stop()
	}
	if closeErr := d.store.Close(); closeErr != nil {
		d.logger.Warn("Failed to close store", "error", closeErr)
	}
	d.logger.Sync()
	return err
}
