package clipboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/pkg/utils"
)

// minImageEncodedLen guards against empty or placeholder images: anything
// shorter than this once base64-encoded is not a plausible capture.
const minImageEncodedLen = 64

// Sink receives new captures; the history engine satisfies it.
type Sink interface {
	Add(kind types.EntryType, content string) types.ClipboardEntry
}

// MonitorConfig holds configuration for Monitor construction.
type MonitorConfig struct {
	Clipboard Clipboard
	Sink      Sink
	Logger    *utils.Logger
	Interval  time.Duration
}

// Monitor samples the OS clipboard's text and image channels at a fixed
// interval and feeds changed content to the sink. The two channels are
// independent: either, both, or neither may produce an entry in a tick.
//
// The injector reports its own clipboard writes through NoteText/NoteImage
// so a staged paste is treated as the new baseline rather than as a foreign
// copy.
type Monitor struct {
	clipboard Clipboard
	sink      Sink
	logger    *utils.Logger
	interval  time.Duration

	mu        sync.Mutex
	lastText  string
	lastImage string // fingerprint of the encoded payload

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor builds a monitor. Interval defaults to 500ms.
func NewMonitor(cfg MonitorConfig) *Monitor {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Monitor{
		clipboard: cfg.Clipboard,
		sink:      cfg.Sink,
		logger:    logger,
		interval:  interval,
	}
}

// Seed sets the change-detection baseline from already-captured history so a
// daemon restart does not re-admit whatever is sitting on the clipboard.
func (m *Monitor) Seed(entries []types.ClipboardEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		switch entry.Type {
		case types.TypeText:
			if m.lastText == "" {
				m.lastText = entry.Content
			}
		case types.TypeImage:
			if m.lastImage == "" {
				m.lastImage = utils.HashContent([]byte(entry.Content))
			}
		}
	}
}

// Start launches the polling loop.
func (m *Monitor) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.logger.Info("Starting clipboard monitor", "interval", m.interval)
	go m.run()
}

// Stop cancels the polling loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *Monitor) run() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick samples both channels once. Read failures are logged and retried on
// the next tick; the loop never dies.
func (m *Monitor) tick() {
	m.sampleText()
	m.sampleImage()
}

func (m *Monitor) sampleText() {
	text, err := m.clipboard.ReadText()
	if err != nil {
		m.logger.Debug("Clipboard text read failed, retrying next tick", "error", err)
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	m.mu.Lock()
	changed := text != m.lastText
	if changed {
		m.lastText = text
	}
	m.mu.Unlock()

	if changed {
		m.sink.Add(types.TypeText, text)
	}
}

func (m *Monitor) sampleImage() {
	data, err := m.clipboard.ReadImage()
	if err != nil {
		m.logger.Debug("Clipboard image read failed, retrying next tick", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	encoded := EncodeImage(data)
	if len(encoded) < minImageEncodedLen {
		return
	}
	fingerprint := utils.HashContent([]byte(encoded))

	m.mu.Lock()
	changed := fingerprint != m.lastImage
	if changed {
		m.lastImage = fingerprint
	}
	m.mu.Unlock()

	if changed {
		m.sink.Add(types.TypeImage, encoded)
	}
}

// NoteText records a text payload this process just wrote to the clipboard,
// so the next tick sees it as already-seen.
func (m *Monitor) NoteText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastText = text
}

// NoteImage records an encoded image payload this process just wrote to the
// clipboard.
func (m *Monitor) NoteImage(encoded string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastImage = utils.HashContent([]byte(encoded))
}
