package clipboard

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/berrythewa/clipdeck/internal/types"
)

// fakeClipboard is a scriptable Clipboard.
type fakeClipboard struct {
	mu      sync.Mutex
	text    string
	textErr error
	image   []byte
	imgErr  error
	written string
}

func (f *fakeClipboard) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.textErr
}

func (f *fakeClipboard) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = text
	f.text = text
	return nil
}

func (f *fakeClipboard) ReadImage() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.image, f.imgErr
}

func (f *fakeClipboard) WriteImage(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = data
	return nil
}

func (f *fakeClipboard) set(text string, textErr error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	f.textErr = textErr
}

func (f *fakeClipboard) setImage(data []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = data
	f.imgErr = err
}

// recordSink records every admitted capture.
type recordSink struct {
	mu      sync.Mutex
	entries []types.ClipboardEntry
}

func (r *recordSink) Add(kind types.EntryType, content string) types.ClipboardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := types.ClipboardEntry{ID: int64(len(r.entries) + 1), Type: kind, Content: content}
	r.entries = append(r.entries, entry)
	return entry
}

func (r *recordSink) all() []types.ClipboardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.ClipboardEntry{}, r.entries...)
}

func newTestMonitor(clip Clipboard, sink Sink) *Monitor {
	return NewMonitor(MonitorConfig{Clipboard: clip, Sink: sink, Interval: time.Millisecond * 10})
}

func TestMonitorCapturesNewText(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	clip.set("hello", nil)
	m.tick()
	m.tick() // unchanged content must not re-admit

	want := []types.ClipboardEntry{{ID: 1, Type: types.TypeText, Content: "hello"}}
	if diff := cmp.Diff(want, sink.all()); diff != "" {
		t.Errorf("captured entries mismatch (-want +got):\n%s", diff)
	}
}

func TestMonitorSkipsWhitespaceOnlyText(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	clip.set("   \n\t ", nil)
	m.tick()

	if len(sink.all()) != 0 {
		t.Errorf("expected no entries, got %v", sink.all())
	}
}

func TestMonitorToleratesReadErrors(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	clip.set("", errors.New("clipboard busy"))
	m.tick()

	clip.set("recovered", nil)
	m.tick()

	got := sink.all()
	if len(got) != 1 || got[0].Content != "recovered" {
		t.Errorf("expected recovery capture, got %v", got)
	}
}

func TestMonitorCapturesImageOncePerChange(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	png := append([]byte{0x89, 'P', 'N', 'G'}, bytes.Repeat([]byte{0xAB}, 256)...)
	clip.setImage(png, nil)
	m.tick()
	m.tick()

	got := sink.all()
	if len(got) != 1 {
		t.Fatalf("expected 1 image entry, got %d", len(got))
	}
	if got[0].Type != types.TypeImage || got[0].Content != EncodeImage(png) {
		t.Errorf("unexpected image entry: %+v", got[0])
	}
}

func TestMonitorRejectsImplausiblySmallImages(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	clip.setImage([]byte{0x89, 'P'}, nil)
	m.tick()

	if len(sink.all()) != 0 {
		t.Errorf("expected tiny image to be rejected, got %v", sink.all())
	}
}

func TestMonitorBothChannelsSameTick(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	png := bytes.Repeat([]byte{0xCD}, 128)
	clip.set("text too", nil)
	clip.setImage(png, nil)
	m.tick()

	got := sink.all()
	if len(got) != 2 {
		t.Fatalf("expected text and image capture in one tick, got %v", got)
	}
}

// A staged paste writes to the OS clipboard; the monitor must treat that
// write as its new baseline, not as a foreign copy.
func TestMonitorSelfWriteSuppression(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	// User copies "hello" externally.
	clip.set("hello", nil)
	m.tick()

	// Injector re-stages the most recent entry, the common paste case.
	_ = clip.WriteText("hello")
	m.NoteText("hello")
	m.tick()

	// Injector stages an older entry whose content differs from the baseline.
	_ = clip.WriteText("older entry")
	m.NoteText("older entry")
	m.tick()

	want := []types.ClipboardEntry{{ID: 1, Type: types.TypeText, Content: "hello"}}
	if diff := cmp.Diff(want, sink.all()); diff != "" {
		t.Errorf("self-writes must not grow history (-want +got):\n%s", diff)
	}
}

func TestMonitorImageSelfWriteSuppression(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	png := bytes.Repeat([]byte{0xEF}, 200)
	encoded := EncodeImage(png)

	_ = clip.WriteImage(png)
	m.NoteImage(encoded)
	m.tick()

	if len(sink.all()) != 0 {
		t.Errorf("staged image must not be re-captured, got %v", sink.all())
	}
}

func TestMonitorSeedsBaselineFromHistory(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	m.Seed([]types.ClipboardEntry{
		{Type: types.TypeText, Content: "already captured"},
	})
	clip.set("already captured", nil)
	m.tick()

	if len(sink.all()) != 0 {
		t.Errorf("seeded content must not be re-admitted, got %v", sink.all())
	}
}

func TestMonitorStartStop(t *testing.T) {
	clip := &fakeClipboard{}
	sink := &recordSink{}
	m := newTestMonitor(clip, sink)

	clip.set("looped", nil)
	m.Start(context.Background())
	time.Sleep(time.Millisecond * 50)
	m.Stop()

	got := sink.all()
	if len(got) != 1 || got[0].Content != "looped" {
		t.Errorf("expected one capture from the loop, got %v", got)
	}
}
