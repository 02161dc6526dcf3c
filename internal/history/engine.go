// Package history owns the ordered clipboard-entry list: admission,
// deduplication, bounding, pin/unpin, delete, search and clear. It is the
// authoritative state machine for entries; every mutation writes through to
// the store before observers are notified.
package history

import (
	"strings"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/pkg/utils"
)

// Store is the slice of the persistent store the engine writes through to.
type Store interface {
	SaveHistory(entries []types.ClipboardEntry) error
	LoadHistory() ([]types.ClipboardEntry, error)
}

// EngineConfig holds configuration for Engine construction.
type EngineConfig struct {
	MaxItems int
	Store    Store
	Logger   *utils.Logger
}

// Engine guards the in-memory entry list. Entries are kept newest-first;
// every operation runs as one atomic step under the mutex.
type Engine struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	entries  []types.ClipboardEntry
	maxItems int
	lastID   int64

	store    Store
	logger   *utils.Logger
	onChange func([]types.ClipboardEntry)

	now func() time.Time
}

// NewEngine builds an engine seeded from the persistent store. A store read
// failure degrades to an empty list rather than failing construction.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 50
	}

	e := &Engine{
		maxItems: maxItems,
		store:    cfg.Store,
		logger:   logger,
		now:      time.Now,
	}

	if cfg.Store != nil {
		entries, err := cfg.Store.LoadHistory()
		if err != nil {
			logger.Warn("Failed to load history from store, starting empty", "error", err)
		} else {
			e.entries = entries
		}
	}
	for _, entry := range e.entries {
		if entry.ID > e.lastID {
			e.lastID = entry.ID
		}
	}

	return e
}

// SetOnChange registers the history-changed observer. The callback receives
// a fully-persisted snapshot and runs outside the engine lock.
func (e *Engine) SetOnChange(fn func([]types.ClipboardEntry)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// nextIDLocked allocates a monotonically increasing identifier. Time-based
// when the clock is ahead, otherwise lastID+1 so rapid captures within the
// same millisecond cannot collide.
func (e *Engine) nextIDLocked() int64 {
	id := e.now().UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return id
}

// Add admits a new capture. Any prior entry with identical content is
// removed first, the new entry is prepended, and the oldest unpinned entries
// are evicted from the tail until the list fits maxItems. Pinned entries are
// never evicted; a list that is entirely pinned may exceed the bound.
func (e *Engine) Add(kind types.EntryType, content string) types.ClipboardEntry {
	e.mu.Lock()

	entry := types.ClipboardEntry{
		ID:      e.nextIDLocked(),
		Type:    kind,
		Content: content,
		Created: e.now(),
	}

	kept := e.entries[:0]
	for _, existing := range e.entries {
		if existing.Content != content {
			kept = append(kept, existing)
		}
	}
	e.entries = append([]types.ClipboardEntry{entry}, kept...)
	e.evictLocked()

	e.logger.Debug("History entry added", "id", entry.ID, "type", entry.Type, "total", len(e.entries))
	e.persistAndNotify()
	return entry
}

// evictLocked drops the oldest unpinned entries until the list fits the
// configured bound, skipping over pinned entries.
func (e *Engine) evictLocked() {
	for len(e.entries) > e.maxItems {
		victim := -1
		for i := len(e.entries) - 1; i >= 0; i-- {
			if !e.entries[i].Pinned {
				victim = i
				break
			}
		}
		if victim < 0 {
			return
		}
		e.entries = append(e.entries[:victim], e.entries[victim+1:]...)
	}
}

// TogglePin flips the pinned flag on the entry with the given id. Returns
// false when no such entry exists.
func (e *Engine) TogglePin(id int64) bool {
	e.mu.Lock()
	for i := range e.entries {
		if e.entries[i].ID == id {
			e.entries[i].Pinned = !e.entries[i].Pinned
			e.persistAndNotify()
			return true
		}
	}
	e.mu.Unlock()
	return false
}

// Delete removes the entry with the given id. Returns false when absent.
func (e *Engine) Delete(id int64) bool {
	e.mu.Lock()
	for i := range e.entries {
		if e.entries[i].ID == id {
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			e.persistAndNotify()
			return true
		}
	}
	e.mu.Unlock()
	return false
}

// Clear empties the list unconditionally, pinned entries included.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.entries = nil
	e.persistAndNotify()
}

// Search returns the entries whose content contains query, matched
// case-insensitively, in stored order. An empty query returns the full list.
func (e *Engine) Search(query string) []types.ClipboardEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	if query == "" {
		return append([]types.ClipboardEntry{}, e.entries...)
	}

	needle := strings.ToLower(query)
	matches := []types.ClipboardEntry{}
	for _, entry := range e.entries {
		if strings.Contains(strings.ToLower(entry.Content), needle) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// All returns a snapshot of the list in stored (recency) order.
func (e *Engine) All() []types.ClipboardEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.ClipboardEntry{}, e.entries...)
}

// Sorted returns the presentation order: all pinned entries first, then all
// unpinned, relative order preserved within each group.
func (e *Engine) Sorted() []types.ClipboardEntry {
	return PinnedFirst(e.All())
}

// PinnedFirst arranges a snapshot into presentation order. Exposed so
// change observers can sort the snapshot they were handed without calling
// back into the engine.
func PinnedFirst(entries []types.ClipboardEntry) []types.ClipboardEntry {
	sorted := make([]types.ClipboardEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Pinned {
			sorted = append(sorted, entry)
		}
	}
	for _, entry := range entries {
		if !entry.Pinned {
			sorted = append(sorted, entry)
		}
	}
	return sorted
}

// Len returns the current entry count.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// persistAndNotify writes through to the store, then fires the change
// observer with a snapshot. Called with the lock held; releases it. The
// store write always happens before the notification so observers only ever
// see persisted state. Persistence failures are logged and tolerated.
//
// notifyMu is taken before the state lock is released, so observers receive
// snapshots in the order mutations completed even when a poll tick and an
// IPC operation race. Observers must not call back into the engine; they
// work from the snapshot they are handed.
func (e *Engine) persistAndNotify() {
	snapshot := append([]types.ClipboardEntry{}, e.entries...)
	onChange := e.onChange
	if e.store != nil {
		if err := e.store.SaveHistory(snapshot); err != nil {
			e.logger.Error("Failed to persist history", "error", err)
		}
	}
	e.notifyMu.Lock()
	e.mu.Unlock()

	if onChange != nil {
		onChange(snapshot)
	}
	e.notifyMu.Unlock()
}
