package storage

import (
	"sync"

	"github.com/berrythewa/clipdeck/internal/types"
)

// Memory is an in-memory Store. The daemon falls back to it when the bolt
// file cannot be opened, so a broken data directory never prevents startup;
// writes are then best-effort and lost on exit. Tests construct it directly.
type Memory struct {
	mu       sync.Mutex
	history  []types.ClipboardEntry
	emojis   []string
	settings map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{settings: make(map[string]string)}
}

func (m *Memory) SaveHistory(entries []types.ClipboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]types.ClipboardEntry(nil), entries...)
	return nil
}

func (m *Memory) LoadHistory() ([]types.ClipboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.ClipboardEntry{}, m.history...), nil
}

func (m *Memory) SaveRecentEmojis(glyphs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emojis = append([]string(nil), glyphs...)
	return nil
}

func (m *Memory) LoadRecentEmojis() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.emojis...), nil
}

func (m *Memory) SetSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *Memory) GetSetting(key, fallback string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.settings[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (m *Memory) Close() error { return nil }
