package history

import (
	"sync"

	"github.com/berrythewa/clipdeck/pkg/utils"
)

// DefaultEmojiLimit bounds the recent-emoji list.
const DefaultEmojiLimit = 20

// EmojiStore is the slice of the persistent store the recent-emoji list
// writes through to.
type EmojiStore interface {
	SaveRecentEmojis(glyphs []string) error
	LoadRecentEmojis() ([]string, error)
}

// RecentEmojis keeps the bounded most-recently-used emoji list. Re-adding a
// glyph promotes it to the front, the same dedup rule the history engine
// applies to entries.
type RecentEmojis struct {
	mu     sync.Mutex
	glyphs []string
	limit  int
	store  EmojiStore
	logger *utils.Logger
}

// NewRecentEmojis builds the list seeded from the store.
func NewRecentEmojis(store EmojiStore, limit int, logger *utils.Logger) *RecentEmojis {
	if limit <= 0 {
		limit = DefaultEmojiLimit
	}
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}

	r := &RecentEmojis{limit: limit, store: store, logger: logger}
	if store != nil {
		glyphs, err := store.LoadRecentEmojis()
		if err != nil {
			logger.Warn("Failed to load recent emojis, starting empty", "error", err)
		} else {
			r.glyphs = glyphs
		}
	}
	return r
}

// Add promotes glyph to the front, dropping any earlier occurrence and
// truncating to the bound. Returns the updated list.
func (r *RecentEmojis) Add(glyph string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.glyphs[:0]
	for _, g := range r.glyphs {
		if g != glyph {
			kept = append(kept, g)
		}
	}
	r.glyphs = append([]string{glyph}, kept...)
	if len(r.glyphs) > r.limit {
		r.glyphs = r.glyphs[:r.limit]
	}

	if r.store != nil {
		if err := r.store.SaveRecentEmojis(r.glyphs); err != nil {
			r.logger.Error("Failed to persist recent emojis", "error", err)
		}
	}
	return append([]string{}, r.glyphs...)
}

// List returns a snapshot of the recent list, newest first.
func (r *RecentEmojis) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.glyphs...)
}
