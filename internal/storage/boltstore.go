package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/berrythewa/clipdeck/internal/types"
)

const (
	historyBucket  = "history"
	settingsBucket = "settings"
	emojiBucket    = "emojis"

	historyKey = "entries"
	emojiKey   = "recent"
)

// Store is the durable key/value state the daemon writes through on every
// mutation. Implementations must tolerate frequent writes.
type Store interface {
	SaveHistory(entries []types.ClipboardEntry) error
	LoadHistory() ([]types.ClipboardEntry, error)
	SaveRecentEmojis(glyphs []string) error
	LoadRecentEmojis() ([]string, error)
	SetSetting(key, value string) error
	GetSetting(key, fallback string) (string, error)
	Close() error
}

// BoltStore implements Store on a bbolt database file.
type BoltStore struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// StoreConfig holds configuration for BoltStore initialization.
type StoreConfig struct {
	DBPath string
	Logger *zap.Logger
}

// NewBoltStore opens (or creates) the database and its buckets.
func NewBoltStore(cfg StoreConfig) (*BoltStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bbolt.Open(cfg.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{historyBucket, settingsBucket, emojiBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("BoltStore initialized", zap.String("db_path", cfg.DBPath))
	return &BoltStore{db: db, logger: logger}, nil
}

// SaveHistory persists the full entry list as a single record. The list is
// small (bounded by max_items) so a whole-list write keeps every mutation
// atomic.
func (s *BoltStore) SaveHistory(entries []types.ClipboardEntry) error {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).Put([]byte(historyKey), encoded)
	})
}

// LoadHistory returns the persisted entry list, or an empty list on first
// run.
func (s *BoltStore) LoadHistory() ([]types.ClipboardEntry, error) {
	var entries []types.ClipboardEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(historyBucket)).Get([]byte(historyKey))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &entries); err != nil {
			return fmt.Errorf("failed to unmarshal history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.ClipboardEntry{}
	}
	return entries, nil
}

// SaveRecentEmojis persists the recent-emoji list.
func (s *BoltStore) SaveRecentEmojis(glyphs []string) error {
	encoded, err := json.Marshal(glyphs)
	if err != nil {
		return fmt.Errorf("failed to marshal emoji list: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(emojiBucket)).Put([]byte(emojiKey), encoded)
	})
}

// LoadRecentEmojis returns the persisted recent-emoji list.
func (s *BoltStore) LoadRecentEmojis() ([]string, error) {
	var glyphs []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(emojiBucket)).Get([]byte(emojiKey))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &glyphs); err != nil {
			return fmt.Errorf("failed to unmarshal emoji list: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if glyphs == nil {
		glyphs = []string{}
	}
	return glyphs, nil
}

// SetSetting stores a single settings value.
func (s *BoltStore) SetSetting(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(key), []byte(value))
	})
}

// GetSetting returns the stored value for key, or fallback when unset.
func (s *BoltStore) GetSetting(key, fallback string) (string, error) {
	value := fallback
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(settingsBucket)).Get([]byte(key)); v != nil {
			value = string(v)
		}
		return nil
	})
	return value, err
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
