package types

import "time"

// EntryType identifies the kind of payload a history entry carries.
type EntryType string

const (
	TypeText  EntryType = "text"
	TypeImage EntryType = "image"
)

// ClipboardEntry is one captured clipboard snapshot.
//
// Content holds raw UTF-8 for text entries and a base64 data URI
// ("data:image/png;base64,...") for image entries.
type ClipboardEntry struct {
	ID      int64     `json:"id"`
	Type    EntryType `json:"type"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
	Pinned  bool      `json:"pinned"`
}

// Equal reports whether two entries carry the same payload. Metadata
// (ID, Created, Pinned) is ignored; the history engine dedups on payload.
func (e *ClipboardEntry) Equal(other *ClipboardEntry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Type == other.Type && e.Content == other.Content
}
