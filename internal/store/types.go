package store

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// --- Session Index (sessions/index.json) ---

type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

type SessionIndex struct {
	Sessions map[string]SessionMeta `json:"sessions"`
}

// NewSessionID returns a lexically sortable session identifier, so a plain
// sort of transcript filenames is also a sort by creation time.
func NewSessionID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
