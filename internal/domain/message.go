package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a session message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Reserved content values instructing the renderer to project live
// store state instead of literal text, so the displayed list always
// reflects the store at render time rather than a stale snapshot.
const (
	ContentShowBookmarks   = "__show_bookmarks__"
	ContentShowCollections = "__show_collections__"
)

// SessionMessage is one turn in the session message log.
//
// Messages are owned by the UI session and cleared at the start of
// every new session; they are not meant to survive a reload.
type SessionMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Products optionally attaches canonical products for display.
	Products []Product `json:"products,omitempty"`
}

// NewSessionMessage builds a message with a generated ID.
func NewSessionMessage(role Role, content string, products []Product, now time.Time) SessionMessage {
	return SessionMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now,
		Products:  products,
	}
}

// IsSentinel reports whether the message content is a live-projection
// sentinel rather than literal text.
func (m *SessionMessage) IsSentinel() bool {
	return m.Content == ContentShowBookmarks || m.Content == ContentShowCollections
}
