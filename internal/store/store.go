package store

import (
	"context"

	"github.com/curioapp/curio/internal/domain"
)

// Topic identifies which logical collection changed.
type Topic string

const (
	// TopicBookmarks is published after every successful bookmark write.
	TopicBookmarks Topic = "bookmarks-updated"
	// TopicCollections is published after every successful collection write.
	TopicCollections Topic = "collections-updated"
)

// Store is the persistence layer over the three logical collections:
// the bookmark set, the named collections, and the per-session
// latest-results cache.
//
// Reads that find no prior data return an empty slice, never an error.
// Reads that find malformed data treat the collection as empty and log
// the problem; corrupt persisted state must never crash the caller.
// Every successful write publishes a change notification scoped to the
// collection that changed.
//
// No lock is held across a read-modify-write; the engine relies on the
// session manager's single in-flight dispatch to avoid lost updates.
type Store interface {
	GetBookmarks(ctx context.Context) ([]domain.Bookmark, error)
	SaveBookmarks(ctx context.Context, bookmarks []domain.Bookmark) error

	GetCollections(ctx context.Context) ([]domain.Collection, error)
	SaveCollections(ctx context.Context, collections []domain.Collection) error

	GetLatestResults(ctx context.Context, sessionID string) ([]domain.Product, error)
	SetLatestResults(ctx context.Context, sessionID string, products []domain.Product) error

	// ClearSession drops all session-scoped state (the latest-results
	// cache) for the given session.
	ClearSession(ctx context.Context, sessionID string) error

	// Subscribe registers a change listener for the given topics
	// (all topics when none are given).
	Subscribe(topics ...Topic) *Subscription
}
