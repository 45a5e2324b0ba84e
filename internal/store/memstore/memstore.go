package memstore

import (
	"context"
	"sync"

	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/store"
)

// Memstore is an in-memory Store implementation. It backs tests and
// serves as a zero-dependency fallback when no redis is configured;
// state does not survive a process restart.
type Memstore struct {
	*store.Notifier

	mu          sync.RWMutex
	bookmarks   []domain.Bookmark
	collections []domain.Collection
	results     map[string][]domain.Product // sessionID -> latest results
}

var _ store.Store = (*Memstore)(nil)

// New creates an empty in-memory store.
func New() *Memstore {
	return &Memstore{
		Notifier: store.NewNotifier(),
		results:  make(map[string][]domain.Product),
	}
}

// GetBookmarks returns a copy of the bookmark set.
func (m *Memstore) GetBookmarks(_ context.Context) ([]domain.Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Bookmark, len(m.bookmarks))
	copy(out, m.bookmarks)
	return out, nil
}

// SaveBookmarks replaces the bookmark set.
func (m *Memstore) SaveBookmarks(_ context.Context, bookmarks []domain.Bookmark) error {
	m.mu.Lock()
	m.bookmarks = make([]domain.Bookmark, len(bookmarks))
	copy(m.bookmarks, bookmarks)
	m.mu.Unlock()

	m.Publish(store.TopicBookmarks)
	return nil
}

// GetCollections returns a copy of the collection list.
func (m *Memstore) GetCollections(_ context.Context) ([]domain.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Collection, len(m.collections))
	copy(out, m.collections)
	return out, nil
}

// SaveCollections replaces the collection list.
func (m *Memstore) SaveCollections(_ context.Context, collections []domain.Collection) error {
	m.mu.Lock()
	m.collections = make([]domain.Collection, len(collections))
	copy(m.collections, collections)
	m.mu.Unlock()

	m.Publish(store.TopicCollections)
	return nil
}

// GetLatestResults returns the latest-results cache for a session.
func (m *Memstore) GetLatestResults(_ context.Context, sessionID string) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := m.results[sessionID]
	out := make([]domain.Product, len(results))
	copy(out, results)
	return out, nil
}

// SetLatestResults fully replaces the latest-results cache for a session.
func (m *Memstore) SetLatestResults(_ context.Context, sessionID string, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]domain.Product, len(products))
	copy(stored, products)
	m.results[sessionID] = stored
	return nil
}

// ClearSession drops session-scoped state.
func (m *Memstore) ClearSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.results, sessionID)
	return nil
}
