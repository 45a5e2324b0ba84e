package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/store"
)

const (
	// SchemaVersion is written into every persisted document envelope.
	// Readers accept documents without a version tag as version 1.
	SchemaVersion = 1

	// DefaultResultsTTL bounds the lifetime of session-scoped
	// latest-results caches so abandoned sessions expire on their own.
	DefaultResultsTTL = 24 * time.Hour
)

// Redisstore persists the three logical collections as independent JSON
// documents under fixed keys. Each write is one atomic document
// replacement; no partial state is ever visible.
type Redisstore struct {
	*store.Notifier

	client     *redis.Client
	logger     logger.Logger
	resultsTTL time.Duration
}

var _ store.Store = (*Redisstore)(nil)

// New creates a redis-backed store.
func New(client *redis.Client, log logger.Logger) *Redisstore {
	return &Redisstore{
		Notifier:   store.NewNotifier(),
		client:     client,
		logger:     log,
		resultsTTL: DefaultResultsTTL,
	}
}

// bookmarksDoc is the persisted envelope for the bookmark set.
type bookmarksDoc struct {
	SchemaVersion int               `json:"schemaVersion"`
	Items         []domain.Bookmark `json:"items"`
}

// collectionsDoc is the persisted envelope for the collection list.
type collectionsDoc struct {
	SchemaVersion int                 `json:"schemaVersion"`
	Items         []domain.Collection `json:"items"`
}

// resultsDoc is the persisted envelope for a session's latest results.
type resultsDoc struct {
	SchemaVersion int              `json:"schemaVersion"`
	Items         []domain.Product `json:"items"`
}

// GetBookmarks loads the bookmark document. A missing or unreadable
// document yields an empty set, never an error for the caller to handle.
func (s *Redisstore) GetBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	data, ok, err := s.read(ctx, KeyBookmarks)
	if err != nil || !ok {
		return []domain.Bookmark{}, err
	}
	return s.decodeBookmarks(data), nil
}

// decodeBookmarks parses a bookmark envelope, failing open: a corrupt
// document is logged with a clipped payload and treated as empty rather
// than crashing the session.
func (s *Redisstore) decodeBookmarks(data []byte) []domain.Bookmark {
	var doc bookmarksDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		s.warnMalformed(KeyBookmarks, data, err)
		return []domain.Bookmark{}
	}
	if doc.Items == nil {
		return []domain.Bookmark{}
	}
	return doc.Items
}

// SaveBookmarks replaces the bookmark document and notifies subscribers.
func (s *Redisstore) SaveBookmarks(ctx context.Context, bookmarks []domain.Bookmark) error {
	doc := bookmarksDoc{SchemaVersion: SchemaVersion, Items: bookmarks}
	if err := s.write(ctx, KeyBookmarks, doc, 0); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	s.Publish(store.TopicBookmarks)
	return nil
}

// GetCollections loads the collections document.
func (s *Redisstore) GetCollections(ctx context.Context) ([]domain.Collection, error) {
	data, ok, err := s.read(ctx, KeyCollections)
	if err != nil || !ok {
		return []domain.Collection{}, err
	}
	return s.decodeCollections(data), nil
}

// decodeCollections parses a collections envelope, failing open.
func (s *Redisstore) decodeCollections(data []byte) []domain.Collection {
	var doc collectionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		s.warnMalformed(KeyCollections, data, err)
		return []domain.Collection{}
	}
	if doc.Items == nil {
		return []domain.Collection{}
	}
	return doc.Items
}

// SaveCollections replaces the collections document and notifies
// subscribers.
func (s *Redisstore) SaveCollections(ctx context.Context, collections []domain.Collection) error {
	doc := collectionsDoc{SchemaVersion: SchemaVersion, Items: collections}
	if err := s.write(ctx, KeyCollections, doc, 0); err != nil {
		return fmt.Errorf("failed to save collections: %w", err)
	}
	s.Publish(store.TopicCollections)
	return nil
}

// GetLatestResults loads the latest-results cache for a session.
func (s *Redisstore) GetLatestResults(ctx context.Context, sessionID string) ([]domain.Product, error) {
	key := ResultsKey(sessionID)
	data, ok, err := s.read(ctx, key)
	if err != nil || !ok {
		return []domain.Product{}, err
	}
	return s.decodeResults(key, data), nil
}

// decodeResults parses a latest-results envelope, failing open.
func (s *Redisstore) decodeResults(key string, data []byte) []domain.Product {
	var doc resultsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		s.warnMalformed(key, data, err)
		return []domain.Product{}
	}
	if doc.Items == nil {
		return []domain.Product{}
	}
	return doc.Items
}

func (s *Redisstore) warnMalformed(key string, data []byte, err error) {
	s.logger.Warn("discarding malformed document",
		logger.String("key", key),
		logger.String("payload", clip(data)),
		logger.Error(err))
}

// SetLatestResults fully replaces the latest-results cache for a
// session. Search results are session-scoped, so the key carries a TTL.
func (s *Redisstore) SetLatestResults(ctx context.Context, sessionID string, products []domain.Product) error {
	doc := resultsDoc{SchemaVersion: SchemaVersion, Items: products}
	if err := s.write(ctx, ResultsKey(sessionID), doc, s.resultsTTL); err != nil {
		return fmt.Errorf("failed to save latest results: %w", err)
	}
	return nil
}

// ClearSession drops all session-scoped keys for a session.
func (s *Redisstore) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, ResultsKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Redisstore) read(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

func (s *Redisstore) write(ctx context.Context, key string, doc any, ttl time.Duration) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// clip bounds the payload echoed into the log when a document fails to
// parse, so the corrupted data stays recoverable without flooding logs.
func clip(data []byte) string {
	const max = 512
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
