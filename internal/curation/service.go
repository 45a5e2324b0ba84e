package curation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/store"
)

// ErrCollectionNotFound is returned when an operation targets a
// collection that does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// Service covers the user-initiated curation actions that bypass the
// assistant: the bookmark toggle on a product card and the explicit
// removal operations. All mutations run through the same merge
// semantics as dispatcher actions, so the store invariants hold no
// matter which path touched it.
type Service struct {
	store  store.Store
	logger logger.Logger
	now    func() time.Time
}

// NewService creates a curation service over the given store.
func NewService(st store.Store, log logger.Logger) *Service {
	return &Service{
		store:  st,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the service clock. Used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ToggleBookmark adds the product to the bookmark set if absent, or
// removes it if present. Returns true when the product ended up
// bookmarked.
func (s *Service) ToggleBookmark(ctx context.Context, product domain.Product) (bool, error) {
	bookmarks, err := s.store.GetBookmarks(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load bookmarks: %w", err)
	}

	for i, b := range bookmarks {
		if b.ProductID == product.ProductID {
			updated := append(bookmarks[:i:i], bookmarks[i+1:]...)
			if err := s.store.SaveBookmarks(ctx, updated); err != nil {
				return false, err
			}
			s.logger.Info("bookmark removed", logger.Int64("product_id", product.ProductID))
			return false, nil
		}
	}

	updated, _ := domain.UnionInto(bookmarks, []domain.Product{product}, s.now())
	if err := s.store.SaveBookmarks(ctx, updated); err != nil {
		return false, err
	}
	s.logger.Info("bookmark added", logger.Int64("product_id", product.ProductID))
	return true, nil
}

// RemoveBookmark removes one product from the bookmark set. Removing a
// product that is not bookmarked is a no-op.
func (s *Service) RemoveBookmark(ctx context.Context, productID int64) error {
	bookmarks, err := s.store.GetBookmarks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bookmarks: %w", err)
	}

	for i, b := range bookmarks {
		if b.ProductID == productID {
			updated := append(bookmarks[:i:i], bookmarks[i+1:]...)
			return s.store.SaveBookmarks(ctx, updated)
		}
	}
	return nil
}

// AddToCollection appends products to the named collection, creating it
// first when createIfMissing is set. Surfaces ErrCollectionNotFound
// when the collection does not exist and creation was not requested.
func (s *Service) AddToCollection(ctx context.Context, name string, products []domain.Product, createIfMissing bool) (domain.Outcome, error) {
	collections, err := s.store.GetCollections(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load collections: %w", err)
	}

	updated, outcome := domain.UpsertCollection(collections, name, products, createIfMissing, s.now())
	switch outcome {
	case domain.OutcomeNotFound:
		return outcome, ErrCollectionNotFound
	case domain.OutcomeAlreadyExists:
		return outcome, nil
	}

	if err := s.store.SaveCollections(ctx, updated); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// DeleteCollection removes a collection by ID.
func (s *Service) DeleteCollection(ctx context.Context, collectionID string) error {
	collections, err := s.store.GetCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}

	for i, c := range collections {
		if c.ID == collectionID {
			updated := append(collections[:i:i], collections[i+1:]...)
			if err := s.store.SaveCollections(ctx, updated); err != nil {
				return err
			}
			s.logger.Info("collection deleted",
				logger.String("collection_id", collectionID),
				logger.String("name", c.Name))
			return nil
		}
	}
	return ErrCollectionNotFound
}

// RemoveFromCollection removes one product from a collection. Removing
// a product that is not in the collection is a no-op.
func (s *Service) RemoveFromCollection(ctx context.Context, collectionID string, productID int64) error {
	collections, err := s.store.GetCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}

	for i, c := range collections {
		if c.ID != collectionID {
			continue
		}
		for j, b := range c.Products {
			if b.ProductID == productID {
				c.Products = append(c.Products[:j:j], c.Products[j+1:]...)
				c.UpdatedAt = s.now()
				collections[i] = c
				return s.store.SaveCollections(ctx, collections)
			}
		}
		return nil
	}
	return ErrCollectionNotFound
}
