package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection is a named, user-created, ordered set of bookmarks.
//
// Names are case-insensitively unique among existing collections.
// Within one collection no two entries share a ProductID.
type Collection struct {
	// ID is an opaque identifier generated at creation.
	ID string `json:"id"`

	// Name is the user-visible collection name.
	Name string `json:"name"`

	// Products is the ordered sequence of bookmarked products.
	Products []Bookmark `json:"products"`

	// CreatedAt is the instant the collection was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed only when at least one product is
	// actually appended.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCollection builds a collection from already-normalized products.
// Duplicate ProductIDs within the input are collapsed, keeping the
// first occurrence.
func NewCollection(name string, products []Product, now time.Time) Collection {
	c := Collection{
		ID:        uuid.NewString(),
		Name:      name,
		Products:  make([]Bookmark, 0, len(products)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := make(map[int64]bool, len(products))
	for _, p := range products {
		if seen[p.ProductID] {
			continue
		}
		seen[p.ProductID] = true
		c.Products = append(c.Products, Bookmark{Product: p, BookmarkedAt: now})
	}

	return c
}

// SameName reports whether the collection name matches the given name,
// compared case-insensitively with surrounding whitespace ignored.
func (c *Collection) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name))
}

// Contains reports whether the collection already holds the product.
func (c *Collection) Contains(productID int64) bool {
	for _, b := range c.Products {
		if b.ProductID == productID {
			return true
		}
	}
	return false
}
