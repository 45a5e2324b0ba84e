package domain

import "time"

// Product is the canonical product record used throughout the engine.
//
// It is NOT tied to any upstream catalog origin. All raw payloads
// (search results, assistant replies, persisted documents) are funneled
// through the normalizer into this structure before anything else
// touches them.
//
// A Product is uniquely identified by its ProductID.
type Product struct {
	// ProductID is the stable upstream identity.
	ProductID int64 `json:"productId"`

	// Details holds the named attributes of the product.
	Details ProductDetails `json:"details"`
}

// ProductDetails holds the displayable attributes of a product.
// Every field is optional upstream; after normalization each one is
// populated with the empty value of its semantic type.
type ProductDetails struct {
	// Name is the user-visible product name.
	// Example: "Hexa Terracotta 20x20"
	Name string `json:"name"`

	// Material describes the product material.
	// Example: "porcelain", "ceramic"
	Material string `json:"material"`

	// ColorGroup is the merchandising color family.
	// Example: "warm neutrals"
	ColorGroup string `json:"colorGroup"`

	// Size is the nominal product size.
	// Example: "20x20 cm"
	Size string `json:"size"`

	// Usage describes where the product is meant to be applied.
	// Example: "floor", "wall"
	Usage string `json:"usage"`

	// Price is the unit price. Zero when the origin did not provide one.
	Price float64 `json:"price"`

	// Currency is the ISO currency code for Price.
	Currency string `json:"currency"`

	// Images is an ordered sequence of image URLs.
	//
	// Invariant: after normalization this is always a slice (possibly
	// empty), never a raw newline-delimited string.
	Images []string `json:"images"`
}

// Bookmark is a canonical product with a capture timestamp, held in a
// deduplicated set keyed by ProductID.
type Bookmark struct {
	Product `json:"product"`

	// BookmarkedAt is the instant the entry was added.
	BookmarkedAt time.Time `json:"bookmarkedAt"`
}
