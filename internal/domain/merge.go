package domain

import "time"

// Outcome describes the result of a collection upsert.
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeAppended      Outcome = "appended"
	OutcomeAlreadyExists Outcome = "alreadyExists"
	OutcomeNotFound      Outcome = "notFound"
)

// UnionInto merges incoming products into an existing bookmark set.
//
// For each incoming product, if no existing entry shares its ProductID a
// new Bookmark stamped with now is appended. Products already present are
// skipped: not duplicated, not updated in place. Replaying the same input
// therefore adds zero entries.
//
// The input slice is never mutated; the returned slice is a fresh copy.
// added is the count of entries actually appended, used for user-facing
// messaging.
func UnionInto(existing []Bookmark, incoming []Product, now time.Time) (updated []Bookmark, added int) {
	updated = make([]Bookmark, len(existing), len(existing)+len(incoming))
	copy(updated, existing)

	seen := make(map[int64]bool, len(existing)+len(incoming))
	for _, b := range existing {
		seen[b.ProductID] = true
	}

	for _, p := range incoming {
		if seen[p.ProductID] {
			continue
		}
		seen[p.ProductID] = true
		updated = append(updated, Bookmark{Product: p, BookmarkedAt: now})
		added++
	}

	return updated, added
}

// UpsertCollection merges incoming products into the collection matching
// name (compared case-insensitively).
//
// When no collection matches: with createIfMissing a new collection is
// built from the incoming products (OutcomeCreated), otherwise nothing
// changes (OutcomeNotFound).
//
// When a collection matches: with createIfMissing the call is a no-op
// reporting OutcomeAlreadyExists; otherwise only products whose ProductID
// is not already present are appended, and UpdatedAt is refreshed only if
// at least one product was actually appended (OutcomeAppended).
//
// The input slice is never mutated; the returned slice is a fresh copy.
func UpsertCollection(collections []Collection, name string, incoming []Product, createIfMissing bool, now time.Time) ([]Collection, Outcome) {
	updated := make([]Collection, len(collections))
	copy(updated, collections)

	idx := -1
	for i := range updated {
		if updated[i].SameName(name) {
			idx = i
			break
		}
	}

	if idx == -1 {
		if !createIfMissing {
			return updated, OutcomeNotFound
		}
		return append(updated, NewCollection(name, incoming, now)), OutcomeCreated
	}

	if createIfMissing {
		return updated, OutcomeAlreadyExists
	}

	target := updated[idx]
	merged := make([]Bookmark, len(target.Products), len(target.Products)+len(incoming))
	copy(merged, target.Products)

	appended := 0
	for _, p := range incoming {
		if target.Contains(p.ProductID) || containsProduct(merged[len(target.Products):], p.ProductID) {
			continue
		}
		merged = append(merged, Bookmark{Product: p, BookmarkedAt: now})
		appended++
	}

	if appended > 0 {
		target.Products = merged
		target.UpdatedAt = now
		updated[idx] = target
	}

	return updated, OutcomeAppended
}

func containsProduct(bookmarks []Bookmark, productID int64) bool {
	for _, b := range bookmarks {
		if b.ProductID == productID {
			return true
		}
	}
	return false
}
