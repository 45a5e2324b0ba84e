package domain

import (
	"testing"
	"time"
)

func product(id int64, name string) Product {
	return Product{
		ProductID: id,
		Details:   ProductDetails{Name: name, Images: []string{}},
	}
}

func TestUnionIntoAddsNewProducts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	existing := []Bookmark{
		{Product: product(1, "hexa"), BookmarkedAt: now.Add(-time.Hour)},
	}
	incoming := []Product{product(2, "slate"), product(3, "terra")}

	updated, added := UnionInto(existing, incoming, now)

	if added != 2 {
		t.Errorf("UnionInto() added = %v, want 2", added)
	}
	if len(updated) != 3 {
		t.Errorf("UnionInto() len = %v, want 3", len(updated))
	}
	if updated[1].BookmarkedAt != now {
		t.Errorf("UnionInto() new entry timestamp = %v, want %v", updated[1].BookmarkedAt, now)
	}
}

func TestUnionIntoSkipsExisting(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	existing := []Bookmark{
		{Product: product(1, "hexa"), BookmarkedAt: earlier},
	}
	incoming := []Product{product(1, "hexa renamed"), product(2, "slate")}

	updated, added := UnionInto(existing, incoming, now)

	if added != 1 {
		t.Errorf("UnionInto() added = %v, want 1", added)
	}
	// Existing entries are skipped, not updated in place.
	if updated[0].Details.Name != "hexa" {
		t.Errorf("UnionInto() overwrote existing entry: %v", updated[0].Details.Name)
	}
	if updated[0].BookmarkedAt != earlier {
		t.Errorf("UnionInto() touched existing timestamp: %v", updated[0].BookmarkedAt)
	}
}

func TestUnionIntoIdempotent(t *testing.T) {
	now := time.Now()
	incoming := []Product{product(1, "hexa"), product(2, "slate"), product(3, "terra")}

	first, added := UnionInto(nil, incoming, now)
	if added != 3 {
		t.Fatalf("first UnionInto() added = %v, want 3", added)
	}

	second, added := UnionInto(first, incoming, now.Add(time.Minute))
	if added != 0 {
		t.Errorf("replayed UnionInto() added = %v, want 0", added)
	}
	if len(second) != len(first) {
		t.Errorf("replayed UnionInto() len = %v, want %v", len(second), len(first))
	}
}

func TestUnionIntoDeduplicatesBatch(t *testing.T) {
	now := time.Now()
	incoming := []Product{product(1, "hexa"), product(1, "hexa dup"), product(2, "slate")}

	updated, added := UnionInto(nil, incoming, now)

	if added != 2 {
		t.Errorf("UnionInto() added = %v, want 2", added)
	}
	seen := make(map[int64]bool)
	for _, b := range updated {
		if seen[b.ProductID] {
			t.Errorf("UnionInto() produced duplicate productId %v", b.ProductID)
		}
		seen[b.ProductID] = true
	}
}

func TestUnionIntoDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	existing := []Bookmark{
		{Product: product(1, "hexa"), BookmarkedAt: now},
	}

	updated, _ := UnionInto(existing, []Product{product(2, "slate")}, now)

	if len(existing) != 1 {
		t.Errorf("UnionInto() mutated input, len = %v", len(existing))
	}
	if len(updated) != 2 {
		t.Errorf("UnionInto() result len = %v, want 2", len(updated))
	}
}

func TestUpsertCollectionCreates(t *testing.T) {
	now := time.Now()

	updated, outcome := UpsertCollection(nil, "Kitchen", []Product{product(9, "terra")}, true, now)

	if outcome != OutcomeCreated {
		t.Fatalf("UpsertCollection() outcome = %v, want %v", outcome, OutcomeCreated)
	}
	if len(updated) != 1 {
		t.Fatalf("UpsertCollection() len = %v, want 1", len(updated))
	}
	c := updated[0]
	if c.Name != "Kitchen" {
		t.Errorf("collection name = %v, want Kitchen", c.Name)
	}
	if c.ID == "" {
		t.Error("collection ID not generated")
	}
	if len(c.Products) != 1 || c.Products[0].ProductID != 9 {
		t.Errorf("collection products = %+v, want product 9", c.Products)
	}
}

func TestUpsertCollectionAlreadyExistsCaseInsensitive(t *testing.T) {
	now := time.Now()
	existing, _ := UpsertCollection(nil, "Kitchen", []Product{product(9, "terra")}, true, now)

	tests := []struct {
		name     string
		attempt  string
		products []Product
	}{
		{"same case", "Kitchen", []Product{product(10, "slate")}},
		{"lower case", "kitchen", []Product{product(10, "slate")}},
		{"upper case", "KITCHEN", []Product{product(10, "slate")}},
		{"padded", "  kitchen ", []Product{product(10, "slate")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, outcome := UpsertCollection(existing, tt.attempt, tt.products, true, now)
			if outcome != OutcomeAlreadyExists {
				t.Errorf("outcome = %v, want %v", outcome, OutcomeAlreadyExists)
			}
			if len(updated) != 1 {
				t.Errorf("collections len = %v, want 1", len(updated))
			}
			if len(updated[0].Products) != 1 {
				t.Errorf("existing collection changed, products = %v", len(updated[0].Products))
			}
		})
	}
}

func TestUpsertCollectionNotFound(t *testing.T) {
	now := time.Now()
	existing, _ := UpsertCollection(nil, "Kitchen", nil, true, now)

	updated, outcome := UpsertCollection(existing, "Office", []Product{product(1, "hexa")}, false, now)

	if outcome != OutcomeNotFound {
		t.Errorf("outcome = %v, want %v", outcome, OutcomeNotFound)
	}
	if len(updated) != 1 {
		t.Errorf("collections len = %v, want 1 (unchanged)", len(updated))
	}
}

func TestUpsertCollectionAppends(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	existing, _ := UpsertCollection(nil, "Kitchen", []Product{product(9, "terra")}, true, created)

	later := created.Add(time.Hour)
	updated, outcome := UpsertCollection(existing, "kitchen", []Product{product(9, "terra"), product(10, "slate")}, false, later)

	if outcome != OutcomeAppended {
		t.Fatalf("outcome = %v, want %v", outcome, OutcomeAppended)
	}
	c := updated[0]
	if len(c.Products) != 2 {
		t.Fatalf("products len = %v, want 2", len(c.Products))
	}
	if c.Products[1].ProductID != 10 {
		t.Errorf("appended product = %v, want 10", c.Products[1].ProductID)
	}
	if !c.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", c.UpdatedAt, later)
	}
}

func TestUpsertCollectionAppendNoopKeepsUpdatedAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	existing, _ := UpsertCollection(nil, "Kitchen", []Product{product(9, "terra")}, true, created)

	later := created.Add(time.Hour)
	updated, outcome := UpsertCollection(existing, "Kitchen", []Product{product(9, "terra")}, false, later)

	if outcome != OutcomeAppended {
		t.Fatalf("outcome = %v, want %v", outcome, OutcomeAppended)
	}
	if !updated[0].UpdatedAt.Equal(created) {
		t.Errorf("UpdatedAt refreshed without an actual append: %v", updated[0].UpdatedAt)
	}
	if len(updated[0].Products) != 1 {
		t.Errorf("products len = %v, want 1", len(updated[0].Products))
	}
}

func TestUpsertCollectionDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	existing, _ := UpsertCollection(nil, "Kitchen", []Product{product(9, "terra")}, true, now)

	_, _ = UpsertCollection(existing, "Kitchen", []Product{product(10, "slate")}, false, now.Add(time.Hour))

	if len(existing[0].Products) != 1 {
		t.Errorf("UpsertCollection() mutated input collection, products = %v", len(existing[0].Products))
	}
}
