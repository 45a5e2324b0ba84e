package dispatch

import (
	"fmt"
	"time"

	"github.com/curioapp/curio/internal/domain"
)

// Snapshot is the store state a plan is computed against. It is read
// once, in full, before any mutation is decided; the plan then replaces
// whole documents so no failure can leave half-written state behind.
type Snapshot struct {
	Bookmarks     []domain.Bookmark
	Collections   []domain.Collection
	LatestResults []domain.Product
}

// Plan is the set of store mutations and the user-facing reply produced
// by one assistant response. Building a plan has no side effects, which
// keeps every action handler testable without a storage backend.
type Plan struct {
	// ReplaceLatestResults replaces the session's latest-results cache
	// with LatestResults when set.
	ReplaceLatestResults bool
	LatestResults        []domain.Product

	// SaveBookmarks persists Bookmarks as the new bookmark set when set.
	SaveBookmarks bool
	Bookmarks     []domain.Bookmark

	// SaveCollections persists Collections as the new collection list
	// when set.
	SaveCollections bool
	Collections     []domain.Collection

	// Reply is the assistant message content to log; sentinel contents
	// instruct the renderer to project live store state.
	Reply string

	// ReplyProducts optionally attaches products to the reply for
	// display.
	ReplyProducts []domain.Product

	// BookmarksAdded is the number of bookmarks actually added, for
	// logging.
	BookmarksAdded int

	// Outcome is the collection upsert outcome, when one ran.
	Outcome domain.Outcome
}

// BuildPlan maps one assistant response plus a store snapshot to a
// mutation plan. It is a pure function: replaying the same response
// against the state it produced yields a plan that changes nothing,
// which is what makes at-least-once delivery safe.
func BuildPlan(resp *domain.AssistantResponse, snap Snapshot, now time.Time) Plan {
	if resp == nil {
		return Plan{Reply: genericFailureMessage}
	}

	// Failed replies mutate nothing; the message is surfaced verbatim.
	if resp.Error {
		return Plan{Reply: resp.Message}
	}

	switch resp.Action {
	case domain.ActionSearch:
		return planSearch(resp)
	case domain.ActionBookmark:
		return planBookmark(resp, snap, now)
	case domain.ActionSearchAndBookmark:
		return planSearchAndBookmark(resp, snap, now)
	case domain.ActionCollection:
		return planCollection(resp, snap, now)
	case domain.ActionSearchBookmarkCollection:
		return planSearchBookmarkCollection(resp, snap, now)
	case domain.ActionShowBookmark:
		return Plan{Reply: domain.ContentShowBookmarks}
	case domain.ActionShowCollection:
		return Plan{Reply: domain.ContentShowCollections}
	}

	// Unknown or absent action: plain conversational turn.
	return Plan{Reply: messageOr(resp.Message, genericReplyMessage)}
}

const (
	genericFailureMessage = "Sorry, something went wrong while talking to the catalog. Please try again."
	genericReplyMessage   = "Here you go."
	emptySearchMessage    = "I could not find any matching tiles."
)

func planSearch(resp *domain.AssistantResponse) Plan {
	if len(resp.Products) == 0 {
		return Plan{Reply: messageOr(resp.Message, emptySearchMessage)}
	}
	return Plan{
		ReplaceLatestResults: true,
		LatestResults:        resp.Products,
		Reply:                messageOr(resp.Message, fmt.Sprintf("Found %d tiles.", len(resp.Products))),
		ReplyProducts:        resp.Products,
	}
}

func planBookmark(resp *domain.AssistantResponse, snap Snapshot, now time.Time) Plan {
	// A bare "bookmark this" refers to the tiles just found.
	products := resp.Products
	if len(products) == 0 {
		products = snap.LatestResults
	}
	if len(products) == 0 {
		return Plan{Reply: messageOr(resp.Message, "There is nothing to bookmark yet. Try a search first.")}
	}

	updated, added := domain.UnionInto(snap.Bookmarks, products, now)
	plan := Plan{
		Reply:          messageOr(resp.Message, addedMessage(added)),
		ReplyProducts:  products,
		BookmarksAdded: added,
	}
	if added > 0 {
		plan.SaveBookmarks = true
		plan.Bookmarks = updated
	}
	return plan
}

func planSearchAndBookmark(resp *domain.AssistantResponse, snap Snapshot, now time.Time) Plan {
	if len(resp.Products) == 0 {
		return Plan{Reply: messageOr(resp.Message, emptySearchMessage)}
	}

	updated, added := domain.UnionInto(snap.Bookmarks, resp.Products, now)
	plan := Plan{
		ReplaceLatestResults: true,
		LatestResults:        resp.Products,
		Reply:                messageOr(resp.Message, addedMessage(added)),
		ReplyProducts:        resp.Products,
		BookmarksAdded:       added,
	}
	if added > 0 {
		plan.SaveBookmarks = true
		plan.Bookmarks = updated
	}
	return plan
}

func planCollection(resp *domain.AssistantResponse, snap Snapshot, now time.Time) Plan {
	if resp.CollectionName == "" {
		return Plan{Reply: messageOr(resp.Message, "Which collection should I use?")}
	}

	// Collection intents pull from the tiles just found, not from the
	// response payload.
	products := snap.LatestResults
	if len(products) == 0 {
		return Plan{Reply: messageOr(resp.Message, "There are no tiles to collect yet. Try a search first.")}
	}

	plan := Plan{ReplyProducts: products}

	bookmarks, added := domain.UnionInto(snap.Bookmarks, products, now)
	if added > 0 {
		plan.SaveBookmarks = true
		plan.Bookmarks = bookmarks
		plan.BookmarksAdded = added
	}

	collections, outcome := domain.UpsertCollection(snap.Collections, resp.CollectionName, products, true, now)
	plan.Outcome = outcome
	switch outcome {
	case domain.OutcomeCreated:
		plan.SaveCollections = true
		plan.Collections = collections
		plan.Reply = messageOr(resp.Message,
			fmt.Sprintf("Created the %q collection with %d tiles.", resp.CollectionName, len(products)))
	case domain.OutcomeAlreadyExists:
		plan.Reply = fmt.Sprintf("A collection named %q already exists.", resp.CollectionName)
	}

	return plan
}

func planSearchBookmarkCollection(resp *domain.AssistantResponse, snap Snapshot, now time.Time) Plan {
	if len(resp.Products) == 0 {
		return Plan{Reply: messageOr(resp.Message, emptySearchMessage)}
	}
	if resp.CollectionName == "" {
		return Plan{Reply: messageOr(resp.Message, "Which collection should I use?")}
	}

	plan := Plan{
		ReplaceLatestResults: true,
		LatestResults:        resp.Products,
		ReplyProducts:        resp.Products,
	}

	collections, outcome := domain.UpsertCollection(snap.Collections, resp.CollectionName, resp.Products, true, now)
	plan.Outcome = outcome
	if outcome == domain.OutcomeCreated {
		plan.SaveCollections = true
		plan.Collections = collections
	}

	bookmarks, added := domain.UnionInto(snap.Bookmarks, resp.Products, now)
	if added > 0 {
		plan.SaveBookmarks = true
		plan.Bookmarks = bookmarks
		plan.BookmarksAdded = added
	}

	switch outcome {
	case domain.OutcomeCreated:
		plan.Reply = messageOr(resp.Message,
			fmt.Sprintf("Saved %d tiles and created the %q collection.", len(resp.Products), resp.CollectionName))
	case domain.OutcomeAlreadyExists:
		plan.Reply = fmt.Sprintf("A collection named %q already exists.", resp.CollectionName)
	}

	return plan
}

func addedMessage(added int) string {
	switch added {
	case 0:
		return "Those tiles are already in your bookmarks."
	case 1:
		return "1 tile added to your bookmarks."
	default:
		return fmt.Sprintf("%d tiles added to your bookmarks.", added)
	}
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
