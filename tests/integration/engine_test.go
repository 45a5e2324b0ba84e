package integration

import (
	"context"
	"testing"
	"time"

	"github.com/curioapp/curio/internal/curation"
	"github.com/curioapp/curio/internal/dispatch"
	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/sources/catalog"
	"github.com/curioapp/curio/internal/store/memstore"
)

// scriptedAssistant replays a fixed sequence of responses, one per call.
type scriptedAssistant struct {
	normalizer *catalog.Normalizer
	script     []scriptTurn
	calls      int
}

type scriptTurn struct {
	action          domain.ActionKind
	message         string
	raws            []catalog.RawProduct
	collectionName  string
	isError         bool
	showBookmarks   bool
	showCollections bool
}

func (f *scriptedAssistant) Send(_ context.Context, _, _ string) (*domain.AssistantResponse, error) {
	if f.calls >= len(f.script) {
		return &domain.AssistantResponse{Message: "nothing scripted"}, nil
	}
	turn := f.script[f.calls]
	f.calls++

	return &domain.AssistantResponse{
		Message:         turn.message,
		Action:          turn.action,
		Products:        f.normalizer.NormalizeAll(turn.raws),
		Error:           turn.isError,
		CollectionName:  turn.collectionName,
		ShowBookmarks:   turn.showBookmarks,
		ShowCollections: turn.showCollections,
	}, nil
}

func rawTile(id int, name string) catalog.RawProduct {
	return catalog.RawProduct{
		"productId": float64(id),
		"details": map[string]any{
			"name":     name,
			"Material": "ceramic",
			"price":    float64(10 + id),
			"currency": "EUR",
			"Image":    "https://cdn.example.com/p.jpg",
		},
	}
}

// TestShoppingSessionScenario walks one full session: search, bookmark,
// collection filing, live-projection request, upstream error, replay.
func TestShoppingSessionScenario(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	st := memstore.New()
	normalizer := catalog.NewNormalizer()

	assistantClient := &scriptedAssistant{
		normalizer: normalizer,
		script: []scriptTurn{
			{action: domain.ActionSearch, message: "Here are some tiles.",
				raws: []catalog.RawProduct{rawTile(1, "Terra"), rawTile(2, "Luna"), rawTile(3, "Sol")}},
			{action: domain.ActionBookmark, message: ""},
			{action: domain.ActionCollection, collectionName: "Kitchen"},
			{action: domain.ActionShowBookmark, showBookmarks: true},
			{isError: true, message: "I did not understand that."},
		},
	}

	dispatcher := dispatch.New(st, log)
	sessions := session.NewManager(st, dispatcher, assistantClient, log)
	curator := curation.NewService(st, log)

	sessionID := sessions.Start(ctx)

	// Turn 1: search replaces the latest-results cache, bookmarks untouched.
	reply, err := sessions.SubmitUserMessage(ctx, sessionID, "show me tiles")
	if err != nil {
		t.Fatalf("search turn failed: %v", err)
	}
	if len(reply.Products) != 3 {
		t.Fatalf("search reply carried %d products, want 3", len(reply.Products))
	}
	if bookmarks, _ := st.GetBookmarks(ctx); len(bookmarks) != 0 {
		t.Fatalf("search must not touch bookmarks, got %d", len(bookmarks))
	}

	// Turn 2: bookmark with no response products falls back to the cache.
	if _, err := sessions.SubmitUserMessage(ctx, sessionID, "bookmark those"); err != nil {
		t.Fatalf("bookmark turn failed: %v", err)
	}
	bookmarks, _ := st.GetBookmarks(ctx)
	if len(bookmarks) != 3 {
		t.Fatalf("got %d bookmarks, want 3", len(bookmarks))
	}

	// Turn 3: collection action files the cached results under "Kitchen".
	if _, err := sessions.SubmitUserMessage(ctx, sessionID, "put them in my kitchen collection"); err != nil {
		t.Fatalf("collection turn failed: %v", err)
	}
	collections, _ := st.GetCollections(ctx)
	if len(collections) != 1 || collections[0].Name != "Kitchen" {
		t.Fatalf("unexpected collections: %+v", collections)
	}
	if len(collections[0].Products) != 3 {
		t.Fatalf("Kitchen has %d products, want 3", len(collections[0].Products))
	}

	// Turn 4: show_bookmark yields the live-projection sentinel.
	reply, err = sessions.SubmitUserMessage(ctx, sessionID, "show my bookmarks")
	if err != nil {
		t.Fatalf("show turn failed: %v", err)
	}
	if !reply.IsSentinel() || reply.Content != domain.ContentShowBookmarks {
		t.Fatalf("expected bookmark sentinel, got %q", reply.Content)
	}

	// Turn 5: an error reply surfaces verbatim and mutates nothing.
	before, _ := st.GetBookmarks(ctx)
	reply, err = sessions.SubmitUserMessage(ctx, sessionID, "gibberish")
	if err != nil {
		t.Fatalf("error turn failed: %v", err)
	}
	if reply.Content != "I did not understand that." {
		t.Fatalf("error message not surfaced verbatim: %q", reply.Content)
	}
	after, _ := st.GetBookmarks(ctx)
	if len(before) != len(after) {
		t.Fatalf("error turn mutated bookmarks: %d -> %d", len(before), len(after))
	}

	// Direct curation alongside dispatch: toggling a bookmarked product
	// removes it from the set.
	bookmarked, err := curator.ToggleBookmark(ctx, before[0].Product)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if bookmarked {
		t.Fatal("toggle of an existing bookmark should remove it")
	}
	bookmarks, _ = st.GetBookmarks(ctx)
	if len(bookmarks) != 2 {
		t.Fatalf("got %d bookmarks after toggle, want 2", len(bookmarks))
	}

	// The log now has: greeting + 5 user/assistant pairs.
	msgs, err := sessions.Messages(sessionID)
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if len(msgs) != 11 {
		t.Fatalf("message log has %d entries, want 11", len(msgs))
	}
	if msgs[0].Role != domain.RoleAssistant {
		t.Fatalf("log must open with the assistant greeting, got %s", msgs[0].Role)
	}

	// Ending the session drops its cached results but keeps bookmarks
	// and collections.
	if err := sessions.End(ctx, sessionID); err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if cached, _ := st.GetLatestResults(ctx, sessionID); len(cached) != 0 {
		t.Fatalf("latest results survived session end: %d", len(cached))
	}
	if bookmarks, _ := st.GetBookmarks(ctx); len(bookmarks) != 2 {
		t.Fatalf("bookmarks must survive session end, got %d", len(bookmarks))
	}
}

// TestReplayedCollectionTurnIsIdempotent replays the same
// search_bookmark_collection response twice and expects identical state.
func TestReplayedCollectionTurnIsIdempotent(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	st := memstore.New()
	normalizer := catalog.NewNormalizer()

	resp := &domain.AssistantResponse{
		Message:        "Filed under Bathroom.",
		Action:         domain.ActionSearchBookmarkCollection,
		Products:       normalizer.NormalizeAll([]catalog.RawProduct{rawTile(7, "Mare"), rawTile(8, "Onda")}),
		CollectionName: "Bathroom",
	}

	dispatcher := dispatch.New(st, log).WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})

	if _, err := dispatcher.Dispatch(ctx, "s1", resp); err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	if _, err := dispatcher.Dispatch(ctx, "s1", resp); err != nil {
		t.Fatalf("replayed dispatch failed: %v", err)
	}

	bookmarks, _ := st.GetBookmarks(ctx)
	if len(bookmarks) != 2 {
		t.Fatalf("replay duplicated bookmarks: %d", len(bookmarks))
	}
	collections, _ := st.GetCollections(ctx)
	if len(collections) != 1 || len(collections[0].Products) != 2 {
		t.Fatalf("replay changed collections: %+v", collections)
	}
}
