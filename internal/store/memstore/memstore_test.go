package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/store"
)

func TestEmptyReadsReturnEmptySlices(t *testing.T) {
	m := New()
	ctx := context.Background()

	bookmarks, err := m.GetBookmarks(ctx)
	if err != nil || bookmarks == nil || len(bookmarks) != 0 {
		t.Errorf("GetBookmarks() = %v, %v; want empty slice, nil", bookmarks, err)
	}
	collections, err := m.GetCollections(ctx)
	if err != nil || collections == nil || len(collections) != 0 {
		t.Errorf("GetCollections() = %v, %v; want empty slice, nil", collections, err)
	}
	results, err := m.GetLatestResults(ctx, "nope")
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("GetLatestResults() = %v, %v; want empty slice, nil", results, err)
	}
}

func TestSaveAndGetBookmarks(t *testing.T) {
	m := New()
	ctx := context.Background()

	in := []domain.Bookmark{
		{Product: domain.Product{ProductID: 1}, BookmarkedAt: time.Now()},
		{Product: domain.Product{ProductID: 2}, BookmarkedAt: time.Now()},
	}
	if err := m.SaveBookmarks(ctx, in); err != nil {
		t.Fatalf("SaveBookmarks() error = %v", err)
	}

	out, _ := m.GetBookmarks(ctx)
	if len(out) != 2 {
		t.Errorf("GetBookmarks() = %v entries, want 2", len(out))
	}

	// The returned slice is a copy; mutating it must not leak back.
	out[0].ProductID = 99
	again, _ := m.GetBookmarks(ctx)
	if again[0].ProductID != 1 {
		t.Error("GetBookmarks() returned shared state")
	}
}

func TestSetLatestResultsReplaces(t *testing.T) {
	m := New()
	ctx := context.Background()

	_ = m.SetLatestResults(ctx, "s1", []domain.Product{{ProductID: 1}, {ProductID: 2}})
	_ = m.SetLatestResults(ctx, "s1", []domain.Product{{ProductID: 3}})

	results, _ := m.GetLatestResults(ctx, "s1")
	if len(results) != 1 || results[0].ProductID != 3 {
		t.Errorf("GetLatestResults() = %+v, want full replacement with product 3", results)
	}
}

func TestLatestResultsScopedPerSession(t *testing.T) {
	m := New()
	ctx := context.Background()

	_ = m.SetLatestResults(ctx, "s1", []domain.Product{{ProductID: 1}})
	_ = m.SetLatestResults(ctx, "s2", []domain.Product{{ProductID: 2}})

	r1, _ := m.GetLatestResults(ctx, "s1")
	r2, _ := m.GetLatestResults(ctx, "s2")
	if r1[0].ProductID != 1 || r2[0].ProductID != 2 {
		t.Errorf("session scoping broken: s1=%+v s2=%+v", r1, r2)
	}
}

func TestClearSession(t *testing.T) {
	m := New()
	ctx := context.Background()

	_ = m.SetLatestResults(ctx, "s1", []domain.Product{{ProductID: 1}})
	if err := m.ClearSession(ctx, "s1"); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}

	results, _ := m.GetLatestResults(ctx, "s1")
	if len(results) != 0 {
		t.Errorf("latest results survived ClearSession: %v", results)
	}
}

func TestChangeNotifications(t *testing.T) {
	m := New()
	ctx := context.Background()

	bookmarkSub := m.Subscribe(store.TopicBookmarks)
	defer bookmarkSub.Close()
	allSub := m.Subscribe()
	defer allSub.Close()

	_ = m.SaveBookmarks(ctx, nil)
	_ = m.SaveCollections(ctx, nil)

	select {
	case topic := <-bookmarkSub.C:
		if topic != store.TopicBookmarks {
			t.Errorf("topic = %v, want %v", topic, store.TopicBookmarks)
		}
	default:
		t.Error("bookmark subscriber missed notification")
	}
	// The filtered subscriber must not see the collections change.
	select {
	case topic := <-bookmarkSub.C:
		t.Errorf("bookmark subscriber received unexpected %v", topic)
	default:
	}

	got := map[store.Topic]bool{}
	for i := 0; i < 2; i++ {
		select {
		case topic := <-allSub.C:
			got[topic] = true
		default:
			t.Fatal("unfiltered subscriber missed a notification")
		}
	}
	if !got[store.TopicBookmarks] || !got[store.TopicCollections] {
		t.Errorf("unfiltered subscriber topics = %v", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int64) {
			defer wg.Done()
			_ = m.SaveBookmarks(ctx, []domain.Bookmark{{Product: domain.Product{ProductID: n}}})
		}(int64(i))
		go func() {
			defer wg.Done()
			_, _ = m.GetBookmarks(ctx)
		}()
	}
	wg.Wait()
}
