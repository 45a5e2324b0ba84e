package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/store"
)

// Result is what the session layer needs to log the assistant turn.
type Result struct {
	// Content is the reply text, possibly a live-projection sentinel.
	Content string

	// Products are attached to the reply for display.
	Products []domain.Product
}

// Dispatcher applies assistant responses to the store. It holds no
// state of its own: each invocation reads a full snapshot, builds a
// plan, and writes the replacement documents back.
type Dispatcher struct {
	store  store.Store
	logger logger.Logger
	now    func() time.Time
}

// New creates a dispatcher over the given store.
func New(st store.Store, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		store:  st,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the dispatcher clock. Used in tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch consumes one assistant response for one session and applies
// the resulting mutations. Replaying the same response is safe: the
// product-keyed dedup in the merge engine means the second application
// changes nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID string, resp *domain.AssistantResponse) (*Result, error) {
	snap, err := d.snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	plan := BuildPlan(resp, snap, d.now())

	if err := d.apply(ctx, sessionID, plan); err != nil {
		return nil, err
	}

	if resp != nil {
		d.logger.Info("dispatched assistant action",
			logger.String("session_id", sessionID),
			logger.String("action", string(resp.Action)),
			logger.Int("bookmarks_added", plan.BookmarksAdded),
			logger.String("outcome", string(plan.Outcome)))
	}

	return &Result{Content: plan.Reply, Products: plan.ReplyProducts}, nil
}

func (d *Dispatcher) snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	bookmarks, err := d.store.GetBookmarks(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	collections, err := d.store.GetCollections(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load collections: %w", err)
	}
	results, err := d.store.GetLatestResults(ctx, sessionID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load latest results: %w", err)
	}
	return Snapshot{
		Bookmarks:     bookmarks,
		Collections:   collections,
		LatestResults: results,
	}, nil
}

func (d *Dispatcher) apply(ctx context.Context, sessionID string, plan Plan) error {
	if plan.ReplaceLatestResults {
		if err := d.store.SetLatestResults(ctx, sessionID, plan.LatestResults); err != nil {
			return err
		}
	}
	if plan.SaveBookmarks {
		if err := d.store.SaveBookmarks(ctx, plan.Bookmarks); err != nil {
			return err
		}
	}
	if plan.SaveCollections {
		if err := d.store.SaveCollections(ctx, plan.Collections); err != nil {
			return err
		}
	}
	return nil
}
