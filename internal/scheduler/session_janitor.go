package scheduler

import (
	"context"
	"time"

	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/session"
)

const (
	// DefaultMaxIdle is the duration after which an inactive session is
	// expired, along with its session-scoped store state.
	DefaultMaxIdle = 2 * time.Hour
)

// SessionJanitor expires idle sessions on an interval. Bookmarks and
// collections are never touched; only session-scoped state (message
// logs, latest-results caches) is discarded.
type SessionJanitor struct {
	sessions *session.Manager
	logger   logger.Logger
	interval time.Duration
	maxIdle  time.Duration
	stopCh   chan struct{}
}

// NewSessionJanitor creates a session janitor.
func NewSessionJanitor(
	sessions *session.Manager,
	log logger.Logger,
	interval time.Duration,
	maxIdle time.Duration,
) *SessionJanitor {
	if maxIdle == 0 {
		maxIdle = DefaultMaxIdle
	}

	return &SessionJanitor{
		sessions: sessions,
		logger:   log,
		interval: interval,
		maxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (sj *SessionJanitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(sj.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sj.Sweep(ctx)
			case <-sj.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor.
func (sj *SessionJanitor) Stop() {
	close(sj.stopCh)
}

// Sweep expires idle sessions once.
func (sj *SessionJanitor) Sweep(ctx context.Context) {
	expired := sj.sessions.ExpireIdle(ctx, sj.maxIdle)
	if expired > 0 {
		sj.logger.Info("expired idle sessions",
			logger.Int("count", expired),
			logger.Duration("max_idle", sj.maxIdle))
	} else {
		sj.logger.Debug("no idle sessions to expire")
	}
}
