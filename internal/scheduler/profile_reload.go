package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/sources/catalog"
)

// ProfileReloader handles periodic reloading of the origin alias
// profiles consumed by the normalizer, so field-name drift fixes ship
// without a restart.
type ProfileReloader struct {
	loader        *catalog.Loader
	normalizer    *catalog.Normalizer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewProfileReloader creates a profile reloader.
func NewProfileReloader(
	originsFile string,
	normalizer *catalog.Normalizer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ProfileReloader {
	return &ProfileReloader{
		loader:        catalog.NewLoader(originsFile),
		normalizer:    normalizer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start performs an initial load and begins the periodic reload loop.
func (pr *ProfileReloader) Start(ctx context.Context) error {
	if err := pr.Reload(); err != nil {
		return fmt.Errorf("initial profile reload failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload origin profiles",
						logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual profile reload triggered")
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload origin profiles",
						logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (pr *ProfileReloader) Stop() {
	close(pr.stopCh)
}

// Reload reads origins.yaml and applies the profiles to the normalizer.
func (pr *ProfileReloader) Reload() error {
	config, err := pr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load origin profiles: %w", err)
	}

	pr.normalizer.ApplyProfiles(config)
	pr.logger.Info("origin profiles applied",
		logger.Int("profiles", len(config)))
	return nil
}
