package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// DefaultAnalyticsInterval is how often the dashboard is recomputed
const DefaultAnalyticsInterval = 60 * time.Second

// AnalyticsRefresher recomputes the analytics snapshot
type AnalyticsRefresher interface {
	Refresh(ctx context.Context) (*model.Dashboard, error)
}

// AnalyticsRefreshWorker keeps the analytics dashboard fresh in the background.
// The first refresh runs right after Start so the page has data before the
// first tick.
type AnalyticsRefreshWorker struct {
	analytics AnalyticsRefresher
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewAnalyticsRefreshWorker creates the worker. A non-positive interval
// selects DefaultAnalyticsInterval.
func NewAnalyticsRefreshWorker(analytics AnalyticsRefresher, interval time.Duration) *AnalyticsRefreshWorker {
	if interval <= 0 {
		interval = DefaultAnalyticsInterval
	}
	return &AnalyticsRefreshWorker{
		analytics: analytics,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the refresh loop without blocking
func (w *AnalyticsRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("analytics refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *AnalyticsRefreshWorker) Stop() {
	logging.Default().Info("analytics refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("analytics refresh worker stopped")
}

func (w *AnalyticsRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("analytics refresh worker context cancelled")
			return
		}
	}
}

func (w *AnalyticsRefreshWorker) refresh(ctx context.Context) {
	startTime := time.Now()
	d, err := w.analytics.Refresh(ctx)
	if err != nil {
		// the previous snapshot keeps being served
		logging.Default().Warn("analytics refresh failed (will retry next interval)",
			"error", err.Error())
		return
	}

	logging.Default().Debug("analytics refreshed",
		"fetched_at", d.FetchedAt,
		"duration", time.Since(startTime).String())
}
