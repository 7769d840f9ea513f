package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/db"
	"couple-plans-backend-go/internal/metrics"
	"couple-plans-backend-go/internal/models"
)

const (
	initialRetryDelay = time.Second
	maxRetryDelay     = time.Minute
)

// Watcher keeps the services in sync with the remote store's snapshot listeners
// and forwards every reconciled delivery to the Hub.
type Watcher struct {
	planRepo      db.PlanRepository
	workspaceRepo db.WorkspaceRepository
	plans         core.PlanService
	locations     core.LocationService
	hub           *Hub
	logger        *zap.Logger
}

// NewWatcher creates a new Watcher.
func NewWatcher(planRepo db.PlanRepository, workspaceRepo db.WorkspaceRepository, plans core.PlanService, locations core.LocationService, hub *Hub, logger *zap.Logger) *Watcher {
	return &Watcher{
		planRepo:      planRepo,
		workspaceRepo: workspaceRepo,
		plans:         plans,
		locations:     locations,
		hub:           hub,
		logger:        logger,
	}
}

// Run listens to both streams until ctx is cancelled. A failed listener is
// restarted with exponential backoff.
func (w *Watcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.keepListening(ctx, KindPlans, func(ctx context.Context) error {
			return w.planRepo.Watch(ctx, func(remote []models.Plan) { w.onPlans(ctx, remote) })
		})
	})
	g.Go(func() error {
		return w.keepListening(ctx, KindLocations, func(ctx context.Context) error {
			return w.workspaceRepo.WatchLocations(ctx, func(remote []string) { w.onLocations(ctx, remote) })
		})
	})
	return g.Wait()
}

func (w *Watcher) onPlans(ctx context.Context, remote []models.Plan) {
	metrics.RealtimeDeliveriesTotal.WithLabelValues(KindPlans).Inc()
	merged := w.plans.ApplyRemotePlans(ctx, remote)
	w.hub.PublishPlans(merged)
	w.logger.Debug("Plans snapshot delivered", zap.Int("count", len(merged)))
}

func (w *Watcher) onLocations(ctx context.Context, remote []string) {
	metrics.RealtimeDeliveriesTotal.WithLabelValues(KindLocations).Inc()
	locations := w.locations.ApplyRemoteLocations(ctx, remote)
	w.hub.PublishLocations(locations)
	w.logger.Debug("Locations snapshot delivered", zap.Int("count", len(locations)))
}

func (w *Watcher) keepListening(ctx context.Context, stream string, listen func(context.Context) error) error {
	delay := initialRetryDelay
	for {
		err := listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			delay = initialRetryDelay
		} else {
			w.logger.Error("Realtime listener stopped, retrying",
				zap.String("stream", stream), zap.Duration("retryIn", delay), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, maxRetryDelay)
	}
}
