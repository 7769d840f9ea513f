package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/pkg/cache"
)

type streamingPlanRepo struct {
	deliveries [][]models.Plan
	watchCalls atomic.Int32
	failFirst  bool
}

func (r *streamingPlanRepo) List(context.Context) ([]models.Plan, error) { return nil, nil }
func (r *streamingPlanRepo) GetByID(context.Context, string) (*models.Plan, error) { return nil, nil }
func (r *streamingPlanRepo) Upsert(context.Context, *models.Plan) error { return nil }
func (r *streamingPlanRepo) Delete(context.Context, string) error { return nil }

func (r *streamingPlanRepo) Watch(ctx context.Context, onChange func([]models.Plan)) error {
	if r.watchCalls.Add(1) == 1 && r.failFirst {
		return errors.New("listener dropped")
	}
	for _, d := range r.deliveries {
		onChange(d)
	}
	<-ctx.Done()
	return nil
}

type streamingWorkspaceRepo struct {
	delivery []string
}

func (r *streamingWorkspaceRepo) GetLocations(context.Context) ([]string, error) { return nil, nil }
func (r *streamingWorkspaceRepo) SetLocations(context.Context, []string) error { return nil }

func (r *streamingWorkspaceRepo) WatchLocations(ctx context.Context, onChange func([]string)) error {
	onChange(r.delivery)
	<-ctx.Done()
	return nil
}

func TestWatcher_ForwardsReconciledSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := mirror.New(cache.NewMemoryCache(), nil, nil)
	require.NoError(t, store.SetPlans(ctx, []models.Plan{{ID: "p1", CreatedBy: "sarahi@couple-plans.local", OwnerKey: "sarahi"}}))

	plans, err := core.NewPlanService(core.PlanServiceConfig{Mirror: store})
	require.NoError(t, err)
	require.NoError(t, plans.Load(ctx))
	locations := core.NewLocationService(nil, store, zap.NewNop())

	planRepo := &streamingPlanRepo{deliveries: [][]models.Plan{{{ID: "p1", Place: "Chipinque"}}}}
	workspaceRepo := &streamingWorkspaceRepo{delivery: []string{"San Pedro"}}
	hub := NewHub()
	sub, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	w := NewWatcher(planRepo, workspaceRepo, plans, locations, hub, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	got := map[string]Snapshot{}
	for len(got) < 2 {
		waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
		snaps, err := sub.Next(waitCtx)
		waitCancel()
		require.NoError(t, err)
		for _, s := range snaps {
			got[s.Kind] = s
		}
	}

	require.Len(t, got[KindPlans].Plans, 1)
	assert.Equal(t, "Chipinque", got[KindPlans].Plans[0].Place)
	assert.Equal(t, "sarahi@couple-plans.local", got[KindPlans].Plans[0].CreatedBy)
	assert.Equal(t, []string{"San Pedro"}, got[KindLocations].Locations)
	assert.Equal(t, []string{"San Pedro"}, store.Locations(ctx))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_RestartsFailedListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := mirror.New(cache.NewMemoryCache(), nil, nil)
	plans, err := core.NewPlanService(core.PlanServiceConfig{Mirror: store})
	require.NoError(t, err)
	locations := core.NewLocationService(nil, store, zap.NewNop())

	planRepo := &streamingPlanRepo{failFirst: true, deliveries: [][]models.Plan{{{ID: "p1"}}}}
	w := NewWatcher(planRepo, &streamingWorkspaceRepo{}, plans, locations, NewHub(), zap.NewNop())
	go func() { _ = w.Run(ctx) }()

	assert.Eventually(t, func() bool { return planRepo.watchCalls.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, err := plans.GetPlan(ctx, "p1")
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
}
