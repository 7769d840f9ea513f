package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"couple-plans-backend-go/internal/db"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/models"
	"couple-plans-backend-go/pkg/cache"
)

var errBoom = errors.New("boom")

func nopLogger() *zap.Logger { return zap.NewNop() }

type fakePlanRepo struct {
	mu      sync.Mutex
	plans   map[string]models.Plan
	writes  []string // ids in write order
	deletes []string
	failOn  map[string]bool // fail Upsert for these ids
	failAll bool
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[string]models.Plan{}, failOn: map[string]bool{}}
}

func (r *fakePlanRepo) List(ctx context.Context) ([]models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, errBoom
	}
	out := make([]models.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, planID string) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (r *fakePlanRepo) Upsert(ctx context.Context, plan *models.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll || r.failOn[plan.ID] {
		return errBoom
	}
	r.plans[plan.ID] = *plan
	r.writes = append(r.writes, plan.ID)
	return nil
}

func (r *fakePlanRepo) Delete(ctx context.Context, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return errBoom
	}
	delete(r.plans, planID)
	r.deletes = append(r.deletes, planID)
	return nil
}

func (r *fakePlanRepo) Watch(ctx context.Context, onChange func([]models.Plan)) error {
	<-ctx.Done()
	return nil
}

type fakeWorkspaceRepo struct {
	mu        sync.Mutex
	locations []string
	sets      int
	fail      bool
}

func (r *fakeWorkspaceRepo) GetLocations(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errBoom
	}
	return append([]string{}, r.locations...), nil
}

func (r *fakeWorkspaceRepo) SetLocations(ctx context.Context, locations []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errBoom
	}
	r.locations = append([]string{}, locations...)
	r.sets++
	return nil
}

func (r *fakeWorkspaceRepo) WatchLocations(ctx context.Context, onChange func([]string)) error {
	<-ctx.Done()
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.PlanEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event models.PlanEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fakeVerifier struct {
	calls  int
	signIn *SignIn
	err    error
}

func (v *fakeVerifier) VerifyPassword(ctx context.Context, email, password string) (*SignIn, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return v.signIn, nil
}

type fakeRevoker struct {
	revoked []string
}

func (r *fakeRevoker) RevokeRefreshTokens(ctx context.Context, uid string) error {
	r.revoked = append(r.revoked, uid)
	return nil
}

type planFixture struct {
	svc       PlanService
	repo      *fakePlanRepo
	workspace *fakeWorkspaceRepo
	events    *fakePublisher
	mirror    *mirror.Store
	locations LocationService
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()
	store := mirror.New(cache.NewMemoryCache(), nil, nil)
	f := &planFixture{
		repo:      newFakePlanRepo(),
		workspace: &fakeWorkspaceRepo{},
		events:    &fakePublisher{},
		mirror:    store,
	}
	f.locations = NewLocationService(f.workspace, store, nopLogger())
	svc, err := NewPlanService(PlanServiceConfig{
		Repo:              f.repo,
		Mirror:            store,
		Locations:         f.locations,
		Events:            f.events,
		Logger:            nopLogger(),
		DefaultOwnerEmail: "michel@couple-plans.local",
		ExportVersion:     "1.2.3",
		Now:               func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("NewPlanService: %v", err)
	}
	f.svc = svc
	return f
}
