package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"couple-plans-backend-go/internal/db"
	"couple-plans-backend-go/internal/metrics"
	"couple-plans-backend-go/internal/mirror"
	"couple-plans-backend-go/internal/models"
)

var (
	ErrPlanNotFound   = errors.New("plan not found")
	ErrDuplicatePlace = errors.New("a plan with that place already exists")
	ErrInvalidPlan    = errors.New("invalid plan")
	ErrInvalidReorder = errors.New("reorder needs orderedIds or visibleIds with fromId and toId")
	ErrInvalidImport  = errors.New("import file must be a plan export or a JSON array of plans")
	ErrRemoteSync     = errors.New("remote store write failed")
	ErrMissingPlanID  = errors.New("plan ID is required")
	errMirrorRequired = errors.New("mirror store is required")
)

// PlanServiceConfig wires the dependencies of the plan service.
type PlanServiceConfig struct {
	Repo      db.PlanRepository // nil when running without a remote store
	Mirror    *mirror.Store
	Locations LocationService
	Events    EventPublisher
	Logger    *zap.Logger
	// DefaultOwnerEmail is stamped on legacy plans that have no createdBy.
	DefaultOwnerEmail string
	ExportVersion     string
	Now               func() time.Time
}

type planService struct {
	mu    sync.RWMutex
	plans []models.Plan // newest first, as delivered by the remote store

	repo              db.PlanRepository
	mirror            *mirror.Store
	locations         LocationService
	events            EventPublisher
	logger            *zap.Logger
	defaultOwnerEmail string
	exportVersion     string
	now               func() time.Time
}

// NewPlanService creates a new PlanService.
func NewPlanService(cfg PlanServiceConfig) (PlanService, error) {
	if cfg.Mirror == nil {
		return nil, errMirrorRequired
	}
	s := &planService{
		plans:             []models.Plan{},
		repo:              cfg.Repo,
		mirror:            cfg.Mirror,
		locations:         cfg.Locations,
		events:            cfg.Events,
		logger:            cfg.Logger,
		defaultOwnerEmail: cfg.DefaultOwnerEmail,
		exportVersion:     cfg.ExportVersion,
		now:               cfg.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *planService) Load(ctx context.Context) error {
	local, changed := MigrateLegacy(s.mirror.Plans(ctx), s.defaultOwnerEmail)
	if changed {
		if err := s.mirror.SetPlans(ctx, local); err != nil {
			s.logger.Warn("Failed to mirror migrated plans", zap.Error(err))
		}
		s.logger.Info("Migrated legacy plans", zap.Int("count", len(local)))
	}

	s.mu.Lock()
	s.plans = local
	s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	remote, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}
	s.ApplyRemotePlans(ctx, remote)
	return nil
}

func (s *planService) CreatePlan(ctx context.Context, actor Actor, in models.PlanInput) (*models.Plan, error) {
	in.ID = ""
	plan, err := NormalizePlan(in, actor, s.now())
	if err != nil {
		metrics.PlanWritesTotal.WithLabelValues("create", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	s.mu.Lock()
	if s.placeTaken(plan.Place, plan.ID) {
		s.mu.Unlock()
		metrics.PlanWritesTotal.WithLabelValues("create", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePlace, plan.Place)
	}
	s.plans = append([]models.Plan{plan}, s.plans...)
	s.mu.Unlock()

	s.addLocation(ctx, plan.Location)
	if err := s.persist(ctx, "create", actor, plan); err != nil {
		return &plan, err
	}
	s.logger.Info("Plan created", zap.String("planId", plan.ID), zap.String("actor", actor.Username))
	return &plan, nil
}

func (s *planService) UpdatePlan(ctx context.Context, actor Actor, planID string, req models.UpdatePlanRequest) (*models.Plan, error) {
	if planID == "" {
		return nil, ErrMissingPlanID
	}

	s.mu.Lock()
	idx := s.indexOf(planID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	in := models.InputFromPlan(s.plans[idx])
	applyUpdate(&in, req)

	plan, err := NormalizePlan(in, actor, s.now())
	if err != nil {
		s.mu.Unlock()
		metrics.PlanWritesTotal.WithLabelValues("update", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if s.placeTaken(plan.Place, plan.ID) {
		s.mu.Unlock()
		metrics.PlanWritesTotal.WithLabelValues("update", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePlace, plan.Place)
	}
	s.plans[idx] = plan
	s.mu.Unlock()

	s.addLocation(ctx, plan.Location)
	if err := s.persist(ctx, "update", actor, plan); err != nil {
		return &plan, err
	}
	s.logger.Info("Plan updated", zap.String("planId", plan.ID), zap.String("actor", actor.Username))
	return &plan, nil
}

func (s *planService) DeletePlan(ctx context.Context, actor Actor, planID string) error {
	if planID == "" {
		return ErrMissingPlanID
	}

	s.mu.Lock()
	idx := s.indexOf(planID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	removed := s.plans[idx]
	s.plans = slices.Delete(s.plans, idx, idx+1)
	s.mu.Unlock()

	s.saveMirror(ctx)
	if s.repo != nil {
		if err := s.repo.Delete(ctx, planID); err != nil {
			metrics.RemoteSyncErrorsTotal.WithLabelValues("delete").Inc()
			metrics.PlanWritesTotal.WithLabelValues("delete", metrics.ResultError).Inc()
			return fmt.Errorf("%w: %w", ErrRemoteSync, err)
		}
	}
	metrics.PlanWritesTotal.WithLabelValues("delete", metrics.ResultOK).Inc()
	s.publish(ctx, models.EventPlanDeleted, actor, removed)
	s.logger.Info("Plan deleted", zap.String("planId", planID), zap.String("actor", actor.Username))
	return nil
}

func (s *planService) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(planID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	plan := s.plans[idx]
	return &plan, nil
}

func (s *planService) ListPlans(ctx context.Context, filter models.PlanFilter) []models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ApplyFilters(s.plans, filter)
}

func (s *planService) ToggleFavorite(ctx context.Context, actor Actor, planID string) (*models.Plan, error) {
	s.mu.Lock()
	idx := s.indexOf(planID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	plan := s.plans[idx]
	plan.IsFavorite = !plan.IsFavorite
	plan.UpdatedAt = s.now().UTC()
	s.plans[idx] = plan
	s.mu.Unlock()

	if err := s.persist(ctx, "favorite", actor, plan); err != nil {
		return &plan, err
	}
	return &plan, nil
}

// ReorderPlans applies a drag or an explicit ordering. The local state is updated for
// every affected plan first; remote writes then run one at a time and stop at the first failure.
func (s *planService) ReorderPlans(ctx context.Context, actor Actor, req models.ReorderRequest) ([]models.Plan, error) {
	ordered := req.OrderedIDs
	if len(ordered) == 0 {
		if len(req.VisibleIDs) == 0 || req.FromID == "" || req.ToID == "" {
			return nil, ErrInvalidReorder
		}
		moved, ok := MovePlanID(req.VisibleIDs, req.FromID, req.ToID)
		if !ok {
			return []models.Plan{}, nil
		}
		ordered = moved
	}

	now := s.now().UTC()
	s.mu.Lock()
	updates := ComputeOrderUpdates(s.plans, ordered)
	for i := range updates {
		updates[i].UpdatedAt = now
		s.plans[s.indexOf(updates[i].ID)] = updates[i]
	}
	s.mu.Unlock()

	if len(updates) == 0 {
		return []models.Plan{}, nil
	}
	s.saveMirror(ctx)

	for _, plan := range updates {
		if err := s.pushRemote(ctx, "reorder", plan); err != nil {
			return updates, err
		}
		metrics.PlanWritesTotal.WithLabelValues("reorder", metrics.ResultOK).Inc()
		s.publish(ctx, models.EventPlanUpserted, actor, plan)
	}
	s.logger.Info("Plans reordered", zap.Int("updated", len(updates)), zap.String("actor", actor.Username))
	return updates, nil
}

// ImportPlans merges an export file (or a bare array of plans) into the workspace by id.
// Records that cannot be decoded or normalized are skipped.
func (s *planService) ImportPlans(ctx context.Context, actor Actor, data []byte) (*models.ImportResult, error) {
	raws, err := decodeImport(data)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &models.ImportResult{}
	imported := make([]models.Plan, 0, len(raws))
	for _, raw := range raws {
		var in models.PlanInput
		if err := json.Unmarshal(raw, &in); err != nil {
			result.Skipped++
			continue
		}
		plan, err := NormalizePlan(in, actor, now)
		if err != nil {
			result.Skipped++
			continue
		}
		imported = append(imported, plan)
	}
	result.Imported = len(imported)

	s.mu.Lock()
	for _, plan := range imported {
		if idx := s.indexOf(plan.ID); idx >= 0 {
			s.plans[idx] = plan
		} else {
			s.plans = append([]models.Plan{plan}, s.plans...)
		}
	}
	s.mu.Unlock()

	if len(imported) > 0 {
		s.saveMirror(ctx)
	}
	for _, plan := range imported {
		if err := s.pushRemote(ctx, "import", plan); err != nil {
			return result, err
		}
		metrics.PlanWritesTotal.WithLabelValues("import", metrics.ResultOK).Inc()
		s.publish(ctx, models.EventPlanUpserted, actor, plan)
	}
	s.logger.Info("Plans imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.String("actor", actor.Username),
	)
	return result, nil
}

func (s *planService) ExportPlans(ctx context.Context) models.ExportFile {
	s.mu.RLock()
	plans := slices.Clone(s.plans)
	s.mu.RUnlock()
	return models.ExportFile{
		Version:    s.exportVersion,
		ExportedAt: s.now().UTC(),
		Plans:      plans,
	}
}

func (s *planService) ApplyRemotePlans(ctx context.Context, remote []models.Plan) []models.Plan {
	s.mu.Lock()
	merged := ReconcileRemote(remote, s.plans)
	s.plans = merged
	out := slices.Clone(merged)
	s.mu.Unlock()

	if err := s.mirror.SetPlans(ctx, out); err != nil {
		s.logger.Warn("Failed to mirror remote plans", zap.Error(err))
	}
	return out
}

// ExportFileName names an export taken at t, e.g. couple-plans-2024-05-01.json.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("couple-plans-%s.json", t.UTC().Format("2006-01-02"))
}

// persist mirrors the workspace, pushes plan to the remote store and announces the change.
func (s *planService) persist(ctx context.Context, op string, actor Actor, plan models.Plan) error {
	s.saveMirror(ctx)
	if err := s.pushRemote(ctx, op, plan); err != nil {
		return err
	}
	metrics.PlanWritesTotal.WithLabelValues(op, metrics.ResultOK).Inc()
	s.publish(ctx, models.EventPlanUpserted, actor, plan)
	return nil
}

func (s *planService) pushRemote(ctx context.Context, op string, plan models.Plan) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Upsert(ctx, &plan); err != nil {
		metrics.RemoteSyncErrorsTotal.WithLabelValues(op).Inc()
		metrics.PlanWritesTotal.WithLabelValues(op, metrics.ResultError).Inc()
		s.logger.Error("Remote plan write failed", zap.String("op", op), zap.String("planId", plan.ID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrRemoteSync, err)
	}
	return nil
}

func (s *planService) saveMirror(ctx context.Context) {
	s.mu.RLock()
	plans := slices.Clone(s.plans)
	s.mu.RUnlock()
	if err := s.mirror.SetPlans(ctx, plans); err != nil {
		s.logger.Warn("Failed to mirror plans", zap.Error(err))
	}
}

func (s *planService) publish(ctx context.Context, eventType string, actor Actor, plan models.Plan) {
	if s.events == nil {
		return
	}
	event := models.PlanEvent{
		Type:       eventType,
		PlanID:     plan.ID,
		Place:      plan.Place,
		Status:     string(plan.Status),
		Actor:      actor.Username,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish plan event", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *planService) addLocation(ctx context.Context, location string) {
	if s.locations == nil {
		return
	}
	if _, _, err := s.locations.AddLocationIfNew(ctx, location); err != nil {
		s.logger.Warn("Failed to share new location", zap.String("location", location), zap.Error(err))
	}
}

// indexOf returns the index of planID in s.plans, or -1. Callers must hold s.mu.
func (s *planService) indexOf(planID string) int {
	return slices.IndexFunc(s.plans, func(p models.Plan) bool { return p.ID == planID })
}

// placeTaken reports whether another plan already uses place, ignoring case. Callers must hold s.mu.
func (s *planService) placeTaken(place, exceptID string) bool {
	want := strings.ToLower(strings.TrimSpace(place))
	for _, p := range s.plans {
		if p.ID != exceptID && strings.ToLower(strings.TrimSpace(p.Place)) == want {
			return true
		}
	}
	return false
}

func applyUpdate(in *models.PlanInput, req models.UpdatePlanRequest) {
	if req.Place != nil {
		in.Place = *req.Place
	}
	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.Time != nil {
		in.Time = *req.Time
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if req.Location != nil {
		in.Location = *req.Location
	}
	if req.GoogleMapLink != nil {
		in.GoogleMapLink = *req.GoogleMapLink
	}
	if req.Rating != nil {
		in.Rating = req.Rating
	}
	if req.GoAgain != nil {
		in.GoAgain = *req.GoAgain
	}
	if req.IsFavorite != nil {
		in.IsFavorite = req.IsFavorite
	}
}

func decodeImport(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrInvalidImport
	}

	var raws []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
		}
		return raws, nil
	}

	var file struct {
		Plans []json.RawMessage `json:"plans"`
	}
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	if file.Plans == nil {
		return nil, ErrInvalidImport
	}
	return file.Plans, nil
}
