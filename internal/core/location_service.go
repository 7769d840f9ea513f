package core

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"couple-plans-backend-go/internal/db"
	"couple-plans-backend-go/internal/metrics"
	"couple-plans-backend-go/internal/mirror"
)

// MaxLocations caps the shared suggestion list.
const MaxLocations = 80

type locationService struct {
	mu        sync.RWMutex
	locations []string

	repo   db.WorkspaceRepository // nil when running without a remote store
	mirror *mirror.Store
	logger *zap.Logger
}

// NewLocationService creates a new LocationService. repo may be nil for local-only operation.
func NewLocationService(repo db.WorkspaceRepository, store *mirror.Store, logger *zap.Logger) LocationService {
	return &locationService{
		locations: []string{},
		repo:      repo,
		mirror:    store,
		logger:    logger,
	}
}

func (s *locationService) Load(ctx context.Context) error {
	local := s.mirror.Locations(ctx)
	s.mu.Lock()
	s.locations = local
	s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	remote, err := s.repo.GetLocations(ctx)
	if err != nil {
		return fmt.Errorf("load locations: %w", err)
	}
	s.ApplyRemoteLocations(ctx, remote)
	return nil
}

// AddLocationIfNew puts a trimmed location at the front of the list unless an
// equal one (ignoring case) is already present, then trims the list to MaxLocations.
// The local list is updated even when the remote write fails.
func (s *locationService) AddLocationIfNew(ctx context.Context, location string) ([]string, bool, error) {
	v := strings.TrimSpace(location)

	s.mu.Lock()
	if v == "" || containsFold(s.locations, v) {
		out := slices.Clone(s.locations)
		s.mu.Unlock()
		return out, false, nil
	}
	next := append([]string{v}, s.locations...)
	if len(next) > MaxLocations {
		next = next[:MaxLocations]
	}
	s.locations = next
	out := slices.Clone(next)
	s.mu.Unlock()

	if err := s.mirror.SetLocations(ctx, out); err != nil {
		s.logger.Warn("Failed to mirror locations", zap.Error(err))
	}
	if s.repo != nil {
		if err := s.repo.SetLocations(ctx, out); err != nil {
			metrics.RemoteSyncErrorsTotal.WithLabelValues("set_locations").Inc()
			return out, true, fmt.Errorf("%w: set locations: %w", ErrRemoteSync, err)
		}
	}
	s.logger.Info("Location added", zap.String("location", v))
	return out, true, nil
}

func (s *locationService) ListLocations(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.locations)
}

// ApplyRemoteLocations replaces the list with the remote delivery and mirrors it.
func (s *locationService) ApplyRemoteLocations(ctx context.Context, locations []string) []string {
	next := make([]string, 0, len(locations))
	for _, l := range locations {
		if l = strings.TrimSpace(l); l != "" {
			next = append(next, l)
		}
	}

	s.mu.Lock()
	s.locations = next
	s.mu.Unlock()

	if err := s.mirror.SetLocations(ctx, next); err != nil {
		s.logger.Warn("Failed to mirror remote locations", zap.Error(err))
	}
	return slices.Clone(next)
}

func containsFold(list []string, v string) bool {
	for _, x := range list {
		if strings.EqualFold(strings.TrimSpace(x), v) {
			return true
		}
	}
	return false
}
