package db

import (
	"context"
	"errors"

	"couple-plans-backend-go/internal/models"
)

// ErrNotFound is returned when a document does not exist in Firestore.
var ErrNotFound = errors.New("document not found")

// PlanRepository defines the storage operations for the shared plans subcollection.
type PlanRepository interface {
	List(ctx context.Context) ([]models.Plan, error) // ordered by updatedAt desc
	GetByID(ctx context.Context, planID string) (*models.Plan, error)
	Upsert(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, planID string) error
	// Watch streams the full plan list on every change until ctx is cancelled.
	Watch(ctx context.Context, onChange func([]models.Plan)) error
}

// WorkspaceRepository defines the storage operations for the shared workspace document.
type WorkspaceRepository interface {
	GetLocations(ctx context.Context) ([]string, error)
	SetLocations(ctx context.Context, locations []string) error
	// WatchLocations streams the location list on every change until ctx is cancelled.
	WatchLocations(ctx context.Context, onChange func([]string)) error
}
