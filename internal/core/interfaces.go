package core

import (
	"context"

	"couple-plans-backend-go/internal/models"
)

// PlanService defines the operations on the shared plan list.
// Every write mutates the in-memory workspace, refreshes the mirror, then pushes to the remote store.
type PlanService interface {
	// Load restores plans from the mirror (migrating legacy records) and then from the remote store.
	Load(ctx context.Context) error
	CreatePlan(ctx context.Context, actor Actor, in models.PlanInput) (*models.Plan, error)
	UpdatePlan(ctx context.Context, actor Actor, planID string, req models.UpdatePlanRequest) (*models.Plan, error)
	DeletePlan(ctx context.Context, actor Actor, planID string) error
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	ListPlans(ctx context.Context, filter models.PlanFilter) []models.Plan
	ToggleFavorite(ctx context.Context, actor Actor, planID string) (*models.Plan, error)
	// ReorderPlans returns only the plans whose order changed.
	ReorderPlans(ctx context.Context, actor Actor, req models.ReorderRequest) ([]models.Plan, error)
	ImportPlans(ctx context.Context, actor Actor, data []byte) (*models.ImportResult, error)
	ExportPlans(ctx context.Context) models.ExportFile
	// ApplyRemotePlans replaces the workspace with an authoritative remote delivery.
	ApplyRemotePlans(ctx context.Context, remote []models.Plan) []models.Plan
}

// LocationService defines the operations on the shared location suggestions.
type LocationService interface {
	Load(ctx context.Context) error
	// AddLocationIfNew returns the resulting list and whether it changed.
	AddLocationIfNew(ctx context.Context, location string) ([]string, bool, error)
	ListLocations(ctx context.Context) []string
	ApplyRemoteLocations(ctx context.Context, locations []string) []string
}

// SessionService defines sign-in and per-request authorization against the collaborator allow-list.
type SessionService interface {
	Login(ctx context.Context, identifier, password string) (*models.LoginResult, error)
	Authorize(ctx context.Context, uid, email string) (*models.Session, error)
	Logout(ctx context.Context, uid string) error
	// Lookup resolves a username or email to an allow-listed collaborator.
	Lookup(identifier string) (models.User, bool)
}

// SignIn is the result of a successful password verification with the identity provider.
type SignIn struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    string
}

// PasswordVerifier checks email/password credentials with the identity provider.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (*SignIn, error)
}

// TokenRevoker invalidates every refresh token issued to a user.
type TokenRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// EventPublisher announces plan changes to other consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event models.PlanEvent) error
}
