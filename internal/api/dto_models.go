package api

import "couple-plans-backend-go/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A user-facing message
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PlanListResponse is returned by GET /plans.
type PlanListResponse struct {
	Plans []models.Plan `json:"plans"`
	Count int           `json:"count"`
}

// ReorderResponse lists the plans whose order changed.
type ReorderResponse struct {
	Updated []models.Plan `json:"updated"`
}

// LocationsResponse is returned by the location endpoints.
type LocationsResponse struct {
	Locations []string `json:"locations"`
	Added     bool     `json:"added,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
