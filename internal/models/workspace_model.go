package models

import "time"

// Workspace is the single shared document holding state common to all plans.
type Workspace struct {
	ID        string    `json:"id" firestore:"-"`
	Locations []string  `json:"locations" firestore:"locations"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ExportFile is the on-disk format of a plan export.
type ExportFile struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Plans      []Plan    `json:"plans"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// PlanEvent is emitted after a plan is written or removed.
type PlanEvent struct {
	Type       string    `json:"type"` // "plan.upserted" | "plan.deleted"
	PlanID     string    `json:"planId"`
	Place      string    `json:"place,omitempty"`
	Status     string    `json:"status,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

const (
	EventPlanUpserted = "plan.upserted"
	EventPlanDeleted  = "plan.deleted"
)
