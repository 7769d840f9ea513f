package models

import "time"

// PlanType is the kind of outing a plan describes.
type PlanType string

const (
	PlanTypeFood  PlanType = "Comida"
	PlanTypeVisit PlanType = "Visitar"
)

// PlanTime is the preferred time of day for a plan.
type PlanTime string

const (
	PlanTimeDay       PlanTime = "Día"
	PlanTimeAfternoon PlanTime = "Tarde"
	PlanTimeNight     PlanTime = "Noche"
)

// PlanStatus tracks whether a plan has been done.
type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "Pendiente"
	PlanStatusCompleted PlanStatus = "Completado"
)

// GoAgain records whether the collaborators would repeat a completed plan.
type GoAgain string

const (
	GoAgainYes GoAgain = "Sí"
	GoAgainNo  GoAgain = "No"
)

// Plan is a single place/activity entry shared by the workspace collaborators.
// Plans live as documents under workspaces/{workspaceId}/plans/{planId}.
type Plan struct {
	ID            string     `json:"id" firestore:"-"` // Document ID
	Place         string     `json:"place" firestore:"place"`
	Type          PlanType   `json:"type" firestore:"type"`
	Time          PlanTime   `json:"time" firestore:"time"`
	Status        PlanStatus `json:"status" firestore:"status"`
	Location      string     `json:"location" firestore:"location"`
	GoogleMapLink string     `json:"googleMapLink,omitempty" firestore:"googleMapLink,omitempty"`
	Rating        int        `json:"rating" firestore:"rating"` // 0..5, only meaningful when completed
	GoAgain       GoAgain    `json:"goAgain" firestore:"goAgain"`
	IsFavorite    bool       `json:"isFavorite" firestore:"isFavorite"`
	Order         int        `json:"order" firestore:"order"` // Smaller = higher priority
	CreatedAt     time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt" firestore:"updatedAt"`
	CompletedAt   *time.Time `json:"completedAt" firestore:"completedAt"`
	CreatedBy     string     `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	CompletedBy   string     `json:"completedBy,omitempty" firestore:"completedBy,omitempty"`
	OwnerKey      string     `json:"ownerKey,omitempty" firestore:"ownerKey,omitempty"` // e.g. "michel"
}

// IsCompleted reports whether the plan has been marked as done.
func (p Plan) IsCompleted() bool {
	return p.Status == PlanStatusCompleted
}

// PlanInput is a raw plan record as submitted by a client or read from an import file.
// Every field is optional; NormalizePlan coerces it into a valid Plan.
type PlanInput struct {
	ID            string     `json:"id,omitempty"`
	Place         string     `json:"place"`
	Type          string     `json:"type"`
	Time          string     `json:"time"`
	Status        string     `json:"status"`
	Location      string     `json:"location"`
	GoogleMapLink string     `json:"googleMapLink,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	GoAgain       string     `json:"goAgain,omitempty"`
	IsFavorite    *bool      `json:"isFavorite,omitempty"`
	Order         *int       `json:"order,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	CompletedBy   string     `json:"completedBy,omitempty"`
	OwnerKey      string     `json:"ownerKey,omitempty"`
}

// InputFromPlan converts a stored plan back to an input so it can be re-normalized after edits.
func InputFromPlan(p Plan) PlanInput {
	rating := float64(p.Rating)
	fav := p.IsFavorite
	order := p.Order
	createdAt := p.CreatedAt
	in := PlanInput{
		ID:            p.ID,
		Place:         p.Place,
		Type:          string(p.Type),
		Time:          string(p.Time),
		Status:        string(p.Status),
		Location:      p.Location,
		GoogleMapLink: p.GoogleMapLink,
		Rating:        &rating,
		GoAgain:       string(p.GoAgain),
		IsFavorite:    &fav,
		Order:         &order,
		CompletedAt:   p.CompletedAt,
		CreatedBy:     p.CreatedBy,
		CompletedBy:   p.CompletedBy,
		OwnerKey:      p.OwnerKey,
	}
	if !createdAt.IsZero() {
		in.CreatedAt = &createdAt
	}
	return in
}
