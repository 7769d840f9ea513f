package models

// LoginRequest is the body for POST /auth/login.
// Identifier accepts either a collaborator username ("michel") or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UpdatePlanRequest carries the editable plan fields.
// Pointers distinguish fields that were not sent from fields cleared on purpose.
type UpdatePlanRequest struct {
	Place         *string  `json:"place,omitempty"`
	Type          *string  `json:"type,omitempty"`
	Time          *string  `json:"time,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Location      *string  `json:"location,omitempty"`
	GoogleMapLink *string  `json:"googleMapLink,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	GoAgain       *string  `json:"goAgain,omitempty"`
	IsFavorite    *bool    `json:"isFavorite,omitempty"`
}

// ReorderRequest is the body for POST /plans/reorder.
// Either send the full new ordering in OrderedIDs, or the visible list plus the
// dragged id (FromID) and the id it was dropped on (ToID).
type ReorderRequest struct {
	VisibleIDs []string `json:"visibleIds,omitempty"`
	FromID     string   `json:"fromId,omitempty"`
	ToID       string   `json:"toId,omitempty"`
	OrderedIDs []string `json:"orderedIds,omitempty"`
}

// AddLocationRequest is the body for POST /locations.
type AddLocationRequest struct {
	Location string `json:"location" binding:"required"`
}

// PlanFilter selects and orders plans for a list view.
// Empty or "all" single selectors disable that filter; empty tag lists do too.
type PlanFilter struct {
	Query     string   `form:"q"`
	Status    string   `form:"status"`
	Type      string   `form:"type"`
	Time      string   `form:"time"`
	TagTypes  []string `form:"types"`
	TagTimes  []string `form:"times"`
	TagOwners []string `form:"owners"`
	Sort      string   `form:"sort"` // "none" | "az" | "za"
}

const (
	FilterAll = "all"
	SortNone  = "none"
	SortAZ    = "az"
	SortZA    = "za"
)
