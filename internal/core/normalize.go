package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"couple-plans-backend-go/internal/models"
)

// Validation errors returned by NormalizePlan.
var (
	ErrPlaceRequired    = errors.New("place is required")
	ErrLocationRequired = errors.New("location is required")
	ErrInvalidRating    = errors.New("rating must be between 0 and 5")
)

// Actor identifies who is performing a write.
type Actor struct {
	Username string
	Email    string
}

// identity is what gets stored in createdBy: the email when known, else the username.
func (a Actor) identity() string {
	if a.Email != "" {
		return a.Email
	}
	return a.Username
}

// NormalizePlan coerces a raw plan record into a valid Plan.
// Unknown enumeration values fall back to defaults; place and location are required,
// and a completed plan's rating must lie within 0..5.
func NormalizePlan(in models.PlanInput, actor Actor, now time.Time) (models.Plan, error) {
	now = now.UTC()
	plan := models.Plan{
		ID:            strings.TrimSpace(in.ID),
		Place:         strings.TrimSpace(in.Place),
		Type:          normalizeType(in.Type),
		Time:          normalizeTime(in.Time),
		Status:        normalizeStatus(in.Status),
		Location:      strings.TrimSpace(in.Location),
		GoogleMapLink: strings.TrimSpace(in.GoogleMapLink),
		GoAgain:       models.GoAgainNo,
		CreatedAt:     now,
		UpdatedAt:     now,
		CompletedAt:   in.CompletedAt,
		CreatedBy:     strings.TrimSpace(in.CreatedBy),
		CompletedBy:   strings.TrimSpace(in.CompletedBy),
		OwnerKey:      strings.TrimSpace(in.OwnerKey),
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if in.GoAgain == string(models.GoAgainYes) {
		plan.GoAgain = models.GoAgainYes
	}
	if in.IsFavorite != nil {
		plan.IsFavorite = *in.IsFavorite
	}
	if in.Order != nil {
		plan.Order = *in.Order
	}
	if in.CreatedAt != nil && !in.CreatedAt.IsZero() {
		plan.CreatedAt = in.CreatedAt.UTC()
	}
	if plan.CreatedBy == "" {
		plan.CreatedBy = actor.identity()
	}

	if plan.Place == "" {
		return models.Plan{}, ErrPlaceRequired
	}
	if plan.Location == "" {
		return models.Plan{}, ErrLocationRequired
	}

	if plan.Status == models.PlanStatusPending {
		plan.Rating = 0
		plan.GoAgain = models.GoAgainNo
		plan.CompletedAt = nil
		plan.CompletedBy = ""
	} else {
		rating := 0.0
		if in.Rating != nil {
			rating = *in.Rating
		}
		if math.IsNaN(rating) || math.IsInf(rating, 0) {
			return models.Plan{}, ErrInvalidRating
		}
		rating = math.Round(rating)
		if rating < 0 || rating > 5 {
			return models.Plan{}, ErrInvalidRating
		}
		plan.Rating = int(rating)
		if plan.CompletedAt == nil || plan.CompletedAt.IsZero() {
			completedAt := now
			plan.CompletedAt = &completedAt
		}
		if plan.CompletedBy == "" {
			plan.CompletedBy = actor.Username
		}
	}

	if plan.OwnerKey == "" {
		plan.OwnerKey = OwnerKey(plan)
	}
	return plan, nil
}

func normalizeType(v string) models.PlanType {
	if v == string(models.PlanTypeFood) {
		return models.PlanTypeFood
	}
	return models.PlanTypeVisit
}

func normalizeTime(v string) models.PlanTime {
	switch models.PlanTime(v) {
	case models.PlanTimeDay, models.PlanTimeAfternoon, models.PlanTimeNight:
		return models.PlanTime(v)
	}
	return models.PlanTimeNight
}

func normalizeStatus(v string) models.PlanStatus {
	if v == string(models.PlanStatusCompleted) {
		return models.PlanStatusCompleted
	}
	return models.PlanStatusPending
}

// OwnerKey derives a short owner key ("michel") from createdBy, falling back to completedBy.
// Email addresses keep their local part; display names keep their first word.
func OwnerKey(p models.Plan) string {
	raw := p.CreatedBy
	if raw == "" {
		raw = p.CompletedBy
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if at := strings.Index(s, "@"); at > 0 {
		return s[:at]
	}
	if fields := strings.Fields(s); len(fields) > 1 {
		return fields[0]
	}
	return s
}
