package db

import (
	"math"
	"time"

	"couple-plans-backend-go/internal/models"
)

// planDocument mirrors a stored plan, with the fields that older web clients wrote
// in other shapes (ISO date strings, double-typed numbers) left untyped.
type planDocument struct {
	models.Plan
	Rating      interface{} `firestore:"rating"`
	Order       interface{} `firestore:"order"`
	CreatedAt   interface{} `firestore:"createdAt"`
	UpdatedAt   interface{} `firestore:"updatedAt"`
	CompletedAt interface{} `firestore:"completedAt"`
}

func (d planDocument) toPlan(id string) models.Plan {
	plan := d.Plan
	plan.ID = id
	plan.Rating = docInt(d.Rating)
	plan.Order = docInt(d.Order)
	plan.CreatedAt = docTime(d.CreatedAt)
	plan.UpdatedAt = docTime(d.UpdatedAt)
	if t := docTime(d.CompletedAt); !t.IsZero() {
		plan.CompletedAt = &t
	} else {
		plan.CompletedAt = nil
	}
	if plan.UpdatedAt.IsZero() {
		plan.UpdatedAt = plan.CreatedAt
	}
	return plan
}

func docInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(math.Round(n))
	}
	return 0
}

func docTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		parsed, _ := models.ParseTimestamp(t)
		return parsed
	}
	return time.Time{}
}
