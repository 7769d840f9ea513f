package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-plans-backend-go/internal/models"
)

var (
	testNow   = time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	michel    = Actor{Username: "michel", Email: "michel@couple-plans.local"}
	sarahi    = Actor{Username: "sarahi", Email: "sarahi@couple-plans.local"}
	floatPtr  = func(v float64) *float64 { return &v }
	stringPtr = func(v string) *string { return &v }
)

func TestNormalizePlan_Defaults(t *testing.T) {
	plan, err := NormalizePlan(models.PlanInput{
		Place:    "  Mirador Obispado ",
		Location: " Monterrey ",
		Type:     "Bogus",
		Time:     "Madrugada",
		Status:   "Whatever",
	}, michel, testNow)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, "Mirador Obispado", plan.Place)
	assert.Equal(t, "Monterrey", plan.Location)
	assert.Equal(t, models.PlanTypeVisit, plan.Type)
	assert.Equal(t, models.PlanTimeNight, plan.Time)
	assert.Equal(t, models.PlanStatusPending, plan.Status)
	assert.Equal(t, models.GoAgainNo, plan.GoAgain)
	assert.Equal(t, testNow, plan.CreatedAt)
	assert.Equal(t, testNow, plan.UpdatedAt)
	assert.Equal(t, "michel@couple-plans.local", plan.CreatedBy)
	assert.Equal(t, "michel", plan.OwnerKey)
}

func TestNormalizePlan_PendingClearsCompletion(t *testing.T) {
	completed := testNow.Add(-time.Hour)
	plan, err := NormalizePlan(models.PlanInput{
		Place:       "Tacos",
		Location:    "San Pedro",
		Type:        "Comida",
		Time:        "Día",
		Status:      "Pendiente",
		Rating:      floatPtr(9),
		GoAgain:     "Sí",
		CompletedAt: &completed,
		CompletedBy: "sarahi",
	}, michel, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, plan.Rating)
	assert.Equal(t, models.GoAgainNo, plan.GoAgain)
	assert.Nil(t, plan.CompletedAt)
	assert.Empty(t, plan.CompletedBy)
	assert.Equal(t, models.PlanTypeFood, plan.Type)
	assert.Equal(t, models.PlanTimeDay, plan.Time)
}

func TestNormalizePlan_CompletedStampsCompletion(t *testing.T) {
	plan, err := NormalizePlan(models.PlanInput{
		Place:    "Fundidora",
		Location: "Monterrey",
		Status:   "Completado",
		Rating:   floatPtr(4.4),
		GoAgain:  "Sí",
	}, sarahi, testNow)
	require.NoError(t, err)

	assert.Equal(t, 4, plan.Rating)
	assert.Equal(t, models.GoAgainYes, plan.GoAgain)
	require.NotNil(t, plan.CompletedAt)
	assert.Equal(t, testNow, *plan.CompletedAt)
	assert.Equal(t, "sarahi", plan.CompletedBy)
}

func TestNormalizePlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   models.PlanInput
		want error
	}{
		{"missing place", models.PlanInput{Place: "   ", Location: "Monterrey"}, ErrPlaceRequired},
		{"missing location", models.PlanInput{Place: "Tacos", Location: ""}, ErrLocationRequired},
		{"rating too high", models.PlanInput{Place: "Tacos", Location: "Mty", Status: "Completado", Rating: floatPtr(6)}, ErrInvalidRating},
		{"negative rating", models.PlanInput{Place: "Tacos", Location: "Mty", Status: "Completado", Rating: floatPtr(-1)}, ErrInvalidRating},
		{"nan rating", models.PlanInput{Place: "Tacos", Location: "Mty", Status: "Completado", Rating: floatPtr(math.NaN())}, ErrInvalidRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePlan(tt.in, michel, testNow)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizePlan_KeepsProvidedIdentity(t *testing.T) {
	created := testNow.Add(-48 * time.Hour)
	order := 3
	fav := true
	plan, err := NormalizePlan(models.PlanInput{
		ID:         "plan-1",
		Place:      "Chipinque",
		Location:   "San Pedro",
		CreatedAt:  &created,
		CreatedBy:  "sarahi@couple-plans.local",
		Order:      &order,
		IsFavorite: &fav,
	}, michel, testNow)
	require.NoError(t, err)

	assert.Equal(t, "plan-1", plan.ID)
	assert.Equal(t, created, plan.CreatedAt)
	assert.Equal(t, "sarahi@couple-plans.local", plan.CreatedBy)
	assert.Equal(t, "sarahi", plan.OwnerKey)
	assert.Equal(t, 3, plan.Order)
	assert.True(t, plan.IsFavorite)
}

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, "michel", OwnerKey(models.Plan{CreatedBy: "Michel@Couple-Plans.local"}))
	assert.Equal(t, "sarahi", OwnerKey(models.Plan{CreatedBy: "Sarahi Lopez"}))
	assert.Equal(t, "sarahi", OwnerKey(models.Plan{CompletedBy: "sarahi"}))
	assert.Empty(t, OwnerKey(models.Plan{}))
}
