package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"couple-plans-backend-go/internal/models"
)

func planIDs(plans []models.Plan) []string {
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return ids
}

func samplePlans() []models.Plan {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []models.Plan{
		{ID: "a", Place: "Tacos Orinoco", Location: "Monterrey", Type: models.PlanTypeFood, Time: models.PlanTimeNight, Status: models.PlanStatusPending, Order: 2, UpdatedAt: base, OwnerKey: "michel"},
		{ID: "b", Place: "Parque Fundidora", Location: "Monterrey", Type: models.PlanTypeVisit, Time: models.PlanTimeDay, Status: models.PlanStatusCompleted, Order: 1, UpdatedAt: base.Add(time.Hour), CreatedBy: "sarahi@couple-plans.local"},
		{ID: "c", Place: "Chipinque", Location: "San Pedro", Type: models.PlanTypeVisit, Time: models.PlanTimeAfternoon, Status: models.PlanStatusPending, Order: 0, UpdatedAt: base.Add(2 * time.Hour), IsFavorite: true, OwnerKey: "sarahi"},
		{ID: "d", Place: "El Gran Pastor", Location: "san pedro garza", Type: models.PlanTypeFood, Time: models.PlanTimeNight, Status: models.PlanStatusPending, Order: 2, UpdatedAt: base.Add(3 * time.Hour), OwnerKey: "michel"},
	}
}

func TestApplyFilters_DefaultOrder(t *testing.T) {
	plans := samplePlans()
	got := ApplyFilters(plans, models.PlanFilter{})

	// favorite first, then order asc, then updatedAt desc for equal order
	assert.Equal(t, []string{"c", "b", "d", "a"}, planIDs(got))
	assert.Equal(t, "a", plans[0].ID, "input must not be reordered")
}

func TestApplyFilters_QueryIsCaseInsensitive(t *testing.T) {
	got := ApplyFilters(samplePlans(), models.PlanFilter{Query: "  SAN PEDRO "})
	assert.ElementsMatch(t, []string{"c", "d"}, planIDs(got))

	got = ApplyFilters(samplePlans(), models.PlanFilter{Query: "fundi"})
	assert.Equal(t, []string{"b"}, planIDs(got))
}

func TestApplyFilters_SingleSelectors(t *testing.T) {
	got := ApplyFilters(samplePlans(), models.PlanFilter{Status: "Pendiente", Type: "Comida", Time: models.FilterAll})
	assert.Equal(t, []string{"d", "a"}, planIDs(got))
}

func TestApplyFilters_TagsUseAnyOf(t *testing.T) {
	got := ApplyFilters(samplePlans(), models.PlanFilter{TagTimes: []string{"Día", "Tarde"}})
	assert.Equal(t, []string{"c", "b"}, planIDs(got))

	got = ApplyFilters(samplePlans(), models.PlanFilter{TagTypes: []string{}})
	assert.Len(t, got, 4, "empty tag list disables the filter")
}

func TestApplyFilters_OwnerTags(t *testing.T) {
	got := ApplyFilters(samplePlans(), models.PlanFilter{TagOwners: []string{"Sarahi"}})
	assert.Equal(t, []string{"c", "b"}, planIDs(got), "owner derived from createdBy when ownerKey is blank")

	got = ApplyFilters(samplePlans(), models.PlanFilter{TagOwners: []string{"mich"}})
	assert.Equal(t, []string{"d", "a"}, planIDs(got))
}

func TestApplyFilters_Alphabetical(t *testing.T) {
	got := ApplyFilters(samplePlans(), models.PlanFilter{Sort: models.SortAZ})
	assert.Equal(t, []string{"c", "d", "b", "a"}, planIDs(got))

	got = ApplyFilters(samplePlans(), models.PlanFilter{Sort: models.SortZA})
	assert.Equal(t, []string{"a", "b", "d", "c"}, planIDs(got))
}

func TestToggleTag(t *testing.T) {
	tags := ToggleTag(nil, "Comida")
	assert.Equal(t, []string{"Comida"}, tags)

	tags = ToggleTag(tags, "Visitar")
	assert.Equal(t, []string{"Comida", "Visitar"}, tags)

	assert.Equal(t, []string{"Visitar"}, ToggleTag(tags, "Comida"))
	assert.Equal(t, []string{"Comida", "Visitar"}, tags, "input is not mutated")
}
