package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"couple-plans-backend-go/internal/models"
)

func TestMovePlanID(t *testing.T) {
	visible := []string{"a", "b", "c", "d"}

	got, ok := MovePlanID(visible, "a", "c")
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c", "a", "d"}, got)

	got, ok = MovePlanID(visible, "d", "b")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "d", "b", "c"}, got)

	assert.Equal(t, []string{"a", "b", "c", "d"}, visible, "input is not mutated")
}

func TestMovePlanID_NoOps(t *testing.T) {
	visible := []string{"a", "b"}
	for _, tc := range [][2]string{{"a", "a"}, {"", "b"}, {"a", "zz"}, {"zz", "a"}} {
		got, ok := MovePlanID(visible, tc[0], tc[1])
		assert.False(t, ok)
		assert.Equal(t, visible, got)
	}
}

func TestComputeOrderUpdates(t *testing.T) {
	plans := []models.Plan{
		{ID: "a", Order: 1},
		{ID: "b", Order: 5},
		{ID: "c", Order: 0},
		{ID: "hidden", Order: 7},
	}

	updates := ComputeOrderUpdates(plans, []string{"a", "c", "b"})

	got := map[string]int{}
	for _, u := range updates {
		got[u.ID] = u.Order
	}
	assert.Equal(t, map[string]int{"c": 2, "b": 3}, got, "only changed plans are returned")
	assert.Equal(t, 5, plans[1].Order, "input is not mutated")
}

func TestComputeOrderUpdates_NothingChanged(t *testing.T) {
	plans := []models.Plan{{ID: "a", Order: 1}, {ID: "b", Order: 2}}
	assert.Empty(t, ComputeOrderUpdates(plans, []string{"a", "b"}))
}
