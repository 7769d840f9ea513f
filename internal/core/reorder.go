package core

import (
	"slices"

	"couple-plans-backend-go/internal/models"
)

// MovePlanID moves fromID to the position currently held by toID within visibleIDs.
// It returns false, and the list unchanged, when the move is a no-op.
func MovePlanID(visibleIDs []string, fromID, toID string) ([]string, bool) {
	if fromID == "" || toID == "" || fromID == toID {
		return visibleIDs, false
	}
	fromIdx := slices.Index(visibleIDs, fromID)
	toIdx := slices.Index(visibleIDs, toID)
	if fromIdx < 0 || toIdx < 0 {
		return visibleIDs, false
	}

	ids := slices.Clone(visibleIDs)
	ids = slices.Delete(ids, fromIdx, fromIdx+1)
	ids = slices.Insert(ids, toIdx, fromID)
	return ids, true
}

// ComputeOrderUpdates assigns order 1..N to the plans listed in orderedIDs and
// returns copies of only the plans whose order actually changed.
// Plans not named in orderedIDs are never touched.
func ComputeOrderUpdates(plans []models.Plan, orderedIDs []string) []models.Plan {
	next := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		if _, dup := next[id]; !dup {
			next[id] = i + 1
		}
	}

	var updates []models.Plan
	for _, p := range plans {
		order, ok := next[p.ID]
		if !ok || p.Order == order {
			continue
		}
		p.Order = order
		updates = append(updates, p)
	}
	return updates
}
