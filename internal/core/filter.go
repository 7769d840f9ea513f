package core

import (
	"slices"
	"sort"
	"strings"

	"couple-plans-backend-go/internal/models"
)

// ApplyFilters returns the plans matching filter, in display order.
// The input slice is left untouched.
func ApplyFilters(plans []models.Plan, filter models.PlanFilter) []models.Plan {
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]models.Plan, 0, len(plans))
	for _, p := range plans {
		if matchesFilter(p, q, filter) {
			out = append(out, p)
		}
	}

	switch filter.Sort {
	case models.SortAZ, models.SortZA:
		desc := filter.Sort == models.SortZA
		sort.SliceStable(out, func(i, j int) bool {
			pi := strings.ToLower(strings.TrimSpace(out[i].Place))
			pj := strings.ToLower(strings.TrimSpace(out[j].Place))
			if pi != pj {
				if desc {
					return pi > pj
				}
				return pi < pj
			}
			return priorityLess(out[i], out[j])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return priorityLess(out[i], out[j])
		})
	}
	return out
}

// priorityLess orders favorites first, then ascending manual order, then most recently updated.
func priorityLess(a, b models.Plan) bool {
	if a.IsFavorite != b.IsFavorite {
		return a.IsFavorite
	}
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

func matchesFilter(p models.Plan, q string, f models.PlanFilter) bool {
	if q != "" {
		hay := strings.ToLower(p.Place + " " + p.Location)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	if selected(f.Status) && string(p.Status) != f.Status {
		return false
	}
	if selected(f.Type) && string(p.Type) != f.Type {
		return false
	}
	if selected(f.Time) && string(p.Time) != f.Time {
		return false
	}
	if len(f.TagTypes) > 0 && !slices.Contains(f.TagTypes, string(p.Type)) {
		return false
	}
	if len(f.TagTimes) > 0 && !slices.Contains(f.TagTimes, string(p.Time)) {
		return false
	}
	if len(f.TagOwners) > 0 && !matchesOwner(p, f.TagOwners) {
		return false
	}
	return true
}

func selected(v string) bool {
	return v != "" && v != models.FilterAll
}

func matchesOwner(p models.Plan, owners []string) bool {
	key := p.OwnerKey
	if key == "" {
		key = OwnerKey(p)
	}
	key = strings.ToLower(key)
	if key == "" {
		return false
	}
	for _, o := range owners {
		sel := strings.ToLower(strings.TrimSpace(o))
		if sel == "" {
			continue
		}
		if key == sel || strings.Contains(key, sel) || strings.Contains(sel, key) {
			return true
		}
	}
	return false
}

// ToggleTag adds value to tags if absent and removes it otherwise.
func ToggleTag(tags []string, value string) []string {
	out := slices.Clone(tags)
	if i := slices.Index(out, value); i >= 0 {
		return slices.Delete(out, i, i+1)
	}
	return append(out, value)
}
