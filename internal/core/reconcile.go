package core

import (
	"strings"

	"couple-plans-backend-go/internal/models"
)

// ReconcileRemote merges a realtime delivery with the locally mirrored plans.
// The remote list is authoritative: its membership and field values win.
// The local mirror only fills createdBy/ownerKey when the remote document lacks them.
func ReconcileRemote(remote, local []models.Plan) []models.Plan {
	byID := make(map[string]models.Plan, len(local))
	for _, lp := range local {
		byID[lp.ID] = lp
	}

	out := make([]models.Plan, 0, len(remote))
	for _, p := range remote {
		lp, hasLocal := byID[p.ID]
		if strings.TrimSpace(p.CreatedBy) == "" && hasLocal {
			p.CreatedBy = lp.CreatedBy
		}
		if p.OwnerKey == "" {
			if hasLocal && lp.OwnerKey != "" && lp.CreatedBy == p.CreatedBy {
				p.OwnerKey = lp.OwnerKey
			} else {
				p.OwnerKey = OwnerKey(p)
			}
		}
		out = append(out, p)
	}
	return out
}

// MigrateLegacy fills createdBy and ownerKey on mirrored plans written before those fields existed.
// It reports whether any plan changed.
func MigrateLegacy(plans []models.Plan, defaultOwnerEmail string) ([]models.Plan, bool) {
	changed := false
	out := make([]models.Plan, len(plans))
	for i, p := range plans {
		if strings.TrimSpace(p.CreatedBy) == "" && defaultOwnerEmail != "" {
			p.CreatedBy = defaultOwnerEmail
			p.OwnerKey = ""
			changed = true
		}
		if p.OwnerKey == "" {
			if key := OwnerKey(p); key != "" {
				p.OwnerKey = key
				changed = true
			}
		}
		out[i] = p
	}
	return out, changed
}
