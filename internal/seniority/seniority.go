// Package seniority ranks competing claims by registration order.
package seniority

import (
	"sort"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// Classify returns a copy of records sorted by registration date, ties
// broken by priority number, with Seniority set from each position.
func Classify(records []model.EncumbranceRecord) []model.EncumbranceRecord {
	out := append([]model.EncumbranceRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].Priority < out[j].Priority
	})
	for i := range out {
		out[i].Seniority = model.SeniorityForPosition(i + 1)
	}
	return out
}

// Combine joins mortgages and existing lease rights for classification.
func Combine(mortgages, leaseRights []model.EncumbranceRecord) []model.EncumbranceRecord {
	out := make([]model.EncumbranceRecord, 0, len(mortgages)+len(leaseRights))
	out = append(out, mortgages...)
	return append(out, leaseRights...)
}
