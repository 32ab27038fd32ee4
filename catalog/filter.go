package catalog

import "phototriage/types"

// ApplyFilter derives the visible set from a catalog and filter
// criteria. It is a pure function: the input slice is never mutated, the
// catalog's ascending-name order is preserved, and running it twice
// yields the same result.
func ApplyFilter(records []types.PhotoRecord, criteria types.FilterCriteria) []types.PhotoRecord {
	minRating := types.ClampRating(criteria.MinRating)

	visible := make([]types.PhotoRecord, 0, len(records))
	for _, r := range records {
		if r.Rating < minRating {
			continue
		}
		if criteria.Label != types.LabelAny && r.Label != criteria.Label {
			continue
		}
		visible = append(visible, r)
	}
	return visible
}
