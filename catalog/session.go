package catalog

import (
	"sync"

	"phototriage/types"
)

// Session ties the store, the active filter criteria and the selection
// together for the single local user. The triage auto-advance policy
// lives here: every accepted rating or label edit moves the selection
// one step forward.
type Session struct {
	store *Store

	mu       sync.Mutex
	criteria types.FilterCriteria
	selected int
}

// NewSession wraps a store with unfiltered criteria and no selection
func NewSession(store *Store) *Session {
	return &Session{
		store:    store,
		criteria: types.Unfiltered,
		selected: NoSelection,
	}
}

// Store exposes the underlying catalog store
func (s *Session) Store() *Store {
	return s.store
}

// Scan replaces the catalog and resets the selection to the first
// visible photo. The filter criteria survive the rescan.
func (s *Session) Scan(root string, recursive bool) []types.PhotoRecord {
	s.store.Scan(root, recursive)

	s.mu.Lock()
	defer s.mu.Unlock()
	visible := ApplyFilter(s.store.Records(), s.criteria)
	s.selected = ClampSelection(0, len(visible))
	return visible
}

// Visible returns the current visible set
func (s *Session) Visible() []types.PhotoRecord {
	s.mu.Lock()
	criteria := s.criteria
	s.mu.Unlock()
	return ApplyFilter(s.store.Records(), criteria)
}

// Criteria returns the active filter criteria
func (s *Session) Criteria() types.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// SetCriteria swaps the filter criteria and re-clamps the selection
// against the new visible set.
func (s *Session) SetCriteria(criteria types.FilterCriteria) []types.PhotoRecord {
	if criteria.Label == "" {
		criteria.Label = types.LabelAny
	}
	criteria.MinRating = types.ClampRating(criteria.MinRating)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = criteria
	visible := ApplyFilter(s.store.Records(), criteria)
	s.selected = ClampSelection(s.selected, len(visible))
	return visible
}

// Selected returns the current selection index into the visible set
func (s *Session) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select moves the selection to an explicit index, clamped
func (s *Session) Select(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := ApplyFilter(s.store.Records(), s.criteria)
	s.selected = ClampSelection(index, len(visible))
	return s.selected
}

// SubmitWrite applies an optimistic edit, queues the persistent write
// and advances the selection one step. If the edit pushed the record out
// of the filtered set the selection is clamped against the shrunken set.
func (s *Session) SubmitWrite(path string, tags types.Tags) (<-chan error, bool) {
	result, ok := s.store.SubmitWrite(path, tags)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	visible := ApplyFilter(s.store.Records(), s.criteria)
	s.selected = Next(s.selected, len(visible))
	s.mu.Unlock()

	return result, true
}
