package stats

import (
	"medstudy-be/internal/entity"
)

// Aggregate folds the entries of one notebook into its statistics in a single pass.
//
// Entries without a category are not counted in EntriesByCategory. The average resolution time
// only considers resolved entries that carry both timestamps and is zero when there are none.
// LastUpdatedAt is the newest entry update, or the notebook's own update time when it is empty.
func Aggregate(notebook *entity.Notebook, entries []*entity.Entry) *entity.NotebookStats {
	s := &entity.NotebookStats{
		EntriesByCategory: make(map[string]int),
		LastUpdatedAt:     notebook.UpdatedAt,
	}

	var resolutionHours float64
	var resolutionSamples int

	for i, e := range entries {
		s.TotalEntries++
		if e.IsResolved {
			s.ResolvedEntries++
			if e.ResolvedAt != nil && !e.CreatedAt.IsZero() {
				resolutionHours += e.ResolvedAt.Sub(e.CreatedAt).Hours()
				resolutionSamples++
			}
		}
		if e.Category != "" {
			s.EntriesByCategory[e.Category]++
		}
		if i == 0 || e.UpdatedAt.After(s.LastUpdatedAt) {
			s.LastUpdatedAt = e.UpdatedAt
		}
	}

	s.UnresolvedEntries = s.TotalEntries - s.ResolvedEntries
	if resolutionSamples > 0 {
		s.AverageResolutionTimeHours = resolutionHours / float64(resolutionSamples)
	}
	return s
}

// AggregateOwner folds all entries of one owner in a single pass. Every difficulty is present in
// EntriesByDifficulty, entries without a subject are left out of EntriesBySubject and the
// average confidence of an empty set is zero.
func AggregateOwner(entries []*entity.Entry) *entity.OwnerEntryStats {
	s := &entity.OwnerEntryStats{
		EntriesByDifficulty: map[entity.Difficulty]int{
			entity.DifficultyEasy:     0,
			entity.DifficultyMedium:   0,
			entity.DifficultyHard:     0,
			entity.DifficultyVeryHard: 0,
		},
		EntriesBySubject: make(map[string]int),
	}

	var confidence int
	for _, e := range entries {
		s.TotalEntries++
		if e.IsInReviewSystem {
			s.EntriesInReviewSystem++
		}
		if e.Difficulty.Valid() {
			s.EntriesByDifficulty[e.Difficulty]++
		}
		if e.Subject != "" {
			s.EntriesBySubject[e.Subject]++
		}
		confidence += e.Confidence
		if !e.CreatedAt.IsZero() && (s.LastEntryAt == nil || e.CreatedAt.After(*s.LastEntryAt)) {
			at := e.CreatedAt
			s.LastEntryAt = &at
		}
	}

	if s.TotalEntries > 0 {
		s.AverageConfidence = float64(confidence) / float64(s.TotalEntries)
	}
	return s
}
