package stats

import (
	"testing"
	"time"

	"medstudy-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	at := func(h int) *time.Time {
		v := base.Add(time.Duration(h) * time.Hour)
		return &v
	}
	notebook := &entity.Notebook{UpdatedAt: base.Add(-48 * time.Hour)}

	t.Run("worked example", func(t *testing.T) {
		entries := []*entity.Entry{
			{Category: "cardio", IsResolved: true, CreatedAt: base, ResolvedAt: at(2), UpdatedAt: *at(2)},
			{Category: "cardio", IsResolved: true, CreatedAt: base, ResolvedAt: at(4), UpdatedAt: *at(4)},
			{Category: "renal", IsResolved: true, CreatedAt: base, ResolvedAt: at(6), UpdatedAt: *at(6)},
			{Category: "renal", CreatedAt: base, UpdatedAt: *at(1)},
			{CreatedAt: base, UpdatedAt: *at(3)},
		}

		s := Aggregate(notebook, entries)

		assert.Equal(t, 5, s.TotalEntries)
		assert.Equal(t, 3, s.ResolvedEntries)
		assert.Equal(t, 2, s.UnresolvedEntries)
		assert.Equal(t, map[string]int{"cardio": 2, "renal": 2}, s.EntriesByCategory)
		assert.InDelta(t, 4.0, s.AverageResolutionTimeHours, 1e-9)
		assert.Equal(t, *at(6), s.LastUpdatedAt)
	})

	t.Run("empty notebook", func(t *testing.T) {
		s := Aggregate(notebook, nil)

		assert.Zero(t, s.TotalEntries)
		assert.Zero(t, s.AverageResolutionTimeHours)
		assert.Empty(t, s.EntriesByCategory)
		assert.Equal(t, notebook.UpdatedAt, s.LastUpdatedAt)
	})

	t.Run("resolved without timestamp is not sampled", func(t *testing.T) {
		entries := []*entity.Entry{
			{IsResolved: true, CreatedAt: base, UpdatedAt: base},
			{IsResolved: true, CreatedAt: base, ResolvedAt: at(6), UpdatedAt: base},
		}

		s := Aggregate(notebook, entries)

		assert.Equal(t, 2, s.ResolvedEntries)
		assert.InDelta(t, 6.0, s.AverageResolutionTimeHours, 1e-9)
	})
}

func TestAggregateOwner(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("histograms and average", func(t *testing.T) {
		entries := []*entity.Entry{
			{Subject: "Cardiology", Difficulty: entity.DifficultyHard, Confidence: 2, IsInReviewSystem: true, CreatedAt: base},
			{Subject: "Cardiology", Difficulty: entity.DifficultyHard, Confidence: 4, CreatedAt: base.Add(3 * time.Hour)},
			{Subject: "Nephrology", Difficulty: entity.DifficultyEasy, Confidence: 5, IsInReviewSystem: true, CreatedAt: base.Add(time.Hour)},
			{Difficulty: entity.DifficultyVeryHard, Confidence: 1, CreatedAt: base.Add(2 * time.Hour)},
		}

		s := AggregateOwner(entries)

		assert.Equal(t, 4, s.TotalEntries)
		assert.Equal(t, 2, s.EntriesInReviewSystem)
		assert.Equal(t, map[entity.Difficulty]int{
			entity.DifficultyEasy:     1,
			entity.DifficultyMedium:   0,
			entity.DifficultyHard:     2,
			entity.DifficultyVeryHard: 1,
		}, s.EntriesByDifficulty)
		assert.Equal(t, map[string]int{"Cardiology": 2, "Nephrology": 1}, s.EntriesBySubject)
		assert.InDelta(t, 3.0, s.AverageConfidence, 1e-9)
		if assert.NotNil(t, s.LastEntryAt) {
			assert.Equal(t, base.Add(3*time.Hour), *s.LastEntryAt)
		}
	})

	t.Run("no entries", func(t *testing.T) {
		s := AggregateOwner(nil)

		assert.Zero(t, s.TotalEntries)
		assert.Zero(t, s.AverageConfidence)
		assert.Nil(t, s.LastEntryAt)
		assert.Empty(t, s.EntriesBySubject)
		assert.Len(t, s.EntriesByDifficulty, 4)
	})
}
