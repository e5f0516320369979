package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Factory func(t *testing.T) contract.Backend

// Run executes the full behavioural suite against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("NotebookLifecycle", func(t *testing.T) { testNotebookLifecycle(t, NewHarness(newBackend(t))) })
	t.Run("FallbackEquivalence", func(t *testing.T) { testFallbackEquivalence(t, newBackend(t)) })
	t.Run("PaginationExhaustive", func(t *testing.T) { testPaginationExhaustive(t, NewHarness(newBackend(t))) })
	t.Run("SearchTotals", func(t *testing.T) { testSearchTotals(t, newBackend(t)) })
	t.Run("Counters", func(t *testing.T) { testCounters(t, NewHarness(newBackend(t))) })
	t.Run("ConcurrentCounters", func(t *testing.T) { testConcurrentCounters(t, NewHarness(newBackend(t))) })
	t.Run("Cascade", func(t *testing.T) { testCascade(t, NewHarness(newBackend(t))) })
	t.Run("CreateDuringCascade", func(t *testing.T) { testCreateDuringCascade(t, newBackend(t)) })
	t.Run("Ownership", func(t *testing.T) { testOwnership(t, NewHarness(newBackend(t))) })
	t.Run("Stats", func(t *testing.T) { testStats(t, NewHarness(newBackend(t))) })
	t.Run("Validation", func(t *testing.T) { testValidation(t, NewHarness(newBackend(t))) })
}

func testNotebookLifecycle(t *testing.T, h *Harness) {
	ctx := context.Background()
	owner := uuid.New()

	created, err := h.Notebooks.Create(ctx, &entity.Notebook{
		OwnerId: owner,
		Title:   "  Cardiology  ",
		Tags:    []string{"heart", " heart ", "", "ecg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", created.Title)
	assert.Equal(t, []string{"heart", "ecg"}, created.Tags)
	assert.Zero(t, created.EntryCount)

	found, err := h.Notebooks.FindById(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.Title, found.Title)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))

	title := "Cardiology II"
	public := true
	updated, err := h.Notebooks.Update(ctx, created.Id, owner, entity.NotebookPatch{Title: &title, IsPublic: &public})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.IsPublic)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	missing, err := h.Notebooks.FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missingUpdate, err := h.Notebooks.Update(ctx, uuid.New(), owner, entity.NotebookPatch{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, missingUpdate)
}

type listCase struct {
	name   string
	filter entity.Filter
	sort   entity.SortField
	order  entity.SortOrder
}

func entryListCases() []listCase {
	resolved := true
	unresolved := false
	concept := "concept"
	return []listCase{
		{name: "default order", sort: entity.SortByCreatedAt, order: entity.SortDesc},
		{name: "created asc", sort: entity.SortByCreatedAt, order: entity.SortAsc},
		{name: "subject asc", sort: entity.SortBySubject, order: entity.SortAsc},
		{name: "difficulty desc", sort: entity.SortByDifficulty, order: entity.SortDesc},
		{name: "confidence asc", sort: entity.SortByConfidence, order: entity.SortAsc},
		{name: "resolved only", filter: entity.Filter{Resolved: &resolved}, sort: entity.SortByCreatedAt},
		{name: "unresolved by subject", filter: entity.Filter{Resolved: &unresolved}, sort: entity.SortBySubject, order: entity.SortDesc},
		{name: "category", filter: entity.Filter{Category: &concept}, sort: entity.SortByUpdatedAt},
		{name: "tags any-of", filter: entity.Filter{Tags: []string{"renal", "cardio"}}, sort: entity.SortByConfidence, order: entity.SortDesc},
		{name: "search", filter: entity.Filter{Search: "ACIDOSIS"}, sort: entity.SortByCreatedAt, order: entity.SortAsc},
		{name: "combined", filter: entity.Filter{Resolved: &unresolved, Tags: []string{"acid-base"}, Search: "gap"}, sort: entity.SortByDifficulty},
		{name: "unknown sort field", sort: entity.SortField("nonsense")},
	}
}

func testFallbackEquivalence(t *testing.T, b contract.Backend) {
	ctx := context.Background()
	native := NewHarness(b)
	scan := NewHarness(NativeOff(b))

	f, err := Seed(ctx, native, 17)
	require.NoError(t, err)

	for _, tc := range entryListCases() {
		t.Run(tc.name, func(t *testing.T) {
			for _, limit := range []int{1, 4, 100} {
				for pageNo := 1; pageNo <= 18/limit+1; pageNo++ {
					page := entity.Pagination{Page: pageNo, Limit: limit, SortBy: tc.sort, SortOrder: tc.order}

					want, err := scan.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, tc.filter, page)
					require.NoError(t, err)
					got, err := native.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, tc.filter, page)
					require.NoError(t, err)

					assert.Equal(t, ids(want.Items), ids(got.Items), "limit=%d page=%d", limit, pageNo)
					assert.Equal(t, want.Total, got.Total)
					assert.Equal(t, want.HasMore, got.HasMore)
				}
			}
		})
	}

	t.Run("notebooks", func(t *testing.T) {
		for i := 0; i < 6; i++ {
			_, err := native.Notebooks.Create(ctx, &entity.Notebook{OwnerId: f.OwnerId, Title: string(rune('F' - i)), Tags: []string{[]string{"a", "b"}[i%2]}})
			require.NoError(t, err)
		}
		for _, sort := range []entity.SortField{entity.SortByCreatedAt, entity.SortByTitle, entity.SortByEntryCount, entity.SortByUpdatedAt} {
			for _, filter := range []entity.Filter{{}, {Tags: []string{"a"}}, {Search: "renal"}} {
				page := entity.Pagination{Page: 1, Limit: 3, SortBy: sort, SortOrder: entity.SortAsc}
				want, err := scan.Notebooks.FindByOwner(ctx, f.OwnerId, filter, page)
				require.NoError(t, err)
				got, err := native.Notebooks.FindByOwner(ctx, f.OwnerId, filter, page)
				require.NoError(t, err)
				assert.Equal(t, ids(want.Items), ids(got.Items), "sort=%s", sort)
				assert.Equal(t, want.Total, got.Total)
			}
		}
	})
}

func testPaginationExhaustive(t *testing.T, h *Harness) {
	ctx := context.Background()
	f, err := Seed(ctx, h, 23)
	require.NoError(t, err)

	all := make(map[uuid.UUID]bool, len(f.Entries))
	for _, e := range f.Entries {
		all[e.Id] = true
	}

	for _, tc := range entryListCases()[:5] {
		t.Run(tc.name+" by page", func(t *testing.T) {
			seen := map[uuid.UUID]bool{}
			for pageNo := 1; ; pageNo++ {
				res, err := h.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, tc.filter, entity.Pagination{Page: pageNo, Limit: 5, SortBy: tc.sort, SortOrder: tc.order})
				require.NoError(t, err)
				assert.EqualValues(t, len(all), res.Total)
				for _, e := range res.Items {
					assert.False(t, seen[e.Id], "duplicate %s on page %d", e.Id, pageNo)
					seen[e.Id] = true
				}
				if !res.HasMore {
					break
				}
				require.Less(t, pageNo, 10)
			}
			assert.Equal(t, all, seen)
		})

		t.Run(tc.name+" by cursor", func(t *testing.T) {
			seen := map[uuid.UUID]bool{}
			var cursor *uuid.UUID
			for i := 0; i < 10; i++ {
				res, err := h.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, tc.filter, entity.Pagination{Page: 1, Limit: 4, SortBy: tc.sort, SortOrder: tc.order, AfterId: cursor})
				require.NoError(t, err)
				for _, e := range res.Items {
					assert.False(t, seen[e.Id])
					seen[e.Id] = true
				}
				if !res.HasMore {
					assert.Nil(t, res.Cursor)
					break
				}
				require.NotNil(t, res.Cursor)
				cursor = res.Cursor
			}
			assert.Equal(t, all, seen)
		})
	}

	t.Run("page past the end", func(t *testing.T) {
		res, err := h.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, entity.Filter{}, entity.Pagination{Page: 40, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.False(t, res.HasMore)
		assert.EqualValues(t, 23, res.Total)
	})
}

func testSearchTotals(t *testing.T, b contract.Backend) {
	ctx := context.Background()
	native := NewHarness(b)
	scan := NewHarness(NativeOff(b))

	f, err := Seed(ctx, native, 10)
	require.NoError(t, err)

	// case folding is only pinned for ASCII terms
	searches := []struct {
		term string
		want int
	}{
		{"acidosis", 3},
		{"ACIDOSIS", 3},
		{"Anion Gap", 3},
		{"gap #3", 1},
		{"100%", 0},
	}
	for _, h := range []*Harness{native, scan} {
		for _, s := range searches {
			res, err := h.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, entity.Filter{Search: s.term}, entity.Pagination{Page: 1, Limit: 10})
			require.NoError(t, err, h.Backend.Name())
			assert.Len(t, res.Items, s.want, "%s %q", h.Backend.Name(), s.term)
			assert.EqualValues(t, s.want, res.Total, "%s %q", h.Backend.Name(), s.term)
			assert.False(t, res.HasMore)
		}
	}
}

func testCounters(t *testing.T, h *Harness) {
	ctx := context.Background()
	f, err := Seed(ctx, h, 3)
	require.NoError(t, err)

	nb, err := h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, nb.EntryCount)
	require.NotNil(t, nb.LastEntryAt)
	lastEntryAt := *nb.LastEntryAt

	deleted, err := h.Entries.Delete(ctx, f.Entries[0].Id, f.OwnerId)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = h.Entries.Delete(ctx, f.Entries[0].Id, f.OwnerId)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete is a no-op")

	nb, err = h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, nb.EntryCount)
	require.NotNil(t, nb.LastEntryAt)
	assert.True(t, lastEntryAt.Equal(*nb.LastEntryAt), "lastEntryAt is not rolled back")

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Notebooks.DecrementEntryCount(ctx, f.Notebook.Id))
	}
	nb, err = h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Zero(t, nb.EntryCount)

	require.NoError(t, h.Notebooks.IncrementEntryCount(ctx, uuid.New()), "missing notebook is a no-op")

	count, err := h.Notebooks.RecountEntries(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	nb, err = h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, nb.EntryCount)
}

func testConcurrentCounters(t *testing.T, h *Harness) {
	ctx := context.Background()
	f, err := Seed(ctx, h, 0)
	require.NoError(t, err)

	const writers = 12
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Entries.Create(ctx, f.OwnerId, &entity.Entry{NotebookId: f.Notebook.Id, Note: "n", Explanation: "e"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	nb, err := h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, writers, nb.EntryCount)
}

func testCascade(t *testing.T, h *Harness) {
	ctx := context.Background()
	f, err := Seed(ctx, h, 5)
	require.NoError(t, err)
	other, err := Seed(ctx, h, 2)
	require.NoError(t, err)

	deleted, err := h.Notebooks.Delete(ctx, f.Notebook.Id, f.OwnerId)
	require.NoError(t, err)
	assert.True(t, deleted)

	nb, err := h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Nil(t, nb)
	for _, e := range f.Entries {
		found, err := h.Entries.FindById(ctx, e.Id)
		require.NoError(t, err)
		assert.Nil(t, found)
	}

	deleted, err = h.Notebooks.Delete(ctx, f.Notebook.Id, f.OwnerId)
	require.NoError(t, err)
	assert.False(t, deleted)

	survivor, err := h.Entries.FindById(ctx, other.Entries[0].Id)
	require.NoError(t, err)
	assert.NotNil(t, survivor, "cascade stays inside the notebook")
}

func testCreateDuringCascade(t *testing.T, b contract.Backend) {
	ctx := context.Background()
	h := NewCascadeBeforeInsertHarness(b)
	owner := uuid.New()

	nb, err := h.Notebooks.Create(ctx, &entity.Notebook{OwnerId: owner, Title: "Short-lived"})
	require.NoError(t, err)

	created, err := h.Entries.Create(ctx, owner, &entity.Entry{
		NotebookId:  nb.Id,
		Note:        "Confused the murmurs",
		Explanation: "Aortic stenosis radiates to the carotids",
	})
	assert.Nil(t, created)
	var verr *contract.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "notebookId", verr.Field)

	gone, err := h.Notebooks.FindById(ctx, nb.Id)
	require.NoError(t, err)
	assert.Nil(t, gone)

	left, err := b.Entries().RunScopedScan(ctx, entity.Scope{OwnerId: owner})
	require.NoError(t, err)
	assert.Empty(t, left, "no entry may reference a deleted notebook")
}

func testOwnership(t *testing.T, h *Harness) {
	ctx := context.Background()
	f, err := Seed(ctx, h, 2)
	require.NoError(t, err)
	stranger := uuid.New()
	title := "hijacked"

	_, err = h.Notebooks.Update(ctx, f.Notebook.Id, stranger, entity.NotebookPatch{Title: &title})
	assert.ErrorIs(t, err, contract.ErrForbidden)

	_, err = h.Notebooks.Delete(ctx, f.Notebook.Id, stranger)
	assert.ErrorIs(t, err, contract.ErrForbidden)

	_, err = h.Notebooks.GetStats(ctx, f.Notebook.Id, stranger)
	assert.ErrorIs(t, err, contract.ErrForbidden)

	_, err = h.Notebooks.FindVisible(ctx, f.Notebook.Id, stranger)
	assert.ErrorIs(t, err, contract.ErrForbidden)

	_, err = h.Entries.FindByNotebook(ctx, f.Notebook.Id, stranger, entity.Filter{}, entity.DefaultPagination())
	assert.ErrorIs(t, err, contract.ErrForbidden)

	note := "edited"
	_, err = h.Entries.Update(ctx, f.Entries[0].Id, stranger, entity.EntryPatch{Note: &note})
	assert.ErrorIs(t, err, contract.ErrForbidden)

	_, err = h.Entries.Delete(ctx, f.Entries[0].Id, stranger)
	assert.ErrorIs(t, err, contract.ErrForbidden)

	_, err = h.Entries.Create(ctx, stranger, &entity.Entry{NotebookId: f.Notebook.Id, Note: "n", Explanation: "e"})
	assert.ErrorIs(t, err, contract.ErrForbidden)

	unchanged, err := h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, f.Notebook.Title, unchanged.Title)
	assert.Equal(t, 2, unchanged.EntryCount)

	t.Run("public notebook is readable", func(t *testing.T) {
		public := true
		_, err := h.Notebooks.Update(ctx, f.Notebook.Id, f.OwnerId, entity.NotebookPatch{IsPublic: &public})
		require.NoError(t, err)

		nb, err := h.Notebooks.FindVisible(ctx, f.Notebook.Id, stranger)
		require.NoError(t, err)
		assert.NotNil(t, nb)

		e, err := h.Entries.FindVisible(ctx, f.Entries[1].Id, stranger)
		require.NoError(t, err)
		assert.NotNil(t, e)

		res, err := h.Entries.FindByNotebook(ctx, f.Notebook.Id, stranger, entity.Filter{}, entity.DefaultPagination())
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)

		_, err = h.Notebooks.Delete(ctx, f.Notebook.Id, stranger)
		assert.ErrorIs(t, err, contract.ErrForbidden)
	})
}

func testStats(t *testing.T, h *Harness) {
	ctx := context.Background()
	f, err := Seed(ctx, h, 5)
	require.NoError(t, err)

	// entries 0..2 resolved after 2h, 4h and 6h, entries 3 and 4 open
	for i, e := range f.Entries {
		stored, err := h.Backend.Entries().FindById(ctx, e.Id)
		require.NoError(t, err)
		stored.IsResolved = i < 3
		stored.ResolvedAt = nil
		if i < 3 {
			at := stored.CreatedAt.Add(time.Duration(2*(i+1)) * time.Hour)
			stored.ResolvedAt = &at
		}
		require.NoError(t, h.Backend.Entries().Replace(ctx, stored))
	}

	s, err := h.Notebooks.GetStats(ctx, f.Notebook.Id, f.OwnerId)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 5, s.TotalEntries)
	assert.Equal(t, 3, s.ResolvedEntries)
	assert.Equal(t, 2, s.UnresolvedEntries)
	assert.InDelta(t, 4.0, s.AverageResolutionTimeHours, 1e-6)
	assert.Equal(t, map[string]int{"concept": 2, "recall": 2}, s.EntriesByCategory)

	missing, err := h.Notebooks.GetStats(ctx, uuid.New(), f.OwnerId)
	require.NoError(t, err)
	assert.Nil(t, missing)

	// entries of another owner stay out
	_, err = Seed(ctx, h, 2)
	require.NoError(t, err)
	owner, err := h.Entries.GetOwnerStats(ctx, f.OwnerId)
	require.NoError(t, err)
	assert.Equal(t, 5, owner.TotalEntries)
	assert.Equal(t, map[string]int{"Cardiology": 2, "Nephrology": 1, "Pharmacology": 1, "anatomy": 1}, owner.EntriesBySubject)
	assert.Equal(t, 2, owner.EntriesByDifficulty[entity.DifficultyEasy])
	assert.Equal(t, 1, owner.EntriesByDifficulty[entity.DifficultyVeryHard])
	assert.InDelta(t, 3.0, owner.AverageConfidence, 1e-9)

	empty, err := h.Entries.GetOwnerStats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalEntries)
}

func testValidation(t *testing.T, h *Harness) {
	ctx := context.Background()
	f, err := Seed(ctx, h, 1)
	require.NoError(t, err)

	_, err = h.Notebooks.Create(ctx, &entity.Notebook{OwnerId: f.OwnerId, Title: "   "})
	assert.True(t, contract.IsValidationError(err))

	_, err = h.Entries.Create(ctx, f.OwnerId, &entity.Entry{NotebookId: f.Notebook.Id, Note: "n"})
	assert.True(t, contract.IsValidationError(err))

	_, err = h.Entries.Create(ctx, f.OwnerId, &entity.Entry{NotebookId: uuid.New(), Note: "n", Explanation: "e"})
	assert.True(t, contract.IsValidationError(err))

	for _, page := range []entity.Pagination{{Page: 0, Limit: 10}, {Page: 1, Limit: 0}, {Page: 1, Limit: 101}, {Page: 1, Limit: 10, SortOrder: "up"}} {
		_, err := h.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, entity.Filter{}, page)
		assert.True(t, contract.IsValidationError(err), "%+v", page)
	}

	foreign, err := Seed(ctx, h, 1)
	require.NoError(t, err)
	_, err = h.Entries.FindByNotebook(ctx, f.Notebook.Id, f.OwnerId, entity.Filter{}, entity.Pagination{Page: 1, Limit: 5, AfterId: &foreign.Entries[0].Id})
	assert.True(t, contract.IsValidationError(err), "cursor outside scope")

	_, err = h.Entries.RecordReview(ctx, f.Entries[0].Id, f.OwnerId, time.Time{})
	assert.True(t, contract.IsValidationError(err), "entry not enrolled")
}

func ids[T entity.Record](items []T) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, r := range items {
		out[i] = r.GetId()
	}
	return out
}
