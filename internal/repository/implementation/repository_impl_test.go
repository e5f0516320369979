package implementation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/counter"
	"medstudy-be/internal/repository/implementation"
	"medstudy-be/internal/repository/memory"
	"medstudy-be/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (q *recordingQueue) EnqueueRecount(_ context.Context, notebookId uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, notebookId)
	return nil
}

func TestEntryUpdate(t *testing.T) {
	ctx := context.Background()
	h := repotest.NewHarness(memory.NewBackend())
	f, err := repotest.Seed(ctx, h, 1)
	require.NoError(t, err)
	original := f.Entries[0]

	note := "  rewritten note  "
	hard := entity.DifficultyHard
	confidence := 9
	resolved := true
	updated, err := h.Entries.Update(ctx, original.Id, f.OwnerId, entity.EntryPatch{
		Note:       &note,
		Difficulty: &hard,
		Confidence: &confidence,
		IsResolved: &resolved,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "rewritten note", updated.Note)
	assert.Equal(t, entity.DifficultyHard, updated.Difficulty)
	assert.Equal(t, entity.MaxConfidence, updated.Confidence)
	assert.True(t, updated.IsResolved)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, original.Statement, updated.Statement, "snapshot is immutable")
	assert.Equal(t, original.Subject, updated.Subject)

	reopened := false
	updated, err = h.Entries.Update(ctx, original.Id, f.OwnerId, entity.EntryPatch{IsResolved: &reopened})
	require.NoError(t, err)
	assert.False(t, updated.IsResolved)
	assert.Nil(t, updated.ResolvedAt)

	zero := 0
	updated, err = h.Entries.Update(ctx, original.Id, f.OwnerId, entity.EntryPatch{Confidence: &zero})
	require.NoError(t, err)
	assert.Equal(t, entity.MinConfidence, updated.Confidence, "an explicit zero clamps instead of defaulting")

	bad := entity.Difficulty("impossible")
	_, err = h.Entries.Update(ctx, original.Id, f.OwnerId, entity.EntryPatch{Difficulty: &bad})
	assert.True(t, contract.IsValidationError(err))

	missing, err := h.Entries.Update(ctx, uuid.New(), f.OwnerId, entity.EntryPatch{Note: &note})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEntryCreateDefaults(t *testing.T) {
	ctx := context.Background()
	h := repotest.NewHarness(memory.NewBackend())
	f, err := repotest.Seed(ctx, h, 0)
	require.NoError(t, err)

	e, err := h.Entries.Create(ctx, f.OwnerId, &entity.Entry{
		NotebookId:  f.Notebook.Id,
		OwnerId:     uuid.New(),
		Note:        " n ",
		Explanation: " e ",
		KeyPoints:   []string{" first ", "", "second"},
	})
	require.NoError(t, err)

	assert.Equal(t, f.OwnerId, e.OwnerId, "owner is copied from the notebook")
	assert.Equal(t, "n", e.Note)
	assert.Equal(t, []string{"first", "second"}, e.KeyPoints)
	assert.Equal(t, entity.DifficultyMedium, e.Difficulty)
	assert.Equal(t, entity.DefaultConfidence, e.Confidence)
	assert.False(t, e.IsInReviewSystem)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestRecordReview(t *testing.T) {
	ctx := context.Background()
	h := repotest.NewHarness(memory.NewBackend())
	f, err := repotest.Seed(ctx, h, 1)
	require.NoError(t, err)
	id := f.Entries[0].Id

	reviewItem := "review-123"
	e, err := h.Entries.SetReviewState(ctx, id, f.OwnerId, true, &reviewItem)
	require.NoError(t, err)
	assert.True(t, e.IsInReviewSystem)
	assert.Equal(t, &reviewItem, e.ReviewItemId)

	reviewedAt := time.Date(2024, 5, 2, 10, 30, 0, 123456789, time.UTC)
	e, err = h.Entries.RecordReview(ctx, id, f.OwnerId, reviewedAt)
	require.NoError(t, err)
	require.NotNil(t, e.LastReviewedAt)
	assert.Equal(t, reviewedAt.Truncate(time.Millisecond), *e.LastReviewedAt)

	e, err = h.Entries.SetReviewState(ctx, id, f.OwnerId, false, &reviewItem)
	require.NoError(t, err)
	assert.Nil(t, e.ReviewItemId)
}

func TestCounterFailureSchedulesRecount(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewBackend()
	seed := repotest.NewHarness(mem)
	f, err := repotest.Seed(ctx, seed, 0)
	require.NoError(t, err)

	// the wrapper exposes no counter primitive, so every counter update fails
	broken := repotest.NativeOff(mem)
	log, logs := logger.NewObservedLogger()
	queue := &recordingQueue{}
	counters := counter.NewMaintainer(broken, log)
	entries := implementation.NewEntryRepository(broken, counters, queue, log)
	notebooks := implementation.NewNotebookRepository(mem, counter.NewMaintainer(mem, log), log)

	e, err := entries.Create(ctx, f.OwnerId, &entity.Entry{NotebookId: f.Notebook.Id, Note: "n", Explanation: "e"})
	require.NoError(t, err, "the entry write survives a counter failure")
	assert.Equal(t, []uuid.UUID{f.Notebook.Id}, queue.ids)
	assert.Equal(t, 1, logs.FilterMessage("Entry count update failed, recount scheduled").Len())

	nb, err := notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Zero(t, nb.EntryCount)

	count, err := notebooks.RecountEntries(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	nb, err = notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, nb.EntryCount)
	require.NotNil(t, nb.LastEntryAt)
	assert.Equal(t, e.CreatedAt, *nb.LastEntryAt)
}

func TestFallbackIsLogged(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewBackend()
	log, logs := logger.NewObservedLogger()
	notebooks := implementation.NewNotebookRepository(mem, counter.NewMaintainer(mem, log), log)
	owner := uuid.New()

	_, err := notebooks.Create(ctx, &entity.Notebook{OwnerId: owner, Title: "Pharmacology"})
	require.NoError(t, err)

	res, err := notebooks.FindByOwner(ctx, owner, entity.Filter{Search: "pharma"}, entity.DefaultPagination())
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	warnings := logs.FilterMessage("Native query not servable, falling back to scoped scan").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Pagination", warnings[0].ContextMap()["module"])
}

func TestToggleResolved(t *testing.T) {
	ctx := context.Background()
	h := repotest.NewHarness(memory.NewBackend())
	f, err := repotest.Seed(ctx, h, 1)
	require.NoError(t, err)
	id := f.Entries[0].Id
	require.False(t, f.Entries[0].IsResolved)

	toggled, err := h.Entries.ToggleResolved(ctx, id, f.OwnerId)
	require.NoError(t, err)
	assert.True(t, toggled.IsResolved)
	require.NotNil(t, toggled.ResolvedAt)

	toggled, err = h.Entries.ToggleResolved(ctx, id, f.OwnerId)
	require.NoError(t, err)
	assert.False(t, toggled.IsResolved)
	assert.Nil(t, toggled.ResolvedAt)

	_, err = h.Entries.ToggleResolved(ctx, id, uuid.New())
	assert.ErrorIs(t, err, contract.ErrForbidden)
}
