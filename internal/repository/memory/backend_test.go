package memory_test

import (
	"context"
	"errors"
	"testing"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/memory"
	"medstudy-be/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendSuite(t *testing.T) {
	repotest.Run(t, func(t *testing.T) contract.Backend {
		return memory.NewBackend()
	})
}

func TestBackendSuiteWithoutIndexes(t *testing.T) {
	repotest.Run(t, func(t *testing.T) contract.Backend {
		return memory.NewBackend(memory.WithIndexes())
	})
}

func TestPlanner(t *testing.T) {
	ctx := context.Background()
	b := memory.NewBackend()
	owner := uuid.New()
	notebookId := uuid.New()
	resolved := true
	category := "recall"

	tests := []struct {
		name     string
		query    contract.CompoundQuery
		servable bool
	}{
		{
			name:     "owner and notebook by subject",
			query:    contract.CompoundQuery{Scope: entity.Scope{OwnerId: owner, NotebookId: &notebookId}, Sort: contract.SortSpec{Field: entity.SortBySubject}},
			servable: true,
		},
		{
			name:     "resolved by created",
			query:    contract.CompoundQuery{Scope: entity.Scope{OwnerId: owner, NotebookId: &notebookId}, Filter: entity.Filter{Resolved: &resolved}, Sort: contract.SortSpec{Field: entity.SortByCreatedAt}},
			servable: true,
		},
		{
			name:  "resolved by subject",
			query: contract.CompoundQuery{Scope: entity.Scope{OwnerId: owner, NotebookId: &notebookId}, Filter: entity.Filter{Resolved: &resolved}, Sort: contract.SortSpec{Field: entity.SortBySubject}},
		},
		{
			name:  "category",
			query: contract.CompoundQuery{Scope: entity.Scope{OwnerId: owner}, Filter: entity.Filter{Category: &category}, Sort: contract.SortSpec{Field: entity.SortByCreatedAt}},
		},
		{
			name:  "search",
			query: contract.CompoundQuery{Scope: entity.Scope{OwnerId: owner, NotebookId: &notebookId}, Filter: entity.Filter{Search: "x"}, Sort: contract.SortSpec{Field: entity.SortByCreatedAt}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Entries().RunCompoundQuery(ctx, tt.query)
			if tt.servable {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, contract.ErrCapabilityFailure)
			}
		})
	}

	t.Run("scan is always servable", func(t *testing.T) {
		_, err := memory.NewBackend(memory.WithoutNativeQueries()).Entries().RunScopedScan(ctx, entity.Scope{OwnerId: owner})
		assert.NoError(t, err)
	})
}

func TestReplacePreservesCounters(t *testing.T) {
	ctx := context.Background()
	b := memory.NewBackend()
	nb := &entity.Notebook{Id: uuid.New(), OwnerId: uuid.New(), Title: "t", CreatedAt: entity.Now(), UpdatedAt: entity.Now()}
	require.NoError(t, b.Notebooks().Insert(ctx, nb))
	require.NoError(t, b.SetEntryCount(ctx, nb.Id, 7, nil, entity.Now()))

	stale := nb.Clone()
	stale.Title = "renamed"
	require.NoError(t, b.Notebooks().Replace(ctx, stale))

	stored, err := b.Notebooks().FindById(ctx, nb.Id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Title)
	assert.Equal(t, 7, stored.EntryCount)
}

func TestCascadeInterruptionIsResumable(t *testing.T) {
	ctx := context.Background()
	interrupt := true
	b := memory.NewBackend(memory.WithCascadeInterruption(func(deleted int) error {
		if interrupt && deleted == 2 {
			return errors.New("connection reset")
		}
		return nil
	}))
	h := repotest.NewHarness(b)

	f, err := repotest.Seed(ctx, h, 5)
	require.NoError(t, err)

	_, err = h.Notebooks.Delete(ctx, f.Notebook.Id, f.OwnerId)
	require.ErrorIs(t, err, contract.ErrBackendFault)

	remaining, err := b.Entries().RunScopedScan(ctx, entity.Scope{OwnerId: f.OwnerId, NotebookId: &f.Notebook.Id})
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
	parent, err := h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.NotNil(t, parent, "notebook outlives its entries until the cascade completes")

	interrupt = false
	deleted, err := h.Notebooks.Delete(ctx, f.Notebook.Id, f.OwnerId)
	require.NoError(t, err)
	assert.True(t, deleted)

	remaining, err = b.Entries().RunScopedScan(ctx, entity.Scope{OwnerId: f.OwnerId})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCompareAndSwapRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	b := memory.NewBackend(memory.WithCounterConflicts(3))
	h := repotest.NewHarness(b)

	f, err := repotest.Seed(ctx, h, 2)
	require.NoError(t, err)

	nb, err := h.Notebooks.FindById(ctx, f.Notebook.Id)
	require.NoError(t, err)
	assert.Equal(t, 2, nb.EntryCount)
}

func TestInsertRejectsDuplicateIds(t *testing.T) {
	ctx := context.Background()
	b := memory.NewBackend()
	nb := &entity.Notebook{Id: uuid.New(), OwnerId: uuid.New(), Title: "t"}
	require.NoError(t, b.Notebooks().Insert(ctx, nb))
	assert.ErrorIs(t, b.Notebooks().Insert(ctx, nb), contract.ErrBackendFault)
}
