package postgres

import (
	"testing"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/model"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func renderEntries(t *testing.T, q contract.CompoundQuery) (string, []interface{}) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=dry dbname=dry sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	stmt := applySpecifications(db.Model(&model.ErrorNotebookEntry{}), entryTable.pageSpecs(q, true)...).
		Find(&[]model.ErrorNotebookEntry{}).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestEntryPageQuery(t *testing.T) {
	owner, notebook := uuid.New(), uuid.New()
	resolved := false

	sql, vars := renderEntries(t, contract.CompoundQuery{
		Scope:  entity.Scope{OwnerId: owner, NotebookId: &notebook},
		Filter: entity.Filter{Resolved: &resolved, Search: "acidosis"},
		Sort:   contract.SortSpec{Field: entity.SortByDifficulty, Order: entity.SortAsc},
		Offset: 20,
		Limit:  21,
	})

	assert.Contains(t, sql, "owner_id = $1")
	assert.Contains(t, sql, "notebook_id = $2")
	assert.Contains(t, sql, "is_resolved = $3")
	assert.Contains(t, sql, "(note ILIKE $4 OR explanation ILIKE $5 OR statement ILIKE $6)")
	assert.Contains(t, sql, "ORDER BY difficulty_rank ASC,id ASC")
	assert.Contains(t, sql, "LIMIT")
	assert.Equal(t, owner, vars[0])
	assert.Equal(t, notebook, vars[1])
}

func TestEntryPageQueryWithAnchor(t *testing.T) {
	owner, anchor := uuid.New(), uuid.New()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	sql, vars := renderEntries(t, contract.CompoundQuery{
		Scope:  entity.Scope{OwnerId: owner},
		Sort:   contract.SortSpec{Field: entity.SortByCreatedAt, Order: entity.SortDesc},
		Anchor: &contract.Anchor{Id: anchor, Value: at},
		Limit:  11,
	})

	assert.Contains(t, sql, "(created_at < $2 OR (created_at = $3 AND id > $4))")
	assert.Contains(t, sql, "ORDER BY created_at DESC,id ASC")
	assert.NotContains(t, sql, "OFFSET")
	assert.Equal(t, []interface{}{owner, at, at, anchor}, vars[:4])
}

func TestUnknownSortFieldFallsBackToCreatedAt(t *testing.T) {
	assert.Equal(t, "created_at", notebookTable.column(entity.SortBySubject).name)
	assert.True(t, notebookTable.column(entity.SortByTitle).collate)
}

func TestNotebookFiltersIgnoreEntryOnlyFields(t *testing.T) {
	resolved := true
	category := "recall"
	specs := notebookTable.filterSpecs(contract.CompoundQuery{
		Scope:  entity.Scope{OwnerId: uuid.New()},
		Filter: entity.Filter{Resolved: &resolved, Category: &category},
	}, false)
	assert.Len(t, specs, 1)
}
