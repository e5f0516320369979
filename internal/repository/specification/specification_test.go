package specification

import (
	"testing"

	"medstudy-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=dry dbname=dry sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func render(t *testing.T, specs ...Specification) (string, []interface{}) {
	db := dryRun(t).Model(&model.ErrorNotebookEntry{})
	for _, s := range specs {
		db = s.Apply(db)
	}
	stmt := db.Find(&[]model.ErrorNotebookEntry{}).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestOrderByBreaksTiesById(t *testing.T) {
	sql, _ := render(t, OrderBy{Column: "subject", Desc: true, Collate: true})
	assert.Contains(t, sql, `ORDER BY subject COLLATE "C" DESC,id ASC`)
}

func TestStartAfter(t *testing.T) {
	id := uuid.New()

	sql, vars := render(t, StartAfter{Column: "confidence", Desc: true, Value: 3, ID: id})
	assert.Contains(t, sql, "(confidence < $1 OR (confidence = $2 AND id > $3))")
	assert.Equal(t, []interface{}{3, 3, id}, vars)

	sql, _ = render(t, StartAfter{Column: "created_at", Value: 1, ID: id})
	assert.Contains(t, sql, "created_at > $1")
}

func TestTextSearchEscapesWildcards(t *testing.T) {
	sql, vars := render(t, TextSearch{Columns: []string{"note", "explanation"}, Query: `50%_off\`})
	assert.Contains(t, sql, "(note ILIKE $1 OR explanation ILIKE $2)")
	assert.Equal(t, `%50\%\_off\\%`, vars[0])
}

func TestTextSearchEmptyIsNoop(t *testing.T) {
	sql, _ := render(t, TextSearch{Columns: []string{"note"}})
	assert.NotContains(t, sql, "ILIKE")
}

func TestFilters(t *testing.T) {
	owner := uuid.New()
	sql, vars := render(t,
		OwnedBy{OwnerID: owner},
		ResolvedIs{Resolved: true},
		CategoryIs{Category: "recall"},
		TagsOverlap{Tags: []string{"renal"}},
		Pagination{Limit: 11, Offset: 20},
	)
	assert.Contains(t, sql, "owner_id = $1")
	assert.Contains(t, sql, "is_resolved = $2")
	assert.Contains(t, sql, "category = $3")
	assert.Contains(t, sql, "tags && $4")
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
	assert.Equal(t, owner, vars[0])
}
