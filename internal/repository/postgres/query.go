package postgres

import (
	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/specification"

	"gorm.io/gorm"
)

type sortColumn struct {
	name    string
	collate bool
}

type table struct {
	sortColumns   map[entity.SortField]sortColumn
	searchColumns []string
}

var notebookTable = table{
	sortColumns: map[entity.SortField]sortColumn{
		entity.SortByCreatedAt:  {name: "created_at"},
		entity.SortByUpdatedAt:  {name: "updated_at"},
		entity.SortByTitle:      {name: "title", collate: true},
		entity.SortByEntryCount: {name: "entry_count"},
	},
	searchColumns: []string{"title", "description"},
}

var entryTable = table{
	sortColumns: map[entity.SortField]sortColumn{
		entity.SortByCreatedAt:  {name: "created_at"},
		entity.SortByUpdatedAt:  {name: "updated_at"},
		entity.SortBySubject:    {name: "subject", collate: true},
		entity.SortByDifficulty: {name: "difficulty_rank"},
		entity.SortByConfidence: {name: "confidence"},
	},
	searchColumns: []string{"note", "explanation", "statement"},
}

func (t table) column(field entity.SortField) sortColumn {
	if c, ok := t.sortColumns[field]; ok {
		return c
	}
	return t.sortColumns[entity.SortByCreatedAt]
}

func scopeSpecs(scope entity.Scope) []specification.Specification {
	specs := []specification.Specification{specification.OwnedBy{OwnerID: scope.OwnerId}}
	if scope.NotebookId != nil {
		specs = append(specs, specification.ByNotebookID{NotebookID: *scope.NotebookId})
	}
	return specs
}

// filterSpecs translates the scope and filter of q. Filters a table has no column for are skipped,
// matching the in-memory predicate.
func (t table) filterSpecs(q contract.CompoundQuery, entries bool) []specification.Specification {
	specs := scopeSpecs(q.Scope)
	if entries && q.Filter.Resolved != nil {
		specs = append(specs, specification.ResolvedIs{Resolved: *q.Filter.Resolved})
	}
	if entries && q.Filter.Category != nil {
		specs = append(specs, specification.CategoryIs{Category: *q.Filter.Category})
	}
	if len(q.Filter.Tags) > 0 {
		specs = append(specs, specification.TagsOverlap{Tags: q.Filter.Tags})
	}
	if q.Filter.Search != "" {
		specs = append(specs, specification.TextSearch{Columns: t.searchColumns, Query: q.Filter.Search})
	}
	return specs
}

// pageSpecs adds keyset anchor, ordering and window to the filter specs.
func (t table) pageSpecs(q contract.CompoundQuery, entries bool) []specification.Specification {
	specs := t.filterSpecs(q, entries)
	col := t.column(q.Sort.Field)
	if q.Anchor != nil {
		specs = append(specs, specification.StartAfter{
			Column:  col.name,
			Desc:    q.Sort.Desc(),
			Collate: col.collate,
			Value:   q.Anchor.Value,
			ID:      q.Anchor.Id,
		})
	}
	return append(specs,
		specification.OrderBy{Column: col.name, Desc: q.Sort.Desc(), Collate: col.collate},
		specification.Pagination{Limit: q.Limit, Offset: q.Offset},
	)
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}
