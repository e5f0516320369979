package memory

import (
	"fmt"
	"slices"
	"strings"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"
)

const (
	NotebooksCollection = "notebooks"
	EntriesCollection   = "errorNotebookEntries"
)

// CompositeIndex declares which equality fields a collection can filter on together while
// ordering by OrderBy.
type CompositeIndex struct {
	Collection string
	Fields     []string
	OrderBy    entity.SortField
}

// DefaultIndexes mirrors the index file deployed for the document store: the common listing
// shapes are covered, category and tag filters are not.
func DefaultIndexes() []CompositeIndex {
	var idx []CompositeIndex
	for _, f := range entity.NotebookSortFields.Allowed {
		idx = append(idx, CompositeIndex{Collection: NotebooksCollection, Fields: []string{"ownerId"}, OrderBy: f})
	}
	for _, f := range entity.EntrySortFields.Allowed {
		idx = append(idx, CompositeIndex{Collection: EntriesCollection, Fields: []string{"ownerId", "notebookId"}, OrderBy: f})
	}
	idx = append(idx,
		CompositeIndex{Collection: EntriesCollection, Fields: []string{"ownerId"}, OrderBy: entity.SortByCreatedAt},
		CompositeIndex{Collection: EntriesCollection, Fields: []string{"ownerId", "notebookId", "isResolved"}, OrderBy: entity.SortByCreatedAt},
	)
	return idx
}

// planner emulates a document store that refuses queries without a matching composite index.
type planner struct {
	indexes  []CompositeIndex
	disabled bool
}

func (p *planner) plan(collection string, q contract.CompoundQuery, ordered bool) error {
	if p.disabled {
		return contract.CapabilityFailure("native queries disabled", nil)
	}
	if q.Filter.Search != "" {
		return contract.CapabilityFailure("substring search is not indexable", nil)
	}

	fields := requiredFields(q)
	if !ordered && len(fields) == 1 {
		// single-field indexes exist implicitly
		return nil
	}
	for _, idx := range p.indexes {
		if idx.Collection != collection || !sameFields(idx.Fields, fields) {
			continue
		}
		if !ordered || idx.OrderBy == q.Sort.Field {
			return nil
		}
	}
	return contract.CapabilityFailure(fmt.Sprintf("no composite index on %s(%s) ordered by %s",
		collection, strings.Join(fields, ","), q.Sort.Field), nil)
}

func requiredFields(q contract.CompoundQuery) []string {
	fields := []string{"ownerId"}
	if q.Scope.NotebookId != nil {
		fields = append(fields, "notebookId")
	}
	if q.Filter.Resolved != nil {
		fields = append(fields, "isResolved")
	}
	if q.Filter.Category != nil {
		fields = append(fields, "category")
	}
	if len(q.Filter.Tags) > 0 {
		fields = append(fields, "tags")
	}
	return fields
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := slices.Clone(a)
	sb := slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}
