package pagination

import (
	"slices"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"
)

// Window applies filter, sort, keyset anchor and offset/limit of q to records that were already
// restricted to q.Scope. It returns the window and the number of records matching the filter.
// Backends without a query engine use it as their native path, and the executor uses it as the
// fallback, so both produce identical orderings.
func Window[T entity.Record](records []T, q contract.CompoundQuery) ([]T, int) {
	matched := make([]T, 0, len(records))
	for _, r := range records {
		if r.InScope(q.Scope) && r.Matches(q.Filter) {
			matched = append(matched, r)
		}
	}
	total := len(matched)

	slices.SortStableFunc(matched, func(a, b T) int {
		return Compare(a, b, q.Sort)
	})

	if q.Anchor != nil {
		start := len(matched)
		for i, r := range matched {
			if after(r, q.Anchor, q.Sort) {
				start = i
				break
			}
		}
		matched = matched[start:]
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []T{}, total
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, total
}

// Compare orders two records by sort value in the requested direction, then by id ascending.
func Compare[T entity.Record](a, b T, sort contract.SortSpec) int {
	c := entity.CompareSortValues(a.SortValue(sort.Field), b.SortValue(sort.Field))
	if sort.Desc() {
		c = -c
	}
	if c != 0 {
		return c
	}
	return entity.CompareIds(a.GetId(), b.GetId())
}

func after[T entity.Record](r T, anchor *contract.Anchor, sort contract.SortSpec) bool {
	c := entity.CompareSortValues(r.SortValue(sort.Field), anchor.Value)
	if sort.Desc() {
		c = -c
	}
	if c != 0 {
		return c > 0
	}
	return entity.CompareIds(r.GetId(), anchor.Id) > 0
}
