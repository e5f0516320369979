package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type Pagination struct {
	Page      int        `validate:"min=1"`
	Limit     int        `validate:"min=1,max=100"`
	SortBy    SortField  `validate:"omitempty"`
	SortOrder SortOrder  `validate:"omitempty,oneof=asc desc"`
	AfterId   *uuid.UUID // keyset continuation, Page is ignored when set
}

func DefaultPagination() Pagination {
	return Pagination{Page: 1, Limit: DefaultPageLimit, SortOrder: SortDesc}
}

func (p Pagination) Offset() int {
	if p.AfterId != nil {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type PageResult[T any] struct {
	Items   []T
	Total   int64
	HasMore bool
	Cursor  *uuid.UUID
}

type NotebookStats struct {
	TotalEntries               int
	ResolvedEntries            int
	UnresolvedEntries          int
	EntriesByCategory          map[string]int
	AverageResolutionTimeHours float64
	LastUpdatedAt              time.Time
}

// OwnerEntryStats summarizes every entry of one owner across notebooks.
type OwnerEntryStats struct {
	TotalEntries          int
	EntriesInReviewSystem int
	EntriesByDifficulty   map[Difficulty]int
	EntriesBySubject      map[string]int
	AverageConfidence     float64
	LastEntryAt           *time.Time
}
