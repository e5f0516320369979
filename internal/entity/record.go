package entity

import (
	"bytes"
	"cmp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is the capability set shared by every persisted record. The pagination executor, the
// fallback scanner and the ownership guard are written against it.
type Record interface {
	GetId() uuid.UUID
	GetOwnerId() uuid.UUID
	GetIsPublic() bool
	InScope(s Scope) bool
	Matches(f Filter) bool
	SortValue(field SortField) any
}

// Scope is the equality-only restriction every backend can always serve.
type Scope struct {
	OwnerId    uuid.UUID
	NotebookId *uuid.UUID
}

type Filter struct {
	Resolved *bool
	Category *string
	Tags     []string // any-of

	// Search is a case-insensitive substring match. Folding agrees across backends for ASCII only:
	// the scanner lowercases with Unicode rules, ILIKE folds by the database locale.
	Search string
}

func (f Filter) IsZero() bool {
	return f.Resolved == nil && f.Category == nil && len(f.Tags) == 0 && f.Search == ""
}

type SortField string

const (
	SortByCreatedAt  SortField = "createdAt"
	SortByUpdatedAt  SortField = "updatedAt"
	SortByTitle      SortField = "title"
	SortByEntryCount SortField = "entryCount"
	SortBySubject    SortField = "subject"
	SortByDifficulty SortField = "difficulty"
	SortByConfidence SortField = "confidence"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type SortFieldSet struct {
	Default SortField
	Allowed []SortField
}

// Normalize returns field when allowed and the default otherwise.
func (s SortFieldSet) Normalize(field SortField) SortField {
	for _, a := range s.Allowed {
		if a == field {
			return field
		}
	}
	return s.Default
}

// CompareSortValues orders two values returned by Record.SortValue for the same field.
func CompareSortValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		return av.Compare(b.(time.Time))
	case string:
		return strings.Compare(av, b.(string))
	case int:
		return cmp.Compare(av, b.(int))
	}
	return 0
}

// CompareIds is the tiebreak used on every query path: ascending byte order of the id.
func CompareIds(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// Now returns the current UTC time truncated to milliseconds, the precision shared by all backends.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
