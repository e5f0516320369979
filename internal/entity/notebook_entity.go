package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Notebook struct {
	Id          uuid.UUID
	OwnerId     uuid.UUID
	Title       string
	Description string
	IsPublic    bool
	Tags        []string
	EntryCount  int
	LastEntryAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NotebookPatch carries the user-editable fields of a notebook. Nil fields are left untouched.
type NotebookPatch struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Tags        *[]string
}

var NotebookSortFields = SortFieldSet{
	Default: SortByCreatedAt,
	Allowed: []SortField{SortByCreatedAt, SortByUpdatedAt, SortByTitle, SortByEntryCount},
}

func (n *Notebook) GetId() uuid.UUID      { return n.Id }
func (n *Notebook) GetOwnerId() uuid.UUID { return n.OwnerId }
func (n *Notebook) GetIsPublic() bool     { return n.IsPublic }

func (n *Notebook) InScope(s Scope) bool {
	if n.OwnerId != s.OwnerId {
		return false
	}
	// notebooks have no parent, a notebook scope only matches the notebook itself
	return s.NotebookId == nil || *s.NotebookId == n.Id
}

// Matches evaluates the filter in memory. Resolved and Category do not apply to notebooks.
func (n *Notebook) Matches(f Filter) bool {
	if len(f.Tags) > 0 && !overlaps(n.Tags, f.Tags) {
		return false
	}
	if f.Search != "" && !containsFold(f.Search, n.Title, n.Description) {
		return false
	}
	return true
}

func (n *Notebook) SortValue(field SortField) any {
	switch field {
	case SortByUpdatedAt:
		return n.UpdatedAt
	case SortByTitle:
		return n.Title
	case SortByEntryCount:
		return n.EntryCount
	default:
		return n.CreatedAt
	}
}

func (n *Notebook) Clone() *Notebook {
	if n == nil {
		return nil
	}
	c := *n
	c.Tags = append([]string(nil), n.Tags...)
	if n.LastEntryAt != nil {
		t := *n.LastEntryAt
		c.LastEntryAt = &t
	}
	return &c
}

func overlaps(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
