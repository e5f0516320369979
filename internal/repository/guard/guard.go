// Package guard decides whether a requester may read or write a record.
package guard

import (
	"medstudy-be/internal/entity"

	"github.com/google/uuid"
)

type Operation int

const (
	OpRead Operation = iota
	OpWrite
)

type Decision int

const (
	Allowed Decision = iota
	Forbidden
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	default:
		return "not_found"
	}
}

// owned is satisfied by pointer record types, which makes the nil check below possible.
type owned interface {
	comparable
	entity.Record
}

// Authorize lets the owner do anything and anyone read a public record.
func Authorize[T owned](record T, requesterId uuid.UUID, op Operation) Decision {
	var zero T
	if record == zero {
		return NotFound
	}
	if record.GetOwnerId() == requesterId {
		return Allowed
	}
	if op == OpRead && record.GetIsPublic() {
		return Allowed
	}
	return Forbidden
}

// EffectiveOwner reconciles the owner stored on an entry with its parent notebook. The notebook
// is authoritative when it still exists.
func EffectiveOwner(entry *entity.Entry, notebook *entity.Notebook) uuid.UUID {
	if notebook != nil && notebook.Id == entry.NotebookId {
		return notebook.OwnerId
	}
	return entry.OwnerId
}

// AuthorizeEntry applies the entry rules: writes need the effective owner, reads are also open
// when the parent notebook is public and belongs to the same owner as the entry.
func AuthorizeEntry(entry *entity.Entry, notebook *entity.Notebook, requesterId uuid.UUID, op Operation) Decision {
	if entry == nil {
		return NotFound
	}
	owner := EffectiveOwner(entry, notebook)
	if owner == requesterId {
		return Allowed
	}
	if op == OpRead && notebook != nil && notebook.IsPublic && notebook.OwnerId == entry.OwnerId {
		return Allowed
	}
	return Forbidden
}
