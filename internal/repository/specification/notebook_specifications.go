package specification

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ByNotebookID struct {
	NotebookID uuid.UUID
}

func (s ByNotebookID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notebook_id = ?", s.NotebookID)
}

type ResolvedIs struct {
	Resolved bool
}

func (s ResolvedIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_resolved = ?", s.Resolved)
}

type CategoryIs struct {
	Category string
}

func (s CategoryIs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}

// TagsOverlap matches rows carrying at least one of Tags.
type TagsOverlap struct {
	Tags []string
}

func (s TagsOverlap) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tags && ?", pq.Array(s.Tags))
}
