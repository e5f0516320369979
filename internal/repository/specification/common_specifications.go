package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OwnedBy restricts to records of one owner
type OwnedBy struct {
	OwnerID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerID)
}

// OrderBy sorts by Column and then by id ascending so that ties are deterministic.
// Collate forces bytewise string ordering.
type OrderBy struct {
	Column  string
	Desc    bool
	Collate bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", collated(s.Column, s.Collate), direction)).Order("id ASC")
}

// StartAfter is the keyset predicate matching OrderBy: rows strictly after (Value, ID).
type StartAfter struct {
	Column  string
	Desc    bool
	Collate bool
	Value   interface{}
	ID      uuid.UUID
}

func (s StartAfter) Apply(db *gorm.DB) *gorm.DB {
	op := ">"
	if s.Desc {
		op = "<"
	}
	col := collated(s.Column, s.Collate)
	query := fmt.Sprintf("(%s %s ? OR (%s = ? AND id > ?))", col, op, col)
	return db.Where(query, s.Value, s.Value, s.ID)
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	if s.Offset > 0 {
		db = db.Offset(s.Offset)
	}
	return db
}

func collated(column string, collate bool) string {
	if collate {
		return column + ` COLLATE "C"`
	}
	return column
}
