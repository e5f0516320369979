package specification

import "gorm.io/gorm"

// Specification is one composable clause of a listing query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
