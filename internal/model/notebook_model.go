package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Notebook struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerId     uuid.UUID      `gorm:"type:uuid;not null;index:idx_notebooks_owner_created,priority:1"`
	Title       string         `gorm:"type:varchar(255);not null"`
	Description string         `gorm:"type:text;not null;default:''"`
	IsPublic    bool           `gorm:"not null;default:false"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	EntryCount  int            `gorm:"not null;default:0"`
	LastEntryAt *time.Time
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:idx_notebooks_owner_created,priority:2"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (Notebook) TableName() string {
	return "notebooks"
}
