package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ErrorNotebookEntry struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	NotebookId uuid.UUID `gorm:"type:uuid;not null;index:idx_entries_notebook_created,priority:2"`
	OwnerId    uuid.UUID `gorm:"type:uuid;not null;index:idx_entries_owner_created,priority:1;index:idx_entries_notebook_created,priority:1"`
	QuestionId string    `gorm:"type:varchar(128);not null;default:''"`

	Note        string                      `gorm:"type:text;not null"`
	Explanation string                      `gorm:"type:text;not null"`
	KeyPoints   datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	Tags        pq.StringArray              `gorm:"type:text[];not null;default:'{}'"`
	Category    string                      `gorm:"type:varchar(100);not null;default:''"`

	// Question snapshot
	Statement     string `gorm:"type:text;not null;default:''"`
	CorrectAnswer string `gorm:"type:text;not null;default:''"`
	Subject       string `gorm:"type:varchar(255);not null;default:''"`

	IsResolved bool `gorm:"not null;default:false"`
	ResolvedAt *time.Time

	IsInReviewSystem bool    `gorm:"not null;default:false"`
	ReviewItemId     *string `gorm:"type:varchar(128)"`
	LastReviewedAt   *time.Time

	Difficulty     string `gorm:"type:varchar(16);not null"`
	DifficultyRank int16  `gorm:"not null"`
	Confidence     int16  `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime:false;index:idx_entries_owner_created,priority:2;index:idx_entries_notebook_created,priority:3"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (ErrorNotebookEntry) TableName() string {
	return "error_notebook_entries"
}
