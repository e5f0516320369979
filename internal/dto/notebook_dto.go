package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNotebookRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
}

type UpdateNotebookRequest struct {
	Id          uuid.UUID `json:"-"`
	Title       *string   `json:"title" validate:"omitempty,max=255"`
	Description *string   `json:"description"`
	IsPublic    *bool     `json:"is_public"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

type NotebookResponse struct {
	Id          uuid.UUID  `json:"id"`
	OwnerId     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsPublic    bool       `json:"is_public"`
	Tags        []string   `json:"tags"`
	EntryCount  int        `json:"entry_count"`
	LastEntryAt *time.Time `json:"last_entry_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type NotebookStatsResponse struct {
	TotalEntries               int            `json:"total_entries"`
	ResolvedEntries            int            `json:"resolved_entries"`
	UnresolvedEntries          int            `json:"unresolved_entries"`
	EntriesByCategory          map[string]int `json:"entries_by_category"`
	AverageResolutionTimeHours float64        `json:"average_resolution_time_hours"`
	LastUpdatedAt              time.Time      `json:"last_updated_at"`
}

// ListQuery is the query string of every paginated listing.
type ListQuery struct {
	Page      int    `query:"page" validate:"omitempty,min=1"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=100"`
	SortBy    string `query:"sort_by"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
	AfterId   string `query:"after_id" validate:"omitempty,uuid"`
	Search    string `query:"search" validate:"max=200"`
	Tags      string `query:"tags"` // comma separated
}

type PageResponse[T any] struct {
	Items      []T        `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	HasMore    bool       `json:"has_more"`
	NextCursor *uuid.UUID `json:"next_cursor"`
}
