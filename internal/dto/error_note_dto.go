package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateErrorNoteRequest struct {
	NotebookId    uuid.UUID `json:"notebook_id" validate:"required"`
	QuestionId    string    `json:"question_id" validate:"max=128"`
	Note          string    `json:"note" validate:"required"`
	Explanation   string    `json:"explanation" validate:"required"`
	KeyPoints     []string  `json:"key_points"`
	Tags          []string  `json:"tags" validate:"max=20,dive,max=50"`
	Category      string    `json:"category" validate:"max=100"`
	Statement     string    `json:"statement"`
	CorrectAnswer string    `json:"correct_answer"`
	Subject       string    `json:"subject" validate:"max=255"`
	Difficulty    string    `json:"difficulty" validate:"omitempty,oneof=easy medium hard very_hard"`
	Confidence    int       `json:"confidence" validate:"omitempty,min=1,max=5"`
}

type CreateErrorNoteResponse struct {
	Entry         ErrorNoteResponse `json:"entry"`
	AddedToReview bool              `json:"added_to_review"`
}

type UpdateErrorNoteRequest struct {
	Id          uuid.UUID `json:"-"`
	Note        *string   `json:"note"`
	Explanation *string   `json:"explanation"`
	KeyPoints   *[]string `json:"key_points"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Category    *string   `json:"category" validate:"omitempty,max=100"`
	Difficulty  *string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard very_hard"`
	Confidence  *int      `json:"confidence" validate:"omitempty,min=1,max=5"`
	IsResolved  *bool     `json:"is_resolved"`
}

type ErrorNoteResponse struct {
	Id               uuid.UUID  `json:"id"`
	NotebookId       uuid.UUID  `json:"notebook_id"`
	OwnerId          uuid.UUID  `json:"owner_id"`
	QuestionId       string     `json:"question_id"`
	Note             string     `json:"note"`
	Explanation      string     `json:"explanation"`
	KeyPoints        []string   `json:"key_points"`
	Tags             []string   `json:"tags"`
	Category         string     `json:"category"`
	Statement        string     `json:"statement"`
	CorrectAnswer    string     `json:"correct_answer"`
	Subject          string     `json:"subject"`
	IsResolved       bool       `json:"is_resolved"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	IsInReviewSystem bool       `json:"is_in_review_system"`
	ReviewItemId     *string    `json:"review_item_id"`
	LastReviewedAt   *time.Time `json:"last_reviewed_at"`
	Difficulty       string     `json:"difficulty"`
	Confidence       int        `json:"confidence"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ErrorNoteFilterQuery is parsed next to ListQuery on entry listings.
type ErrorNoteFilterQuery struct {
	Resolved string `query:"resolved" validate:"omitempty,oneof=true false"`
	Category string `query:"category"`
}

// RecordReviewRequest grades one review: 0 again, 1 hard, 2 good, 3 easy.
type RecordReviewRequest struct {
	Grade        *int   `json:"grade" validate:"required,min=0,max=3"`
	ReviewTimeMs *int64 `json:"review_time_ms" validate:"omitempty,min=0"`
}

type ReviewQuestionContext struct {
	Statement     string `json:"statement"`
	CorrectAnswer string `json:"correct_answer"`
	Subject       string `json:"subject"`
}

type ReviewUserContent struct {
	Note        string   `json:"note"`
	Explanation string   `json:"explanation"`
	KeyPoints   []string `json:"key_points"`
}

type PrepareReviewResponse struct {
	EntryId         uuid.UUID             `json:"entry_id"`
	QuestionContext ReviewQuestionContext `json:"question_context"`
	UserContent     ReviewUserContent     `json:"user_content"`
	ReviewPrompt    string                `json:"review_prompt"`
}

type ErrorNoteStatsResponse struct {
	TotalEntries          int            `json:"total_entries"`
	EntriesInReviewSystem int            `json:"entries_in_review_system"`
	EntriesByDifficulty   map[string]int `json:"entries_by_difficulty"`
	EntriesBySubject      map[string]int `json:"entries_by_subject"`
	AverageConfidence     float64        `json:"average_confidence"`
	LastEntryAt           *time.Time     `json:"last_entry_at,omitempty"`
}
