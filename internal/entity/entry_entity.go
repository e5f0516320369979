package entity

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

const (
	MinConfidence     = 1
	MaxConfidence     = 5
	DefaultConfidence = 3
)

// Rank orders difficulties from easiest to hardest. Unknown values rank as medium.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyHard:
		return 2
	case DifficultyVeryHard:
		return 3
	default:
		return 1
	}
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard:
		return true
	}
	return false
}

// ClampConfidence defaults an unset (zero) confidence and bounds the rest. Used on create.
func ClampConfidence(c int) int {
	if c == 0 {
		return DefaultConfidence
	}
	return BoundConfidence(c)
}

// BoundConfidence limits an explicit confidence to 1..5.
func BoundConfidence(c int) int {
	return max(MinConfidence, min(MaxConfidence, c))
}

// Entry is one error-notebook entry. Statement, CorrectAnswer and Subject are a snapshot of the
// question at creation time and never change afterwards.
type Entry struct {
	Id         uuid.UUID
	NotebookId uuid.UUID
	OwnerId    uuid.UUID
	QuestionId string

	Note        string
	Explanation string
	KeyPoints   []string
	Tags        []string
	Category    string

	Statement     string
	CorrectAnswer string
	Subject       string

	IsResolved bool
	ResolvedAt *time.Time

	IsInReviewSystem bool
	ReviewItemId     *string
	LastReviewedAt   *time.Time

	Difficulty Difficulty
	Confidence int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EntryPatch struct {
	Note        *string
	Explanation *string
	KeyPoints   *[]string
	Tags        *[]string
	Category    *string
	Difficulty  *Difficulty
	Confidence  *int
	IsResolved  *bool
}

var EntrySortFields = SortFieldSet{
	Default: SortByCreatedAt,
	Allowed: []SortField{SortByCreatedAt, SortByUpdatedAt, SortBySubject, SortByDifficulty, SortByConfidence},
}

func (e *Entry) GetId() uuid.UUID      { return e.Id }
func (e *Entry) GetOwnerId() uuid.UUID { return e.OwnerId }

// GetIsPublic is always false: entry visibility is inherited from the parent notebook.
func (e *Entry) GetIsPublic() bool { return false }

func (e *Entry) InScope(s Scope) bool {
	if e.OwnerId != s.OwnerId {
		return false
	}
	return s.NotebookId == nil || *s.NotebookId == e.NotebookId
}

func (e *Entry) Matches(f Filter) bool {
	if f.Resolved != nil && e.IsResolved != *f.Resolved {
		return false
	}
	if f.Category != nil && e.Category != *f.Category {
		return false
	}
	if len(f.Tags) > 0 && !overlaps(e.Tags, f.Tags) {
		return false
	}
	if f.Search != "" && !containsFold(f.Search, e.Note, e.Explanation, e.Statement) {
		return false
	}
	return true
}

func (e *Entry) SortValue(field SortField) any {
	switch field {
	case SortByUpdatedAt:
		return e.UpdatedAt
	case SortBySubject:
		return e.Subject
	case SortByDifficulty:
		return e.Difficulty.Rank()
	case SortByConfidence:
		return e.Confidence
	default:
		return e.CreatedAt
	}
}

func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.KeyPoints = append([]string(nil), e.KeyPoints...)
	c.Tags = append([]string(nil), e.Tags...)
	c.ResolvedAt = cloneTime(e.ResolvedAt)
	c.LastReviewedAt = cloneTime(e.LastReviewedAt)
	if e.ReviewItemId != nil {
		id := *e.ReviewItemId
		c.ReviewItemId = &id
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
