package mongodb

import (
	"time"

	"medstudy-be/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type notebookDocument struct {
	ID          string     `bson:"_id"`
	OwnerID     string     `bson:"ownerId"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	IsPublic    bool       `bson:"isPublic"`
	Tags        []string   `bson:"tags"`
	EntryCount  int        `bson:"entryCount"`
	LastEntryAt *time.Time `bson:"lastEntryAt"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

type entryDocument struct {
	ID         string `bson:"_id"`
	NotebookID string `bson:"notebookId"`
	OwnerID    string `bson:"ownerId"`
	QuestionID string `bson:"questionId"`

	Note        string   `bson:"note"`
	Explanation string   `bson:"explanation"`
	KeyPoints   []string `bson:"keyPoints"`
	Tags        []string `bson:"tags"`
	Category    string   `bson:"category"`

	Statement     string `bson:"statement"`
	CorrectAnswer string `bson:"correctAnswer"`
	Subject       string `bson:"subject"`

	IsResolved bool       `bson:"isResolved"`
	ResolvedAt *time.Time `bson:"resolvedAt"`

	IsInReviewSystem bool       `bson:"isInReviewSystem"`
	ReviewItemID     *string    `bson:"reviewItemId"`
	LastReviewedAt   *time.Time `bson:"lastReviewedAt"`

	Difficulty     string `bson:"difficulty"`
	DifficultyRank int    `bson:"difficultyRank"`
	Confidence     int    `bson:"confidence"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func idString(id uuid.UUID) string { return id.String() }

func parseID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func toNotebookDocument(n *entity.Notebook) *notebookDocument {
	return &notebookDocument{
		ID:          idString(n.Id),
		OwnerID:     idString(n.OwnerId),
		Title:       n.Title,
		Description: n.Description,
		IsPublic:    n.IsPublic,
		Tags:        nonNil(n.Tags),
		EntryCount:  n.EntryCount,
		LastEntryAt: n.LastEntryAt,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (d *notebookDocument) toEntity() *entity.Notebook {
	return &entity.Notebook{
		Id:          parseID(d.ID),
		OwnerId:     parseID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		IsPublic:    d.IsPublic,
		Tags:        nonNil(d.Tags),
		EntryCount:  d.EntryCount,
		LastEntryAt: utcPtr(d.LastEntryAt),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// notebookEditableFields is the $set document of a notebook replace. Counters are left alone.
func notebookEditableFields(n *entity.Notebook) bson.M {
	return bson.M{
		"ownerId":     idString(n.OwnerId),
		"title":       n.Title,
		"description": n.Description,
		"isPublic":    n.IsPublic,
		"tags":        nonNil(n.Tags),
		"updatedAt":   n.UpdatedAt,
	}
}

func toEntryDocument(e *entity.Entry) *entryDocument {
	return &entryDocument{
		ID:               idString(e.Id),
		NotebookID:       idString(e.NotebookId),
		OwnerID:          idString(e.OwnerId),
		QuestionID:       e.QuestionId,
		Note:             e.Note,
		Explanation:      e.Explanation,
		KeyPoints:        nonNil(e.KeyPoints),
		Tags:             nonNil(e.Tags),
		Category:         e.Category,
		Statement:        e.Statement,
		CorrectAnswer:    e.CorrectAnswer,
		Subject:          e.Subject,
		IsResolved:       e.IsResolved,
		ResolvedAt:       e.ResolvedAt,
		IsInReviewSystem: e.IsInReviewSystem,
		ReviewItemID:     e.ReviewItemId,
		LastReviewedAt:   e.LastReviewedAt,
		Difficulty:       string(e.Difficulty),
		DifficultyRank:   e.Difficulty.Rank(),
		Confidence:       e.Confidence,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (d *entryDocument) toEntity() *entity.Entry {
	return &entity.Entry{
		Id:               parseID(d.ID),
		NotebookId:       parseID(d.NotebookID),
		OwnerId:          parseID(d.OwnerID),
		QuestionId:       d.QuestionID,
		Note:             d.Note,
		Explanation:      d.Explanation,
		KeyPoints:        nonNil(d.KeyPoints),
		Tags:             nonNil(d.Tags),
		Category:         d.Category,
		Statement:        d.Statement,
		CorrectAnswer:    d.CorrectAnswer,
		Subject:          d.Subject,
		IsResolved:       d.IsResolved,
		ResolvedAt:       utcPtr(d.ResolvedAt),
		IsInReviewSystem: d.IsInReviewSystem,
		ReviewItemId:     d.ReviewItemID,
		LastReviewedAt:   utcPtr(d.LastReviewedAt),
		Difficulty:       entity.Difficulty(d.Difficulty),
		Confidence:       d.Confidence,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

// entryReplaceFields is every field except the identity and createdAt.
func entryReplaceFields(e *entity.Entry) bson.M {
	d := toEntryDocument(e)
	return bson.M{
		"notebookId":       d.NotebookID,
		"ownerId":          d.OwnerID,
		"questionId":       d.QuestionID,
		"note":             d.Note,
		"explanation":      d.Explanation,
		"keyPoints":        d.KeyPoints,
		"tags":             d.Tags,
		"category":         d.Category,
		"statement":        d.Statement,
		"correctAnswer":    d.CorrectAnswer,
		"subject":          d.Subject,
		"isResolved":       d.IsResolved,
		"resolvedAt":       d.ResolvedAt,
		"isInReviewSystem": d.IsInReviewSystem,
		"reviewItemId":     d.ReviewItemID,
		"lastReviewedAt":   d.LastReviewedAt,
		"difficulty":       d.Difficulty,
		"difficultyRank":   d.DifficultyRank,
		"confidence":       d.Confidence,
		"updatedAt":        d.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
