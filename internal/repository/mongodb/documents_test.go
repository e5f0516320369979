package mongodb

import (
	"slices"
	"testing"
	"time"

	"medstudy-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// BSON datetimes keep milliseconds, so fixtures stay on whole milliseconds.
var fixedCreated = time.Date(2024, 3, 1, 8, 0, 0, 125_000_000, time.UTC)

func fullEntry() *entity.Entry {
	resolved := fixedCreated.Add(2 * time.Hour)
	reviewed := fixedCreated.Add(26 * time.Hour)
	reviewItem := "review-item-17"
	return &entity.Entry{
		Id:               uuid.New(),
		NotebookId:       uuid.New(),
		OwnerId:          uuid.New(),
		QuestionId:       "q-cardio-042",
		Note:             "Picked ACE inhibitor in bilateral renal artery stenosis",
		Explanation:      "ACE inhibitors drop GFR when both kidneys depend on efferent tone",
		KeyPoints:        []string{"efferent arteriole", "bilateral stenosis", "creatinine rise"},
		Tags:             []string{"renal", "pharm", "acid-base"},
		Category:         "concept",
		Statement:        "A 68-year-old man with resistant hypertension...",
		CorrectAnswer:    "D",
		Subject:          "Pharmacology",
		IsResolved:       true,
		ResolvedAt:       &resolved,
		IsInReviewSystem: true,
		ReviewItemId:     &reviewItem,
		LastReviewedAt:   &reviewed,
		Difficulty:       entity.DifficultyHard,
		Confidence:       4,
		CreatedAt:        fixedCreated,
		UpdatedAt:        reviewed,
	}
}

func fullNotebook() *entity.Notebook {
	last := fixedCreated.Add(time.Hour)
	return &entity.Notebook{
		Id:          uuid.New(),
		OwnerId:     uuid.New(),
		Title:       "Renal physiology",
		Description: "Block 3 mistakes",
		IsPublic:    true,
		Tags:        []string{"block-3", "renal"},
		EntryCount:  12,
		LastEntryAt: &last,
		CreatedAt:   fixedCreated,
		UpdatedAt:   last,
	}
}

func roundTrip[D any](t *testing.T, doc *D) *D {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var back D
	require.NoError(t, bson.Unmarshal(raw, &back))
	return &back
}

func documentKeys(t *testing.T, doc interface{}) []string {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	return mapKeys(m)
}

func mapKeys(m bson.M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func without(keys []string, drop ...string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !slices.Contains(drop, k) {
			out = append(out, k)
		}
	}
	return out
}

func TestEntryDocumentRoundTrip(t *testing.T) {
	e := fullEntry()
	back := roundTrip(t, toEntryDocument(e)).toEntity()
	assert.Equal(t, e, back)
}

func TestEntryDocumentKeepsUnsetOptionals(t *testing.T) {
	e := fullEntry()
	e.ResolvedAt, e.ReviewItemId, e.LastReviewedAt = nil, nil, nil
	e.KeyPoints, e.Tags = nil, nil

	back := roundTrip(t, toEntryDocument(e)).toEntity()
	assert.Nil(t, back.ResolvedAt)
	assert.Nil(t, back.ReviewItemId)
	assert.Nil(t, back.LastReviewedAt)
	assert.Equal(t, []string{}, back.KeyPoints)
	assert.Equal(t, []string{}, back.Tags)
}

func TestNotebookDocumentRoundTrip(t *testing.T) {
	n := fullNotebook()
	back := roundTrip(t, toNotebookDocument(n)).toEntity()
	assert.Equal(t, n, back)
}

func TestReplaceFieldsCoverDocument(t *testing.T) {
	entryKeys := documentKeys(t, toEntryDocument(fullEntry()))
	assert.ElementsMatch(t, without(entryKeys, "_id", "createdAt"), mapKeys(entryReplaceFields(fullEntry())))

	// counters belong to the counter maintainer
	notebookKeys := documentKeys(t, toNotebookDocument(fullNotebook()))
	assert.ElementsMatch(t,
		without(notebookKeys, "_id", "createdAt", "entryCount", "lastEntryAt"),
		mapKeys(notebookEditableFields(fullNotebook())),
	)
}
