package mongodb

import (
	"errors"
	"testing"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestMatchFilterScopeOnly(t *testing.T) {
	owner := uuid.New()
	filter := notebookFields.matchFilter(contract.CompoundQuery{Scope: entity.Scope{OwnerId: owner}})
	assert.Equal(t, bson.D{{Key: "ownerId", Value: owner.String()}}, filter)
}

func TestMatchFilterCombinesPredicates(t *testing.T) {
	owner, notebook := uuid.New(), uuid.New()
	resolved := true
	filter := entryFields.matchFilter(contract.CompoundQuery{
		Scope:  entity.Scope{OwnerId: owner, NotebookId: &notebook},
		Filter: entity.Filter{Resolved: &resolved, Tags: []string{"renal"}, Search: "a.b"},
	})

	require.Len(t, filter, 1)
	assert.Equal(t, "$and", filter[0].Key)
	clauses := filter[0].Value.(bson.A)
	require.Len(t, clauses, 4)
	assert.Equal(t, bson.D{{Key: "ownerId", Value: owner.String()}, {Key: "notebookId", Value: notebook.String()}}, clauses[0])
	assert.Equal(t, bson.D{{Key: "isResolved", Value: true}}, clauses[1])

	search := clauses[3].(bson.D)[0].Value.(bson.A)
	require.Len(t, search, 3)
	assert.Equal(t, bson.D{{Key: "note", Value: bson.Regex{Pattern: `a\.b`, Options: "i"}}}, search[0])
}

func TestNotebookFilterSkipsEntryOnlyPredicates(t *testing.T) {
	owner := uuid.New()
	category := "recall"
	filter := notebookFields.matchFilter(contract.CompoundQuery{
		Scope:  entity.Scope{OwnerId: owner},
		Filter: entity.Filter{Category: &category},
	})
	assert.Equal(t, bson.D{{Key: "ownerId", Value: owner.String()}}, filter)
}

func TestPageFilterKeyset(t *testing.T) {
	owner, anchor := uuid.New(), uuid.New()
	filter := entryFields.pageFilter(contract.CompoundQuery{
		Scope:  entity.Scope{OwnerId: owner},
		Sort:   contract.SortSpec{Field: entity.SortByDifficulty, Order: entity.SortDesc},
		Anchor: &contract.Anchor{Id: anchor, Value: 2},
	})

	clauses := filter[0].Value.(bson.A)
	after := clauses[1].(bson.D)[0].Value.(bson.A)
	assert.Equal(t, bson.D{{Key: "difficultyRank", Value: bson.D{{Key: "$lt", Value: 2}}}}, after[0])
	assert.Equal(t, bson.D{
		{Key: "difficultyRank", Value: 2},
		{Key: "_id", Value: bson.D{{Key: "$gt", Value: anchor.String()}}},
	}, after[1])
}

func TestSortDocumentBreaksTiesById(t *testing.T) {
	sort := notebookFields.sortDocument(contract.SortSpec{Field: entity.SortByTitle, Order: entity.SortAsc})
	assert.Equal(t, bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}, sort)

	sort = entryFields.sortDocument(contract.SortSpec{Field: entity.SortByTitle})
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, sort)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no documents", mongo.ErrNoDocuments, contract.ErrNotFound},
		{"index not found", mongo.CommandError{Code: 27, Message: "index not found"}, contract.ErrCapabilityFailure},
		{"memory limit", mongo.CommandError{Code: 292, Message: "Sort exceeded memory limit"}, contract.ErrCapabilityFailure},
		{"duplicate key", mongo.CommandError{Code: 11000}, contract.ErrBackendFault},
		{"network", errors.New("connection reset"), contract.ErrBackendFault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tt.err), tt.want)
		})
	}
}

func TestEntryDocumentCarriesDifficultyRank(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	e := &entity.Entry{
		Id:         uuid.New(),
		NotebookId: uuid.New(),
		OwnerId:    uuid.New(),
		Difficulty: entity.DifficultyVeryHard,
		Confidence: 4,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	doc := toEntryDocument(e)
	assert.Equal(t, 3, doc.DifficultyRank)
	assert.Equal(t, []string{}, doc.Tags)

	back := doc.toEntity()
	assert.Equal(t, e.Id, back.Id)
	assert.Equal(t, e.Difficulty, back.Difficulty)
	assert.Equal(t, created, back.CreatedAt)

	fields := entryReplaceFields(e)
	assert.NotContains(t, fields, "_id")
	assert.NotContains(t, fields, "createdAt")
}

func TestIndexModelsCoverEverySortField(t *testing.T) {
	models := indexModels()
	assert.Len(t, models[NotebooksCollection], len(notebookFields.sortFields))
	assert.Len(t, models[EntriesCollection], 4+len(entryFields.sortFields))
}
