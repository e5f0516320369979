package mongodb

import (
	"regexp"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type fieldSet struct {
	sortFields   map[entity.SortField]string
	searchFields []string
	entries      bool
}

var notebookFields = fieldSet{
	sortFields: map[entity.SortField]string{
		entity.SortByCreatedAt:  "createdAt",
		entity.SortByUpdatedAt:  "updatedAt",
		entity.SortByTitle:      "title",
		entity.SortByEntryCount: "entryCount",
	},
	searchFields: []string{"title", "description"},
}

var entryFields = fieldSet{
	sortFields: map[entity.SortField]string{
		entity.SortByCreatedAt:  "createdAt",
		entity.SortByUpdatedAt:  "updatedAt",
		entity.SortBySubject:    "subject",
		entity.SortByDifficulty: "difficultyRank",
		entity.SortByConfidence: "confidence",
	},
	searchFields: []string{"note", "explanation", "statement"},
	entries:      true,
}

func (f fieldSet) sortField(field entity.SortField) string {
	if name, ok := f.sortFields[field]; ok {
		return name
	}
	return "createdAt"
}

func scopeFilter(scope entity.Scope) bson.D {
	filter := bson.D{{Key: "ownerId", Value: idString(scope.OwnerId)}}
	if scope.NotebookId != nil {
		filter = append(filter, bson.E{Key: "notebookId", Value: idString(*scope.NotebookId)})
	}
	return filter
}

// matchFilter is the scope plus the filter predicates, without the keyset anchor.
func (f fieldSet) matchFilter(q contract.CompoundQuery) bson.D {
	clauses := bson.A{scopeFilter(q.Scope)}
	if f.entries && q.Filter.Resolved != nil {
		clauses = append(clauses, bson.D{{Key: "isResolved", Value: *q.Filter.Resolved}})
	}
	if f.entries && q.Filter.Category != nil {
		clauses = append(clauses, bson.D{{Key: "category", Value: *q.Filter.Category}})
	}
	if len(q.Filter.Tags) > 0 {
		clauses = append(clauses, bson.D{{Key: "tags", Value: bson.D{{Key: "$in", Value: q.Filter.Tags}}}})
	}
	if q.Filter.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(q.Filter.Search), Options: "i"}
		alternatives := bson.A{}
		for _, field := range f.searchFields {
			alternatives = append(alternatives, bson.D{{Key: field, Value: pattern}})
		}
		clauses = append(clauses, bson.D{{Key: "$or", Value: alternatives}})
	}
	if len(clauses) == 1 {
		return clauses[0].(bson.D)
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

// pageFilter adds the keyset predicate: rows strictly after (anchor value, anchor id).
func (f fieldSet) pageFilter(q contract.CompoundQuery) bson.D {
	match := f.matchFilter(q)
	if q.Anchor == nil {
		return match
	}
	field := f.sortField(q.Sort.Field)
	op := "$gt"
	if q.Sort.Desc() {
		op = "$lt"
	}
	after := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: field, Value: bson.D{{Key: op, Value: q.Anchor.Value}}}},
		bson.D{
			{Key: field, Value: q.Anchor.Value},
			{Key: "_id", Value: bson.D{{Key: "$gt", Value: idString(q.Anchor.Id)}}},
		},
	}}}
	return bson.D{{Key: "$and", Value: bson.A{match, after}}}
}

func (f fieldSet) sortDocument(sort contract.SortSpec) bson.D {
	direction := 1
	if sort.Desc() {
		direction = -1
	}
	return bson.D{
		{Key: f.sortField(sort.Field), Value: direction},
		{Key: "_id", Value: 1},
	}
}
