package mongodb

import (
	"context"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// store adapts one collection of documents D to the record type T.
type store[T entity.Record, D any] struct {
	coll      *mongo.Collection
	fields    fieldSet
	toDoc     func(T) *D
	toEntity  func(*D) T
	setFields func(T) bson.M
}

func (s *store[T, D]) FindById(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	var doc D
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: idString(id)}}).Decode(&doc); err != nil {
		return zero, classify("find "+s.coll.Name(), err)
	}
	return s.toEntity(&doc), nil
}

func (s *store[T, D]) Insert(ctx context.Context, record T) error {
	_, err := s.coll.InsertOne(ctx, s.toDoc(record))
	return classify("insert "+s.coll.Name(), err)
}

func (s *store[T, D]) Replace(ctx context.Context, record T) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: idString(record.GetId())}},
		bson.D{{Key: "$set", Value: s.setFields(record)}},
	)
	if err != nil {
		return classify("replace "+s.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (s *store[T, D]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: idString(id)}})
	if err != nil {
		return false, classify("delete "+s.coll.Name(), err)
	}
	return res.DeletedCount > 0, nil
}

func (s *store[T, D]) RunCompoundQuery(ctx context.Context, q contract.CompoundQuery) ([]T, error) {
	opts := options.Find().SetSort(s.fields.sortDocument(q.Sort))
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return s.find(ctx, "query", s.fields.pageFilter(q), opts)
}

func (s *store[T, D]) CountMatching(ctx context.Context, q contract.CompoundQuery) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, s.fields.matchFilter(q))
	if err != nil {
		return 0, classify("count "+s.coll.Name(), err)
	}
	return count, nil
}

func (s *store[T, D]) RunScopedScan(ctx context.Context, scope entity.Scope) ([]T, error) {
	return s.find(ctx, "scan", scopeFilter(scope), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *store[T, D]) find(ctx context.Context, op string, filter bson.D, opts *options.FindOptionsBuilder) ([]T, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(op+" "+s.coll.Name(), err)
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(op+" "+s.coll.Name(), err)
	}
	records := make([]T, len(docs))
	for i := range docs {
		records[i] = s.toEntity(&docs[i])
	}
	return records, nil
}
