// Package mongodb is the document database backend. Compound queries rely on the composite
// indexes created by EnsureIndexes; the server rejects or aborts plans it cannot serve and those
// errors surface as capability failures.
package mongodb

import (
	"context"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	NotebooksCollection = "notebooks"
	EntriesCollection   = "errorNotebookEntries"
)

var (
	_ contract.Backend       = (*Backend)(nil)
	_ contract.AtomicCounter = (*Backend)(nil)
)

type Backend struct {
	client       *mongo.Client
	db           *mongo.Database
	notebooks    *store[*entity.Notebook, notebookDocument]
	entries      *store[*entity.Entry, entryDocument]
	transactions bool
}

type Option func(*Backend)

// WithTransactions runs the notebook cascade in a multi-document transaction. It needs a
// replica set or sharded cluster.
func WithTransactions() Option {
	return func(b *Backend) { b.transactions = true }
}

func NewBackend(client *mongo.Client, database string, opts ...Option) *Backend {
	db := client.Database(database)
	b := &Backend{
		client: client,
		db:     db,
		notebooks: &store[*entity.Notebook, notebookDocument]{
			coll:      db.Collection(NotebooksCollection),
			fields:    notebookFields,
			toDoc:     toNotebookDocument,
			toEntity:  (*notebookDocument).toEntity,
			setFields: notebookEditableFields,
		},
		entries: &store[*entity.Entry, entryDocument]{
			coll:      db.Collection(EntriesCollection),
			fields:    entryFields,
			toDoc:     toEntryDocument,
			toEntity:  (*entryDocument).toEntity,
			setFields: entryReplaceFields,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Name() string { return "mongodb" }

func (b *Backend) Notebooks() contract.Collection[*entity.Notebook] { return b.notebooks }

func (b *Backend) Entries() contract.Collection[*entity.Entry] { return b.entries }

func (b *Backend) BatchDelete(ctx context.Context, notebookId uuid.UUID) error {
	if !b.transactions {
		return b.cascade(ctx, notebookId)
	}
	session, err := b.client.StartSession()
	if err != nil {
		return classify("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, b.cascade(ctx, notebookId)
	})
	return classify("cascade transaction", err)
}

// cascade removes entries before the notebook so an interrupted run can be repeated.
func (b *Backend) cascade(ctx context.Context, notebookId uuid.UUID) error {
	id := idString(notebookId)
	if _, err := b.entries.coll.DeleteMany(ctx, bson.D{{Key: "notebookId", Value: id}}); err != nil {
		return classify("cascade entries", err)
	}
	if _, err := b.notebooks.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return classify("cascade notebook", err)
	}
	return nil
}

func (b *Backend) AtomicIncrement(ctx context.Context, notebookId uuid.UUID, delta int, at time.Time) error {
	set := bson.D{
		{Key: "entryCount", Value: bson.D{{Key: "$max", Value: bson.A{
			0,
			bson.D{{Key: "$add", Value: bson.A{"$entryCount", delta}}},
		}}}},
		{Key: "updatedAt", Value: at},
	}
	if delta > 0 {
		set = append(set, bson.E{Key: "lastEntryAt", Value: at})
	}
	res, err := b.notebooks.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: idString(notebookId)}},
		mongo.Pipeline{bson.D{{Key: "$set", Value: set}}},
	)
	if err != nil {
		return classify("increment entry count", err)
	}
	if res.MatchedCount == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (b *Backend) SetEntryCount(ctx context.Context, notebookId uuid.UUID, count int, lastEntryAt *time.Time, at time.Time) error {
	res, err := b.notebooks.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: idString(notebookId)}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "entryCount", Value: max(0, count)},
			{Key: "lastEntryAt", Value: lastEntryAt},
			{Key: "updatedAt", Value: at},
		}}},
	)
	if err != nil {
		return classify("set entry count", err)
	}
	if res.MatchedCount == 0 {
		return contract.ErrNotFound
	}
	return nil
}

// Drop removes the whole database. Used by the integration suite between runs.
func (b *Backend) Drop(ctx context.Context) error {
	return b.db.Drop(ctx)
}
