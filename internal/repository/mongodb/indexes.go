package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func compound(keys ...string) mongo.IndexModel {
	d := bson.D{}
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: d}
}

func indexModels() map[string][]mongo.IndexModel {
	notebooks := []mongo.IndexModel{}
	for _, field := range notebookFields.sortFields {
		notebooks = append(notebooks, compound("ownerId", field, "_id"))
	}

	entries := []mongo.IndexModel{
		compound("ownerId", "createdAt", "_id"),
		compound("ownerId", "notebookId", "isResolved", "createdAt", "_id"),
		compound("notebookId"),
		compound("tags"),
	}
	for _, field := range entryFields.sortFields {
		entries = append(entries, compound("ownerId", "notebookId", field, "_id"))
	}
	return map[string][]mongo.IndexModel{
		NotebooksCollection: notebooks,
		EntriesCollection:   entries,
	}
}

// EnsureIndexes creates the composite indexes the native query paths rely on. Creating an
// index that already exists is a no-op on the server.
func (b *Backend) EnsureIndexes(ctx context.Context) error {
	for name, models := range indexModels() {
		if _, err := b.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
