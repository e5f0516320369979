package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("MONGO_USE_TRANSACTIONS", "not-a-bool")

	cfg := Load()
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.False(t, cfg.Mongo.UseTransactions)
	assert.Equal(t, "medstudy", cfg.Mongo.Database)
	assert.Equal(t, "notebook.recount", cfg.Events.RecountTopic)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "localhost:4318", cfg.Tracing.Endpoint)
}

func TestLoadMongoSettings(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017/?replicaSet=rs0")
	t.Setenv("MONGO_USE_TRANSACTIONS", "true")

	cfg := Load()
	assert.Equal(t, "mongodb://db:27017/?replicaSet=rs0", cfg.Mongo.URI)
	assert.True(t, cfg.Mongo.UseTransactions)
}
