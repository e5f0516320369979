package main

import (
	"context"
	"log"
	"time"

	"medstudy-be/internal/config"
	"medstudy-be/internal/repository/mongodb"
	"medstudy-be/internal/repository/postgres"
	"medstudy-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		if cfg.Database.Connection == "" {
			log.Fatal("Error: DB_CONNECTION_STRING is not set")
		}

		// 2. Connect to Database using existing GORM helpers
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.WithDebug(true))
		if err != nil {
			log.Fatal("Error: Failed to connect to database:", err)
		}

		log.Println("Running AutoMigrate for notebooks and error_notebook_entries...")
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("Error: Migration failed: %v", err)
		}

	case config.StorageMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			log.Fatal("Error: Failed to connect to mongo:", err)
		}
		defer client.Disconnect(context.Background())

		log.Printf("Ensuring indexes on database %s...", cfg.Mongo.Database)
		if err := mongodb.NewBackend(client, cfg.Mongo.Database).EnsureIndexes(ctx); err != nil {
			log.Fatalf("Error: Index creation failed: %v", err)
		}

	default:
		log.Fatalf("Error: nothing to migrate for STORAGE_BACKEND=%q", cfg.Storage.Backend)
	}

	log.Println("✅ Migration completed")
}
