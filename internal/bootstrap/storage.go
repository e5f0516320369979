package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"medstudy-be/internal/config"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/memory"
	"medstudy-be/internal/repository/mongodb"
	"medstudy-be/internal/repository/postgres"
	"medstudy-be/pkg/database"
)

const bootstrapModule = "Bootstrap"

// OpenBackend connects the storage backend selected by STORAGE_BACKEND. The returned close
// function releases the connection.
func OpenBackend(ctx context.Context, cfg *config.Config, log logger.ILogger) (contract.Backend, func(), error) {
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection,
			database.WithDebug(cfg.App.Environment != "production"),
			database.WithLogWriter(gormLogWriter{log: log}),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		log.Info(bootstrapModule, "Storage backend ready", map[string]interface{}{"backend": "postgres"})
		return postgres.NewBackend(db), closeFn, nil

	case config.StorageMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, nil, err
		}
		var opts []mongodb.Option
		if cfg.Mongo.UseTransactions {
			opts = append(opts, mongodb.WithTransactions())
		}
		backend := mongodb.NewBackend(client, cfg.Mongo.Database, opts...)
		if err := backend.EnsureIndexes(ctx); err != nil {
			log.Warn(bootstrapModule, "Failed to ensure mongo indexes, listings may fall back to scans", map[string]interface{}{
				"error": err.Error(),
			})
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		log.Info(bootstrapModule, "Storage backend ready", map[string]interface{}{
			"backend":      "mongodb",
			"database":     cfg.Mongo.Database,
			"transactions": cfg.Mongo.UseTransactions,
		})
		return backend, closeFn, nil

	case config.StorageMemory:
		log.Warn(bootstrapModule, "Using in-memory storage, data is lost on restart", nil)
		return memory.NewBackend(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
}

// gormLogWriter forwards gorm's statement log into the application logger.
type gormLogWriter struct {
	log logger.ILogger
}

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.log.Debug("Gorm", strings.TrimSpace(fmt.Sprintf(format, args...)), nil)
}
