package postgres

import (
	"context"
	"fmt"

	"medstudy-be/internal/model"

	"gorm.io/gorm"
)

var postMigrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_notebooks_tags ON notebooks USING GIN (tags)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_tags ON error_notebook_entries USING GIN (tags)`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_entries_notebook') THEN
		ALTER TABLE error_notebook_entries
			ADD CONSTRAINT fk_entries_notebook FOREIGN KEY (notebook_id)
			REFERENCES notebooks (id) ON DELETE CASCADE;
	END IF;
END $$`,
}

// Migrate creates the tables and the indexes gorm tags cannot express. It is idempotent.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&model.Notebook{}, &model.ErrorNotebookEntry{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range postMigrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("post migration: %w", err)
		}
	}
	return nil
}
