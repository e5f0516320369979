// Package postgres is the relational backend. Every compound query is pushed down to SQL, the
// entry counter is a single atomic UPDATE and the notebook cascade runs in one transaction.
package postgres

import (
	"context"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/model"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	_ contract.Backend       = (*Backend)(nil)
	_ contract.AtomicCounter = (*Backend)(nil)
)

type Backend struct {
	db        *gorm.DB
	factory   RepositoryFactory
	notebooks *NotebookStore
	entries   *EntryStore
}

func NewBackend(db *gorm.DB) *Backend {
	return &Backend{
		db:        db,
		factory:   NewRepositoryFactory(db),
		notebooks: NewNotebookStore(db),
		entries:   NewEntryStore(db),
	}
}

func (b *Backend) Name() string { return "postgres" }

func (b *Backend) Notebooks() contract.Collection[*entity.Notebook] { return b.notebooks }

func (b *Backend) Entries() contract.Collection[*entity.Entry] { return b.entries }

func (b *Backend) BatchDelete(ctx context.Context, notebookId uuid.UUID) (err error) {
	uow := b.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return classify("begin cascade", err)
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	if _, err = uow.Entries().DeleteByNotebook(ctx, notebookId); err != nil {
		return err
	}
	if _, err = uow.Notebooks().Delete(ctx, notebookId); err != nil {
		return err
	}
	if err = uow.Commit(); err != nil {
		return classify("commit cascade", err)
	}
	return nil
}

func (b *Backend) AtomicIncrement(ctx context.Context, notebookId uuid.UUID, delta int, at time.Time) error {
	updates := map[string]interface{}{
		"entry_count": gorm.Expr("GREATEST(entry_count + ?, 0)", delta),
		"updated_at":  at,
	}
	if delta > 0 {
		updates["last_entry_at"] = at
	}
	res := b.db.WithContext(ctx).Model(&model.Notebook{}).Where("id = ?", notebookId).Updates(updates)
	if res.Error != nil {
		return classify("increment entry count", res.Error)
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (b *Backend) SetEntryCount(ctx context.Context, notebookId uuid.UUID, count int, lastEntryAt *time.Time, at time.Time) error {
	res := b.db.WithContext(ctx).Model(&model.Notebook{}).Where("id = ?", notebookId).
		Updates(map[string]interface{}{
			"entry_count":   max(0, count),
			"last_entry_at": lastEntryAt,
			"updated_at":    at,
		})
	if res.Error != nil {
		return classify("set entry count", res.Error)
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}
