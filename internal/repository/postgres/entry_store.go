package postgres

import (
	"context"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/mapper"
	"medstudy-be/internal/model"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryStore struct {
	db     *gorm.DB
	mapper *mapper.EntryMapper
}

func NewEntryStore(db *gorm.DB) *EntryStore {
	return &EntryStore{
		db:     db,
		mapper: mapper.NewEntryMapper(),
	}
}

func (s *EntryStore) FindById(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	var m model.ErrorNotebookEntry
	query := applySpecifications(s.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		return nil, classify("find entry", err)
	}
	return s.mapper.ToEntity(&m), nil
}

func (s *EntryStore) Insert(ctx context.Context, entry *entity.Entry) error {
	m := s.mapper.ToModel(entry)
	return classify("insert entry", s.db.WithContext(ctx).Create(m).Error)
}

func (s *EntryStore) Replace(ctx context.Context, entry *entity.Entry) error {
	m := s.mapper.ToModel(entry)
	// Select("*") so zero values (isResolved=false, nil resolvedAt) are written too
	res := s.db.WithContext(ctx).Model(&model.ErrorNotebookEntry{Id: entry.Id}).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		return classify("replace entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (s *EntryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.ErrorNotebookEntry{}, "id = ?", id)
	if res.Error != nil {
		return false, classify("delete entry", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *EntryStore) DeleteByNotebook(ctx context.Context, notebookId uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&model.ErrorNotebookEntry{}, "notebook_id = ?", notebookId)
	if res.Error != nil {
		return 0, classify("delete notebook entries", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *EntryStore) RunCompoundQuery(ctx context.Context, q contract.CompoundQuery) ([]*entity.Entry, error) {
	var models []*model.ErrorNotebookEntry
	query := applySpecifications(s.db.WithContext(ctx), entryTable.pageSpecs(q, true)...)
	if err := query.Find(&models).Error; err != nil {
		return nil, classify("query entries", err)
	}
	return s.mapper.ToEntities(models), nil
}

func (s *EntryStore) CountMatching(ctx context.Context, q contract.CompoundQuery) (int64, error) {
	var count int64
	query := applySpecifications(s.db.WithContext(ctx).Model(&model.ErrorNotebookEntry{}), entryTable.filterSpecs(q, true)...)
	if err := query.Count(&count).Error; err != nil {
		return 0, classify("count entries", err)
	}
	return count, nil
}

func (s *EntryStore) RunScopedScan(ctx context.Context, scope entity.Scope) ([]*entity.Entry, error) {
	var models []*model.ErrorNotebookEntry
	if err := applySpecifications(s.db.WithContext(ctx), scopeSpecs(scope)...).Find(&models).Error; err != nil {
		return nil, classify("scan entries", err)
	}
	return s.mapper.ToEntities(models), nil
}
