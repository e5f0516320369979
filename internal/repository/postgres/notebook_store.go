package postgres

import (
	"context"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/mapper"
	"medstudy-be/internal/model"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type NotebookStore struct {
	db     *gorm.DB
	mapper *mapper.NotebookMapper
}

func NewNotebookStore(db *gorm.DB) *NotebookStore {
	return &NotebookStore{
		db:     db,
		mapper: mapper.NewNotebookMapper(),
	}
}

func (s *NotebookStore) FindById(ctx context.Context, id uuid.UUID) (*entity.Notebook, error) {
	var m model.Notebook
	query := applySpecifications(s.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		return nil, classify("find notebook", err)
	}
	return s.mapper.ToEntity(&m), nil
}

func (s *NotebookStore) Insert(ctx context.Context, notebook *entity.Notebook) error {
	m := s.mapper.ToModel(notebook)
	return classify("insert notebook", s.db.WithContext(ctx).Create(m).Error)
}

// Replace writes the editable columns only, entry_count and last_entry_at belong to the counter.
func (s *NotebookStore) Replace(ctx context.Context, notebook *entity.Notebook) error {
	res := s.db.WithContext(ctx).Model(&model.Notebook{}).
		Where("id = ?", notebook.Id).
		Updates(map[string]interface{}{
			"owner_id":    notebook.OwnerId,
			"title":       notebook.Title,
			"description": notebook.Description,
			"is_public":   notebook.IsPublic,
			"tags":        pq.StringArray(nonNilTags(notebook.Tags)),
			"updated_at":  notebook.UpdatedAt,
		})
	if res.Error != nil {
		return classify("replace notebook", res.Error)
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (s *NotebookStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.Notebook{}, "id = ?", id)
	if res.Error != nil {
		return false, classify("delete notebook", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *NotebookStore) RunCompoundQuery(ctx context.Context, q contract.CompoundQuery) ([]*entity.Notebook, error) {
	var models []*model.Notebook
	query := applySpecifications(s.db.WithContext(ctx), notebookTable.pageSpecs(q, false)...)
	if err := query.Find(&models).Error; err != nil {
		return nil, classify("query notebooks", err)
	}
	return s.mapper.ToEntities(models), nil
}

func (s *NotebookStore) CountMatching(ctx context.Context, q contract.CompoundQuery) (int64, error) {
	var count int64
	query := applySpecifications(s.db.WithContext(ctx).Model(&model.Notebook{}), notebookTable.filterSpecs(q, false)...)
	if err := query.Count(&count).Error; err != nil {
		return 0, classify("count notebooks", err)
	}
	return count, nil
}

func (s *NotebookStore) RunScopedScan(ctx context.Context, scope entity.Scope) ([]*entity.Notebook, error) {
	var models []*model.Notebook
	specs := []specification.Specification{specification.OwnedBy{OwnerID: scope.OwnerId}}
	if scope.NotebookId != nil {
		specs = append(specs, specification.ByID{ID: *scope.NotebookId})
	}
	if err := applySpecifications(s.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, classify("scan notebooks", err)
	}
	return s.mapper.ToEntities(models), nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
