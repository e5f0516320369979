package mapper

import (
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/model"
)

type NotebookMapper struct{}

func NewNotebookMapper() *NotebookMapper {
	return &NotebookMapper{}
}

func (m *NotebookMapper) ToEntity(n *model.Notebook) *entity.Notebook {
	if n == nil {
		return nil
	}
	return &entity.Notebook{
		Id:          n.Id,
		OwnerId:     n.OwnerId,
		Title:       n.Title,
		Description: n.Description,
		IsPublic:    n.IsPublic,
		Tags:        nonNil(n.Tags),
		EntryCount:  n.EntryCount,
		LastEntryAt: utcPtr(n.LastEntryAt),
		CreatedAt:   n.CreatedAt.UTC(),
		UpdatedAt:   n.UpdatedAt.UTC(),
	}
}

func (m *NotebookMapper) ToModel(n *entity.Notebook) *model.Notebook {
	if n == nil {
		return nil
	}
	return &model.Notebook{
		Id:          n.Id,
		OwnerId:     n.OwnerId,
		Title:       n.Title,
		Description: n.Description,
		IsPublic:    n.IsPublic,
		Tags:        nonNil(n.Tags),
		EntryCount:  n.EntryCount,
		LastEntryAt: n.LastEntryAt,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func (m *NotebookMapper) ToEntities(notebooks []*model.Notebook) []*entity.Notebook {
	entities := make([]*entity.Notebook, len(notebooks))
	for i, n := range notebooks {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// utcPtr normalizes driver times, which come back in the session zone.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
