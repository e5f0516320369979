package mapper

import (
	"medstudy-be/internal/entity"
	"medstudy-be/internal/model"
)

type EntryMapper struct{}

func NewEntryMapper() *EntryMapper {
	return &EntryMapper{}
}

func (m *EntryMapper) ToEntity(e *model.ErrorNotebookEntry) *entity.Entry {
	if e == nil {
		return nil
	}
	return &entity.Entry{
		Id:               e.Id,
		NotebookId:       e.NotebookId,
		OwnerId:          e.OwnerId,
		QuestionId:       e.QuestionId,
		Note:             e.Note,
		Explanation:      e.Explanation,
		KeyPoints:        nonNil(e.KeyPoints),
		Tags:             nonNil(e.Tags),
		Category:         e.Category,
		Statement:        e.Statement,
		CorrectAnswer:    e.CorrectAnswer,
		Subject:          e.Subject,
		IsResolved:       e.IsResolved,
		ResolvedAt:       utcPtr(e.ResolvedAt),
		IsInReviewSystem: e.IsInReviewSystem,
		ReviewItemId:     e.ReviewItemId,
		LastReviewedAt:   utcPtr(e.LastReviewedAt),
		Difficulty:       entity.Difficulty(e.Difficulty),
		Confidence:       int(e.Confidence),
		CreatedAt:        e.CreatedAt.UTC(),
		UpdatedAt:        e.UpdatedAt.UTC(),
	}
}

func (m *EntryMapper) ToModel(e *entity.Entry) *model.ErrorNotebookEntry {
	if e == nil {
		return nil
	}
	return &model.ErrorNotebookEntry{
		Id:               e.Id,
		NotebookId:       e.NotebookId,
		OwnerId:          e.OwnerId,
		QuestionId:       e.QuestionId,
		Note:             e.Note,
		Explanation:      e.Explanation,
		KeyPoints:        nonNil(e.KeyPoints),
		Tags:             nonNil(e.Tags),
		Category:         e.Category,
		Statement:        e.Statement,
		CorrectAnswer:    e.CorrectAnswer,
		Subject:          e.Subject,
		IsResolved:       e.IsResolved,
		ResolvedAt:       e.ResolvedAt,
		IsInReviewSystem: e.IsInReviewSystem,
		ReviewItemId:     e.ReviewItemId,
		LastReviewedAt:   e.LastReviewedAt,
		Difficulty:       string(e.Difficulty),
		DifficultyRank:   int16(e.Difficulty.Rank()),
		Confidence:       int16(e.Confidence),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func (m *EntryMapper) ToEntities(entries []*model.ErrorNotebookEntry) []*entity.Entry {
	entities := make([]*entity.Entry, len(entries))
	for i, e := range entries {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
