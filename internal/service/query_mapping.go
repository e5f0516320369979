package service

import (
	"strconv"
	"strings"

	"medstudy-be/internal/dto"
	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
)

func toPagination(q *dto.ListQuery) (entity.Pagination, error) {
	page := entity.DefaultPagination()
	if q == nil {
		return page, nil
	}
	if q.Page > 0 {
		page.Page = q.Page
	}
	if q.Limit > 0 {
		page.Limit = q.Limit
	}
	page.SortBy = entity.SortField(q.SortBy)
	if q.SortOrder != "" {
		page.SortOrder = entity.SortOrder(q.SortOrder)
	}
	if q.AfterId != "" {
		id, err := uuid.Parse(q.AfterId)
		if err != nil {
			return page, contract.NewValidationError("after_id", "must be a uuid")
		}
		page.AfterId = &id
	}
	return page, nil
}

func toFilter(q *dto.ListQuery, f *dto.ErrorNoteFilterQuery) (entity.Filter, error) {
	var filter entity.Filter
	if q != nil {
		filter.Search = strings.TrimSpace(q.Search)
		for _, tag := range strings.Split(q.Tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	if f == nil {
		return filter, nil
	}
	if f.Resolved != "" {
		resolved, err := strconv.ParseBool(f.Resolved)
		if err != nil {
			return filter, contract.NewValidationError("resolved", "must be true or false")
		}
		filter.Resolved = &resolved
	}
	if f.Category != "" {
		category := f.Category
		filter.Category = &category
	}
	return filter, nil
}

func toPageResponse[T, R any](page entity.Pagination, result *entity.PageResult[T], convert func(T) R) *dto.PageResponse[R] {
	items := make([]R, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, convert(item))
	}
	return &dto.PageResponse[R]{
		Items:      items,
		Total:      result.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		HasMore:    result.HasMore,
		NextCursor: result.Cursor,
	}
}

func toNotebookResponse(n *entity.Notebook) *dto.NotebookResponse {
	return &dto.NotebookResponse{
		Id:          n.Id,
		OwnerId:     n.OwnerId,
		Title:       n.Title,
		Description: n.Description,
		IsPublic:    n.IsPublic,
		Tags:        n.Tags,
		EntryCount:  n.EntryCount,
		LastEntryAt: n.LastEntryAt,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toErrorNoteResponse(e *entity.Entry) *dto.ErrorNoteResponse {
	return &dto.ErrorNoteResponse{
		Id:               e.Id,
		NotebookId:       e.NotebookId,
		OwnerId:          e.OwnerId,
		QuestionId:       e.QuestionId,
		Note:             e.Note,
		Explanation:      e.Explanation,
		KeyPoints:        e.KeyPoints,
		Tags:             e.Tags,
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
		Confidence:       e.Confidence,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
