package service

import (
	"context"

	"medstudy-be/internal/dto"
	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/pkg/events"

	"github.com/google/uuid"
)

const notebookModule = "NotebookService"

type INotebookService interface {
	GetAll(ctx context.Context, userId uuid.UUID, query *dto.ListQuery) (*dto.PageResponse[*dto.NotebookResponse], error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNotebookRequest) (*dto.NotebookResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NotebookResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotebookRequest) (*dto.NotebookResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Stats(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NotebookStatsResponse, error)
}

type notebookService struct {
	notebooks contract.NotebookRepository
	publisher IEventPublisher
	logger    logger.ILogger
}

func NewNotebookService(
	notebooks contract.NotebookRepository,
	publisher IEventPublisher,
	log logger.ILogger,
) INotebookService {
	return &notebookService{
		notebooks: notebooks,
		publisher: publisher,
		logger:    log,
	}
}

func (c *notebookService) GetAll(ctx context.Context, userId uuid.UUID, query *dto.ListQuery) (*dto.PageResponse[*dto.NotebookResponse], error) {
	page, err := toPagination(query)
	if err != nil {
		return nil, err
	}
	filter, err := toFilter(query, nil)
	if err != nil {
		return nil, err
	}

	result, err := c.notebooks.FindByOwner(ctx, userId, filter, page)
	if err != nil {
		return nil, err
	}
	return toPageResponse(page, result, toNotebookResponse), nil
}

func (c *notebookService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNotebookRequest) (*dto.NotebookResponse, error) {
	notebook, err := c.notebooks.Create(ctx, &entity.Notebook{
		OwnerId:     userId,
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, c.logger, notebookModule, c.publisher, events.New(events.NotebookCreated, map[string]interface{}{
		"notebook_id": notebook.Id.String(),
		"user_id":     userId.String(),
	}))
	return toNotebookResponse(notebook), nil
}

func (c *notebookService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NotebookResponse, error) {
	notebook, err := c.notebooks.FindVisible(ctx, id, userId)
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, contract.ErrNotFound
	}
	return toNotebookResponse(notebook), nil
}

func (c *notebookService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNotebookRequest) (*dto.NotebookResponse, error) {
	notebook, err := c.notebooks.Update(ctx, req.Id, userId, entity.NotebookPatch{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	})
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, contract.ErrNotFound
	}
	return toNotebookResponse(notebook), nil
}

func (c *notebookService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	deleted, err := c.notebooks.Delete(ctx, id, userId)
	if err != nil {
		return err
	}
	if !deleted {
		return contract.ErrNotFound
	}

	publishEvent(ctx, c.logger, notebookModule, c.publisher, events.New(events.NotebookDeleted, map[string]interface{}{
		"notebook_id": id.String(),
		"user_id":     userId.String(),
	}))
	return nil
}

func (c *notebookService) Stats(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NotebookStatsResponse, error) {
	stats, err := c.notebooks.GetStats(ctx, id, userId)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, contract.ErrNotFound
	}
	return &dto.NotebookStatsResponse{
		TotalEntries:               stats.TotalEntries,
		ResolvedEntries:            stats.ResolvedEntries,
		UnresolvedEntries:          stats.UnresolvedEntries,
		EntriesByCategory:          stats.EntriesByCategory,
		AverageResolutionTimeHours: stats.AverageResolutionTimeHours,
		LastUpdatedAt:              stats.LastUpdatedAt,
	}, nil
}
