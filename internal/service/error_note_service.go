package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medstudy-be/internal/dto"
	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/pkg/events"

	"github.com/google/uuid"
)

const errorNoteModule = "ErrorNoteService"

type IErrorNoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateErrorNoteRequest) (*dto.CreateErrorNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ErrorNoteResponse, error)
	GetByNotebook(ctx context.Context, userId uuid.UUID, notebookId uuid.UUID, query *dto.ListQuery, filter *dto.ErrorNoteFilterQuery) (*dto.PageResponse[*dto.ErrorNoteResponse], error)
	GetAll(ctx context.Context, userId uuid.UUID, query *dto.ListQuery, filter *dto.ErrorNoteFilterQuery) (*dto.PageResponse[*dto.ErrorNoteResponse], error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateErrorNoteRequest) (*dto.ErrorNoteResponse, error)
	ToggleResolved(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ErrorNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Stats(ctx context.Context, userId uuid.UUID) (*dto.ErrorNoteStatsResponse, error)
	PrepareForReview(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.PrepareReviewResponse, error)
	RecordReview(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.RecordReviewRequest) (*dto.ErrorNoteResponse, error)
	// HandleReviewItemRemoved marks an entry as no longer enrolled when the review system drops it.
	HandleReviewItemRemoved(ctx context.Context, event events.Event) error
}

type errorNoteService struct {
	entries   contract.EntryRepository
	scheduler IReviewScheduler
	publisher IEventPublisher
	logger    logger.ILogger
}

func NewErrorNoteService(
	entries contract.EntryRepository,
	scheduler IReviewScheduler,
	publisher IEventPublisher,
	log logger.ILogger,
) IErrorNoteService {
	return &errorNoteService{
		entries:   entries,
		scheduler: scheduler,
		publisher: publisher,
		logger:    log,
	}
}

// Create stores the entry first and then enrolls it for review. Enrollment failures keep the
// entry with isInReviewSystem=false.
func (s *errorNoteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateErrorNoteRequest) (*dto.CreateErrorNoteResponse, error) {
	entry, err := s.entries.Create(ctx, userId, &entity.Entry{
		NotebookId:    req.NotebookId,
		QuestionId:    req.QuestionId,
		Note:          req.Note,
		Explanation:   req.Explanation,
		KeyPoints:     req.KeyPoints,
		Tags:          req.Tags,
		Category:      req.Category,
		Statement:     req.Statement,
		CorrectAnswer: req.CorrectAnswer,
		Subject:       req.Subject,
		Difficulty:    entity.Difficulty(req.Difficulty),
		Confidence:    req.Confidence,
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.logger, errorNoteModule, s.publisher, events.New(events.ErrorNoteCreated, map[string]interface{}{
		"entry_id":    entry.Id.String(),
		"notebook_id": entry.NotebookId.String(),
		"user_id":     userId.String(),
	}))

	addedToReview := false
	itemId, err := s.scheduler.Enroll(ctx, entry)
	if err != nil {
		s.logger.Warn(errorNoteModule, "Failed to add entry to review system", map[string]interface{}{
			"entry_id": entry.Id.String(),
			"error":    err.Error(),
		})
	} else {
		enrolled, err := s.entries.SetReviewState(ctx, entry.Id, userId, true, &itemId)
		if err != nil {
			s.logger.Error(errorNoteModule, "Failed to store review enrollment", map[string]interface{}{
				"entry_id":       entry.Id.String(),
				"review_item_id": itemId,
				"error":          err.Error(),
			})
		} else if enrolled != nil {
			entry = enrolled
			addedToReview = true
		}
	}

	s.logger.Info(errorNoteModule, "Error note created", map[string]interface{}{
		"entry_id":        entry.Id.String(),
		"user_id":         userId.String(),
		"added_to_review": addedToReview,
	})
	return &dto.CreateErrorNoteResponse{
		Entry:         *toErrorNoteResponse(entry),
		AddedToReview: addedToReview,
	}, nil
}

func (s *errorNoteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ErrorNoteResponse, error) {
	entry, err := s.entries.FindVisible(ctx, id, userId)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, contract.ErrNotFound
	}
	return toErrorNoteResponse(entry), nil
}

func (s *errorNoteService) GetByNotebook(ctx context.Context, userId uuid.UUID, notebookId uuid.UUID, query *dto.ListQuery, filterQuery *dto.ErrorNoteFilterQuery) (*dto.PageResponse[*dto.ErrorNoteResponse], error) {
	page, filter, err := listParams(query, filterQuery)
	if err != nil {
		return nil, err
	}
	result, err := s.entries.FindByNotebook(ctx, notebookId, userId, filter, page)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, contract.ErrNotFound
	}
	return toPageResponse(page, result, toErrorNoteResponse), nil
}

func (s *errorNoteService) GetAll(ctx context.Context, userId uuid.UUID, query *dto.ListQuery, filterQuery *dto.ErrorNoteFilterQuery) (*dto.PageResponse[*dto.ErrorNoteResponse], error) {
	page, filter, err := listParams(query, filterQuery)
	if err != nil {
		return nil, err
	}
	result, err := s.entries.FindByOwner(ctx, userId, filter, page)
	if err != nil {
		return nil, err
	}
	return toPageResponse(page, result, toErrorNoteResponse), nil
}

func (s *errorNoteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateErrorNoteRequest) (*dto.ErrorNoteResponse, error) {
	patch := entity.EntryPatch{
		Note:        req.Note,
		Explanation: req.Explanation,
		KeyPoints:   req.KeyPoints,
		Tags:        req.Tags,
		Category:    req.Category,
		Confidence:  req.Confidence,
		IsResolved:  req.IsResolved,
	}
	if req.Difficulty != nil {
		d := entity.Difficulty(*req.Difficulty)
		patch.Difficulty = &d
	}

	entry, err := s.entries.Update(ctx, req.Id, userId, patch)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, contract.ErrNotFound
	}
	return toErrorNoteResponse(entry), nil
}

func (s *errorNoteService) ToggleResolved(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ErrorNoteResponse, error) {
	entry, err := s.entries.ToggleResolved(ctx, id, userId)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, contract.ErrNotFound
	}
	return toErrorNoteResponse(entry), nil
}

func (s *errorNoteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	deleted, err := s.entries.Delete(ctx, id, userId)
	if err != nil {
		return err
	}
	if !deleted {
		return contract.ErrNotFound
	}

	publishEvent(ctx, s.logger, errorNoteModule, s.publisher, events.New(events.ErrorNoteDeleted, map[string]interface{}{
		"entry_id": id.String(),
		"user_id":  userId.String(),
	}))
	return nil
}

func (s *errorNoteService) Stats(ctx context.Context, userId uuid.UUID) (*dto.ErrorNoteStatsResponse, error) {
	stats, err := s.entries.GetOwnerStats(ctx, userId)
	if err != nil {
		return nil, err
	}

	byDifficulty := make(map[string]int, len(stats.EntriesByDifficulty))
	for d, n := range stats.EntriesByDifficulty {
		byDifficulty[string(d)] = n
	}
	return &dto.ErrorNoteStatsResponse{
		TotalEntries:          stats.TotalEntries,
		EntriesInReviewSystem: stats.EntriesInReviewSystem,
		EntriesByDifficulty:   byDifficulty,
		EntriesBySubject:      stats.EntriesBySubject,
		AverageConfidence:     stats.AverageConfidence,
		LastEntryAt:           stats.LastEntryAt,
	}, nil
}

func (s *errorNoteService) PrepareForReview(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.PrepareReviewResponse, error) {
	entry, err := s.ownedEntry(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.PrepareReviewResponse{
		EntryId: entry.Id,
		QuestionContext: dto.ReviewQuestionContext{
			Statement:     entry.Statement,
			CorrectAnswer: entry.CorrectAnswer,
			Subject:       entry.Subject,
		},
		UserContent: dto.ReviewUserContent{
			Note:        entry.Note,
			Explanation: entry.Explanation,
			KeyPoints:   entry.KeyPoints,
		},
		ReviewPrompt: reviewPrompt(entry),
	}, nil
}

func (s *errorNoteService) RecordReview(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.RecordReviewRequest) (*dto.ErrorNoteResponse, error) {
	if req.Grade == nil || *req.Grade < 0 || *req.Grade > 3 {
		return nil, contract.NewValidationError("grade", "must be between 0 and 3")
	}
	entry, err := s.ownedEntry(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if !entry.IsInReviewSystem {
		return nil, contract.NewValidationError("isInReviewSystem", "entry is not enrolled in the review system")
	}

	if err := s.scheduler.RecordReview(ctx, entry, *req.Grade, req.ReviewTimeMs); err != nil {
		return nil, err
	}

	reviewed, err := s.entries.RecordReview(ctx, id, userId, entity.Now())
	if err != nil {
		return nil, err
	}
	if reviewed == nil {
		return nil, contract.ErrNotFound
	}

	s.logger.Info(errorNoteModule, "Error note review recorded", map[string]interface{}{
		"entry_id": id.String(),
		"user_id":  userId.String(),
		"grade":    *req.Grade,
	})
	return toErrorNoteResponse(reviewed), nil
}

func (s *errorNoteService) HandleReviewItemRemoved(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	if payload["content_type"] != reviewContentType {
		return nil
	}
	entryId, err := uuid.Parse(fmt.Sprint(payload["content_id"]))
	if err != nil {
		s.logger.Warn(errorNoteModule, "Ignoring review removal with invalid content id", map[string]interface{}{
			"content_id": payload["content_id"],
		})
		return nil
	}
	userId, err := uuid.Parse(fmt.Sprint(payload["user_id"]))
	if err != nil {
		s.logger.Warn(errorNoteModule, "Ignoring review removal with invalid user id", map[string]interface{}{
			"user_id": payload["user_id"],
		})
		return nil
	}

	entry, err := s.entries.SetReviewState(ctx, entryId, userId, false, nil)
	if errors.Is(err, contract.ErrForbidden) {
		s.logger.Warn(errorNoteModule, "Review removal from a user that does not own the entry", map[string]interface{}{
			"entry_id": entryId.String(),
			"user_id":  userId.String(),
		})
		return nil
	}
	if err != nil {
		return err
	}
	if entry == nil {
		s.logger.Debug(errorNoteModule, "Review removal for unknown entry", map[string]interface{}{
			"entry_id": entryId.String(),
		})
	}
	return nil
}

// ownedEntry loads an entry the requester owns. Public visibility does not grant review access.
func (s *errorNoteService) ownedEntry(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Entry, error) {
	entry, err := s.entries.FindVisible(ctx, id, userId)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, contract.ErrNotFound
	}
	if entry.OwnerId != userId {
		return nil, contract.ErrForbidden
	}
	return entry, nil
}

func listParams(query *dto.ListQuery, filterQuery *dto.ErrorNoteFilterQuery) (entity.Pagination, entity.Filter, error) {
	page, err := toPagination(query)
	if err != nil {
		return page, entity.Filter{}, err
	}
	filter, err := toFilter(query, filterQuery)
	return page, filter, err
}

func reviewPrompt(entry *entity.Entry) string {
	subject := entry.Subject
	if subject == "" {
		subject = "this topic"
	}
	keyPoints := ""
	if len(entry.KeyPoints) > 0 {
		keyPoints = fmt.Sprintf(" and its key points (%s)", strings.Join(entry.KeyPoints, ", "))
	}
	return fmt.Sprintf("Re-reading your notes on %q%s, how well do you understand the topic now?", subject, keyPoints)
}
