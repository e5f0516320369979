package service

import (
	"context"
	"fmt"

	"medstudy-be/internal/entity"
	"medstudy-be/pkg/events"

	"github.com/google/uuid"
)

const reviewContentType = "ERROR_NOTEBOOK"

// IReviewScheduler enrolls entries in the spaced-repetition system and forwards graded reviews.
type IReviewScheduler interface {
	Enroll(ctx context.Context, entry *entity.Entry) (string, error)
	RecordReview(ctx context.Context, entry *entity.Entry, grade int, reviewTimeMs *int64) error
}

type reviewScheduler struct {
	publisher IEventPublisher
}

// NewReviewScheduler talks to the review system through the event bus. A nil publisher makes
// every call fail with ErrReviewUnavailable.
func NewReviewScheduler(publisher IEventPublisher) IReviewScheduler {
	return &reviewScheduler{publisher: publisher}
}

func (s *reviewScheduler) Enroll(ctx context.Context, entry *entity.Entry) (string, error) {
	if s.publisher == nil {
		return "", ErrReviewUnavailable
	}
	itemId := uuid.NewString()
	err := s.publisher.Publish(ctx, events.New(events.ErrorNoteEnrolled, map[string]interface{}{
		"review_item_id": itemId,
		"content_type":   reviewContentType,
		"content_id":     entry.Id.String(),
		"user_id":        entry.OwnerId.String(),
		"question_id":    entry.QuestionId,
		"difficulty":     string(entry.Difficulty),
		"confidence":     entry.Confidence,
		"subject":        entry.Subject,
	}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReviewUnavailable, err)
	}
	return itemId, nil
}

func (s *reviewScheduler) RecordReview(ctx context.Context, entry *entity.Entry, grade int, reviewTimeMs *int64) error {
	if s.publisher == nil {
		return ErrReviewUnavailable
	}
	data := map[string]interface{}{
		"content_type": reviewContentType,
		"content_id":   entry.Id.String(),
		"user_id":      entry.OwnerId.String(),
		"grade":        grade,
	}
	if entry.ReviewItemId != nil {
		data["review_item_id"] = *entry.ReviewItemId
	}
	if reviewTimeMs != nil {
		data["review_time_ms"] = *reviewTimeMs
	}
	if err := s.publisher.Publish(ctx, events.New(events.ErrorNoteReviewed, data)); err != nil {
		return fmt.Errorf("%w: %w", ErrReviewUnavailable, err)
	}
	return nil
}
