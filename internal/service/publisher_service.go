package service

import (
	"context"
	"encoding/json"

	"medstudy-be/internal/dto"
	"medstudy-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IPublisherService queues background work on the in-process event bus.
type IPublisherService interface {
	contract.CounterRepairQueue
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) EnqueueRecount(ctx context.Context, notebookId uuid.UUID) error {
	payload, err := json.Marshal(dto.RecountNotebookMessage{
		NotebookId: notebookId,
		Reason:     "counter_update_failed",
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}
