package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"medstudy-be/internal/dto"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sethvargo/go-retry"
)

const consumerModule = "ConsumerService"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	notebooks  contract.NotebookRepository
	logger     logger.ILogger
	attempts   uint64
	backoff    time.Duration
}

// NewConsumerService consumes recount requests and rebuilds the notebook counters.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	notebooks contract.NotebookRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		notebooks:  notebooks,
		logger:     log,
		attempts:   3,
		backoff:    200 * time.Millisecond,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: gochannel redelivers a nacked message immediately, so transient
// failures are retried here with backoff instead.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.RecountNotebookMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal recount message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	var count int
	backoff := retry.WithMaxRetries(cs.attempts-1, retry.NewExponential(cs.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		n, err := cs.notebooks.RecountEntries(ctx, payload.NotebookId)
		if errors.Is(err, contract.ErrBackendFault) {
			return retry.RetryableError(err)
		}
		count = n
		return err
	})

	details := map[string]interface{}{
		"message_id":  msg.UUID,
		"notebook_id": payload.NotebookId.String(),
	}
	switch {
	case errors.Is(err, contract.ErrNotFound):
		cs.logger.Info(consumerModule, "Notebook gone before recount, skipping", details)
	case err != nil:
		details["error"] = err.Error()
		cs.logger.Error(consumerModule, "Failed to recount notebook entries", details)
	default:
		details["entry_count"] = count
		cs.logger.Info(consumerModule, "Notebook entries recounted", details)
	}
}
