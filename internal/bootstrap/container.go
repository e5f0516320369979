package bootstrap

import (
	"context"
	"fmt"

	"medstudy-be/internal/config"
	"medstudy-be/internal/controller"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/counter"
	"medstudy-be/internal/repository/implementation"
	"medstudy-be/internal/service"
	"medstudy-be/pkg/events"

	pktNats "medstudy-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	NotebookController  controller.INotebookController
	ErrorNoteController controller.IErrorNoteController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger      logger.ILogger
	BackendName string

	errorNoteService service.IErrorNoteService
	natsPub          *pktNats.Publisher
	natsSub          *pktNats.Subscriber
	reviewTopic      string
	pubSub           *gochannel.GoChannel
}

func NewContainer(backend contract.Backend, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Event Bus
	// counter repairs stay in process; domain events go to NATS when it is configured
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	var eventPublisher service.IEventPublisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn(bootstrapModule, "Failed to connect to NATS Publisher, review system disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			eventPublisher = natsPub
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn(bootstrapModule, "Failed to connect to NATS Subscriber", map[string]interface{}{
				"error": err.Error(),
			})
		}
	} else {
		sysLogger.Warn(bootstrapModule, "NATS_URL not set, review system disabled", nil)
	}

	// 2. Repositories
	publisherService := service.NewPublisherService(cfg.Events.RecountTopic, pubSub)
	counters := counter.NewMaintainer(backend, sysLogger)
	notebookRepo := implementation.NewNotebookRepository(backend, counters, sysLogger)
	entryRepo := implementation.NewEntryRepository(backend, counters, publisherService, sysLogger)

	// 3. Services
	consumerService := service.NewConsumerService(pubSub, cfg.Events.RecountTopic, notebookRepo, sysLogger)
	scheduler := service.NewReviewScheduler(eventPublisher)
	notebookService := service.NewNotebookService(notebookRepo, eventPublisher, sysLogger)
	errorNoteService := service.NewErrorNoteService(entryRepo, scheduler, eventPublisher, sysLogger)

	// 4. Controllers
	return &Container{
		NotebookController:  controller.NewNotebookController(notebookService),
		ErrorNoteController: controller.NewErrorNoteController(errorNoteService),
		ConsumerService:     consumerService,
		Logger:              sysLogger,
		BackendName:         backend.Name(),

		errorNoteService: errorNoteService,
		natsPub:          natsPub,
		natsSub:          natsSub,
		reviewTopic:      cfg.Events.ReviewTopic,
		pubSub:           pubSub,
	}
}

// StartBackground runs the recount consumer and the review system subscription.
func (c *Container) StartBackground(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start recount consumer: %w", err)
	}
	if c.natsSub == nil {
		return nil
	}
	handler := func(ctx context.Context, event events.Event) error {
		return c.errorNoteService.HandleReviewItemRemoved(ctx, event)
	}
	if err := c.natsSub.Subscribe(ctx, events.ReviewItemRemoved, c.reviewTopic, handler); err != nil {
		return fmt.Errorf("subscribe %s: %w", events.ReviewItemRemoved, err)
	}
	return nil
}

func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	_ = c.pubSub.Close()
}
