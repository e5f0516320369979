// Package counter keeps the denormalized entryCount and lastEntryAt of a notebook in step with
// entry writes without read-modify-write races.
package counter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const logModule = "CounterMaintainer"

var (
	ErrCounterConflict    = errors.New("counter changed concurrently")
	ErrCounterUnsupported = errors.New("backend exposes no counter primitive")

	// ErrNotebookGone means the notebook was removed before its counter could be adjusted.
	ErrNotebookGone = errors.New("counter target notebook not found")
)

type Maintainer struct {
	backend contract.Backend
	logger  logger.ILogger
	retries uint64
	backoff time.Duration
	now     func() time.Time
}

type Option func(*Maintainer)

// WithRetry bounds the compare-and-swap loop.
func WithRetry(retries uint64, backoff time.Duration) Option {
	return func(m *Maintainer) {
		m.retries = retries
		m.backoff = backoff
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Maintainer) { m.now = now }
}

func NewMaintainer(backend contract.Backend, log logger.ILogger, opts ...Option) *Maintainer {
	m := &Maintainer{
		backend: backend,
		logger:  log,
		retries: 10,
		backoff: 5 * time.Millisecond,
		now:     entity.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnEntryCreated adds one to entryCount and stamps lastEntryAt.
func (m *Maintainer) OnEntryCreated(ctx context.Context, notebookId uuid.UUID) error {
	return m.adjust(ctx, notebookId, 1)
}

// OnEntryDeleted subtracts one from entryCount, never going below zero. lastEntryAt keeps the
// time of the newest entry ever added.
func (m *Maintainer) OnEntryDeleted(ctx context.Context, notebookId uuid.UUID) error {
	return m.adjust(ctx, notebookId, -1)
}

func (m *Maintainer) adjust(ctx context.Context, notebookId uuid.UUID, delta int) error {
	at := m.now()

	var err error
	switch b := m.backend.(type) {
	case contract.AtomicCounter:
		err = b.AtomicIncrement(ctx, notebookId, delta, at)
	case contract.CompareAndSwapCounter:
		err = m.compareAndSwap(ctx, b, notebookId, delta, at)
	default:
		return fmt.Errorf("%w: %s", ErrCounterUnsupported, m.backend.Name())
	}

	if errors.Is(err, contract.ErrNotFound) {
		m.logger.Warn(logModule, "Counter target notebook not found", map[string]interface{}{
			"notebook_id": notebookId.String(),
			"delta":       delta,
		})
		return ErrNotebookGone
	}
	if err != nil {
		return contract.BackendFault("adjust entry count", err)
	}
	return nil
}

func (m *Maintainer) compareAndSwap(ctx context.Context, cas contract.CompareAndSwapCounter, notebookId uuid.UUID, delta int, at time.Time) error {
	attempts := 0
	backoff := retry.WithMaxRetries(m.retries, retry.NewConstant(m.backoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		current, err := cas.LoadCounter(ctx, notebookId)
		if err != nil {
			return err
		}

		next := current
		next.EntryCount = max(0, current.EntryCount+delta)
		if delta > 0 {
			stamp := at
			next.LastEntryAt = &stamp
		}

		swapped, err := cas.CompareAndSwapCounter(ctx, notebookId, current, next, at)
		if err != nil {
			return err
		}
		if !swapped {
			return retry.RetryableError(ErrCounterConflict)
		}
		return nil
	})

	if attempts > 1 {
		m.logger.Debug(logModule, "Counter update needed retries", map[string]interface{}{
			"notebook_id": notebookId.String(),
			"attempts":    attempts,
			"succeeded":   err == nil,
		})
	}
	return err
}
