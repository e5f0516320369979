// Package memory is an in-process document store backend. It behaves like a hosted document
// database: compound queries need a declared composite index, substring search is never served
// natively and counters have no atomic increment.
package memory

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"

	"github.com/google/uuid"
)

var (
	_ contract.Backend               = (*Backend)(nil)
	_ contract.CompareAndSwapCounter = (*Backend)(nil)
)

type Backend struct {
	notebooks *collection[*entity.Notebook]
	entries   *collection[*entity.Entry]

	cascadeHook  func(deleted int) error
	casConflicts atomic.Int64
}

type Option func(*Backend, *planner)

func WithIndexes(indexes ...CompositeIndex) Option {
	return func(_ *Backend, p *planner) { p.indexes = indexes }
}

// WithoutNativeQueries makes every compound query and count fail with a capability failure.
func WithoutNativeQueries() Option {
	return func(_ *Backend, p *planner) { p.disabled = true }
}

// WithCascadeInterruption calls fn after each entry removed by BatchDelete. A non-nil error
// aborts the cascade midway.
func WithCascadeInterruption(fn func(deleted int) error) Option {
	return func(b *Backend, _ *planner) { b.cascadeHook = fn }
}

// WithCounterConflicts makes the next n compare-and-swap attempts lose the race.
func WithCounterConflicts(n int) Option {
	return func(b *Backend, _ *planner) { b.casConflicts.Store(int64(n)) }
}

func NewBackend(opts ...Option) *Backend {
	p := &planner{indexes: DefaultIndexes()}
	b := &Backend{}
	for _, opt := range opts {
		opt(b, p)
	}
	b.notebooks = newCollection(NotebooksCollection, (*entity.Notebook).Clone, keepCounters, p)
	b.entries = newCollection(EntriesCollection, (*entity.Entry).Clone, nil, p)
	return b
}

func keepCounters(stored, incoming *entity.Notebook) *entity.Notebook {
	incoming.EntryCount = stored.EntryCount
	incoming.LastEntryAt = stored.LastEntryAt
	return incoming
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Notebooks() contract.Collection[*entity.Notebook] { return b.notebooks }

func (b *Backend) Entries() contract.Collection[*entity.Entry] { return b.entries }

func (b *Backend) BatchDelete(ctx context.Context, notebookId uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deleted := 0
	for _, e := range b.entries.all() {
		if e.NotebookId != notebookId {
			continue
		}
		if _, err := b.entries.Delete(ctx, e.Id); err != nil {
			return contract.BackendFault("cascade entries", err)
		}
		deleted++
		if b.cascadeHook != nil {
			if err := b.cascadeHook(deleted); err != nil {
				return fmt.Errorf("%w: cascade interrupted after %d entries: %w", contract.ErrBackendFault, deleted, err)
			}
		}
	}
	if _, err := b.notebooks.Delete(ctx, notebookId); err != nil {
		return contract.BackendFault("cascade notebook", err)
	}
	return nil
}

func (b *Backend) LoadCounter(ctx context.Context, notebookId uuid.UUID) (contract.CounterSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return contract.CounterSnapshot{}, err
	}
	v, found := b.notebooks.get(notebookId)
	if !found {
		return contract.CounterSnapshot{}, contract.ErrNotFound
	}
	return contract.CounterSnapshot{
		EntryCount:  v.record.EntryCount,
		LastEntryAt: v.record.LastEntryAt,
		Version:     v.version,
	}, nil
}

func (b *Backend) CompareAndSwapCounter(ctx context.Context, notebookId uuid.UUID, expected, next contract.CounterSnapshot, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if b.casConflicts.Load() > 0 && b.casConflicts.Add(-1) >= 0 {
		return false, nil
	}

	b.notebooks.mu.Lock()
	defer b.notebooks.mu.Unlock()

	v, found := b.notebooks.get(notebookId)
	if !found {
		return false, contract.ErrNotFound
	}
	if v.version != expected.Version {
		return false, nil
	}
	updated := v.record.Clone()
	updated.EntryCount = max(0, next.EntryCount)
	updated.LastEntryAt = next.LastEntryAt
	updated.UpdatedAt = at
	b.notebooks.put(notebookId, versioned[*entity.Notebook]{record: updated, version: v.version + 1})
	return true, nil
}

func (b *Backend) SetEntryCount(ctx context.Context, notebookId uuid.UUID, count int, lastEntryAt *time.Time, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.notebooks.mu.Lock()
	defer b.notebooks.mu.Unlock()

	v, found := b.notebooks.get(notebookId)
	if !found {
		return contract.ErrNotFound
	}
	updated := v.record.Clone()
	updated.EntryCount = max(0, count)
	updated.LastEntryAt = lastEntryAt
	updated.UpdatedAt = at
	b.notebooks.put(notebookId, versioned[*entity.Notebook]{record: updated, version: v.version + 1})
	return nil
}
