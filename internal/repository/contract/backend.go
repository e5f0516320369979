package contract

import (
	"context"
	"time"

	"medstudy-be/internal/entity"

	"github.com/google/uuid"
)

// Anchor is the keyset position of the last item of the previous page.
type Anchor struct {
	Id    uuid.UUID
	Value any
}

type SortSpec struct {
	Field entity.SortField
	Order entity.SortOrder
}

func (s SortSpec) Desc() bool {
	return s.Order != entity.SortAsc
}

type CompoundQuery struct {
	Scope  entity.Scope
	Filter entity.Filter
	Sort   SortSpec
	Anchor *Anchor
	Offset int
	Limit  int // 0 means unbounded
}

// Collection is the per-record capability surface a backend exposes. Results are ordered by the
// sort field and then by id ascending. FindById and Replace return ErrNotFound for missing ids.
type Collection[T entity.Record] interface {
	FindById(ctx context.Context, id uuid.UUID) (T, error)
	Insert(ctx context.Context, record T) error
	// Replace overwrites the user-editable state of a record. For notebooks the stored
	// entryCount and lastEntryAt are preserved: counters are only written through the counter
	// primitives below.
	Replace(ctx context.Context, record T) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// RunCompoundQuery returns an error wrapping ErrCapabilityFailure when the backend cannot
	// evaluate the query natively.
	RunCompoundQuery(ctx context.Context, q CompoundQuery) ([]T, error)
	CountMatching(ctx context.Context, q CompoundQuery) (int64, error)
	// RunScopedScan applies only the scope equality and must always be servable.
	RunScopedScan(ctx context.Context, scope entity.Scope) ([]T, error)
}

type Backend interface {
	Name() string
	Notebooks() Collection[*entity.Notebook]
	Entries() Collection[*entity.Entry]
	// BatchDelete removes a notebook and all its entries. It is atomic where the backend
	// supports transactions and otherwise deletes entries first so that re-running it after an
	// interruption completes the cascade.
	BatchDelete(ctx context.Context, notebookId uuid.UUID) error
	// SetEntryCount overwrites the counter with a recounted value.
	SetEntryCount(ctx context.Context, notebookId uuid.UUID, count int, lastEntryAt *time.Time, at time.Time) error
}

// AtomicCounter is implemented by backends with a native atomic increment. The stored count
// never drops below zero. lastEntryAt is set to at only when delta is positive.
type AtomicCounter interface {
	AtomicIncrement(ctx context.Context, notebookId uuid.UUID, delta int, at time.Time) error
}

type CounterSnapshot struct {
	EntryCount  int
	LastEntryAt *time.Time
	Version     int64
}

// CompareAndSwapCounter is the fallback for backends without atomic increments.
type CompareAndSwapCounter interface {
	LoadCounter(ctx context.Context, notebookId uuid.UUID) (CounterSnapshot, error)
	// CompareAndSwapCounter writes next only if the stored version still equals expected.Version.
	CompareAndSwapCounter(ctx context.Context, notebookId uuid.UUID, expected, next CounterSnapshot, at time.Time) (bool, error)
}

// CounterRepairQueue schedules an asynchronous recount of a notebook's entries.
type CounterRepairQueue interface {
	EnqueueRecount(ctx context.Context, notebookId uuid.UUID) error
}
