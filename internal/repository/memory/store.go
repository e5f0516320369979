package memory

import (
	"context"
	"fmt"
	"sync"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/pagination"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type versioned[T any] struct {
	record  T
	version int64
}

// collection keeps cloned records in a non-expiring go-cache. mu serializes read-modify-write
// sequences, plain reads go straight to the cache.
type collection[T entity.Record] struct {
	name    string
	cache   *cache.Cache
	mu      sync.Mutex
	clone   func(T) T
	merge   func(stored, incoming T) T
	planner *planner
}

func newCollection[T entity.Record](name string, clone func(T) T, merge func(stored, incoming T) T, p *planner) *collection[T] {
	return &collection[T]{
		name:    name,
		cache:   cache.New(cache.NoExpiration, 0),
		clone:   clone,
		merge:   merge,
		planner: p,
	}
}

func (c *collection[T]) get(id uuid.UUID) (versioned[T], bool) {
	x, found := c.cache.Get(id.String())
	if !found {
		return versioned[T]{}, false
	}
	return x.(versioned[T]), true
}

func (c *collection[T]) put(id uuid.UUID, v versioned[T]) {
	c.cache.Set(id.String(), v, cache.NoExpiration)
}

func (c *collection[T]) all() []T {
	items := c.cache.Items()
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(versioned[T]).record)
	}
	return out
}

func (c *collection[T]) FindById(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	v, found := c.get(id)
	if !found {
		return zero, contract.ErrNotFound
	}
	return c.clone(v.record), nil
}

func (c *collection[T]) Insert(ctx context.Context, record T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := versioned[T]{record: c.clone(record), version: 1}
	if err := c.cache.Add(record.GetId().String(), v, cache.NoExpiration); err != nil {
		return fmt.Errorf("%w: insert into %s: %w", contract.ErrBackendFault, c.name, err)
	}
	return nil
}

func (c *collection[T]) Replace(ctx context.Context, record T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, found := c.get(record.GetId())
	if !found {
		return contract.ErrNotFound
	}
	next := c.clone(record)
	if c.merge != nil {
		next = c.merge(stored.record, next)
	}
	c.put(record.GetId(), versioned[T]{record: next, version: stored.version + 1})
	return nil
}

func (c *collection[T]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.get(id); !found {
		return false, nil
	}
	c.cache.Delete(id.String())
	return true, nil
}

func (c *collection[T]) RunCompoundQuery(ctx context.Context, q contract.CompoundQuery) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.planner.plan(c.name, q, true); err != nil {
		return nil, err
	}
	items, _ := pagination.Window(c.all(), q)
	return c.cloneAll(items), nil
}

func (c *collection[T]) CountMatching(ctx context.Context, q contract.CompoundQuery) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.planner.plan(c.name, q, false); err != nil {
		return 0, err
	}
	count := 0
	for _, r := range c.all() {
		if r.InScope(q.Scope) && r.Matches(q.Filter) {
			count++
		}
	}
	return int64(count), nil
}

func (c *collection[T]) RunScopedScan(ctx context.Context, scope entity.Scope) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, r := range c.all() {
		if r.InScope(scope) {
			out = append(out, c.clone(r))
		}
	}
	return out, nil
}

func (c *collection[T]) cloneAll(items []T) []T {
	out := make([]T, len(items))
	for i, r := range items {
		out[i] = c.clone(r)
	}
	return out
}
