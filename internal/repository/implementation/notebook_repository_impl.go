package implementation

import (
	"context"
	"errors"
	"strings"
	"time"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/repository/counter"
	"medstudy-be/internal/repository/guard"
	"medstudy-be/internal/repository/pagination"
	"medstudy-be/internal/repository/stats"

	"github.com/google/uuid"
)

const (
	notebookModule   = "NotebookRepository"
	maxTitleLength   = 255
	maxTagsPerRecord = 20
	maxTagLength     = 50
)

type NotebookRepositoryImpl struct {
	backend  contract.Backend
	executor *pagination.Executor[*entity.Notebook]
	counter  *counter.Maintainer
	logger   logger.ILogger
	now      func() time.Time
}

func NewNotebookRepository(backend contract.Backend, counters *counter.Maintainer, log logger.ILogger) contract.NotebookRepository {
	return &NotebookRepositoryImpl{
		backend:  backend,
		executor: pagination.NewExecutor(backend.Name(), backend.Notebooks(), entity.NotebookSortFields, log),
		counter:  counters,
		logger:   log,
		now:      entity.Now,
	}
}

func (r *NotebookRepositoryImpl) Create(ctx context.Context, notebook *entity.Notebook) (*entity.Notebook, error) {
	n := notebook.Clone()
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	n.Tags = normalizeTags(n.Tags)
	if err := validateNotebook(n); err != nil {
		return nil, err
	}
	if n.OwnerId == uuid.Nil {
		return nil, contract.NewValidationError("ownerId", "is required")
	}

	now := r.now()
	if n.Id == uuid.Nil {
		n.Id = uuid.New()
	}
	n.EntryCount = 0
	n.LastEntryAt = nil
	n.CreatedAt = now
	n.UpdatedAt = now

	if err := r.backend.Notebooks().Insert(ctx, n); err != nil {
		return nil, contract.BackendFault("insert notebook", err)
	}
	return n, nil
}

func (r *NotebookRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Notebook, error) {
	n, err := r.backend.Notebooks().FindById(ctx, id)
	if errors.Is(err, contract.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, contract.BackendFault("find notebook", err)
	}
	return n, nil
}

func (r *NotebookRepositoryImpl) FindVisible(ctx context.Context, id uuid.UUID, requesterId uuid.UUID) (*entity.Notebook, error) {
	n, err := r.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := decide(guard.Authorize(n, requesterId, guard.OpRead)); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotebookRepositoryImpl) FindByOwner(ctx context.Context, ownerId uuid.UUID, filter entity.Filter, page entity.Pagination) (*entity.PageResult[*entity.Notebook], error) {
	return r.executor.Execute(ctx, entity.Scope{OwnerId: ownerId}, filter, page)
}

func (r *NotebookRepositoryImpl) Update(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, patch entity.NotebookPatch) (*entity.Notebook, error) {
	n, err := r.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	if err := decide(guard.Authorize(n, ownerId, guard.OpWrite)); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		n.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		n.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.IsPublic != nil {
		n.IsPublic = *patch.IsPublic
	}
	if patch.Tags != nil {
		n.Tags = normalizeTags(*patch.Tags)
	}
	if err := validateNotebook(n); err != nil {
		return nil, err
	}
	n.UpdatedAt = r.now()

	if err := r.backend.Notebooks().Replace(ctx, n); err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			return nil, nil
		}
		return nil, contract.BackendFault("replace notebook", err)
	}
	// counters are preserved by Replace, re-read to return the stored state
	return r.FindById(ctx, id)
}

func (r *NotebookRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (bool, error) {
	n, err := r.FindById(ctx, id)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}
	if err := decide(guard.Authorize(n, ownerId, guard.OpWrite)); err != nil {
		return false, err
	}

	if err := r.backend.BatchDelete(ctx, id); err != nil {
		r.logger.Error(notebookModule, "Cascade delete failed", map[string]interface{}{
			"notebook_id": id.String(),
			"backend":     r.backend.Name(),
			"error":       err.Error(),
		})
		return false, contract.BackendFault("cascade delete", err)
	}
	return true, nil
}

func (r *NotebookRepositoryImpl) GetStats(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (*entity.NotebookStats, error) {
	n, err := r.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	if err := decide(guard.Authorize(n, ownerId, guard.OpRead)); err != nil {
		return nil, err
	}

	entries, err := r.backend.Entries().RunScopedScan(ctx, entity.Scope{OwnerId: n.OwnerId, NotebookId: &n.Id})
	if err != nil {
		return nil, contract.BackendFault("scan entries for stats", err)
	}
	return stats.Aggregate(n, entries), nil
}

// IncrementEntryCount is a no-op for a notebook that no longer exists.
func (r *NotebookRepositoryImpl) IncrementEntryCount(ctx context.Context, id uuid.UUID) error {
	return ignoreGone(r.counter.OnEntryCreated(ctx, id))
}

func (r *NotebookRepositoryImpl) DecrementEntryCount(ctx context.Context, id uuid.UUID) error {
	return ignoreGone(r.counter.OnEntryDeleted(ctx, id))
}

func ignoreGone(err error) error {
	if errors.Is(err, counter.ErrNotebookGone) {
		return nil
	}
	return err
}

// RecountEntries rebuilds the counter of a notebook from its live entries.
func (r *NotebookRepositoryImpl) RecountEntries(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := r.FindById(ctx, id)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, contract.ErrNotFound
	}

	entries, err := r.backend.Entries().RunScopedScan(ctx, entity.Scope{OwnerId: n.OwnerId, NotebookId: &n.Id})
	if err != nil {
		return 0, contract.BackendFault("scan entries for recount", err)
	}

	var lastEntryAt *time.Time
	for _, e := range entries {
		if lastEntryAt == nil || e.CreatedAt.After(*lastEntryAt) {
			t := e.CreatedAt
			lastEntryAt = &t
		}
	}
	if n.LastEntryAt != nil && (lastEntryAt == nil || n.LastEntryAt.After(*lastEntryAt)) {
		lastEntryAt = n.LastEntryAt
	}

	if err := r.backend.SetEntryCount(ctx, id, len(entries), lastEntryAt, r.now()); err != nil {
		return 0, contract.BackendFault("set entry count", err)
	}
	if len(entries) != n.EntryCount {
		r.logger.Info(notebookModule, "Entry count reconciled", map[string]interface{}{
			"notebook_id": id.String(),
			"stored":      n.EntryCount,
			"actual":      len(entries),
		})
	}
	return len(entries), nil
}

func validateNotebook(n *entity.Notebook) error {
	if n.Title == "" {
		return contract.NewValidationError("title", "is required")
	}
	if len([]rune(n.Title)) > maxTitleLength {
		return contract.NewValidationError("title", "must be at most 255 characters")
	}
	return validateTags(n.Tags)
}

func validateTags(tags []string) error {
	if len(tags) > maxTagsPerRecord {
		return contract.NewValidationError("tags", "too many tags")
	}
	for _, t := range tags {
		if len([]rune(t)) > maxTagLength {
			return contract.NewValidationError("tags", "tag is too long")
		}
	}
	return nil
}

// normalizeTags trims, drops empties and de-duplicates while keeping the original order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// decide maps a guard decision to the repository error contract. NotFound is not an error: the
// callers return a nil record for it.
func decide(d guard.Decision) error {
	if d == guard.Forbidden {
		return contract.ErrForbidden
	}
	return nil
}
