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

const entryModule = "EntryRepository"

type EntryRepositoryImpl struct {
	backend  contract.Backend
	executor *pagination.Executor[*entity.Entry]
	counter  *counter.Maintainer
	repairs  contract.CounterRepairQueue
	logger   logger.ILogger
	now      func() time.Time
}

// NewEntryRepository wires the entry repository. repairs may be nil, counter failures are then
// only logged.
func NewEntryRepository(backend contract.Backend, counters *counter.Maintainer, repairs contract.CounterRepairQueue, log logger.ILogger) contract.EntryRepository {
	return &EntryRepositoryImpl{
		backend:  backend,
		executor: pagination.NewExecutor(backend.Name(), backend.Entries(), entity.EntrySortFields, log),
		counter:  counters,
		repairs:  repairs,
		logger:   log,
		now:      entity.Now,
	}
}

func (r *EntryRepositoryImpl) Create(ctx context.Context, requesterId uuid.UUID, entry *entity.Entry) (*entity.Entry, error) {
	e := entry.Clone()
	normalizeEntry(e)
	if err := validateEntry(e); err != nil {
		return nil, err
	}

	notebook, err := r.findNotebook(ctx, e.NotebookId)
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, errNotebookDeleted
	}
	if notebook.OwnerId != requesterId {
		return nil, contract.ErrForbidden
	}

	now := r.now()
	if e.Id == uuid.Nil {
		e.Id = uuid.New()
	}
	e.OwnerId = notebook.OwnerId
	e.CreatedAt = now
	e.UpdatedAt = now
	e.ResolvedAt = nil
	if e.IsResolved {
		e.ResolvedAt = &now
	}

	if err := r.backend.Entries().Insert(ctx, e); err != nil {
		// a foreign key rejects the insert when the notebook was deleted meanwhile
		if gone, ferr := r.findNotebook(ctx, e.NotebookId); ferr == nil && gone == nil {
			return nil, errNotebookDeleted
		}
		return nil, contract.BackendFault("insert entry", err)
	}

	err = r.counter.OnEntryCreated(ctx, e.NotebookId)
	switch {
	case errors.Is(err, counter.ErrNotebookGone):
		return nil, r.discardOrphan(ctx, e)
	case err != nil:
		r.counterFailed(ctx, e.NotebookId, "increment", err)
	}
	return e, nil
}

var errNotebookDeleted = contract.NewValidationError("notebookId", "notebook does not exist")

// discardOrphan removes an entry whose notebook was deleted between the existence check and the
// insert, so no entry outlives its notebook.
func (r *EntryRepositoryImpl) discardOrphan(ctx context.Context, e *entity.Entry) error {
	if _, err := r.backend.Entries().Delete(ctx, e.Id); err != nil {
		r.logger.Error(entryModule, "Failed to remove entry of a deleted notebook", map[string]interface{}{
			"entry_id":    e.Id.String(),
			"notebook_id": e.NotebookId.String(),
			"error":       err.Error(),
		})
		return contract.BackendFault("discard orphan entry", err)
	}
	r.logger.Warn(entryModule, "Notebook deleted during entry create, entry discarded", map[string]interface{}{
		"entry_id":    e.Id.String(),
		"notebook_id": e.NotebookId.String(),
	})
	return errNotebookDeleted
}

func (r *EntryRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Entry, error) {
	e, err := r.backend.Entries().FindById(ctx, id)
	if errors.Is(err, contract.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, contract.BackendFault("find entry", err)
	}
	return e, nil
}

func (r *EntryRepositoryImpl) FindVisible(ctx context.Context, id uuid.UUID, requesterId uuid.UUID) (*entity.Entry, error) {
	e, _, err := r.load(ctx, id, requesterId, guard.OpRead)
	return e, err
}

func (r *EntryRepositoryImpl) FindByOwner(ctx context.Context, ownerId uuid.UUID, filter entity.Filter, page entity.Pagination) (*entity.PageResult[*entity.Entry], error) {
	return r.executor.Execute(ctx, entity.Scope{OwnerId: ownerId}, filter, page)
}

func (r *EntryRepositoryImpl) FindByNotebook(ctx context.Context, notebookId uuid.UUID, requesterId uuid.UUID, filter entity.Filter, page entity.Pagination) (*entity.PageResult[*entity.Entry], error) {
	notebook, err := r.findNotebook(ctx, notebookId)
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, nil
	}
	if err := decide(guard.Authorize(notebook, requesterId, guard.OpRead)); err != nil {
		return nil, err
	}
	return r.executor.Execute(ctx, entity.Scope{OwnerId: notebook.OwnerId, NotebookId: &notebook.Id}, filter, page)
}

func (r *EntryRepositoryImpl) Update(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, patch entity.EntryPatch) (*entity.Entry, error) {
	e, _, err := r.load(ctx, id, ownerId, guard.OpWrite)
	if err != nil || e == nil {
		return nil, err
	}
	now := r.now()

	if patch.Note != nil {
		e.Note = *patch.Note
	}
	if patch.Explanation != nil {
		e.Explanation = *patch.Explanation
	}
	if patch.KeyPoints != nil {
		e.KeyPoints = *patch.KeyPoints
	}
	if patch.Tags != nil {
		e.Tags = *patch.Tags
	}
	if patch.Category != nil {
		e.Category = *patch.Category
	}
	if patch.Difficulty != nil {
		e.Difficulty = *patch.Difficulty
	}
	if patch.Confidence != nil {
		e.Confidence = entity.BoundConfidence(*patch.Confidence)
	}
	if patch.IsResolved != nil && *patch.IsResolved != e.IsResolved {
		e.IsResolved = *patch.IsResolved
		e.ResolvedAt = nil
		if e.IsResolved {
			e.ResolvedAt = &now
		}
	}

	normalizeEntry(e)
	if err := validateEntry(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = now
	return r.replace(ctx, e)
}

func (r *EntryRepositoryImpl) ToggleResolved(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (*entity.Entry, error) {
	e, _, err := r.load(ctx, id, ownerId, guard.OpWrite)
	if err != nil || e == nil {
		return nil, err
	}
	resolved := !e.IsResolved
	return r.Update(ctx, id, ownerId, entity.EntryPatch{IsResolved: &resolved})
}

// RecordReview stamps the last review time of an entry that is enrolled in the review system.
func (r *EntryRepositoryImpl) RecordReview(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, reviewedAt time.Time) (*entity.Entry, error) {
	e, _, err := r.load(ctx, id, ownerId, guard.OpWrite)
	if err != nil || e == nil {
		return nil, err
	}
	if !e.IsInReviewSystem {
		return nil, contract.NewValidationError("isInReviewSystem", "entry is not enrolled in the review system")
	}

	now := r.now()
	if reviewedAt.IsZero() {
		reviewedAt = now
	}
	reviewedAt = reviewedAt.UTC().Truncate(time.Millisecond)
	e.LastReviewedAt = &reviewedAt
	e.UpdatedAt = now
	return r.replace(ctx, e)
}

func (r *EntryRepositoryImpl) SetReviewState(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, inReview bool, reviewItemId *string) (*entity.Entry, error) {
	e, _, err := r.load(ctx, id, ownerId, guard.OpWrite)
	if err != nil || e == nil {
		return nil, err
	}
	e.IsInReviewSystem = inReview
	e.ReviewItemId = reviewItemId
	if !inReview {
		e.ReviewItemId = nil
	}
	e.UpdatedAt = r.now()
	return r.replace(ctx, e)
}

func (r *EntryRepositoryImpl) Delete(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (bool, error) {
	e, _, err := r.load(ctx, id, ownerId, guard.OpWrite)
	if err != nil || e == nil {
		return false, err
	}

	deleted, err := r.backend.Entries().Delete(ctx, id)
	if err != nil {
		return false, contract.BackendFault("delete entry", err)
	}
	// a concurrent delete already adjusted the counter
	if !deleted {
		return false, nil
	}

	// a cascade that removed the notebook leaves no counter to adjust
	if err := r.counter.OnEntryDeleted(ctx, e.NotebookId); err != nil && !errors.Is(err, counter.ErrNotebookGone) {
		r.counterFailed(ctx, e.NotebookId, "decrement", err)
	}
	return true, nil
}

func (r *EntryRepositoryImpl) GetOwnerStats(ctx context.Context, ownerId uuid.UUID) (*entity.OwnerEntryStats, error) {
	entries, err := r.backend.Entries().RunScopedScan(ctx, entity.Scope{OwnerId: ownerId})
	if err != nil {
		return nil, contract.BackendFault("scan entries for owner stats", err)
	}
	return stats.AggregateOwner(entries), nil
}

// load fetches an entry with its parent notebook and applies the entry ownership rules.
func (r *EntryRepositoryImpl) load(ctx context.Context, id uuid.UUID, requesterId uuid.UUID, op guard.Operation) (*entity.Entry, *entity.Notebook, error) {
	e, err := r.FindById(ctx, id)
	if err != nil || e == nil {
		return nil, nil, err
	}
	notebook, err := r.findNotebook(ctx, e.NotebookId)
	if err != nil {
		return nil, nil, err
	}

	if err := decide(guard.AuthorizeEntry(e, notebook, requesterId, op)); err != nil {
		return nil, nil, err
	}
	if op == guard.OpWrite && notebook != nil && e.OwnerId != notebook.OwnerId {
		r.logger.Warn(entryModule, "Entry owner drifted from notebook owner, reconciling", map[string]interface{}{
			"entry_id":       e.Id.String(),
			"entry_owner":    e.OwnerId.String(),
			"notebook_owner": notebook.OwnerId.String(),
		})
		e.OwnerId = notebook.OwnerId
	}
	return e, notebook, nil
}

func (r *EntryRepositoryImpl) findNotebook(ctx context.Context, id uuid.UUID) (*entity.Notebook, error) {
	n, err := r.backend.Notebooks().FindById(ctx, id)
	if errors.Is(err, contract.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, contract.BackendFault("find notebook", err)
	}
	return n, nil
}

func (r *EntryRepositoryImpl) replace(ctx context.Context, e *entity.Entry) (*entity.Entry, error) {
	if err := r.backend.Entries().Replace(ctx, e); err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			return nil, nil
		}
		return nil, contract.BackendFault("replace entry", err)
	}
	return e, nil
}

// counterFailed keeps the entry write and schedules a recount so the counter converges.
func (r *EntryRepositoryImpl) counterFailed(ctx context.Context, notebookId uuid.UUID, op string, cause error) {
	details := map[string]interface{}{
		"notebook_id": notebookId.String(),
		"operation":   op,
		"error":       cause.Error(),
	}
	if r.repairs == nil {
		r.logger.Error(entryModule, "Entry count update failed", details)
		return
	}
	if err := r.repairs.EnqueueRecount(ctx, notebookId); err != nil {
		details["enqueue_error"] = err.Error()
		r.logger.Error(entryModule, "Entry count update failed and recount could not be scheduled", details)
		return
	}
	r.logger.Warn(entryModule, "Entry count update failed, recount scheduled", details)
}

func normalizeEntry(e *entity.Entry) {
	e.Note = strings.TrimSpace(e.Note)
	e.Explanation = strings.TrimSpace(e.Explanation)
	e.Category = strings.TrimSpace(e.Category)
	e.Tags = normalizeTags(e.Tags)

	points := make([]string, 0, len(e.KeyPoints))
	for _, p := range e.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	e.KeyPoints = points

	if e.Difficulty == "" {
		e.Difficulty = entity.DifficultyMedium
	}
	e.Confidence = entity.ClampConfidence(e.Confidence)
}

func validateEntry(e *entity.Entry) error {
	if e.NotebookId == uuid.Nil {
		return contract.NewValidationError("notebookId", "is required")
	}
	if e.Note == "" {
		return contract.NewValidationError("note", "is required")
	}
	if e.Explanation == "" {
		return contract.NewValidationError("explanation", "is required")
	}
	if !e.Difficulty.Valid() {
		return contract.NewValidationError("difficulty", "must be one of easy, medium, hard, very_hard")
	}
	return validateTags(e.Tags)
}
