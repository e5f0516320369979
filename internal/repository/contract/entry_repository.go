package contract

import (
	"context"
	"time"

	"medstudy-be/internal/entity"

	"github.com/google/uuid"
)

type EntryRepository interface {
	// Create requires the parent notebook to exist and to be owned by requesterId.
	Create(ctx context.Context, requesterId uuid.UUID, entry *entity.Entry) (*entity.Entry, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.Entry, error)
	FindVisible(ctx context.Context, id uuid.UUID, requesterId uuid.UUID) (*entity.Entry, error)
	FindByOwner(ctx context.Context, ownerId uuid.UUID, filter entity.Filter, page entity.Pagination) (*entity.PageResult[*entity.Entry], error)
	// FindByNotebook returns (nil, nil) when the notebook does not exist.
	FindByNotebook(ctx context.Context, notebookId uuid.UUID, requesterId uuid.UUID, filter entity.Filter, page entity.Pagination) (*entity.PageResult[*entity.Entry], error)
	Update(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, patch entity.EntryPatch) (*entity.Entry, error)
	// ToggleResolved flips isResolved, stamping resolvedAt when it becomes true and clearing it otherwise.
	ToggleResolved(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (*entity.Entry, error)
	RecordReview(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, reviewedAt time.Time) (*entity.Entry, error)
	SetReviewState(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, inReview bool, reviewItemId *string) (*entity.Entry, error)
	Delete(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (bool, error)
	// GetOwnerStats aggregates every entry of ownerId across notebooks.
	GetOwnerStats(ctx context.Context, ownerId uuid.UUID) (*entity.OwnerEntryStats, error)
}
