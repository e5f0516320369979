package contract

import (
	"context"

	"medstudy-be/internal/entity"

	"github.com/google/uuid"
)

// NotebookRepository returns (nil, nil) for missing records and ErrForbidden when the requester
// is not allowed to perform the operation.
type NotebookRepository interface {
	Create(ctx context.Context, notebook *entity.Notebook) (*entity.Notebook, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.Notebook, error)
	FindVisible(ctx context.Context, id uuid.UUID, requesterId uuid.UUID) (*entity.Notebook, error)
	FindByOwner(ctx context.Context, ownerId uuid.UUID, filter entity.Filter, page entity.Pagination) (*entity.PageResult[*entity.Notebook], error)
	Update(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, patch entity.NotebookPatch) (*entity.Notebook, error)
	Delete(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (bool, error)
	GetStats(ctx context.Context, id uuid.UUID, ownerId uuid.UUID) (*entity.NotebookStats, error)

	IncrementEntryCount(ctx context.Context, id uuid.UUID) error
	DecrementEntryCount(ctx context.Context, id uuid.UUID) error
	RecountEntries(ctx context.Context, id uuid.UUID) (int, error)
}
