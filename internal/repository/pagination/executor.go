// Package pagination runs filtered, sorted, windowed listings against a backend collection and
// recovers from queries the backend cannot plan by scanning the scope in memory.
package pagination

import (
	"context"
	"errors"
	"fmt"

	"medstudy-be/internal/entity"
	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const logModule = "Pagination"

var validate = validator.New()

type Executor[T entity.Record] struct {
	backend    string
	collection contract.Collection[T]
	sortFields entity.SortFieldSet
	logger     logger.ILogger
	tracer     trace.Tracer
}

func NewExecutor[T entity.Record](backend string, collection contract.Collection[T], sortFields entity.SortFieldSet, log logger.ILogger) *Executor[T] {
	return &Executor[T]{
		backend:    backend,
		collection: collection,
		sortFields: sortFields,
		logger:     log,
		tracer:     otel.Tracer("medstudy-be/pagination"),
	}
}

// Execute returns one page of the records in scope that match filter. The native compound
// query is tried first; a capability failure from either the query or the count switches the
// whole request to the fallback scanner so that items and total come from the same path.
func (e *Executor[T]) Execute(ctx context.Context, scope entity.Scope, filter entity.Filter, page entity.Pagination) (*entity.PageResult[T], error) {
	if err := ValidatePagination(page); err != nil {
		return nil, err
	}

	sort := contract.SortSpec{Field: e.sortFields.Normalize(page.SortBy), Order: page.SortOrder}
	if sort.Order == "" {
		sort.Order = entity.SortDesc
	}

	ctx, span := e.tracer.Start(ctx, "pagination.Execute", trace.WithAttributes(
		attribute.String("backend", e.backend),
		attribute.String("sort.field", string(sort.Field)),
		attribute.String("sort.order", string(sort.Order)),
		attribute.Int("page.limit", page.Limit),
	))
	defer span.End()

	anchor, err := e.resolveAnchor(ctx, scope, sort, page.AfterId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	q := contract.CompoundQuery{
		Scope:  scope,
		Filter: filter,
		Sort:   sort,
		Anchor: anchor,
		Offset: page.Offset(),
		Limit:  page.Limit + 1,
	}

	result, err := e.native(ctx, q, page.Limit)
	if errors.Is(err, contract.ErrCapabilityFailure) {
		e.logger.Warn(logModule, "Native query not servable, falling back to scoped scan", map[string]interface{}{
			"backend":    e.backend,
			"sort_field": string(sort.Field),
			"filter":     describeFilter(filter),
			"reason":     err.Error(),
		})
		span.AddEvent("fallback", trace.WithAttributes(attribute.String("reason", err.Error())))
		result, err = e.fallback(ctx, q, page.Limit)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("result.total", result.Total), attribute.Int("result.items", len(result.Items)))
	return result, nil
}

func (e *Executor[T]) native(ctx context.Context, q contract.CompoundQuery, limit int) (*entity.PageResult[T], error) {
	items, err := e.collection.RunCompoundQuery(ctx, q)
	if err != nil {
		return nil, contract.BackendFault("compound query", err)
	}
	total, err := e.collection.CountMatching(ctx, q)
	if err != nil {
		return nil, contract.BackendFault("count query", err)
	}
	return buildPage(items, total, limit), nil
}

func (e *Executor[T]) fallback(ctx context.Context, q contract.CompoundQuery, limit int) (*entity.PageResult[T], error) {
	all, err := e.collection.RunScopedScan(ctx, q.Scope)
	if err != nil {
		if errors.Is(err, contract.ErrCapabilityFailure) {
			// a scan that cannot be served has nothing left to fall back to
			return nil, fmt.Errorf("%w: scoped scan: %w", contract.ErrBackendFault, err)
		}
		return nil, contract.BackendFault("scoped scan", err)
	}
	items, total := Window(all, q)
	return buildPage(items, int64(total), limit), nil
}

func (e *Executor[T]) resolveAnchor(ctx context.Context, scope entity.Scope, sort contract.SortSpec, afterId *uuid.UUID) (*contract.Anchor, error) {
	if afterId == nil {
		return nil, nil
	}
	record, err := e.collection.FindById(ctx, *afterId)
	if errors.Is(err, contract.ErrNotFound) {
		return nil, contract.NewValidationError("afterId", "cursor does not reference an existing record")
	}
	if err != nil {
		return nil, contract.BackendFault("resolve cursor", err)
	}
	if !record.InScope(scope) {
		return nil, contract.NewValidationError("afterId", "cursor is outside the requested scope")
	}
	return &contract.Anchor{Id: record.GetId(), Value: record.SortValue(sort.Field)}, nil
}

func buildPage[T entity.Record](items []T, total int64, limit int) *entity.PageResult[T] {
	result := &entity.PageResult[T]{Total: total}
	if len(items) > limit {
		result.HasMore = true
		items = items[:limit]
	}
	if items == nil {
		items = make([]T, 0)
	}
	result.Items = items
	if result.HasMore && len(items) > 0 {
		cursor := items[len(items)-1].GetId()
		result.Cursor = &cursor
	}
	return result
}

// ValidatePagination reports the first violated constraint as a ValidationError.
func ValidatePagination(page entity.Pagination) error {
	if err := validate.Struct(page); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return contract.NewValidationError(lowerFirst(fe.Field()), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
		}
		return contract.NewValidationError("", err.Error())
	}
	return nil
}

func describeFilter(f entity.Filter) map[string]interface{} {
	d := map[string]interface{}{}
	if f.Resolved != nil {
		d["resolved"] = *f.Resolved
	}
	if f.Category != nil {
		d["category"] = *f.Category
	}
	if len(f.Tags) > 0 {
		d["tags"] = f.Tags
	}
	if f.Search != "" {
		d["search"] = true
	}
	return d
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}
