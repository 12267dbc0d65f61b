package repository

import (
	"context"
	"errors"

	"clinical-records-api/internal/query"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrDuplicate       = errors.New("record already exists")
)

// EntityRepository stores tenant-scoped records of one entity type. Every
// read and write is restricted to the given tenant.
type EntityRepository[T any] interface {
	Create(ctx context.Context, item *T) error
	// FindByID returns nil, nil when no record matches.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*T, error)
	List(ctx context.Context, tenantID uuid.UUID, q *query.Compiled[T]) (*query.ListResult[T], error)
	// Update writes item if its stored version equals item's version and
	// bumps the version. It returns ErrNotFound or ErrVersionConflict.
	Update(ctx context.Context, tenantID uuid.UUID, item *T) error
	// Delete returns the number of removed records.
	Delete(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
}
