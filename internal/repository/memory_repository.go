package repository

import (
	"context"
	"sync"

	"clinical-records-api/internal/domain/entity"
	domainRepo "clinical-records-api/internal/domain/repository"
	"clinical-records-api/internal/query"

	"github.com/google/uuid"
)

// memoryRepository keeps records in process memory. It applies the same
// tenant scoping and version rules as the PostgreSQL repository.
type memoryRepository[T any, PT entity.Record[T]] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]T
}

func NewMemoryRepository[T any, PT entity.Record[T]]() domainRepo.EntityRepository[T] {
	return &memoryRepository[T, PT]{items: make(map[uuid.UUID]T)}
}

func (r *memoryRepository[T, PT]) Create(ctx context.Context, item *T) error {
	id := PT(item).AuditFields().ID

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[id]; exists {
		return domainRepo.ErrDuplicate
	}
	r.items[id] = *item
	return nil
}

func (r *memoryRepository[T, PT]) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok || PT(&item).AuditFields().TenantID != tenantID {
		return nil, nil
	}
	return &item, nil
}

func (r *memoryRepository[T, PT]) List(ctx context.Context, tenantID uuid.UUID, q *query.Compiled[T]) (*query.ListResult[T], error) {
	r.mu.RLock()
	snapshot := make([]T, 0, len(r.items))
	for _, item := range r.items {
		snapshot = append(snapshot, item)
	}
	r.mu.RUnlock()

	return query.Resolve(snapshot, tenantID, q), nil
}

func (r *memoryRepository[T, PT]) Update(ctx context.Context, tenantID uuid.UUID, item *T) error {
	audit := PT(item).AuditFields()

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[audit.ID]
	if !ok || PT(&stored).AuditFields().TenantID != tenantID {
		return domainRepo.ErrNotFound
	}
	if PT(&stored).AuditFields().Version != audit.Version {
		return domainRepo.ErrVersionConflict
	}

	audit.Version++
	r.items[audit.ID] = *item
	return nil
}

func (r *memoryRepository[T, PT]) Delete(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || PT(&item).AuditFields().TenantID != tenantID {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}
