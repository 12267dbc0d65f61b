package usecase

import (
	"context"
	"errors"
	"sync/atomic"

	"clinical-records-api/internal/domain/entity"
	"clinical-records-api/internal/domain/repository"
	"clinical-records-api/internal/query"
	"clinical-records-api/internal/service"

	"github.com/google/uuid"
)

// Compile-time check to ensure MockTreatmentRepository implements EntityRepository
var _ repository.EntityRepository[entity.Treatment] = (*MockTreatmentRepository)(nil)

// MockTreatmentRepository counts calls so tests can assert that rejected
// requests never reach storage.
type MockTreatmentRepository struct {
	CreateFunc   func(ctx context.Context, item *entity.Treatment) error
	FindByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*entity.Treatment, error)
	ListFunc     func(ctx context.Context, tenantID uuid.UUID, q *query.Compiled[entity.Treatment]) (*query.ListResult[entity.Treatment], error)
	UpdateFunc   func(ctx context.Context, tenantID uuid.UUID, item *entity.Treatment) error
	DeleteFunc   func(ctx context.Context, tenantID, id uuid.UUID) (int64, error)

	Calls int32
}

func (m *MockTreatmentRepository) Create(ctx context.Context, item *entity.Treatment) error {
	atomic.AddInt32(&m.Calls, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	return nil
}

func (m *MockTreatmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Treatment, error) {
	atomic.AddInt32(&m.Calls, 1)
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tenantID, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockTreatmentRepository) List(ctx context.Context, tenantID uuid.UUID, q *query.Compiled[entity.Treatment]) (*query.ListResult[entity.Treatment], error) {
	atomic.AddInt32(&m.Calls, 1)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, q)
	}
	return nil, errors.New("ListFunc not implemented in mock")
}

func (m *MockTreatmentRepository) Update(ctx context.Context, tenantID uuid.UUID, item *entity.Treatment) error {
	atomic.AddInt32(&m.Calls, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tenantID, item)
	}
	return errors.New("UpdateFunc not implemented in mock")
}

func (m *MockTreatmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	atomic.AddInt32(&m.Calls, 1)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tenantID, id)
	}
	return 0, errors.New("DeleteFunc not implemented in mock")
}

// Compile-time check to ensure MockAuditService implements AuditService
var _ service.AuditService = (*MockAuditService)(nil)

type MockAuditService struct {
	Actions []string
	Err     error
}

func (m *MockAuditService) LogCreate(ctx context.Context, actor service.Actor, action string, entityName string, entityID string, newValue interface{}) error {
	m.Actions = append(m.Actions, action)
	return m.Err
}

func (m *MockAuditService) LogUpdate(ctx context.Context, actor service.Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	m.Actions = append(m.Actions, action)
	return m.Err
}

func (m *MockAuditService) LogDelete(ctx context.Context, actor service.Actor, action string, entityName string, entityID string, oldValue interface{}) error {
	m.Actions = append(m.Actions, action)
	return m.Err
}
