package service

import (
	"context"

	"clinical-records-api/internal/domain/entity"
	"clinical-records-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Actor identifies who made a change and in which tenant.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

type AuditService interface {
	LogCreate(ctx context.Context, actor Actor, action string, entityName string, entityID string, newValue interface{}) error
	LogUpdate(ctx context.Context, actor Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) error
	LogDelete(ctx context.Context, actor Actor, action string, entityName string, entityID string, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, actor Actor, action string, entityName string, entityID string, newValue interface{}) error {
	return s.write(ctx, actor, action, entityName, entityID, nil, newValue)
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, actor Actor, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return s.write(ctx, actor, action, entityName, entityID, oldValue, newValue)
}

// LogDelete logs a delete action with old value
func (s *auditService) LogDelete(ctx context.Context, actor Actor, action string, entityName string, entityID string, oldValue interface{}) error {
	return s.write(ctx, actor, action, entityName, entityID, oldValue, nil)
}

func (s *auditService) write(ctx context.Context, actor Actor, action, entityName, entityID string, oldValue, newValue interface{}) error {
	userID := actor.UserID
	auditLog := &entity.AuditLog{
		TenantID: actor.TenantID,
		UserID:   &userID,
		Action:   action,
		Metadata: entity.JSON{
			"entity":    entityName,
			"entity_id": entityID,
			"old_value": oldValue,
			"new_value": newValue,
		},
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
