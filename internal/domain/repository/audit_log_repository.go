package repository

import (
	"context"

	"clinical-records-api/internal/domain/entity"

	"github.com/google/uuid"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]entity.AuditLog, error)
}
