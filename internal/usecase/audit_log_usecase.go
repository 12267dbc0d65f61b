package usecase

import (
	"context"

	"clinical-records-api/internal/converter"
	"clinical-records-api/internal/delivery/dto"
	"clinical-records-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 500
)

type AuditLogUsecase interface {
	GetRecentAuditLogs(ctx context.Context, rc RequestContext, limit int) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// GetRecentAuditLogs returns the newest entries of the caller's tenant.
// limit is clamped to 1..MaxAuditLogLimit, with 0 meaning the default.
func (u *auditLogUsecase) GetRecentAuditLogs(ctx context.Context, rc RequestContext, limit int) (*dto.AuditLogListResponse, error) {
	if rc.TenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}
	switch {
	case limit <= 0:
		limit = DefaultAuditLogLimit
	case limit > MaxAuditLogLimit:
		limit = MaxAuditLogLimit
	}

	logs, err := u.auditLogRepo.FindByTenant(ctx, rc.TenantID, limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
