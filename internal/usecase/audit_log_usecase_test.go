package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"clinical-records-api/internal/domain/entity"
	repoImpl "clinical-records-api/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAuditLogRepository struct{}

func (failingAuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return errors.New("down")
}

func (failingAuditLogRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]entity.AuditLog, error) {
	return nil, errors.New("down")
}

func TestGetRecentAuditLogs(t *testing.T) {
	ctx := context.Background()
	repo := repoImpl.NewMemoryAuditLogRepository()
	tenant, other := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.AuditLog{TenantID: tenant, Action: "treatment.create"}))
	}
	require.NoError(t, repo.Create(ctx, &entity.AuditLog{TenantID: other, Action: "treatment.delete"}))

	uc := NewAuditLogUsecase(discardLogger(), repo)

	resp, err := uc.GetRecentAuditLogs(ctx, RequestContext{TenantID: tenant}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Greater(t, resp.Logs[0].ID, resp.Logs[1].ID)

	resp, err = uc.GetRecentAuditLogs(ctx, RequestContext{TenantID: tenant}, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Logs, 2)

	_, err = uc.GetRecentAuditLogs(ctx, RequestContext{}, 10)
	assert.ErrorIs(t, err, ErrMissingTenant)

	_, err = NewAuditLogUsecase(discardLogger(), failingAuditLogRepository{}).GetRecentAuditLogs(ctx, RequestContext{TenantID: tenant}, 10)
	assert.Error(t, err)
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
