package repository

import (
	"context"
	"errors"

	"clinical-records-api/internal/domain/entity"
	domainRepo "clinical-records-api/internal/domain/repository"
	"clinical-records-api/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type entityRepository[T any, PT entity.Record[T]] struct {
	db *gorm.DB
}

// NewEntityRepository returns a PostgreSQL backed repository for T.
func NewEntityRepository[T any, PT entity.Record[T]](db *gorm.DB) domainRepo.EntityRepository[T] {
	return &entityRepository[T, PT]{db: db}
}

func (r *entityRepository[T, PT]) Create(ctx context.Context, item *T) error {
	return mapError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *entityRepository[T, PT]) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*T, error) {
	var item T
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *entityRepository[T, PT]) List(ctx context.Context, tenantID uuid.UUID, q *query.Compiled[T]) (*query.ListResult[T], error) {
	base := r.db.WithContext(ctx).
		Model(new(T)).
		Where("tenant_id = ?", tenantID).
		Scopes(filterScope(q)).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	items := []T{}
	if offset := q.Offset(); offset >= 0 && total > int64(offset) {
		if err := base.Scopes(pageScope(q)).Find(&items).Error; err != nil {
			return nil, mapError(err)
		}
	}

	return &query.ListResult[T]{Items: items, TotalCount: total}, nil
}

func (r *entityRepository[T, PT]) Update(ctx context.Context, tenantID uuid.UUID, item *T) error {
	audit := PT(item).AuditFields()
	expected := audit.Version
	audit.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(item).
		Where("tenant_id = ? AND version = ?", tenantID, expected).
		Select("*").
		Omit("id", "tenant_id", "created_on", "created_by").
		Updates(item)
	if result.Error != nil {
		audit.Version = expected
		return mapError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	audit.Version = expected
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("tenant_id = ? AND id = ?", tenantID, audit.ID).Count(&count).Error; err != nil {
		return mapError(err)
	}
	if count == 0 {
		return domainRepo.ErrNotFound
	}
	return domainRepo.ErrVersionConflict
}

func (r *entityRepository[T, PT]) Delete(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(new(T))
	if result.Error != nil {
		return 0, mapError(result.Error)
	}
	return result.RowsAffected, nil
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" {
			return errors.Join(domainRepo.ErrDuplicate, err)
		}
	}
	return err
}
