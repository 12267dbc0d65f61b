package usecase

import (
	"context"
	"errors"
	"time"

	"clinical-records-api/internal/domain/entity"
	"clinical-records-api/internal/domain/repository"
	"clinical-records-api/internal/patch"
	"clinical-records-api/internal/query"
	"clinical-records-api/internal/service"
	"clinical-records-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEntityNotFound  = errors.New("entity not found")
	ErrMismatchedID    = errors.New("Mismatched Id")
	ErrVersionConflict = errors.New("entity was modified by another request")
	ErrImmutableField  = errors.New("id, tenantId, createdOn and createdBy cannot be changed")
	ErrMissingTenant   = errors.New("request has no tenant")
)

// EntityUsecase is the tenant-scoped access service of one entity type.
type EntityUsecase[T any] interface {
	Schema() *query.Schema[T]
	Create(ctx context.Context, rc RequestContext, item *T) (uuid.UUID, error)
	Get(ctx context.Context, rc RequestContext, params query.Params) (*query.ListResult[T], error)
	// GetByID returns *T, or a map of the requested attributes when fields
	// is not empty.
	GetByID(ctx context.Context, rc RequestContext, id uuid.UUID, fields []string) (interface{}, error)
	Update(ctx context.Context, rc RequestContext, id uuid.UUID, item *T) (bool, error)
	Patch(ctx context.Context, rc RequestContext, id uuid.UUID, ops []patch.Operation) (bool, error)
	Delete(ctx context.Context, rc RequestContext, id uuid.UUID) (bool, error)
}

type entityUsecase[T any, PT entity.Record[T]] struct {
	log          *logrus.Logger
	repo         repository.EntityRepository[T]
	schema       *query.Schema[T]
	validator    *validator.CustomValidator
	merger       *patch.Merger[T]
	auditService service.AuditService
	maxPageSize  int

	now   func() time.Time
	newID func() uuid.UUID
}

func NewEntityUsecase[T any, PT entity.Record[T]](
	log *logrus.Logger,
	repo repository.EntityRepository[T],
	schema *query.Schema[T],
	customValidator *validator.CustomValidator,
	auditService service.AuditService,
	maxPageSize int,
) EntityUsecase[T] {
	return &entityUsecase[T, PT]{
		log:          log,
		repo:         repo,
		schema:       schema,
		validator:    customValidator,
		merger:       patch.NewMerger(schema, customValidator),
		auditService: auditService,
		maxPageSize:  maxPageSize,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.New,
	}
}

func (u *entityUsecase[T, PT]) Schema() *query.Schema[T] {
	return u.schema
}

func (u *entityUsecase[T, PT]) Create(ctx context.Context, rc RequestContext, item *T) (uuid.UUID, error) {
	if rc.TenantID == uuid.Nil {
		return uuid.Nil, ErrMissingTenant
	}

	PT(item).AuditFields().StampCreated(u.newID(), rc.TenantID, rc.UserID, u.now())
	if err := u.validator.Validate(item); err != nil {
		return uuid.Nil, err
	}

	if err := u.repo.Create(ctx, item); err != nil {
		u.log.Warnf("Failed to create %s: %+v", u.schema.Entity(), err)
		return uuid.Nil, err
	}

	id := PT(item).AuditFields().ID
	u.audit(ctx, rc, entity.AuditOpCreate, id, nil, item)
	return id, nil
}

func (u *entityUsecase[T, PT]) Get(ctx context.Context, rc RequestContext, params query.Params) (*query.ListResult[T], error) {
	compiled, err := query.Compile(u.schema, params, u.maxPageSize)
	if err != nil {
		return nil, err
	}
	if rc.TenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}

	result, err := u.repo.List(ctx, rc.TenantID, compiled)
	if err != nil {
		u.log.Warnf("Failed to list %s: %+v", u.schema.Entity(), err)
		return nil, err
	}
	return result, nil
}

func (u *entityUsecase[T, PT]) GetByID(ctx context.Context, rc RequestContext, id uuid.UUID, fields []string) (interface{}, error) {
	if _, err := u.schema.CheckFields(fields); err != nil {
		return nil, err
	}

	item, err := u.load(ctx, rc, id)
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return item, nil
	}
	return u.schema.Project(item, fields)
}

func (u *entityUsecase[T, PT]) Update(ctx context.Context, rc RequestContext, id uuid.UUID, item *T) (bool, error) {
	incoming := PT(item).AuditFields()
	if incoming.ID != id {
		return false, ErrMismatchedID
	}
	if err := u.validator.Validate(item); err != nil {
		return false, err
	}

	existing, err := u.load(ctx, rc, id)
	if err != nil {
		return false, err
	}
	stored := PT(existing).AuditFields()

	if incoming.TenantID != uuid.Nil && incoming.TenantID != stored.TenantID ||
		!incoming.CreatedOn.IsZero() && !incoming.CreatedOn.Equal(stored.CreatedOn) ||
		incoming.CreatedBy != uuid.Nil && incoming.CreatedBy != stored.CreatedBy {
		return false, ErrImmutableField
	}
	if incoming.Version != 0 && incoming.Version != stored.Version {
		return false, ErrVersionConflict
	}

	incoming.TenantID = stored.TenantID
	incoming.CreatedOn = stored.CreatedOn
	incoming.CreatedBy = stored.CreatedBy
	incoming.Version = stored.Version
	incoming.StampUpdated(rc.UserID, u.now())

	if err := u.save(ctx, rc, item); err != nil {
		return false, err
	}

	u.audit(ctx, rc, entity.AuditOpUpdate, id, existing, item)
	return true, nil
}

func (u *entityUsecase[T, PT]) Patch(ctx context.Context, rc RequestContext, id uuid.UUID, ops []patch.Operation) (bool, error) {
	if len(ops) == 0 {
		return false, patch.ErrMissingDocument
	}
	if err := u.merger.Check(ops); err != nil {
		return false, err
	}

	existing, err := u.load(ctx, rc, id)
	if err != nil {
		return false, err
	}

	patched, err := u.merger.Apply(existing, ops)
	if err != nil {
		return false, err
	}
	PT(patched).AuditFields().StampUpdated(rc.UserID, u.now())

	if err := u.save(ctx, rc, patched); err != nil {
		return false, err
	}

	u.audit(ctx, rc, entity.AuditOpPatch, id, existing, patched)
	return true, nil
}

func (u *entityUsecase[T, PT]) Delete(ctx context.Context, rc RequestContext, id uuid.UUID) (bool, error) {
	existing, err := u.load(ctx, rc, id)
	if err != nil {
		return false, err
	}

	deleted, err := u.repo.Delete(ctx, rc.TenantID, id)
	if err != nil {
		u.log.Warnf("Failed to delete %s %s: %+v", u.schema.Entity(), id, err)
		return false, err
	}
	if deleted == 0 {
		return false, ErrEntityNotFound
	}

	u.audit(ctx, rc, entity.AuditOpDelete, id, existing, nil)
	return true, nil
}

// load fetches id within the caller's tenant.
func (u *entityUsecase[T, PT]) load(ctx context.Context, rc RequestContext, id uuid.UUID) (*T, error) {
	if rc.TenantID == uuid.Nil {
		return nil, ErrMissingTenant
	}

	item, err := u.repo.FindByID(ctx, rc.TenantID, id)
	if err != nil {
		u.log.Warnf("Failed to find %s %s: %+v", u.schema.Entity(), id, err)
		return nil, err
	}
	if item == nil {
		return nil, ErrEntityNotFound
	}
	return item, nil
}

func (u *entityUsecase[T, PT]) save(ctx context.Context, rc RequestContext, item *T) error {
	err := u.repo.Update(ctx, rc.TenantID, item)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrEntityNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrVersionConflict
	}
	u.log.Warnf("Failed to update %s: %+v", u.schema.Entity(), err)
	return err
}

// audit records the change. A failed audit write never fails the request.
func (u *entityUsecase[T, PT]) audit(ctx context.Context, rc RequestContext, op string, id uuid.UUID, oldValue, newValue *T) {
	actor := service.Actor{TenantID: rc.TenantID, UserID: rc.UserID}
	action := entity.AuditAction(u.schema.Entity(), op)
	entityID := id.String()
	name := u.schema.Entity()

	var err error
	switch op {
	case entity.AuditOpCreate:
		err = u.auditService.LogCreate(ctx, actor, action, name, entityID, newValue)
	case entity.AuditOpDelete:
		err = u.auditService.LogDelete(ctx, actor, action, name, entityID, oldValue)
	default:
		err = u.auditService.LogUpdate(ctx, actor, action, name, entityID, oldValue, newValue)
	}
	if err != nil {
		u.log.Warnf("Failed to audit %s: %+v", action, err)
	}
}
