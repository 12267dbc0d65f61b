package entity

import (
	"time"

	"github.com/google/uuid"
)

// Audit holds the identity and audit columns shared by every tenant-scoped
// record. It is stamped server-side and never taken from client input.
type Audit struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_tenant_created,priority:1" json:"tenantId"`
	CreatedOn time.Time  `gorm:"not null;index:idx_tenant_created,priority:2" json:"createdOn"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null" json:"createdBy"`
	UpdatedOn *time.Time `json:"updatedOn,omitempty"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid" json:"updatedBy,omitempty"`
	Version   int        `gorm:"not null;default:1" json:"version"`
}

func (a *Audit) AuditFields() *Audit {
	return a
}

// StampCreated sets the creation columns and starts the version counter.
func (a *Audit) StampCreated(id, tenantID, userID uuid.UUID, now time.Time) {
	a.ID = id
	a.TenantID = tenantID
	a.CreatedOn = now
	a.CreatedBy = userID
	a.UpdatedOn = nil
	a.UpdatedBy = nil
	a.Version = 1
}

// StampUpdated sets the modification columns.
func (a *Audit) StampUpdated(userID uuid.UUID, now time.Time) {
	a.UpdatedOn = &now
	a.UpdatedBy = &userID
}

// Record is implemented by pointers to tenant-scoped entities, so generic
// code parameterized on T can reach the audit block of a *T.
type Record[T any] interface {
	*T
	AuditFields() *Audit
}
