package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TreatmentStatusPlanned    = "planned"
	TreatmentStatusInProgress = "in_progress"
	TreatmentStatusCompleted  = "completed"
	TreatmentStatusCancelled  = "cancelled"
)

// Treatment represents a course of care for a patient
type Treatment struct {
	Audit

	PatientName  string          `gorm:"type:varchar(200);not null" json:"patientName" validate:"required,max=200"`
	Name         string          `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	Description  string          `gorm:"type:text" json:"description" validate:"max=4000"`
	Status       string          `gorm:"type:varchar(20);not null;default:'planned'" json:"status" validate:"required,oneof=planned in_progress completed cancelled"`
	StartDate    time.Time       `gorm:"not null" json:"startDate" validate:"required"`
	EndDate      *time.Time      `json:"endDate,omitempty"`
	SessionCount int             `gorm:"not null;default:0" json:"sessionCount" validate:"gte=0"`
	Cost         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost" validate:"gte=0"`
	IsCovered    bool            `gorm:"not null;default:false" json:"isCovered"`
}

func (Treatment) TableName() string {
	return "treatments"
}

