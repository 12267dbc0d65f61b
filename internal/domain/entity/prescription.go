package entity

import "time"

type Prescription struct {
	Audit

	PatientName    string     `gorm:"type:varchar(200);not null" json:"patientName" validate:"required,max=200"`
	PrescriberName string     `gorm:"type:varchar(200);not null" json:"prescriberName" validate:"required,max=200"`
	MedicationName string     `gorm:"type:varchar(200);not null" json:"medicationName" validate:"required,max=200"`
	Dosage         string     `gorm:"type:varchar(100);not null" json:"dosage" validate:"required,max=100"`
	Frequency      string     `gorm:"type:varchar(100)" json:"frequency" validate:"max=100"`
	Refills        int        `gorm:"not null;default:0" json:"refills" validate:"gte=0,lte=12"`
	PrescribedOn   time.Time  `gorm:"not null" json:"prescribedOn" validate:"required"`
	ExpiresOn      *time.Time `json:"expiresOn,omitempty"`
	IsActive       bool       `gorm:"not null;default:true" json:"isActive"`
	Notes          string     `gorm:"type:text" json:"notes" validate:"max=2000"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

