package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DunningLetterStatusDraft     = "draft"
	DunningLetterStatusSent      = "sent"
	DunningLetterStatusPaid      = "paid"
	DunningLetterStatusCancelled = "cancelled"
)

// DunningLetter is a payment reminder sent to a customer for an overdue invoice.
type DunningLetter struct {
	Audit

	CustomerName  string          `gorm:"type:varchar(200);not null" json:"customerName" validate:"required,min=2,max=200"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null;index" json:"invoiceNumber" validate:"required,max=50"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amountDue" validate:"gt=0"`
	Fee           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"fee" validate:"gte=0"`
	Currency      string          `gorm:"type:char(3)" json:"currency" validate:"omitempty,len=3"`
	DunningLevel  int             `gorm:"not null;default:1" json:"dunningLevel" validate:"gte=1,lte=5"`
	Status        string          `gorm:"type:varchar(20);not null;default:'draft'" json:"status" validate:"required,oneof=draft sent paid cancelled"`
	DueDate       time.Time       `gorm:"not null" json:"dueDate" validate:"required"`
	SentOn        *time.Time      `json:"sentOn,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes" validate:"max=2000"`
}

func (DunningLetter) TableName() string {
	return "dunning_letters"
}

