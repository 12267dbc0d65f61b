package entity

import (
	"time"

	"clinical-records-api/internal/query"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entity names used for entitlements and audit actions.
const (
	EntityDunningLetters = "DunningLetters"
	EntityPrescription   = "Prescription"
	EntityTreatment      = "Treatment"
	EntityAuditLogs      = "AuditLogs"
)

// auditFields lists the audit block attributes. All of them are managed by
// the server and protected from patch operations.
func auditFields[T any, PT Record[T]]() []query.Field[T] {
	audit := func(t *T) *Audit { return PT(t).AuditFields() }
	return []query.Field[T]{
		query.UUID(query.FieldID, "id", func(t *T) *uuid.UUID { return &audit(t).ID }).AsImmutable(),
		query.UUID(query.FieldTenantID, "tenant_id", func(t *T) *uuid.UUID { return &audit(t).TenantID }).AsImmutable(),
		query.Time(query.FieldCreatedOn, "created_on", func(t *T) *time.Time { return &audit(t).CreatedOn }).AsImmutable(),
		query.UUID("createdBy", "created_by", func(t *T) *uuid.UUID { return &audit(t).CreatedBy }).AsImmutable(),
		query.OptionalTime("updatedOn", "updated_on", func(t *T) **time.Time { return &audit(t).UpdatedOn }).AsImmutable(),
		query.OptionalUUID("updatedBy", "updated_by", func(t *T) **uuid.UUID { return &audit(t).UpdatedBy }).AsImmutable(),
		query.Int("version", "version", func(t *T) *int { return &audit(t).Version }).AsImmutable(),
	}
}

var DunningLetterSchema = query.MustSchema(EntityDunningLetters, append(auditFields[DunningLetter](),
	query.String("customerName", "customer_name", func(d *DunningLetter) *string { return &d.CustomerName }).AsSearchable(),
	query.String("invoiceNumber", "invoice_number", func(d *DunningLetter) *string { return &d.InvoiceNumber }).AsSearchable(),
	query.Decimal("amountDue", "amount_due", func(d *DunningLetter) *decimal.Decimal { return &d.AmountDue }),
	query.Decimal("fee", "fee", func(d *DunningLetter) *decimal.Decimal { return &d.Fee }),
	query.String("currency", "currency", func(d *DunningLetter) *string { return &d.Currency }),
	query.Int("dunningLevel", "dunning_level", func(d *DunningLetter) *int { return &d.DunningLevel }),
	query.String("status", "status", func(d *DunningLetter) *string { return &d.Status }),
	query.Time("dueDate", "due_date", func(d *DunningLetter) *time.Time { return &d.DueDate }),
	query.OptionalTime("sentOn", "sent_on", func(d *DunningLetter) **time.Time { return &d.SentOn }),
	query.String("notes", "notes", func(d *DunningLetter) *string { return &d.Notes }).AsSearchable(),
)...)

var PrescriptionSchema = query.MustSchema(EntityPrescription, append(auditFields[Prescription](),
	query.String("patientName", "patient_name", func(p *Prescription) *string { return &p.PatientName }).AsSearchable(),
	query.String("prescriberName", "prescriber_name", func(p *Prescription) *string { return &p.PrescriberName }).AsSearchable(),
	query.String("medicationName", "medication_name", func(p *Prescription) *string { return &p.MedicationName }).AsSearchable(),
	query.String("dosage", "dosage", func(p *Prescription) *string { return &p.Dosage }),
	query.String("frequency", "frequency", func(p *Prescription) *string { return &p.Frequency }),
	query.Int("refills", "refills", func(p *Prescription) *int { return &p.Refills }),
	query.Time("prescribedOn", "prescribed_on", func(p *Prescription) *time.Time { return &p.PrescribedOn }),
	query.OptionalTime("expiresOn", "expires_on", func(p *Prescription) **time.Time { return &p.ExpiresOn }),
	query.Bool("isActive", "is_active", func(p *Prescription) *bool { return &p.IsActive }),
	query.String("notes", "notes", func(p *Prescription) *string { return &p.Notes }).AsSearchable(),
)...)

var TreatmentSchema = query.MustSchema(EntityTreatment, append(auditFields[Treatment](),
	query.String("patientName", "patient_name", func(t *Treatment) *string { return &t.PatientName }).AsSearchable(),
	query.String("name", "name", func(t *Treatment) *string { return &t.Name }).AsSearchable(),
	query.String("description", "description", func(t *Treatment) *string { return &t.Description }).AsSearchable(),
	query.String("status", "status", func(t *Treatment) *string { return &t.Status }),
	query.Time("startDate", "start_date", func(t *Treatment) *time.Time { return &t.StartDate }),
	query.OptionalTime("endDate", "end_date", func(t *Treatment) **time.Time { return &t.EndDate }),
	query.Int("sessionCount", "session_count", func(t *Treatment) *int { return &t.SessionCount }),
	query.Decimal("cost", "cost", func(t *Treatment) *decimal.Decimal { return &t.Cost }),
	query.Bool("isCovered", "is_covered", func(t *Treatment) *bool { return &t.IsCovered }),
)...)
