package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// PaymentAllocation matches settlement capacity from a payment-side
// entry against an invoice-side entry. Rows are created and deleted as
// whole units; the entries' AllocatedAmount columns are adjusted in the
// same transaction.
type PaymentAllocation struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PartnerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for PaymentAllocation
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}

// NewPaymentAllocation creates an allocation row
func NewPaymentAllocation(partnerID, invoiceEntryID, paymentEntryID uuid.UUID, amount decimal.Decimal) (*PaymentAllocation, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if invoiceEntryID == uuid.Nil || paymentEntryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTRY", "Both ledger entries are required")
	}
	if invoiceEntryID == paymentEntryID {
		return nil, shared.NewDomainError("INVALID_ENTRY", "Cannot allocate an entry against itself")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	return &PaymentAllocation{
		ID:             uuid.New(),
		PartnerID:      partnerID,
		InvoiceEntryID: invoiceEntryID,
		PaymentEntryID: paymentEntryID,
		Amount:         amount.Round(2),
		CreatedAt:      time.Now(),
	}, nil
}
