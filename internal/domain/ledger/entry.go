package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// EntryStatus tracks how much of a partner ledger entry has been
// matched by allocations.
type EntryStatus string

const (
	EntryStatusOpen EntryStatus = "OPEN"
	// EntryStatusAllocated marks an entry with partial allocations.
	// Closure still requires the allocation sum to equal the amount.
	EntryStatusAllocated EntryStatus = "ALLOCATED"
	EntryStatusClosed    EntryStatus = "CLOSED"
)

// IsValid checks if the status is a known EntryStatus
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusOpen, EntryStatusAllocated, EntryStatusClosed:
		return true
	}
	return false
}

// PartnerLedgerEntry is one debit-or-credit row on a partner account.
// Amounts are stored in the base currency; exactly one of Debit/Credit
// is non-zero on every persisted row.
type PartnerLedgerEntry struct {
	shared.BaseAggregateRoot
	PartnerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	DocumentID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	DocumentType document.DocumentType `gorm:"type:varchar(32);not null"`
	EntryDate    time.Time             `gorm:"not null;index"`
	DueDate      *time.Time
	Debit        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Credit       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	// OrigAmount and Currency keep the document-currency value the base
	// amount was converted from.
	OrigAmount decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Currency   valueobject.Currency `gorm:"type:varchar(3);not null"`
	FxRate     decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:1"`
	// AllocatedAmount is maintained in the same transaction as the
	// allocation rows, under this entry's optimistic version.
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status          EntryStatus     `gorm:"type:varchar(16);not null;index"`
	ReversesEntryID *uuid.UUID      `gorm:"type:uuid"`
	Description     string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for PartnerLedgerEntry
func (PartnerLedgerEntry) TableName() string {
	return "partner_ledger_entries"
}

// NewDebitEntry creates a partner debit row (the partner owes us)
func NewDebitEntry(partnerID, documentID uuid.UUID, docType document.DocumentType, entryDate time.Time, amount decimal.Decimal) (*PartnerLedgerEntry, error) {
	return newEntry(partnerID, documentID, docType, entryDate, amount, decimal.Zero)
}

// NewCreditEntry creates a partner credit row (we owe the partner)
func NewCreditEntry(partnerID, documentID uuid.UUID, docType document.DocumentType, entryDate time.Time, amount decimal.Decimal) (*PartnerLedgerEntry, error) {
	return newEntry(partnerID, documentID, docType, entryDate, decimal.Zero, amount)
}

func newEntry(partnerID, documentID uuid.UUID, docType document.DocumentType, entryDate time.Time, debit, credit decimal.Decimal) (*PartnerLedgerEntry, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if debit.IsPositive() == credit.IsPositive() || debit.IsNegative() || credit.IsNegative() {
		return nil, shared.ErrLedgerImbalance
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}
	amount := debit.Add(credit).Round(2)
	return &PartnerLedgerEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartnerID:         partnerID,
		DocumentID:        documentID,
		DocumentType:      docType,
		EntryDate:         entryDate,
		Debit:             debit.Round(2),
		Credit:            credit.Round(2),
		OrigAmount:        amount,
		Currency:          valueobject.BaseCurrency,
		FxRate:            decimal.NewFromInt(1),
		AllocatedAmount:   decimal.Zero,
		Status:            EntryStatusOpen,
	}, nil
}

// WithOrigin records the document-currency amount and rate the base
// amount was derived from.
func (e *PartnerLedgerEntry) WithOrigin(amount decimal.Decimal, currency valueobject.Currency, fxRate decimal.Decimal) *PartnerLedgerEntry {
	e.OrigAmount = amount.Round(2)
	e.Currency = currency
	e.FxRate = fxRate
	return e
}

// WithDueDate sets the payment due date used by oldest-due-first allocation
func (e *PartnerLedgerEntry) WithDueDate(due time.Time) *PartnerLedgerEntry {
	e.DueDate = &due
	return e
}

// DebitAmount implements the posting guard's ledger row check
func (e *PartnerLedgerEntry) DebitAmount() decimal.Decimal {
	return e.Debit
}

// CreditAmount implements the posting guard's ledger row check
func (e *PartnerLedgerEntry) CreditAmount() decimal.Decimal {
	return e.Credit
}

// Amount returns the entry's single non-zero side
func (e *PartnerLedgerEntry) Amount() decimal.Decimal {
	return e.Debit.Add(e.Credit)
}

// Outstanding returns the unallocated remainder
func (e *PartnerLedgerEntry) Outstanding() decimal.Decimal {
	return e.Amount().Sub(e.AllocatedAmount)
}

// IsAllocatable reports whether the entry can still absorb allocations
func (e *PartnerLedgerEntry) IsAllocatable() bool {
	return e.Status != EntryStatusClosed && e.Outstanding().IsPositive()
}

// ApplyAllocation increases the allocated amount and advances the
// status. The allocation sum can never exceed the entry amount.
func (e *PartnerLedgerEntry) ApplyAllocation(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.GreaterThan(e.Outstanding()) {
		return shared.ErrOverAllocation
	}
	e.AllocatedAmount = e.AllocatedAmount.Add(amount).Round(2)
	if e.AllocatedAmount.Equal(e.Amount()) {
		e.Status = EntryStatusClosed
	} else {
		e.Status = EntryStatusAllocated
	}
	e.Touch()
	return nil
}

// RemoveAllocation decreases the allocated amount when an allocation
// row is deleted, reopening the entry as needed.
func (e *PartnerLedgerEntry) RemoveAllocation(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Deallocation amount must be positive")
	}
	if amount.GreaterThan(e.AllocatedAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Cannot deallocate more than is allocated")
	}
	e.AllocatedAmount = e.AllocatedAmount.Sub(amount).Round(2)
	if e.AllocatedAmount.IsZero() {
		e.Status = EntryStatusOpen
	} else {
		e.Status = EntryStatusAllocated
	}
	e.Touch()
	return nil
}

// Close takes the entry out of allocation matching. Used when the
// originating document is cancelled and a reversal offsets the entry.
func (e *PartnerLedgerEntry) Close() {
	e.Status = EntryStatusClosed
	e.Touch()
}

// Reverse creates the compensating entry with debit and credit swapped.
// The reversal is born CLOSED so it never participates in allocation.
func (e *PartnerLedgerEntry) Reverse(at time.Time) *PartnerLedgerEntry {
	if at.IsZero() {
		at = time.Now()
	}
	reversal := &PartnerLedgerEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PartnerID:         e.PartnerID,
		DocumentID:        e.DocumentID,
		DocumentType:      e.DocumentType,
		EntryDate:         at,
		Debit:             e.Credit,
		Credit:            e.Debit,
		OrigAmount:        e.OrigAmount,
		Currency:          e.Currency,
		FxRate:            e.FxRate,
		AllocatedAmount:   e.Amount(),
		Status:            EntryStatusClosed,
		ReversesEntryID:   &e.ID,
		Description:       "Reversal",
	}
	return reversal
}

// IsDebit reports whether the entry's non-zero side is the debit side
func (e *PartnerLedgerEntry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// IsInvoiceSide reports whether the entry represents an obligation to
// be settled (invoice side of allocation matching).
func (e *PartnerLedgerEntry) IsInvoiceSide() bool {
	return e.DocumentType == document.TypeSalesInvoice || e.DocumentType == document.TypePurchaseInvoice
}

// IsPaymentSide reports whether the entry represents settlement
// capacity (receipts and payments).
func (e *PartnerLedgerEntry) IsPaymentSide() bool {
	return e.DocumentType == document.TypeReceipt || e.DocumentType == document.TypePayment
}

// CashLedgerEntry is one debit-or-credit row on a cash account carrying
// a running balance. Rows are append-only; back-dated inserts rewrite
// downstream balances through an explicit recomputation.
type CashLedgerEntry struct {
	shared.BaseEntity
	CashAccountID uuid.UUID  `gorm:"type:uuid;not null;index:idx_cash_entries_account_date,priority:1"`
	DocumentID    *uuid.UUID `gorm:"type:uuid;index"`
	EntryDate     time.Time  `gorm:"not null;index:idx_cash_entries_account_date,priority:2"`
	Debit         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Credit        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	// Balance is the cumulative debit minus credit for the account up to
	// and including this row in strict (date, id) order.
	Balance         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ReversesEntryID *uuid.UUID      `gorm:"type:uuid"`
	Description     string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for CashLedgerEntry
func (CashLedgerEntry) TableName() string {
	return "cash_ledger_entries"
}

// NewCashEntry creates a cash row on top of the previous running balance
func NewCashEntry(accountID uuid.UUID, entryDate time.Time, debit, credit, previousBalance decimal.Decimal) (*CashLedgerEntry, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASH_ACCOUNT", "Cash account ID cannot be empty")
	}
	if debit.IsPositive() == credit.IsPositive() || debit.IsNegative() || credit.IsNegative() {
		return nil, shared.ErrLedgerImbalance
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}
	return &CashLedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		CashAccountID: accountID,
		EntryDate:     entryDate,
		Debit:         debit.Round(2),
		Credit:        credit.Round(2),
		Balance:       previousBalance.Add(debit).Sub(credit).Round(2),
	}, nil
}

// WithDocument links the entry to its originating document
func (e *CashLedgerEntry) WithDocument(documentID uuid.UUID) *CashLedgerEntry {
	e.DocumentID = &documentID
	return e
}

// DebitAmount implements the posting guard's ledger row check
func (e *CashLedgerEntry) DebitAmount() decimal.Decimal {
	return e.Debit
}

// CreditAmount implements the posting guard's ledger row check
func (e *CashLedgerEntry) CreditAmount() decimal.Decimal {
	return e.Credit
}

// Reverse creates the compensating cash row on top of the given balance
func (e *CashLedgerEntry) Reverse(at time.Time, previousBalance decimal.Decimal) *CashLedgerEntry {
	if at.IsZero() {
		at = time.Now()
	}
	return &CashLedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		CashAccountID:   e.CashAccountID,
		DocumentID:      e.DocumentID,
		EntryDate:       at,
		Debit:           e.Credit,
		Credit:          e.Debit,
		Balance:         previousBalance.Add(e.Credit).Sub(e.Debit).Round(2),
		ReversesEntryID: &e.ID,
		Description:     "Reversal",
	}
}
