package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/ledger"
)

// AllocateRequest matches one invoice entry against one payment entry
type AllocateRequest struct {
	InvoiceEntryID uuid.UUID       `json:"invoice_entry_id" binding:"required"`
	PaymentEntryID uuid.UUID       `json:"payment_entry_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
}

// AllocationResponse is the API representation of an allocation row
type AllocationResponse struct {
	ID             uuid.UUID       `json:"id"`
	PartnerID      uuid.UUID       `json:"partner_id"`
	InvoiceEntryID uuid.UUID       `json:"invoice_entry_id"`
	PaymentEntryID uuid.UUID       `json:"payment_entry_id"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewAllocationResponse maps an allocation row to its API shape
func NewAllocationResponse(row *ledger.PaymentAllocation) AllocationResponse {
	return AllocationResponse{
		ID:             row.ID,
		PartnerID:      row.PartnerID,
		InvoiceEntryID: row.InvoiceEntryID,
		PaymentEntryID: row.PaymentEntryID,
		Amount:         row.Amount,
		CreatedAt:      row.CreatedAt,
	}
}

// NewAllocationResponses maps a slice of allocation rows
func NewAllocationResponses(rows []*ledger.PaymentAllocation) []AllocationResponse {
	out := make([]AllocationResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, NewAllocationResponse(row))
	}
	return out
}

// PartnerEntryResponse is one partner ledger row with its outstanding amount
type PartnerEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	PartnerID       uuid.UUID       `json:"partner_id"`
	DocumentID      uuid.UUID       `json:"document_id"`
	DocumentType    string          `json:"document_type"`
	EntryDate       time.Time       `json:"entry_date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	OrigAmount      decimal.Decimal `json:"orig_amount"`
	Currency        string          `json:"currency"`
	FxRate          decimal.Decimal `json:"fx_rate"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Status          string          `json:"status"`
	Description     string          `json:"description,omitempty"`
	Version         int             `json:"version"`
}

// NewPartnerEntryResponse maps a partner ledger entry to its API shape
func NewPartnerEntryResponse(entry *ledger.PartnerLedgerEntry) PartnerEntryResponse {
	return PartnerEntryResponse{
		ID:              entry.ID,
		PartnerID:       entry.PartnerID,
		DocumentID:      entry.DocumentID,
		DocumentType:    entry.DocumentType.String(),
		EntryDate:       entry.EntryDate,
		DueDate:         entry.DueDate,
		Debit:           entry.Debit,
		Credit:          entry.Credit,
		OrigAmount:      entry.OrigAmount,
		Currency:        string(entry.Currency),
		FxRate:          entry.FxRate,
		AllocatedAmount: entry.AllocatedAmount,
		Outstanding:     entry.Outstanding(),
		Status:          string(entry.Status),
		Description:     entry.Description,
		Version:         entry.Version,
	}
}

// NewPartnerEntryResponses maps a slice of partner ledger entries
func NewPartnerEntryResponses(entries []*ledger.PartnerLedgerEntry) []PartnerEntryResponse {
	out := make([]PartnerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewPartnerEntryResponse(entry))
	}
	return out
}
