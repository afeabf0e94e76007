package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/application/cash"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// SubmitCashRequest submits a receipt or payment in one step
type SubmitCashRequest struct {
	PartnerID     uuid.UUID       `json:"partner_id" binding:"required"`
	CashAccountID uuid.UUID       `json:"cash_account_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" binding:"required,currency"`
	FxRate        decimal.Decimal `json:"fx_rate"`
	IssueDate     time.Time       `json:"issue_date" binding:"required"`
	ExternalID    *string         `json:"external_id,omitempty" binding:"omitempty,max=100"`
	Remark        string          `json:"remark" binding:"omitempty,max=500"`
}

// ToCommand converts the request to an application command
func (r SubmitCashRequest) ToCommand() cash.SubmitCommand {
	fxRate := r.FxRate
	if fxRate.IsZero() {
		fxRate = decimal.NewFromInt(1)
	}
	return cash.SubmitCommand{
		PartnerID:     r.PartnerID,
		CashAccountID: r.CashAccountID,
		Amount:        r.Amount,
		Currency:      valueobject.Currency(r.Currency),
		FxRate:        fxRate,
		IssueDate:     r.IssueDate,
		ExternalID:    r.ExternalID,
		Remark:        r.Remark,
	}
}

// CashSubmitResponse reports the posted cash document and the new
// running balance of the account.
type CashSubmitResponse struct {
	Document      DocumentResponse `json:"document"`
	Balance       decimal.Decimal  `json:"balance"`
	AlreadyPosted bool             `json:"already_posted"`
}

// NewCashSubmitResponse maps a submit result to its API shape
func NewCashSubmitResponse(result *cash.SubmitResult) CashSubmitResponse {
	return CashSubmitResponse{
		Document:      NewDocumentResponse(result.Document),
		Balance:       result.Balance,
		AlreadyPosted: result.AlreadyPosted,
	}
}

// CashEntryResponse is one row of a cash account statement
type CashEntryResponse struct {
	ID              uuid.UUID       `json:"id"`
	CashAccountID   uuid.UUID       `json:"cash_account_id"`
	DocumentID      *uuid.UUID      `json:"document_id,omitempty"`
	EntryDate       time.Time       `json:"entry_date"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Balance         decimal.Decimal `json:"balance"`
	ReversesEntryID *uuid.UUID      `json:"reverses_entry_id,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// NewCashEntryResponses maps statement rows to their API shape
func NewCashEntryResponses(entries []ledger.CashLedgerEntry) []CashEntryResponse {
	out := make([]CashEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, CashEntryResponse{
			ID:              entry.ID,
			CashAccountID:   entry.CashAccountID,
			DocumentID:      entry.DocumentID,
			EntryDate:       entry.EntryDate,
			Debit:           entry.Debit,
			Credit:          entry.Credit,
			Balance:         entry.Balance,
			ReversesEntryID: entry.ReversesEntryID,
			Description:     entry.Description,
		})
	}
	return out
}

// BalanceResponse reports an account or partner balance
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
	AsOf    *time.Time      `json:"as_of,omitempty"`
}

// RecomputeResponse reports a running balance recomputation
type RecomputeResponse struct {
	RowsChanged int `json:"rows_changed"`
}
