package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// PostingService derives ledger rows from a document being posted.
// It is pure: the orchestrator supplies the previous cash balance and
// persists the rows inside the posting transaction.
type PostingService struct{}

// NewPostingService creates a ledger posting service
func NewPostingService() *PostingService {
	return &PostingService{}
}

// PartnerEntryForDocument builds the single partner ledger row a
// ledger-affecting document creates:
//
//	sales invoice    -> partner debit of the base gross
//	purchase invoice -> partner credit
//	receipt          -> partner credit (the partner paid us)
//	payment          -> partner debit  (we paid the partner)
//
// Types without ledger effect return nil.
func (s *PostingService) PartnerEntryForDocument(doc *document.Document) (*PartnerLedgerEntry, error) {
	if !doc.DocType.AffectsPartnerLedger() {
		return nil, nil
	}
	if doc.PartnerID == nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Ledger-affecting document requires a partner")
	}
	amount := doc.BaseGross
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Document gross must be positive to post")
	}

	var entry *PartnerLedgerEntry
	var err error
	switch doc.DocType {
	case document.TypeSalesInvoice, document.TypePayment:
		entry, err = NewDebitEntry(*doc.PartnerID, doc.ID, doc.DocType, doc.IssueDate, amount)
	case document.TypePurchaseInvoice, document.TypeReceipt:
		entry, err = NewCreditEntry(*doc.PartnerID, doc.ID, doc.DocType, doc.IssueDate, amount)
	}
	if err != nil {
		return nil, err
	}
	entry.WithOrigin(doc.GrossTotal, doc.Currency, doc.FxRate)
	entry.Description = doc.Number
	if doc.DueDate != nil {
		entry.WithDueDate(*doc.DueDate)
	}
	return entry, nil
}

// CashEntryForDocument builds the cash row for a receipt or payment on
// top of the account's previous running balance:
//
//	receipt -> cash debit  (money in)
//	payment -> cash credit (money out)
//
// The caller reads previousBalance from the latest (date, id) row for
// the account while holding the account's row lock.
func (s *PostingService) CashEntryForDocument(doc *document.Document, previousBalance decimal.Decimal) (*CashLedgerEntry, error) {
	if !doc.DocType.IsCashDocument() {
		return nil, nil
	}
	if doc.CashAccountID == nil {
		return nil, shared.NewDomainError("INVALID_CASH_ACCOUNT", "Cash document requires a cash account")
	}
	amount := doc.BaseGross
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Document gross must be positive to post")
	}

	debit, credit := decimal.Zero, decimal.Zero
	if doc.DocType == document.TypeReceipt {
		debit = amount
	} else {
		credit = amount
	}
	entry, err := NewCashEntry(*doc.CashAccountID, doc.IssueDate, debit, credit, previousBalance)
	if err != nil {
		return nil, err
	}
	entry.WithDocument(doc.ID)
	entry.Description = doc.Number
	return entry, nil
}

// ReversePartnerEntries builds compensating rows for a cancellation
func (s *PostingService) ReversePartnerEntries(entries []PartnerLedgerEntry, at time.Time) []*PartnerLedgerEntry {
	reversals := make([]*PartnerLedgerEntry, 0, len(entries))
	for idx := range entries {
		reversals = append(reversals, entries[idx].Reverse(at))
	}
	return reversals
}

// RecomputeBalances rewrites the running balance chain over entries
// already sorted in strict (date, id) order, returning the entries
// whose balance changed. Used after a back-dated insert.
func RecomputeBalances(entries []*CashLedgerEntry) []*CashLedgerEntry {
	changed := make([]*CashLedgerEntry, 0)
	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.Debit).Sub(entry.Credit).Round(2)
		if !entry.Balance.Equal(balance) {
			entry.Balance = balance
			entry.Touch()
			changed = append(changed, entry)
		}
	}
	return changed
}
