package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// AllocationMatcher matches open payment-side capacity against open
// invoice-side entries, oldest due date first.
type AllocationMatcher struct{}

// NewAllocationMatcher creates an allocation matcher
func NewAllocationMatcher() *AllocationMatcher {
	return &AllocationMatcher{}
}

// sortInvoiceSide orders entries ascending by due date with nil due
// dates last, tie-broken by entry date then id for determinism.
func sortInvoiceSide(entries []*PartnerLedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			// fall through to tie-break
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		return a.ID.String() < b.ID.String()
	})
}

// AutoAllocate greedily matches the open entries of one partner:
// payment capacity is consumed against invoices of opposite polarity in
// oldest-due-first order with alloc = min(remainingPayment,
// remainingInvoice). Receipts (credits) settle debit invoices and
// payments (debits) settle credit invoices; a same-polarity pair moves
// no money and is never matched. Entries are mutated in place; the
// caller persists entries and allocation rows in one transaction.
func (m *AllocationMatcher) AutoAllocate(entries []*PartnerLedgerEntry) ([]*PaymentAllocation, error) {
	debitInvoices := make([]*PartnerLedgerEntry, 0)
	creditInvoices := make([]*PartnerLedgerEntry, 0)
	debitPayments := make([]*PartnerLedgerEntry, 0)
	creditPayments := make([]*PartnerLedgerEntry, 0)
	for _, entry := range entries {
		if !entry.IsAllocatable() {
			continue
		}
		switch {
		case entry.IsInvoiceSide() && entry.IsDebit():
			debitInvoices = append(debitInvoices, entry)
		case entry.IsInvoiceSide():
			creditInvoices = append(creditInvoices, entry)
		case entry.IsPaymentSide() && entry.IsDebit():
			debitPayments = append(debitPayments, entry)
		case entry.IsPaymentSide():
			creditPayments = append(creditPayments, entry)
		}
	}

	allocations, err := m.matchGroup(debitInvoices, creditPayments)
	if err != nil {
		return nil, err
	}
	mirror, err := m.matchGroup(creditInvoices, debitPayments)
	if err != nil {
		return nil, err
	}
	return append(allocations, mirror...), nil
}

// matchGroup runs the greedy match over one polarity pairing. Matching
// stops when either side is exhausted.
func (m *AllocationMatcher) matchGroup(invoices, payments []*PartnerLedgerEntry) ([]*PaymentAllocation, error) {
	sortInvoiceSide(invoices)
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].EntryDate.Equal(payments[j].EntryDate) {
			return payments[i].EntryDate.Before(payments[j].EntryDate)
		}
		return payments[i].ID.String() < payments[j].ID.String()
	})

	allocations := make([]*PaymentAllocation, 0)
	invoiceIdx := 0
	for _, payment := range payments {
		for invoiceIdx < len(invoices) && payment.Outstanding().IsPositive() {
			invoice := invoices[invoiceIdx]
			if !invoice.Outstanding().IsPositive() {
				invoiceIdx++
				continue
			}
			alloc := decimal.Min(payment.Outstanding(), invoice.Outstanding())
			row, err := NewPaymentAllocation(payment.PartnerID, invoice.ID, payment.ID, alloc)
			if err != nil {
				return nil, err
			}
			if err := invoice.ApplyAllocation(alloc); err != nil {
				return nil, err
			}
			if err := payment.ApplyAllocation(alloc); err != nil {
				return nil, err
			}
			allocations = append(allocations, row)
		}
		if invoiceIdx >= len(invoices) {
			break
		}
	}
	return allocations, nil
}

// Allocate matches a caller-chosen invoice/payment pair under the same
// capacity invariant as auto allocation.
func (m *AllocationMatcher) Allocate(invoice, payment *PartnerLedgerEntry, amount decimal.Decimal) (*PaymentAllocation, error) {
	if invoice.PartnerID != payment.PartnerID {
		return nil, shared.NewDomainError("INVALID_ENTRY", "Entries belong to different partners")
	}
	if !invoice.IsInvoiceSide() || !payment.IsPaymentSide() {
		return nil, shared.NewDomainError("INVALID_ENTRY", "Allocation requires an invoice entry and a payment entry")
	}
	if invoice.IsDebit() == payment.IsDebit() {
		return nil, shared.NewDomainError("INVALID_ENTRY", "Allocation requires entries of opposite polarity")
	}
	if amount.GreaterThan(invoice.Outstanding()) || amount.GreaterThan(payment.Outstanding()) {
		return nil, shared.ErrOverAllocation
	}
	row, err := NewPaymentAllocation(payment.PartnerID, invoice.ID, payment.ID, amount)
	if err != nil {
		return nil, err
	}
	if err := invoice.ApplyAllocation(amount); err != nil {
		return nil, err
	}
	if err := payment.ApplyAllocation(amount); err != nil {
		return nil, err
	}
	return row, nil
}

// Deallocate undoes one allocation row, reopening both entries
func (m *AllocationMatcher) Deallocate(allocation *PaymentAllocation, invoice, payment *PartnerLedgerEntry) error {
	if allocation.InvoiceEntryID != invoice.ID || allocation.PaymentEntryID != payment.ID {
		return shared.NewDomainError("INVALID_ENTRY", "Allocation does not reference these entries")
	}
	if err := invoice.RemoveAllocation(allocation.Amount); err != nil {
		return err
	}
	return payment.RemoveAllocation(allocation.Amount)
}
