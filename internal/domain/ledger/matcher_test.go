package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared"
)

func invoiceEntry(t *testing.T, partnerID uuid.UUID, amount int64, due *time.Time) *PartnerLedgerEntry {
	t.Helper()
	entry, err := NewDebitEntry(partnerID, uuid.New(), document.TypeSalesInvoice, time.Now(), decimal.NewFromInt(amount))
	require.NoError(t, err)
	if due != nil {
		entry.WithDueDate(*due)
	}
	return entry
}

func receiptEntry(t *testing.T, partnerID uuid.UUID, amount int64) *PartnerLedgerEntry {
	t.Helper()
	entry, err := NewCreditEntry(partnerID, uuid.New(), document.TypeReceipt, time.Now(), decimal.NewFromInt(amount))
	require.NoError(t, err)
	return entry
}

func purchaseInvoiceEntry(t *testing.T, partnerID uuid.UUID, amount int64) *PartnerLedgerEntry {
	t.Helper()
	entry, err := NewCreditEntry(partnerID, uuid.New(), document.TypePurchaseInvoice, time.Now(), decimal.NewFromInt(amount))
	require.NoError(t, err)
	return entry
}

func paymentEntry(t *testing.T, partnerID uuid.UUID, amount int64) *PartnerLedgerEntry {
	t.Helper()
	entry, err := NewDebitEntry(partnerID, uuid.New(), document.TypePayment, time.Now(), decimal.NewFromInt(amount))
	require.NoError(t, err)
	return entry
}

func datePtr(t time.Time) *time.Time { return &t }

func TestAutoAllocate(t *testing.T) {
	matcher := NewAllocationMatcher()
	partnerID := uuid.New()

	t.Run("oldest due invoice settled first", func(t *testing.T) {
		older := invoiceEntry(t, partnerID, 500, datePtr(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)))
		newer := invoiceEntry(t, partnerID, 500, datePtr(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))
		payment := receiptEntry(t, partnerID, 600)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{newer, older, payment})
		require.NoError(t, err)
		require.Len(t, allocations, 2)

		assert.Equal(t, older.ID, allocations[0].InvoiceEntryID)
		assert.Equal(t, "500.00", allocations[0].Amount.StringFixed(2))
		assert.Equal(t, newer.ID, allocations[1].InvoiceEntryID)
		assert.Equal(t, "100.00", allocations[1].Amount.StringFixed(2))

		assert.Equal(t, EntryStatusClosed, older.Status)
		assert.Equal(t, EntryStatusAllocated, newer.Status)
		assert.Equal(t, EntryStatusClosed, payment.Status)
	})

	t.Run("nil due dates sort last", func(t *testing.T) {
		undated := invoiceEntry(t, partnerID, 300, nil)
		dated := invoiceEntry(t, partnerID, 300, datePtr(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
		payment := receiptEntry(t, partnerID, 300)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{undated, dated, payment})
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, dated.ID, allocations[0].InvoiceEntryID)
		assert.Equal(t, EntryStatusOpen, undated.Status)
	})

	t.Run("stops when payment capacity is exhausted", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 1000, nil)
		payment := receiptEntry(t, partnerID, 250)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{invoice, payment})
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, "250.00", allocations[0].Amount.StringFixed(2))
		assert.Equal(t, "750.00", invoice.Outstanding().StringFixed(2))
		assert.Equal(t, EntryStatusAllocated, invoice.Status)
		assert.Equal(t, EntryStatusClosed, payment.Status)
	})

	t.Run("multiple payments drain in date order", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 900, nil)
		first := receiptEntry(t, partnerID, 400)
		first.EntryDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		second := receiptEntry(t, partnerID, 600)
		second.EntryDate = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{invoice, second, first})
		require.NoError(t, err)
		require.Len(t, allocations, 2)
		assert.Equal(t, first.ID, allocations[0].PaymentEntryID)
		assert.Equal(t, "400.00", allocations[0].Amount.StringFixed(2))
		assert.Equal(t, "500.00", allocations[1].Amount.StringFixed(2))
		assert.Equal(t, EntryStatusClosed, invoice.Status)
		assert.Equal(t, "100.00", second.Outstanding().StringFixed(2))
	})

	t.Run("closed entries are skipped", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 100, nil)
		require.NoError(t, invoice.ApplyAllocation(decimal.NewFromInt(100)))
		payment := receiptEntry(t, partnerID, 100)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{invoice, payment})
		require.NoError(t, err)
		assert.Empty(t, allocations)
	})

	t.Run("no counterpart yields no allocations", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 100, nil)
		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{invoice})
		require.NoError(t, err)
		assert.Empty(t, allocations)
	})

	t.Run("same-polarity entries never match", func(t *testing.T) {
		purchase := purchaseInvoiceEntry(t, partnerID, 100)
		receipt := receiptEntry(t, partnerID, 50)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{purchase, receipt})
		require.NoError(t, err)
		assert.Empty(t, allocations)
		assert.Equal(t, EntryStatusOpen, purchase.Status)
		assert.Equal(t, EntryStatusOpen, receipt.Status)
	})

	t.Run("payments settle credit invoices", func(t *testing.T) {
		purchase := purchaseInvoiceEntry(t, partnerID, 300)
		payment := paymentEntry(t, partnerID, 300)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{purchase, payment})
		require.NoError(t, err)
		require.Len(t, allocations, 1)
		assert.Equal(t, purchase.ID, allocations[0].InvoiceEntryID)
		assert.Equal(t, payment.ID, allocations[0].PaymentEntryID)
		assert.Equal(t, EntryStatusClosed, purchase.Status)
		assert.Equal(t, EntryStatusClosed, payment.Status)
	})

	t.Run("mixed partner matches within polarity only", func(t *testing.T) {
		sales := invoiceEntry(t, partnerID, 400, nil)
		purchase := purchaseInvoiceEntry(t, partnerID, 250)
		receipt := receiptEntry(t, partnerID, 400)
		payment := paymentEntry(t, partnerID, 100)

		allocations, err := matcher.AutoAllocate([]*PartnerLedgerEntry{sales, purchase, receipt, payment})
		require.NoError(t, err)
		require.Len(t, allocations, 2)

		assert.Equal(t, sales.ID, allocations[0].InvoiceEntryID)
		assert.Equal(t, receipt.ID, allocations[0].PaymentEntryID)
		assert.Equal(t, "400.00", allocations[0].Amount.StringFixed(2))
		assert.Equal(t, purchase.ID, allocations[1].InvoiceEntryID)
		assert.Equal(t, payment.ID, allocations[1].PaymentEntryID)
		assert.Equal(t, "100.00", allocations[1].Amount.StringFixed(2))
		assert.Equal(t, "150.00", purchase.Outstanding().StringFixed(2))
	})
}

func TestManualAllocate(t *testing.T) {
	matcher := NewAllocationMatcher()
	partnerID := uuid.New()

	t.Run("allocates a chosen pair", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 1000, nil)
		payment := receiptEntry(t, partnerID, 400)

		row, err := matcher.Allocate(invoice, payment, decimal.NewFromInt(400))
		require.NoError(t, err)
		assert.Equal(t, "400.00", row.Amount.StringFixed(2))
		assert.Equal(t, "600.00", invoice.Outstanding().StringFixed(2))
		assert.Equal(t, EntryStatusClosed, payment.Status)
	})

	t.Run("rejects amounts above either capacity", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 100, nil)
		payment := receiptEntry(t, partnerID, 400)
		_, err := matcher.Allocate(invoice, payment, decimal.NewFromInt(200))
		assert.ErrorIs(t, err, shared.ErrOverAllocation)
	})

	t.Run("rejects cross-partner pairs", func(t *testing.T) {
		invoice := invoiceEntry(t, uuid.New(), 100, nil)
		payment := receiptEntry(t, uuid.New(), 100)
		_, err := matcher.Allocate(invoice, payment, decimal.NewFromInt(50))
		assert.Error(t, err)
	})

	t.Run("rejects two invoice-side entries", func(t *testing.T) {
		a := invoiceEntry(t, partnerID, 100, nil)
		b := invoiceEntry(t, partnerID, 100, nil)
		_, err := matcher.Allocate(a, b, decimal.NewFromInt(50))
		assert.Error(t, err)
	})

	t.Run("rejects a same-polarity pair", func(t *testing.T) {
		purchase := purchaseInvoiceEntry(t, partnerID, 100)
		receipt := receiptEntry(t, partnerID, 100)
		_, err := matcher.Allocate(purchase, receipt, decimal.NewFromInt(50))
		assert.Error(t, err)
		assert.Equal(t, EntryStatusOpen, purchase.Status)
		assert.Equal(t, EntryStatusOpen, receipt.Status)
	})
}

func TestDeallocate(t *testing.T) {
	matcher := NewAllocationMatcher()
	partnerID := uuid.New()

	t.Run("reopens both entries", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 400, nil)
		payment := receiptEntry(t, partnerID, 400)
		row, err := matcher.Allocate(invoice, payment, decimal.NewFromInt(400))
		require.NoError(t, err)

		require.NoError(t, matcher.Deallocate(row, invoice, payment))
		assert.Equal(t, EntryStatusOpen, invoice.Status)
		assert.Equal(t, EntryStatusOpen, payment.Status)
		assert.Equal(t, "400.00", invoice.Outstanding().StringFixed(2))
	})

	t.Run("rejects mismatched entries", func(t *testing.T) {
		invoice := invoiceEntry(t, partnerID, 400, nil)
		payment := receiptEntry(t, partnerID, 400)
		row, err := matcher.Allocate(invoice, payment, decimal.NewFromInt(100))
		require.NoError(t, err)

		other := invoiceEntry(t, partnerID, 100, nil)
		assert.Error(t, matcher.Deallocate(row, other, payment))
	})
}
