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

func debitEntry(t *testing.T, amount int64) *PartnerLedgerEntry {
	t.Helper()
	entry, err := NewDebitEntry(uuid.New(), uuid.New(), document.TypeSalesInvoice, time.Now(), decimal.NewFromInt(amount))
	require.NoError(t, err)
	return entry
}

func TestNewPartnerEntry(t *testing.T) {
	t.Run("debit entry", func(t *testing.T) {
		entry := debitEntry(t, 1200)
		assert.Equal(t, "1200.00", entry.Debit.StringFixed(2))
		assert.True(t, entry.Credit.IsZero())
		assert.Equal(t, EntryStatusOpen, entry.Status)
		assert.Equal(t, "1200.00", entry.Amount().StringFixed(2))
		assert.Equal(t, "1200.00", entry.Outstanding().StringFixed(2))
	})

	t.Run("credit entry", func(t *testing.T) {
		entry, err := NewCreditEntry(uuid.New(), uuid.New(), document.TypeReceipt, time.Now(), decimal.NewFromInt(400))
		require.NoError(t, err)
		assert.True(t, entry.Debit.IsZero())
		assert.Equal(t, "400.00", entry.Credit.StringFixed(2))
	})

	t.Run("zero amount violates xor", func(t *testing.T) {
		_, err := NewDebitEntry(uuid.New(), uuid.New(), document.TypeSalesInvoice, time.Now(), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrLedgerImbalance)
	})

	t.Run("negative amount violates xor", func(t *testing.T) {
		_, err := NewCreditEntry(uuid.New(), uuid.New(), document.TypeReceipt, time.Now(), decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, shared.ErrLedgerImbalance)
	})
}

func TestApplyAllocation(t *testing.T) {
	t.Run("partial allocation marks ALLOCATED", func(t *testing.T) {
		entry := debitEntry(t, 1000)
		require.NoError(t, entry.ApplyAllocation(decimal.NewFromInt(400)))
		assert.Equal(t, EntryStatusAllocated, entry.Status)
		assert.Equal(t, "600.00", entry.Outstanding().StringFixed(2))
		assert.True(t, entry.IsAllocatable())
	})

	t.Run("full allocation closes the entry", func(t *testing.T) {
		entry := debitEntry(t, 1000)
		require.NoError(t, entry.ApplyAllocation(decimal.NewFromInt(1000)))
		assert.Equal(t, EntryStatusClosed, entry.Status)
		assert.False(t, entry.IsAllocatable())
	})

	t.Run("allocation can never exceed the amount", func(t *testing.T) {
		entry := debitEntry(t, 1000)
		require.NoError(t, entry.ApplyAllocation(decimal.NewFromInt(900)))
		assert.ErrorIs(t, entry.ApplyAllocation(decimal.NewFromInt(200)), shared.ErrOverAllocation)
		assert.Equal(t, "900.00", entry.AllocatedAmount.StringFixed(2))
	})

	t.Run("non-positive allocation rejected", func(t *testing.T) {
		entry := debitEntry(t, 1000)
		assert.Error(t, entry.ApplyAllocation(decimal.Zero))
	})
}

func TestRemoveAllocation(t *testing.T) {
	t.Run("reopens a closed entry", func(t *testing.T) {
		entry := debitEntry(t, 500)
		require.NoError(t, entry.ApplyAllocation(decimal.NewFromInt(500)))
		require.NoError(t, entry.RemoveAllocation(decimal.NewFromInt(500)))
		assert.Equal(t, EntryStatusOpen, entry.Status)
		assert.True(t, entry.AllocatedAmount.IsZero())
	})

	t.Run("partial removal keeps ALLOCATED", func(t *testing.T) {
		entry := debitEntry(t, 500)
		require.NoError(t, entry.ApplyAllocation(decimal.NewFromInt(500)))
		require.NoError(t, entry.RemoveAllocation(decimal.NewFromInt(200)))
		assert.Equal(t, EntryStatusAllocated, entry.Status)
	})

	t.Run("cannot remove more than allocated", func(t *testing.T) {
		entry := debitEntry(t, 500)
		require.NoError(t, entry.ApplyAllocation(decimal.NewFromInt(100)))
		assert.Error(t, entry.RemoveAllocation(decimal.NewFromInt(200)))
	})
}

func TestPartnerEntryReverse(t *testing.T) {
	entry := debitEntry(t, 1200)
	at := time.Now()
	reversal := entry.Reverse(at)

	assert.True(t, reversal.Debit.IsZero())
	assert.Equal(t, "1200.00", reversal.Credit.StringFixed(2))
	assert.Equal(t, EntryStatusClosed, reversal.Status)
	assert.False(t, reversal.IsAllocatable(), "reversals never participate in allocation")
	require.NotNil(t, reversal.ReversesEntryID)
	assert.Equal(t, entry.ID, *reversal.ReversesEntryID)
	assert.Equal(t, entry.PartnerID, reversal.PartnerID)
}

func TestNewCashEntry(t *testing.T) {
	t.Run("first entry starts from zero", func(t *testing.T) {
		entry, err := NewCashEntry(uuid.New(), time.Now(), decimal.NewFromInt(400), decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "400.00", entry.Balance.StringFixed(2))
	})

	t.Run("balance accumulates debit minus credit", func(t *testing.T) {
		accountID := uuid.New()
		first, err := NewCashEntry(accountID, time.Now(), decimal.NewFromInt(400), decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		second, err := NewCashEntry(accountID, time.Now(), decimal.Zero, decimal.NewFromInt(150), first.Balance)
		require.NoError(t, err)
		assert.Equal(t, "250.00", second.Balance.StringFixed(2))
	})

	t.Run("xor enforced", func(t *testing.T) {
		_, err := NewCashEntry(uuid.New(), time.Now(), decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrLedgerImbalance)

		_, err = NewCashEntry(uuid.New(), time.Now(), decimal.Zero, decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrLedgerImbalance)
	})
}

func TestCashEntryReverse(t *testing.T) {
	entry, err := NewCashEntry(uuid.New(), time.Now(), decimal.NewFromInt(400), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	reversal := entry.Reverse(time.Now(), entry.Balance)
	assert.True(t, reversal.Debit.IsZero())
	assert.Equal(t, "400.00", reversal.Credit.StringFixed(2))
	assert.Equal(t, "0.00", reversal.Balance.StringFixed(2))
	require.NotNil(t, reversal.ReversesEntryID)
	assert.Equal(t, entry.ID, *reversal.ReversesEntryID)
}

func TestRecomputeBalances(t *testing.T) {
	accountID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mk := func(day int, debit, credit int64) *CashLedgerEntry {
		entry, err := NewCashEntry(accountID, base.AddDate(0, 0, day), decimal.NewFromInt(debit), decimal.NewFromInt(credit), decimal.Zero)
		require.NoError(t, err)
		return entry
	}

	// entries created independently carry balances that ignore each
	// other; recomputation rebuilds the chain in order
	entries := []*CashLedgerEntry{
		mk(1, 100, 0),
		mk(2, 0, 30),
		mk(3, 50, 0),
	}
	changed := RecomputeBalances(entries)

	assert.Equal(t, "100.00", entries[0].Balance.StringFixed(2))
	assert.Equal(t, "70.00", entries[1].Balance.StringFixed(2))
	assert.Equal(t, "120.00", entries[2].Balance.StringFixed(2))
	assert.Len(t, changed, 2, "first entry already had the right balance")

	// idempotent on a consistent chain
	assert.Empty(t, RecomputeBalances(entries))
}
