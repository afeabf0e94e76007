package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// newSQLiteDB opens an isolated in-memory database with the ledger schema
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&ledger.PartnerLedgerEntry{},
		&ledger.CashLedgerEntry{},
		&ledger.PaymentAllocation{},
	))
	return db
}

func TestGormCashLedgerRepository_RunningBalance(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormCashLedgerRepository(db)
	accountID := uuid.New()

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}
	save := func(entryDate time.Time, debit, credit, balance string) *ledger.CashLedgerEntry {
		entry, err := ledger.NewCashEntry(accountID, entryDate,
			decimal.RequireFromString(debit), decimal.RequireFromString(credit), decimal.Zero)
		require.NoError(t, err)
		entry.Balance = decimal.RequireFromString(balance)
		require.NoError(t, repo.Save(ctx, entry))
		return entry
	}

	save(day(1), "400.00", "0", "400.00")
	save(day(3), "0", "150.00", "250.00")
	latest := save(day(5), "100.00", "0", "350.00")

	t.Run("latest entry follows (date, id) order", func(t *testing.T) {
		found, err := repo.FindLatestByAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, latest.ID, found.ID)
		assert.True(t, found.Balance.Equal(decimal.RequireFromString("350.00")))
	})

	t.Run("empty account has no latest entry", func(t *testing.T) {
		_, err := repo.FindLatestByAccount(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("balance sums debit minus credit", func(t *testing.T) {
		balance, err := repo.BalanceOf(ctx, accountID, nil)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("350.00")))
	})

	t.Run("balance cuts off at a date", func(t *testing.T) {
		asOf := day(3)
		balance, err := repo.BalanceOf(ctx, accountID, &asOf)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("250.00")))
	})

	t.Run("ordered read and balance rewrite", func(t *testing.T) {
		entries, err := repo.FindAllByAccountOrdered(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		dirty := ledger.RecomputeBalances(entries)
		assert.Empty(t, dirty)

		entries[1].Balance = decimal.RequireFromString("999.99")
		require.NoError(t, repo.UpdateBalances(ctx, []*ledger.CashLedgerEntry{entries[1]}))

		reloaded, err := repo.FindByID(ctx, entries[1].ID)
		require.NoError(t, err)
		assert.True(t, reloaded.Balance.Equal(decimal.RequireFromString("999.99")))
	})
}

func TestGormPartnerLedgerRepository_OpenEntries(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormPartnerLedgerRepository(db)
	partnerID := uuid.New()

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}
	invoice := func(entryDate time.Time, due *time.Time, amount string) *ledger.PartnerLedgerEntry {
		entry, err := ledger.NewDebitEntry(partnerID, uuid.New(), document.TypeSalesInvoice,
			entryDate, decimal.RequireFromString(amount))
		require.NoError(t, err)
		if due != nil {
			entry.DueDate = due
		}
		require.NoError(t, repo.Save(ctx, entry))
		return entry
	}

	dueLate := day(20)
	dueEarly := day(10)
	noDue := invoice(day(1), nil, "100.00")
	late := invoice(day(2), &dueLate, "200.00")
	early := invoice(day(3), &dueEarly, "300.00")

	closed, err := ledger.NewDebitEntry(partnerID, uuid.New(), document.TypeSalesInvoice, day(4), decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	closed.Close()
	require.NoError(t, repo.Save(ctx, closed))

	t.Run("open entries come oldest due first with nulls last", func(t *testing.T) {
		entries, err := repo.FindOpenByPartner(ctx, partnerID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, early.ID, entries[0].ID)
		assert.Equal(t, late.ID, entries[1].ID)
		assert.Equal(t, noDue.ID, entries[2].ID)
	})

	t.Run("stale version write conflicts", func(t *testing.T) {
		early.IncrementVersion()
		err := repo.SaveWithLock(ctx, early, early.Version+5)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("partner balance is debit minus credit", func(t *testing.T) {
		balance, err := repo.BalanceOf(ctx, partnerID, nil)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("650.00")))
	})
}
