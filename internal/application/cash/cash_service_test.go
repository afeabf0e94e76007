package cash

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/partner"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakePoster struct {
	lastCommand posting.CreateDraftCommand
	result      *posting.PostingResult
	err         error
}

func (f *fakePoster) SaveAndApprove(_ context.Context, cmd posting.CreateDraftCommand) (*posting.PostingResult, error) {
	f.lastCommand = cmd
	return f.result, f.err
}

type memoryCashLedger struct {
	ledger.CashLedgerRepository
	entries []*ledger.CashLedgerEntry
	updated int
}

func (m *memoryCashLedger) sorted(accountID uuid.UUID) []*ledger.CashLedgerEntry {
	out := make([]*ledger.CashLedgerEntry, 0)
	for _, entry := range m.entries {
		if entry.CashAccountID == accountID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (m *memoryCashLedger) FindAllByAccountOrdered(_ context.Context, accountID uuid.UUID) ([]*ledger.CashLedgerEntry, error) {
	return m.sorted(accountID), nil
}

func (m *memoryCashLedger) UpdateBalances(_ context.Context, entries []*ledger.CashLedgerEntry) error {
	m.updated = len(entries)
	return nil
}

func (m *memoryCashLedger) BalanceOf(_ context.Context, accountID uuid.UUID, _ *time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, entry := range m.entries {
		if entry.CashAccountID == accountID {
			total = total.Add(entry.Debit).Sub(entry.Credit)
		}
	}
	return total, nil
}

type memoryCashAccounts struct {
	partner.CashAccountRepository
	accounts map[uuid.UUID]*partner.CashAccount
}

func (m *memoryCashAccounts) LockByID(_ context.Context, id uuid.UUID) (*partner.CashAccount, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

type stubRepos struct {
	posting.TransactionalRepositories
	cashLedger   *memoryCashLedger
	cashAccounts *memoryCashAccounts
}

func (s stubRepos) CashLedgerRepo() ledger.CashLedgerRepository    { return s.cashLedger }
func (s stubRepos) CashAccountRepo() partner.CashAccountRepository { return s.cashAccounts }

type stubScope struct {
	repos stubRepos
}

func (s stubScope) Execute(_ context.Context, fn func(posting.TransactionalRepositories) error) error {
	return fn(s.repos)
}

type cashFixture struct {
	service    *Service
	poster     *fakePoster
	cashLedger *memoryCashLedger
	accountID  uuid.UUID
}

func newCashFixture(t *testing.T) *cashFixture {
	t.Helper()

	account, err := partner.NewCashAccount("CASH-01", "Main Till", partner.CashKindCash, valueobject.TRY)
	require.NoError(t, err)

	cashLedger := &memoryCashLedger{}
	accounts := &memoryCashAccounts{accounts: map[uuid.UUID]*partner.CashAccount{account.ID: account}}
	poster := &fakePoster{}

	scope := stubScope{repos: stubRepos{cashLedger: cashLedger, cashAccounts: accounts}}
	return &cashFixture{
		service:    NewService(scope, poster, zap.NewNop()),
		poster:     poster,
		cashLedger: cashLedger,
		accountID:  account.ID,
	}
}

func (f *cashFixture) seedEntry(t *testing.T, day int, debit, credit, balance string) *ledger.CashLedgerEntry {
	t.Helper()
	entry, err := ledger.NewCashEntry(f.accountID,
		time.Date(2026, 4, day, 0, 0, 0, 0, time.UTC), dec(debit), dec(credit), decimal.Zero)
	require.NoError(t, err)
	entry.Balance = dec(balance)
	f.cashLedger.entries = append(f.cashLedger.entries, entry)
	return entry
}

func TestServiceSubmit(t *testing.T) {
	ctx := context.Background()
	partnerID := uuid.New()

	t.Run("receipt maps to a receipt document with the cash amount", func(t *testing.T) {
		f := newCashFixture(t)
		doc, err := document.NewDocument(document.TypeReceipt, time.Now(), valueobject.TRY, decimal.Zero)
		require.NoError(t, err)
		f.poster.result = &posting.PostingResult{Document: doc}
		f.seedEntry(t, 1, "400", "0", "400")

		result, err := f.service.SubmitReceipt(ctx, SubmitCommand{
			PartnerID:     partnerID,
			CashAccountID: f.accountID,
			Amount:        dec("400"),
			Currency:      valueobject.TRY,
			Remark:        "invoice settlement",
		})
		require.NoError(t, err)

		assert.Equal(t, document.TypeReceipt, f.poster.lastCommand.DocType)
		require.NotNil(t, f.poster.lastCommand.CashAmount)
		assert.True(t, f.poster.lastCommand.CashAmount.Equal(dec("400")))
		assert.Equal(t, partnerID, *f.poster.lastCommand.PartnerID)
		assert.Equal(t, f.accountID, *f.poster.lastCommand.CashAccountID)
		assert.True(t, result.Balance.Equal(dec("400")))
	})

	t.Run("payment maps to a payment document", func(t *testing.T) {
		f := newCashFixture(t)
		doc, err := document.NewDocument(document.TypePayment, time.Now(), valueobject.TRY, decimal.Zero)
		require.NoError(t, err)
		f.poster.result = &posting.PostingResult{Document: doc}

		_, err = f.service.SubmitPayment(ctx, SubmitCommand{
			PartnerID:     partnerID,
			CashAccountID: f.accountID,
			Amount:        dec("150"),
			Currency:      valueobject.TRY,
		})
		require.NoError(t, err)
		assert.Equal(t, document.TypePayment, f.poster.lastCommand.DocType)
	})

	t.Run("rejects a non-positive amount before posting", func(t *testing.T) {
		f := newCashFixture(t)

		_, err := f.service.SubmitReceipt(ctx, SubmitCommand{
			PartnerID:     partnerID,
			CashAccountID: f.accountID,
			Amount:        decimal.Zero,
			Currency:      valueobject.TRY,
		})
		require.Error(t, err)
		assert.Empty(t, f.poster.lastCommand.DocType)
	})
}

func TestServiceRecomputeBalances(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites stale balances after a back-dated insert", func(t *testing.T) {
		f := newCashFixture(t)
		f.seedEntry(t, 10, "100", "0", "100")
		f.seedEntry(t, 20, "50", "0", "150")
		// back-dated entry landed between the two with no chain rewrite
		f.seedEntry(t, 15, "0", "30", "0")

		changed, err := f.service.RecomputeBalances(ctx, f.accountID)
		require.NoError(t, err)
		assert.Equal(t, 2, changed)

		ordered := f.cashLedger.sorted(f.accountID)
		require.Len(t, ordered, 3)
		assert.True(t, ordered[0].Balance.Equal(dec("100")))
		assert.True(t, ordered[1].Balance.Equal(dec("70")))
		assert.True(t, ordered[2].Balance.Equal(dec("120")))
	})

	t.Run("leaves a consistent chain untouched", func(t *testing.T) {
		f := newCashFixture(t)
		f.seedEntry(t, 10, "100", "0", "100")
		f.seedEntry(t, 11, "0", "40", "60")

		changed, err := f.service.RecomputeBalances(ctx, f.accountID)
		require.NoError(t, err)
		assert.Zero(t, changed)
		assert.Zero(t, f.cashLedger.updated)
	})

	t.Run("fails for an unknown account", func(t *testing.T) {
		f := newCashFixture(t)

		_, err := f.service.RecomputeBalances(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
