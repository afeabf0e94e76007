package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// PartnerLedgerRepository provides access to partner ledger entries
type PartnerLedgerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PartnerLedgerEntry, error)

	// FindOpenByPartner returns every allocatable entry of a partner
	FindOpenByPartner(ctx context.Context, partnerID uuid.UUID) ([]*PartnerLedgerEntry, error)

	// FindByPartner returns the entries of a partner ordered by (date, id)
	FindByPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]PartnerLedgerEntry, error)

	// FindByDocument returns the entries created by a document
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]PartnerLedgerEntry, error)

	// Save inserts a new entry row
	Save(ctx context.Context, entry *PartnerLedgerEntry) error

	// SaveWithLock persists allocation state changes under the entry's
	// optimistic version, returning shared.ErrConcurrencyConflict on a
	// stale write.
	SaveWithLock(ctx context.Context, entry *PartnerLedgerEntry, expectedVersion int) error

	// BalanceOf returns the partner's debit minus credit total as of an
	// optional date. A nil date means all entries.
	BalanceOf(ctx context.Context, partnerID uuid.UUID, asOf *time.Time) (decimal.Decimal, error)
}

// CashLedgerRepository provides access to cash ledger entries
type CashLedgerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CashLedgerEntry, error)

	// FindLatestByAccount returns the newest entry by (date, id) order,
	// or shared.ErrNotFound for an account with no entries. Callers hold
	// the account's row lock while reading so balance writes serialize.
	FindLatestByAccount(ctx context.Context, accountID uuid.UUID) (*CashLedgerEntry, error)

	// FindByAccount returns the account's entries in (date, id) order
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]CashLedgerEntry, error)

	// FindByDocument returns the cash entries created by a document
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]CashLedgerEntry, error)

	// FindAllByAccountOrdered returns every entry of the account in
	// strict (date, id) order for balance recomputation.
	FindAllByAccountOrdered(ctx context.Context, accountID uuid.UUID) ([]*CashLedgerEntry, error)

	// Save inserts a new entry row
	Save(ctx context.Context, entry *CashLedgerEntry) error

	// UpdateBalances rewrites the balance column of the given entries
	UpdateBalances(ctx context.Context, entries []*CashLedgerEntry) error

	// BalanceOf returns the account balance as of an optional date
	BalanceOf(ctx context.Context, accountID uuid.UUID, asOf *time.Time) (decimal.Decimal, error)
}

// AllocationRepository provides access to payment allocation rows
type AllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentAllocation, error)

	// FindByEntry returns the allocations touching a ledger entry on
	// either side
	FindByEntry(ctx context.Context, entryID uuid.UUID) ([]PaymentAllocation, error)

	// FindByPartner returns a partner's allocation rows
	FindByPartner(ctx context.Context, partnerID uuid.UUID) ([]PaymentAllocation, error)

	// SaveAll inserts new allocation rows
	SaveAll(ctx context.Context, allocations []*PaymentAllocation) error

	// Delete removes an allocation row
	Delete(ctx context.Context, id uuid.UUID) error
}
