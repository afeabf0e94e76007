package posting

import (
	"context"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/inventory"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the posting
// repositories. When a function executes within a scope, every
// repository operation joins the same database transaction and commits
// or rolls back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to every repository a
// posting transition touches, all sharing one underlying transaction.
type TransactionalRepositories interface {
	// DocumentRepo returns the document repository scoped to the transaction
	DocumentRepo() document.Repository
	// SequenceRepo returns the number sequence repository
	SequenceRepo() document.SequenceRepository
	// ProductRepo returns the product repository
	ProductRepo() inventory.ProductRepository
	// StockMoveRepo returns the stock move repository
	StockMoveRepo() inventory.StockMoveRepository
	// PartnerLedgerRepo returns the partner ledger repository
	PartnerLedgerRepo() ledger.PartnerLedgerRepository
	// CashLedgerRepo returns the cash ledger repository
	CashLedgerRepo() ledger.CashLedgerRepository
	// AllocationRepo returns the payment allocation repository
	AllocationRepo() ledger.AllocationRepository
	// PartnerRepo returns the partner repository
	PartnerRepo() partner.Repository
	// CashAccountRepo returns the cash account repository
	CashAccountRepo() partner.CashAccountRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Used in tests with in-memory repositories.
type NoOpTransactionScope struct {
	documents     document.Repository
	sequences     document.SequenceRepository
	products      inventory.ProductRepository
	stockMoves    inventory.StockMoveRepository
	partnerLedger ledger.PartnerLedgerRepository
	cashLedger    ledger.CashLedgerRepository
	allocations   ledger.AllocationRepository
	partners      partner.Repository
	cashAccounts  partner.CashAccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	documents document.Repository,
	sequences document.SequenceRepository,
	products inventory.ProductRepository,
	stockMoves inventory.StockMoveRepository,
	partnerLedger ledger.PartnerLedgerRepository,
	cashLedger ledger.CashLedgerRepository,
	allocations ledger.AllocationRepository,
	partners partner.Repository,
	cashAccounts partner.CashAccountRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		documents:     documents,
		sequences:     sequences,
		products:      products,
		stockMoves:    stockMoves,
		partnerLedger: partnerLedger,
		cashLedger:    cashLedger,
		allocations:   allocations,
		partners:      partners,
		cashAccounts:  cashAccounts,
	}
}

// Execute runs the function without transaction isolation
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DocumentRepo returns the document repository
func (s *NoOpTransactionScope) DocumentRepo() document.Repository { return s.documents }

// SequenceRepo returns the sequence repository
func (s *NoOpTransactionScope) SequenceRepo() document.SequenceRepository { return s.sequences }

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository { return s.products }

// StockMoveRepo returns the stock move repository
func (s *NoOpTransactionScope) StockMoveRepo() inventory.StockMoveRepository { return s.stockMoves }

// PartnerLedgerRepo returns the partner ledger repository
func (s *NoOpTransactionScope) PartnerLedgerRepo() ledger.PartnerLedgerRepository {
	return s.partnerLedger
}

// CashLedgerRepo returns the cash ledger repository
func (s *NoOpTransactionScope) CashLedgerRepo() ledger.CashLedgerRepository { return s.cashLedger }

// AllocationRepo returns the allocation repository
func (s *NoOpTransactionScope) AllocationRepo() ledger.AllocationRepository { return s.allocations }

// PartnerRepo returns the partner repository
func (s *NoOpTransactionScope) PartnerRepo() partner.Repository { return s.partners }

// CashAccountRepo returns the cash account repository
func (s *NoOpTransactionScope) CashAccountRepo() partner.CashAccountRepository {
	return s.cashAccounts
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
