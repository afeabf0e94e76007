package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/inventory"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/partner"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos posting.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// DocumentRepo returns the document repository scoped to the current transaction.
func (r *gormTransactionalRepositories) DocumentRepo() document.Repository {
	return NewGormDocumentRepository(r.tx)
}

// SequenceRepo returns the number sequence repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SequenceRepo() document.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// StockMoveRepo returns the stock move repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockMoveRepo() inventory.StockMoveRepository {
	return NewGormStockMoveRepository(r.tx)
}

// PartnerLedgerRepo returns the partner ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PartnerLedgerRepo() ledger.PartnerLedgerRepository {
	return NewGormPartnerLedgerRepository(r.tx)
}

// CashLedgerRepo returns the cash ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CashLedgerRepo() ledger.CashLedgerRepository {
	return NewGormCashLedgerRepository(r.tx)
}

// AllocationRepo returns the payment allocation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AllocationRepo() ledger.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

// PartnerRepo returns the partner repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PartnerRepo() partner.Repository {
	return NewGormPartnerRepository(r.tx)
}

// CashAccountRepo returns the cash account repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CashAccountRepo() partner.CashAccountRepository {
	return NewGormCashAccountRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ posting.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ posting.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
