package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// GormCashLedgerRepository implements ledger.CashLedgerRepository using
// GORM. Rows carry a running balance maintained in strict (date, id)
// order; callers serialize writes per account through the account's
// row lock.
type GormCashLedgerRepository struct {
	db *gorm.DB
}

// NewGormCashLedgerRepository creates a new GormCashLedgerRepository
func NewGormCashLedgerRepository(db *gorm.DB) *GormCashLedgerRepository {
	return &GormCashLedgerRepository{db: db}
}

// FindByID finds a cash ledger entry by its ID
func (r *GormCashLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.CashLedgerEntry, error) {
	var entry ledger.CashLedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindLatestByAccount returns the newest entry by (date, id) order
func (r *GormCashLedgerRepository) FindLatestByAccount(ctx context.Context, accountID uuid.UUID) (*ledger.CashLedgerEntry, error) {
	var entry ledger.CashLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("cash_account_id = ?", accountID).
		Order("entry_date DESC, id DESC").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByAccount returns the account's entries in (date, id) order
func (r *GormCashLedgerRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]ledger.CashLedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("cash_account_id = ?", accountID).
		Order("entry_date ASC, id ASC")

	for key, value := range filter.Filters {
		switch key {
		case "date_from":
			query = query.Where("entry_date >= ?", value)
		case "date_to":
			query = query.Where("entry_date <= ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var entries []ledger.CashLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDocument returns the cash entries created by a document
func (r *GormCashLedgerRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]ledger.CashLedgerEntry, error) {
	var entries []ledger.CashLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("entry_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAllByAccountOrdered returns every entry of the account in strict
// (date, id) order for balance recomputation.
func (r *GormCashLedgerRepository) FindAllByAccountOrdered(ctx context.Context, accountID uuid.UUID) ([]*ledger.CashLedgerEntry, error) {
	var entries []*ledger.CashLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("cash_account_id = ?", accountID).
		Order("entry_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Save inserts a new entry row
func (r *GormCashLedgerRepository) Save(ctx context.Context, entry *ledger.CashLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// UpdateBalances rewrites the balance column of the given entries
func (r *GormCashLedgerRepository) UpdateBalances(ctx context.Context, entries []*ledger.CashLedgerEntry) error {
	for _, entry := range entries {
		if err := r.db.WithContext(ctx).Model(&ledger.CashLedgerEntry{}).
			Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"balance":    entry.Balance,
				"updated_at": entry.UpdatedAt,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}

// BalanceOf returns the account balance as of an optional date
func (r *GormCashLedgerRepository) BalanceOf(ctx context.Context, accountID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&ledger.CashLedgerEntry{}).
		Select("COALESCE(SUM(debit - credit), 0) as total").
		Where("cash_account_id = ?", accountID)
	if asOf != nil {
		query = query.Where("entry_date <= ?", *asOf)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormCashLedgerRepository implements ledger.CashLedgerRepository
var _ ledger.CashLedgerRepository = (*GormCashLedgerRepository)(nil)
