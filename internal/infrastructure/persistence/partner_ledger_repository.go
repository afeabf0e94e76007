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

// GormPartnerLedgerRepository implements ledger.PartnerLedgerRepository
// using GORM. Entry rows are append-only except for their allocation
// state, which moves under the entry's optimistic version.
type GormPartnerLedgerRepository struct {
	db *gorm.DB
}

// NewGormPartnerLedgerRepository creates a new GormPartnerLedgerRepository
func NewGormPartnerLedgerRepository(db *gorm.DB) *GormPartnerLedgerRepository {
	return &GormPartnerLedgerRepository{db: db}
}

// FindByID finds a partner ledger entry by its ID
func (r *GormPartnerLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PartnerLedgerEntry, error) {
	var entry ledger.PartnerLedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindOpenByPartner returns every allocatable entry of a partner,
// oldest due date first.
func (r *GormPartnerLedgerRepository) FindOpenByPartner(ctx context.Context, partnerID uuid.UUID) ([]*ledger.PartnerLedgerEntry, error) {
	var entries []*ledger.PartnerLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND status <> ?", partnerID, ledger.EntryStatusClosed).
		Order("due_date ASC NULLS LAST, entry_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByPartner returns the entries of a partner in (date, id) order
func (r *GormPartnerLedgerRepository) FindByPartner(ctx context.Context, partnerID uuid.UUID, filter shared.Filter) ([]ledger.PartnerLedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("entry_date ASC, id ASC")

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
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

	var entries []ledger.PartnerLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDocument returns the entries created by a document
func (r *GormPartnerLedgerRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]ledger.PartnerLedgerEntry, error) {
	var entries []ledger.PartnerLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Save inserts a new entry row
func (r *GormPartnerLedgerRepository) Save(ctx context.Context, entry *ledger.PartnerLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// SaveWithLock persists allocation state changes under the entry's
// optimistic version.
func (r *GormPartnerLedgerRepository) SaveWithLock(ctx context.Context, entry *ledger.PartnerLedgerEntry, expectedVersion int) error {
	result := r.db.WithContext(ctx).Model(&ledger.PartnerLedgerEntry{}).
		Where("id = ? AND version = ?", entry.ID, expectedVersion).
		Updates(map[string]interface{}{
			"allocated_amount": entry.AllocatedAmount,
			"status":           entry.Status,
			"version":          entry.Version,
			"updated_at":       entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// BalanceOf returns the partner's debit minus credit total as of an
// optional date.
func (r *GormPartnerLedgerRepository) BalanceOf(ctx context.Context, partnerID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&ledger.PartnerLedgerEntry{}).
		Select("COALESCE(SUM(debit - credit), 0) as total").
		Where("partner_id = ?", partnerID)
	if asOf != nil {
		query = query.Where("entry_date <= ?", *asOf)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormPartnerLedgerRepository implements ledger.PartnerLedgerRepository
var _ ledger.PartnerLedgerRepository = (*GormPartnerLedgerRepository)(nil)
