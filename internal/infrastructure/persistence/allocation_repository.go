package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// GormAllocationRepository implements ledger.AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation row by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentAllocation, error) {
	var row ledger.PaymentAllocation
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByEntry returns the allocations touching a ledger entry on either side
func (r *GormAllocationRepository) FindByEntry(ctx context.Context, entryID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var rows []ledger.PaymentAllocation
	if err := r.db.WithContext(ctx).
		Where("invoice_entry_id = ? OR payment_entry_id = ?", entryID, entryID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByPartner returns a partner's allocation rows
func (r *GormAllocationRepository) FindByPartner(ctx context.Context, partnerID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var rows []ledger.PaymentAllocation
	if err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveAll inserts new allocation rows
func (r *GormAllocationRepository) SaveAll(ctx context.Context, allocations []*ledger.PaymentAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&allocations).Error
}

// Delete removes an allocation row
func (r *GormAllocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ledger.PaymentAllocation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAllocationRepository implements ledger.AllocationRepository
var _ ledger.AllocationRepository = (*GormAllocationRepository)(nil)
