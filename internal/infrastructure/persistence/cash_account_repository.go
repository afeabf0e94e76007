package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradebooks/backend/internal/domain/partner"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// GormCashAccountRepository implements partner.CashAccountRepository using GORM
type GormCashAccountRepository struct {
	db *gorm.DB
}

// NewGormCashAccountRepository creates a new GormCashAccountRepository
func NewGormCashAccountRepository(db *gorm.DB) *GormCashAccountRepository {
	return &GormCashAccountRepository{db: db}
}

// FindByID finds a cash account by its ID
func (r *GormCashAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.CashAccount, error) {
	var account partner.CashAccount
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByCode finds a cash account by its unique code
func (r *GormCashAccountRepository) FindByCode(ctx context.Context, code string) (*partner.CashAccount, error) {
	var account partner.CashAccount
	if err := r.db.WithContext(ctx).First(&account, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// LockByID loads the account row under FOR UPDATE so concurrent balance
// writes for the account serialize.
func (r *GormCashAccountRepository) LockByID(ctx context.Context, id uuid.UUID) (*partner.CashAccount, error) {
	var account partner.CashAccount
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAll finds cash accounts matching the filter
func (r *GormCashAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.CashAccount, error) {
	query := r.db.WithContext(ctx).Model(&partner.CashAccount{}).Order("code ASC")

	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var accounts []partner.CashAccount
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Count counts cash accounts matching the filter
func (r *GormCashAccountRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&partner.CashAccount{})
	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a cash account
func (r *GormCashAccountRepository) Save(ctx context.Context, account *partner.CashAccount) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(account).Error
}

// Delete deletes a cash account
func (r *GormCashAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.CashAccount{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCashAccountRepository implements partner.CashAccountRepository
var _ partner.CashAccountRepository = (*GormCashAccountRepository)(nil)
