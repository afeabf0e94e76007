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

// GormPartnerRepository implements partner.Repository using GORM
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewGormPartnerRepository creates a new GormPartnerRepository
func NewGormPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// FindByID finds a partner by its ID
func (r *GormPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	var p partner.Partner
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByCode finds a partner by its unique code
func (r *GormPartnerRepository) FindByCode(ctx context.Context, code string) (*partner.Partner, error) {
	var p partner.Partner
	if err := r.db.WithContext(ctx).First(&p, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAll finds partners matching the filter
func (r *GormPartnerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Partner, error) {
	var partners []partner.Partner
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Partner{}), filter)
	if err := query.Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

// FindPaginated returns partners matching the filter with a total count
func (r *GormPartnerRepository) FindPaginated(ctx context.Context, filter shared.Filter) (shared.Paginated[partner.Partner], error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[partner.Partner]{}, err
	}

	partners, err := r.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[partner.Partner]{}, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	return shared.NewPaginated(partners, total, page, pageSize), nil
}

// Count counts partners matching the filter
func (r *GormPartnerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&partner.Partner{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a partner
func (r *GormPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(p).Error
}

// Delete deletes a partner
func (r *GormPartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Partner{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies conditions, ordering and pagination to the query
func (r *GormPartnerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PartnerSortFields, "code")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyConditions applies filter conditions without ordering or pagination
func (r *GormPartnerRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormPartnerRepository implements partner.Repository
var _ partner.Repository = (*GormPartnerRepository)(nil)
