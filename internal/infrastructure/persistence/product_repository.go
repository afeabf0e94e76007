package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradebooks/backend/internal/domain/inventory"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	var product inventory.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCode finds a product by its unique code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*inventory.Product, error) {
	var product inventory.Product
	if err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the given products keyed by id
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*inventory.Product, error) {
	result := make(map[uuid.UUID]*inventory.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []inventory.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Product, error) {
	var products []inventory.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.Product{}), filter)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindPaginated returns products matching the filter with a total count
func (r *GormProductRepository) FindPaginated(ctx context.Context, filter shared.Filter) (shared.Paginated[inventory.Product], error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.Product]{}, err
	}

	products, err := r.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.Product]{}, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = shared.DefaultFilter().PageSize
	}
	return shared.NewPaginated(products, total, page, pageSize), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(r.db.WithContext(ctx).Model(&inventory.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(product).Error
}

// SaveWithLock persists stock and cost state under the product's
// optimistic version.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *inventory.Product, expectedVersion int) error {
	result := r.db.WithContext(ctx).Model(&inventory.Product{}).
		Where("id = ? AND version = ?", product.ID, expectedVersion).
		Updates(map[string]interface{}{
			"code":         product.Code,
			"name":         product.Name,
			"base_uom":     product.BaseUom,
			"on_hand":      product.OnHand,
			"reserved_qty": product.ReservedQty,
			"current_cost": product.CurrentCost,
			"sales_price":  product.SalesPrice,
			"vat_rate":     product.VatRate,
			"active":       product.Active,
			"version":      product.Version,
			"updated_at":   product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies conditions, ordering and pagination to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "code")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyConditions applies filter conditions without ordering or pagination
func (r *GormProductRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "code":
			query = query.Where("code = ?", value)
		}
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormProductRepository implements inventory.ProductRepository
var _ inventory.ProductRepository = (*GormProductRepository)(nil)
