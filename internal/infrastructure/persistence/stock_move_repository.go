package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradebooks/backend/internal/domain/inventory"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// GormStockMoveRepository implements inventory.StockMoveRepository using
// GORM. Stock moves are append-only; rows are never updated or deleted.
type GormStockMoveRepository struct {
	db *gorm.DB
}

// NewGormStockMoveRepository creates a new GormStockMoveRepository
func NewGormStockMoveRepository(db *gorm.DB) *GormStockMoveRepository {
	return &GormStockMoveRepository{db: db}
}

// SaveAll inserts new move rows
func (r *GormStockMoveRepository) SaveAll(ctx context.Context, moves []*inventory.StockMove) error {
	if len(moves) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&moves).Error
}

// FindByDocument returns every move created by a document
func (r *GormStockMoveRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]inventory.StockMove, error) {
	var moves []inventory.StockMove
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("move_date ASC, id ASC").
		Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}

// FindByProduct returns the moves of a product ordered by (date, id)
func (r *GormStockMoveRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMove, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("move_date ASC, id ASC")

	for key, value := range filter.Filters {
		switch key {
		case "date_from":
			query = query.Where("move_date >= ?", value)
		case "date_to":
			query = query.Where("move_date <= ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var moves []inventory.StockMove
	if err := query.Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}

// OnHandAsOf sums the signed quantities of a product's moves up to and
// including the given date. A nil date means all moves.
func (r *GormStockMoveRepository) OnHandAsOf(ctx context.Context, productID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&inventory.StockMove{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ?", productID)
	if asOf != nil {
		query = query.Where("move_date <= ?", *asOf)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Ensure GormStockMoveRepository implements inventory.StockMoveRepository
var _ inventory.StockMoveRepository = (*GormStockMoveRepository)(nil)
