package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// ProductRepository provides access to products
type ProductRepository interface {
	shared.Repository[Product]

	// FindByCode returns the product with the given unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByIDs loads the given products keyed by id
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)

	// FindPaginated returns products matching the filter with a total count
	FindPaginated(ctx context.Context, filter shared.Filter) (shared.Paginated[Product], error)

	// SaveWithLock persists the aggregate using its optimistic version,
	// returning shared.ErrConcurrencyConflict on a stale write.
	SaveWithLock(ctx context.Context, product *Product, expectedVersion int) error
}

// StockMoveRepository provides access to the immutable stock move ledger
type StockMoveRepository interface {
	// SaveAll inserts new move rows; moves are never updated
	SaveAll(ctx context.Context, moves []*StockMove) error

	// FindByDocument returns every move created by a document
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]StockMove, error)

	// FindByProduct returns the moves of a product ordered by (date, id)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMove, error)

	// OnHandAsOf sums the signed quantities of a product's moves up to
	// and including the given date. A nil date means all moves.
	OnHandAsOf(ctx context.Context, productID uuid.UUID, asOf *time.Time) (decimal.Decimal, error)
}
