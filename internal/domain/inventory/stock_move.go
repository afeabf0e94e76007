package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// StockMove is an immutable ledger row recording one signed stock
// movement. Positive quantity is inbound, negative is outbound. Moves
// are never edited after creation; corrections and cancellations are
// new opposite-signed moves.
type StockMove struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	MoveDate       time.Time       `gorm:"not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	// UnitCost is the valuation cost per base unit at the time of the
	// move. Set on every costed move, nil for pure quantity corrections.
	UnitCost       *decimal.Decimal `gorm:"type:decimal(18,6)"`
	DocumentID     *uuid.UUID       `gorm:"type:uuid;index"`
	DocumentLineID *uuid.UUID       `gorm:"type:uuid"`
	SourceLocation *uuid.UUID       `gorm:"type:uuid"`
	DestLocation   *uuid.UUID       `gorm:"type:uuid"`
	// ReversesMoveID links a cancellation move back to the move it undoes
	ReversesMoveID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for StockMove
func (StockMove) TableName() string {
	return "stock_moves"
}

// NewStockMove creates a signed stock move row
func NewStockMove(productID uuid.UUID, moveDate time.Time, quantity decimal.Decimal, unitCost *decimal.Decimal) (*StockMove, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Move quantity cannot be zero")
	}
	if unitCost != nil && unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if moveDate.IsZero() {
		moveDate = time.Now()
	}
	return &StockMove{
		ID:        uuid.New(),
		ProductID: productID,
		MoveDate:  moveDate,
		Quantity:  quantity.Round(3),
		UnitCost:  unitCost,
		CreatedAt: time.Now(),
	}, nil
}

// WithDocument links the move to its originating document and line
func (m *StockMove) WithDocument(documentID, lineID uuid.UUID) *StockMove {
	m.DocumentID = &documentID
	m.DocumentLineID = &lineID
	return m
}

// WithLocations sets the source and destination locations
func (m *StockMove) WithLocations(source, dest *uuid.UUID) *StockMove {
	m.SourceLocation = source
	m.DestLocation = dest
	return m
}

// IsInbound reports whether the move increases stock
func (m *StockMove) IsInbound() bool {
	return m.Quantity.IsPositive()
}

// Reverse creates the compensating move: same magnitude, opposite sign,
// same cost, dated at the cancellation time.
func (m *StockMove) Reverse(at time.Time) *StockMove {
	if at.IsZero() {
		at = time.Now()
	}
	return &StockMove{
		ID:             uuid.New(),
		ProductID:      m.ProductID,
		MoveDate:       at,
		Quantity:       m.Quantity.Neg(),
		UnitCost:       m.UnitCost,
		DocumentID:     m.DocumentID,
		DocumentLineID: m.DocumentLineID,
		SourceLocation: m.DestLocation,
		DestLocation:   m.SourceLocation,
		ReversesMoveID: &m.ID,
		CreatedAt:      time.Now(),
	}
}
