package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// Product is the aggregate root for a stocked item. OnHand and
// CurrentCost are denormalized posting state: they are mutated only
// inside the same transaction that writes the stock moves, under the
// product's optimistic version, so concurrent postings for the same
// product conflict instead of losing an update.
type Product struct {
	shared.BaseAggregateRoot
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	BaseUom     string          `gorm:"type:varchar(20);not null;default:'EA'"`
	OnHand      decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	ReservedQty decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	// CurrentCost is the moving weighted average cost per base unit
	CurrentCost decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	SalesPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	VatRate     int             `gorm:"not null;default:20"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name, baseUom string) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if baseUom == "" {
		baseUom = "EA"
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		BaseUom:           baseUom,
		OnHand:            decimal.Zero,
		ReservedQty:       decimal.Zero,
		CurrentCost:       decimal.Zero,
		SalesPrice:        decimal.Zero,
		VatRate:           20,
		Active:            true,
	}, nil
}

// Available returns on-hand minus reserved quantity
func (p *Product) Available() decimal.Decimal {
	return p.OnHand.Sub(p.ReservedQty)
}

// ApplyInbound increases on-hand and recalculates the moving weighted
// average cost:
//
//	newCost = (onHand*oldCost + inQty*unitCost) / (onHand + inQty)
//
// rounded to 6 decimal places. The first receipt into an empty product
// takes the incoming unit cost directly.
func (p *Product) ApplyInbound(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	if p.OnHand.LessThanOrEqual(decimal.Zero) {
		p.CurrentCost = unitCost.Round(6)
	} else {
		totalValue := p.OnHand.Mul(p.CurrentCost).Add(quantity.Mul(unitCost))
		p.CurrentCost = totalValue.Div(p.OnHand.Add(quantity)).Round(6)
	}
	p.OnHand = p.OnHand.Add(quantity).Round(3)
	p.Touch()
	return nil
}

// ApplyOutbound decreases on-hand. Outbound consumption is valued at
// the current average cost and never changes it.
func (p *Product) ApplyOutbound(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if p.OnHand.Sub(quantity).IsNegative() {
		return shared.ErrNegativeStock
	}
	p.OnHand = p.OnHand.Sub(quantity).Round(3)
	p.Touch()
	return nil
}

// Reserve holds available stock for an approved sales order
func (p *Product) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if p.Available().LessThan(quantity) {
		return shared.ErrNegativeStock
	}
	p.ReservedQty = p.ReservedQty.Add(quantity).Round(3)
	p.Touch()
	return nil
}

// Release returns reserved stock to availability, clamping at zero so
// a double release cannot drive the reservation negative.
func (p *Product) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	p.ReservedQty = p.ReservedQty.Sub(quantity)
	if p.ReservedQty.IsNegative() {
		p.ReservedQty = decimal.Zero
	}
	p.Touch()
	return nil
}


// StockValue returns on-hand valued at the current average cost
func (p *Product) StockValue() decimal.Decimal {
	return p.OnHand.Mul(p.CurrentCost).Round(2)
}
