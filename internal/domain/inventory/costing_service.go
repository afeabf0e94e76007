package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// CostingService turns a document being posted into stock moves and
// applies their effect to the product aggregates. It is a pure domain
// service: the orchestrator loads every referenced product beforehand
// and persists products and moves in the posting transaction.
type CostingService struct{}

// NewCostingService creates a costing service
func NewCostingService() *CostingService {
	return &CostingService{}
}

// PostDocument produces the stock moves for the document type and
// mutates the products' on-hand and average cost accordingly. Types
// without stock effect return no moves.
func (s *CostingService) PostDocument(doc *document.Document, products map[uuid.UUID]*Product) ([]*StockMove, error) {
	switch doc.DocType.StockDirection() {
	case document.StockNone:
		return nil, nil
	case document.StockIn:
		return s.postInbound(doc, products)
	case document.StockOut:
		return s.postOutbound(doc, products)
	case document.StockBoth:
		return s.postTransfer(doc, products)
	case document.StockCountDiff:
		return s.postCount(doc, products)
	}
	return nil, shared.NewDomainError("INVALID_DOC_TYPE", fmt.Sprintf("No stock handling for type %s", doc.DocType))
}

// InboundUnitCost derives the valuation cost of an inbound line:
// line net divided by the base quantity, rounded to 6 decimal places.
func InboundUnitCost(lineNet, baseQty decimal.Decimal) (decimal.Decimal, error) {
	if baseQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.ErrInvalidQuantity
	}
	return lineNet.Div(baseQty).Round(6), nil
}

func (s *CostingService) postInbound(doc *document.Document, products map[uuid.UUID]*Product) ([]*StockMove, error) {
	moves := make([]*StockMove, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		product, err := s.product(products, line.ProductID)
		if err != nil {
			return nil, err
		}
		baseQty := line.BaseQuantity()
		unitCost, err := InboundUnitCost(line.LineNet, baseQty)
		if err != nil {
			return nil, err
		}
		if err := product.ApplyInbound(baseQty, unitCost); err != nil {
			return nil, err
		}
		move, err := NewStockMove(line.ProductID, doc.IssueDate, baseQty, &unitCost)
		if err != nil {
			return nil, err
		}
		move.WithDocument(doc.ID, line.ID).WithLocations(nil, doc.WarehouseID)
		moves = append(moves, move)
	}
	return moves, nil
}

func (s *CostingService) postOutbound(doc *document.Document, products map[uuid.UUID]*Product) ([]*StockMove, error) {
	moves := make([]*StockMove, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		product, err := s.product(products, line.ProductID)
		if err != nil {
			return nil, err
		}
		baseQty := line.BaseQuantity()
		cost := product.CurrentCost
		if err := product.ApplyOutbound(baseQty); err != nil {
			return nil, err
		}
		move, err := NewStockMove(line.ProductID, doc.IssueDate, baseQty.Neg(), &cost)
		if err != nil {
			return nil, err
		}
		move.WithDocument(doc.ID, line.ID).WithLocations(doc.WarehouseID, nil)
		moves = append(moves, move)
	}
	return moves, nil
}

// postTransfer emits an out move at the source location and an in move
// at the destination per line, both valued at the current average cost,
// leaving net on-hand and the average unchanged.
func (s *CostingService) postTransfer(doc *document.Document, products map[uuid.UUID]*Product) ([]*StockMove, error) {
	moves := make([]*StockMove, 0, 2*len(doc.Lines))
	for _, line := range doc.Lines {
		product, err := s.product(products, line.ProductID)
		if err != nil {
			return nil, err
		}
		baseQty := line.BaseQuantity()
		cost := product.CurrentCost
		if err := product.ApplyOutbound(baseQty); err != nil {
			return nil, err
		}
		if err := product.ApplyInbound(baseQty, cost); err != nil {
			return nil, err
		}

		out, err := NewStockMove(line.ProductID, doc.IssueDate, baseQty.Neg(), &cost)
		if err != nil {
			return nil, err
		}
		out.WithDocument(doc.ID, line.ID).WithLocations(line.SourceLocation, nil)

		in, err := NewStockMove(line.ProductID, doc.IssueDate, baseQty, &cost)
		if err != nil {
			return nil, err
		}
		in.WithDocument(doc.ID, line.ID).WithLocations(nil, line.DestLocation)

		moves = append(moves, out, in)
	}
	return moves, nil
}

// postCount emits the signed difference between the counted quantity
// and the current on-hand. A zero difference emits no move.
func (s *CostingService) postCount(doc *document.Document, products map[uuid.UUID]*Product) ([]*StockMove, error) {
	moves := make([]*StockMove, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		if line.CountedQty == nil {
			return nil, shared.ErrInvalidQuantity
		}
		product, err := s.product(products, line.ProductID)
		if err != nil {
			return nil, err
		}
		diff := line.CountedQty.Sub(product.OnHand).Round(3)
		if diff.IsZero() {
			continue
		}
		cost := product.CurrentCost
		if diff.IsPositive() {
			if err := product.ApplyInbound(diff, cost); err != nil {
				return nil, err
			}
		} else {
			if err := product.ApplyOutbound(diff.Neg()); err != nil {
				return nil, err
			}
		}
		move, err := NewStockMove(line.ProductID, doc.IssueDate, diff, &cost)
		if err != nil {
			return nil, err
		}
		move.WithDocument(doc.ID, line.ID).WithLocations(doc.WarehouseID, doc.WarehouseID)
		moves = append(moves, move)
	}
	return moves, nil
}

// ReverseMoves produces compensating moves for a cancelled document and
// applies their effect to the products. Reversing an outbound restocks
// at the cost the goods left with; reversing an inbound consumes at the
// current average, which never changes on outbound.
func (s *CostingService) ReverseMoves(originals []StockMove, products map[uuid.UUID]*Product, at time.Time) ([]*StockMove, error) {
	reversals := make([]*StockMove, 0, len(originals))
	for idx := range originals {
		original := &originals[idx]
		product, err := s.product(products, original.ProductID)
		if err != nil {
			return nil, err
		}
		reversal := original.Reverse(at)
		if reversal.Quantity.IsPositive() {
			cost := product.CurrentCost
			if reversal.UnitCost != nil {
				cost = *reversal.UnitCost
			}
			if err := product.ApplyInbound(reversal.Quantity, cost); err != nil {
				return nil, err
			}
		} else {
			if err := product.ApplyOutbound(reversal.Quantity.Neg()); err != nil {
				return nil, err
			}
		}
		reversals = append(reversals, reversal)
	}
	return reversals, nil
}

func (s *CostingService) product(products map[uuid.UUID]*Product, id uuid.UUID) (*Product, error) {
	product, ok := products[id]
	if !ok || product == nil {
		return nil, shared.ErrNotFound
	}
	return product, nil
}
