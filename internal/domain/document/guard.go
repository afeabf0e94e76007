package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// StockView supplies current on-hand quantities to the guard. The
// orchestrator passes a transaction-scoped implementation so the check
// holds under the same isolation as the posting writes.
type StockView interface {
	OnHand(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}

// LedgerRow is the debit/credit shape the guard verifies before any
// ledger row is persisted.
type LedgerRow interface {
	DebitAmount() decimal.Decimal
	CreditAmount() decimal.Decimal
}

// Guard gates every transition into APPROVED/POSTED. Checks run in a
// fixed order and fail fast on the first violation. The orchestrator
// runs the full check again inside the commit transaction.
type Guard struct{}

// NewGuard creates a posting guard
func NewGuard() *Guard {
	return &Guard{}
}

// CheckDocument validates line presence and quantities
func (g *Guard) CheckDocument(doc *Document) error {
	if len(doc.Lines) == 0 {
		return shared.ErrEmptyDocument
	}
	for _, line := range doc.Lines {
		if doc.DocType == TypeStockCount {
			if line.CountedQty == nil || line.CountedQty.IsNegative() {
				return shared.ErrInvalidQuantity
			}
			continue
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.ErrInvalidQuantity
		}
	}
	return nil
}

// CheckStock verifies that outbound postings keep on-hand non-negative
// for every affected product. Inbound-only and non-stock types pass
// trivially; stock counts cannot go negative because counted quantities
// are validated non-negative.
func (g *Guard) CheckStock(ctx context.Context, doc *Document, stock StockView) error {
	direction := doc.DocType.StockDirection()
	if direction != StockOut && direction != StockBoth {
		return nil
	}

	outbound := make(map[uuid.UUID]decimal.Decimal)
	order := make([]uuid.UUID, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		if _, seen := outbound[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		outbound[line.ProductID] = outbound[line.ProductID].Add(line.BaseQuantity())
	}

	for _, productID := range order {
		onHand, err := stock.OnHand(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to read on-hand for product %s: %w", productID, err)
		}
		if onHand.Sub(outbound[productID]).IsNegative() {
			return shared.ErrNegativeStock
		}
	}
	return nil
}

// CheckLedgerRows verifies the debit XOR credit invariant on every row
// about to be persisted.
func CheckLedgerRows(rows []LedgerRow) error {
	for _, row := range rows {
		debitSet := row.DebitAmount().IsPositive()
		creditSet := row.CreditAmount().IsPositive()
		if debitSet == creditSet {
			return shared.ErrLedgerImbalance
		}
		if row.DebitAmount().IsNegative() || row.CreditAmount().IsNegative() {
			return shared.ErrLedgerImbalance
		}
	}
	return nil
}

// Check runs the full pre-posting validation sequence
func (g *Guard) Check(ctx context.Context, doc *Document, stock StockView) error {
	if err := g.CheckDocument(doc); err != nil {
		return err
	}
	return g.CheckStock(ctx, doc, stock)
}
