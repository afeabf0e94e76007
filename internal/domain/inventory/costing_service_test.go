package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

func draftDoc(t *testing.T, docType document.DocumentType) *document.Document {
	t.Helper()
	doc, err := document.NewDocument(docType, time.Now(), valueobject.TRY, decimal.Zero)
	require.NoError(t, err)
	return doc
}

func stockedProduct(t *testing.T, onHand, cost int64) *Product {
	t.Helper()
	p := newProduct(t)
	if onHand > 0 {
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(onHand), decimal.NewFromInt(cost)))
	}
	return p
}

func TestInboundUnitCost(t *testing.T) {
	t.Run("line net over base quantity at 6dp", func(t *testing.T) {
		cost, err := InboundUnitCost(decimal.NewFromInt(100), decimal.NewFromInt(3))
		require.NoError(t, err)
		assert.Equal(t, "33.333333", cost.StringFixed(6))
	})

	t.Run("zero base quantity rejected", func(t *testing.T) {
		_, err := InboundUnitCost(decimal.NewFromInt(100), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})
}

func TestPostDocumentInbound(t *testing.T) {
	svc := NewCostingService()

	t.Run("purchase invoice receives stock at line cost", func(t *testing.T) {
		p := newProduct(t)
		doc := draftDoc(t, document.TypePurchaseInvoice)
		require.NoError(t, doc.SetPartner(uuid.New()))
		_, err := doc.AddLine(p.ID, "Widget", "EA",
			decimal.NewFromInt(10), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)

		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)
		require.Len(t, moves, 1)

		assert.Equal(t, "10.000", moves[0].Quantity.StringFixed(3))
		require.NotNil(t, moves[0].UnitCost)
		assert.Equal(t, "100.000000", moves[0].UnitCost.StringFixed(6))
		assert.Equal(t, "10.000", p.OnHand.StringFixed(3))
		assert.Equal(t, "100.000000", p.CurrentCost.StringFixed(6))
		assert.Equal(t, doc.ID, *moves[0].DocumentID)
	})

	t.Run("uom coefficient converts to base units", func(t *testing.T) {
		p := newProduct(t)
		doc := draftDoc(t, document.TypeGoodsReceivedNote)
		require.NoError(t, doc.SetPartner(uuid.New()))
		// 2 boxes of 12 at 120 per box: 24 base units at 10 each
		_, err := doc.AddLine(p.ID, "Widget", "BOX",
			decimal.NewFromInt(2), decimal.NewFromInt(12),
			decimal.NewFromInt(120), decimal.Zero, 20)
		require.NoError(t, err)

		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)
		require.Len(t, moves, 1)
		assert.Equal(t, "24.000", moves[0].Quantity.StringFixed(3))
		assert.Equal(t, "10.000000", p.CurrentCost.StringFixed(6))
	})

	t.Run("missing product fails", func(t *testing.T) {
		doc := draftDoc(t, document.TypePurchaseInvoice)
		require.NoError(t, doc.SetPartner(uuid.New()))
		_, err := doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.NewFromInt(1), decimal.NewFromInt(1),
			decimal.NewFromInt(1), decimal.Zero, 20)
		require.NoError(t, err)

		_, err = svc.PostDocument(doc, map[uuid.UUID]*Product{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPostDocumentOutbound(t *testing.T) {
	svc := NewCostingService()

	t.Run("sales invoice consumes at current average cost", func(t *testing.T) {
		p := stockedProduct(t, 20, 15)
		doc := draftDoc(t, document.TypeSalesInvoice)
		require.NoError(t, doc.SetPartner(uuid.New()))
		_, err := doc.AddLine(p.ID, "Widget", "EA",
			decimal.NewFromInt(10), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)

		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)
		require.Len(t, moves, 1)

		assert.Equal(t, "-10.000", moves[0].Quantity.StringFixed(3))
		require.NotNil(t, moves[0].UnitCost)
		assert.Equal(t, "15.000000", moves[0].UnitCost.StringFixed(6))
		assert.Equal(t, "10.000", p.OnHand.StringFixed(3))
		assert.Equal(t, "15.000000", p.CurrentCost.StringFixed(6), "outbound never changes the average")
	})

	t.Run("insufficient stock fails", func(t *testing.T) {
		p := stockedProduct(t, 5, 1)
		doc := draftDoc(t, document.TypeDispatchNote)
		require.NoError(t, doc.SetPartner(uuid.New()))
		_, err := doc.AddLine(p.ID, "Widget", "EA",
			decimal.NewFromInt(6), decimal.NewFromInt(1),
			decimal.NewFromInt(1), decimal.Zero, 20)
		require.NoError(t, err)

		_, err = svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		assert.ErrorIs(t, err, shared.ErrNegativeStock)
	})
}

func TestPostDocumentTransfer(t *testing.T) {
	svc := NewCostingService()
	p := stockedProduct(t, 10, 7)
	doc := draftDoc(t, document.TypeTransfer)
	_, err := doc.AddLine(p.ID, "Widget", "EA",
		decimal.NewFromInt(4), decimal.NewFromInt(1),
		decimal.Zero, decimal.Zero, 0)
	require.NoError(t, err)

	moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
	require.NoError(t, err)
	require.Len(t, moves, 2, "one out leg and one in leg")

	assert.Equal(t, "-4.000", moves[0].Quantity.StringFixed(3))
	assert.Equal(t, "4.000", moves[1].Quantity.StringFixed(3))
	assert.Equal(t, "10.000", p.OnHand.StringFixed(3), "net on-hand unchanged")
	assert.Equal(t, "7.000000", p.CurrentCost.StringFixed(6), "average unchanged")
}

func TestPostDocumentStockCount(t *testing.T) {
	svc := NewCostingService()

	t.Run("shortfall emits negative diff", func(t *testing.T) {
		p := stockedProduct(t, 10, 3)
		doc := draftDoc(t, document.TypeStockCount)
		_, err := doc.AddCountLine(p.ID, "Widget", decimal.NewFromInt(7))
		require.NoError(t, err)

		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)
		require.Len(t, moves, 1)
		assert.Equal(t, "-3.000", moves[0].Quantity.StringFixed(3))
		assert.Equal(t, "7.000", p.OnHand.StringFixed(3))
	})

	t.Run("surplus emits positive diff at current cost", func(t *testing.T) {
		p := stockedProduct(t, 10, 3)
		doc := draftDoc(t, document.TypeStockCount)
		_, err := doc.AddCountLine(p.ID, "Widget", decimal.NewFromInt(12))
		require.NoError(t, err)

		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)
		require.Len(t, moves, 1)
		assert.Equal(t, "2.000", moves[0].Quantity.StringFixed(3))
		assert.Equal(t, "3.000000", p.CurrentCost.StringFixed(6))
	})

	t.Run("exact count emits no move", func(t *testing.T) {
		p := stockedProduct(t, 10, 3)
		doc := draftDoc(t, document.TypeStockCount)
		_, err := doc.AddCountLine(p.ID, "Widget", decimal.NewFromInt(10))
		require.NoError(t, err)

		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)
		assert.Empty(t, moves)
	})
}

func TestPostDocumentNoStockEffect(t *testing.T) {
	svc := NewCostingService()
	doc := draftDoc(t, document.TypeQuote)
	require.NoError(t, doc.SetPartner(uuid.New()))
	moves, err := svc.PostDocument(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestReverseMoves(t *testing.T) {
	svc := NewCostingService()

	t.Run("reversing an outbound restocks at the original cost", func(t *testing.T) {
		p := stockedProduct(t, 20, 15)
		doc := draftDoc(t, document.TypeSalesInvoice)
		require.NoError(t, doc.SetPartner(uuid.New()))
		_, err := doc.AddLine(p.ID, "Widget", "EA",
			decimal.NewFromInt(10), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)
		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)

		originals := make([]StockMove, len(moves))
		for i, m := range moves {
			originals[i] = *m
		}
		reversals, err := svc.ReverseMoves(originals, map[uuid.UUID]*Product{p.ID: p}, time.Now())
		require.NoError(t, err)
		require.Len(t, reversals, 1)

		assert.Equal(t, "10.000", reversals[0].Quantity.StringFixed(3))
		require.NotNil(t, reversals[0].ReversesMoveID)
		assert.Equal(t, originals[0].ID, *reversals[0].ReversesMoveID)
		assert.Equal(t, "20.000", p.OnHand.StringFixed(3))
		assert.Equal(t, "15.000000", p.CurrentCost.StringFixed(6))
	})

	t.Run("reversing an inbound consumes the received stock", func(t *testing.T) {
		p := newProduct(t)
		doc := draftDoc(t, document.TypePurchaseInvoice)
		require.NoError(t, doc.SetPartner(uuid.New()))
		_, err := doc.AddLine(p.ID, "Widget", "EA",
			decimal.NewFromInt(10), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)
		moves, err := svc.PostDocument(doc, map[uuid.UUID]*Product{p.ID: p})
		require.NoError(t, err)

		originals := []StockMove{*moves[0]}
		reversals, err := svc.ReverseMoves(originals, map[uuid.UUID]*Product{p.ID: p}, time.Now())
		require.NoError(t, err)
		require.Len(t, reversals, 1)
		assert.Equal(t, "-10.000", reversals[0].Quantity.StringFixed(3))
		assert.True(t, p.OnHand.IsZero())
	})
}
