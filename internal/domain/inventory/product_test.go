package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebooks/backend/internal/domain/shared"
)

func newProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("WID-001", "Widget", "EA")
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("valid product", func(t *testing.T) {
		p := newProduct(t)
		assert.Equal(t, "WID-001", p.Code)
		assert.True(t, p.OnHand.IsZero())
		assert.True(t, p.CurrentCost.IsZero())
		assert.Equal(t, 1, p.Version)
	})

	t.Run("empty code rejected", func(t *testing.T) {
		_, err := NewProduct("", "Widget", "EA")
		assert.Error(t, err)
	})
}

func TestApplyInbound(t *testing.T) {
	t.Run("first receipt takes incoming cost", func(t *testing.T) {
		p := newProduct(t)
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(10), decimal.NewFromFloat(5.5)))
		assert.Equal(t, "10.000", p.OnHand.StringFixed(3))
		assert.Equal(t, "5.500000", p.CurrentCost.StringFixed(6))
	})

	t.Run("moving weighted average", func(t *testing.T) {
		p := newProduct(t)
		// 10 @ 10.00 then 10 @ 20.00 -> average 15.00
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(10), decimal.NewFromInt(10)))
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(10), decimal.NewFromInt(20)))
		assert.Equal(t, "20.000", p.OnHand.StringFixed(3))
		assert.Equal(t, "15.000000", p.CurrentCost.StringFixed(6))
	})

	t.Run("average rounds to 6 decimal places", func(t *testing.T) {
		p := newProduct(t)
		// 1 @ 1.00 then 2 @ 2.00 -> 5/3 = 1.666667
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(1), decimal.NewFromInt(1)))
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(2), decimal.NewFromInt(2)))
		assert.Equal(t, "1.666667", p.CurrentCost.StringFixed(6))
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		p := newProduct(t)
		assert.ErrorIs(t, p.ApplyInbound(decimal.Zero, decimal.NewFromInt(1)), shared.ErrInvalidQuantity)
	})

	t.Run("negative cost rejected", func(t *testing.T) {
		p := newProduct(t)
		assert.Error(t, p.ApplyInbound(decimal.NewFromInt(1), decimal.NewFromInt(-1)))
	})
}

func TestApplyOutbound(t *testing.T) {
	t.Run("outbound leaves average cost unchanged", func(t *testing.T) {
		p := newProduct(t)
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(10), decimal.NewFromFloat(12.345678)))
		require.NoError(t, p.ApplyOutbound(decimal.NewFromInt(4)))
		assert.Equal(t, "6.000", p.OnHand.StringFixed(3))
		assert.Equal(t, "12.345678", p.CurrentCost.StringFixed(6))
	})

	t.Run("cannot go negative", func(t *testing.T) {
		p := newProduct(t)
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(5), decimal.NewFromInt(1)))
		assert.ErrorIs(t, p.ApplyOutbound(decimal.NewFromInt(6)), shared.ErrNegativeStock)
	})

	t.Run("exact depletion allowed", func(t *testing.T) {
		p := newProduct(t)
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(5), decimal.NewFromInt(1)))
		require.NoError(t, p.ApplyOutbound(decimal.NewFromInt(5)))
		assert.True(t, p.OnHand.IsZero())
	})
}

func TestReservation(t *testing.T) {
	t.Run("reserve reduces availability", func(t *testing.T) {
		p := newProduct(t)
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(10), decimal.NewFromInt(1)))
		require.NoError(t, p.Reserve(decimal.NewFromInt(4)))
		assert.Equal(t, "6.000", p.Available().StringFixed(3))
		assert.Equal(t, "10.000", p.OnHand.StringFixed(3))
	})

	t.Run("cannot reserve more than available", func(t *testing.T) {
		p := newProduct(t)
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(10), decimal.NewFromInt(1)))
		require.NoError(t, p.Reserve(decimal.NewFromInt(8)))
		assert.ErrorIs(t, p.Reserve(decimal.NewFromInt(3)), shared.ErrNegativeStock)
	})

	t.Run("release clamps at zero", func(t *testing.T) {
		p := newProduct(t)
		require.NoError(t, p.ApplyInbound(decimal.NewFromInt(10), decimal.NewFromInt(1)))
		require.NoError(t, p.Reserve(decimal.NewFromInt(4)))
		require.NoError(t, p.Release(decimal.NewFromInt(4)))
		require.NoError(t, p.Release(decimal.NewFromInt(4)))
		assert.True(t, p.ReservedQty.IsZero())
	})
}

func TestStockValue(t *testing.T) {
	p := newProduct(t)
	require.NoError(t, p.ApplyInbound(decimal.NewFromInt(3), decimal.NewFromFloat(2.333333)))
	assert.Equal(t, "7.00", p.StockValue().StringFixed(2))
}
