package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), TRY)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, TRY, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := NewMoneyTRY(decimal.NewFromFloat(10.50))
		b := NewMoneyTRY(decimal.NewFromFloat(4.50))
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(15)))
	})

	t.Run("add mismatched currency fails", func(t *testing.T) {
		a := NewMoneyTRY(decimal.NewFromInt(10))
		b, _ := NewMoney(decimal.NewFromInt(10), USD)
		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("subtract", func(t *testing.T) {
		a := NewMoneyTRY(decimal.NewFromInt(10))
		b := NewMoneyTRY(decimal.NewFromInt(4))
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(6)))
	})

	t.Run("negate", func(t *testing.T) {
		m := NewMoneyTRY(decimal.NewFromInt(5)).Negate()
		assert.True(t, m.IsNegative())
	})
}

func TestMoneyRound(t *testing.T) {
	// half away from zero, not banker's rounding
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"-1.005", "-1.01"},
		{"2.675", "2.68"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			m, err := NewMoneyFromString(tc.in, TRY)
			require.NoError(t, err)
			want, _ := decimal.NewFromString(tc.want)
			assert.True(t, m.Round(2).Amount().Equal(want),
				"round(%s) = %s, want %s", tc.in, m.Round(2).Amount(), tc.want)
		})
	}
}

func TestMoneyConvertToBase(t *testing.T) {
	t.Run("foreign currency converts at rate and rounds to 2dp", func(t *testing.T) {
		m, _ := NewMoney(decimal.NewFromInt(100), USD)
		base, err := m.ConvertToBase(decimal.NewFromFloat(34.5678))
		require.NoError(t, err)
		assert.Equal(t, BaseCurrency, base.Currency())
		assert.Equal(t, "3456.78", base.Amount().StringFixed(2))
	})

	t.Run("base currency ignores rate", func(t *testing.T) {
		m := NewMoneyTRY(decimal.NewFromFloat(400))
		base, err := m.ConvertToBase(decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "400.00", base.Amount().StringFixed(2))
	})

	t.Run("non-positive rate rejected for foreign currency", func(t *testing.T) {
		m, _ := NewMoney(decimal.NewFromInt(100), EUR)
		_, err := m.ConvertToBase(decimal.Zero)
		assert.Error(t, err)
	})
}

func TestCurrencyIsSupported(t *testing.T) {
	assert.True(t, TRY.IsSupported())
	assert.True(t, USD.IsSupported())
	assert.False(t, Currency("XXX").IsSupported())
}
