package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSequences struct {
	counters map[string]int64
	err      error
}

func (s *stubSequences) Next(_ context.Context, docType DocumentType, year int) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counters == nil {
		s.counters = make(map[string]int64)
	}
	key := string(docType) + "/" + time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	s.counters[key]++
	return s.counters[key], nil
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		docType DocumentType
		year    int
		counter int64
		want    string
	}{
		{TypeSalesInvoice, 2026, 1, "SINV-2026-00001"},
		{TypePurchaseInvoice, 2026, 42, "PINV-2026-00042"},
		{TypeSalesOrder, 2025, 123456, "SO-2025-123456"},
		{TypeReceipt, 2026, 7, "RCT-2026-00007"},
		{TypeAdjustmentOut, 2026, 3, "ADJO-2026-00003"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatNumber(tc.docType, tc.year, tc.counter))
		})
	}
}

func TestNumberGenerator(t *testing.T) {
	t.Run("mints sequential numbers per type and year", func(t *testing.T) {
		gen := NewNumberGenerator(&stubSequences{})
		at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

		first, err := gen.NextNumber(context.Background(), TypeSalesInvoice, at)
		require.NoError(t, err)
		second, err := gen.NextNumber(context.Background(), TypeSalesInvoice, at)
		require.NoError(t, err)

		assert.Equal(t, "SINV-2026-00001", first)
		assert.Equal(t, "SINV-2026-00002", second)
	})

	t.Run("types count independently", func(t *testing.T) {
		gen := NewNumberGenerator(&stubSequences{})
		at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

		_, err := gen.NextNumber(context.Background(), TypeSalesInvoice, at)
		require.NoError(t, err)
		number, err := gen.NextNumber(context.Background(), TypeReceipt, at)
		require.NoError(t, err)
		assert.Equal(t, "RCT-2026-00001", number)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		gen := NewNumberGenerator(&stubSequences{err: errors.New("db down")})
		_, err := gen.NextNumber(context.Background(), TypeSalesInvoice, time.Now())
		assert.Error(t, err)
	})
}

func TestDocumentTypePredicates(t *testing.T) {
	t.Run("stock direction", func(t *testing.T) {
		assert.Equal(t, StockOut, TypeSalesInvoice.StockDirection())
		assert.Equal(t, StockOut, TypeDispatchNote.StockDirection())
		assert.Equal(t, StockIn, TypePurchaseInvoice.StockDirection())
		assert.Equal(t, StockIn, TypeProduction.StockDirection())
		assert.Equal(t, StockBoth, TypeTransfer.StockDirection())
		assert.Equal(t, StockCountDiff, TypeStockCount.StockDirection())
		assert.Equal(t, StockNone, TypeQuote.StockDirection())
		assert.Equal(t, StockNone, TypeSalesOrder.StockDirection())
		assert.Equal(t, StockNone, TypeReceipt.StockDirection())
	})

	t.Run("ledger effects", func(t *testing.T) {
		assert.True(t, TypeSalesInvoice.AffectsPartnerLedger())
		assert.True(t, TypeReceipt.AffectsPartnerLedger())
		assert.False(t, TypeDispatchNote.AffectsPartnerLedger())
		assert.True(t, TypeReceipt.IsCashDocument())
		assert.True(t, TypePayment.IsCashDocument())
		assert.False(t, TypeSalesInvoice.IsCashDocument())
	})

	t.Run("save and approve types", func(t *testing.T) {
		assert.True(t, TypeAdjustmentIn.SupportsSaveAndApprove())
		assert.True(t, TypeStockCount.SupportsSaveAndApprove())
		assert.False(t, TypeSalesInvoice.SupportsSaveAndApprove())
	})
}
