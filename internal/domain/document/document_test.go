package document

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

func newDraftInvoice(t *testing.T) *Document {
	t.Helper()
	doc, err := NewDocument(TypeSalesInvoice, time.Now(), valueobject.TRY, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, doc.SetPartner(uuid.New()))
	return doc
}

func TestNewDocument(t *testing.T) {
	t.Run("creates draft with base currency", func(t *testing.T) {
		doc, err := NewDocument(TypeSalesInvoice, time.Now(), valueobject.TRY, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, doc.Status)
		assert.True(t, doc.FxRate.Equal(decimal.NewFromInt(1)), "base currency forces fx rate 1")
		assert.Equal(t, 1, doc.Version)
		assert.Empty(t, doc.Number)
	})

	t.Run("foreign currency requires positive fx rate", func(t *testing.T) {
		_, err := NewDocument(TypeSalesInvoice, time.Now(), valueobject.USD, decimal.Zero)
		assert.Error(t, err)

		doc, err := NewDocument(TypeSalesInvoice, time.Now(), valueobject.USD, decimal.NewFromFloat(34.5))
		require.NoError(t, err)
		assert.True(t, doc.FxRate.Equal(decimal.NewFromFloat(34.5)))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewDocument("BOGUS", time.Now(), valueobject.TRY, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects unsupported currency", func(t *testing.T) {
		_, err := NewDocument(TypeSalesInvoice, time.Now(), "XXX", decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestDocumentLines(t *testing.T) {
	t.Run("add line recalculates totals", func(t *testing.T) {
		doc := newDraftInvoice(t)
		_, err := doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.NewFromInt(10), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)

		assert.Equal(t, "1000.00", doc.NetTotal.StringFixed(2))
		assert.Equal(t, "200.00", doc.VatTotal.StringFixed(2))
		assert.Equal(t, "1200.00", doc.GrossTotal.StringFixed(2))
		assert.Equal(t, "1200.00", doc.BaseGross.StringFixed(2))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		doc := newDraftInvoice(t)
		_, err := doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.Zero, decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		assert.Error(t, err)
	})

	t.Run("rejects VAT rate outside closed set", func(t *testing.T) {
		doc := newDraftInvoice(t)
		_, err := doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.NewFromInt(1), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 7)
		assert.Error(t, err)
	})

	t.Run("update line recalculates totals", func(t *testing.T) {
		doc := newDraftInvoice(t)
		line, err := doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.NewFromInt(10), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)

		require.NoError(t, doc.UpdateLine(line.ID, decimal.NewFromInt(5),
			decimal.NewFromInt(100), decimal.Zero, 20))
		assert.Equal(t, "500.00", doc.NetTotal.StringFixed(2))
	})

	t.Run("remove line recalculates totals", func(t *testing.T) {
		doc := newDraftInvoice(t)
		line, err := doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.NewFromInt(10), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)

		require.NoError(t, doc.RemoveLine(line.ID))
		assert.True(t, doc.GrossTotal.IsZero())
	})

	t.Run("cannot edit after approval", func(t *testing.T) {
		doc := newDraftInvoice(t)
		_, err := doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.NewFromInt(1), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		require.NoError(t, err)
		require.NoError(t, doc.MarkApproved("SINV-2026-00001", time.Now()))

		_, err = doc.AddLine(uuid.New(), "Widget", "EA",
			decimal.NewFromInt(1), decimal.NewFromInt(1),
			decimal.NewFromInt(100), decimal.Zero, 20)
		assert.Error(t, err)
	})
}

func TestCountLines(t *testing.T) {
	t.Run("counted quantity may be zero", func(t *testing.T) {
		doc, err := NewDocument(TypeStockCount, time.Now(), valueobject.TRY, decimal.Zero)
		require.NoError(t, err)
		line, err := doc.AddCountLine(uuid.New(), "Widget", decimal.Zero)
		require.NoError(t, err)
		require.NotNil(t, line.CountedQty)
		assert.True(t, line.CountedQty.IsZero())
	})

	t.Run("negative counted quantity rejected", func(t *testing.T) {
		doc, err := NewDocument(TypeStockCount, time.Now(), valueobject.TRY, decimal.Zero)
		require.NoError(t, err)
		_, err = doc.AddCountLine(uuid.New(), "Widget", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("count lines only on stock count documents", func(t *testing.T) {
		doc := newDraftInvoice(t)
		_, err := doc.AddCountLine(uuid.New(), "Widget", decimal.NewFromInt(5))
		assert.Error(t, err)
	})
}

func TestDocumentLifecycle(t *testing.T) {
	t.Run("approve sets status and number", func(t *testing.T) {
		doc := newDraftInvoice(t)
		postedAt := time.Now()
		require.NoError(t, doc.MarkApproved("SINV-2026-00001", postedAt))
		assert.Equal(t, StatusApproved, doc.Status)
		assert.Equal(t, "SINV-2026-00001", doc.Number)
		require.NotNil(t, doc.PostedAt)
	})

	t.Run("adjustment types jump straight to posted", func(t *testing.T) {
		doc, err := NewDocument(TypeAdjustmentIn, time.Now(), valueobject.TRY, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, doc.MarkApproved("ADJI-2026-00001", time.Now()))
		assert.Equal(t, StatusPosted, doc.Status)
	})

	t.Run("double approve fails", func(t *testing.T) {
		doc := newDraftInvoice(t)
		require.NoError(t, doc.MarkApproved("SINV-2026-00001", time.Now()))
		assert.Error(t, doc.MarkApproved("SINV-2026-00002", time.Now()))
	})

	t.Run("cancel requires reason and approved status", func(t *testing.T) {
		doc := newDraftInvoice(t)
		assert.Error(t, doc.MarkCanceled("typo"), "draft cannot be cancelled, it is deleted instead")

		require.NoError(t, doc.MarkApproved("SINV-2026-00001", time.Now()))
		assert.Error(t, doc.MarkCanceled(""))
		require.NoError(t, doc.MarkCanceled("typo"))
		assert.Equal(t, StatusCanceled, doc.Status)
		assert.NotNil(t, doc.CanceledAt)
	})

	t.Run("canceled is terminal", func(t *testing.T) {
		doc := newDraftInvoice(t)
		require.NoError(t, doc.MarkApproved("SINV-2026-00001", time.Now()))
		require.NoError(t, doc.MarkCanceled("typo"))
		assert.Error(t, doc.MarkSent())
		assert.Error(t, doc.MarkPosted())
	})

	t.Run("sent set after posting", func(t *testing.T) {
		doc := newDraftInvoice(t)
		require.NoError(t, doc.MarkApproved("SINV-2026-00001", time.Now()))
		require.NoError(t, doc.MarkSent())
		assert.Equal(t, StatusSent, doc.Status)
		assert.NotNil(t, doc.SentAt)
	})

	t.Run("immutable fields after approval", func(t *testing.T) {
		doc := newDraftInvoice(t)
		require.NoError(t, doc.MarkApproved("SINV-2026-00001", time.Now()))
		assert.Error(t, doc.SetPartner(uuid.New()))
		assert.Error(t, doc.SetDueDate(time.Now()))
		assert.Error(t, doc.SetExternalID("ext-1"))
	})
}

func TestBaseGrossConversion(t *testing.T) {
	doc, err := NewDocument(TypeSalesInvoice, time.Now(), valueobject.USD, decimal.NewFromFloat(30.5))
	require.NoError(t, err)
	require.NoError(t, doc.SetPartner(uuid.New()))
	_, err = doc.AddLine(uuid.New(), "Widget", "EA",
		decimal.NewFromInt(1), decimal.NewFromInt(1),
		decimal.NewFromInt(100), decimal.Zero, 0)
	require.NoError(t, err)

	assert.Equal(t, "100.00", doc.GrossTotal.StringFixed(2))
	assert.Equal(t, "3050.00", doc.BaseGross.StringFixed(2))
}
