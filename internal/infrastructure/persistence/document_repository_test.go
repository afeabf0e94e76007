package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

func draftForPersistence() *document.Document {
	return &document.Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocType:           document.TypeSalesInvoice,
		Status:            document.StatusDraft,
		IssueDate:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:          valueobject.TRY,
	}
}

func TestGormDocumentRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		doc := draftForPersistence()

		mock.ExpectExec(`UPDATE "documents" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormDocumentRepository(db).SaveWithLock(ctx, doc, 1)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("matching version updates the row and syncs lines", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		doc := draftForPersistence()

		mock.ExpectExec(`UPDATE "documents" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "document_lines"`).
			WithArgs(doc.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormDocumentRepository(db).SaveWithLock(ctx, doc, 1)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("missing document is not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		doc := draftForPersistence()

		mock.ExpectExec(`UPDATE "documents" SET "deleted_at"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormDocumentRepository(db).Delete(ctx, doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
