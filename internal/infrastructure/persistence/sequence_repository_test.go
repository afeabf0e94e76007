package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tradebooks/backend/internal/domain/document"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormSequenceRepository_Next(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the sequence row on first use", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`INSERT INTO document_sequences`).
			WithArgs(document.TypeSalesInvoice, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"counter"}).AddRow(1))

		counter, err := NewGormSequenceRepository(db).Next(ctx, document.TypeSalesInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns the advanced counter", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`INSERT INTO document_sequences`).
			WithArgs(document.TypeReceipt, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"counter"}).AddRow(42))

		counter, err := NewGormSequenceRepository(db).Next(ctx, document.TypeReceipt, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(42), counter)
	})

	t.Run("wraps store errors", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`INSERT INTO document_sequences`).
			WillReturnError(sql.ErrConnDone)

		_, err := NewGormSequenceRepository(db).Next(ctx, document.TypeSalesInvoice, 2026)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}
