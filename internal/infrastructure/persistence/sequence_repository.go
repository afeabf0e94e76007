package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tradebooks/backend/internal/domain/document"
)

// GormSequenceRepository implements document.SequenceRepository using GORM.
// The counter advance is a single upsert-and-return statement so two
// concurrent approvals of the same type and year never mint the same
// number.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next atomically increments and returns the counter for the given type
// and year, creating the sequence row on first use.
func (r *GormSequenceRepository) Next(ctx context.Context, docType document.DocumentType, year int) (int64, error) {
	var counter int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_sequences (doc_type, year, counter, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (doc_type, year)
		DO UPDATE SET counter = document_sequences.counter + 1, updated_at = NOW()
		RETURNING counter`,
		docType, year,
	).Scan(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s/%d: %w", docType, year, err)
	}
	return counter, nil
}

// Ensure GormSequenceRepository implements document.SequenceRepository
var _ document.SequenceRepository = (*GormSequenceRepository)(nil)
