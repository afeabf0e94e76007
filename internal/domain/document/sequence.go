package document

import (
	"context"
	"fmt"
	"time"
)

// DocumentSequence is the per (type, year) counter used to mint
// human-readable document numbers. The counter column is only ever
// advanced by an atomic increment-and-read at the store; two concurrent
// approvals for the same type and year never receive the same value.
type DocumentSequence struct {
	DocType   DocumentType `gorm:"type:varchar(32);primaryKey"`
	Year      int          `gorm:"primaryKey"`
	Counter   int64        `gorm:"not null;default:0"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

// TableName returns the table name for DocumentSequence
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// FormatNumber renders a minted counter as a document number,
// e.g. SINV-2026-00001.
func FormatNumber(docType DocumentType, year int, counter int64) string {
	return fmt.Sprintf("%s-%d-%05d", docType.SequencePrefix(), year, counter)
}

// SequenceRepository mints document numbers
type SequenceRepository interface {
	// Next atomically increments and returns the counter for the given
	// type and year, creating the sequence row on first use.
	Next(ctx context.Context, docType DocumentType, year int) (int64, error)
}

// NumberGenerator mints formatted document numbers from the sequence store
type NumberGenerator struct {
	sequences SequenceRepository
}

// NewNumberGenerator creates a number generator
func NewNumberGenerator(sequences SequenceRepository) *NumberGenerator {
	return &NumberGenerator{sequences: sequences}
}

// NextNumber mints the next number for the document type in the year of
// the given date.
func (g *NumberGenerator) NextNumber(ctx context.Context, docType DocumentType, at time.Time) (string, error) {
	year := at.Year()
	counter, err := g.sequences.Next(ctx, docType, year)
	if err != nil {
		return "", fmt.Errorf("failed to mint number for %s/%d: %w", docType, year, err)
	}
	return FormatNumber(docType, year, counter), nil
}
