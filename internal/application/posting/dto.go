package posting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// LineInput carries one document line of a draft command
type LineInput struct {
	ProductID      uuid.UUID
	Description    string
	UomCode        string
	Quantity       decimal.Decimal
	UomCoefficient decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountPct    decimal.Decimal
	VatRate        int
	// CountedQty replaces Quantity on stock count documents
	CountedQty     *decimal.Decimal
	SourceLocation *uuid.UUID
	DestLocation   *uuid.UUID
}

// CreateDraftCommand creates a new draft document
type CreateDraftCommand struct {
	DocType       document.DocumentType
	IssueDate     time.Time
	DueDate       *time.Time
	PartnerID     *uuid.UUID
	CashAccountID *uuid.UUID
	WarehouseID   *uuid.UUID
	Currency      valueobject.Currency
	FxRate        decimal.Decimal
	ExternalID    *string
	Remark        string
	Lines         []LineInput
	// CashAmount carries the single implicit line of a receipt or
	// payment instead of Lines.
	CashAmount *decimal.Decimal
}

// UpdateDraftCommand replaces a draft's header fields and lines.
// ExpectedVersion guards against concurrent edits.
type UpdateDraftCommand struct {
	DueDate         *time.Time
	WarehouseID     *uuid.UUID
	Remark          string
	Lines           []LineInput
	ExpectedVersion int
}

// CancelCommand cancels a posted document with reversing rows
type CancelCommand struct {
	Reason          string
	ExpectedVersion int
}

// PostingResult reports a completed posting transition
type PostingResult struct {
	Document *document.Document
	// AlreadyPosted is true when the call was an idempotent no-op on a
	// document previously posted under the same external id.
	AlreadyPosted bool
}
