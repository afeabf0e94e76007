package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// DocumentLine represents one item row of a document
type DocumentLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DocumentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"type:varchar(255)"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UomCode        string          `gorm:"type:varchar(20);not null;default:'EA'"`
	UomCoefficient decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	VatRate        int             `gorm:"not null;default:0"`
	LineNet        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineVat        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineGross      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	// CountedQty is set only on stock count lines and may be zero.
	CountedQty     *decimal.Decimal `gorm:"type:decimal(18,3)"`
	LotNumber      string           `gorm:"type:varchar(50)"`
	SourceLocation *uuid.UUID       `gorm:"type:uuid"`
	DestLocation   *uuid.UUID       `gorm:"type:uuid"`
	CreatedAt      time.Time        `gorm:"not null"`
	UpdatedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for DocumentLine
func (DocumentLine) TableName() string {
	return "document_lines"
}

// BaseQuantity returns the quantity converted to the product's base unit,
// rounded to 3 decimal places.
func (l *DocumentLine) BaseQuantity() decimal.Decimal {
	return l.Quantity.Mul(l.UomCoefficient).Round(3)
}

// NewDocumentLine creates a new validated document line
func NewDocumentLine(documentID, productID uuid.UUID, description, uomCode string, quantity, uomCoefficient, unitPrice, discountPct decimal.Decimal, vatRate int) (*DocumentLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if uomCoefficient.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_UOM_COEFFICIENT", "Unit coefficient must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discountPct.IsNegative() || discountPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100 percent")
	}
	if !IsValidVatRate(vatRate) {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", fmt.Sprintf("VAT rate %d is not accepted", vatRate))
	}
	if uomCode == "" {
		uomCode = "EA"
	}

	now := time.Now()
	line := &DocumentLine{
		ID:             uuid.New(),
		DocumentID:     documentID,
		ProductID:      productID,
		Description:    description,
		Quantity:       quantity,
		UomCode:        uomCode,
		UomCoefficient: uomCoefficient,
		UnitPrice:      unitPrice,
		DiscountPct:    discountPct,
		VatRate:        vatRate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return line, nil
}

// Document is the aggregate root for a commercial transaction header
// and its lines. Stock and ledger effects are derived from DocType at
// posting time and never stored on the document itself.
type Document struct {
	shared.BaseAggregateRoot
	DocType       DocumentType   `gorm:"type:varchar(32);not null;index"`
	Number        string         `gorm:"type:varchar(50);index"`
	Status        DocumentStatus `gorm:"type:varchar(16);not null;index"`
	IssueDate     time.Time      `gorm:"not null;index"`
	DueDate       *time.Time
	PartnerID     *uuid.UUID           `gorm:"type:uuid;index"`
	CashAccountID *uuid.UUID           `gorm:"type:uuid;index"`
	WarehouseID   *uuid.UUID           `gorm:"type:uuid"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	FxRate        decimal.Decimal      `gorm:"type:decimal(18,6);not null;default:1"`
	ExternalID    *string              `gorm:"type:varchar(100);uniqueIndex"`
	Lines         []DocumentLine       `gorm:"foreignKey:DocumentID"`
	NetTotal      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	VatTotal      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	GrossTotal    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	BaseGross     decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Remark        string               `gorm:"type:varchar(500)"`
	PostedAt      *time.Time
	CanceledAt    *time.Time
	CancelReason  string `gorm:"type:varchar(255)"`
	SentAt        *time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for Document
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a new draft document
func NewDocument(docType DocumentType, issueDate time.Time, currency valueobject.Currency, fxRate decimal.Decimal) (*Document, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", fmt.Sprintf("Unknown document type %q", docType))
	}
	if !currency.IsSupported() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Unsupported currency %q", currency))
	}
	if currency == valueobject.BaseCurrency {
		fxRate = decimal.NewFromInt(1)
	} else if !fxRate.IsPositive() {
		return nil, shared.ErrInvalidFxRate
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	return &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocType:           docType,
		Status:            StatusDraft,
		IssueDate:         issueDate,
		Currency:          currency,
		FxRate:            fxRate,
		Lines:             make([]DocumentLine, 0),
		NetTotal:          decimal.Zero,
		VatTotal:          decimal.Zero,
		GrossTotal:        decimal.Zero,
		BaseGross:         decimal.Zero,
	}, nil
}

// SetPartner attaches a partner reference. Only allowed while DRAFT.
func (d *Document) SetPartner(partnerID uuid.UUID) error {
	if !d.Status.IsMutable() {
		return shared.ErrInvalidState
	}
	if partnerID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	d.PartnerID = &partnerID
	d.Touch()
	return nil
}

// SetCashAccount attaches a cash account reference. Only allowed while DRAFT.
func (d *Document) SetCashAccount(accountID uuid.UUID) error {
	if !d.Status.IsMutable() {
		return shared.ErrInvalidState
	}
	if accountID == uuid.Nil {
		return shared.NewDomainError("INVALID_CASH_ACCOUNT", "Cash account ID cannot be empty")
	}
	d.CashAccountID = &accountID
	d.Touch()
	return nil
}

// SetWarehouse attaches the stock location. Only allowed while DRAFT.
func (d *Document) SetWarehouse(warehouseID uuid.UUID) error {
	if !d.Status.IsMutable() {
		return shared.ErrInvalidState
	}
	d.WarehouseID = &warehouseID
	d.Touch()
	return nil
}

// SetDueDate sets the payment due date. Only allowed while DRAFT.
func (d *Document) SetDueDate(due time.Time) error {
	if !d.Status.IsMutable() {
		return shared.ErrInvalidState
	}
	d.DueDate = &due
	d.Touch()
	return nil
}

// SetExternalID sets the caller-supplied idempotency key. Only allowed
// while DRAFT; uniqueness is enforced by the store.
func (d *Document) SetExternalID(externalID string) error {
	if !d.Status.IsMutable() {
		return shared.ErrInvalidState
	}
	if externalID == "" {
		return shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	d.ExternalID = &externalID
	d.Touch()
	return nil
}

// SetRemark sets the free-text remark
func (d *Document) SetRemark(remark string) {
	d.Remark = remark
	d.Touch()
}

// AddLine appends a validated line. Only allowed while DRAFT.
func (d *Document) AddLine(productID uuid.UUID, description, uomCode string, quantity, uomCoefficient, unitPrice, discountPct decimal.Decimal, vatRate int) (*DocumentLine, error) {
	if !d.Status.IsMutable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft document")
	}
	line, err := NewDocumentLine(d.ID, productID, description, uomCode, quantity, uomCoefficient, unitPrice, discountPct, vatRate)
	if err != nil {
		return nil, err
	}
	d.Lines = append(d.Lines, *line)
	d.RecalculateTotals()
	d.Touch()
	return line, nil
}

// AddCountLine appends a stock count line carrying the counted quantity,
// which may legitimately be zero. Only valid on STOCK_COUNT documents.
func (d *Document) AddCountLine(productID uuid.UUID, description string, countedQty decimal.Decimal) (*DocumentLine, error) {
	if d.DocType != TypeStockCount {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Count lines are only valid on stock count documents")
	}
	if !d.Status.IsMutable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft document")
	}
	if countedQty.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	counted := countedQty.Round(3)
	now := time.Now()
	line := DocumentLine{
		ID:             uuid.New(),
		DocumentID:     d.ID,
		ProductID:      productID,
		Description:    description,
		Quantity:       counted,
		UomCode:        "EA",
		UomCoefficient: decimal.NewFromInt(1),
		UnitPrice:      decimal.Zero,
		DiscountPct:    decimal.Zero,
		CountedQty:     &counted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	d.Lines = append(d.Lines, line)
	d.Touch()
	return &line, nil
}

// AddCashLine appends the single implicit amount line of a receipt or
// payment. Cash lines reference no product and carry no VAT.
func (d *Document) AddCashLine(description string, amount decimal.Decimal) (*DocumentLine, error) {
	if !d.DocType.IsCashDocument() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Cash lines are only valid on receipt and payment documents")
	}
	if !d.Status.IsMutable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft document")
	}
	if len(d.Lines) > 0 {
		return nil, shared.NewDomainError("INVALID_LINE", "Cash documents carry exactly one line")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cash amount must be positive")
	}
	now := time.Now()
	line := DocumentLine{
		ID:             uuid.New(),
		DocumentID:     d.ID,
		Description:    description,
		Quantity:       decimal.NewFromInt(1),
		UomCode:        "EA",
		UomCoefficient: decimal.NewFromInt(1),
		UnitPrice:      amount.Round(2),
		DiscountPct:    decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	d.Lines = append(d.Lines, line)
	d.RecalculateTotals()
	d.Touch()
	return &line, nil
}

// UpdateLine replaces quantity, price, discount and VAT of an existing
// line. Only allowed while DRAFT.
func (d *Document) UpdateLine(lineID uuid.UUID, quantity, unitPrice, discountPct decimal.Decimal, vatRate int) error {
	if !d.Status.IsMutable() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines of a non-draft document")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !IsValidVatRate(vatRate) {
		return shared.NewDomainError("INVALID_VAT_RATE", fmt.Sprintf("VAT rate %d is not accepted", vatRate))
	}
	for idx := range d.Lines {
		if d.Lines[idx].ID == lineID {
			d.Lines[idx].Quantity = quantity
			d.Lines[idx].UnitPrice = unitPrice
			d.Lines[idx].DiscountPct = discountPct
			d.Lines[idx].VatRate = vatRate
			d.Lines[idx].UpdatedAt = time.Now()
			d.RecalculateTotals()
			d.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Document line not found")
}

// RemoveLine removes a line. Only allowed while DRAFT.
func (d *Document) RemoveLine(lineID uuid.UUID) error {
	if !d.Status.IsMutable() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a non-draft document")
	}
	for idx, line := range d.Lines {
		if line.ID == lineID {
			d.Lines = append(d.Lines[:idx], d.Lines[idx+1:]...)
			d.RecalculateTotals()
			d.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Document line not found")
}

// RecalculateTotals recomputes line and document totals
func (d *Document) RecalculateTotals() {
	totals := CalculateTotals(d.Lines)
	for idx := range d.Lines {
		d.Lines[idx].LineNet = totals.Lines[idx].Net.Round(2)
		d.Lines[idx].LineVat = totals.Lines[idx].Vat.Round(2)
		d.Lines[idx].LineGross = totals.Lines[idx].Gross.Round(2)
	}
	d.NetTotal = totals.Net
	d.VatTotal = totals.Vat
	d.GrossTotal = totals.Gross
	// Currency and FxRate are validated at construction, so the base
	// conversion cannot fail here.
	gross, _ := valueobject.NewMoney(totals.Gross, d.Currency)
	base, _ := gross.ConvertToBase(d.FxRate)
	d.BaseGross = base.Amount()
}

// MarkApproved transitions the document out of DRAFT once posting rows
// have been prepared. The orchestrator persists everything in one
// transaction. Adjustment-style types jump straight to POSTED.
func (d *Document) MarkApproved(number string, postedAt time.Time) error {
	target := StatusApproved
	if d.DocType.SupportsSaveAndApprove() {
		target = StatusPosted
	}
	if !d.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve document in %s status", d.Status))
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Document number cannot be empty")
	}
	d.Number = number
	d.Status = target
	d.PostedAt = &postedAt
	d.Touch()
	return nil
}

// MarkPosted finalizes an APPROVED document as POSTED bookkeeping state
func (d *Document) MarkPosted() error {
	if !d.Status.CanTransitionTo(StatusPosted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post document in %s status", d.Status))
	}
	d.Status = StatusPosted
	d.Touch()
	return nil
}

// MarkCanceled transitions a posted document to CANCELED. The
// orchestrator creates the reversing stock and ledger rows.
func (d *Document) MarkCanceled(reason string) error {
	if !d.Status.CanTransitionTo(StatusCanceled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel document in %s status", d.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	now := time.Now()
	d.Status = StatusCanceled
	d.CanceledAt = &now
	d.CancelReason = reason
	d.Touch()
	return nil
}

// MarkSent records the out-of-band e-invoice transmission
func (d *Document) MarkSent() error {
	if !d.Status.CanTransitionTo(StatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark document SENT in %s status", d.Status))
	}
	now := time.Now()
	d.Status = StatusSent
	d.SentAt = &now
	d.Touch()
	return nil
}
