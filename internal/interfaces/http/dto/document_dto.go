package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// DocumentLineRequest is one line of a draft create or update request
type DocumentLineRequest struct {
	ProductID      uuid.UUID        `json:"product_id" binding:"required"`
	Description    string           `json:"description" binding:"omitempty,max=255"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UomCode        string           `json:"uom_code" binding:"omitempty,max=20"`
	UomCoefficient decimal.Decimal  `json:"uom_coefficient"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	DiscountPct    decimal.Decimal  `json:"discount_pct"`
	VatRate        int              `json:"vat_rate" binding:"omitempty,min=0,max=100"`
	CountedQty     *decimal.Decimal `json:"counted_qty,omitempty"`
	SourceLocation *uuid.UUID       `json:"source_location,omitempty"`
	DestLocation   *uuid.UUID       `json:"dest_location,omitempty"`
}

// CreateDocumentRequest creates a new draft document
type CreateDocumentRequest struct {
	DocType       string                `json:"doc_type" binding:"required,doctype"`
	IssueDate     time.Time             `json:"issue_date" binding:"required"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	PartnerID     *uuid.UUID            `json:"partner_id,omitempty"`
	CashAccountID *uuid.UUID            `json:"cash_account_id,omitempty"`
	WarehouseID   *uuid.UUID            `json:"warehouse_id,omitempty"`
	Currency      string                `json:"currency" binding:"required,currency"`
	FxRate        decimal.Decimal       `json:"fx_rate"`
	ExternalID    *string               `json:"external_id,omitempty" binding:"omitempty,max=100"`
	Remark        string                `json:"remark" binding:"omitempty,max=500"`
	Lines         []DocumentLineRequest `json:"lines" binding:"omitempty,dive"`
	CashAmount    *decimal.Decimal      `json:"cash_amount,omitempty"`
}

// ToCommand converts the request to an application command
func (r CreateDocumentRequest) ToCommand() posting.CreateDraftCommand {
	fxRate := r.FxRate
	if fxRate.IsZero() {
		fxRate = decimal.NewFromInt(1)
	}
	return posting.CreateDraftCommand{
		DocType:       document.DocumentType(r.DocType),
		IssueDate:     r.IssueDate,
		DueDate:       r.DueDate,
		PartnerID:     r.PartnerID,
		CashAccountID: r.CashAccountID,
		WarehouseID:   r.WarehouseID,
		Currency:      valueobject.Currency(r.Currency),
		FxRate:        fxRate,
		ExternalID:    r.ExternalID,
		Remark:        r.Remark,
		Lines:         toLineInputs(r.Lines),
		CashAmount:    r.CashAmount,
	}
}

// UpdateDocumentRequest replaces a draft's header fields and lines
type UpdateDocumentRequest struct {
	DueDate     *time.Time            `json:"due_date,omitempty"`
	WarehouseID *uuid.UUID            `json:"warehouse_id,omitempty"`
	Remark      string                `json:"remark" binding:"omitempty,max=500"`
	Lines       []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
	Version     int                   `json:"version" binding:"required,min=1"`
}

// ToCommand converts the request to an application command
func (r UpdateDocumentRequest) ToCommand() posting.UpdateDraftCommand {
	return posting.UpdateDraftCommand{
		DueDate:         r.DueDate,
		WarehouseID:     r.WarehouseID,
		Remark:          r.Remark,
		Lines:           toLineInputs(r.Lines),
		ExpectedVersion: r.Version,
	}
}

// CancelDocumentRequest cancels a posted document
type CancelDocumentRequest struct {
	Reason  string `json:"reason" binding:"required,max=255"`
	Version int    `json:"version" binding:"omitempty,min=1"`
}

// DocumentListRequest filters the document list endpoint
type DocumentListRequest struct {
	ListRequest
	DocType       string `form:"doc_type" binding:"omitempty,doctype"`
	Status        string `form:"status" binding:"omitempty,oneof=DRAFT APPROVED POSTED CANCELED SENT"`
	PartnerID     string `form:"partner_id" binding:"omitempty,uuid"`
	IssueDateFrom string `form:"issue_date_from" binding:"omitempty,datetime=2006-01-02"`
	IssueDateTo   string `form:"issue_date_to" binding:"omitempty,datetime=2006-01-02"`
}

func toLineInputs(lines []DocumentLineRequest) []posting.LineInput {
	out := make([]posting.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, posting.LineInput{
			ProductID:      line.ProductID,
			Description:    line.Description,
			UomCode:        line.UomCode,
			Quantity:       line.Quantity,
			UomCoefficient: line.UomCoefficient,
			UnitPrice:      line.UnitPrice,
			DiscountPct:    line.DiscountPct,
			VatRate:        line.VatRate,
			CountedQty:     line.CountedQty,
			SourceLocation: line.SourceLocation,
			DestLocation:   line.DestLocation,
		})
	}
	return out
}

// DocumentLineResponse is one line of a document response
type DocumentLineResponse struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"product_id"`
	Description    string           `json:"description"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UomCode        string           `json:"uom_code"`
	UomCoefficient decimal.Decimal  `json:"uom_coefficient"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	DiscountPct    decimal.Decimal  `json:"discount_pct"`
	VatRate        int              `json:"vat_rate"`
	LineNet        decimal.Decimal  `json:"line_net"`
	LineVat        decimal.Decimal  `json:"line_vat"`
	LineGross      decimal.Decimal  `json:"line_gross"`
	CountedQty     *decimal.Decimal `json:"counted_qty,omitempty"`
	SourceLocation *uuid.UUID       `json:"source_location,omitempty"`
	DestLocation   *uuid.UUID       `json:"dest_location,omitempty"`
}

// DocumentResponse is the API representation of a document
type DocumentResponse struct {
	ID            uuid.UUID              `json:"id"`
	DocType       string                 `json:"doc_type"`
	Number        string                 `json:"number,omitempty"`
	Status        string                 `json:"status"`
	IssueDate     time.Time              `json:"issue_date"`
	DueDate       *time.Time             `json:"due_date,omitempty"`
	PartnerID     *uuid.UUID             `json:"partner_id,omitempty"`
	CashAccountID *uuid.UUID             `json:"cash_account_id,omitempty"`
	WarehouseID   *uuid.UUID             `json:"warehouse_id,omitempty"`
	Currency      string                 `json:"currency"`
	FxRate        decimal.Decimal        `json:"fx_rate"`
	ExternalID    *string                `json:"external_id,omitempty"`
	NetTotal      decimal.Decimal        `json:"net_total"`
	VatTotal      decimal.Decimal        `json:"vat_total"`
	GrossTotal    decimal.Decimal        `json:"gross_total"`
	BaseGross     decimal.Decimal        `json:"base_gross"`
	Remark        string                 `json:"remark,omitempty"`
	PostedAt      *time.Time             `json:"posted_at,omitempty"`
	CanceledAt    *time.Time             `json:"canceled_at,omitempty"`
	CancelReason  string                 `json:"cancel_reason,omitempty"`
	SentAt        *time.Time             `json:"sent_at,omitempty"`
	Version       int                    `json:"version"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Lines         []DocumentLineResponse `json:"lines"`
}

// NewDocumentResponse maps a document aggregate to its API shape
func NewDocumentResponse(doc *document.Document) DocumentResponse {
	lines := make([]DocumentLineResponse, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, DocumentLineResponse{
			ID:             line.ID,
			ProductID:      line.ProductID,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UomCode:        line.UomCode,
			UomCoefficient: line.UomCoefficient,
			UnitPrice:      line.UnitPrice,
			DiscountPct:    line.DiscountPct,
			VatRate:        line.VatRate,
			LineNet:        line.LineNet,
			LineVat:        line.LineVat,
			LineGross:      line.LineGross,
			CountedQty:     line.CountedQty,
			SourceLocation: line.SourceLocation,
			DestLocation:   line.DestLocation,
		})
	}
	return DocumentResponse{
		ID:            doc.ID,
		DocType:       doc.DocType.String(),
		Number:        doc.Number,
		Status:        doc.Status.String(),
		IssueDate:     doc.IssueDate,
		DueDate:       doc.DueDate,
		PartnerID:     doc.PartnerID,
		CashAccountID: doc.CashAccountID,
		WarehouseID:   doc.WarehouseID,
		Currency:      string(doc.Currency),
		FxRate:        doc.FxRate,
		ExternalID:    doc.ExternalID,
		NetTotal:      doc.NetTotal,
		VatTotal:      doc.VatTotal,
		GrossTotal:    doc.GrossTotal,
		BaseGross:     doc.BaseGross,
		Remark:        doc.Remark,
		PostedAt:      doc.PostedAt,
		CanceledAt:    doc.CanceledAt,
		CancelReason:  doc.CancelReason,
		SentAt:        doc.SentAt,
		Version:       doc.Version,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
		Lines:         lines,
	}
}

// NewDocumentResponses maps a slice of documents
func NewDocumentResponses(docs []document.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for idx := range docs {
		out = append(out, NewDocumentResponse(&docs[idx]))
	}
	return out
}

// PostingResultResponse reports an approve outcome
type PostingResultResponse struct {
	Document      DocumentResponse `json:"document"`
	AlreadyPosted bool             `json:"already_posted"`
}
