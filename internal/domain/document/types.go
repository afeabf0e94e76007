package document

// DocumentType discriminates the commercial transaction kinds. Stock and
// ledger effects are keyed off the type at posting time.
type DocumentType string

const (
	TypeSalesInvoice      DocumentType = "SALES_INVOICE"
	TypePurchaseInvoice   DocumentType = "PURCHASE_INVOICE"
	TypeSalesOrder        DocumentType = "SALES_ORDER"
	TypeQuote             DocumentType = "QUOTE"
	TypeReceipt           DocumentType = "RECEIPT"
	TypePayment           DocumentType = "PAYMENT"
	TypeDispatchNote      DocumentType = "DISPATCH_NOTE"
	TypeGoodsReceivedNote DocumentType = "GOODS_RECEIVED_NOTE"
	TypeStockCount        DocumentType = "STOCK_COUNT"
	TypeTransfer          DocumentType = "TRANSFER"
	TypeProduction        DocumentType = "PRODUCTION"
	TypeAdjustmentIn      DocumentType = "ADJUSTMENT_IN"
	TypeAdjustmentOut     DocumentType = "ADJUSTMENT_OUT"
)

// IsValid checks if the type is a known DocumentType
func (t DocumentType) IsValid() bool {
	switch t {
	case TypeSalesInvoice, TypePurchaseInvoice, TypeSalesOrder, TypeQuote,
		TypeReceipt, TypePayment, TypeDispatchNote, TypeGoodsReceivedNote,
		TypeStockCount, TypeTransfer, TypeProduction, TypeAdjustmentIn,
		TypeAdjustmentOut:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// StockDirection describes a document type's effect on stock
type StockDirection int

const (
	StockNone StockDirection = iota
	StockIn
	StockOut
	// StockBoth covers transfers: an out move at the source location and
	// an in move at the destination per line.
	StockBoth
	// StockCountDiff covers stock counts: the signed difference between
	// the counted quantity and the current on-hand.
	StockCountDiff
)

// StockDirection returns how posting this type moves stock
func (t DocumentType) StockDirection() StockDirection {
	switch t {
	case TypeSalesInvoice, TypeDispatchNote, TypeAdjustmentOut:
		return StockOut
	case TypePurchaseInvoice, TypeGoodsReceivedNote, TypeAdjustmentIn, TypeProduction:
		return StockIn
	case TypeTransfer:
		return StockBoth
	case TypeStockCount:
		return StockCountDiff
	}
	return StockNone
}

// AffectsPartnerLedger reports whether posting creates a partner ledger entry
func (t DocumentType) AffectsPartnerLedger() bool {
	switch t {
	case TypeSalesInvoice, TypePurchaseInvoice, TypeReceipt, TypePayment:
		return true
	}
	return false
}

// IsCashDocument reports whether the type moves money on a cash account
func (t DocumentType) IsCashDocument() bool {
	return t == TypeReceipt || t == TypePayment
}

// SupportsSaveAndApprove reports whether the type allows the combined
// DRAFT to POSTED transition in one step
func (t DocumentType) SupportsSaveAndApprove() bool {
	switch t {
	case TypeAdjustmentIn, TypeAdjustmentOut, TypeStockCount,
		TypeReceipt, TypePayment:
		return true
	}
	return false
}

// RequiresPartner reports whether the type must reference a partner
func (t DocumentType) RequiresPartner() bool {
	switch t {
	case TypeSalesInvoice, TypePurchaseInvoice, TypeSalesOrder, TypeQuote,
		TypeReceipt, TypePayment, TypeDispatchNote, TypeGoodsReceivedNote:
		return true
	}
	return false
}

// SequencePrefix returns the short code used when minting document numbers
func (t DocumentType) SequencePrefix() string {
	switch t {
	case TypeSalesInvoice:
		return "SINV"
	case TypePurchaseInvoice:
		return "PINV"
	case TypeSalesOrder:
		return "SO"
	case TypeQuote:
		return "QT"
	case TypeReceipt:
		return "RCT"
	case TypePayment:
		return "PAY"
	case TypeDispatchNote:
		return "DSP"
	case TypeGoodsReceivedNote:
		return "GRN"
	case TypeStockCount:
		return "STK"
	case TypeTransfer:
		return "TRF"
	case TypeProduction:
		return "PRD"
	case TypeAdjustmentIn:
		return "ADJI"
	case TypeAdjustmentOut:
		return "ADJO"
	}
	return "DOC"
}

// DocumentStatus represents the lifecycle state of a document
type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "DRAFT"
	StatusApproved DocumentStatus = "APPROVED"
	StatusPosted   DocumentStatus = "POSTED"
	StatusCanceled DocumentStatus = "CANCELED"
	// StatusSent is set out of band by the e-invoice adapter once a
	// posted invoice has been transmitted. It does not re-enter the
	// posting state machine.
	StatusSent DocumentStatus = "SENT"
)

// IsValid checks if the status is a known DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusPosted, StatusCanceled, StatusSent:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsMutable reports whether header and lines may still be edited
func (s DocumentStatus) IsMutable() bool {
	return s == StatusDraft
}

// IsPosted reports whether stock and ledger rows exist for the document
func (s DocumentStatus) IsPosted() bool {
	return s == StatusApproved || s == StatusPosted || s == StatusSent
}

// CanTransitionTo checks if the status can transition to the target status
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusApproved || target == StatusPosted
	case StatusApproved:
		return target == StatusPosted || target == StatusCanceled || target == StatusSent
	case StatusPosted:
		return target == StatusCanceled || target == StatusSent
	case StatusCanceled, StatusSent:
		return false
	}
	return false
}

// VatRates is the closed set of accepted VAT percentages
var VatRates = map[int]bool{0: true, 1: true, 10: true, 20: true}

// IsValidVatRate reports whether the rate belongs to the closed set
func IsValidVatRate(rate int) bool {
	return VatRates[rate]
}
