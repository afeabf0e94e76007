package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/backend/internal/application/masterdata"
	"github.com/tradebooks/backend/internal/domain/inventory"
	"github.com/tradebooks/backend/internal/domain/partner"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// CreateProductRequest creates a new product
type CreateProductRequest struct {
	Code       string          `json:"code" binding:"required,max=50"`
	Name       string          `json:"name" binding:"required,max=200"`
	BaseUom    string          `json:"base_uom" binding:"omitempty,max=20"`
	SalesPrice decimal.Decimal `json:"sales_price"`
	VatRate    int             `json:"vat_rate" binding:"omitempty,min=0,max=100"`
}

// ToCommand converts the request to an application command
func (r CreateProductRequest) ToCommand() masterdata.CreateProductCommand {
	return masterdata.CreateProductCommand{
		Code:       r.Code,
		Name:       r.Name,
		BaseUom:    r.BaseUom,
		SalesPrice: r.SalesPrice,
		VatRate:    r.VatRate,
	}
}

// UpdateProductRequest updates a product's descriptive fields
type UpdateProductRequest struct {
	Name       string          `json:"name" binding:"required,max=200"`
	SalesPrice decimal.Decimal `json:"sales_price"`
	VatRate    int             `json:"vat_rate" binding:"min=0,max=100"`
	Active     bool            `json:"active"`
	Version    int             `json:"version" binding:"required,min=1"`
}

// ToCommand converts the request to an application command
func (r UpdateProductRequest) ToCommand() masterdata.UpdateProductCommand {
	return masterdata.UpdateProductCommand{
		Name:            r.Name,
		SalesPrice:      r.SalesPrice,
		VatRate:         r.VatRate,
		Active:          r.Active,
		ExpectedVersion: r.Version,
	}
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	BaseUom     string          `json:"base_uom"`
	OnHand      decimal.Decimal `json:"on_hand"`
	ReservedQty decimal.Decimal `json:"reserved_qty"`
	Available   decimal.Decimal `json:"available"`
	CurrentCost decimal.Decimal `json:"current_cost"`
	SalesPrice  decimal.Decimal `json:"sales_price"`
	VatRate     int             `json:"vat_rate"`
	Active      bool            `json:"active"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewProductResponse maps a product to its API shape
func NewProductResponse(product *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Code:        product.Code,
		Name:        product.Name,
		BaseUom:     product.BaseUom,
		OnHand:      product.OnHand,
		ReservedQty: product.ReservedQty,
		Available:   product.Available(),
		CurrentCost: product.CurrentCost,
		SalesPrice:  product.SalesPrice,
		VatRate:     product.VatRate,
		Active:      product.Active,
		Version:     product.Version,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// NewProductResponses maps a slice of products
func NewProductResponses(products []inventory.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for idx := range products {
		out = append(out, NewProductResponse(&products[idx]))
	}
	return out
}

// OnHandResponse reports a product's on-hand quantity as of a date
type OnHandResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	OnHand    decimal.Decimal `json:"on_hand"`
	AsOf      *time.Time      `json:"as_of,omitempty"`
}

// StockMoveResponse is one row of a product's movement history
type StockMoveResponse struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"product_id"`
	MoveDate       time.Time        `json:"move_date"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	DocumentID     *uuid.UUID       `json:"document_id,omitempty"`
	ReversesMoveID *uuid.UUID       `json:"reverses_move_id,omitempty"`
}

// NewStockMoveResponses maps stock moves to their API shape
func NewStockMoveResponses(moves []inventory.StockMove) []StockMoveResponse {
	out := make([]StockMoveResponse, 0, len(moves))
	for _, move := range moves {
		out = append(out, StockMoveResponse{
			ID:             move.ID,
			ProductID:      move.ProductID,
			MoveDate:       move.MoveDate,
			Quantity:       move.Quantity,
			UnitCost:       move.UnitCost,
			DocumentID:     move.DocumentID,
			ReversesMoveID: move.ReversesMoveID,
		})
	}
	return out
}

// CreatePartnerRequest creates a new partner
type CreatePartnerRequest struct {
	Code  string `json:"code" binding:"required,max=50"`
	Name  string `json:"name" binding:"required,max=200"`
	Kind  string `json:"kind" binding:"required,oneof=CUSTOMER SUPPLIER BOTH"`
	TaxNo string `json:"tax_no" binding:"omitempty,max=20"`
	Email string `json:"email" binding:"omitempty,email,max=100"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
}

// ToCommand converts the request to an application command
func (r CreatePartnerRequest) ToCommand() masterdata.CreatePartnerCommand {
	return masterdata.CreatePartnerCommand{
		Code:  r.Code,
		Name:  r.Name,
		Kind:  partner.PartnerKind(r.Kind),
		TaxNo: r.TaxNo,
		Email: r.Email,
		Phone: r.Phone,
	}
}

// PartnerResponse is the API representation of a partner
type PartnerResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	TaxNo     string    `json:"tax_no,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPartnerResponse maps a partner to its API shape
func NewPartnerResponse(p *partner.Partner) PartnerResponse {
	return PartnerResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		Kind:      string(p.Kind),
		TaxNo:     p.TaxNo,
		Email:     p.Email,
		Phone:     p.Phone,
		Active:    p.Active,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// NewPartnerResponses maps a slice of partners
func NewPartnerResponses(partners []partner.Partner) []PartnerResponse {
	out := make([]PartnerResponse, 0, len(partners))
	for idx := range partners {
		out = append(out, NewPartnerResponse(&partners[idx]))
	}
	return out
}

// CreateCashAccountRequest creates a new cash account
type CreateCashAccountRequest struct {
	Code     string `json:"code" binding:"required,max=50"`
	Name     string `json:"name" binding:"required,max=200"`
	Kind     string `json:"kind" binding:"required,oneof=CASH BANK"`
	Currency string `json:"currency" binding:"required,currency"`
	Iban     string `json:"iban" binding:"omitempty,max=34"`
}

// ToCommand converts the request to an application command
func (r CreateCashAccountRequest) ToCommand() masterdata.CreateCashAccountCommand {
	return masterdata.CreateCashAccountCommand{
		Code:     r.Code,
		Name:     r.Name,
		Kind:     partner.CashAccountKind(r.Kind),
		Currency: valueobject.Currency(r.Currency),
		Iban:     r.Iban,
	}
}

// CashAccountResponse is the API representation of a cash account
type CashAccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Currency  string    `json:"currency"`
	Iban      string    `json:"iban,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCashAccountResponse maps a cash account to its API shape
func NewCashAccountResponse(account *partner.CashAccount) CashAccountResponse {
	return CashAccountResponse{
		ID:        account.ID,
		Code:      account.Code,
		Name:      account.Name,
		Kind:      string(account.Kind),
		Currency:  string(account.Currency),
		Iban:      account.Iban,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// NewCashAccountResponses maps a slice of cash accounts
func NewCashAccountResponses(accounts []partner.CashAccount) []CashAccountResponse {
	out := make([]CashAccountResponse, 0, len(accounts))
	for idx := range accounts {
		out = append(out, NewCashAccountResponse(&accounts[idx]))
	}
	return out
}
