package partner

import (
	"github.com/tradebooks/backend/internal/domain/shared"
)

// PartnerKind classifies the trading relationship
type PartnerKind string

const (
	KindCustomer PartnerKind = "CUSTOMER"
	KindSupplier PartnerKind = "SUPPLIER"
	// KindBoth covers partners traded with in both directions
	KindBoth PartnerKind = "BOTH"
)

// IsValid checks if the kind is a known PartnerKind
func (k PartnerKind) IsValid() bool {
	switch k {
	case KindCustomer, KindSupplier, KindBoth:
		return true
	}
	return false
}

// Partner is a customer or supplier the ledger tracks balances for
type Partner struct {
	shared.BaseAggregateRoot
	Code   string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string      `gorm:"type:varchar(200);not null"`
	Kind   PartnerKind `gorm:"type:varchar(16);not null"`
	TaxNo  string      `gorm:"type:varchar(20)"`
	Email  string      `gorm:"type:varchar(100)"`
	Phone  string      `gorm:"type:varchar(30)"`
	Active bool        `gorm:"not null;default:true"`
}

// TableName returns the table name for Partner
func (Partner) TableName() string {
	return "partners"
}

// NewPartner creates a new partner
func NewPartner(code, name string, kind PartnerKind) (*Partner, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Partner code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown partner kind")
	}
	return &Partner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Kind:              kind,
		Active:            true,
	}, nil
}

// Deactivate marks the partner inactive; history is never deleted
func (p *Partner) Deactivate() {
	p.Active = false
	p.Touch()
}
