package partner

import (
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// CashAccountKind distinguishes till cash from bank accounts
type CashAccountKind string

const (
	CashKindCash CashAccountKind = "CASH"
	CashKindBank CashAccountKind = "BANK"
)

// CashAccount is an account whose running balance the cash ledger
// maintains. Balance-affecting writes serialize on this row's lock.
type CashAccount struct {
	shared.BaseAggregateRoot
	Code     string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string               `gorm:"type:varchar(200);not null"`
	Kind     CashAccountKind      `gorm:"type:varchar(16);not null;default:'CASH'"`
	Currency valueobject.Currency `gorm:"type:varchar(3);not null;default:'TRY'"`
	Iban     string               `gorm:"type:varchar(34)"`
	Active   bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for CashAccount
func (CashAccount) TableName() string {
	return "cash_accounts"
}

// NewCashAccount creates a new cash account
func NewCashAccount(code, name string, kind CashAccountKind, currency valueobject.Currency) (*CashAccount, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if kind != CashKindCash && kind != CashKindBank {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown cash account kind")
	}
	if currency == "" {
		currency = valueobject.BaseCurrency
	}
	if !currency.IsSupported() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}
	return &CashAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Kind:              kind,
		Currency:          currency,
		Active:            true,
	}, nil
}
