package masterdata

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/inventory"
	"github.com/tradebooks/backend/internal/domain/partner"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// CreateProductCommand creates a new product
type CreateProductCommand struct {
	Code       string
	Name       string
	BaseUom    string
	SalesPrice decimal.Decimal
	VatRate    int
}

// UpdateProductCommand updates a product's mutable fields under its
// optimistic version.
type UpdateProductCommand struct {
	Name            string
	SalesPrice      decimal.Decimal
	VatRate         int
	Active          bool
	ExpectedVersion int
}

// CreatePartnerCommand creates a new partner
type CreatePartnerCommand struct {
	Code  string
	Name  string
	Kind  partner.PartnerKind
	TaxNo string
	Email string
	Phone string
}

// CreateCashAccountCommand creates a new cash account
type CreateCashAccountCommand struct {
	Code     string
	Name     string
	Kind     partner.CashAccountKind
	Currency valueobject.Currency
	Iban     string
}

// Service manages the master data the posting engine references:
// products, partners and cash accounts.
type Service struct {
	scope  posting.TransactionScope
	logger *zap.Logger
}

// NewService creates a master data service
func NewService(scope posting.TransactionScope, logger *zap.Logger) *Service {
	return &Service{scope: scope, logger: logger}
}

// CreateProduct creates a product with a unique code
func (s *Service) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*inventory.Product, error) {
	product, err := inventory.NewProduct(cmd.Code, cmd.Name, cmd.BaseUom)
	if err != nil {
		return nil, err
	}
	if cmd.SalesPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Sales price cannot be negative")
	}
	if cmd.VatRate != 0 && !document.IsValidVatRate(cmd.VatRate) {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate is not accepted")
	}
	product.SalesPrice = cmd.SalesPrice
	if cmd.VatRate != 0 {
		product.VatRate = cmd.VatRate
	}

	err = s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		if err := s.checkCodeFree(ctx, repos, cmd.Code); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code))
	return product, nil
}

// UpdateProduct changes a product's descriptive fields. Stock and cost
// fields are owned by the posting flow and never written here.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, cmd UpdateProductCommand) (*inventory.Product, error) {
	if cmd.SalesPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Sales price cannot be negative")
	}
	if !document.IsValidVatRate(cmd.VatRate) {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate is not accepted")
	}

	var product *inventory.Product
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		loaded, err := repos.ProductRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if loaded.Version != cmd.ExpectedVersion {
			return shared.ErrConcurrencyConflict
		}
		loaded.Name = cmd.Name
		loaded.SalesPrice = cmd.SalesPrice
		loaded.VatRate = cmd.VatRate
		loaded.Active = cmd.Active
		loaded.Touch()

		expected := loaded.Version
		loaded.IncrementVersion()
		if err := repos.ProductRepo().SaveWithLock(ctx, loaded, expected); err != nil {
			return err
		}
		product = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct loads a product by id
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	var product *inventory.Product
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		loaded, err := repos.ProductRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		product = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns products matching the filter
func (s *Service) ListProducts(ctx context.Context, filter shared.Filter) (shared.Paginated[inventory.Product], error) {
	var page shared.Paginated[inventory.Product]
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		result, err := repos.ProductRepo().FindPaginated(ctx, filter)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	return page, err
}

// OnHand sums a product's signed stock moves up to an optional date.
// With a nil date it equals the product's cached on-hand quantity.
func (s *Service) OnHand(ctx context.Context, productID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	var onHand decimal.Decimal
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, productID); err != nil {
			return err
		}
		value, err := repos.StockMoveRepo().OnHandAsOf(ctx, productID, asOf)
		if err != nil {
			return err
		}
		onHand = value
		return nil
	})
	return onHand, err
}

// StockMoves returns a product's moves in (date, id) order
func (s *Service) StockMoves(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMove, error) {
	var moves []inventory.StockMove
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		found, err := repos.StockMoveRepo().FindByProduct(ctx, productID, filter)
		if err != nil {
			return err
		}
		moves = found
		return nil
	})
	return moves, err
}

// CreatePartner creates a partner with a unique code
func (s *Service) CreatePartner(ctx context.Context, cmd CreatePartnerCommand) (*partner.Partner, error) {
	created, err := partner.NewPartner(cmd.Code, cmd.Name, cmd.Kind)
	if err != nil {
		return nil, err
	}
	created.TaxNo = cmd.TaxNo
	created.Email = cmd.Email
	created.Phone = cmd.Phone

	err = s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		_, err := repos.PartnerRepo().FindByCode(ctx, cmd.Code)
		if err == nil {
			return shared.ErrAlreadyExists
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return repos.PartnerRepo().Save(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("partner created",
		zap.String("partner_id", created.ID.String()),
		zap.String("code", created.Code))
	return created, nil
}

// GetPartner loads a partner by id
func (s *Service) GetPartner(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	var found *partner.Partner
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		loaded, err := repos.PartnerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		found = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListPartners returns partners matching the filter
func (s *Service) ListPartners(ctx context.Context, filter shared.Filter) (shared.Paginated[partner.Partner], error) {
	var page shared.Paginated[partner.Partner]
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		result, err := repos.PartnerRepo().FindPaginated(ctx, filter)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	return page, err
}

// DeactivatePartner marks a partner inactive. Ledger history keeps
// referencing it, so partners are never deleted.
func (s *Service) DeactivatePartner(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	var found *partner.Partner
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		loaded, err := repos.PartnerRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		loaded.Deactivate()
		if err := repos.PartnerRepo().Save(ctx, loaded); err != nil {
			return err
		}
		found = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// CreateCashAccount creates a cash account with a unique code
func (s *Service) CreateCashAccount(ctx context.Context, cmd CreateCashAccountCommand) (*partner.CashAccount, error) {
	account, err := partner.NewCashAccount(cmd.Code, cmd.Name, cmd.Kind, cmd.Currency)
	if err != nil {
		return nil, err
	}
	account.Iban = cmd.Iban

	err = s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		_, err := repos.CashAccountRepo().FindByCode(ctx, cmd.Code)
		if err == nil {
			return shared.ErrAlreadyExists
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return repos.CashAccountRepo().Save(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cash account created",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code))
	return account, nil
}

// GetCashAccount loads a cash account by id
func (s *Service) GetCashAccount(ctx context.Context, id uuid.UUID) (*partner.CashAccount, error) {
	var account *partner.CashAccount
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		loaded, err := repos.CashAccountRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		account = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListCashAccounts returns cash accounts matching the filter
func (s *Service) ListCashAccounts(ctx context.Context, filter shared.Filter) ([]partner.CashAccount, error) {
	var accounts []partner.CashAccount
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		found, err := repos.CashAccountRepo().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		accounts = found
		return nil
	})
	return accounts, err
}

func (s *Service) checkCodeFree(ctx context.Context, repos posting.TransactionalRepositories, code string) error {
	_, err := repos.ProductRepo().FindByCode(ctx, code)
	if err == nil {
		return shared.ErrAlreadyExists
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}
