package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// Repository provides access to partners
type Repository interface {
	shared.Repository[Partner]

	// FindByCode returns the partner with the given unique code
	FindByCode(ctx context.Context, code string) (*Partner, error)

	// FindPaginated returns partners matching the filter with a total count
	FindPaginated(ctx context.Context, filter shared.Filter) (shared.Paginated[Partner], error)
}

// CashAccountRepository provides access to cash accounts
type CashAccountRepository interface {
	shared.Repository[CashAccount]

	// FindByCode returns the account with the given unique code
	FindByCode(ctx context.Context, code string) (*CashAccount, error)

	// LockByID loads the account row under a write lock so concurrent
	// balance writes for the account serialize.
	LockByID(ctx context.Context, id uuid.UUID) (*CashAccount, error)
}
