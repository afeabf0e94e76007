package document

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// Repository provides access to documents and their lines
type Repository interface {
	shared.Repository[Document]

	// FindByExternalID returns the document carrying the idempotency key,
	// or shared.ErrNotFound when absent.
	FindByExternalID(ctx context.Context, externalID string) (*Document, error)

	// FindByNumber returns the document with the given type and number
	FindByNumber(ctx context.Context, docType DocumentType, number string) (*Document, error)

	// FindPaginated returns documents matching the filter with a total count
	FindPaginated(ctx context.Context, filter shared.Filter) (shared.Paginated[Document], error)

	// SaveWithLock persists the aggregate using its optimistic version,
	// returning shared.ErrConcurrencyConflict on a stale write.
	SaveWithLock(ctx context.Context, doc *Document, expectedVersion int) error

	// HardDelete removes a draft document and its lines permanently
	HardDelete(ctx context.Context, id uuid.UUID) error
}
