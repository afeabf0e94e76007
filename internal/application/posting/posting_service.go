package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/integration"
	"github.com/tradebooks/backend/internal/domain/inventory"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// Service orchestrates the document lifecycle. Every transition runs
// inside one transaction scope: guard checks, number minting, stock
// moves, ledger rows and the status change commit or roll back as a
// unit.
type Service struct {
	scope       TransactionScope
	guard       *document.Guard
	costing     *inventory.CostingService
	ledger      *ledger.PostingService
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	einvoice    integration.EInvoiceAdapter
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a posting service
func NewService(scope TransactionScope, logger *zap.Logger) *Service {
	return &Service{
		scope:      scope,
		guard:      document.NewGuard(),
		costing:    inventory.NewCostingService(),
		ledger:     ledger.NewPostingService(),
		idemConfig: shared.DefaultIdempotencyConfig(),
		logger:     logger,
		now:        time.Now,
	}
}

// SetIdempotencyStore enables the fast-path duplicate check for
// externally submitted documents. The unique constraint on external_id
// remains the source of truth.
func (s *Service) SetIdempotencyStore(store shared.IdempotencyStore, config shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = config
}

// SetEInvoiceAdapter enables e-invoice transmission for posted invoices
func (s *Service) SetEInvoiceAdapter(adapter integration.EInvoiceAdapter) {
	s.einvoice = adapter
}

// CreateDraft creates a new draft document with its lines. Drafts have
// no number and no stock or ledger effect.
func (s *Service) CreateDraft(ctx context.Context, cmd CreateDraftCommand) (*document.Document, error) {
	if err := s.checkExternalFastPath(ctx, cmd.ExternalID); err != nil {
		return nil, err
	}

	doc, err := s.buildDraft(cmd)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := s.checkExternalUnique(ctx, repos, cmd.ExternalID); err != nil {
			return err
		}
		return repos.DocumentRepo().Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("draft created",
		zap.String("document_id", doc.ID.String()),
		zap.String("doc_type", doc.DocType.String()))
	return doc, nil
}

// UpdateDraft replaces the header fields and lines of a draft under its
// optimistic version.
func (s *Service) UpdateDraft(ctx context.Context, id uuid.UUID, cmd UpdateDraftCommand) (*document.Document, error) {
	var doc *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := repos.DocumentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if loaded.Version != cmd.ExpectedVersion {
			return shared.ErrConcurrencyConflict
		}
		if !loaded.Status.IsMutable() {
			return shared.ErrInvalidState
		}

		if cmd.DueDate != nil {
			if err := loaded.SetDueDate(*cmd.DueDate); err != nil {
				return err
			}
		}
		if cmd.WarehouseID != nil {
			if err := loaded.SetWarehouse(*cmd.WarehouseID); err != nil {
				return err
			}
		}
		loaded.SetRemark(cmd.Remark)

		for len(loaded.Lines) > 0 {
			if err := loaded.RemoveLine(loaded.Lines[0].ID); err != nil {
				return err
			}
		}
		if err := s.addLines(loaded, cmd.Lines); err != nil {
			return err
		}

		expected := loaded.Version
		loaded.IncrementVersion()
		if err := repos.DocumentRepo().SaveWithLock(ctx, loaded, expected); err != nil {
			return err
		}
		doc = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDraft permanently removes a draft and its lines. Posted
// documents are never deleted, only cancelled.
func (s *Service) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !doc.Status.IsMutable() {
			return shared.ErrInvalidState
		}
		return repos.DocumentRepo().HardDelete(ctx, id)
	})
}

// Approve posts a draft: validates it, mints its number, writes the
// stock moves and ledger rows its type implies and advances the status.
// Re-approving a document already posted under an external id is an
// idempotent no-op.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*PostingResult, error) {
	var result *PostingResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if doc.Status.IsPosted() && doc.ExternalID != nil {
			result = &PostingResult{Document: doc, AlreadyPosted: true}
			return nil
		}
		posted, err := s.post(ctx, repos, doc)
		if err != nil {
			return err
		}
		result = posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.markProcessed(ctx, result)
	return result, nil
}

// SaveAndApprove creates and posts a document in one transaction. Only
// adjustment-style and cash document types allow the combined step.
func (s *Service) SaveAndApprove(ctx context.Context, cmd CreateDraftCommand) (*PostingResult, error) {
	if !cmd.DocType.SupportsSaveAndApprove() {
		return nil, shared.NewDomainError("UNSUPPORTED_DOC_TYPE",
			fmt.Sprintf("Document type %s cannot be saved and approved in one step", cmd.DocType))
	}
	if err := s.checkExternalFastPath(ctx, cmd.ExternalID); err != nil {
		return nil, err
	}

	doc, err := s.buildDraft(cmd)
	if err != nil {
		return nil, err
	}

	var result *PostingResult
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := s.checkExternalUnique(ctx, repos, cmd.ExternalID); err != nil {
			return err
		}
		if err := repos.DocumentRepo().Save(ctx, doc); err != nil {
			return err
		}
		posted, err := s.post(ctx, repos, doc)
		if err != nil {
			return err
		}
		result = posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.markProcessed(ctx, result)
	return result, nil
}

// Cancel reverses a posted document: compensating stock moves at the
// original cost, offsetting ledger rows, released reservations and the
// CANCELED status all commit in one transaction.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, cmd CancelCommand) (*document.Document, error) {
	var doc *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := repos.DocumentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cmd.ExpectedVersion > 0 && loaded.Version != cmd.ExpectedVersion {
			return shared.ErrConcurrencyConflict
		}
		docVersion := loaded.Version
		now := s.now()

		if err := loaded.MarkCanceled(cmd.Reason); err != nil {
			return err
		}

		if err := s.reverseStock(ctx, repos, loaded, now); err != nil {
			return err
		}
		if err := s.releaseReservations(ctx, repos, loaded); err != nil {
			return err
		}
		if err := s.reversePartnerLedger(ctx, repos, loaded, now); err != nil {
			return err
		}
		if err := s.reverseCashLedger(ctx, repos, loaded, now); err != nil {
			return err
		}

		loaded.IncrementVersion()
		if err := repos.DocumentRepo().SaveWithLock(ctx, loaded, docVersion); err != nil {
			return err
		}
		doc = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document cancelled",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.String("reason", cmd.Reason))
	return doc, nil
}

// ConvertSalesOrderToDispatch creates a new draft dispatch note from a
// posted sales order. The source document is left untouched.
func (s *Service) ConvertSalesOrderToDispatch(ctx context.Context, sourceID uuid.UUID) (*document.Document, error) {
	return s.convert(ctx, sourceID, document.TypeSalesOrder, document.TypeDispatchNote)
}

// ConvertDispatchToInvoice creates a new draft sales invoice from a
// posted dispatch note. The source document is left untouched.
func (s *Service) ConvertDispatchToInvoice(ctx context.Context, sourceID uuid.UUID) (*document.Document, error) {
	return s.convert(ctx, sourceID, document.TypeDispatchNote, document.TypeSalesInvoice)
}

// SendEInvoice transmits a posted sales invoice to the e-invoice
// provider and marks the document SENT. Transmission happens outside
// the status transaction so a slow provider never holds database locks.
func (s *Service) SendEInvoice(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	if s.einvoice == nil {
		return nil, shared.NewDomainError("EINVOICE_DISABLED", "No e-invoice provider is configured")
	}

	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.DocType != document.TypeSalesInvoice {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Only sales invoices can be transmitted")
	}
	if !doc.Status.CanTransitionTo(document.StatusSent) {
		return nil, shared.ErrInvalidState
	}

	if err := s.einvoice.Send(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to transmit invoice %s: %w", doc.Number, err)
	}
	return s.MarkSent(ctx, id)
}

// MarkSent records an out-of-band e-invoice transmission on the document
func (s *Service) MarkSent(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var doc *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := repos.DocumentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		expected := loaded.Version
		if err := loaded.MarkSent(); err != nil {
			return err
		}
		loaded.IncrementVersion()
		if err := repos.DocumentRepo().SaveWithLock(ctx, loaded, expected); err != nil {
			return err
		}
		doc = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument loads a document with its lines
func (s *Service) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var doc *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		loaded, err := repos.DocumentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		doc = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns documents matching the filter
func (s *Service) ListDocuments(ctx context.Context, filter shared.Filter) (shared.Paginated[document.Document], error) {
	var page shared.Paginated[document.Document]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		result, err := repos.DocumentRepo().FindPaginated(ctx, filter)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	return page, err
}

// post runs the full posting sequence for a draft inside the caller's
// transaction: guard, totals, number, stock, ledger, status.
func (s *Service) post(ctx context.Context, repos TransactionalRepositories, doc *document.Document) (*PostingResult, error) {
	if doc.Status != document.StatusDraft {
		return nil, shared.ErrInvalidState
	}
	docVersion := doc.Version

	if err := s.guard.CheckDocument(doc); err != nil {
		return nil, err
	}
	doc.RecalculateTotals()

	products, productIDs, err := s.loadProducts(ctx, repos, doc)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckStock(ctx, doc, mapStockView(products)); err != nil {
		return nil, err
	}

	now := s.now()
	number, err := document.NewNumberGenerator(repos.SequenceRepo()).NextNumber(ctx, doc.DocType, doc.IssueDate)
	if err != nil {
		return nil, err
	}
	if err := doc.MarkApproved(number, now); err != nil {
		return nil, err
	}

	moves, err := s.costing.PostDocument(doc, products)
	if err != nil {
		return nil, err
	}

	partnerEntry, err := s.ledger.PartnerEntryForDocument(doc)
	if err != nil {
		return nil, err
	}
	cashEntry, err := s.buildCashEntry(ctx, repos, doc)
	if err != nil {
		return nil, err
	}
	rows := make([]document.LedgerRow, 0, 2)
	if partnerEntry != nil {
		rows = append(rows, partnerEntry)
	}
	if cashEntry != nil {
		rows = append(rows, cashEntry)
	}
	if err := document.CheckLedgerRows(rows); err != nil {
		return nil, err
	}

	if doc.DocType == document.TypeSalesOrder {
		if err := s.reserveLines(doc, products); err != nil {
			return nil, err
		}
	}

	if len(moves) > 0 {
		if err := repos.StockMoveRepo().SaveAll(ctx, moves); err != nil {
			return nil, err
		}
	}
	if doc.DocType.StockDirection() != document.StockNone || doc.DocType == document.TypeSalesOrder {
		if err := s.saveProducts(ctx, repos, products, productIDs); err != nil {
			return nil, err
		}
	}
	if partnerEntry != nil {
		if err := repos.PartnerLedgerRepo().Save(ctx, partnerEntry); err != nil {
			return nil, err
		}
	}
	if cashEntry != nil {
		if err := repos.CashLedgerRepo().Save(ctx, cashEntry); err != nil {
			return nil, err
		}
	}

	doc.IncrementVersion()
	if err := repos.DocumentRepo().SaveWithLock(ctx, doc, docVersion); err != nil {
		return nil, err
	}

	s.logger.Info("document posted",
		zap.String("document_id", doc.ID.String()),
		zap.String("doc_type", doc.DocType.String()),
		zap.String("number", doc.Number),
		zap.String("gross", doc.GrossTotal.String()))
	return &PostingResult{Document: doc}, nil
}

func (s *Service) buildDraft(cmd CreateDraftCommand) (*document.Document, error) {
	doc, err := document.NewDocument(cmd.DocType, cmd.IssueDate, cmd.Currency, cmd.FxRate)
	if err != nil {
		return nil, err
	}
	if cmd.PartnerID != nil {
		if err := doc.SetPartner(*cmd.PartnerID); err != nil {
			return nil, err
		}
	} else if cmd.DocType.RequiresPartner() {
		return nil, shared.NewDomainError("INVALID_PARTNER",
			fmt.Sprintf("Document type %s requires a partner", cmd.DocType))
	}
	if cmd.DocType.IsCashDocument() {
		if cmd.CashAccountID == nil {
			return nil, shared.NewDomainError("INVALID_CASH_ACCOUNT", "Cash document requires a cash account")
		}
		if err := doc.SetCashAccount(*cmd.CashAccountID); err != nil {
			return nil, err
		}
	}
	if cmd.WarehouseID != nil {
		if err := doc.SetWarehouse(*cmd.WarehouseID); err != nil {
			return nil, err
		}
	}
	if cmd.DueDate != nil {
		if err := doc.SetDueDate(*cmd.DueDate); err != nil {
			return nil, err
		}
	}
	if cmd.ExternalID != nil {
		if err := doc.SetExternalID(*cmd.ExternalID); err != nil {
			return nil, err
		}
	}
	doc.SetRemark(cmd.Remark)

	if cmd.DocType.IsCashDocument() {
		if cmd.CashAmount == nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Cash document requires an amount")
		}
		if _, err := doc.AddCashLine(cmd.Remark, *cmd.CashAmount); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err := s.addLines(doc, cmd.Lines); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) addLines(doc *document.Document, lines []LineInput) error {
	for _, input := range lines {
		if doc.DocType == document.TypeStockCount {
			if input.CountedQty == nil {
				return shared.ErrInvalidQuantity
			}
			if _, err := doc.AddCountLine(input.ProductID, input.Description, *input.CountedQty); err != nil {
				return err
			}
			continue
		}
		coefficient := input.UomCoefficient
		if coefficient.IsZero() {
			coefficient = decimal.NewFromInt(1)
		}
		if _, err := doc.AddLine(input.ProductID, input.Description, input.UomCode,
			input.Quantity, coefficient, input.UnitPrice, input.DiscountPct, input.VatRate); err != nil {
			return err
		}
		added := &doc.Lines[len(doc.Lines)-1]
		added.SourceLocation = input.SourceLocation
		added.DestLocation = input.DestLocation
	}
	return nil
}

// loadProducts loads every product the document references, keyed by
// id. Cash lines reference no product and are skipped.
func (s *Service) loadProducts(ctx context.Context, repos TransactionalRepositories, doc *document.Document) (map[uuid.UUID]*inventory.Product, []uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		if line.ProductID == uuid.Nil || seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true
		ids = append(ids, line.ProductID)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*inventory.Product{}, nil, nil
	}

	products, err := repos.ProductRepo().FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		if products[id] == nil {
			return nil, nil, fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
		}
	}
	return products, ids, nil
}

func (s *Service) saveProducts(ctx context.Context, repos TransactionalRepositories, products map[uuid.UUID]*inventory.Product, ids []uuid.UUID) error {
	for _, id := range ids {
		product := products[id]
		expected := product.Version
		product.IncrementVersion()
		if err := repos.ProductRepo().SaveWithLock(ctx, product, expected); err != nil {
			return err
		}
	}
	return nil
}

// buildCashEntry locks the cash account row and chains the new entry
// onto the account's latest running balance.
func (s *Service) buildCashEntry(ctx context.Context, repos TransactionalRepositories, doc *document.Document) (*ledger.CashLedgerEntry, error) {
	if !doc.DocType.IsCashDocument() {
		return nil, nil
	}
	if doc.CashAccountID == nil {
		return nil, shared.NewDomainError("INVALID_CASH_ACCOUNT", "Cash document requires a cash account")
	}
	if _, err := repos.CashAccountRepo().LockByID(ctx, *doc.CashAccountID); err != nil {
		return nil, err
	}
	previous, err := s.latestBalance(ctx, repos, *doc.CashAccountID)
	if err != nil {
		return nil, err
	}
	return s.ledger.CashEntryForDocument(doc, previous)
}

func (s *Service) latestBalance(ctx context.Context, repos TransactionalRepositories, accountID uuid.UUID) (decimal.Decimal, error) {
	latest, err := repos.CashLedgerRepo().FindLatestByAccount(ctx, accountID)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return latest.Balance, nil
}

func (s *Service) reserveLines(doc *document.Document, products map[uuid.UUID]*inventory.Product) error {
	for _, line := range doc.Lines {
		product := products[line.ProductID]
		if product == nil {
			return shared.ErrNotFound
		}
		if err := product.Reserve(line.BaseQuantity()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) reverseStock(ctx context.Context, repos TransactionalRepositories, doc *document.Document, at time.Time) error {
	moves, err := repos.StockMoveRepo().FindByDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	originals := make([]inventory.StockMove, 0, len(moves))
	for _, move := range moves {
		if move.ReversesMoveID == nil {
			originals = append(originals, move)
		}
	}
	if len(originals) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(originals))
	for _, move := range originals {
		if !seen[move.ProductID] {
			seen[move.ProductID] = true
			ids = append(ids, move.ProductID)
		}
	}
	products, err := repos.ProductRepo().FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	reversals, err := s.costing.ReverseMoves(originals, products, at)
	if err != nil {
		return err
	}
	if err := repos.StockMoveRepo().SaveAll(ctx, reversals); err != nil {
		return err
	}
	return s.saveProducts(ctx, repos, products, ids)
}

// releaseReservations frees the stock an approved sales order held
func (s *Service) releaseReservations(ctx context.Context, repos TransactionalRepositories, doc *document.Document) error {
	if doc.DocType != document.TypeSalesOrder {
		return nil
	}
	products, ids, err := s.loadProducts(ctx, repos, doc)
	if err != nil {
		return err
	}
	for _, line := range doc.Lines {
		product := products[line.ProductID]
		if product == nil {
			continue
		}
		if err := product.Release(line.BaseQuantity()); err != nil {
			return err
		}
	}
	return s.saveProducts(ctx, repos, products, ids)
}

func (s *Service) reversePartnerLedger(ctx context.Context, repos TransactionalRepositories, doc *document.Document, at time.Time) error {
	entries, err := repos.PartnerLedgerRepo().FindByDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	for idx := range entries {
		entry := &entries[idx]
		if entry.ReversesEntryID != nil {
			continue
		}
		reversal := s.ledger.ReversePartnerEntries([]ledger.PartnerLedgerEntry{*entry}, at)[0]
		if err := repos.PartnerLedgerRepo().Save(ctx, reversal); err != nil {
			return err
		}
		expected := entry.Version
		entry.Close()
		entry.IncrementVersion()
		if err := repos.PartnerLedgerRepo().SaveWithLock(ctx, entry, expected); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) reverseCashLedger(ctx context.Context, repos TransactionalRepositories, doc *document.Document, at time.Time) error {
	if doc.CashAccountID == nil {
		return nil
	}
	rows, err := repos.CashLedgerRepo().FindByDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	for idx := range rows {
		row := &rows[idx]
		if row.ReversesEntryID != nil {
			continue
		}
		if _, err := repos.CashAccountRepo().LockByID(ctx, row.CashAccountID); err != nil {
			return err
		}
		previous, err := s.latestBalance(ctx, repos, row.CashAccountID)
		if err != nil {
			return err
		}
		reversal := row.Reverse(at, previous)
		if err := repos.CashLedgerRepo().Save(ctx, reversal); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) convert(ctx context.Context, sourceID uuid.UUID, fromType, toType document.DocumentType) (*document.Document, error) {
	var doc *document.Document
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.DocumentRepo().FindByID(ctx, sourceID)
		if err != nil {
			return err
		}
		if source.DocType != fromType {
			return shared.NewDomainError("INVALID_DOC_TYPE",
				fmt.Sprintf("Cannot convert a %s document to %s", source.DocType, toType))
		}
		if !source.Status.IsPosted() {
			return shared.ErrInvalidState
		}

		target, err := document.NewDocument(toType, s.now(), source.Currency, source.FxRate)
		if err != nil {
			return err
		}
		if source.PartnerID != nil {
			if err := target.SetPartner(*source.PartnerID); err != nil {
				return err
			}
		}
		if source.WarehouseID != nil {
			if err := target.SetWarehouse(*source.WarehouseID); err != nil {
				return err
			}
		}
		if source.DueDate != nil {
			if err := target.SetDueDate(*source.DueDate); err != nil {
				return err
			}
		}
		target.SetRemark(fmt.Sprintf("From %s", source.Number))
		for _, line := range source.Lines {
			if _, err := target.AddLine(line.ProductID, line.Description, line.UomCode,
				line.Quantity, line.UomCoefficient, line.UnitPrice, line.DiscountPct, line.VatRate); err != nil {
				return err
			}
		}
		if err := repos.DocumentRepo().Save(ctx, target); err != nil {
			return err
		}
		doc = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document converted",
		zap.String("source_id", sourceID.String()),
		zap.String("target_id", doc.ID.String()),
		zap.String("target_type", doc.DocType.String()))
	return doc, nil
}

// checkExternalFastPath consults the idempotency store before opening a
// transaction. Store failures degrade to the database check.
func (s *Service) checkExternalFastPath(ctx context.Context, externalID *string) error {
	if s.idempotency == nil || !s.idemConfig.Enabled || externalID == nil {
		return nil
	}
	processed, err := s.idempotency.IsProcessed(ctx, *externalID)
	if err != nil {
		s.logger.Warn("idempotency store check failed", zap.Error(err))
		return nil
	}
	if processed {
		return shared.ErrDuplicateExternalID
	}
	return nil
}

func (s *Service) checkExternalUnique(ctx context.Context, repos TransactionalRepositories, externalID *string) error {
	if externalID == nil {
		return nil
	}
	_, err := repos.DocumentRepo().FindByExternalID(ctx, *externalID)
	if err == nil {
		return shared.ErrDuplicateExternalID
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}

// markProcessed records a successful posting in the idempotency store,
// best effort.
func (s *Service) markProcessed(ctx context.Context, result *PostingResult) {
	if s.idempotency == nil || !s.idemConfig.Enabled {
		return
	}
	if result == nil || result.AlreadyPosted || result.Document.ExternalID == nil {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, *result.Document.ExternalID, s.idemConfig.TTL); err != nil {
		s.logger.Warn("idempotency store mark failed", zap.Error(err))
	}
}

// mapStockView adapts the products loaded for a posting into the
// guard's stock view.
type mapStockView map[uuid.UUID]*inventory.Product

// OnHand returns the loaded product's on-hand quantity
func (v mapStockView) OnHand(_ context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	product, ok := v[productID]
	if !ok || product == nil {
		return decimal.Zero, shared.ErrNotFound
	}
	return product.OnHand, nil
}
