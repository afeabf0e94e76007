package cash

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/document"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/domain/shared/valueobject"
)

// Poster posts cash documents through the document lifecycle
type Poster interface {
	SaveAndApprove(ctx context.Context, cmd posting.CreateDraftCommand) (*posting.PostingResult, error)
}

// SubmitCommand submits a receipt or payment in one step
type SubmitCommand struct {
	PartnerID     uuid.UUID
	CashAccountID uuid.UUID
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	FxRate        decimal.Decimal
	IssueDate     time.Time
	ExternalID    *string
	Remark        string
}

// SubmitResult reports the posted cash document and the account's new
// running balance.
type SubmitResult struct {
	Document      *document.Document
	Balance       decimal.Decimal
	AlreadyPosted bool
}

// Service handles cash account operations: receipt and payment
// submission, balance queries and running-balance recomputation after
// back-dated inserts.
type Service struct {
	scope  posting.TransactionScope
	poster Poster
	logger *zap.Logger
}

// NewService creates a cash service
func NewService(scope posting.TransactionScope, poster Poster, logger *zap.Logger) *Service {
	return &Service{scope: scope, poster: poster, logger: logger}
}

// SubmitReceipt posts money received from a partner: a partner credit
// and a cash debit in one transaction.
func (s *Service) SubmitReceipt(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	return s.submit(ctx, document.TypeReceipt, cmd)
}

// SubmitPayment posts money paid to a partner: a partner debit and a
// cash credit in one transaction.
func (s *Service) SubmitPayment(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error) {
	return s.submit(ctx, document.TypePayment, cmd)
}

func (s *Service) submit(ctx context.Context, docType document.DocumentType, cmd SubmitCommand) (*SubmitResult, error) {
	if !cmd.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Cash amount must be positive")
	}
	amount := cmd.Amount

	result, err := s.poster.SaveAndApprove(ctx, posting.CreateDraftCommand{
		DocType:       docType,
		IssueDate:     cmd.IssueDate,
		PartnerID:     &cmd.PartnerID,
		CashAccountID: &cmd.CashAccountID,
		Currency:      cmd.Currency,
		FxRate:        cmd.FxRate,
		ExternalID:    cmd.ExternalID,
		Remark:        cmd.Remark,
		CashAmount:    &amount,
	})
	if err != nil {
		return nil, err
	}

	balance, err := s.Balance(ctx, cmd.CashAccountID, nil)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{
		Document:      result.Document,
		Balance:       balance,
		AlreadyPosted: result.AlreadyPosted,
	}, nil
}

// Balance returns the account's debit minus credit total as of an
// optional date.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		value, err := repos.CashLedgerRepo().BalanceOf(ctx, accountID, asOf)
		if err != nil {
			return err
		}
		balance = value
		return nil
	})
	return balance, err
}

// Statement returns the account's entries in (date, id) order
func (s *Service) Statement(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]ledger.CashLedgerEntry, error) {
	var entries []ledger.CashLedgerEntry
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		found, err := repos.CashLedgerRepo().FindByAccount(ctx, accountID, filter)
		if err != nil {
			return err
		}
		entries = found
		return nil
	})
	return entries, err
}

// RecomputeBalances rewrites the account's running balance chain in
// strict (date, id) order and returns how many rows changed. Called
// after a back-dated entry lands in the middle of the chain. The
// account row lock serializes the rewrite against concurrent postings.
func (s *Service) RecomputeBalances(ctx context.Context, accountID uuid.UUID) (int, error) {
	var changed int
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		if _, err := repos.CashAccountRepo().LockByID(ctx, accountID); err != nil {
			return err
		}
		entries, err := repos.CashLedgerRepo().FindAllByAccountOrdered(ctx, accountID)
		if err != nil {
			return err
		}
		dirty := ledger.RecomputeBalances(entries)
		if len(dirty) == 0 {
			return nil
		}
		if err := repos.CashLedgerRepo().UpdateBalances(ctx, dirty); err != nil {
			return err
		}
		changed = len(dirty)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		s.logger.Info("cash balances recomputed",
			zap.String("account_id", accountID.String()),
			zap.Int("rows_changed", changed))
	}
	return changed, nil
}
