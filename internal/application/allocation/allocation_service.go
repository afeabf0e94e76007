package allocation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradebooks/backend/internal/application/posting"
	"github.com/tradebooks/backend/internal/domain/ledger"
)

// AllocateCommand matches one invoice entry against one payment entry
type AllocateCommand struct {
	InvoiceEntryID uuid.UUID
	PaymentEntryID uuid.UUID
	Amount         decimal.Decimal
}

// Service matches payment-side ledger capacity against open invoices.
// Allocation rows and the entries' allocated amounts are persisted in
// one transaction under the entries' optimistic versions.
type Service struct {
	scope   posting.TransactionScope
	matcher *ledger.AllocationMatcher
	logger  *zap.Logger
}

// NewService creates an allocation service
func NewService(scope posting.TransactionScope, logger *zap.Logger) *Service {
	return &Service{
		scope:   scope,
		matcher: ledger.NewAllocationMatcher(),
		logger:  logger,
	}
}

// AutoAllocate greedily settles a partner's open invoices oldest due
// date first from the partner's open payment capacity.
func (s *Service) AutoAllocate(ctx context.Context, partnerID uuid.UUID) ([]*ledger.PaymentAllocation, error) {
	var allocations []*ledger.PaymentAllocation
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		entries, err := repos.PartnerLedgerRepo().FindOpenByPartner(ctx, partnerID)
		if err != nil {
			return err
		}
		versions := make(map[uuid.UUID]int, len(entries))
		for _, entry := range entries {
			versions[entry.ID] = entry.Version
		}

		matched, err := s.matcher.AutoAllocate(entries)
		if err != nil {
			return err
		}
		if len(matched) == 0 {
			return nil
		}
		if err := repos.AllocationRepo().SaveAll(ctx, matched); err != nil {
			return err
		}

		touched := make(map[uuid.UUID]bool, 2*len(matched))
		for _, row := range matched {
			touched[row.InvoiceEntryID] = true
			touched[row.PaymentEntryID] = true
		}
		for _, entry := range entries {
			if !touched[entry.ID] {
				continue
			}
			expected := versions[entry.ID]
			entry.IncrementVersion()
			if err := repos.PartnerLedgerRepo().SaveWithLock(ctx, entry, expected); err != nil {
				return err
			}
		}
		allocations = matched
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(allocations) > 0 {
		s.logger.Info("auto allocation completed",
			zap.String("partner_id", partnerID.String()),
			zap.Int("allocations", len(allocations)))
	}
	return allocations, nil
}

// Allocate settles a caller-chosen invoice/payment pair by the given amount
func (s *Service) Allocate(ctx context.Context, cmd AllocateCommand) (*ledger.PaymentAllocation, error) {
	var allocation *ledger.PaymentAllocation
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		invoice, err := repos.PartnerLedgerRepo().FindByID(ctx, cmd.InvoiceEntryID)
		if err != nil {
			return err
		}
		payment, err := repos.PartnerLedgerRepo().FindByID(ctx, cmd.PaymentEntryID)
		if err != nil {
			return err
		}
		invoiceVersion, paymentVersion := invoice.Version, payment.Version

		row, err := s.matcher.Allocate(invoice, payment, cmd.Amount)
		if err != nil {
			return err
		}
		if err := repos.AllocationRepo().SaveAll(ctx, []*ledger.PaymentAllocation{row}); err != nil {
			return err
		}
		invoice.IncrementVersion()
		if err := repos.PartnerLedgerRepo().SaveWithLock(ctx, invoice, invoiceVersion); err != nil {
			return err
		}
		payment.IncrementVersion()
		if err := repos.PartnerLedgerRepo().SaveWithLock(ctx, payment, paymentVersion); err != nil {
			return err
		}
		allocation = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}

// Deallocate deletes one allocation row and reopens both entries
func (s *Service) Deallocate(ctx context.Context, allocationID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		row, err := repos.AllocationRepo().FindByID(ctx, allocationID)
		if err != nil {
			return err
		}
		invoice, err := repos.PartnerLedgerRepo().FindByID(ctx, row.InvoiceEntryID)
		if err != nil {
			return err
		}
		payment, err := repos.PartnerLedgerRepo().FindByID(ctx, row.PaymentEntryID)
		if err != nil {
			return err
		}
		invoiceVersion, paymentVersion := invoice.Version, payment.Version

		if err := s.matcher.Deallocate(row, invoice, payment); err != nil {
			return err
		}
		if err := repos.AllocationRepo().Delete(ctx, row.ID); err != nil {
			return err
		}
		invoice.IncrementVersion()
		if err := repos.PartnerLedgerRepo().SaveWithLock(ctx, invoice, invoiceVersion); err != nil {
			return err
		}
		payment.IncrementVersion()
		return repos.PartnerLedgerRepo().SaveWithLock(ctx, payment, paymentVersion)
	})
}

// PartnerAllocations returns the allocation rows of a partner
func (s *Service) PartnerAllocations(ctx context.Context, partnerID uuid.UUID) ([]ledger.PaymentAllocation, error) {
	var rows []ledger.PaymentAllocation
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		found, err := repos.AllocationRepo().FindByPartner(ctx, partnerID)
		if err != nil {
			return err
		}
		rows = found
		return nil
	})
	return rows, err
}

// PartnerBalance returns the partner's debit minus credit total
func (s *Service) PartnerBalance(ctx context.Context, partnerID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		value, err := repos.PartnerLedgerRepo().BalanceOf(ctx, partnerID, nil)
		if err != nil {
			return err
		}
		balance = value
		return nil
	})
	return balance, err
}

// OpenEntries returns the partner's allocatable ledger entries
func (s *Service) OpenEntries(ctx context.Context, partnerID uuid.UUID) ([]*ledger.PartnerLedgerEntry, error) {
	var entries []*ledger.PartnerLedgerEntry
	err := s.scope.Execute(ctx, func(repos posting.TransactionalRepositories) error {
		found, err := repos.PartnerLedgerRepo().FindOpenByPartner(ctx, partnerID)
		if err != nil {
			return err
		}
		entries = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
