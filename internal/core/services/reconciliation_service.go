package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

var fullConfidence = decimal.NewFromInt(1)

// assignmentService applies operator assignments, transfers and splits.
type assignmentService struct {
	BaseService
	txRepo     portsrepo.TransactionWriter
	memberRepo portsrepo.MemberReader
}

// NewAssignmentService creates the service behind assign, transfer and split.
func NewAssignmentService(txRepo portsrepo.TransactionWriter, memberRepo portsrepo.MemberReader) portssvc.AssignmentSvc {
	return &assignmentService{txRepo: txRepo, memberRepo: memberRepo}
}

var _ portssvc.AssignmentSvc = (*assignmentService)(nil)

// AssignTransaction assigns an unassigned or draft transaction. Owned transactions are
// transferred instead, with the same-member check applied.
func (s *assignmentService) AssignTransaction(ctx context.Context, transactionID, memberID, operatorID string) (*domain.Transaction, error) {
	ctx = context.WithoutCancel(ctx)
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", transactionID), slog.String("member_id", memberID))

	if _, err := resolveActiveMember(ctx, s.memberRepo, memberID); err != nil {
		logger.Warn("Assign rejected: member lookup failed", slog.String("error", err.Error()))
		return nil, err
	}

	updated, err := s.txRepo.MutateTransaction(ctx, transactionID, func(cur domain.Transaction) (*domain.TransactionChange, error) {
		if cur.Assignment.IsOwned() {
			return transferChange(cur, memberID, "", operatorID)
		}
		return assignChange(cur, memberID, operatorID)
	})
	if err != nil {
		logger.Warn("Assign rejected", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Transaction assigned", slog.String("status", string(updated.Status())))
	return updated, nil
}

// TransferTransaction moves a transaction to toMemberID, superseding any split.
func (s *assignmentService) TransferTransaction(ctx context.Context, transactionID, toMemberID, notes, operatorID string) (*domain.Transaction, error) {
	ctx = context.WithoutCancel(ctx)
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", transactionID), slog.String("member_id", toMemberID))

	if _, err := resolveActiveMember(ctx, s.memberRepo, toMemberID); err != nil {
		logger.Warn("Transfer rejected: member lookup failed", slog.String("error", err.Error()))
		return nil, err
	}

	updated, err := s.txRepo.MutateTransaction(ctx, transactionID, func(cur domain.Transaction) (*domain.TransactionChange, error) {
		return transferChange(cur, toMemberID, notes, operatorID)
	})
	if err != nil {
		logger.Warn("Transfer rejected", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Transaction transferred")
	return updated, nil
}

// SplitTransaction replaces the ownership of a transaction with a set of member shares.
// Everything is validated before anything is written and the write is all-or-nothing.
func (s *assignmentService) SplitTransaction(ctx context.Context, transactionID string, recipients []domain.SplitRecipient, notes, operatorID string) (*domain.Transaction, error) {
	ctx = context.WithoutCancel(ctx)
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", transactionID), slog.Int("recipients", len(recipients)))

	if err := s.validateRecipients(ctx, recipients); err != nil {
		logger.Warn("Split rejected", slog.String("error", err.Error()))
		return nil, err
	}

	updated, err := s.txRepo.MutateTransaction(ctx, transactionID, func(cur domain.Transaction) (*domain.TransactionChange, error) {
		return splitChange(cur, recipients, notes, operatorID)
	})
	if err != nil {
		logger.Warn("Split rejected", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Transaction split", slog.String("amount", updated.Amount().StringFixed(2)))
	return updated, nil
}

// validateRecipients runs the checks that do not need the transaction row.
func (s *assignmentService) validateRecipients(ctx context.Context, recipients []domain.SplitRecipient) error {
	if len(recipients) == 0 {
		return apperrors.ErrEmptyRecipientSet
	}
	ids := make([]string, 0, len(recipients))
	seen := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		if !r.Amount.IsPositive() {
			return fmt.Errorf("%w: share for member %s is %s", apperrors.ErrInvalidAmount, r.MemberID, r.Amount.String())
		}
		if !r.Amount.Equal(r.Amount.Truncate(domain.AmountPlaces)) {
			return fmt.Errorf("%w: share for member %s is finer than a cent", apperrors.ErrInvalidAmount, r.MemberID)
		}
		if seen[r.MemberID] {
			return fmt.Errorf("%w: member %s is listed more than once", apperrors.ErrValidation, r.MemberID)
		}
		seen[r.MemberID] = true
		ids = append(ids, r.MemberID)
	}

	members, err := s.memberRepo.FindMembersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		m, ok := members[id]
		if !ok {
			return fmt.Errorf("%w: member %s", apperrors.ErrNotFound, id)
		}
		if !m.IsActive {
			return fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, id)
		}
	}
	return nil
}

func resolveActiveMember(ctx context.Context, repo portsrepo.MemberReader, memberID string) (*domain.Member, error) {
	if memberID == "" {
		return nil, fmt.Errorf("%w: member id is required", apperrors.ErrValidation)
	}
	m, err := repo.FindMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s", apperrors.ErrNotFound, memberID)
		}
		return nil, err
	}
	if !m.IsActive {
		return nil, fmt.Errorf("%w: member %s is inactive", apperrors.ErrValidation, memberID)
	}
	return m, nil
}

func assignChange(cur domain.Transaction, memberID, operatorID string) (*domain.TransactionChange, error) {
	if err := cur.EnsureAssignable(); err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(cur.Status(), domain.StatusManualAssigned, domain.ActorOperator); err != nil {
		return nil, err
	}

	ts := now()
	next := cur
	next.Assignment = domain.ManualAssigned(memberID)
	next.MatchConfidence = fullConfidence
	next.IsSplit = false
	next.LastUpdatedAt = ts
	next.LastUpdatedBy = operatorID

	return &domain.TransactionChange{
		Transaction: next,
		MatchLogs:   []domain.MatchLog{manualLog(cur.TransactionID, memberID, "manual assignment", operatorID, ts)},
	}, nil
}

func transferChange(cur domain.Transaction, toMemberID, notes, operatorID string) (*domain.TransactionChange, error) {
	if err := cur.EnsureAssignable(); err != nil {
		return nil, err
	}
	from, owned := cur.MemberID()
	if owned && from == toMemberID && !cur.IsSplit {
		return nil, fmt.Errorf("%w: transaction %s, member %s", apperrors.ErrSameMemberTransfer, cur.TransactionID, toMemberID)
	}
	if err := domain.ValidateTransition(cur.Status(), domain.StatusManualAssigned, domain.ActorOperator); err != nil {
		return nil, err
	}

	ts := now()
	record := &domain.TransferRecord{
		TransferID:     newID(),
		TransactionID:  cur.TransactionID,
		Mode:           domain.TransferSingle,
		TotalAmount:    cur.Amount(),
		Notes:          notes,
		PreviousStatus: cur.Status(),
		InitiatedBy:    operatorID,
		CreatedAt:      ts,
	}
	reason := "transferred"
	if owned {
		record.FromMemberID = &from
		reason = "transferred from member " + from
	}

	next := cur
	next.Assignment = domain.ManualAssigned(toMemberID)
	next.MatchConfidence = fullConfidence
	next.IsSplit = false
	next.LastUpdatedAt = ts
	next.LastUpdatedBy = operatorID

	return &domain.TransactionChange{
		Transaction:        next,
		ReplaceAllocations: true,
		Transfer:           record,
		MatchLogs:          []domain.MatchLog{manualLog(cur.TransactionID, toMemberID, reason, operatorID, ts)},
	}, nil
}

func splitChange(cur domain.Transaction, recipients []domain.SplitRecipient, notes, operatorID string) (*domain.TransactionChange, error) {
	if err := cur.EnsureAssignable(); err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(cur.Status(), domain.StatusManualAssigned, domain.ActorOperator); err != nil {
		return nil, err
	}
	total := cur.Amount()
	if err := domain.ValidateSplit(total, recipients); err != nil {
		return nil, err
	}

	ts := now()
	record := &domain.TransferRecord{
		TransferID:     newID(),
		TransactionID:  cur.TransactionID,
		Mode:           domain.TransferSplit,
		TotalAmount:    total,
		Notes:          notes,
		PreviousStatus: cur.Status(),
		InitiatedBy:    operatorID,
		CreatedAt:      ts,
	}
	if from, owned := cur.MemberID(); owned {
		record.FromMemberID = &from
	}

	allocations := make([]domain.SplitAllocation, 0, len(recipients))
	logs := make([]domain.MatchLog, 0, len(recipients))
	for _, r := range recipients {
		allocations = append(allocations, domain.SplitAllocation{
			AllocationID:  newID(),
			TransactionID: cur.TransactionID,
			TransferID:    record.TransferID,
			MemberID:      r.MemberID,
			Amount:        r.Amount,
			Notes:         r.Notes,
			CreatedAt:     ts,
			CreatedBy:     operatorID,
		})
		reason := fmt.Sprintf("split share %s of %s", r.Amount.StringFixed(2), total.StringFixed(2))
		logs = append(logs, manualLog(cur.TransactionID, r.MemberID, reason, operatorID, ts))
	}

	next := cur
	next.Assignment = domain.ManualAssigned(domain.PrimaryRecipient(recipients).MemberID)
	next.MatchConfidence = fullConfidence
	next.IsSplit = true
	next.LastUpdatedAt = ts
	next.LastUpdatedBy = operatorID

	return &domain.TransactionChange{
		Transaction:        next,
		ReplaceAllocations: true,
		Transfer:           record,
		Allocations:        allocations,
		MatchLogs:          logs,
	}, nil
}

func manualLog(transactionID, memberID, reason, operatorID string, ts time.Time) domain.MatchLog {
	op := operatorID
	return domain.MatchLog{
		MatchLogID:    newID(),
		TransactionID: transactionID,
		MemberID:      memberID,
		Confidence:    fullConfidence,
		Reason:        reason,
		Source:        domain.MatchSourceManual,
		OperatorID:    &op,
		CreatedAt:     ts,
	}
}
