package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
)

// archiveService toggles the archive flag. Status, member and allocations are left untouched
// so that a restore is lossless.
type archiveService struct {
	BaseService
	txRepo portsrepo.TransactionWriter
}

// NewArchiveService creates the archive manager.
func NewArchiveService(txRepo portsrepo.TransactionWriter) portssvc.ArchiveSvc {
	return &archiveService{txRepo: txRepo}
}

var _ portssvc.ArchiveSvc = (*archiveService)(nil)

func (s *archiveService) ArchiveTransaction(ctx context.Context, transactionID string, reason *string, operatorID string) (*domain.Transaction, error) {
	ctx = context.WithoutCancel(ctx)

	updated, err := s.txRepo.MutateTransaction(ctx, transactionID, func(cur domain.Transaction) (*domain.TransactionChange, error) {
		if cur.IsArchived {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyArchived, transactionID)
		}
		// Duplicates are already out of every selection; the archive flag only applies to live lines.
		if cur.Status() == domain.StatusDuplicate {
			return nil, fmt.Errorf("%w: transaction %s is a duplicate", apperrors.ErrInvalidTransition, transactionID)
		}
		ts := now()
		next := cur
		next.IsArchived = true
		next.ArchiveReason = reason
		next.ArchivedAt = &ts
		next.LastUpdatedAt = ts
		next.LastUpdatedBy = operatorID
		return &domain.TransactionChange{Transaction: next}, nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Archive rejected", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction archived", slog.String("transaction_id", transactionID))
	return updated, nil
}

func (s *archiveService) RestoreTransaction(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	ctx = context.WithoutCancel(ctx)

	updated, err := s.txRepo.MutateTransaction(ctx, transactionID, func(cur domain.Transaction) (*domain.TransactionChange, error) {
		if !cur.IsArchived {
			return nil, fmt.Errorf("%w: transaction %s is not archived", apperrors.ErrInvalidTransition, transactionID)
		}
		next := cur
		next.IsArchived = false
		next.ArchiveReason = nil
		next.ArchivedAt = nil
		next.LastUpdatedAt = now()
		next.LastUpdatedBy = operatorID
		return &domain.TransactionChange{Transaction: next}, nil
	})
	if err != nil {
		s.LogWarn(ctx, err, "Restore rejected", slog.String("transaction_id", transactionID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction restored", slog.String("transaction_id", transactionID))
	return updated, nil
}
