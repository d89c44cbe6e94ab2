package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
)

const defaultBulkWorkers = 8

// bulkService fans single-item operations out over a bounded worker pool.
// Items never share a database transaction, so one failure cannot roll back another.
type bulkService struct {
	BaseService
	assignments portssvc.AssignmentSvc
	archives    portssvc.ArchiveSvc
	memberRepo  portsrepo.MemberReader
	workers     int
}

// BulkOption configures the bulk service
type BulkOption func(*bulkService)

// WithBulkWorkers bounds the number of items processed concurrently.
func WithBulkWorkers(n int) BulkOption {
	return func(s *bulkService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewBulkService creates the bulk operation coordinator.
func NewBulkService(assignments portssvc.AssignmentSvc, archives portssvc.ArchiveSvc, memberRepo portsrepo.MemberReader, options ...BulkOption) portssvc.BulkSvc {
	svc := &bulkService{
		assignments: assignments,
		archives:    archives,
		memberRepo:  memberRepo,
		workers:     defaultBulkWorkers,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.BulkSvc = (*bulkService)(nil)

// BulkAssign assigns every transaction to memberID. The member is resolved once; an unknown
// member fails the whole request, item failures are reported per id.
func (s *bulkService) BulkAssign(ctx context.Context, transactionIDs []string, memberID, operatorID string) (*domain.BulkResult, error) {
	ctx = context.WithoutCancel(ctx)
	ids, err := normalizeIDs(transactionIDs)
	if err != nil {
		return nil, err
	}
	if _, err := resolveActiveMember(ctx, s.memberRepo, memberID); err != nil {
		s.LogWarn(ctx, err, "Bulk assign rejected", slog.String("member_id", memberID))
		return nil, err
	}

	outcomes := s.run(ctx, ids, func(ctx context.Context, id string) error {
		_, err := s.assignments.AssignTransaction(ctx, id, memberID, operatorID)
		return err
	})

	result := &domain.BulkResult{Errors: []string{}}
	for i, err := range outcomes {
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, itemError(ids[i], err))
			continue
		}
		result.Success++
	}

	s.LogInfo(ctx, "Bulk assign completed",
		slog.String("member_id", memberID),
		slog.Int("success", result.Success),
		slog.Int("failed", result.Failed))
	return result, nil
}

// BulkArchive archives every transaction. Already archived items are reported as skipped.
func (s *bulkService) BulkArchive(ctx context.Context, transactionIDs []string, reason *string, operatorID string) (*domain.BulkResult, error) {
	ctx = context.WithoutCancel(ctx)
	ids, err := normalizeIDs(transactionIDs)
	if err != nil {
		return nil, err
	}

	outcomes := s.run(ctx, ids, func(ctx context.Context, id string) error {
		_, err := s.archives.ArchiveTransaction(ctx, id, reason, operatorID)
		return err
	})

	result := &domain.BulkResult{Errors: []string{}}
	for i, err := range outcomes {
		switch {
		case err == nil:
			result.Success++
		case errors.Is(err, apperrors.ErrAlreadyArchived):
			result.Skipped = append(result.Skipped, itemError(ids[i], err))
		default:
			result.Failed++
			result.Errors = append(result.Errors, itemError(ids[i], err))
		}
	}

	s.LogInfo(ctx, "Bulk archive completed",
		slog.Int("success", result.Success),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

// run applies op to every id and returns the errors in input order.
func (s *bulkService) run(ctx context.Context, ids []string, op func(context.Context, string) error) []error {
	outcomes := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = op(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// normalizeIDs rejects an empty request and drops repeated ids, keeping the first occurrence.
func normalizeIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one transaction id is required", apperrors.ErrValidation)
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%w: transaction id cannot be empty", apperrors.ErrValidation)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func itemError(id string, err error) string {
	return id + ": " + apperrors.Kind(err)
}
