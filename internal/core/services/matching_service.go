package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/core/matching"
	portsrepo "github.com/SscSPs/reconciliation_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultMatchWorkers = 4

type matchOutcome int

const (
	outcomeSkipped matchOutcome = iota
	outcomeAutoAssigned
	outcomeDraft
	outcomeUnassigned
	outcomeDuplicate
)

// matchingService runs the sweep: score every matchable transaction and commit the result.
type matchingService struct {
	BaseService
	txRepo     portsrepo.TransactionRepositoryFacade
	memberRepo portsrepo.MemberReader
	policy     matching.Policy
	workers    int
}

// MatchingOption configures the matching service
type MatchingOption func(*matchingService)

// WithMatchingPolicy replaces the default thresholds and weights.
func WithMatchingPolicy(p matching.Policy) MatchingOption {
	return func(s *matchingService) {
		s.policy = p
	}
}

// WithMatchWorkers bounds the number of transactions scored concurrently.
func WithMatchWorkers(n int) MatchingOption {
	return func(s *matchingService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewMatchingService creates the matching sweep service.
func NewMatchingService(txRepo portsrepo.TransactionRepositoryFacade, memberRepo portsrepo.MemberReader, options ...MatchingOption) portssvc.MatchingSvc {
	svc := &matchingService{
		txRepo:     txRepo,
		memberRepo: memberRepo,
		policy:     matching.DefaultPolicy(),
		workers:    defaultMatchWorkers,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.MatchingSvc = (*matchingService)(nil)

// MatchUnassigned scores all unassigned and draft transactions against one registry snapshot.
// A transaction changed by an operator while the sweep runs is skipped.
func (s *matchingService) MatchUnassigned(ctx context.Context) (*domain.MatchSummary, error) {
	ctx = context.WithoutCancel(ctx)

	members, err := s.memberRepo.ListActiveMembers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load member registry for matching")
		return nil, err
	}
	ids, err := s.txRepo.ListMatchableTransactionIDs(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list matchable transactions")
		return nil, err
	}

	s.LogInfo(ctx, "Matching sweep started", slog.Int("transactions", len(ids)), slog.Int("members", len(members)))

	summary := &domain.MatchSummary{}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			outcome, err := s.matchOne(ctx, id, members)
			if err != nil {
				s.LogError(ctx, err, "Failed to match transaction", slog.String("transaction_id", id))
			}
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeAutoAssigned:
				summary.AutoAssigned++
			case outcomeDraft:
				summary.DraftAssigned++
			case outcomeUnassigned:
				summary.Unassigned++
			case outcomeDuplicate:
				summary.Duplicates++
			default:
				summary.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()
	summary.TotalProcessed = summary.AutoAssigned + summary.DraftAssigned + summary.Unassigned + summary.Duplicates

	s.LogInfo(ctx, "Matching sweep finished",
		slog.Int("auto_assigned", summary.AutoAssigned),
		slog.Int("draft_assigned", summary.DraftAssigned),
		slog.Int("unassigned", summary.Unassigned),
		slog.Int("duplicates", summary.Duplicates),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

// SuggestMembers returns the ranked candidates for one transaction without writing.
func (s *matchingService) SuggestMembers(ctx context.Context, transactionID string) ([]domain.MatchCandidate, error) {
	tx, err := s.txRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListActiveMembers(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load member registry for suggestions")
		return nil, err
	}
	return matching.Score(*tx, members, s.policy).Ranked, nil
}

func (s *matchingService) matchOne(ctx context.Context, transactionID string, members []domain.Member) (matchOutcome, error) {
	snapshot, err := s.txRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return outcomeSkipped, err
	}
	if !snapshot.IsMatchable() {
		return outcomeSkipped, nil
	}

	duplicate, err := s.isDuplicate(ctx, *snapshot)
	if err != nil {
		return outcomeSkipped, err
	}

	var result matching.Result
	target := domain.Duplicate()
	outcome := outcomeDuplicate
	if !duplicate {
		result = matching.Score(*snapshot, members, s.policy)
		target = result.Assignment()
		switch result.Decision {
		case matching.DecisionAutoAssign:
			outcome = outcomeAutoAssigned
		case matching.DecisionDraft:
			outcome = outcomeDraft
		default:
			outcome = outcomeUnassigned
		}
	}

	skipped := false
	_, err = s.txRepo.MutateTransaction(ctx, transactionID, func(cur domain.Transaction) (*domain.TransactionChange, error) {
		if !cur.IsMatchable() || cur.Version != snapshot.Version {
			skipped = true
			return nil, nil
		}
		if sameAssignment(cur.Assignment, target) {
			return nil, nil
		}
		if err := domain.ValidateTransition(cur.Status(), target.Status(), domain.ActorMatcher); err != nil {
			return nil, err
		}
		return sweepChange(cur, target, result), nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			return outcomeSkipped, nil
		}
		return outcomeSkipped, fmt.Errorf("failed to commit match for %s: %w", transactionID, err)
	}
	if skipped {
		return outcomeSkipped, nil
	}
	return outcome, nil
}

// isDuplicate reports whether an earlier ingested transaction carries the same signature.
func (s *matchingService) isDuplicate(ctx context.Context, tx domain.Transaction) (bool, error) {
	first, err := s.txRepo.FindFirstWithSignature(ctx, tx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return first.TransactionID != tx.TransactionID, nil
}

func sweepChange(cur domain.Transaction, target domain.Assignment, result matching.Result) *domain.TransactionChange {
	ts := now()
	next := cur
	next.Assignment = target
	next.MatchConfidence = decimal.Zero
	if target.Status() != domain.StatusDuplicate {
		next.MatchConfidence = result.Confidence
	}
	next.LastUpdatedAt = ts
	next.LastUpdatedBy = domain.SystemActor

	logs := make([]domain.MatchLog, 0, len(result.Candidates))
	if target.Status() != domain.StatusDuplicate {
		for _, c := range result.Candidates {
			logs = append(logs, domain.MatchLog{
				MatchLogID:    newID(),
				TransactionID: cur.TransactionID,
				MemberID:      c.MemberID,
				Confidence:    c.Confidence,
				Reason:        c.Reason,
				Source:        domain.MatchSourceAuto,
				CreatedAt:     ts,
			})
		}
	}
	return &domain.TransactionChange{Transaction: next, MatchLogs: logs}
}

// sameAssignment keeps repeated sweeps from rewriting an unchanged outcome.
func sameAssignment(a, b domain.Assignment) bool {
	if a.Status() != b.Status() {
		return false
	}
	am, _ := a.MemberID()
	bm, _ := b.MemberID()
	if am != bm {
		return false
	}
	ac, bc := a.Candidates(), b.Candidates()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if ac[i].MemberID != bc[i].MemberID || !ac[i].Confidence.Equal(bc[i].Confidence) {
			return false
		}
	}
	return true
}
