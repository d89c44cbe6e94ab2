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
	"github.com/SscSPs/reconciliation_engine/internal/dto"
	"github.com/SscSPs/reconciliation_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

type transactionQueryService struct {
	BaseService
	txRepo     portsrepo.TransactionRepositoryFacade
	memberRepo portsrepo.MemberReader
}

// NewTransactionQueryService creates the read side used by the listing and statement endpoints.
func NewTransactionQueryService(txRepo portsrepo.TransactionRepositoryFacade, memberRepo portsrepo.MemberReader) portssvc.TransactionQuerySvc {
	return &transactionQueryService{txRepo: txRepo, memberRepo: memberRepo}
}

var _ portssvc.TransactionQuerySvc = (*transactionQueryService)(nil)

func (s *transactionQueryService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	tx, err := s.txRepo.FindTransactionDetail(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return tx, nil
}

func (s *transactionQueryService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	transactions, nextToken, err := s.txRepo.ListTransactions(ctx, params.ToFilter(), limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, err
	}
	resp := dto.ToListTransactionsResponse(transactions, nextToken)
	return &resp, nil
}

// GetMemberStatement lists the committed lines credited to a member. Split transactions
// contribute the member's share rather than the full amount.
func (s *transactionQueryService) GetMemberStatement(ctx context.Context, memberID string) (*dto.MemberStatementResponse, error) {
	if _, err := s.memberRepo.FindMemberByID(ctx, memberID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: member %s", apperrors.ErrNotFound, memberID)
		}
		return nil, err
	}

	transactions, err := s.txRepo.ListMemberStatement(ctx, memberID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load member statement", slog.String("member_id", memberID))
		return nil, err
	}

	resp := &dto.MemberStatementResponse{
		MemberID: memberID,
		Total:    decimal.Zero,
		Lines:    make([]dto.MemberStatementLine, 0, len(transactions)),
	}
	for _, t := range transactions {
		amount := t.Amount()
		if t.IsSplit {
			amount = decimal.Zero
			for _, a := range t.Allocations {
				if a.MemberID == memberID {
					amount = amount.Add(a.Amount)
				}
			}
		}
		resp.Lines = append(resp.Lines, dto.MemberStatementLine{
			TransactionID:   t.TransactionID,
			TransactionDate: t.TransactionDate,
			Particulars:     t.Particulars,
			Amount:          amount,
			TotalAmount:     t.Amount(),
			IsSplit:         t.IsSplit,
			Status:          string(t.Status()),
		})
		resp.Total = resp.Total.Add(amount)
	}
	return resp, nil
}
