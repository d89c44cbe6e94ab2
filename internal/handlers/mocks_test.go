package handlers_test

import (
	"context"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/SscSPs/reconciliation_engine/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock MatchingSvc ---
type MockMatchingService struct {
	mock.Mock
}

func (m *MockMatchingService) MatchUnassigned(ctx context.Context) (*domain.MatchSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchSummary), args.Error(1)
}

func (m *MockMatchingService) SuggestMembers(ctx context.Context, transactionID string) ([]domain.MatchCandidate, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchCandidate), args.Error(1)
}

// --- Mock AssignmentSvc ---
type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) AssignTransaction(ctx context.Context, transactionID, memberID, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, memberID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockAssignmentService) TransferTransaction(ctx context.Context, transactionID, toMemberID, notes, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, toMemberID, notes, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockAssignmentService) SplitTransaction(ctx context.Context, transactionID string, recipients []domain.SplitRecipient, notes, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, recipients, notes, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock ArchiveSvc ---
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveTransaction(ctx context.Context, transactionID string, reason *string, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, reason, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockArchiveService) RestoreTransaction(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock BulkSvc ---
type MockBulkService struct {
	mock.Mock
}

func (m *MockBulkService) BulkAssign(ctx context.Context, transactionIDs []string, memberID, operatorID string) (*domain.BulkResult, error) {
	args := m.Called(ctx, transactionIDs, memberID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkResult), args.Error(1)
}

func (m *MockBulkService) BulkArchive(ctx context.Context, transactionIDs []string, reason *string, operatorID string) (*domain.BulkResult, error) {
	args := m.Called(ctx, transactionIDs, reason, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkResult), args.Error(1)
}

// --- Mock TransactionQuerySvc ---
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockQueryService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockQueryService) GetMemberStatement(ctx context.Context, memberID string) (*dto.MemberStatementResponse, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MemberStatementResponse), args.Error(1)
}

// Ensure mocks implement the interfaces
var (
	_ portssvc.MatchingSvc         = (*MockMatchingService)(nil)
	_ portssvc.AssignmentSvc       = (*MockAssignmentService)(nil)
	_ portssvc.ArchiveSvc          = (*MockArchiveService)(nil)
	_ portssvc.BulkSvc             = (*MockBulkService)(nil)
	_ portssvc.TransactionQuerySvc = (*MockQueryService)(nil)
)
