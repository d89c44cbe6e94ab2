package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const operatorID = "op-1"

func registry() []domain.Member {
	return []domain.Member{
		{MemberID: "m-1", Name: "John Kamau", Phone: "0712345678", MemberCode: "EVM001", MemberNumber: "1001", IsActive: true},
		{MemberID: "m-2", Name: "Jonah Kamau", Phone: "+254722000111", MemberCode: "EVM002", MemberNumber: "1002", IsActive: true},
		{MemberID: "m-3", Name: "Grace Achieng", Phone: "254733999888", MemberCode: "EVM003", MemberNumber: "1003", IsActive: true},
		{MemberID: "m-4", Name: "Peter Otieno", Phone: "0744555666", MemberCode: "EVM004", IsActive: false},
	}
}

func newSeededStore(t *testing.T, txs ...domain.Transaction) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, m := range registry() {
		require.NoError(t, store.SaveMember(ctx, m))
	}
	if len(txs) > 0 {
		require.NoError(t, store.InsertTransactions(ctx, txs))
	}
	return store
}

func creditLine(id, particulars, amount string) domain.Transaction {
	return domain.Transaction{
		TransactionID:   id,
		StatementRef:    "STMT-2024-03",
		TransactionDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Particulars:     particulars,
		Credit:          decimal.RequireFromString(amount),
		Assignment:      domain.Unassigned(),
	}
}

// mutate forces a transaction into a given state, bypassing the services.
func mutate(t *testing.T, store *memory.Store, id string, apply func(*domain.Transaction)) {
	t.Helper()
	_, err := store.MutateTransaction(context.Background(), id, func(cur domain.Transaction) (*domain.TransactionChange, error) {
		next := cur
		apply(&next)
		return &domain.TransactionChange{Transaction: next}, nil
	})
	require.NoError(t, err)
}

// --- Mock MemberReader ---
type MockMemberReader struct {
	mock.Mock
}

func (m *MockMemberReader) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberReader) FindMembersByIDs(ctx context.Context, memberIDs []string) (map[string]domain.Member, error) {
	args := m.Called(ctx, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Member), args.Error(1)
}

func (m *MockMemberReader) ListActiveMembers(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

// --- Mock AssignmentSvc ---
type MockAssignmentSvc struct {
	mock.Mock
}

func (m *MockAssignmentSvc) AssignTransaction(ctx context.Context, transactionID, memberID, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, memberID, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockAssignmentSvc) TransferTransaction(ctx context.Context, transactionID, toMemberID, notes, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, toMemberID, notes, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockAssignmentSvc) SplitTransaction(ctx context.Context, transactionID string, recipients []domain.SplitRecipient, notes, operatorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID, recipients, notes, operatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
