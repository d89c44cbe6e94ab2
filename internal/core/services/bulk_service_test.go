package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	portssvc "github.com/SscSPs/reconciliation_engine/internal/core/ports/services"
	"github.com/SscSPs/reconciliation_engine/internal/core/services"
	"github.com/SscSPs/reconciliation_engine/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BulkServiceTestSuite struct {
	suite.Suite
	store   *memory.Store
	service portssvc.BulkSvc
	ctx     context.Context
}

func (s *BulkServiceTestSuite) SetupTest() {
	s.store = newSeededStore(s.T(),
		creditLine("tx-a", "DEPOSIT A", "100"),
		creditLine("tx-b", "DEPOSIT B", "200"),
		creditLine("tx-c", "DEPOSIT C", "300"),
	)
	s.service = services.NewBulkService(
		services.NewAssignmentService(s.store, s.store),
		services.NewArchiveService(s.store),
		s.store,
		services.WithBulkWorkers(2),
	)
	s.ctx = context.Background()
}

func (s *BulkServiceTestSuite) TestBulkAssignReportsPerItemFailures() {
	mutate(s.T(), s.store, "tx-b", func(t *domain.Transaction) { t.IsArchived = true })

	result, err := s.service.BulkAssign(s.ctx, []string{"tx-a", "tx-b"}, "m-1", operatorID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 1, result.Success)
	assert.Equal(s.T(), 1, result.Failed)
	assert.Equal(s.T(), []string{"tx-b: AlreadyArchived"}, result.Errors)

	a, err := s.store.FindTransactionByID(s.ctx, "tx-a")
	require.NoError(s.T(), err)
	memberID, _ := a.MemberID()
	assert.Equal(s.T(), "m-1", memberID)
}

func (s *BulkServiceTestSuite) TestBulkAssignKeepsInputOrderAndDedupes() {
	result, err := s.service.BulkAssign(s.ctx, []string{"tx-x", "tx-a", "tx-a", "tx-y", "tx-c"}, "m-2", operatorID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 2, result.Success)
	assert.Equal(s.T(), 2, result.Failed)
	assert.Equal(s.T(), []string{"tx-x: NotFound", "tx-y: NotFound"}, result.Errors)

	a, err := s.store.FindTransactionDetail(s.ctx, "tx-a")
	require.NoError(s.T(), err)
	assert.Len(s.T(), a.MatchLogs, 1, "repeated ids are processed once")
}

func (s *BulkServiceTestSuite) TestBulkAssignRejectsWholeRequest() {
	_, err := s.service.BulkAssign(s.ctx, nil, "m-1", operatorID)
	assert.True(s.T(), errors.Is(err, apperrors.ErrValidation))

	_, err = s.service.BulkAssign(s.ctx, []string{"tx-a"}, "m-404", operatorID)
	assert.True(s.T(), errors.Is(err, apperrors.ErrNotFound))

	a, err := s.store.FindTransactionByID(s.ctx, "tx-a")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.StatusUnassigned, a.Status())
}

func (s *BulkServiceTestSuite) TestBulkArchiveSkipsArchived() {
	mutate(s.T(), s.store, "tx-b", func(t *domain.Transaction) { t.IsArchived = true })
	reason := "statement reissued"

	result, err := s.service.BulkArchive(s.ctx, []string{"tx-a", "tx-b", "tx-404"}, &reason, operatorID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 1, result.Success)
	assert.Equal(s.T(), 1, result.Failed)
	assert.Equal(s.T(), []string{"tx-404: NotFound"}, result.Errors)
	assert.Equal(s.T(), []string{"tx-b: AlreadyArchived"}, result.Skipped)

	a, err := s.store.FindTransactionByID(s.ctx, "tx-a")
	require.NoError(s.T(), err)
	assert.True(s.T(), a.IsArchived)
	require.NotNil(s.T(), a.ArchiveReason)
	assert.Equal(s.T(), reason, *a.ArchiveReason)
}

func (s *BulkServiceTestSuite) TestBulkArchiveReportsDuplicates() {
	s.Require().NoError(s.store.InsertTransactions(s.ctx, []domain.Transaction{creditLine("tx-dup", "DEPOSIT A", "100")}))
	matching := services.NewMatchingService(s.store, s.store)
	_, err := matching.MatchUnassigned(s.ctx)
	require.NoError(s.T(), err)

	dup, err := s.store.FindTransactionByID(s.ctx, "tx-dup")
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.StatusDuplicate, dup.Status())

	result, err := s.service.BulkArchive(s.ctx, []string{"tx-dup", "tx-c"}, nil, operatorID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 1, result.Success)
	assert.Equal(s.T(), 1, result.Failed)
	assert.Equal(s.T(), []string{"tx-dup: InvalidTransition"}, result.Errors)
	assert.Empty(s.T(), result.Skipped)

	dup, err = s.store.FindTransactionByID(s.ctx, "tx-dup")
	require.NoError(s.T(), err)
	assert.False(s.T(), dup.IsArchived)
}

func TestBulkServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BulkServiceTestSuite))
}

func TestBulkAssign_DelegatesToAssignmentService(t *testing.T) {
	assignments := new(MockAssignmentSvc)
	members := new(MockMemberReader)
	svc := services.NewBulkService(assignments, nil, members)

	members.On("FindMemberByID", mock.Anything, "m-1").Return(&domain.Member{MemberID: "m-1", IsActive: true}, nil).Once()
	assignments.On("AssignTransaction", mock.Anything, "tx-1", "m-1", operatorID).Return(&domain.Transaction{TransactionID: "tx-1"}, nil).Once()
	assignments.On("AssignTransaction", mock.Anything, "tx-2", "m-1", operatorID).Return(nil, apperrors.ErrInvalidTransition).Once()

	result, err := svc.BulkAssign(context.Background(), []string{"tx-1", "tx-2"}, "m-1", operatorID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, []string{"tx-2: InvalidTransition"}, result.Errors)

	members.AssertExpectations(t)
	assignments.AssertExpectations(t)
}
