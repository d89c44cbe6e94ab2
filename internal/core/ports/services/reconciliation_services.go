package services

import (
	"context"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/dto"
)

// MatchingSvc runs the matching engine against stored transactions.
type MatchingSvc interface {
	// MatchUnassigned scores every unassigned or draft transaction and commits the outcome.
	MatchUnassigned(ctx context.Context) (*domain.MatchSummary, error)

	// SuggestMembers scores one transaction without writing anything.
	SuggestMembers(ctx context.Context, transactionID string) ([]domain.MatchCandidate, error)
}

// AssignmentSvc performs operator assignments, transfers and splits.
type AssignmentSvc interface {
	// AssignTransaction assigns an unassigned or draft transaction to a member, or transfers
	// an owned one.
	AssignTransaction(ctx context.Context, transactionID, memberID, operatorID string) (*domain.Transaction, error)

	// TransferTransaction moves an owned transaction to a different member.
	TransferTransaction(ctx context.Context, transactionID, toMemberID, notes, operatorID string) (*domain.Transaction, error)

	// SplitTransaction divides a transaction across members. Shares must add up to its amount.
	SplitTransaction(ctx context.Context, transactionID string, recipients []domain.SplitRecipient, notes, operatorID string) (*domain.Transaction, error)
}

// ArchiveSvc hides and restores transactions without losing their assignment.
type ArchiveSvc interface {
	ArchiveTransaction(ctx context.Context, transactionID string, reason *string, operatorID string) (*domain.Transaction, error)
	RestoreTransaction(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)
}

// BulkSvc applies one action to many transactions with per-item isolation.
type BulkSvc interface {
	BulkAssign(ctx context.Context, transactionIDs []string, memberID, operatorID string) (*domain.BulkResult, error)
	BulkArchive(ctx context.Context, transactionIDs []string, reason *string, operatorID string) (*domain.BulkResult, error)
}

// TransactionQuerySvc serves read-only views of transactions.
type TransactionQuerySvc interface {
	// GetTransaction returns a transaction with its allocations and match logs.
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns a filtered page of transactions.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// GetMemberStatement returns the committed lines credited to a member.
	GetMemberStatement(ctx context.Context, memberID string) (*dto.MemberStatementResponse, error)
}
