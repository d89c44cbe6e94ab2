package repositories

import (
	"context"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
)

// MutateFunc inspects the locked current state of a transaction and returns the writes to apply.
// Returning a nil change applies nothing; returning an error aborts without writing.
type MutateFunc func(current domain.Transaction) (*domain.TransactionChange, error)

// TransactionReader defines read operations for statement transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction without its allocations or logs.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionDetail retrieves a transaction together with its allocations and match logs.
	FindTransactionDetail(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a filtered page of transactions using token-based pagination.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListMatchableTransactionIDs returns the ids the matching sweep should score:
	// unassigned or draft, not archived.
	ListMatchableTransactionIDs(ctx context.Context) ([]string, error)

	// FindFirstWithSignature returns the earliest ingested, non-duplicate transaction sharing the
	// duplicate signature of tx, or apperrors.ErrNotFound.
	FindFirstWithSignature(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
}

// TransactionWriter defines write operations for statement transactions
type TransactionWriter interface {
	// MutateTransaction locks the transaction, hands its current state to fn and applies the
	// returned change atomically, bumping the version. It returns the committed state.
	MutateTransaction(ctx context.Context, transactionID string, fn MutateFunc) (*domain.Transaction, error)
}

// TransactionIngestor is the feed through which statement lines enter the store.
type TransactionIngestor interface {
	// InsertTransactions persists new unassigned transactions.
	InsertTransactions(ctx context.Context, transactions []domain.Transaction) error
}

// StatementReader serves committed lines per member.
type StatementReader interface {
	// ListMemberStatement returns the transactions owned by the member plus split transactions
	// in which the member holds an allocation, with allocations loaded.
	ListMemberStatement(ctx context.Context, memberID string) ([]domain.Transaction, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionIngestor
	StatementReader
}
