package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/core/services"
	"github.com/SscSPs/reconciliation_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMemberStatement_SplitContributesShare(t *testing.T) {
	store := newSeededStore(t,
		creditLine("tx-1", "DEPOSIT ONE", "1500"),
		creditLine("tx-2", "DEPOSIT TWO", "400"),
		creditLine("tx-3", "DEPOSIT THREE", "999"),
	)
	ctx := context.Background()
	assignments := services.NewAssignmentService(store, store)
	query := services.NewTransactionQueryService(store, store)

	_, err := assignments.SplitTransaction(ctx, "tx-1", []domain.SplitRecipient{
		{MemberID: "m-1", Amount: decimal.NewFromInt(900)},
		{MemberID: "m-2", Amount: decimal.NewFromInt(600)},
	}, "", operatorID)
	require.NoError(t, err)
	_, err = assignments.AssignTransaction(ctx, "tx-2", "m-2", operatorID)
	require.NoError(t, err)

	statement, err := query.GetMemberStatement(ctx, "m-2")
	require.NoError(t, err)
	require.Len(t, statement.Lines, 2)
	assert.True(t, statement.Total.Equal(decimal.NewFromInt(1000)))

	var split dto.MemberStatementLine
	for _, l := range statement.Lines {
		if l.TransactionID == "tx-1" {
			split = l
		}
	}
	assert.True(t, split.IsSplit)
	assert.True(t, split.Amount.Equal(decimal.NewFromInt(600)))
	assert.True(t, split.TotalAmount.Equal(decimal.NewFromInt(1500)))

	primary, err := query.GetMemberStatement(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, primary.Total.Equal(decimal.NewFromInt(900)), "primary recipient is credited with its share only")

	_, err = query.GetMemberStatement(ctx, "m-404")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListTransactions_DefaultsAndFilters(t *testing.T) {
	store := newSeededStore(t,
		creditLine("tx-1", "DEPOSIT ONE", "100"),
		creditLine("tx-2", "DEPOSIT TWO", "200"),
		creditLine("tx-3", "WITHDRAWAL", "300"),
	)
	mutate(t, store, "tx-3", func(tx *domain.Transaction) { tx.IsArchived = true })
	query := services.NewTransactionQueryService(store, store)
	ctx := context.Background()

	resp, err := query.ListTransactions(ctx, dto.ListTransactionsParams{})
	require.NoError(t, err)
	assert.Len(t, resp.Transactions, 2, "archived transactions are hidden by default")
	assert.Nil(t, resp.NextToken)

	resp, err = query.ListTransactions(ctx, dto.ListTransactionsParams{IncludeArchived: true, SortBy: "amount", SortOrder: "asc", Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "tx-1", resp.Transactions[0].TransactionID)
	require.NotNil(t, resp.NextToken)

	resp, err = query.ListTransactions(ctx, dto.ListTransactionsParams{IncludeArchived: true, SortBy: "amount", SortOrder: "asc", Limit: 2, NextToken: resp.NextToken})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "tx-3", resp.Transactions[0].TransactionID)

	resp, err = query.ListTransactions(ctx, dto.ListTransactionsParams{Search: "two"})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "tx-2", resp.Transactions[0].TransactionID)
}

func TestGetTransaction_NotFound(t *testing.T) {
	store := newSeededStore(t)
	_, err := services.NewTransactionQueryService(store, store).GetTransaction(context.Background(), "tx-404")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
