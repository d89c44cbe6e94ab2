package pagination

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	cursor := Cursor{SortField: "transaction_date", SortValue: "2024-03-01", ID: "tx-42"}

	token := EncodeCursor(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.NotContains(t, token, "+", "Token should be safe to pass in a query string")
	assert.NotContains(t, token, "/", "Token should be safe to pass in a query string")

	decoded, err := DecodeCursor(token, "transaction_date")
	require.NoError(t, err)
	assert.Equal(t, cursor, decoded)
}

func TestDecodeCursorErrors(t *testing.T) {
	_, err := DecodeCursor("this is not base64!", "amount")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "base64 decode")

	_, err = DecodeCursor(EncodeMultiFieldToken("amount", "100.00"), "amount")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "field count")

	_, err = DecodeCursor(EncodeCursor(Cursor{SortField: "transaction_date", SortValue: "2024-03-01", ID: "tx-1"}), "amount")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "sort field")
}

func TestMultiFieldToken(t *testing.T) {
	fields := []string{"field1", "field2", "field3"}
	token := EncodeMultiFieldToken(fields...)

	decoded, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, fields, decoded)

	empty, err := DecodeMultiFieldToken(EncodeMultiFieldToken())
	require.NoError(t, err)
	assert.Equal(t, []string{""}, empty)
}

func TestTransactionCursor(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tx := domain.Transaction{TransactionID: "tx-1", TransactionDate: date, Debit: decimal.RequireFromString("42.5")}

	byDate := TransactionCursor(tx, domain.SortByDate)
	parsedDate, err := byDate.DateValue()
	require.NoError(t, err)
	assert.True(t, date.Equal(parsedDate))

	byAmount := TransactionCursor(tx, domain.SortByAmount)
	assert.Equal(t, "42.50", byAmount.SortValue)
	amount, err := byAmount.AmountValue()
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("42.5")))

	_, err = byAmount.DateValue()
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
