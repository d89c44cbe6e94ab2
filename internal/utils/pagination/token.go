package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// DefaultLimit is the page size used when the caller does not ask for one.
const DefaultLimit = 50

// Cursor marks the last row of a page: the value of the sort column and the row id
// used as tie-breaker.
type Cursor struct {
	SortField string
	SortValue string
	ID        string
}

// EncodeCursor creates an opaque token for the next page.
func EncodeCursor(c Cursor) string {
	return EncodeMultiFieldToken(c.SortField, c.SortValue, c.ID)
}

// DecodeCursor parses a token produced by EncodeCursor. The token must have been issued
// for the same sort column.
func DecodeCursor(token, sortField string) (Cursor, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return Cursor{}, err
	}
	if len(parts) != 3 || parts[2] == "" {
		return Cursor{}, fmt.Errorf("%w: invalid pagination token format (field count)", apperrors.ErrValidation)
	}
	if parts[0] != sortField {
		return Cursor{}, fmt.Errorf("%w: pagination token was issued for sort field %q", apperrors.ErrValidation, parts[0])
	}
	return Cursor{SortField: parts[0], SortValue: parts[1], ID: parts[2]}, nil
}

// TransactionCursor positions a cursor on t for the given sort column.
func TransactionCursor(t domain.Transaction, sortField domain.TransactionSortField) Cursor {
	value := t.TransactionDate.UTC().Format(timeFormat)
	if sortField == domain.SortByAmount {
		value = t.Amount().StringFixed(2)
	}
	return Cursor{SortField: string(sortField), SortValue: value, ID: t.TransactionID}
}

// DateValue parses the sort value of a transaction_date cursor.
func (c Cursor) DateValue() (time.Time, error) {
	t, err := time.Parse(timeFormat, c.SortValue)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid pagination token format (date parse)", apperrors.ErrValidation)
	}
	return t, nil
}

// AmountValue parses the sort value of an amount cursor.
func (c Cursor) AmountValue() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.SortValue)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid pagination token format (amount parse)", apperrors.ErrValidation)
	}
	return d, nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
// This provides flexibility for different pagination strategies
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pagination token format (base64 decode): %v", apperrors.ErrValidation, err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, "|")
	return parts, nil
}
