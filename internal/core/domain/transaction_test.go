package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Amount(t *testing.T) {
	credit := domain.Transaction{Credit: decimal.NewFromInt(1000)}
	debit := domain.Transaction{Debit: decimal.NewFromFloat(250.5)}

	assert.True(t, credit.Amount().Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, domain.Credit, credit.Direction())
	assert.True(t, debit.Amount().Equal(decimal.NewFromFloat(250.5)))
	assert.Equal(t, domain.Debit, debit.Direction())
}

func TestTransaction_ValidateAmounts(t *testing.T) {
	tests := []struct {
		name    string
		tx      domain.Transaction
		wantErr bool
	}{
		{"credit only", domain.Transaction{Credit: decimal.NewFromInt(10)}, false},
		{"debit only", domain.Transaction{Debit: decimal.NewFromInt(10)}, false},
		{"both set", domain.Transaction{Credit: decimal.NewFromInt(10), Debit: decimal.NewFromInt(5)}, true},
		{"neither set", domain.Transaction{}, true},
		{"negative", domain.Transaction{Credit: decimal.NewFromInt(-10)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.ValidateAmounts()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_DuplicateSignature(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := domain.Transaction{TransactionDate: date, Particulars: " MPESA 254712345678 ", Credit: decimal.NewFromInt(1000)}
	b := domain.Transaction{TransactionDate: date.Add(5 * time.Hour), Particulars: "MPESA 254712345678", Credit: decimal.RequireFromString("1000.00")}
	c := domain.Transaction{TransactionDate: date, Particulars: "MPESA 254712345678", Debit: decimal.NewFromInt(1000)}

	assert.Equal(t, a.DuplicateSignature(), b.DuplicateSignature())
	assert.NotEqual(t, a.DuplicateSignature(), c.DuplicateSignature())
	assert.Equal(t, "2024-03-01|MPESA 254712345678|CREDIT|1000.00", a.DuplicateSignature())
}

func TestTransaction_EnsureAssignable(t *testing.T) {
	archived := domain.Transaction{TransactionID: "tx-1", IsArchived: true}
	duplicate := domain.Transaction{TransactionID: "tx-2", Assignment: domain.Duplicate()}
	open := domain.Transaction{TransactionID: "tx-3", Assignment: domain.Unassigned()}

	assert.ErrorIs(t, archived.EnsureAssignable(), apperrors.ErrAlreadyArchived)
	assert.ErrorIs(t, duplicate.EnsureAssignable(), apperrors.ErrInvalidTransition)
	assert.NoError(t, open.EnsureAssignable())
}

func TestTransactionFilter_Matches(t *testing.T) {
	member := "m-1"
	draft := domain.StatusDraft
	yes := true
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	owned := domain.Transaction{
		TransactionDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Particulars:     "Paybill Acc. Jane Wanjiru",
		Assignment:      domain.ManualAssigned(member),
	}
	archived := owned
	archived.IsArchived = true

	assert.True(t, domain.TransactionFilter{}.Matches(owned))
	assert.False(t, domain.TransactionFilter{}.Matches(archived), "archived hidden by default")
	assert.True(t, domain.TransactionFilter{IncludeArchived: true}.Matches(archived))
	assert.True(t, domain.TransactionFilter{Archived: &yes}.Matches(archived))
	assert.False(t, domain.TransactionFilter{Archived: &yes}.Matches(owned))
	assert.True(t, domain.TransactionFilter{MemberID: &member}.Matches(owned))
	assert.False(t, domain.TransactionFilter{Status: &draft}.Matches(owned))
	assert.True(t, domain.TransactionFilter{Search: "wanjiru"}.Matches(owned))
	assert.True(t, domain.TransactionFilter{DateFrom: &from}.Matches(owned))
	assert.False(t, domain.TransactionFilter{DateTo: &from}.Matches(owned))
}
