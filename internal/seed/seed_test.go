package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/repositories/memory"
	"github.com/SscSPs/reconciliation_engine/internal/seed"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
members:
  - id: m-1
    name: John Kamau
    phone: "0712345678"
    member_code: EVM001
  - id: m-2
    name: Peter Otieno
    inactive: true
transactions:
  - id: tx-1
    statement_ref: STMT-2024-03
    date: 2024-03-04
    particulars: MPESA EVM001 CONTRIBUTION
    credit: "1000.00"
  - id: tx-2
    date: 2024-03-05
    value_date: 2024-03-06
    particulars: BANK CHARGES
    debit: "35.50"
`

func TestParseAndApply(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	data, err := seed.Parse([]byte(fixture), now)
	require.NoError(t, err)
	require.Len(t, data.Members, 2)
	require.Len(t, data.Transactions, 2)

	assert.True(t, data.Members[0].IsActive)
	assert.True(t, data.Members[0].HasContactChannel)
	assert.False(t, data.Members[1].IsActive)

	debit := data.Transactions[1]
	assert.Equal(t, domain.Debit, debit.Direction())
	assert.True(t, debit.Amount().Equal(decimal.RequireFromString("35.50")))
	require.NotNil(t, debit.ValueDate)
	assert.Equal(t, domain.StatusUnassigned, debit.Status())
	assert.Equal(t, seed.Actor, debit.CreatedBy)

	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, seed.Apply(ctx, data, store, store))

	active, err := store.ListActiveMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	ids, err := store.ListMatchableTransactionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-1", "tx-2"}, ids)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "members: [",
		"no member id":  "members:\n  - name: X\n",
		"bad date":      "transactions:\n  - id: tx-1\n    date: 04/03/2024\n    credit: \"1\"\n",
		"both sides":    "transactions:\n  - id: tx-1\n    date: 2024-03-04\n    credit: \"1\"\n    debit: \"1\"\n",
		"no amount":     "transactions:\n  - id: tx-1\n    date: 2024-03-04\n",
		"bad amount":    "transactions:\n  - id: tx-1\n    date: 2024-03-04\n    credit: abc\n",
		"no tx id":      "transactions:\n  - date: 2024-03-04\n    credit: \"1\"\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := seed.Parse([]byte(raw), time.Now())
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
