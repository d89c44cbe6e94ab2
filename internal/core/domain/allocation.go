package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// SplitTolerance is the largest accepted difference between a transaction amount and the
// sum of its split shares.
var SplitTolerance = decimal.RequireFromString("0.01")

// AmountPlaces is the scale of stored amounts; split shares must be exact at this scale.
const AmountPlaces = 2

// SplitAllocation is one member's share of a split transaction.
type SplitAllocation struct {
	AllocationID  string          `json:"allocationID"`
	TransactionID string          `json:"transactionID"`
	TransferID    string          `json:"transferID"`
	MemberID      string          `json:"memberID"`
	Amount        decimal.Decimal `json:"amount"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// TransferMode distinguishes a single-member move from a split.
type TransferMode string

const (
	TransferSingle TransferMode = "SINGLE"
	TransferSplit  TransferMode = "SPLIT"
)

// TransferRecord is the audit entry of one transfer or split operation.
type TransferRecord struct {
	TransferID     string           `json:"transferID"`
	TransactionID  string           `json:"transactionID"`
	FromMemberID   *string          `json:"fromMemberID,omitempty"`
	Mode           TransferMode     `json:"mode"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	Notes          string           `json:"notes,omitempty"`
	PreviousStatus AssignmentStatus `json:"previousStatus"`
	InitiatedBy    string           `json:"initiatedBy"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// SplitRecipient is a requested share before it is persisted.
type SplitRecipient struct {
	MemberID string
	Amount   decimal.Decimal
	Notes    string
}

// ValidateSplit checks the recipients against the transaction total: the set is non-empty,
// every share is positive with at most AmountPlaces decimals, and the shares add up to the
// total within SplitTolerance.
func ValidateSplit(total decimal.Decimal, recipients []SplitRecipient) error {
	if len(recipients) == 0 {
		return apperrors.ErrEmptyRecipientSet
	}
	sum := decimal.Zero
	for i, r := range recipients {
		if r.MemberID == "" {
			return fmt.Errorf("%w: recipient %d has no member", apperrors.ErrValidation, i)
		}
		if !r.Amount.IsPositive() {
			return fmt.Errorf("%w: recipient %s share %s", apperrors.ErrInvalidAmount, r.MemberID, r.Amount.String())
		}
		if !r.Amount.Equal(r.Amount.Truncate(AmountPlaces)) {
			return fmt.Errorf("%w: recipient %s share %s has more than %d decimal places",
				apperrors.ErrInvalidAmount, r.MemberID, r.Amount.String(), AmountPlaces)
		}
		sum = sum.Add(r.Amount)
	}
	if total.Sub(sum).Abs().GreaterThan(SplitTolerance) {
		return apperrors.NewSplitSumMismatch(total, sum)
	}
	return nil
}

// PrimaryRecipient picks the member recorded as owner of a split transaction:
// the largest share, first in input order on ties.
func PrimaryRecipient(recipients []SplitRecipient) SplitRecipient {
	var primary SplitRecipient
	for i, r := range recipients {
		if i == 0 || r.Amount.GreaterThan(primary.Amount) {
			primary = r
		}
	}
	return primary
}

// TransactionChange is the full set of writes produced by one operation on one transaction.
// Repositories apply it atomically.
type TransactionChange struct {
	// Transaction is the new state of the parent row.
	Transaction Transaction
	// ReplaceAllocations removes prior allocations before inserting new ones.
	ReplaceAllocations bool
	Transfer           *TransferRecord
	Allocations        []SplitAllocation
	MatchLogs          []MatchLog
}
