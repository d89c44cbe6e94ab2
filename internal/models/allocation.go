package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitAllocation mirrors a row of the split_allocations table.
type SplitAllocation struct {
	AllocationID  string          `db:"allocation_id"`
	TransactionID string          `db:"transaction_id"`
	TransferID    string          `db:"transfer_id"`
	MemberID      string          `db:"member_id"`
	Amount        decimal.Decimal `db:"amount"`
	Notes         string          `db:"notes"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}

// TransferRecord mirrors a row of the transaction_transfers table.
type TransferRecord struct {
	TransferID     string          `db:"transfer_id"`
	TransactionID  string          `db:"transaction_id"`
	FromMemberID   *string         `db:"from_member_id"`
	Mode           string          `db:"mode"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	Notes          string          `db:"notes"`
	PreviousStatus string          `db:"previous_status"`
	InitiatedBy    string          `db:"initiated_by"`
	CreatedAt      time.Time       `db:"created_at"`
}
