package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DraftCandidate is one element of the draft_candidates JSONB column.
type DraftCandidate struct {
	MemberID   string          `json:"member_id"`
	Confidence decimal.Decimal `json:"confidence"`
	Reason     string          `json:"reason"`
}

// Transaction mirrors a row of the transactions table.
type Transaction struct {
	TransactionID   string           `db:"transaction_id"`
	StatementRef    string           `db:"statement_ref"`
	TransactionDate time.Time        `db:"transaction_date"`
	ValueDate       *time.Time       `db:"value_date"`
	Particulars     string           `db:"particulars"`
	TransactionCode string           `db:"transaction_code"`
	Credit          decimal.Decimal  `db:"credit"`
	Debit           decimal.Decimal  `db:"debit"`
	Status          string           `db:"status"`
	MemberID        *string          `db:"member_id"`
	DraftCandidates []DraftCandidate `db:"draft_candidates"`
	MatchConfidence decimal.Decimal  `db:"match_confidence"`
	IsSplit         bool             `db:"is_split"`
	IsArchived      bool             `db:"is_archived"`
	ArchiveReason   *string          `db:"archive_reason"`
	ArchivedAt      *time.Time       `db:"archived_at"`
	AuditFields
}
