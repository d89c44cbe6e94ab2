package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchSource says whether a match log came from the sweep or from an operator.
type MatchSource string

const (
	MatchSourceAuto   MatchSource = "AUTO"
	MatchSourceManual MatchSource = "MANUAL"
)

// MatchLog is an append-only record of a matching attempt or a manual assignment.
type MatchLog struct {
	MatchLogID    string          `json:"matchLogID"`
	TransactionID string          `json:"transactionID"`
	MemberID      string          `json:"memberID"`
	Confidence    decimal.Decimal `json:"confidence"`
	Reason        string          `json:"reason"`
	Source        MatchSource     `json:"source"`
	OperatorID    *string         `json:"operatorID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// MatchSummary counts the outcomes of one sweep.
type MatchSummary struct {
	AutoAssigned   int `json:"autoAssigned"`
	DraftAssigned  int `json:"draftAssigned"`
	Unassigned     int `json:"unassigned"`
	Duplicates     int `json:"duplicates"`
	Skipped        int `json:"skipped"`
	TotalProcessed int `json:"totalProcessed"`
}

// BulkResult aggregates per-item outcomes of a bulk operation.
// Errors and Skipped keep the input order of the ids.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Skipped []string `json:"skipped,omitempty"`
}
