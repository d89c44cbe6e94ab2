package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchLog mirrors a row of the match_logs table.
type MatchLog struct {
	MatchLogID    string          `db:"match_log_id"`
	TransactionID string          `db:"transaction_id"`
	MemberID      string          `db:"member_id"`
	Confidence    decimal.Decimal `db:"confidence"`
	Reason        string          `db:"reason"`
	Source        string          `db:"source"`
	OperatorID    *string         `db:"operator_id"`
	CreatedAt     time.Time       `db:"created_at"`
}
