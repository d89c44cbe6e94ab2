package dto

import (
	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AssignTransactionRequest assigns a transaction to one member.
type AssignTransactionRequest struct {
	MemberID string `json:"memberID" binding:"required"`
}

// SplitRecipientRequest is one member share in a split.
type SplitRecipientRequest struct {
	MemberID string          `json:"memberID" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes" binding:"max=500"`
}

// TransferTransactionRequest moves a transaction to one member or splits it across several.
// Exactly one of ToMemberID and Recipients is accepted.
type TransferTransactionRequest struct {
	ToMemberID string                  `json:"toMemberID" binding:"required_without=Recipients,excluded_with=Recipients"`
	Recipients []SplitRecipientRequest `json:"recipients" binding:"required_without=ToMemberID,excluded_with=ToMemberID,dive"`
	Notes      string                  `json:"notes" binding:"max=500"`
}

// IsSplit reports whether the request carries a recipients list, even an empty one.
func (r TransferTransactionRequest) IsSplit() bool { return r.Recipients != nil }

// SplitTransactionRequest splits a transaction across members.
// Recipients are validated by the service so that an empty set reports EmptyRecipientSet.
type SplitTransactionRequest struct {
	Recipients []SplitRecipientRequest `json:"recipients" binding:"dive"`
	Notes      string                  `json:"notes" binding:"max=500"`
}

// ToSplitRecipients converts request shares into domain recipients, keeping input order.
func ToSplitRecipients(reqs []SplitRecipientRequest) []domain.SplitRecipient {
	out := make([]domain.SplitRecipient, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, domain.SplitRecipient{MemberID: r.MemberID, Amount: r.Amount, Notes: r.Notes})
	}
	return out
}

// ArchiveTransactionRequest archives a transaction with an optional reason.
type ArchiveTransactionRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// BulkAssignRequest assigns many transactions to one member.
type BulkAssignRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1,max=500,dive,required"`
	MemberID       string   `json:"memberID" binding:"required"`
}

// BulkArchiveRequest archives many transactions.
type BulkArchiveRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1,max=500,dive,required"`
	Reason         *string  `json:"reason" binding:"omitempty,max=500"`
}

// BulkResultResponse reports per-item outcomes of a bulk operation.
type BulkResultResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Skipped []string `json:"skipped,omitempty"`
}

// ToBulkResultResponse converts a domain bulk result.
func ToBulkResultResponse(r *domain.BulkResult) BulkResultResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return BulkResultResponse{Success: r.Success, Failed: r.Failed, Errors: errs, Skipped: r.Skipped}
}

// MatchSummaryResponse reports the counters of a matching sweep.
type MatchSummaryResponse struct {
	AutoAssigned   int `json:"auto_assigned"`
	DraftAssigned  int `json:"draft_assigned"`
	Unassigned     int `json:"unassigned"`
	Duplicates     int `json:"duplicates"`
	Skipped        int `json:"skipped"`
	TotalProcessed int `json:"total_processed"`
}

// ToMatchSummaryResponse converts a domain match summary.
func ToMatchSummaryResponse(s *domain.MatchSummary) MatchSummaryResponse {
	return MatchSummaryResponse(*s)
}
