package dto

import (
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListTransactionsParams defines the query parameters accepted by the transaction listing.
type ListTransactionsParams struct {
	Status          string  `form:"status" binding:"omitempty,oneof=unassigned draft auto_assigned manual_assigned duplicate"`
	MemberID        string  `form:"member_id"`
	Archived        *bool   `form:"archived"`
	IncludeArchived bool    `form:"include_archived"`
	Search          string  `form:"search" binding:"max=100"`
	DateFrom        string  `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo          string  `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	SortBy          string  `form:"sort_by" binding:"omitempty,oneof=transaction_date amount"`
	SortOrder       string  `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Limit           int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken       *string `form:"next_token"`
}

// ToFilter converts the query parameters into a domain filter.
// Dates are validated by binding, so parse failures leave the bound unset.
func (p ListTransactionsParams) ToFilter() domain.TransactionFilter {
	f := domain.TransactionFilter{
		Archived:        p.Archived,
		IncludeArchived: p.IncludeArchived,
		Search:          p.Search,
		SortBy:          domain.SortByDate,
		SortDescending:  p.SortOrder != "asc",
	}
	if p.Status != "" {
		s := domain.AssignmentStatus(p.Status)
		f.Status = &s
	}
	if p.MemberID != "" {
		m := p.MemberID
		f.MemberID = &m
	}
	if p.SortBy == string(domain.SortByAmount) {
		f.SortBy = domain.SortByAmount
	}
	if d, err := time.Parse("2006-01-02", p.DateFrom); err == nil {
		f.DateFrom = &d
	}
	if d, err := time.Parse("2006-01-02", p.DateTo); err == nil {
		end := d.Add(24*time.Hour - time.Nanosecond)
		f.DateTo = &end
	}
	return f
}

// MatchCandidateResponse is one draft candidate.
type MatchCandidateResponse struct {
	MemberID   string          `json:"memberID"`
	Confidence decimal.Decimal `json:"confidence"`
	Reason     string          `json:"reason"`
}

// AllocationResponse is one member share of a split transaction.
type AllocationResponse struct {
	AllocationID string          `json:"allocationID"`
	MemberID     string          `json:"memberID"`
	Amount       decimal.Decimal `json:"amount"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CreatedBy    string          `json:"createdBy"`
}

// MatchLogResponse is one entry of the match audit trail.
type MatchLogResponse struct {
	MatchLogID string          `json:"matchLogID"`
	MemberID   string          `json:"memberID"`
	Confidence decimal.Decimal `json:"confidence"`
	Reason     string          `json:"reason"`
	Source     string          `json:"source"`
	OperatorID *string         `json:"operatorID,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string                   `json:"transactionID"`
	StatementRef    string                   `json:"statementRef"`
	TransactionDate time.Time                `json:"transactionDate"`
	ValueDate       *time.Time               `json:"valueDate,omitempty"`
	Particulars     string                   `json:"particulars"`
	TransactionCode string                   `json:"transactionCode"`
	Credit          decimal.Decimal          `json:"credit"`
	Debit           decimal.Decimal          `json:"debit"`
	Status          string                   `json:"status"`
	MemberID        *string                  `json:"memberID"`
	DraftMembers    []MatchCandidateResponse `json:"draftMembers,omitempty"`
	MatchConfidence decimal.Decimal          `json:"matchConfidence"`
	IsSplit         bool                     `json:"isSplit"`
	IsArchived      bool                     `json:"isArchived"`
	ArchiveReason   *string                  `json:"archiveReason,omitempty"`
	ArchivedAt      *time.Time               `json:"archivedAt,omitempty"`
	Allocations     []AllocationResponse     `json:"allocations,omitempty"`
	MatchLogs       []MatchLogResponse       `json:"matchLogs,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	LastUpdatedAt   time.Time                `json:"lastUpdatedAt"`
	LastUpdatedBy   string                   `json:"lastUpdatedBy"`
	Version         int64                    `json:"version"`
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// MemberStatementLine is one committed line credited to a member.
// For split transactions Amount is the member's share.
type MemberStatementLine struct {
	TransactionID   string          `json:"transactionID"`
	TransactionDate time.Time       `json:"transactionDate"`
	Particulars     string          `json:"particulars"`
	Amount          decimal.Decimal `json:"amount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	IsSplit         bool            `json:"isSplit"`
	Status          string          `json:"status"`
}

// MemberStatementResponse lists the committed lines of one member.
type MemberStatementResponse struct {
	MemberID string                `json:"memberID"`
	Total    decimal.Decimal       `json:"total"`
	Lines    []MemberStatementLine `json:"lines"`
}

// ToTransactionResponse converts a domain transaction to its API representation.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:   t.TransactionID,
		StatementRef:    t.StatementRef,
		TransactionDate: t.TransactionDate,
		ValueDate:       t.ValueDate,
		Particulars:     t.Particulars,
		TransactionCode: t.TransactionCode,
		Credit:          t.Credit,
		Debit:           t.Debit,
		Status:          string(t.Status()),
		MatchConfidence: t.MatchConfidence,
		IsSplit:         t.IsSplit,
		IsArchived:      t.IsArchived,
		ArchiveReason:   t.ArchiveReason,
		ArchivedAt:      t.ArchivedAt,
		CreatedAt:       t.CreatedAt,
		LastUpdatedAt:   t.LastUpdatedAt,
		LastUpdatedBy:   t.LastUpdatedBy,
		Version:         t.Version,
	}
	if memberID, ok := t.MemberID(); ok {
		resp.MemberID = &memberID
	}
	for _, c := range t.Assignment.Candidates() {
		resp.DraftMembers = append(resp.DraftMembers, MatchCandidateResponse(c))
	}
	for _, a := range t.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			AllocationID: a.AllocationID,
			MemberID:     a.MemberID,
			Amount:       a.Amount,
			Notes:        a.Notes,
			CreatedAt:    a.CreatedAt,
			CreatedBy:    a.CreatedBy,
		})
	}
	for _, l := range t.MatchLogs {
		resp.MatchLogs = append(resp.MatchLogs, MatchLogResponse{
			MatchLogID: l.MatchLogID,
			MemberID:   l.MemberID,
			Confidence: l.Confidence,
			Reason:     l.Reason,
			Source:     string(l.Source),
			OperatorID: l.OperatorID,
			CreatedAt:  l.CreatedAt,
		})
	}
	return resp
}

// ToListTransactionsResponse converts a page of domain transactions.
func ToListTransactionsResponse(transactions []domain.Transaction, nextToken *string) ListTransactionsResponse {
	resp := ListTransactionsResponse{
		Transactions: make([]TransactionResponse, 0, len(transactions)),
		NextToken:    nextToken,
	}
	for i := range transactions {
		resp.Transactions = append(resp.Transactions, ToTransactionResponse(&transactions[i]))
	}
	return resp
}

// ToMatchCandidateResponses converts ranked candidates.
func ToMatchCandidateResponses(candidates []domain.MatchCandidate) []MatchCandidateResponse {
	out := make([]MatchCandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, MatchCandidateResponse(c))
	}
	return out
}
