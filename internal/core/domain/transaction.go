package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionDirection indicates whether a statement line is money in or money out.
type TransactionDirection string

const (
	Credit TransactionDirection = "CREDIT"
	Debit  TransactionDirection = "DEBIT"
)

// Transaction is one bank statement line being reconciled to a member.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	StatementRef    string          `json:"statementRef"`
	TransactionDate time.Time       `json:"transactionDate"`
	ValueDate       *time.Time      `json:"valueDate,omitempty"`
	Particulars     string          `json:"particulars"`
	TransactionCode string          `json:"transactionCode"`
	Credit          decimal.Decimal `json:"credit"`
	Debit           decimal.Decimal `json:"debit"`
	Assignment      Assignment      `json:"-"`
	MatchConfidence decimal.Decimal `json:"matchConfidence"`
	IsSplit         bool            `json:"isSplit"`
	IsArchived      bool            `json:"isArchived"`
	ArchiveReason   *string         `json:"archiveReason,omitempty"`
	ArchivedAt      *time.Time      `json:"archivedAt,omitempty"`

	// Read side only, populated by detail queries.
	Allocations []SplitAllocation `json:"allocations,omitempty"`
	MatchLogs   []MatchLog        `json:"matchLogs,omitempty"`
	AuditFields
}

// Amount is the non-zero side of the line.
func (t Transaction) Amount() decimal.Decimal {
	if !t.Credit.IsZero() {
		return t.Credit
	}
	return t.Debit
}

func (t Transaction) Direction() TransactionDirection {
	if !t.Credit.IsZero() {
		return Credit
	}
	return Debit
}

func (t Transaction) Status() AssignmentStatus { return t.Assignment.Status() }

// MemberID returns the owning member, if any.
func (t Transaction) MemberID() (string, bool) { return t.Assignment.MemberID() }

// DuplicateSignature identifies statement lines that repeat an already ingested one:
// date, trimmed particulars and the amount to two decimals.
func (t Transaction) DuplicateSignature() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		t.TransactionDate.Format("2006-01-02"),
		strings.TrimSpace(t.Particulars),
		t.Direction(),
		t.Amount().StringFixed(2),
	)
}

// ValidateAmounts checks that exactly one side of the line is set and positive.
func (t Transaction) ValidateAmounts() error {
	if t.Credit.IsNegative() || t.Debit.IsNegative() {
		return fmt.Errorf("%w: amounts cannot be negative", apperrors.ErrValidation)
	}
	if t.Credit.IsZero() == t.Debit.IsZero() {
		return fmt.Errorf("%w: exactly one of credit or debit must be non-zero", apperrors.ErrValidation)
	}
	return nil
}

// EnsureAssignable rejects operator writes against archived or duplicate transactions.
func (t Transaction) EnsureAssignable() error {
	if t.IsArchived {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyArchived, t.TransactionID)
	}
	if t.Status() == StatusDuplicate {
		return fmt.Errorf("%w: transaction %s is flagged as duplicate", apperrors.ErrInvalidTransition, t.TransactionID)
	}
	return nil
}

// IsMatchable reports whether the sweep may score this transaction.
func (t Transaction) IsMatchable() bool {
	if t.IsArchived {
		return false
	}
	s := t.Status()
	return s == StatusUnassigned || s == StatusDraft
}

// TransactionSortField is a column the listing can be ordered by.
type TransactionSortField string

const (
	SortByDate   TransactionSortField = "transaction_date"
	SortByAmount TransactionSortField = "amount"
)

// TransactionFilter narrows transaction listings. Archived transactions are
// hidden unless IncludeArchived is set or Archived explicitly asks for them.
type TransactionFilter struct {
	Status          *AssignmentStatus
	MemberID        *string
	Archived        *bool
	IncludeArchived bool
	Search          string
	DateFrom        *time.Time
	DateTo          *time.Time
	SortBy          TransactionSortField
	SortDescending  bool
}

// Matches applies the filter to a single transaction. Used by in-memory stores.
func (f TransactionFilter) Matches(t Transaction) bool {
	switch {
	case f.Archived != nil:
		if t.IsArchived != *f.Archived {
			return false
		}
	case !f.IncludeArchived:
		if t.IsArchived {
			return false
		}
	}
	if f.Status != nil && t.Status() != *f.Status {
		return false
	}
	if f.MemberID != nil {
		memberID, ok := t.MemberID()
		if !ok || memberID != *f.MemberID {
			return false
		}
	}
	if f.DateFrom != nil && t.TransactionDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.TransactionDate.After(*f.DateTo) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Particulars), needle) &&
			!strings.Contains(strings.ToLower(t.TransactionCode), needle) {
			return false
		}
	}
	return true
}
