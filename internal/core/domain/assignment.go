package domain

import (
	"fmt"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AssignmentStatus is the reconciliation state of a transaction.
type AssignmentStatus string

const (
	StatusUnassigned     AssignmentStatus = "unassigned"
	StatusDraft          AssignmentStatus = "draft"
	StatusAutoAssigned   AssignmentStatus = "auto_assigned"
	StatusManualAssigned AssignmentStatus = "manual_assigned"
	StatusDuplicate      AssignmentStatus = "duplicate"
)

// IsValid reports whether s is one of the known statuses.
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case StatusUnassigned, StatusDraft, StatusAutoAssigned, StatusManualAssigned, StatusDuplicate:
		return true
	}
	return false
}

// MatchCandidate is a member proposed by the matching engine.
type MatchCandidate struct {
	MemberID   string          `json:"memberID"`
	Confidence decimal.Decimal `json:"confidence"`
	Reason     string          `json:"reason"`
}

// Assignment is a tagged variant: the payload available depends on the status.
// A member is only present for assigned statuses and candidates only for drafts.
// Values are built through the constructors below; the zero value is Unassigned.
type Assignment struct {
	status     AssignmentStatus
	memberID   string
	candidates []MatchCandidate
}

func Unassigned() Assignment { return Assignment{status: StatusUnassigned} }

func Duplicate() Assignment { return Assignment{status: StatusDuplicate} }

func AutoAssigned(memberID string) Assignment {
	return Assignment{status: StatusAutoAssigned, memberID: memberID}
}

func ManualAssigned(memberID string) Assignment {
	return Assignment{status: StatusManualAssigned, memberID: memberID}
}

// Draft keeps its own copy of the candidate list.
func Draft(candidates []MatchCandidate) Assignment {
	cp := make([]MatchCandidate, len(candidates))
	copy(cp, candidates)
	return Assignment{status: StatusDraft, candidates: cp}
}

// RestoreAssignment rebuilds an assignment from stored columns and rejects
// combinations that break the member/status invariant.
func RestoreAssignment(status AssignmentStatus, memberID *string, candidates []MatchCandidate) (Assignment, error) {
	hasMember := memberID != nil && *memberID != ""
	switch status {
	case StatusAutoAssigned, StatusManualAssigned:
		if !hasMember {
			return Assignment{}, fmt.Errorf("%w: status %s requires a member", apperrors.ErrValidation, status)
		}
		return Assignment{status: status, memberID: *memberID}, nil
	case StatusUnassigned, StatusDuplicate, StatusDraft:
		if hasMember {
			return Assignment{}, fmt.Errorf("%w: status %s cannot carry a member", apperrors.ErrValidation, status)
		}
		if status == StatusDraft {
			return Draft(candidates), nil
		}
		return Assignment{status: status}, nil
	case "":
		return Unassigned(), nil
	}
	return Assignment{}, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
}

func (a Assignment) Status() AssignmentStatus {
	if a.status == "" {
		return StatusUnassigned
	}
	return a.status
}

// MemberID returns the owning member for assigned statuses.
func (a Assignment) MemberID() (string, bool) {
	if a.IsOwned() {
		return a.memberID, true
	}
	return "", false
}

// Candidates returns the draft candidates, ordered by descending confidence.
func (a Assignment) Candidates() []MatchCandidate {
	if a.status != StatusDraft {
		return nil
	}
	cp := make([]MatchCandidate, len(a.candidates))
	copy(cp, a.candidates)
	return cp
}

// IsOwned reports whether a member owns the transaction.
func (a Assignment) IsOwned() bool {
	return a.status == StatusAutoAssigned || a.status == StatusManualAssigned
}

// Actor identifies who requests a transition.
type Actor string

const (
	ActorMatcher  Actor = "matcher"
	ActorOperator Actor = "operator"
)

type transitionRule struct {
	to    AssignmentStatus
	actor Actor
}

var transitions = map[AssignmentStatus][]transitionRule{
	StatusUnassigned: {
		{StatusDraft, ActorMatcher},
		{StatusAutoAssigned, ActorMatcher},
		{StatusDuplicate, ActorMatcher},
		{StatusManualAssigned, ActorOperator},
	},
	StatusDraft: {
		{StatusDraft, ActorMatcher},
		{StatusAutoAssigned, ActorMatcher},
		{StatusUnassigned, ActorMatcher},
		{StatusDuplicate, ActorMatcher},
		{StatusManualAssigned, ActorOperator},
	},
	StatusAutoAssigned: {
		{StatusManualAssigned, ActorOperator},
	},
	StatusManualAssigned: {
		{StatusManualAssigned, ActorOperator},
	},
}

// CanTransition reports whether the move is legal for any actor.
func CanTransition(from, to AssignmentStatus) bool {
	for _, rule := range transitions[from] {
		if rule.to == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks the move against the transition table for the given actor.
func ValidateTransition(from, to AssignmentStatus, actor Actor) error {
	for _, rule := range transitions[from] {
		if rule.to != to {
			continue
		}
		if rule.actor != actor {
			return fmt.Errorf("%w: %s -> %s is not allowed for %s", apperrors.ErrInvalidTransition, from, to, actor)
		}
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, from, to)
}
