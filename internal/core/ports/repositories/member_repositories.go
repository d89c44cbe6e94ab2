package repositories

import (
	"context"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
)

// MemberReader defines the member lookups the engine consumes. Members are owned elsewhere.
type MemberReader interface {
	// FindMemberByID retrieves a member by id, active or not.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// FindMembersByIDs retrieves the members that exist among memberIDs, keyed by id.
	FindMembersByIDs(ctx context.Context, memberIDs []string) (map[string]domain.Member, error)

	// ListActiveMembers returns the registry snapshot used for matching.
	ListActiveMembers(ctx context.Context) ([]domain.Member, error)
}

// MemberWriter is used by seeding and tests only.
type MemberWriter interface {
	SaveMember(ctx context.Context, member domain.Member) error
}

// MemberRepositoryFacade combines all member-related repository interfaces
type MemberRepositoryFacade interface {
	MemberReader
	MemberWriter
}
