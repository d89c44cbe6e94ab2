package matching_test

import (
	"testing"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/SscSPs/reconciliation_engine/internal/core/matching"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registry() []domain.Member {
	return []domain.Member{
		{MemberID: "m-1", Name: "John Kamau", Phone: "0712345678", MemberCode: "EVM001", MemberNumber: "1001", IsActive: true},
		{MemberID: "m-2", Name: "Jonah Kamau", Phone: "+254722000111", MemberCode: "EVM002", MemberNumber: "1002", IsActive: true},
		{MemberID: "m-3", Name: "Grace Achieng", Phone: "254733999888", MemberCode: "EVM003", MemberNumber: "1003", IsActive: true},
		{MemberID: "m-4", Name: "Peter Otieno", Phone: "0744555666", MemberCode: "EVM004", IsActive: false},
	}
}

func credit(particulars, code string) domain.Transaction {
	return domain.Transaction{
		TransactionID:   "tx-1",
		Particulars:     particulars,
		TransactionCode: code,
		Credit:          decimal.NewFromInt(1000),
	}
}

func TestScore_ExactCodeAutoAssigns(t *testing.T) {
	res := matching.Score(credit("PAYBILL DEPOSIT", "EVM003"), registry(), matching.DefaultPolicy())

	assert.Equal(t, matching.DecisionAutoAssign, res.Decision)
	assert.Equal(t, "m-3", res.MemberID)
	assert.True(t, res.Confidence.Equal(decimal.NewFromInt(1)))
	require.Len(t, res.Candidates, 1)
	assert.Contains(t, res.Candidates[0].Reason, "member code match")

	memberID, ok := res.Assignment().MemberID()
	assert.True(t, ok)
	assert.Equal(t, "m-3", memberID)
}

func TestScore_MemberNumberAndCodeToken(t *testing.T) {
	byNumber := matching.Score(credit("DEPOSIT", "1002"), registry(), matching.DefaultPolicy())
	assert.Equal(t, matching.DecisionAutoAssign, byNumber.Decision)
	assert.Equal(t, "m-2", byNumber.MemberID)

	byToken := matching.Score(credit("MPESA REF QX1 evm001 CONTRIB", ""), registry(), matching.DefaultPolicy())
	assert.Equal(t, matching.DecisionAutoAssign, byToken.Decision)
	assert.Equal(t, "m-1", byToken.MemberID)
}

func TestScore_FuzzyNameDraftsRankedCandidates(t *testing.T) {
	res := matching.Score(credit("Paybill 400200 Acc. Jon Kamau", ""), registry(), matching.DefaultPolicy())

	assert.Equal(t, matching.DecisionDraft, res.Decision)
	assert.Empty(t, res.MemberID)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "m-1", res.Candidates[0].MemberID)
	assert.Equal(t, "m-2", res.Candidates[1].MemberID)
	assert.True(t, res.Candidates[0].Confidence.Equal(decimal.RequireFromString("0.32")))
	assert.True(t, res.Candidates[1].Confidence.Equal(decimal.RequireFromString("0.3")))
	assert.Contains(t, res.Candidates[0].Reason, "80% similarity")

	_, owned := res.Assignment().MemberID()
	assert.False(t, owned)
	assert.Equal(t, domain.StatusDraft, res.Assignment().Status())
}

func TestScore_PhoneAndNameReachFullConfidence(t *testing.T) {
	res := matching.Score(credit("MPESA 0733999888 GRACE ACHIENG", ""), registry(), matching.DefaultPolicy())

	assert.Equal(t, matching.DecisionAutoAssign, res.Decision)
	assert.Equal(t, "m-3", res.MemberID)
	assert.Contains(t, res.Candidates[0].Reason, "phone number match (+0.60)")
	assert.Contains(t, res.Candidates[0].Reason, "exact name match (+0.40)")
}

func TestScore_PhoneOnlyIsDraft(t *testing.T) {
	res := matching.Score(credit("MPESA +254722000111", ""), registry(), matching.DefaultPolicy())

	assert.Equal(t, matching.DecisionDraft, res.Decision)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "m-2", res.Candidates[0].MemberID)
	assert.True(t, res.Confidence.Equal(decimal.RequireFromString("0.6")))
}

func TestScore_NoSignalStaysUnassigned(t *testing.T) {
	res := matching.Score(credit("BANK CHARGES", "FEE"), registry(), matching.DefaultPolicy())

	assert.Equal(t, matching.DecisionNone, res.Decision)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, domain.StatusUnassigned, res.Assignment().Status())
}

func TestScore_InactiveMembersIgnored(t *testing.T) {
	res := matching.Score(credit("DEPOSIT", "EVM004"), registry(), matching.DefaultPolicy())
	assert.Equal(t, matching.DecisionNone, res.Decision)
}

func TestScore_AmbiguousTopIsDraft(t *testing.T) {
	members := registry()
	members[1].MemberNumber = "EVM001"

	res := matching.Score(credit("DEPOSIT", "EVM001"), members, matching.DefaultPolicy())
	assert.Equal(t, matching.DecisionDraft, res.Decision)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "m-1", res.Candidates[0].MemberID, "ties are ordered by member id")
}

func TestScore_ThresholdsAreConfigurable(t *testing.T) {
	policy := matching.DefaultPolicy()
	policy.Thresholds.AutoAssign = 0.6

	res := matching.Score(credit("MPESA +254722000111", ""), registry(), policy)
	assert.Equal(t, matching.DecisionAutoAssign, res.Decision)
	assert.Equal(t, "m-2", res.MemberID)
}

func TestScore_CandidateCap(t *testing.T) {
	var members []domain.Member
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		members = append(members, domain.Member{MemberID: id, Name: "Mary Wambui", IsActive: true})
	}
	policy := matching.DefaultPolicy()

	res := matching.Score(credit("Acc. Mary Wambui", ""), members, policy)
	assert.Equal(t, matching.DecisionDraft, res.Decision)
	assert.Len(t, res.Candidates, policy.MaxCandidates)
	assert.Equal(t, "a", res.Candidates[0].MemberID)
}

func TestScore_IndependentOfMemberOrder(t *testing.T) {
	members := registry()
	reversed := make([]domain.Member, len(members))
	for i, m := range members {
		reversed[len(members)-1-i] = m
	}
	tx := credit("Paybill Acc. Jon Kamau", "")

	assert.Equal(t, matching.Score(tx, members, matching.DefaultPolicy()), matching.Score(tx, reversed, matching.DefaultPolicy()))
}
