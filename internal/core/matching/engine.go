// Package matching scores statement lines against the member registry.
// Scoring is a pure function of the transaction, the member snapshot and the policy.
package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/reconciliation_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Decision is the outcome of scoring one transaction.
type Decision string

const (
	DecisionAutoAssign Decision = "auto_assign"
	DecisionDraft      Decision = "draft"
	DecisionNone       Decision = "none"
)

// Result holds the ranked candidates and the decision for one transaction.
// Candidates is what gets committed: only the assigned member for DecisionAutoAssign.
// Ranked always holds every retained candidate.
type Result struct {
	Decision   Decision
	MemberID   string
	Confidence decimal.Decimal
	Candidates []domain.MatchCandidate
	Ranked     []domain.MatchCandidate
}

// Assignment converts the result into the assignment the sweep should commit.
func (r Result) Assignment() domain.Assignment {
	switch r.Decision {
	case DecisionAutoAssign:
		return domain.AutoAssigned(r.MemberID)
	case DecisionDraft:
		return domain.Draft(r.Candidates)
	}
	return domain.Unassigned()
}

// features are extracted from the transaction once and reused for every member.
type features struct {
	code        string
	tokens      map[string]bool
	phones      map[string]bool
	payerName   string
	particulars string
}

func extract(tx domain.Transaction) features {
	f := features{
		code:        strings.ToUpper(strings.TrimSpace(tx.TransactionCode)),
		tokens:      map[string]bool{},
		phones:      map[string]bool{},
		payerName:   NormalizeName(ExtractPayerName(tx.Particulars)),
		particulars: tx.Particulars,
	}
	for _, t := range tokens(tx.Particulars) {
		f.tokens[t] = true
	}
	for _, p := range ExtractPhones(tx.Particulars) {
		f.phones[p] = true
	}
	return f
}

// Score ranks members for tx under policy and decides the resulting status.
func Score(tx domain.Transaction, members []domain.Member, policy Policy) Result {
	f := extract(tx)

	candidates := make([]domain.MatchCandidate, 0)
	floor := decimal.NewFromFloat(policy.Thresholds.CandidateFloor)
	for _, m := range members {
		if !m.IsActive {
			continue
		}
		c, ok := scoreMember(f, m, policy)
		if !ok || c.Confidence.LessThan(floor) {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].Confidence.Equal(candidates[j].Confidence) {
			return candidates[i].Confidence.GreaterThan(candidates[j].Confidence)
		}
		return candidates[i].MemberID < candidates[j].MemberID
	})
	if len(candidates) > policy.MaxCandidates {
		candidates = candidates[:policy.MaxCandidates]
	}

	if len(candidates) == 0 {
		return Result{Decision: DecisionNone, Confidence: decimal.Zero}
	}

	top := candidates[0]
	auto := decimal.NewFromFloat(policy.Thresholds.AutoAssign)
	ambiguity := decimal.NewFromFloat(policy.Thresholds.Ambiguity)
	unambiguous := len(candidates) == 1 || candidates[1].Confidence.LessThan(ambiguity)
	if top.Confidence.GreaterThanOrEqual(auto) && unambiguous {
		return Result{
			Decision:   DecisionAutoAssign,
			MemberID:   top.MemberID,
			Confidence: top.Confidence,
			Candidates: []domain.MatchCandidate{top},
			Ranked:     candidates,
		}
	}
	return Result{Decision: DecisionDraft, Confidence: top.Confidence, Candidates: candidates, Ranked: candidates}
}

func scoreMember(f features, m domain.Member, policy Policy) (domain.MatchCandidate, bool) {
	var matched []decimal.Decimal
	var reasons []string

	if hit := memberCodeHit(f, m); hit != "" {
		matched = append(matched, decimal.NewFromFloat(policy.Weights.MemberCode))
		reasons = append(reasons, hit)
	}

	if phone := NormalizePhone(m.Phone); phone != "" && f.phones[phone] {
		matched = append(matched, decimal.NewFromFloat(policy.Weights.Phone))
		reasons = append(reasons, "phone number match")
	}

	memberName := NormalizeName(m.Name)
	switch {
	case memberName == "":
	case f.payerName != "" && f.payerName == memberName,
		f.payerName == "" && containsAllWords(f.particulars, m.Name):
		matched = append(matched, decimal.NewFromFloat(policy.Weights.ExactName))
		reasons = append(reasons, "exact name match")
	case f.payerName != "":
		sim := Similarity(f.payerName, memberName)
		if sim >= policy.Thresholds.FuzzyName {
			w := decimal.NewFromFloat(policy.Weights.FuzzyName).Mul(decimal.NewFromFloat(sim)).Round(4)
			matched = append(matched, w)
			reasons = append(reasons, fmt.Sprintf("name match (%.0f%% similarity)", sim*100))
		}
	}

	if len(matched) == 0 {
		return domain.MatchCandidate{}, false
	}

	total := decimal.Zero
	for i, w := range matched {
		total = total.Add(w)
		reasons[i] = fmt.Sprintf("%s (+%s)", reasons[i], w.StringFixed(2))
	}
	total = decimal.Min(total, decimal.NewFromInt(1)).Round(2)
	if !total.IsPositive() {
		return domain.MatchCandidate{}, false
	}

	return domain.MatchCandidate{
		MemberID:   m.MemberID,
		Confidence: total,
		Reason:     strings.Join(reasons, "; "),
	}, true
}

func memberCodeHit(f features, m domain.Member) string {
	code := strings.ToUpper(strings.TrimSpace(m.MemberCode))
	number := strings.ToUpper(strings.TrimSpace(m.MemberNumber))
	switch {
	case f.code != "" && (f.code == code || f.code == number):
		return "member code match on transaction code"
	case code != "" && f.tokens[code]:
		return "member code match in particulars"
	}
	return ""
}
