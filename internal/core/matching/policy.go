package matching

import (
	"fmt"
	"os"

	"github.com/SscSPs/reconciliation_engine/internal/apperrors"
	"gopkg.in/yaml.v3"
)

// Weights is the contribution of each signal to the confidence score.
type Weights struct {
	MemberCode float64 `yaml:"member_code"`
	Phone      float64 `yaml:"phone"`
	ExactName  float64 `yaml:"exact_name"`
	FuzzyName  float64 `yaml:"fuzzy_name"`
}

// Thresholds drive the auto-assign / draft / unassigned decision.
type Thresholds struct {
	// AutoAssign is the confidence at or above which the top candidate is assigned.
	AutoAssign float64 `yaml:"auto_assign"`
	// Ambiguity blocks auto-assignment when the runner-up reaches it.
	Ambiguity float64 `yaml:"ambiguity"`
	// CandidateFloor is the lowest confidence kept as a draft candidate.
	CandidateFloor float64 `yaml:"candidate_floor"`
	// FuzzyName is the minimum name similarity that counts as a fuzzy match.
	FuzzyName float64 `yaml:"fuzzy_name"`
}

// Policy is the configurable matching policy.
type Policy struct {
	Weights       Weights    `yaml:"weights"`
	Thresholds    Thresholds `yaml:"thresholds"`
	MaxCandidates int        `yaml:"max_candidates"`
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		Weights: Weights{
			MemberCode: 1.0,
			Phone:      0.6,
			ExactName:  0.4,
			FuzzyName:  0.4,
		},
		Thresholds: Thresholds{
			AutoAssign:     1.0,
			Ambiguity:      0.9,
			CandidateFloor: 0.2,
			FuzzyName:      0.6,
		},
		MaxCandidates: 5,
	}
}

// LoadPolicyFile overlays the YAML file at path on top of base.
// Keys missing from the file keep their value from base.
func LoadPolicyFile(path string, base Policy) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read matching policy %s: %w", path, err)
	}
	policy := base
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return base, fmt.Errorf("failed to parse matching policy %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return base, err
	}
	return policy, nil
}

// Validate checks that every threshold is within [0, 1] and weights are not negative.
func (p Policy) Validate() error {
	unit := map[string]float64{
		"thresholds.auto_assign":     p.Thresholds.AutoAssign,
		"thresholds.ambiguity":       p.Thresholds.Ambiguity,
		"thresholds.candidate_floor": p.Thresholds.CandidateFloor,
		"thresholds.fuzzy_name":      p.Thresholds.FuzzyName,
	}
	for name, v := range unit {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %v", apperrors.ErrValidation, name, v)
		}
	}
	weights := map[string]float64{
		"weights.member_code": p.Weights.MemberCode,
		"weights.phone":       p.Weights.Phone,
		"weights.exact_name":  p.Weights.ExactName,
		"weights.fuzzy_name":  p.Weights.FuzzyName,
	}
	for name, v := range weights {
		if v < 0 {
			return fmt.Errorf("%w: %s cannot be negative, got %v", apperrors.ErrValidation, name, v)
		}
	}
	if p.Thresholds.CandidateFloor > p.Thresholds.AutoAssign {
		return fmt.Errorf("%w: candidate_floor cannot exceed auto_assign", apperrors.ErrValidation)
	}
	if p.MaxCandidates < 1 {
		return fmt.Errorf("%w: max_candidates must be at least 1", apperrors.ErrValidation)
	}
	return nil
}
