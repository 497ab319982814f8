package application

import (
	"math"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// Decision thresholds on the probability of default. Low is exclusive,
// Medium is inclusive on both ends.
const (
	LowRiskCeiling    = 0.15
	MediumRiskCeiling = 0.35
)

// Verdict is the policy output for a single probability.
type Verdict struct {
	CreditScore int
	RiskTier    model.RiskTier
	Decision    model.Decision
}

// Decide maps a probability of default to a credit score, risk tier and
// decision. It is pure: equal probabilities always give equal verdicts.
func Decide(p float64) Verdict {
	v := Verdict{CreditScore: CreditScore(p)}

	switch {
	case p < LowRiskCeiling:
		v.RiskTier, v.Decision = model.RiskTierLow, model.DecisionApprove
	case p <= MediumRiskCeiling:
		v.RiskTier, v.Decision = model.RiskTierMedium, model.DecisionApproveConditional
	default:
		v.RiskTier, v.Decision = model.RiskTierHigh, model.DecisionReject
	}

	return v
}

// CreditScore returns round(100 × (1 − p)) clamped to [0, 100].
func CreditScore(p float64) int {
	score := int(math.Round(100 * (1 - p)))
	return max(0, min(100, score))
}
