package model

import (
	"math"
	"strings"
)

// FeatureVector is the numeric model input, ordered as FeatureColumns.
type FeatureVector []float64

// Explanation is the human-readable justification attached to an assessment.
// Reasons keep the order in which their rules were evaluated.
type Explanation struct {
	Summary string
	Reasons []string
}

// Text renders the explanation as a single sentence block:
// the summary, then "Key factors: a; b; c" when any reason fired.
func (e Explanation) Text() string {
	if len(e.Reasons) == 0 {
		return e.Summary
	}
	return e.Summary + " Key factors: " + strings.Join(e.Reasons, "; ")
}

// Assessment is the outcome of running one Applicant through the pipeline.
type Assessment struct {
	ProbabilityOfDefault float64
	CreditScore          int
	RiskTier             RiskTier
	Decision             Decision
	Explanation          Explanation
}

// DefaultPercent returns the default probability as a percentage rounded to
// one decimal place.
func (a Assessment) DefaultPercent() float64 {
	return math.Round(a.ProbabilityOfDefault*1000) / 10
}
