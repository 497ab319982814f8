package application

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

func TestDecide_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		p        float64
		tier     model.RiskTier
		decision model.Decision
	}{
		{"zero", 0, model.RiskTierLow, model.DecisionApprove},
		{"just under low ceiling", 0.149999, model.RiskTierLow, model.DecisionApprove},
		{"low ceiling is medium", 0.15, model.RiskTierMedium, model.DecisionApproveConditional},
		{"mid medium", 0.25, model.RiskTierMedium, model.DecisionApproveConditional},
		{"medium ceiling is medium", 0.35, model.RiskTierMedium, model.DecisionApproveConditional},
		{"just over medium ceiling", 0.350001, model.RiskTierHigh, model.DecisionReject},
		{"one", 1, model.RiskTierHigh, model.DecisionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decide(tt.p)
			assert.Equal(t, tt.tier, v.RiskTier)
			assert.Equal(t, tt.decision, v.Decision)
		})
	}
}

func TestDecide_ScoreConsistency(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		p := float64(i) / 1000
		v := Decide(p)

		assert.Equal(t, int(math.Round(100*(1-p))), v.CreditScore, "p=%v", p)
		assert.GreaterOrEqual(t, v.CreditScore, 0)
		assert.LessOrEqual(t, v.CreditScore, 100)
		assert.Equal(t, v, Decide(p), "verdict must be stable for p=%v", p)
	}
}

func TestCreditScore(t *testing.T) {
	tests := []struct {
		p    float64
		want int
	}{
		{0, 100},
		{1, 0},
		{0.15, 85},
		{0.35, 65},
		{0.004, 100},
		{-0.5, 100},
		{1.5, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CreditScore(tt.p), "p=%v", tt.p)
	}
}
