package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name      string
		applicant model.Applicant
		want      []string
	}{
		{
			name:      "all positive factors",
			applicant: model.NewApplicant(300000, 6, "Working", 0, model.FlagYes, model.FlagNo),
			want:      []string{ReasonHighIncome, ReasonStableEmployment, ReasonAssetOwnership},
		},
		{
			name:      "short employment without assets",
			applicant: model.NewApplicant(120000, 0.5, "Student", 0, model.FlagNo, model.FlagNo),
			want:      []string{ReasonShortEmployment},
		},
		{
			name:      "exactly one year fires no employment reason",
			applicant: model.NewApplicant(100000, 1, "Working", 1, model.FlagNo, model.FlagNo),
			want:      nil,
		},
		{
			name:      "exactly five years fires no employment reason",
			applicant: model.NewApplicant(100000, 5, "Working", 1, model.FlagNo, model.FlagNo),
			want:      nil,
		},
		{
			name:      "income at threshold is not high income",
			applicant: model.NewApplicant(250000, 3, "Working", 0, model.FlagNo, model.FlagYes),
			want:      []string{ReasonAssetOwnership},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(tt.applicant, model.RiskTierMedium)
			assert.Equal(t, tt.want, got.Reasons)
			assert.Equal(t, got, Explain(tt.applicant, model.RiskTierMedium))
		})
	}
}

func TestExplain_SummaryByTier(t *testing.T) {
	a := model.NewApplicant(300000, 6, "Working", 0, model.FlagYes, model.FlagNo)

	low := Explain(a, model.RiskTierLow)
	assert.Equal(t,
		"Strong financial profile with low default probability. Key factors: High Income Stability (+); Stable Employment Duration (+); Asset Ownership (+)",
		low.Text(),
	)

	medium := Explain(model.NewApplicant(100000, 3, "Working", 0, model.FlagNo, model.FlagNo), model.RiskTierMedium)
	assert.Equal(t, "Moderate risk detected. Approval subject to interest rate adjustment.", medium.Text())

	high := Explain(a, model.RiskTierHigh)
	assert.Equal(t, "High default risk based on income or employment factors.", high.Summary)
}
