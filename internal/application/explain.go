package application

import "github.com/ericfisherdev/creditpanel/internal/domain/model"

// Explanation reasons, in evaluation order.
const (
	ReasonHighIncome       = "High Income Stability (+)"
	ReasonStableEmployment = "Stable Employment Duration (+)"
	ReasonShortEmployment  = "Short Employment History (-)"
	ReasonAssetOwnership   = "Asset Ownership (+)"
)

const (
	highIncomeThreshold  = 250000
	stableEmploymentMin  = 5
	shortEmploymentUnder = 1
)

var tierSummaries = map[model.RiskTier]string{
	model.RiskTierLow:    "Strong financial profile with low default probability.",
	model.RiskTierMedium: "Moderate risk detected. Approval subject to interest rate adjustment.",
	model.RiskTierHigh:   "High default risk based on income or employment factors.",
}

// Explain builds the explanation for an applicant from the raw record, not
// the encoded vector. Each rule contributes at most one reason.
func Explain(a model.Applicant, tier model.RiskTier) model.Explanation {
	var reasons []string

	if a.IncomeTotal > highIncomeThreshold {
		reasons = append(reasons, ReasonHighIncome)
	}

	// Neither employment reason fires for tenure in [1, 5].
	if a.YearsEmployed > stableEmploymentMin {
		reasons = append(reasons, ReasonStableEmployment)
	} else if a.YearsEmployed < shortEmploymentUnder {
		reasons = append(reasons, ReasonShortEmployment)
	}

	if a.OwnsAssets() {
		reasons = append(reasons, ReasonAssetOwnership)
	}

	return model.Explanation{
		Summary: tierSummaries[tier],
		Reasons: reasons,
	}
}
