package model

// Flag is a Y/N ownership indicator as it appears in the training dataset.
type Flag string

const (
	FlagYes Flag = "Y"
	FlagNo  Flag = "N"
)

// RiskTier buckets a default probability into a coarse risk band.
type RiskTier string

const (
	RiskTierLow    RiskTier = "Low"
	RiskTierMedium RiskTier = "Medium"
	RiskTierHigh   RiskTier = "High"
)

// Decision is the approve/reject outcome derived from a RiskTier.
type Decision string

const (
	DecisionApprove            Decision = "APPROVE"
	DecisionApproveConditional Decision = "APPROVE_CONDITIONAL"
	DecisionReject             Decision = "REJECT"
)

// Label returns the human-facing form of the decision.
func (d Decision) Label() string {
	switch d {
	case DecisionApprove:
		return "APPROVE"
	case DecisionApproveConditional:
		return "APPROVE (Conditional)"
	case DecisionReject:
		return "REJECT"
	default:
		return string(d)
	}
}

// Categorical dataset column names. These are also the vocabulary keys.
const (
	FieldIncomeType = "NAME_INCOME_TYPE"
	FieldOwnCar     = "FLAG_OWN_CAR"
	FieldOwnRealty  = "FLAG_OWN_REALTY"
)

// Numeric dataset column names.
const (
	FieldIncomeTotal   = "AMT_INCOME_TOTAL"
	FieldDaysEmployed  = "DAYS_EMPLOYED"
	FieldChildrenCount = "CNT_CHILDREN"
	FieldTarget        = "TARGET"
)

// FeatureColumns is the column order of every FeatureVector. A Risk Model is
// trained against exactly this order.
var FeatureColumns = []string{
	FieldIncomeTotal,
	FieldDaysEmployed,
	FieldIncomeType,
	FieldChildrenCount,
	FieldOwnCar,
	FieldOwnRealty,
}

// CategoricalFields lists the columns that must be encoded through a
// FeatureVocabulary.
var CategoricalFields = []string{FieldIncomeType, FieldOwnCar, FieldOwnRealty}
