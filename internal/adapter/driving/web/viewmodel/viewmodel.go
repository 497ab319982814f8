// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// HomeViewModel holds the data for the landing page.
type HomeViewModel struct {
	ModelLoaded bool
	RecordCount int
}

// SelectOption is one choice of a categorical form field.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// DemoProfile pre-fills the assessment form with a sample applicant.
type DemoProfile struct {
	Name   string
	Values map[string]string
}

// AssessFormViewModel holds the assessment form state: submitted values,
// the categorical options, and the result or error of the last submission.
type AssessFormViewModel struct {
	CSRFToken   string
	ModelLoaded bool

	IncomeTotal   string
	YearsEmployed string
	Children      string

	IncomeTypes []SelectOption
	OwnsCar     []SelectOption
	OwnsRealty  []SelectOption

	Demos []DemoProfile

	Error      string
	ErrorField string
	Result     *AssessmentViewModel
}

// AssessmentViewModel holds presentation-ready data for one assessment result.
type AssessmentViewModel struct {
	CreditScore    int
	RiskLevel      string
	RiskClass      string // css modifier: low, medium, high
	DecisionLabel  string
	DefaultPercent string
	Summary        string
	Reasons        []string
	Recorded       bool
}

// HistoryRowViewModel holds one row of the history table.
type HistoryRowViewModel struct {
	ID            int64
	CreatedAt     string
	IncomeTotal   string
	YearsEmployed string
	IncomeType    string
	Children      int
	OwnsCar       string
	OwnsRealty    string
	CreditScore   int
	RiskLevel     string
	RiskClass     string
	Decision      string
}

// HistoryViewModel holds the history page.
type HistoryViewModel struct {
	Rows []HistoryRowViewModel
}
