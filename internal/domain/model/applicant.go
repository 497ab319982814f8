package model

// daysPerYear converts years of employment into the dataset's DAYS_EMPLOYED
// convention: negative days before the application date.
const daysPerYear = 365

// UnemployedDaysSentinel is the DAYS_EMPLOYED value the dataset uses for
// applicants without current employment, such as pensioners.
const UnemployedDaysSentinel = 365243

// Applicant is the raw input to an assessment as submitted by a caller.
// Range validation beyond category membership is the caller's concern.
type Applicant struct {
	IncomeTotal   float64
	YearsEmployed float64
	DaysEmployed  float64
	IncomeType    string
	ChildrenCount int
	OwnsCar       Flag
	OwnsRealty    Flag
}

// NewApplicant builds an Applicant from the years-based form input, deriving
// DaysEmployed as -365 × years.
func NewApplicant(income, yearsEmployed float64, incomeType string, children int, ownsCar, ownsRealty Flag) Applicant {
	return Applicant{
		IncomeTotal:   income,
		YearsEmployed: yearsEmployed,
		DaysEmployed:  -daysPerYear * yearsEmployed,
		IncomeType:    incomeType,
		ChildrenCount: children,
		OwnsCar:       ownsCar,
		OwnsRealty:    ownsRealty,
	}
}

// ApplicantFromDays builds an Applicant from a dataset row, which carries
// DAYS_EMPLOYED directly. The raw days value is kept verbatim so the
// sentinel reaches the model unchanged, but it counts as 0 years employed.
func ApplicantFromDays(income, daysEmployed float64, incomeType string, children int, ownsCar, ownsRealty Flag) Applicant {
	years := -daysEmployed / daysPerYear
	if daysEmployed == UnemployedDaysSentinel {
		years = 0
	}
	return Applicant{
		IncomeTotal:   income,
		YearsEmployed: years,
		DaysEmployed:  daysEmployed,
		IncomeType:    incomeType,
		ChildrenCount: children,
		OwnsCar:       ownsCar,
		OwnsRealty:    ownsRealty,
	}
}

// OwnsAssets reports whether the applicant owns a car or real estate.
func (a Applicant) OwnsAssets() bool {
	return a.OwnsCar == FlagYes || a.OwnsRealty == FlagYes
}
