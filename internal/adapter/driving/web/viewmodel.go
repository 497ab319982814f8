package web

import (
	"strconv"
	"strings"
	"time"

	vm "github.com/ericfisherdev/creditpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// Form field names, shared with the JSON API.
const (
	fieldIncomeTotal   = "income_total"
	fieldYearsEmployed = "years_employed"
	fieldIncomeType    = "income_type"
	fieldChildren      = "cnt_children"
	fieldOwnCar        = "flag_own_car"
	fieldOwnRealty     = "flag_own_realty"
)

// formFields maps vocabulary keys to form field names.
var formFields = map[string]string{
	model.FieldIncomeType: fieldIncomeType,
	model.FieldOwnCar:     fieldOwnCar,
	model.FieldOwnRealty:  fieldOwnRealty,
}

var demoProfiles = []vm.DemoProfile{
	{Name: "Stable applicant", Values: map[string]string{
		fieldIncomeTotal:   "450000",
		fieldYearsEmployed: "6",
		fieldIncomeType:    "State servant",
		fieldChildren:      "0",
		fieldOwnCar:        "Y",
		fieldOwnRealty:     "Y",
	}},
	{Name: "Risky applicant", Values: map[string]string{
		fieldIncomeTotal:   "120000",
		fieldYearsEmployed: "0.5",
		fieldIncomeType:    "Student",
		fieldChildren:      "0",
		fieldOwnCar:        "N",
		fieldOwnRealty:     "N",
	}},
}

// assessForm is the raw submitted form.
type assessForm struct {
	IncomeTotal   string
	YearsEmployed string
	IncomeType    string
	Children      string
	OwnsCar       string
	OwnsRealty    string
}

// formError is a submission problem tied to one form field.
type formError struct {
	Field   string
	Message string
}

// parse converts the submitted strings into an Applicant. Category labels
// are checked later by the encoder.
func (f assessForm) parse() (model.Applicant, *formError) {
	income, err := strconv.ParseFloat(strings.TrimSpace(f.IncomeTotal), 64)
	if err != nil || income < 0 {
		return model.Applicant{}, &formError{fieldIncomeTotal, "Income must be a non-negative number."}
	}

	years, err := strconv.ParseFloat(strings.TrimSpace(f.YearsEmployed), 64)
	if err != nil || years < 0 || years > 100 {
		return model.Applicant{}, &formError{fieldYearsEmployed, "Years employed must be between 0 and 100."}
	}

	children, err := strconv.Atoi(strings.TrimSpace(f.Children))
	if err != nil || children < 0 || children > 50 {
		return model.Applicant{}, &formError{fieldChildren, "Number of children must be a whole number between 0 and 50."}
	}

	return model.NewApplicant(income, years, f.IncomeType, children, model.Flag(f.OwnsCar), model.Flag(f.OwnsRealty)), nil
}

func toHomeViewModel(modelLoaded bool, count int) vm.HomeViewModel {
	return vm.HomeViewModel{ModelLoaded: modelLoaded, RecordCount: count}
}

// toSelectOptions lists the vocabulary labels of field, marking selected.
func toSelectOptions(vocab *model.FeatureVocabulary, field, selected string) []vm.SelectOption {
	if vocab == nil {
		return nil
	}

	labels := vocab.Labels(field)
	opts := make([]vm.SelectOption, 0, len(labels))
	for _, l := range labels {
		opts = append(opts, vm.SelectOption{Value: l, Label: optionLabel(field, l), Selected: l == selected})
	}
	return opts
}

func optionLabel(field, label string) string {
	if field == model.FieldOwnCar || field == model.FieldOwnRealty {
		switch model.Flag(label) {
		case model.FlagYes:
			return "Yes"
		case model.FlagNo:
			return "No"
		}
	}
	return label
}

// toAssessFormViewModel builds the form state from the submitted values.
func toAssessFormViewModel(vocab *model.FeatureVocabulary, f assessForm, token string) vm.AssessFormViewModel {
	return vm.AssessFormViewModel{
		CSRFToken:     token,
		ModelLoaded:   vocab != nil,
		IncomeTotal:   f.IncomeTotal,
		YearsEmployed: f.YearsEmployed,
		Children:      f.Children,
		IncomeTypes:   toSelectOptions(vocab, model.FieldIncomeType, f.IncomeType),
		OwnsCar:       toSelectOptions(vocab, model.FieldOwnCar, f.OwnsCar),
		OwnsRealty:    toSelectOptions(vocab, model.FieldOwnRealty, f.OwnsRealty),
		Demos:         demoProfiles,
	}
}

func riskClass(tier model.RiskTier) string {
	return strings.ToLower(string(tier))
}

// toAssessmentViewModel converts a pipeline outcome for display.
func toAssessmentViewModel(out application.Outcome) *vm.AssessmentViewModel {
	a := out.Assessment
	return &vm.AssessmentViewModel{
		CreditScore:    a.CreditScore,
		RiskLevel:      string(a.RiskTier),
		RiskClass:      riskClass(a.RiskTier),
		DecisionLabel:  a.Decision.Label(),
		DefaultPercent: strconv.FormatFloat(a.DefaultPercent(), 'f', 1, 64) + "%",
		Summary:        a.Explanation.Summary,
		Reasons:        a.Explanation.Reasons,
		Recorded:       out.Persisted,
	}
}

// toHistoryViewModel converts ledger records, already newest first.
func toHistoryViewModel(recs []model.ApplicationRecord) vm.HistoryViewModel {
	rows := make([]vm.HistoryRowViewModel, 0, len(recs))
	for _, rec := range recs {
		a, res := rec.Applicant, rec.Assessment
		rows = append(rows, vm.HistoryRowViewModel{
			ID:            rec.ID,
			CreatedAt:     rec.CreatedAt.UTC().Format(time.DateTime),
			IncomeTotal:   strconv.FormatFloat(a.IncomeTotal, 'f', 0, 64),
			YearsEmployed: strconv.FormatFloat(a.YearsEmployed, 'f', 1, 64),
			IncomeType:    a.IncomeType,
			Children:      a.ChildrenCount,
			OwnsCar:       string(a.OwnsCar),
			OwnsRealty:    string(a.OwnsRealty),
			CreditScore:   res.CreditScore,
			RiskLevel:     string(res.RiskTier),
			RiskClass:     riskClass(res.RiskTier),
			Decision:      res.Decision.Label(),
		})
	}
	return vm.HistoryViewModel{Rows: rows}
}
