package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFieldError writes a 400 naming the offending request field.
func writeFieldError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message, Field: field})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// AssessRequest is the JSON body of the assess endpoint. Field names follow
// the assessment form. Children decodes as a float so that 2.0, which the
// schema accepts as an integer, is not rejected by encoding/json.
type AssessRequest struct {
	IncomeTotal   float64 `json:"income_total"`
	YearsEmployed float64 `json:"years_employed"`
	IncomeType    string  `json:"income_type"`
	Children      float64 `json:"cnt_children"`
	FlagOwnCar    string  `json:"flag_own_car"`
	FlagOwnRealty string  `json:"flag_own_realty"`
}

// requestFields maps dataset column names back to request field names.
var requestFields = map[string]string{
	model.FieldIncomeTotal:   "income_total",
	model.FieldDaysEmployed:  "years_employed",
	model.FieldIncomeType:    "income_type",
	model.FieldChildrenCount: "cnt_children",
	model.FieldOwnCar:        "flag_own_car",
	model.FieldOwnRealty:     "flag_own_realty",
}

func (r AssessRequest) toApplicant() model.Applicant {
	return model.NewApplicant(
		r.IncomeTotal,
		r.YearsEmployed,
		r.IncomeType,
		int(r.Children),
		model.Flag(r.FlagOwnCar),
		model.Flag(r.FlagOwnRealty),
	)
}

// AssessmentResponse is the JSON representation of a completed assessment.
type AssessmentResponse struct {
	CreditScore        int      `json:"credit_score"`
	RiskLevel          string   `json:"risk_level"`
	Decision           string   `json:"decision"`
	DecisionLabel      string   `json:"decision_label"`
	Explanation        string   `json:"explanation"`
	Summary            string   `json:"summary"`
	Reasons            []string `json:"reasons"`
	ProbDefault        float64  `json:"prob_default"`
	ProbDefaultPercent float64  `json:"prob_default_percent"`
	ApplicationID      int64    `json:"application_id,omitempty"`
	Recorded           bool     `json:"recorded"`
}

// ApplicationResponse is the JSON representation of one ledger record.
type ApplicationResponse struct {
	ID            int64    `json:"id"`
	IncomeTotal   float64  `json:"income_total"`
	DaysEmployed  float64  `json:"days_employed"`
	YearsEmployed float64  `json:"years_employed"`
	IncomeType    string   `json:"income_type"`
	Children      int      `json:"cnt_children"`
	FlagOwnCar    string   `json:"flag_own_car"`
	FlagOwnRealty string   `json:"flag_own_realty"`
	ProbDefault   float64  `json:"prob_default"`
	CreditScore   int      `json:"credit_score"`
	RiskLevel     string   `json:"risk_level"`
	Decision      string   `json:"decision"`
	Explanation   string   `json:"explanation"`
	Reasons       []string `json:"reasons"`
	CreatedAt     string   `json:"created_at"`
}

// VocabularyResponse lists the accepted labels of every categorical field.
type VocabularyResponse struct {
	Fields map[string][]string `json:"fields"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Time        string `json:"time"`
	ModelLoaded bool   `json:"model_loaded"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// toAssessmentResponse converts a pipeline outcome to its JSON representation.
func toAssessmentResponse(out application.Outcome) AssessmentResponse {
	a := out.Assessment
	return AssessmentResponse{
		CreditScore:        a.CreditScore,
		RiskLevel:          string(a.RiskTier),
		Decision:           string(a.Decision),
		DecisionLabel:      a.Decision.Label(),
		Explanation:        a.Explanation.Text(),
		Summary:            a.Explanation.Summary,
		Reasons:            nonNil(a.Explanation.Reasons),
		ProbDefault:        a.ProbabilityOfDefault,
		ProbDefaultPercent: a.DefaultPercent(),
		ApplicationID:      out.Record.ID,
		Recorded:           out.Persisted,
	}
}

// toApplicationResponse converts a ledger record to its JSON representation.
func toApplicationResponse(rec model.ApplicationRecord) ApplicationResponse {
	a, res := rec.Applicant, rec.Assessment
	return ApplicationResponse{
		ID:            rec.ID,
		IncomeTotal:   a.IncomeTotal,
		DaysEmployed:  a.DaysEmployed,
		YearsEmployed: a.YearsEmployed,
		IncomeType:    a.IncomeType,
		Children:      a.ChildrenCount,
		FlagOwnCar:    string(a.OwnsCar),
		FlagOwnRealty: string(a.OwnsRealty),
		ProbDefault:   res.ProbabilityOfDefault,
		CreditScore:   res.CreditScore,
		RiskLevel:     string(res.RiskTier),
		Decision:      string(res.Decision),
		Explanation:   res.Explanation.Text(),
		Reasons:       nonNil(res.Explanation.Reasons),
		CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
