// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/creditpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	assessSvc    *application.AssessService
	fairnessHTML string
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(assessSvc *application.AssessService, logger *slog.Logger) *Handler {
	return &Handler{
		assessSvc:    assessSvc,
		fairnessHTML: RenderMarkdown(fairnessMarkdown),
		logger:       logger,
	}
}

// render writes a full page with the given status.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title, active string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := templates.Layout(title, active, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	count, err := h.assessSvc.RecordCount(r.Context())
	if err != nil {
		h.logger.Error("failed to count applications", "error", err)
	}

	h.render(w, r, http.StatusOK, "Home", "/", templates.Home(toHomeViewModel(h.assessSvc.Ready(), count)))
}

// AssessForm renders an empty assessment form.
func (h *Handler) AssessForm(w http.ResponseWriter, r *http.Request) {
	token := csrfToken(w, r)
	data := toAssessFormViewModel(h.assessSvc.Vocabulary(), assessForm{}, token)

	h.render(w, r, http.StatusOK, "Assess", "/app/assess", templates.AssessForm(data))
}

// SubmitAssessment scores the submitted form and re-renders it with the result.
func (h *Handler) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "Assess", "/app/assess",
			templates.Message("Invalid form", "The submitted form could not be read."))
		return
	}

	if !validateCSRF(r) {
		h.render(w, r, http.StatusForbidden, "Assess", "/app/assess",
			templates.Message("Session expired", "Reload the assessment form and submit it again."))
		return
	}

	form := assessForm{
		IncomeTotal:   r.PostFormValue(fieldIncomeTotal),
		YearsEmployed: r.PostFormValue(fieldYearsEmployed),
		IncomeType:    r.PostFormValue(fieldIncomeType),
		Children:      r.PostFormValue(fieldChildren),
		OwnsCar:       r.PostFormValue(fieldOwnCar),
		OwnsRealty:    r.PostFormValue(fieldOwnRealty),
	}
	data := toAssessFormViewModel(h.assessSvc.Vocabulary(), form, csrfToken(w, r))

	applicant, formErr := form.parse()
	if formErr != nil {
		data.Error, data.ErrorField = formErr.Message, formErr.Field
		h.render(w, r, http.StatusBadRequest, "Assess", "/app/assess", templates.AssessForm(data))
		return
	}

	out, err := h.assessSvc.Assess(r.Context(), applicant)
	if err != nil {
		var encErr *model.EncodingError
		status := http.StatusInternalServerError
		switch {
		case errors.As(err, &encErr):
			status = http.StatusBadRequest
			data.Error, data.ErrorField = "Please choose one of the listed options.", formFields[encErr.Field]
		case errors.Is(err, model.ErrServiceUnavailable):
			status = http.StatusServiceUnavailable
		default:
			h.logger.Error("assessment failed", "error", err)
			data.Error = "The assessment could not be completed. Please try again."
		}
		h.render(w, r, status, "Assess", "/app/assess", templates.AssessForm(data))
		return
	}

	data.Result = toAssessmentViewModel(out)
	h.render(w, r, http.StatusOK, "Assess", "/app/assess", templates.AssessForm(data))
}

// History renders the application history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	recs, err := h.assessSvc.History(r.Context())
	if err != nil {
		h.logger.Error("failed to list applications", "error", err)
		h.render(w, r, http.StatusInternalServerError, "History", "/app/history",
			templates.Message("History unavailable", "The application history could not be loaded."))
		return
	}

	h.render(w, r, http.StatusOK, "History", "/app/history", templates.History(toHistoryViewModel(recs)))
}

// Fairness renders the fairness and transparency notes.
func (h *Handler) Fairness(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "Fairness", "/app/fairness", templates.Fairness(h.fairnessHTML))
}
