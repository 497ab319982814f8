package templates

import (
	"context"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/creditpanel/internal/adapter/driving/web/viewmodel"
)

// Home renders the landing page.
func Home(data vm.HomeViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="hero"><h1>Credit risk assessment</h1>`)
		h.raw(`<p>Score an applicant's probability of default, get an approve or reject decision with the reasons behind it, and keep an audit trail of every assessment.</p>`)
		h.raw(`<p><a class="button" href="/app/assess">Start an assessment</a></p></section>`)
		h.raw(`<section class="stats"><div class="stat"><span class="stat-label">Model</span>`)
		if data.ModelLoaded {
			h.raw(`<span class="stat-value ok">Loaded</span>`)
		} else {
			h.raw(`<span class="stat-value degraded">Unavailable</span>`)
		}
		h.raw(`</div><div class="stat"><span class="stat-label">Recorded assessments</span><span class="stat-value">`)
		h.int(data.RecordCount)
		h.raw(`</span></div></section>`)
		return h.err
	})
}

// AssessForm renders the assessment form and, when present, the result of
// the last submission.
func AssessForm(data vm.AssessFormViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="panel"><h1>Assess an applicant</h1>`)

		if !data.ModelLoaded {
			h.raw(`<p class="alert">The risk model is not loaded. Assessments are unavailable until the service is restarted with a valid model.</p></section>`)
			return h.err
		}

		h.raw(`<div class="demos">`)
		for _, d := range data.Demos {
			h.raw(`<button type="button" class="demo"`)
			for _, k := range slices.Sorted(maps.Keys(d.Values)) {
				h.raw(` data-`)
				h.text(k)
				h.raw(`="`)
				h.text(d.Values[k])
				h.raw(`"`)
			}
			h.raw(`>`)
			h.text(d.Name)
			h.raw(`</button>`)
		}
		h.raw(`</div>`)

		if data.Error != "" {
			h.raw(`<p class="alert" role="alert"`)
			if data.ErrorField != "" {
				h.raw(` data-field="`)
				h.text(data.ErrorField)
				h.raw(`"`)
			}
			h.raw(`>`)
			h.text(data.Error)
			h.raw(`</p>`)
		}

		h.raw(`<form id="assess-form" method="post" action="/app/assess">`)
		h.raw(`<input type="hidden" name="csrf_token" value="`)
		h.text(data.CSRFToken)
		h.raw(`">`)
		numberInput(h, "income_total", "Annual income", data.IncomeTotal, "0", "any")
		numberInput(h, "years_employed", "Years employed", data.YearsEmployed, "0", "0.1")
		selectInput(h, "income_type", "Income type", data.IncomeTypes)
		numberInput(h, "cnt_children", "Number of children", data.Children, "0", "1")
		selectInput(h, "flag_own_car", "Owns a car", data.OwnsCar)
		selectInput(h, "flag_own_realty", "Owns real estate", data.OwnsRealty)
		h.raw(`<button type="submit" class="button">Assess creditworthiness</button></form></section>`)

		if data.Result != nil {
			result(h, data.Result)
		}
		return h.err
	})
}

func numberInput(h *htmlWriter, name, label, value, minimum, step string) {
	h.raw(`<label for="`)
	h.text(name)
	h.raw(`">`)
	h.text(label)
	h.raw(`</label><input type="number" required id="`)
	h.text(name)
	h.raw(`" name="`)
	h.text(name)
	h.raw(`" min="`)
	h.text(minimum)
	h.raw(`" step="`)
	h.text(step)
	h.raw(`" value="`)
	h.text(value)
	h.raw(`">`)
}

func selectInput(h *htmlWriter, name, label string, opts []vm.SelectOption) {
	h.raw(`<label for="`)
	h.text(name)
	h.raw(`">`)
	h.text(label)
	h.raw(`</label><select required id="`)
	h.text(name)
	h.raw(`" name="`)
	h.text(name)
	h.raw(`">`)
	for _, o := range opts {
		h.raw(`<option value="`)
		h.text(o.Value)
		h.raw(`"`)
		if o.Selected {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(o.Label)
		h.raw(`</option>`)
	}
	h.raw(`</select>`)
}

func result(h *htmlWriter, r *vm.AssessmentViewModel) {
	h.raw(`<section class="panel result risk-`)
	h.text(r.RiskClass)
	h.raw(`" id="result"><div class="score"><span class="score-value">`)
	h.int(r.CreditScore)
	h.raw(`</span><span class="score-label">Credit score</span></div>`)
	h.raw(`<dl><dt>Decision</dt><dd class="decision">`)
	h.text(r.DecisionLabel)
	h.raw(`</dd><dt>Risk level</dt><dd>`)
	h.text(r.RiskLevel)
	h.raw(`</dd><dt>Probability of default</dt><dd>`)
	h.text(r.DefaultPercent)
	h.raw(`</dd></dl><p class="summary">`)
	h.text(r.Summary)
	h.raw(`</p>`)
	if len(r.Reasons) > 0 {
		h.raw(`<h2>Key factors</h2><ul class="reasons">`)
		for _, reason := range r.Reasons {
			h.raw(`<li>`)
			h.text(reason)
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	}
	if !r.Recorded {
		h.raw(`<p class="alert">This assessment could not be saved to the history.</p>`)
	}
	h.raw(`</section>`)
}

// History renders every recorded assessment, most recent first.
func History(data vm.HistoryViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="panel"><h1>Application history</h1>`)
		if len(data.Rows) == 0 {
			h.raw(`<p class="empty">No assessments recorded yet.</p></section>`)
			return h.err
		}

		h.raw(`<table class="history"><thead><tr><th>ID</th><th>Date</th><th>Income</th><th>Years employed</th><th>Income type</th><th>Children</th><th>Car</th><th>Realty</th><th>Score</th><th>Risk</th><th>Decision</th></tr></thead><tbody>`)
		for _, row := range data.Rows {
			h.raw(`<tr><td>`)
			h.raw(strconv.FormatInt(row.ID, 10))
			h.raw(`</td><td>`)
			h.text(row.CreatedAt)
			h.raw(`</td><td class="num">`)
			h.text(row.IncomeTotal)
			h.raw(`</td><td class="num">`)
			h.text(row.YearsEmployed)
			h.raw(`</td><td>`)
			h.text(row.IncomeType)
			h.raw(`</td><td class="num">`)
			h.int(row.Children)
			h.raw(`</td><td>`)
			h.text(row.OwnsCar)
			h.raw(`</td><td>`)
			h.text(row.OwnsRealty)
			h.raw(`</td><td class="num">`)
			h.int(row.CreditScore)
			h.raw(`</td><td><span class="badge risk-`)
			h.text(row.RiskClass)
			h.raw(`">`)
			h.text(row.RiskLevel)
			h.raw(`</span></td><td>`)
			h.text(row.Decision)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}

// Fairness renders the model fairness notes. html must already be sanitized.
func Fairness(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<article class="panel prose">`)
		h.component(ctx, templ.Raw(html))
		h.raw(`</article>`)
		return h.err
	})
}

// Message renders a standalone notice, used for error pages.
func Message(heading, body string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="panel"><h1>`)
		h.text(heading)
		h.raw(`</h1><p>`)
		h.text(body)
		h.raw(`</p></section>`)
		return h.err
	})
}
