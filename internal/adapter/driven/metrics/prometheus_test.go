package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

func TestPrometheus_PipelineCounters(t *testing.T) {
	p := NewPrometheus()

	p.AssessmentCompleted(model.RiskTierLow, model.DecisionApprove, 2*time.Millisecond)
	p.AssessmentCompleted(model.RiskTierLow, model.DecisionApprove, time.Millisecond)
	p.AssessmentCompleted(model.RiskTierHigh, model.DecisionReject, time.Millisecond)
	p.AssessmentRejected("invalid_category")
	p.LedgerAppendFailed()
	p.SeedCompleted(150)
	p.SeedFailed()

	assert.InDelta(t, 2, testutil.ToFloat64(p.assessments.WithLabelValues("Low", "APPROVE")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.assessments.WithLabelValues("High", "REJECT")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.rejected.WithLabelValues("invalid_category")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.appendFailures), 0)
	assert.InDelta(t, 150, testutil.ToFloat64(p.seededRecords), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.seedFailures), 0)
}

func TestPrometheus_ObserveRequest(t *testing.T) {
	p := NewPrometheus()

	p.ObserveRequest(http.MethodPost, "POST /api/v1/assess", http.StatusOK, time.Millisecond)
	p.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(p.httpRequests.WithLabelValues("POST", "POST /api/v1/assess", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "unmatched", "404")), 0)
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.LedgerAppendFailed()

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "creditpanel_ledger_append_failures_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewPrometheus_IndependentRegistries(t *testing.T) {
	// Registering twice would panic on a shared registry.
	a := NewPrometheus()
	b := NewPrometheus()
	a.SeedFailed()

	assert.InDelta(t, 1, testutil.ToFloat64(a.seedFailures), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.seedFailures), 0)
}
