// Package metrics exports pipeline and HTTP counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

const namespace = "creditpanel"

var _ driven.PipelineMetrics = (*Prometheus)(nil)

// Prometheus records pipeline and HTTP metrics on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	assessments    *prometheus.CounterVec
	assessDuration prometheus.Histogram
	rejected       *prometheus.CounterVec
	appendFailures prometheus.Counter
	seededRecords  prometheus.Counter
	seedFailures   prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheus creates the collectors on a fresh registry together with the
// Go runtime and process collectors.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Prometheus{
		registry: reg,

		assessments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed assessments by risk tier and decision.",
		}, []string{"risk_tier", "decision"}),
		assessDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Time to score and record one assessment.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_rejected_total",
			Help:      "Assessments that produced no result, by reason.",
		}, []string{"reason"}),
		appendFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_append_failures_total",
			Help:      "Assessments returned to the caller without a ledger record.",
		}),
		seededRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeded_records_total",
			Help:      "Records inserted by dataset seeding.",
		}),
		seedFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_failures_total",
			Help:      "Dataset seeding runs that were abandoned.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// AssessmentCompleted implements driven.PipelineMetrics.
func (p *Prometheus) AssessmentCompleted(tier model.RiskTier, decision model.Decision, elapsed time.Duration) {
	p.assessments.WithLabelValues(string(tier), string(decision)).Inc()
	p.assessDuration.Observe(elapsed.Seconds())
}

// AssessmentRejected implements driven.PipelineMetrics.
func (p *Prometheus) AssessmentRejected(reason string) {
	p.rejected.WithLabelValues(reason).Inc()
}

// LedgerAppendFailed implements driven.PipelineMetrics.
func (p *Prometheus) LedgerAppendFailed() {
	p.appendFailures.Inc()
}

// SeedCompleted implements driven.PipelineMetrics.
func (p *Prometheus) SeedCompleted(inserted int) {
	p.seededRecords.Add(float64(inserted))
}

// SeedFailed implements driven.PipelineMetrics.
func (p *Prometheus) SeedFailed() {
	p.seedFailures.Inc()
}

// ObserveRequest records one served HTTP request. route is the matched mux
// pattern, which keeps label cardinality bounded.
func (p *Prometheus) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
