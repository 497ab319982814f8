// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

// ServiceContext is the matched model and vocabulary pair the pipeline runs
// against. It is built once at startup and never mutated.
type ServiceContext struct {
	Vocabulary *model.FeatureVocabulary
	Model      driven.RiskModel
}

// NewServiceContext validates that both halves of the pair are present.
func NewServiceContext(vocab *model.FeatureVocabulary, riskModel driven.RiskModel) (*ServiceContext, error) {
	if vocab == nil || riskModel == nil {
		return nil, errors.New("model and vocabulary must be loaded together")
	}
	return &ServiceContext{Vocabulary: vocab, Model: riskModel}, nil
}

// Outcome carries the two independent results of an assessment: the
// assessment itself and whether it reached the ledger.
type Outcome struct {
	Assessment model.Assessment
	Record     model.ApplicationRecord
	Persisted  bool
	PersistErr error
}

// AssessService runs the risk scoring pipeline and records every completed
// assessment in the ledger.
type AssessService struct {
	sc      *ServiceContext
	encoder *Encoder
	ledger  driven.Ledger
	metrics driven.PipelineMetrics
	logger  *slog.Logger
}

// NewAssessService creates an AssessService. A nil sc leaves the service in
// degraded mode where every assessment fails with model.ErrServiceUnavailable.
// A nil metrics disables metric reporting.
func NewAssessService(sc *ServiceContext, ledger driven.Ledger, metrics driven.PipelineMetrics, logger *slog.Logger) *AssessService {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	s := &AssessService{
		sc:      sc,
		ledger:  ledger,
		metrics: metrics,
		logger:  logger,
	}
	if sc != nil {
		s.encoder = NewEncoder(sc.Vocabulary)
	}
	return s
}

// Ready reports whether a model is loaded.
func (s *AssessService) Ready() bool {
	return s.sc != nil
}

// Vocabulary returns the loaded vocabulary, or nil in degraded mode.
func (s *AssessService) Vocabulary() *model.FeatureVocabulary {
	if s.sc == nil {
		return nil
	}
	return s.sc.Vocabulary
}

// Score runs encode → predict → decide → explain without touching the ledger.
func (s *AssessService) Score(a model.Applicant) (model.Assessment, error) {
	if s.sc == nil {
		return model.Assessment{}, model.ErrServiceUnavailable
	}

	x, err := s.encoder.Encode(a)
	if err != nil {
		return model.Assessment{}, err
	}

	p, err := s.sc.Model.PredictDefaultProbability(x)
	if err != nil {
		return model.Assessment{}, fmt.Errorf("predict default probability: %w", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return model.Assessment{}, fmt.Errorf("model returned probability %v outside [0, 1]", p)
	}

	v := Decide(p)

	return model.Assessment{
		ProbabilityOfDefault: p,
		CreditScore:          v.CreditScore,
		RiskTier:             v.RiskTier,
		Decision:             v.Decision,
		Explanation:          Explain(a, v.RiskTier),
	}, nil
}

// Assess scores the applicant and appends the result to the ledger. An error
// is returned only when no assessment could be produced. A ledger failure is
// logged and counted, and reported on Outcome.PersistErr; the assessment is
// still returned.
func (s *AssessService) Assess(ctx context.Context, a model.Applicant) (Outcome, error) {
	start := time.Now()

	result, err := s.Score(a)
	if err != nil {
		var encErr *model.EncodingError
		switch {
		case errors.As(err, &encErr):
			s.metrics.AssessmentRejected("invalid_category")
		case errors.Is(err, model.ErrServiceUnavailable):
			s.metrics.AssessmentRejected("model_unavailable")
		default:
			s.metrics.AssessmentRejected("model_error")
		}
		return Outcome{}, err
	}

	out := Outcome{Assessment: result}

	rec, err := s.ledger.Append(ctx, model.NewApplicationRecord(a, result))
	if err != nil {
		s.metrics.LedgerAppendFailed()
		s.logger.Error("ledger append failed; assessment returned without audit record",
			"risk_tier", result.RiskTier,
			"decision", result.Decision,
			"error", err,
		)
		out.PersistErr = err
	} else {
		out.Record = rec
		out.Persisted = true
	}

	s.metrics.AssessmentCompleted(result.RiskTier, result.Decision, time.Since(start))
	return out, nil
}

// History returns every recorded assessment, most recent first.
func (s *AssessService) History(ctx context.Context) ([]model.ApplicationRecord, error) {
	return s.ledger.ListAll(ctx)
}

// RecordCount returns the number of recorded assessments.
func (s *AssessService) RecordCount(ctx context.Context) (int, error) {
	return s.ledger.Count(ctx)
}

type nopMetrics struct{}

func (nopMetrics) AssessmentCompleted(model.RiskTier, model.Decision, time.Duration) {}
func (nopMetrics) AssessmentRejected(string) {}
func (nopMetrics) LedgerAppendFailed() {}
func (nopMetrics) SeedCompleted(int) {}
func (nopMetrics) SeedFailed() {}
