package driven

import (
	"time"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// PipelineMetrics is the observability channel for pipeline outcomes that
// are not part of the response contract, such as ledger write failures.
type PipelineMetrics interface {
	AssessmentCompleted(tier model.RiskTier, decision model.Decision, elapsed time.Duration)
	AssessmentRejected(reason string)
	LedgerAppendFailed()
	SeedCompleted(inserted int)
	SeedFailed()
}
