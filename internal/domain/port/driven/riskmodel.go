package driven

import "github.com/ericfisherdev/creditpanel/internal/domain/model"

// RiskModel is an opaque trained binary classifier. Implementations must be
// deterministic, side-effect free and safe for concurrent use, and must
// return a probability in [0, 1].
type RiskModel interface {
	PredictDefaultProbability(x model.FeatureVector) (float64, error)
}
