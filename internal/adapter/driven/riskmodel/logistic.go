package riskmodel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

var _ driven.RiskModel = (*Logistic)(nil)

// Logistic is a fitted logistic regression. When Mean and Scale are set the
// input is standardized first, as a StandardScaler in front of the
// classifier would do.
type Logistic struct {
	intercept float64
	coef      *mat.VecDense
	mean      []float64
	scale     []float64
}

// NewLogistic validates the parameters. coef has one weight per feature,
// mean and scale are either both empty or both the same length as coef, and
// scale has no zeros.
func NewLogistic(intercept float64, coef, mean, scale []float64, nFeatures int) (*Logistic, error) {
	if len(coef) == 0 {
		return nil, errors.New("logistic model has no coefficients")
	}
	if len(coef) != nFeatures {
		return nil, fmt.Errorf("logistic model has %d coefficients, want %d", len(coef), nFeatures)
	}
	if len(mean) != len(scale) {
		return nil, errors.New("mean and scale differ in length")
	}
	if len(mean) != 0 && len(mean) != len(coef) {
		return nil, fmt.Errorf("standardization has %d values, want %d", len(mean), len(coef))
	}
	for _, s := range scale {
		if s == 0 {
			return nil, errors.New("scale contains zero")
		}
	}
	if floats.HasNaN(coef) || floats.HasNaN(mean) || floats.HasNaN(scale) || math.IsNaN(intercept) {
		return nil, errors.New("logistic parameters contain NaN")
	}

	return &Logistic{
		intercept: intercept,
		coef:      mat.NewVecDense(len(coef), append([]float64(nil), coef...)),
		mean:      append([]float64(nil), mean...),
		scale:     append([]float64(nil), scale...),
	}, nil
}

// PredictDefaultProbability implements driven.RiskModel.
func (l *Logistic) PredictDefaultProbability(x model.FeatureVector) (float64, error) {
	n := l.coef.Len()
	if len(x) != n {
		return 0, fmt.Errorf("feature vector has %d values, want %d", len(x), n)
	}

	z := make([]float64, n)
	copy(z, x)
	if len(l.mean) > 0 {
		floats.Sub(z, l.mean)
		floats.Div(z, l.scale)
	}

	logit := l.intercept + mat.Dot(l.coef, mat.NewVecDense(n, z))
	return 1 / (1 + math.Exp(-logit)), nil
}
