package application

import (
	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// Encoder converts an Applicant into the numeric FeatureVector a RiskModel
// was trained on, using the vocabulary fitted alongside that model.
type Encoder struct {
	vocab *model.FeatureVocabulary
}

// NewEncoder creates an Encoder bound to vocab.
func NewEncoder(vocab *model.FeatureVocabulary) *Encoder {
	return &Encoder{vocab: vocab}
}

// Encode builds the feature vector in model.FeatureColumns order. A category
// label missing from the vocabulary yields a *model.EncodingError.
func (e *Encoder) Encode(a model.Applicant) (model.FeatureVector, error) {
	incomeType, err := e.vocab.Code(model.FieldIncomeType, a.IncomeType)
	if err != nil {
		return nil, err
	}
	ownCar, err := e.vocab.Code(model.FieldOwnCar, string(a.OwnsCar))
	if err != nil {
		return nil, err
	}
	ownRealty, err := e.vocab.Code(model.FieldOwnRealty, string(a.OwnsRealty))
	if err != nil {
		return nil, err
	}

	return model.FeatureVector{
		a.IncomeTotal,
		a.DaysEmployed,
		float64(incomeType),
		float64(a.ChildrenCount),
		float64(ownCar),
		float64(ownRealty),
	}, nil
}
