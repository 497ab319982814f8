package riskmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

// Supported artifact kinds.
const (
	KindRandomForest = "random_forest"
	KindLogistic     = "logistic"
)

// Artifact is the on-disk form of a trained model.
type Artifact struct {
	Kind     string   `json:"kind"`
	Features []string `json:"features"`

	// random_forest
	Trees []Tree `json:"trees,omitempty"`

	// logistic
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Mean         []float64 `json:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty"`
}

// Bundle is a model together with the vocabulary it was fitted with. The two
// are only ever loaded as a pair.
type Bundle struct {
	Kind       string
	Model      driven.RiskModel
	Vocabulary *model.FeatureVocabulary
}

// LoadBundle reads the model artifact at modelPath and the vocabulary at
// vocabPath. It fails unless both load and the model's feature order matches
// model.FeatureColumns.
func LoadBundle(modelPath, vocabPath string) (*Bundle, error) {
	riskModel, kind, err := LoadModel(modelPath)
	if err != nil {
		return nil, err
	}

	vocab, err := LoadVocabulary(vocabPath)
	if err != nil {
		return nil, err
	}

	return &Bundle{Kind: kind, Model: riskModel, Vocabulary: vocab}, nil
}

// LoadModel reads and validates a model artifact.
func LoadModel(path string) (driven.RiskModel, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read model %s: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, "", fmt.Errorf("decode model %s: %w", path, err)
	}

	m, err := a.Build()
	if err != nil {
		return nil, "", fmt.Errorf("load model %s: %w", path, err)
	}
	return m, a.Kind, nil
}

// Build turns the artifact into a RiskModel.
func (a Artifact) Build() (driven.RiskModel, error) {
	if !slices.Equal(a.Features, model.FeatureColumns) {
		return nil, fmt.Errorf("model features %v do not match %v", a.Features, model.FeatureColumns)
	}

	switch a.Kind {
	case KindRandomForest:
		return NewForest(a.Trees, len(a.Features))
	case KindLogistic:
		return NewLogistic(a.Intercept, a.Coefficients, a.Mean, a.Scale, len(a.Features))
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}
}

// LoadVocabulary reads a YAML mapping of categorical field to its ordered
// labels.
func LoadVocabulary(path string) (*model.FeatureVocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	var fields map[string][]string
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode vocabulary %s: %w", path, err)
	}

	vocab, err := model.NewFeatureVocabulary(fields)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %s: %w", path, err)
	}
	return vocab, nil
}
