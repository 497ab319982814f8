package model

import (
	"fmt"
	"slices"
)

// FeatureVocabulary maps each categorical field to the labels seen at
// training time. A label's code is its index, matching the LabelEncoder that
// fitted the model. A FeatureVocabulary is immutable once built and safe for
// concurrent use.
type FeatureVocabulary struct {
	labels map[string][]string
	codes  map[string]map[string]int
}

// NewFeatureVocabulary validates and copies the given field → labels mapping.
// Every categorical field must be present with at least one label and no
// duplicate labels, so that label ↔ code is a bijection.
func NewFeatureVocabulary(fields map[string][]string) (*FeatureVocabulary, error) {
	v := &FeatureVocabulary{
		labels: make(map[string][]string, len(fields)),
		codes:  make(map[string]map[string]int, len(fields)),
	}

	for _, field := range CategoricalFields {
		if _, ok := fields[field]; !ok {
			return nil, fmt.Errorf("vocabulary missing field %s", field)
		}
	}

	for field, labels := range fields {
		if !slices.Contains(CategoricalFields, field) {
			return nil, fmt.Errorf("vocabulary has unknown field %s", field)
		}
		if len(labels) == 0 {
			return nil, fmt.Errorf("vocabulary field %s has no labels", field)
		}

		codes := make(map[string]int, len(labels))
		for i, label := range labels {
			if _, dup := codes[label]; dup {
				return nil, fmt.Errorf("vocabulary field %s has duplicate label %q", field, label)
			}
			codes[label] = i
		}

		v.labels[field] = slices.Clone(labels)
		v.codes[field] = codes
	}

	return v, nil
}

// Code returns the integer code of label within field. An unseen label yields
// an *EncodingError.
func (v *FeatureVocabulary) Code(field, label string) (int, error) {
	codes, ok := v.codes[field]
	if !ok {
		return 0, &EncodingError{Field: field, Value: label}
	}
	code, ok := codes[label]
	if !ok {
		return 0, &EncodingError{Field: field, Value: label}
	}
	return code, nil
}

// Label is the reverse of Code.
func (v *FeatureVocabulary) Label(field string, code int) (string, bool) {
	labels, ok := v.labels[field]
	if !ok || code < 0 || code >= len(labels) {
		return "", false
	}
	return labels[code], true
}

// Labels returns a copy of the labels of field in code order.
func (v *FeatureVocabulary) Labels(field string) []string {
	return slices.Clone(v.labels[field])
}

// Size returns the number of known labels for field.
func (v *FeatureVocabulary) Size(field string) int {
	return len(v.labels[field])
}
