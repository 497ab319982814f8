package riskmodel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

func loadTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := LoadBundle(filepath.Join("testdata", "model.json"), filepath.Join("testdata", "vocabulary.yaml"))
	require.NoError(t, err)
	return b
}

func encode(t *testing.T, v *model.FeatureVocabulary, a model.Applicant) model.FeatureVector {
	t.Helper()
	incomeType, err := v.Code(model.FieldIncomeType, a.IncomeType)
	require.NoError(t, err)
	car, err := v.Code(model.FieldOwnCar, string(a.OwnsCar))
	require.NoError(t, err)
	realty, err := v.Code(model.FieldOwnRealty, string(a.OwnsRealty))
	require.NoError(t, err)
	return model.FeatureVector{
		a.IncomeTotal, a.DaysEmployed, float64(incomeType), float64(a.ChildrenCount), float64(car), float64(realty),
	}
}

func TestLoadBundle_Forest(t *testing.T) {
	b := loadTestBundle(t)
	assert.Equal(t, KindRandomForest, b.Kind)

	tests := []struct {
		name      string
		applicant model.Applicant
		want      float64
	}{
		{
			name:      "high income stable car owner",
			applicant: model.NewApplicant(300000, 6, "Working", 0, model.FlagYes, model.FlagNo),
			want:      (0.1 + 0.06) / 2,
		},
		{
			name:      "high income short tenure no car",
			applicant: model.NewApplicant(200000, 2, "State servant", 1, model.FlagNo, model.FlagYes),
			want:      (0.4 + 0.3) / 2,
		},
		{
			name:      "low income large family",
			applicant: model.NewApplicant(90000, 10, "Pensioner", 4, model.FlagNo, model.FlagNo),
			want:      (0.8 + 0.9) / 2,
		},
		{
			name:      "threshold goes left",
			applicant: model.NewApplicant(150000, 0, "Student", 2, model.FlagNo, model.FlagNo),
			want:      (0.8 + 0.3) / 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := b.Model.PredictDefaultProbability(encode(t, b.Vocabulary, tt.applicant))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p, 1e-12)
		})
	}
}

func TestLoadBundle_VocabularyRoundTrip(t *testing.T) {
	b := loadTestBundle(t)

	for _, field := range model.CategoricalFields {
		labels := b.Vocabulary.Labels(field)
		require.NotEmpty(t, labels, field)
		for _, label := range labels {
			code, err := b.Vocabulary.Code(field, label)
			require.NoError(t, err)
			got, ok := b.Vocabulary.Label(field, code)
			require.True(t, ok)
			assert.Equal(t, label, got)
		}
	}

	code, err := b.Vocabulary.Code(model.FieldIncomeType, "Working")
	require.NoError(t, err)
	assert.Equal(t, 4, code, "codes follow sorted label order")
}

func TestLoadModel_Logistic(t *testing.T) {
	m, kind, err := LoadModel(filepath.Join("testdata", "logistic.json"))
	require.NoError(t, err)
	assert.Equal(t, KindLogistic, kind)

	x := model.FeatureVector{300000, -2190, 4, 0, 1, 0}
	logit := -1.0 +
		-0.8*(300000-180000)/90000.0 +
		0.5*(-2190+2000)/2500.0 +
		0.3*(0-1)/1.0 +
		-0.2*(1-0.5)/0.5 +
		-0.2*(0-0.5)/0.5
	want := 1 / (1 + math.Exp(-logit))

	p, err := m.PredictDefaultProbability(x)
	require.NoError(t, err)
	assert.InDelta(t, want, p, 1e-12)
	assert.True(t, p > 0 && p < 1)
}

func TestLogistic_WithoutStandardization(t *testing.T) {
	l, err := NewLogistic(0, []float64{1, 0}, nil, nil, 2)
	require.NoError(t, err)

	p, err := l.PredictDefaultProbability(model.FeatureVector{0, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	_, err = l.PredictDefaultProbability(model.FeatureVector{1})
	assert.Error(t, err)
}

func TestNewLogistic_Invalid(t *testing.T) {
	tests := []struct {
		name              string
		coef, mean, scale []float64
		width             int
	}{
		{"no coefficients", nil, nil, nil, 0},
		{"mean without scale", []float64{1}, []float64{0}, nil, 1},
		{"wrong standardization width", []float64{1, 2}, []float64{0}, []float64{1}, 2},
		{"zero scale", []float64{1}, []float64{0}, []float64{0}, 1},
		{"nan coefficient", []float64{math.NaN()}, nil, nil, 1},
		{"coefficient width mismatch", []float64{1, 1}, nil, nil, len(model.FeatureColumns)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogistic(0, tt.coef, tt.mean, tt.scale, tt.width)
			assert.Error(t, err)
		})
	}
}

func TestNewForest_Invalid(t *testing.T) {
	valid := Tree{
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{1, -2, -2},
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Value:         [][]float64{{2, 2}, {1, 0}, {0, 1}},
	}

	tests := []struct {
		name   string
		mutate func(*Tree)
	}{
		{"ragged arrays", func(t *Tree) { t.Threshold = t.Threshold[:2] }},
		{"cycle", func(t *Tree) { t.ChildrenLeft[0] = 0 }},
		{"child out of range", func(t *Tree) { t.ChildrenRight[0] = 7 }},
		{"single child", func(t *Tree) { t.ChildrenRight[0] = -1 }},
		{"feature out of range", func(t *Tree) { t.Feature[0] = 6 }},
		{"empty leaf", func(t *Tree) { t.Value[1] = []float64{0, 0} }},
		{"multiclass leaf", func(t *Tree) { t.Value[2] = []float64{0, 1, 1} }},
		{"no nodes", func(t *Tree) { *t = Tree{} }},
	}

	_, err := NewForest([]Tree{valid}, 6)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Tree{
				Feature:       append([]int(nil), valid.Feature...),
				Threshold:     append([]float64(nil), valid.Threshold...),
				ChildrenLeft:  append([]int(nil), valid.ChildrenLeft...),
				ChildrenRight: append([]int(nil), valid.ChildrenRight...),
				Value:         [][]float64{{2, 2}, {1, 0}, {0, 1}},
			}
			tt.mutate(&tree)
			_, err := NewForest([]Tree{tree}, 6)
			assert.Error(t, err)
		})
	}

	_, err = NewForest(nil, 6)
	assert.Error(t, err)
}

func TestForest_WrongWidth(t *testing.T) {
	b := loadTestBundle(t)
	_, err := b.Model.PredictDefaultProbability(model.FeatureVector{1, 2, 3})
	assert.Error(t, err)
}

func TestLoadModel_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.json")},
		{"not json", write("garbage.json", "{")},
		{"feature mismatch", filepath.Join("testdata", "bad_features.json")},
		{"unknown kind", write("svm.json", `{"kind":"svm","features":["AMT_INCOME_TOTAL","DAYS_EMPLOYED","NAME_INCOME_TYPE","CNT_CHILDREN","FLAG_OWN_CAR","FLAG_OWN_REALTY"]}`)},
		{"logistic coefficient width", write("short.json", `{"kind":"logistic","features":["AMT_INCOME_TOTAL","DAYS_EMPLOYED","NAME_INCOME_TYPE","CNT_CHILDREN","FLAG_OWN_CAR","FLAG_OWN_REALTY"],"coefficients":[1,1]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadModel(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadVocabulary_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.yaml")},
		{"not a mapping", write("list.yaml", "- a\n- b\n")},
		{"missing field", write("partial.yaml", "NAME_INCOME_TYPE: [Working]\nFLAG_OWN_CAR: [\"N\", \"Y\"]\n")},
		{"duplicate label", write("dup.yaml", "NAME_INCOME_TYPE: [Working, Working]\nFLAG_OWN_CAR: [\"N\"]\nFLAG_OWN_REALTY: [\"N\"]\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadVocabulary(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadBundle_RequiresBothArtifacts(t *testing.T) {
	_, err := LoadBundle(filepath.Join("testdata", "model.json"), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = LoadBundle(filepath.Join(t.TempDir(), "absent.json"), filepath.Join("testdata", "vocabulary.yaml"))
	assert.Error(t, err)
}
