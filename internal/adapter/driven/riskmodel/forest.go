// Package riskmodel loads trained classifier artifacts and evaluates them
// behind the driven.RiskModel port.
package riskmodel

import (
	"errors"
	"fmt"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

var _ driven.RiskModel = (*Forest)(nil)

// leaf marks a node without children in the exported tree arrays.
const leaf = -1

// Tree is one decision tree in the array layout scikit-learn exposes through
// tree_: node i tests x[Feature[i]] <= Threshold[i] and continues at
// ChildrenLeft[i], otherwise at ChildrenRight[i]. Value[i] holds the
// per-class sample weights reaching node i, class 1 being default.
type Tree struct {
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Value         [][]float64 `json:"value"`
}

// Forest averages the class-1 probability of its trees, as a
// RandomForestClassifier's predict_proba does.
type Forest struct {
	trees     []Tree
	nFeatures int
}

// NewForest validates the trees against a vector width of nFeatures.
func NewForest(trees []Tree, nFeatures int) (*Forest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	for i, t := range trees {
		if err := t.validate(nFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &Forest{trees: trees, nFeatures: nFeatures}, nil
}

func (t Tree) validate(nFeatures int) error {
	n := len(t.Feature)
	if n == 0 {
		return errors.New("no nodes")
	}
	if len(t.Threshold) != n || len(t.ChildrenLeft) != n || len(t.ChildrenRight) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}

	for i := range n {
		left, right := t.ChildrenLeft[i], t.ChildrenRight[i]
		if left == leaf || right == leaf {
			if left != right {
				return fmt.Errorf("node %d has a single child", i)
			}
			if len(t.Value[i]) != 2 || t.Value[i][0] < 0 || t.Value[i][1] < 0 || t.Value[i][0]+t.Value[i][1] <= 0 {
				return fmt.Errorf("leaf %d needs two non-negative class weights", i)
			}
			continue
		}
		// Children always follow their parent, which rules out cycles.
		if left <= i || right <= i || left >= n || right >= n {
			return fmt.Errorf("node %d has invalid children %d, %d", i, left, right)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d outside [0, %d)", i, t.Feature[i], nFeatures)
		}
	}
	return nil
}

// PredictDefaultProbability implements driven.RiskModel.
func (f *Forest) PredictDefaultProbability(x model.FeatureVector) (float64, error) {
	if len(x) != f.nFeatures {
		return 0, fmt.Errorf("feature vector has %d values, want %d", len(x), f.nFeatures)
	}

	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees)), nil
}

func (t Tree) predict(x model.FeatureVector) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	v := t.Value[node]
	return v[1] / (v[0] + v[1])
}
