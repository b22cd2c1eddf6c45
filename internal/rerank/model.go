// rerank/model.go
package rerank

import (
	"fmt"
	"math"
)

// Node is one node of a regression tree: either an internal split (Feature
// set) or a leaf (Leaf set, Feature empty).
type Node struct {
	Feature      string   `json:"feature,omitempty"`
	Threshold    float64  `json:"threshold,omitempty"`
	Left         int      `json:"left,omitempty"`
	Right        int      `json:"right,omitempty"`
	DefaultLeft  *bool    `json:"defaultLeft,omitempty"`
	Leaf         *float64 `json:"leaf,omitempty"`
}

func (n Node) isLeaf() bool {
	return n.Leaf != nil
}

// Tree is one boosted tree in the ensemble, indexed by node position (node 0
// is the root).
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Model is the serialized gradient-boosted tree ensemble used to rerank
// a base score produced by the scoring core.
type Model struct {
	ModelType    string   `json:"modelType"`
	Objective    string   `json:"objective"`
	Version      string   `json:"version"`
	BaseScore    float64  `json:"baseScore"`
	FeatureOrder []string `json:"featureOrder"`
	Trees        []Tree   `json:"trees"`
}

const maxTreeWalkSteps = 2048

// buildVector projects a feature map into the fixed order the model expects,
// defaulting absent features to 0.
func (m *Model) buildVector(features map[string]float64) []float64 {
	vec := make([]float64, len(m.FeatureOrder))
	for i, name := range m.FeatureOrder {
		vec[i] = features[name]
	}
	return vec
}

func (m *Model) featureIndex(name string) int {
	for i, n := range m.FeatureOrder {
		if n == name {
			return i
		}
	}
	return -1
}

// evalTree walks tree from the root, returning its leaf contribution. Cycles
// or malformed trees are bounded and fall back to 0.
func (m *Model) evalTree(tree Tree, vec []float64) float64 {
	if len(tree.Nodes) == 0 {
		return 0
	}

	node := 0
	for step := 0; step < maxTreeWalkSteps; step++ {
		if node < 0 || node >= len(tree.Nodes) {
			return 0
		}
		n := tree.Nodes[node]
		if n.isLeaf() {
			return *n.Leaf
		}

		idx := m.featureIndex(n.Feature)
		var value float64
		if idx >= 0 {
			value = vec[idx]
		} else {
			value = math.NaN()
		}

		goLeft := true
		switch {
		case math.IsNaN(value):
			if n.DefaultLeft != nil {
				goLeft = *n.DefaultLeft
			}
		default:
			goLeft = value < n.Threshold
		}

		if goLeft {
			node = n.Left
		} else {
			node = n.Right
		}
	}
	return 0
}

// Score computes the model's margin (or sigmoid of the margin for
// binary:logistic objectives) for one candidate's feature map.
func (m *Model) Score(features map[string]float64) float64 {
	vec := m.buildVector(features)

	margin := m.BaseScore
	for _, tree := range m.Trees {
		margin += m.evalTree(tree, vec)
	}

	if m.Objective == "binary:logistic" {
		return sigmoid(margin)
	}
	return margin
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func validateModel(m *Model) error {
	if m.ModelType != "xgboost_tree" {
		return fmt.Errorf("unsupported model type %q", m.ModelType)
	}
	switch m.Objective {
	case "binary:logistic", "reg:squarederror", "rank:pairwise":
	default:
		return fmt.Errorf("unsupported objective %q", m.Objective)
	}
	if len(m.FeatureOrder) == 0 {
		return fmt.Errorf("model has empty featureOrder")
	}
	return nil
}
