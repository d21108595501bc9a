package lightgbm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
)

// NodeType represents the type of a tree node
type NodeType int

const (
	// LeafNode represents a terminal node with a value
	LeafNode NodeType = iota
	// NumericalNode represents a node with numerical split
	NumericalNode
	// CategoricalNode represents a node with categorical split
	CategoricalNode
)

// Missing value routing types, as written in the dump's missing_type field.
const (
	MissingNone = "None"
	MissingZero = "Zero"
	MissingNaN  = "NaN"
)

// Node represents a single node in a decision tree.
// Nodes live in Tree.Nodes and reference each other by index.
type Node struct {
	// Node identification
	NodeID     int      // Index of the node in Tree.Nodes
	ParentID   int      // Parent node ID (-1 for root)
	LeftChild  int      // Left child node ID (-1 if leaf)
	RightChild int      // Right child node ID (-1 if leaf)
	NodeType   NodeType // Type of the node

	// Split information (for non-leaf nodes)
	SplitFeature int     // Feature index used for splitting
	Threshold    float64 // Threshold value for numerical splits
	Categories   []int   // Categories for categorical splits
	DecisionType string  // "<=" or "=="
	DefaultLeft  bool    // Default direction for missing values
	MissingType  string  // "None", "Zero" or "NaN"
	Gain         float64 // Split gain (reduction in loss)

	// Leaf information (for leaf nodes)
	LeafIndex int     // Leaf number within the tree
	LeafValue float64 // Final per-tree contribution, shrinkage already applied
	LeafCount int     // Number of samples at leaf

	// Statistics
	InternalValue float64
	InternalCount int
}

// IsLeaf returns true if the node is a leaf node
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree represents a single decision tree in the ensemble
type Tree struct {
	TreeIndex     int     // Index of the tree in ensemble
	NumLeaves     int     // Number of leaf nodes
	NumCat        int     // Number of categorical splits
	ShrinkageRate float64 // Learning rate applied to this tree

	// Nodes holds the arena; the root is Nodes[0].
	Nodes []Node
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if len(t.Nodes) == 0 {
		return nil
	}
	return &t.Nodes[0]
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	type frame struct{ id, depth int }
	maxDepth := 0
	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		n := &t.Nodes[f.id]
		if n.IsLeaf() {
			continue
		}
		stack = append(stack, frame{n.LeftChild, f.depth + 1}, frame{n.RightChild, f.depth + 1})
	}
	return maxDepth
}

// Predict returns this tree's contribution for a single sample, following
// LightGBM's missing value routing.
func (t *Tree) Predict(features []float64) float64 {
	nodeID := 0

	for nodeID >= 0 && nodeID < len(t.Nodes) {
		node := &t.Nodes[nodeID]

		if node.IsLeaf() {
			return node.LeafValue
		}

		if goLeft(node, features[node.SplitFeature]) {
			nodeID = node.LeftChild
		} else {
			nodeID = node.RightChild
		}
	}

	return 0.0
}

func goLeft(node *Node, fval float64) bool {
	if node.NodeType == CategoricalNode {
		if math.IsNaN(fval) || fval < 0 {
			return false
		}
		intValue := int(fval)
		for _, cat := range node.Categories {
			if intValue == cat {
				return true
			}
		}
		return false
	}

	if math.IsNaN(fval) && node.MissingType != MissingNaN {
		fval = 0
	}
	if (node.MissingType == MissingZero && isZero(fval)) || (node.MissingType == MissingNaN && math.IsNaN(fval)) {
		return node.DefaultLeft
	}
	return fval <= node.Threshold
}

// isZero mirrors LightGBM's kZeroThreshold.
func isZero(fval float64) bool {
	return fval >= -1e-35 && fval <= 1e-35
}

// ObjectiveType represents the objective function type
type ObjectiveType string

const (
	// Regression objectives
	RegressionL2       ObjectiveType = "regression"
	RegressionL1       ObjectiveType = "regression_l1"
	RegressionHuber    ObjectiveType = "huber"
	RegressionFair     ObjectiveType = "fair"
	RegressionPoisson  ObjectiveType = "poisson"
	RegressionQuantile ObjectiveType = "quantile"
	RegressionMAPE     ObjectiveType = "mape"
	RegressionGamma    ObjectiveType = "gamma"
	RegressionTweedie  ObjectiveType = "tweedie"

	// Binary classification objectives
	BinaryLogistic     ObjectiveType = "binary"
	BinaryCrossEntropy ObjectiveType = "cross_entropy"

	// Multiclass classification objectives
	MulticlassSoftmax ObjectiveType = "multiclass"
	MulticlassOVA     ObjectiveType = "multiclassova"

	// Ranking objectives
	LambdaRank ObjectiveType = "lambdarank"
	RankXENDCG ObjectiveType = "rank_xendcg"
)

// Model represents a complete LightGBM model ensemble as produced by dump_model().
type Model struct {
	Name                string
	Version             string
	Objective           ObjectiveType
	ObjectiveParams     map[string]string // e.g. "sigmoid" -> "1", "num_class" -> "3"
	NumClass            int
	NumTreePerIteration int
	MaxFeatureIdx       int
	AverageOutput       bool

	// Trees in training order; for multiclass, tree i belongs to class i mod NumClass.
	Trees []Tree

	FeatureNames []string

	// Sigmoid scales the raw margin of binary objectives (default 1).
	Sigmoid float64
}

// NewModel creates a new empty LightGBM model
func NewModel() *Model {
	return &Model{
		Trees:               make([]Tree, 0),
		ObjectiveParams:     make(map[string]string),
		NumClass:            1,
		NumTreePerIteration: 1,
		MaxFeatureIdx:       -1,
		Sigmoid:             1.0,
	}
}

// NumFeatures returns the number of input features the model was trained on.
func (m *Model) NumFeatures() int {
	return m.MaxFeatureIdx + 1
}

// numOutputs is the number of raw scores per sample.
func (m *Model) numOutputs() int {
	if m.NumTreePerIteration > 1 {
		return m.NumTreePerIteration
	}
	return 1
}

// PredictRaw returns the raw (untransformed) scores for a single sample.
// Multiclass models return one score per class.
func (m *Model) PredictRaw(features []float64) []float64 {
	k := m.numOutputs()
	raw := make([]float64, k)
	for i := range m.Trees {
		raw[i%k] += m.Trees[i].Predict(features)
	}
	if m.AverageOutput && len(m.Trees) > 0 {
		iterations := float64(len(m.Trees) / k)
		for i := range raw {
			raw[i] /= iterations
		}
	}
	return raw
}

// PredictSingle returns the transformed prediction for a single sample:
// probability of the positive class for binary, class probabilities for
// multiclass, the raw value otherwise.
func (m *Model) PredictSingle(features []float64) []float64 {
	raw := m.PredictRaw(features)

	switch m.Objective {
	case BinaryLogistic, BinaryCrossEntropy:
		raw[0] = 1.0 / (1.0 + math.Exp(-m.Sigmoid*raw[0]))
	case MulticlassSoftmax:
		raw = softmax(raw)
	}

	return raw
}

// Predict makes predictions for a batch of samples
func (m *Model) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, cols := X.Dims()
	if cols != m.NumFeatures() {
		return nil, errors.NewValidationError("X", fmt.Sprintf("expected %d feature columns", m.NumFeatures()), cols)
	}

	predictions := mat.NewDense(rows, m.numOutputs(), nil)
	features := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(features, i, X)
		predictions.SetRow(i, m.PredictSingle(features))
	}

	return predictions, nil
}

func softmax(x []float64) []float64 {
	maxVal := x[0]
	for _, v := range x[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	expSum := 0.0
	result := make([]float64, len(x))
	for i, v := range x {
		result[i] = math.Exp(v - maxVal)
		expSum += result[i]
	}

	for i := range result {
		result[i] /= expSum
	}

	return result
}
