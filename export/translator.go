package export

import (
	"fmt"
	"math"
	"strconv"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

// thresholdDigits is the number of fractional digits written for split thresholds.
const thresholdDigits = 16

// FormatThreshold renders a split threshold with 16 fractional digits.
func FormatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', thresholdDigits, 64)
}

// FormatScore renders a leaf value as the shortest decimal that parses back
// to exactly v.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TranslateTree converts one native tree into a predicate tree. The root is
// guarded by True; every internal node gets a lessOrEqual child then a
// greaterThan child on the resolved derived feature name. Leaf values are
// copied unchanged.
//
// The arena is walked with an explicit stack, so tree depth is not bounded by
// the goroutine stack. A child id that is out of range or reached twice
// yields a MalformedTreeError.
func TranslateTree(tree *lightgbm.Tree, ctx *Context) (*pmml.Node, error) {
	if len(tree.Nodes) == 0 {
		return nil, errors.NewMalformedTreeError(tree.TreeIndex, "root", "tree has no nodes")
	}

	root := &pmml.Node{True: &pmml.True{}}
	type frame struct {
		id   int
		node *pmml.Node
	}
	visited := make([]bool, len(tree.Nodes))
	visited[0] = true
	stack := []frame{{0, root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		native := &tree.Nodes[f.id]

		if native.IsLeaf() {
			if math.IsNaN(native.LeafValue) || math.IsInf(native.LeafValue, 0) {
				return nil, errors.NewMalformedTreeError(tree.TreeIndex, nodeRef(f.id), "leaf value is not finite")
			}
			f.node.Score = FormatScore(native.LeafValue)
			continue
		}

		field, threshold, err := splitOf(tree, native, ctx)
		if err != nil {
			return nil, err
		}

		left := &pmml.Node{SimplePredicate: &pmml.SimplePredicate{Field: field, Operator: pmml.LessOrEqual, Value: threshold}}
		right := &pmml.Node{SimplePredicate: &pmml.SimplePredicate{Field: field, Operator: pmml.GreaterThan, Value: threshold}}
		f.node.Nodes = []*pmml.Node{left, right}

		for _, child := range []struct {
			id   int
			node *pmml.Node
		}{{native.RightChild, right}, {native.LeftChild, left}} {
			if child.id < 0 || child.id >= len(tree.Nodes) {
				return nil, errors.NewMalformedTreeError(tree.TreeIndex, nodeRef(f.id),
					fmt.Sprintf("child id %d out of range for %d nodes", child.id, len(tree.Nodes)))
			}
			if visited[child.id] {
				return nil, errors.NewMalformedTreeError(tree.TreeIndex, nodeRef(f.id),
					fmt.Sprintf("child id %d is referenced more than once", child.id))
			}
			visited[child.id] = true
			stack = append(stack, frame{child.id, child.node})
		}
	}
	return root, nil
}

// splitOf returns the field name and formatted threshold of an internal node.
func splitOf(tree *lightgbm.Tree, n *lightgbm.Node, ctx *Context) (string, string, error) {
	if n.NodeType == lightgbm.CategoricalNode {
		return "", "", errors.NewUnsupportedSplitError(tree.TreeIndex, n.NodeID, n.DecisionType)
	}
	if n.SplitFeature < 0 || n.SplitFeature >= len(ctx.DerivedNames) {
		return "", "", errors.NewFeatureIndexError(tree.TreeIndex, n.NodeID, n.SplitFeature, len(ctx.DerivedNames))
	}
	if math.IsNaN(n.Threshold) || math.IsInf(n.Threshold, 0) {
		return "", "", errors.NewMalformedTreeError(tree.TreeIndex, nodeRef(n.NodeID), "threshold is not finite")
	}

	field := ctx.resolve(ctx.DerivedNames[n.SplitFeature])
	threshold := FormatThreshold(n.Threshold)
	if parsed, err := strconv.ParseFloat(threshold, 64); err != nil || parsed != n.Threshold {
		ctx.warning(errors.NewThresholdPrecisionWarning(field, n.Threshold, threshold))
	}
	return field, threshold, nil
}

func nodeRef(id int) string {
	return "#" + strconv.Itoa(id)
}
