package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lgerrors "github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

func loadModel(t *testing.T, name string) *lightgbm.Model {
	t.Helper()
	model, err := lightgbm.LoadFromJSONFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return model
}

func quietLogger() log.Logger {
	l, _ := log.NewTestLogger(log.LevelError)
	return l
}

func newContext(t *testing.T, model *lightgbm.Model, opts ...Option) *Context {
	t.Helper()
	ctx, err := NewContext(model, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return ctx
}

// captureWarnings collects library warnings until the test ends.
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	lgerrors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { lgerrors.SetWarningHandler(func(error) {}) })
	return &warnings
}

// leaf and split build arena nodes for hand-written trees.
func leaf(id int, value float64) lightgbm.Node {
	return lightgbm.Node{NodeID: id, LeftChild: -1, RightChild: -1, NodeType: lightgbm.LeafNode, LeafValue: value}
}

func split(id, feature int, threshold float64, left, right int) lightgbm.Node {
	return lightgbm.Node{
		NodeID:       id,
		LeftChild:    left,
		RightChild:   right,
		NodeType:     lightgbm.NumericalNode,
		SplitFeature: feature,
		Threshold:    threshold,
		DecisionType: "<=",
		MissingType:  lightgbm.MissingNone,
	}
}

func predicateOf(n *pmml.Node) (string, pmml.Operator, string) {
	p := n.SimplePredicate
	return p.Field, p.Operator, p.Value
}
