package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lgerrors "github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

func indexedTrees(n int) []lightgbm.Tree {
	trees := make([]lightgbm.Tree, n)
	for i := range trees {
		trees[i] = lightgbm.Tree{TreeIndex: i, Nodes: []lightgbm.Node{leaf(0, float64(i))}}
	}
	return trees
}

func treeIndices(trees []lightgbm.Tree) []int {
	out := make([]int, len(trees))
	for i, tr := range trees {
		out[i] = tr.TreeIndex
	}
	return out
}

func TestGroupTreesByClass(t *testing.T) {
	groups, err := GroupTreesByClass(indexedTrees(9), 3)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, []int{0, 3, 6}, treeIndices(groups[0]))
	assert.Equal(t, []int{1, 4, 7}, treeIndices(groups[1]))
	assert.Equal(t, []int{2, 5, 8}, treeIndices(groups[2]))

	groups, err = GroupTreesByClass(indexedTrees(4), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, treeIndices(groups[0]))
}

func TestGroupTreesByClassRejectsBadInput(t *testing.T) {
	_, err := GroupTreesByClass(indexedTrees(10), 3)
	var verr *lgerrors.ValidationError
	require.True(t, lgerrors.As(err, &verr))
	assert.Equal(t, "trees", verr.ParamName)
	assert.Equal(t, 10, verr.Value)

	_, err = GroupTreesByClass(indexedTrees(3), 0)
	require.True(t, lgerrors.As(err, &verr))
	assert.Equal(t, "num_class", verr.ParamName)
}

func TestSelectTopologyRegression(t *testing.T) {
	model := loadModel(t, "regression_3trees.json")
	ctx := newContext(t, model)

	seg, err := SelectTopology(lightgbm.Regression{}, model.Trees, ctx)
	require.NoError(t, err)

	assert.Equal(t, pmml.MethodSum, seg.MultipleModelMethod)
	require.Len(t, seg.Segments, 3)
	for i, s := range seg.Segments {
		assert.Equal(t, i+1, s.ID)
		assert.NotNil(t, s.TreeModel, "segment %d must be a tree, no combiner", s.ID)
		assert.Nil(t, s.RegressionModel)
	}

	var thresholds []string
	for _, s := range seg.Segments {
		thresholds = append(thresholds, s.TreeModel.Node.Nodes[0].SimplePredicate.Value)
	}
	assert.Equal(t, []string{"0.5000000000000000", "1.2000000000000000", "3.0000000000000000"}, thresholds)
}

func TestSelectTopologyBinary(t *testing.T) {
	model := loadModel(t, "binary_5trees.json")
	ctx := newContext(t, model)

	seg, err := SelectTopology(lightgbm.BinaryClassifier{}, model.Trees, ctx)
	require.NoError(t, err)

	assert.Equal(t, pmml.MethodModelChain, seg.MultipleModelMethod)
	require.Len(t, seg.Segments, 2)

	group := seg.Segments[0]
	assert.Equal(t, 1, group.ID)
	require.NotNil(t, group.MiningModel)
	inner := group.MiningModel
	assert.Equal(t, pmml.FunctionRegression, inner.FunctionName)
	assert.Equal(t, pmml.MethodSum, inner.Segmentation.MultipleModelMethod)
	assert.Len(t, inner.Segmentation.Segments, 5)
	assert.Equal(t, ctx.FeatureNames, inner.MiningSchema.Names())

	require.Len(t, inner.Output.OutputFields, 1)
	out := inner.Output.OutputFields[0]
	assert.Equal(t, BinaryPseudoFeature, out.Name)
	assert.Equal(t, pmml.Continuous, out.OpType)
	assert.Equal(t, pmml.Double, out.DataType)
	assert.Equal(t, pmml.PredictedValue, out.Feature)
	require.NotNil(t, out.IsFinalResult)
	assert.False(t, *out.IsFinalResult)

	combiner := seg.Segments[1]
	assert.Equal(t, 2, combiner.ID)
	require.NotNil(t, combiner.RegressionModel)
	rm := combiner.RegressionModel
	assert.Equal(t, pmml.NormalizationLogit, rm.NormalizationMethod)
	assert.Equal(t, pmml.FunctionClassification, rm.FunctionName)
	assert.Equal(t, []string{BinaryPseudoFeature, DefaultTargetName}, rm.MiningSchema.Names())
	assert.Equal(t, pmml.UsageTarget, rm.MiningSchema.MiningFields[1].UsageType)

	require.Len(t, rm.RegressionTables, 2)
	assert.Equal(t, "1", rm.RegressionTables[0].TargetCategory)
	assert.Equal(t, []pmml.NumericPredictor{{Name: BinaryPseudoFeature, Coefficient: 1}}, rm.RegressionTables[0].NumericPredictors)
	assert.Equal(t, "0", rm.RegressionTables[1].TargetCategory)
	assert.Empty(t, rm.RegressionTables[1].NumericPredictors)
	assert.Zero(t, rm.RegressionTables[1].Intercept)
}

func TestSelectTopologyBinarySigmoidCoefficient(t *testing.T) {
	model := loadModel(t, "binary_5trees.json")
	model.Sigmoid = 0.5
	ctx := newContext(t, model)

	seg, err := SelectTopology(lightgbm.BinaryClassifier{}, model.Trees, ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, seg.Segments[1].RegressionModel.RegressionTables[0].NumericPredictors[0].Coefficient)
}

func TestSelectTopologyMulticlass(t *testing.T) {
	model := loadModel(t, "multiclass_9trees.json")
	ctx := newContext(t, model, WithClassLabels([]string{"a", "b", "c"}))

	seg, err := SelectTopology(lightgbm.MulticlassClassifier{K: 3}, model.Trees, ctx)
	require.NoError(t, err)

	assert.Equal(t, pmml.MethodModelChain, seg.MultipleModelMethod)
	require.Len(t, seg.Segments, 4)

	for c := 0; c < 3; c++ {
		s := seg.Segments[c]
		assert.Equal(t, c+1, s.ID)
		require.NotNil(t, s.MiningModel)
		assert.Equal(t, ClassPseudoFeature(c), s.MiningModel.Output.OutputFields[0].Name)

		inner := s.MiningModel.Segmentation
		assert.Equal(t, pmml.MethodSum, inner.MultipleModelMethod)
		require.Len(t, inner.Segments, 3)
		for j, ts := range inner.Segments {
			assert.Equal(t, j+1, ts.ID)
			want, err := TranslateTree(&model.Trees[c+3*j], ctx)
			require.NoError(t, err)
			assert.Equal(t, want, ts.TreeModel.Node, "class %d round %d", c, j)
		}
	}

	combiner := seg.Segments[3]
	assert.Equal(t, 4, combiner.ID)
	rm := combiner.RegressionModel
	require.NotNil(t, rm)
	assert.Equal(t, pmml.NormalizationSoftmax, rm.NormalizationMethod)
	assert.Equal(t, []string{"lgbValue(0)", "lgbValue(1)", "lgbValue(2)", DefaultTargetName}, rm.MiningSchema.Names())

	require.Len(t, rm.RegressionTables, 3)
	for c, table := range rm.RegressionTables {
		assert.Equal(t, []string{"a", "b", "c"}[c], table.TargetCategory)
		assert.Equal(t, []pmml.NumericPredictor{{Name: ClassPseudoFeature(c), Coefficient: 1}}, table.NumericPredictors)
	}
}

func TestSelectTopologyCombinerReadsEveryPseudoFeature(t *testing.T) {
	model := loadModel(t, "multiclass_9trees.json")
	ctx := newContext(t, model)

	seg, err := SelectTopology(lightgbm.MulticlassClassifier{K: 3}, model.Trees, ctx)
	require.NoError(t, err)

	var produced []string
	for _, s := range seg.Segments[:3] {
		for _, of := range s.MiningModel.Output.OutputFields {
			produced = append(produced, of.Name)
		}
	}
	var consumed []string
	for _, table := range seg.Segments[3].RegressionModel.RegressionTables {
		for _, np := range table.NumericPredictors {
			consumed = append(consumed, np.Name)
		}
	}
	assert.Equal(t, produced, consumed)
}

func TestSelectTopologyErrors(t *testing.T) {
	model := loadModel(t, "multiclass_9trees.json")
	ctx := newContext(t, model)

	_, err := SelectTopology(nil, model.Trees, ctx)
	var kerr *lgerrors.UnsupportedModelKindError
	assert.True(t, lgerrors.As(err, &kerr), "got %v", err)

	_, err = SelectTopology(lightgbm.MulticlassClassifier{K: 4}, model.Trees, ctx)
	var verr *lgerrors.ValidationError
	assert.True(t, lgerrors.As(err, &verr), "got %v", err)

	labelled := newContext(t, model, WithClassLabels([]string{"only", "two"}))
	_, err = SelectTopology(lightgbm.MulticlassClassifier{K: 3}, model.Trees, labelled)
	require.True(t, lgerrors.As(err, &verr), "got %v", err)
	assert.Equal(t, "class_labels", verr.ParamName)
}

func TestClassPseudoFeature(t *testing.T) {
	assert.Equal(t, "lgbValue(0)", ClassPseudoFeature(0))
	assert.Equal(t, "lgbValue(12)", ClassPseudoFeature(12))
}
