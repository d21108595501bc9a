package export

import (
	"github.com/YuminosukeSato/lgbm2pmml/core/parallel"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

// TreeModelName is the modelName of every per-tree TreeModel.
const TreeModelName = "DecisionTreeModel"

// MinParallelTrees is the ensemble size up to which trees are translated on
// the calling goroutine whatever ctx.Workers says.
const MinParallelTrees = 8

// BuildSegments wraps each tree in its own always-true segment, numbered
// 1..len(trees) in input order. Every TreeModel reads all feature names.
// With ctx.Workers > 1 and more than MinParallelTrees trees, translation is
// concurrent; the result order and the reported error (that of the lowest
// failing tree) do not change.
func BuildSegments(trees []lightgbm.Tree, ctx *Context) ([]*pmml.Segment, error) {
	segments := make([]*pmml.Segment, len(trees))
	err := parallel.ForEach(len(trees), MinParallelTrees, ctx.Workers, func(i int) error {
		node, err := TranslateTree(&trees[i], ctx)
		if err != nil {
			return err
		}
		segments[i] = &pmml.Segment{
			ID:   i + 1,
			True: &pmml.True{},
			TreeModel: &pmml.TreeModel{
				ModelName:            TreeModelName,
				FunctionName:         pmml.FunctionRegression,
				MissingValueStrategy: pmml.MissingValueNone,
				NoTrueChildStrategy:  pmml.ReturnLastPrediction,
				SplitCharacteristic:  pmml.MultiSplit,
				MiningSchema:         featureSchema(ctx),
				Node:                 node,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ctx.Logger.Debug("trees translated",
		log.OperationKey, log.OperationTranslate,
		log.TreesKey, len(trees),
		log.WorkersKey, ctx.Workers,
	)
	return segments, nil
}

// featureSchema lists every feature name without a usage type.
func featureSchema(ctx *Context) *pmml.MiningSchema {
	fields := make([]pmml.MiningField, len(ctx.FeatureNames))
	for i, name := range ctx.FeatureNames {
		fields[i] = pmml.MiningField{Name: name}
	}
	return &pmml.MiningSchema{MiningFields: fields}
}
