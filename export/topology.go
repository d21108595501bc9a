package export

import (
	"fmt"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

// BinaryPseudoFeature is the raw margin produced by the binary tree group.
const BinaryPseudoFeature = "lgbValue"

// ClassPseudoFeature is the raw score of class c in a multiclass model.
func ClassPseudoFeature(c int) string {
	return fmt.Sprintf("lgbValue(%d)", c)
}

// GroupTreesByClass regroups round-robin ordered trees: class c receives
// trees c, c+k, c+2k, ... in that order. It assumes LightGBM interleaves
// classes strictly, which the dump format does not state; a gapped layout
// would be grouped wrongly rather than rejected.
func GroupTreesByClass(trees []lightgbm.Tree, k int) ([][]lightgbm.Tree, error) {
	if k < 1 {
		return nil, errors.NewValidationError("num_class", "must be positive", k)
	}
	if len(trees)%k != 0 {
		return nil, errors.NewValidationError("trees",
			fmt.Sprintf("tree count is not divisible by %d classes", k), len(trees))
	}
	perClass := len(trees) / k
	groups := make([][]lightgbm.Tree, k)
	for c := range groups {
		groups[c] = make([]lightgbm.Tree, 0, perClass)
	}
	for i := range trees {
		groups[i%k] = append(groups[i%k], trees[i])
	}
	return groups, nil
}

// SelectTopology builds the outer Segmentation for kind.
//
//   - Regression: one segment per tree, combined with sum.
//   - BinaryClassifier: segment 1 sums all trees into lgbValue; segment 2 is
//     a logit RegressionModel over lgbValue.
//   - MulticlassClassifier: segments 1..K sum the trees of one class into
//     lgbValue(c); segment K+1 is a softmax RegressionModel over all of them
//     in class order.
func SelectTopology(kind lightgbm.Kind, trees []lightgbm.Tree, ctx *Context) (*pmml.Segmentation, error) {
	switch k := kind.(type) {
	case lightgbm.Regression:
		segments, err := BuildSegments(trees, ctx)
		if err != nil {
			return nil, err
		}
		return &pmml.Segmentation{MultipleModelMethod: pmml.MethodSum, Segments: segments}, nil

	case lightgbm.BinaryClassifier:
		labels, err := ctx.Labels(k)
		if err != nil {
			return nil, err
		}
		group, err := groupSegment(1, BinaryPseudoFeature, trees, ctx)
		if err != nil {
			return nil, err
		}
		combiner := &pmml.Segment{
			ID:              2,
			True:            &pmml.True{},
			RegressionModel: binaryCombiner(labels, ctx),
		}
		return &pmml.Segmentation{
			MultipleModelMethod: pmml.MethodModelChain,
			Segments:            []*pmml.Segment{group, combiner},
		}, nil

	case lightgbm.MulticlassClassifier:
		labels, err := ctx.Labels(k)
		if err != nil {
			return nil, err
		}
		groups, err := GroupTreesByClass(trees, k.K)
		if err != nil {
			return nil, err
		}
		segments := make([]*pmml.Segment, 0, k.K+1)
		for c, group := range groups {
			seg, err := groupSegment(c+1, ClassPseudoFeature(c), group, ctx)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
		segments = append(segments, &pmml.Segment{
			ID:              k.K + 1,
			True:            &pmml.True{},
			RegressionModel: multiclassCombiner(labels, ctx),
		})
		return &pmml.Segmentation{MultipleModelMethod: pmml.MethodModelChain, Segments: segments}, nil

	default:
		return nil, errors.NewUnsupportedModelKindError("", 0, fmt.Sprintf("no topology for model kind %v", kind))
	}
}

// groupSegment sums trees inside an inner MiningModel whose only output is
// the pseudo-feature.
func groupSegment(id int, pseudoFeature string, trees []lightgbm.Tree, ctx *Context) (*pmml.Segment, error) {
	segments, err := BuildSegments(trees, ctx)
	if err != nil {
		return nil, err
	}
	return &pmml.Segment{
		ID:   id,
		True: &pmml.True{},
		MiningModel: &pmml.MiningModel{
			FunctionName: pmml.FunctionRegression,
			MiningSchema: featureSchema(ctx),
			Output:       &pmml.Output{OutputFields: []pmml.OutputField{pseudoOutput(pseudoFeature)}},
			Segmentation: &pmml.Segmentation{MultipleModelMethod: pmml.MethodSum, Segments: segments},
		},
	}, nil
}

func pseudoOutput(name string) pmml.OutputField {
	final := false
	return pmml.OutputField{
		Name:          name,
		OpType:        pmml.Continuous,
		DataType:      pmml.Double,
		Feature:       pmml.PredictedValue,
		IsFinalResult: &final,
	}
}

// combinerSchema lists the pseudo-features as active fields followed by the target.
func combinerSchema(pseudoFeatures []string, ctx *Context) *pmml.MiningSchema {
	fields := make([]pmml.MiningField, 0, len(pseudoFeatures)+1)
	for _, name := range pseudoFeatures {
		fields = append(fields, pmml.MiningField{Name: name})
	}
	fields = append(fields, pmml.MiningField{Name: ctx.TargetName, UsageType: pmml.UsageTarget})
	return &pmml.MiningSchema{MiningFields: fields}
}

// binaryCombiner maps lgbValue to P(labels[1]) = logistic(Sigmoid * lgbValue).
// The table for labels[0] is the zero reference.
func binaryCombiner(labels []string, ctx *Context) *pmml.RegressionModel {
	return &pmml.RegressionModel{
		FunctionName:        pmml.FunctionClassification,
		NormalizationMethod: pmml.NormalizationLogit,
		MiningSchema:        combinerSchema([]string{BinaryPseudoFeature}, ctx),
		RegressionTables: []pmml.RegressionTable{
			{
				TargetCategory:    labels[1],
				NumericPredictors: []pmml.NumericPredictor{{Name: BinaryPseudoFeature, Coefficient: ctx.Sigmoid}},
			},
			{TargetCategory: labels[0]},
		},
	}
}

// multiclassCombiner applies softmax over lgbValue(0..K-1). Table c reads
// only lgbValue(c) with coefficient 1.
func multiclassCombiner(labels []string, ctx *Context) *pmml.RegressionModel {
	pseudo := make([]string, len(labels))
	tables := make([]pmml.RegressionTable, len(labels))
	for c, label := range labels {
		pseudo[c] = ClassPseudoFeature(c)
		tables[c] = pmml.RegressionTable{
			TargetCategory:    label,
			NumericPredictors: []pmml.NumericPredictor{{Name: pseudo[c], Coefficient: 1}},
		}
	}
	return &pmml.RegressionModel{
		FunctionName:        pmml.FunctionClassification,
		NormalizationMethod: pmml.NormalizationSoftmax,
		MiningSchema:        combinerSchema(pseudo, ctx),
		RegressionTables:    tables,
	}
}
