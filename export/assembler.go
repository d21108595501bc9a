package export

import (
	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

// EnsembleModelName is the modelName of the top-level MiningModel.
const EnsembleModelName = "LightGBModel"

// AssembleMiningModel wraps the topology for kind in the top-level
// MiningModel, adding the mining schema (features active, target last) and
// the final output fields.
func AssembleMiningModel(kind lightgbm.Kind, model *lightgbm.Model, ctx *Context) (*pmml.MiningModel, error) {
	if model == nil || len(model.Trees) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyModel)
	}

	segmentation, err := SelectTopology(kind, model.Trees, ctx)
	if err != nil {
		return nil, err
	}
	output, err := finalOutput(kind, ctx)
	if err != nil {
		return nil, err
	}

	function := pmml.FunctionRegression
	if lightgbm.IsClassifier(kind) {
		function = pmml.FunctionClassification
	}

	fields := make([]pmml.MiningField, 0, len(ctx.FeatureNames)+1)
	for _, name := range ctx.FeatureNames {
		fields = append(fields, pmml.MiningField{Name: name, UsageType: pmml.UsageActive})
	}
	fields = append(fields, pmml.MiningField{Name: ctx.TargetName, UsageType: pmml.UsageTarget})

	return &pmml.MiningModel{
		ModelName:    EnsembleModelName,
		FunctionName: function,
		MiningSchema: &pmml.MiningSchema{MiningFields: fields},
		Output:       output,
		Segmentation: segmentation,
	}, nil
}

// finalOutput declares predicted_<target>, plus probability_<label> per
// class for classifiers.
func finalOutput(kind lightgbm.Kind, ctx *Context) (*pmml.Output, error) {
	predicted := pmml.OutputField{
		Name:    "predicted_" + ctx.TargetName,
		Feature: pmml.PredictedValue,
	}
	if !lightgbm.IsClassifier(kind) {
		predicted.OpType = pmml.Continuous
		predicted.DataType = pmml.Double
		return &pmml.Output{OutputFields: []pmml.OutputField{predicted}}, nil
	}

	labels, err := ctx.Labels(kind)
	if err != nil {
		return nil, err
	}
	fields := make([]pmml.OutputField, 0, len(labels)+1)
	for _, label := range labels {
		fields = append(fields, pmml.OutputField{
			Name:     "probability_" + label,
			OpType:   pmml.Continuous,
			DataType: pmml.Double,
			Feature:  pmml.Probability,
			Value:    label,
		})
	}
	predicted.OpType = pmml.Categorical
	predicted.DataType = pmml.String
	fields = append(fields, predicted)
	return &pmml.Output{OutputFields: fields}, nil
}
