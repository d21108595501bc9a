package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lgerrors "github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

func TestAssembleMiningModelRegression(t *testing.T) {
	model := loadModel(t, "regression_3trees.json")
	ctx := newContext(t, model, WithTargetName("price"))

	mm, err := AssembleMiningModel(lightgbm.Regression{}, model, ctx)
	require.NoError(t, err)

	assert.Equal(t, EnsembleModelName, mm.ModelName)
	assert.Equal(t, pmml.FunctionRegression, mm.FunctionName)
	assert.Equal(t, pmml.MethodSum, mm.Segmentation.MultipleModelMethod)
	assert.Equal(t, []pmml.MiningField{
		{Name: "x0", UsageType: pmml.UsageActive},
		{Name: "x1", UsageType: pmml.UsageActive},
		{Name: "x2", UsageType: pmml.UsageActive},
		{Name: "price", UsageType: pmml.UsageTarget},
	}, mm.MiningSchema.MiningFields)
	assert.Equal(t, []pmml.OutputField{
		{Name: "predicted_price", OpType: pmml.Continuous, DataType: pmml.Double, Feature: pmml.PredictedValue},
	}, mm.Output.OutputFields)
}

func TestAssembleMiningModelClassification(t *testing.T) {
	model := loadModel(t, "multiclass_9trees.json")
	ctx := newContext(t, model, WithTargetName("species"), WithClassLabels([]string{"setosa", "versicolor", "virginica"}))

	mm, err := AssembleMiningModel(lightgbm.MulticlassClassifier{K: 3}, model, ctx)
	require.NoError(t, err)

	assert.Equal(t, pmml.FunctionClassification, mm.FunctionName)
	assert.Equal(t, pmml.MethodModelChain, mm.Segmentation.MultipleModelMethod)
	assert.Len(t, mm.Segmentation.Segments, 4)

	fields := mm.Output.OutputFields
	require.Len(t, fields, 4)
	for i, label := range []string{"setosa", "versicolor", "virginica"} {
		assert.Equal(t, "probability_"+label, fields[i].Name)
		assert.Equal(t, pmml.Probability, fields[i].Feature)
		assert.Equal(t, label, fields[i].Value)
		assert.Nil(t, fields[i].IsFinalResult)
	}
	assert.Equal(t, "predicted_species", fields[3].Name)
	assert.Equal(t, pmml.PredictedValue, fields[3].Feature)
	assert.Equal(t, pmml.String, fields[3].DataType)
}

func TestAssembleMiningModelEmpty(t *testing.T) {
	model := loadModel(t, "regression_3trees.json")
	ctx := newContext(t, model)
	model.Trees = nil

	_, err := AssembleMiningModel(lightgbm.Regression{}, model, ctx)
	assert.True(t, lgerrors.Is(err, lgerrors.ErrEmptyModel))
}

func TestExportScenarios(t *testing.T) {
	tests := []struct {
		fixture        string
		function       pmml.FunctionName
		method         pmml.MultipleModelMethod
		outerSegments  int
		innerSegments  []int
		normalization  pmml.NormalizationMethod
		targetOpType   pmml.OpType
		targetValues   int
		outputFieldLen int
	}{
		{"regression_3trees.json", pmml.FunctionRegression, pmml.MethodSum, 3, nil, "", pmml.Continuous, 0, 1},
		{"binary_5trees.json", pmml.FunctionClassification, pmml.MethodModelChain, 2, []int{5}, pmml.NormalizationLogit, pmml.Categorical, 2, 3},
		{"multiclass_9trees.json", pmml.FunctionClassification, pmml.MethodModelChain, 4, []int{3, 3, 3}, pmml.NormalizationSoftmax, pmml.Categorical, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			model := loadModel(t, tt.fixture)
			doc, err := Export(model, WithLogger(quietLogger()))
			require.NoError(t, err)

			assert.Equal(t, pmml.Version, doc.Version)
			assert.Equal(t, pmml.Namespace, doc.Xmlns)
			assert.Equal(t, ApplicationName, doc.Header.Application.Name)

			mm := doc.MiningModel
			assert.Equal(t, tt.function, mm.FunctionName)
			assert.Equal(t, tt.method, mm.Segmentation.MultipleModelMethod)
			require.Len(t, mm.Segmentation.Segments, tt.outerSegments)
			assert.Len(t, mm.Output.OutputFields, tt.outputFieldLen)

			for i, n := range tt.innerSegments {
				inner := mm.Segmentation.Segments[i].MiningModel
				require.NotNil(t, inner)
				assert.Len(t, inner.Segmentation.Segments, n)
			}
			if tt.normalization != "" {
				last := mm.Segmentation.Segments[tt.outerSegments-1]
				require.NotNil(t, last.RegressionModel)
				assert.Equal(t, tt.normalization, last.RegressionModel.NormalizationMethod)
				assert.Equal(t, tt.outerSegments, last.ID)
			}

			dd := doc.DataDictionary
			require.Len(t, dd.DataFields, 4)
			assert.Equal(t, 4, dd.NumberOfFields)
			target := dd.DataFields[3]
			assert.Equal(t, DefaultTargetName, target.Name)
			assert.Equal(t, tt.targetOpType, target.OpType)
			assert.Len(t, target.Values, tt.targetValues)
		})
	}
}

func TestExportTreeSegmentCountMatchesTrees(t *testing.T) {
	for _, fixture := range []string{"regression_3trees.json", "binary_5trees.json", "multiclass_9trees.json"} {
		model := loadModel(t, fixture)
		doc, err := Export(model, WithLogger(quietLogger()))
		require.NoError(t, err)

		trees := 0
		var count func(seg *pmml.Segmentation)
		count = func(seg *pmml.Segmentation) {
			for _, s := range seg.Segments {
				if s.TreeModel != nil {
					trees++
				}
				if s.MiningModel != nil {
					count(s.MiningModel.Segmentation)
				}
			}
		}
		count(doc.MiningModel.Segmentation)
		assert.Equal(t, len(model.Trees), trees, fixture)
	}
}

func TestExportIsDeterministic(t *testing.T) {
	model := loadModel(t, "multiclass_9trees.json")

	first, err := Export(model, WithLogger(quietLogger()))
	require.NoError(t, err)
	second, err := Export(model, WithLogger(quietLogger()), WithWorkers(4))
	require.NoError(t, err)

	a, err := first.Marshal()
	require.NoError(t, err)
	b, err := second.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestExportHeader(t *testing.T) {
	model := loadModel(t, "regression_3trees.json")
	doc, err := Export(model,
		WithLogger(quietLogger()),
		WithHeader(HeaderInfo{Copyright: "ACME", Description: "house prices", Timestamp: "2026-01-02 03:04:05"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "ACME", doc.Header.Copyright)
	assert.Equal(t, "house prices", doc.Header.Description)
	require.NotNil(t, doc.Header.Timestamp)
	assert.Equal(t, "2026-01-02 03:04:05", doc.Header.Timestamp.Value)

	doc, err = Export(model, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Nil(t, doc.Header.Timestamp)
}

func TestExportSerializedDocument(t *testing.T) {
	model := loadModel(t, "binary_5trees.json")
	doc, err := Export(model, WithLogger(quietLogger()), WithTargetName("churn"))
	require.NoError(t, err)

	out, err := doc.Marshal()
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `<MiningModel modelName="LightGBModel" functionName="classification">`)
	assert.Contains(t, s, `<Segmentation multipleModelMethod="modelChain">`)
	assert.Contains(t, s, `<OutputField name="lgbValue" optype="continuous" dataType="double" feature="predictedValue" isFinalResult="false">`)
	assert.Contains(t, s, `<RegressionModel functionName="classification" normalizationMethod="logit">`)
	assert.Contains(t, s, `<NumericPredictor name="lgbValue" coefficient="1">`)
	assert.Contains(t, s, `<DataField name="churn" optype="categorical" dataType="string">`)
	assert.Equal(t, 5, strings.Count(s, `modelName="DecisionTreeModel"`))
}

func TestExportErrors(t *testing.T) {
	t.Run("nil model", func(t *testing.T) {
		doc, err := Export(nil)
		assert.Nil(t, doc)
		assert.True(t, lgerrors.Is(err, lgerrors.ErrEmptyModel))
	})

	t.Run("no trees", func(t *testing.T) {
		doc, err := Export(lightgbm.NewModel())
		assert.Nil(t, doc)
		assert.True(t, lgerrors.Is(err, lgerrors.ErrEmptyModel))
	})

	t.Run("unsupported objective", func(t *testing.T) {
		model := loadModel(t, "regression_3trees.json")
		model.Objective = lightgbm.RegressionPoisson
		doc, err := Export(model, WithLogger(quietLogger()))
		assert.Nil(t, doc)
		var kerr *lgerrors.UnsupportedModelKindError
		require.True(t, lgerrors.As(err, &kerr))
		assert.Equal(t, "poisson", kerr.Objective)
	})

	t.Run("too few derived names", func(t *testing.T) {
		model := loadModel(t, "regression_3trees.json")
		doc, err := Export(model, WithLogger(quietLogger()), WithDerivedNames([]string{"x0"}))
		assert.Nil(t, doc)
		var ferr *lgerrors.FeatureIndexError
		assert.True(t, lgerrors.As(err, &ferr))
	})

	t.Run("label count mismatch", func(t *testing.T) {
		model := loadModel(t, "binary_5trees.json")
		doc, err := Export(model, WithLogger(quietLogger()), WithClassLabels([]string{"a", "b", "c"}))
		assert.Nil(t, doc)
		var verr *lgerrors.ValidationError
		assert.True(t, lgerrors.As(err, &verr))
	})
}

func TestExportRecoversFromPanic(t *testing.T) {
	model := loadModel(t, "regression_3trees.json")
	doc, err := Export(model, WithLogger(quietLogger()), WithResolver(NameResolverFunc(func(string, []string) string {
		panic("resolver exploded")
	})))
	assert.Nil(t, doc)
	var perr *lgerrors.PanicError
	require.True(t, lgerrors.As(err, &perr), "got %v", err)
	assert.Equal(t, "resolver exploded", perr.PanicValue)
}

func TestExportLogging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	model := loadModel(t, "multiclass_9trees.json")

	_, err := Export(model, WithLogger(logger))
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("export started"))
	assert.True(t, logger.ContainsMessage("export finished"))
	assert.True(t, logger.ContainsField(log.ModelKindKey, "multiclass(3)"))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationExport))
	assert.True(t, logger.ContainsField(log.ClassesKey, float64(3)))
	assert.True(t, logger.ContainsField(log.TreesPerClassKey, float64(3)))
	assert.True(t, logger.ContainsMessage("trees translated"))

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	id := entries[0][log.ExportIDKey]
	assert.NotEmpty(t, id)
	for _, e := range entries {
		assert.Equal(t, id, e[log.ExportIDKey])
	}

	logger.Clear()
	model.Objective = lightgbm.LambdaRank
	_, err = Export(model, WithLogger(logger))
	require.Error(t, err)
	assert.True(t, logger.ContainsMessage("model kind not supported"))
}

func TestBuildDataDictionary(t *testing.T) {
	model := loadModel(t, "binary_5trees.json")
	ctx := newContext(t, model, WithClassLabels([]string{"neg", "pos"}))

	dd, err := BuildDataDictionary(lightgbm.BinaryClassifier{}, ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, dd.NumberOfFields)
	for _, f := range dd.DataFields[:3] {
		assert.Equal(t, pmml.Continuous, f.OpType)
		assert.Equal(t, pmml.Double, f.DataType)
		assert.Empty(t, f.Values)
	}
	assert.Equal(t, []pmml.Value{{Value: "neg"}, {Value: "pos"}}, dd.DataFields[3].Values)

	dd, err = BuildDataDictionary(lightgbm.Regression{}, ctx)
	require.NoError(t, err)
	assert.Equal(t, pmml.Continuous, dd.DataFields[3].OpType)
	assert.Equal(t, pmml.Double, dd.DataFields[3].DataType)
}
