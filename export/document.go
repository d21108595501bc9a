package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

// ApplicationName is written to Header/Application.
const ApplicationName = "lgbm2pmml"

// Version is the application version, overridden at link time.
var Version = "dev"

// Export converts model into a complete PMML document. The model kind is
// decided once here and passed down; any failure returns no document.
func Export(model *lightgbm.Model, opts ...Option) (doc *pmml.PMML, err error) {
	defer errors.Recover(&err, "export.Export")

	if model == nil || len(model.Trees) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyModel)
	}
	ctx, err := NewContext(model, opts...)
	if err != nil {
		return nil, err
	}

	logger := ctx.Logger.With(
		log.ExportIDKey, uuid.NewString(),
		log.OperationKey, log.OperationExport,
		log.ObjectiveKey, string(model.Objective),
	)

	kind, err := model.Kind()
	if err != nil {
		logger.Error("model kind not supported", err)
		return nil, err
	}

	ctx.Logger = logger

	start := time.Now()
	fields := []any{
		log.ModelKindKey, kind.String(),
		log.TreesKey, len(model.Trees),
		log.FeaturesKey, len(ctx.FeatureNames),
		log.WorkersKey, ctx.Workers,
	}
	if lightgbm.IsClassifier(kind) {
		k := kind.NumClasses()
		perClass := len(model.Trees)
		if k > 2 {
			perClass /= k
		}
		fields = append(fields, log.ClassesKey, k, log.TreesPerClassKey, perClass)
	}
	logger.Info("export started", fields...)

	mining, err := AssembleMiningModel(kind, model, ctx)
	if err != nil {
		logger.Error("export failed", err, log.ModelKindKey, kind.String())
		return nil, err
	}
	dict, err := BuildDataDictionary(kind, ctx)
	if err != nil {
		logger.Error("export failed", err, log.ModelKindKey, kind.String())
		return nil, err
	}

	doc = pmml.New()
	doc.Header = BuildHeader(ctx)
	doc.DataDictionary = dict
	doc.MiningModel = mining

	logger.Info("export finished",
		log.ModelNameKey, mining.ModelName,
		log.SegmentsKey, len(mining.Segmentation.Segments),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// BuildHeader fills Header from ctx.Header. The timestamp is only written
// when configured, so repeated exports are byte-identical by default.
func BuildHeader(ctx *Context) *pmml.Header {
	h := &pmml.Header{
		Copyright:   ctx.Header.Copyright,
		Description: ctx.Header.Description,
		Application: &pmml.Application{Name: ApplicationName, Version: Version},
	}
	if ctx.Header.Timestamp != "" {
		h.Timestamp = &pmml.Timestamp{Value: ctx.Header.Timestamp}
	}
	return h
}

// BuildDataDictionary declares one continuous double field per feature and
// the target: continuous double for regression, categorical string with one
// Value per class label for classifiers.
func BuildDataDictionary(kind lightgbm.Kind, ctx *Context) (*pmml.DataDictionary, error) {
	fields := make([]pmml.DataField, 0, len(ctx.FeatureNames)+1)
	for _, name := range ctx.FeatureNames {
		fields = append(fields, pmml.DataField{Name: name, OpType: pmml.Continuous, DataType: pmml.Double})
	}

	target := pmml.DataField{Name: ctx.TargetName, OpType: pmml.Continuous, DataType: pmml.Double}
	if lightgbm.IsClassifier(kind) {
		labels, err := ctx.Labels(kind)
		if err != nil {
			return nil, err
		}
		target.OpType = pmml.Categorical
		target.DataType = pmml.String
		for _, label := range labels {
			target.Values = append(target.Values, pmml.Value{Value: label})
		}
	}
	fields = append(fields, target)

	return &pmml.DataDictionary{NumberOfFields: len(fields), DataFields: fields}, nil
}
