package pmml

// FunctionName is the mining function of a model.
type FunctionName string

const (
	FunctionRegression     FunctionName = "regression"
	FunctionClassification FunctionName = "classification"
)

// MultipleModelMethod is how a Segmentation combines its segments.
type MultipleModelMethod string

const (
	MethodSum        MultipleModelMethod = "sum"
	MethodModelChain MultipleModelMethod = "modelChain"
)

// MissingValueStrategy of a TreeModel.
type MissingValueStrategy string

const (
	MissingValueNone MissingValueStrategy = "none"
)

// NoTrueChildStrategy of a TreeModel.
type NoTrueChildStrategy string

const (
	ReturnLastPrediction NoTrueChildStrategy = "returnLastPrediction"
	ReturnNullPrediction NoTrueChildStrategy = "returnNullPrediction"
)

// SplitCharacteristic of a TreeModel.
type SplitCharacteristic string

const (
	MultiSplit  SplitCharacteristic = "multiSplit"
	BinarySplit SplitCharacteristic = "binarySplit"
)

// NormalizationMethod of a RegressionModel.
type NormalizationMethod string

const (
	NormalizationNone    NormalizationMethod = "none"
	NormalizationLogit   NormalizationMethod = "logit"
	NormalizationSoftmax NormalizationMethod = "softmax"
)

// Operator of a SimplePredicate.
type Operator string

const (
	LessOrEqual Operator = "lessOrEqual"
	GreaterThan Operator = "greaterThan"
)

// OpType of a field.
type OpType string

const (
	Continuous  OpType = "continuous"
	Categorical OpType = "categorical"
)

// DataType of a field.
type DataType string

const (
	Double DataType = "double"
	String DataType = "string"
)

// UsageType of a MiningField.
type UsageType string

const (
	UsageActive UsageType = "active"
	UsageTarget UsageType = "target"
)

// ResultFeature of an OutputField.
type ResultFeature string

const (
	PredictedValue ResultFeature = "predictedValue"
	Probability    ResultFeature = "probability"
)
