// Standard attribute keys for export logging.
//
// Keys follow a hierarchical naming convention ("model.kind", "export.trees")
// so logs from the CLI and from library callers can be filtered the same way.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the exported model, e.g. "LightGBModel".
	ModelNameKey = "model.name"

	// ModelKindKey is the detected model kind: "regression", "binary", "multiclass".
	ModelKindKey = "model.kind"

	// ObjectiveKey is the raw LightGBM objective string.
	ObjectiveKey = "model.objective"

	// ClassesKey is the number of classes of a classifier.
	ClassesKey = "model.classes"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"
)

// Export shape.
const (
	// ExportIDKey correlates all log lines of one export call.
	ExportIDKey = "export.id"

	// TreesKey is the number of trees in the ensemble.
	TreesKey = "export.trees"

	// TreesPerClassKey is the number of trees in one class group.
	TreesPerClassKey = "export.trees_per_class"

	// SegmentsKey is the number of outer segments produced.
	SegmentsKey = "export.segments"

	// FeaturesKey is the number of input feature names.
	FeaturesKey = "data.features"

	// WorkersKey is the number of goroutines used for tree translation.
	WorkersKey = "export.workers"

	// OutputPathKey is where the document was written.
	OutputPathKey = "export.output"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrorTypeKey categorizes the error, e.g. "MalformedTreeError".
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard operation values.
const (
	OperationLoad      = "load"
	OperationExport    = "export"
	OperationTranslate = "translate"
	OperationWrite     = "write"
	OperationInspect   = "inspect"
)
