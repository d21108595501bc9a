// Package lgbm2pmml converts trained LightGBM ensembles into PMML 4.4
// documents that reproduce the ensemble's predictions.
//
// The input is the JSON written by LightGBM's Booster.dump_model(). Three
// model shapes are supported:
//
//   - regression: the prediction is the sum of all tree outputs
//   - binary classification: a logistic function of the summed margin
//   - multiclass classification: a softmax over one tree sum per class
//
// # Installation
//
//	go install github.com/YuminosukeSato/lgbm2pmml/cmd/lgbm2pmml@latest
//
// # Command line
//
//	lgbm2pmml export --model model.json --metadata meta.yml --output model.pmml
//	lgbm2pmml inspect --model model.json
//	lgbm2pmml inspect --pmml model.pmml
//
// # Library
//
//	package main
//
//	import (
//	    "log"
//	    "os"
//
//	    "github.com/YuminosukeSato/lgbm2pmml/export"
//	    "github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
//	)
//
//	func main() {
//	    model, err := lightgbm.LoadFromJSONFile("model.json")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    doc, err := export.Export(model,
//	        export.WithTargetName("species"),
//	        export.WithClassLabels([]string{"setosa", "versicolor", "virginica"}),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if _, err := doc.WriteTo(os.Stdout); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Packages
//
//   - sklearn/lightgbm: model loading, kind detection and native scoring
//   - export: the tree to PMML translation
//   - pmml: the PMML document model and XML serialization
//   - config: YAML export metadata with environment overrides
//   - pkg/errors: structured errors and warnings
//   - pkg/log: structured logging on zerolog
//
// # Limitations
//
// Missing values are not routed (missingValueStrategy="none") and
// categorical splits are rejected. Split thresholds are written with 16
// fractional digits; a threshold that does not survive that rounding is
// reported as a ThresholdPrecisionWarning.
package lgbm2pmml
