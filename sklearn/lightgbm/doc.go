// Package lightgbm holds the native LightGBM ensemble read by the exporter.
//
// Models are loaded from the JSON written by Booster.dump_model(). Each
// nested tree_structure is flattened into a node arena (Tree.Nodes, root at
// index 0) so later stages can walk trees without recursion:
//
//	model, err := lightgbm.LoadFromJSONFile("model.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	kind, err := model.Kind() // Regression, BinaryClassifier or MulticlassClassifier
//
// Leaf values in a dump already include the learning rate, so a tree's
// contribution is its leaf value. PredictRaw and Predict reproduce
// LightGBM's own scoring and are used to check exported documents.
package lightgbm
