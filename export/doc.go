/*
Package export translates a LightGBM ensemble into a PMML 4.4 MiningModel.

The stages run top-down and are exported individually so each can be tested
on its own:

	Export              header, data dictionary, top-level model
	AssembleMiningModel top-level MiningModel (sum or modelChain)
	SelectTopology      flat sum, logit chain or per-class softmax chain
	BuildSegments       one TreeModel segment per tree
	TranslateTree       native tree to predicate tree

All stages read from one immutable Context. The model kind is decided once
by Export and passed explicitly.

Example:

	model, err := lightgbm.LoadFromJSONFile("model.json")
	if err != nil {
		return err
	}
	doc, err := export.Export(model, export.WithTargetName("species"))
	if err != nil {
		return err
	}
	_, err = doc.WriteTo(os.Stdout)

Missing values are not modelled: every TreeModel uses
missingValueStrategy="none", so a scorer given a missing input leaves the
prediction undefined where LightGBM would follow the default branch.
*/
package export
