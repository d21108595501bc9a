package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/lgbm2pmml/export"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
	"github.com/YuminosukeSato/lgbm2pmml/pmml"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

type inspectCmdConfig struct {
	*rootCmdConfig
	modelInput string
	pmmlInput  string
}

func inspectCmd(rootConfig *rootCmdConfig) *cobra.Command {
	icc := &inspectCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a model dump or an exported PMML document",
		Long:  `Print the kind, class count and tree layout of a LightGBM model dump, or the segment structure of a PMML document written by export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := icc.Validate(); err != nil {
				return err
			}
			if icc.modelInput != "" {
				return inspectModel(cmd.OutOrStdout(), icc.modelInput)
			}
			return inspectPMML(cmd.OutOrStdout(), icc.pmmlInput)
		},
	}
	cmd.Flags().StringVarP(&(icc.modelInput), "model", "m", "", "path to a JSON model dump")
	cmd.Flags().StringVarP(&(icc.pmmlInput), "pmml", "p", "", "path to a PMML document")
	return cmd
}

func (icc *inspectCmdConfig) Validate() error {
	if (icc.modelInput == "") == (icc.pmmlInput == "") {
		return fmt.Errorf("exactly one of the model and pmml flags must be set")
	}
	return nil
}

func inspectModel(w io.Writer, path string) error {
	log.GetLogger().Debug("inspecting model", log.OperationKey, log.OperationInspect, "path", path)
	model, err := lightgbm.LoadFromJSONFile(path)
	if err != nil {
		return err
	}
	kind, err := model.Kind()
	if err != nil {
		return err
	}

	perClass := len(model.Trees)
	if k, ok := kind.(lightgbm.MulticlassClassifier); ok {
		groups, err := export.GroupTreesByClass(model.Trees, k.K)
		if err != nil {
			return err
		}
		perClass = len(groups[0])
	}
	maxDepth := 0
	for i := range model.Trees {
		if d := model.Trees[i].Depth(); d > maxDepth {
			maxDepth = d
		}
	}

	fmt.Fprintf(w, "objective:       %s\n", model.Objective)
	fmt.Fprintf(w, "kind:            %s\n", kind)
	fmt.Fprintf(w, "classes:         %d\n", kind.NumClasses())
	fmt.Fprintf(w, "trees:           %d\n", len(model.Trees))
	fmt.Fprintf(w, "trees per class: %d\n", perClass)
	fmt.Fprintf(w, "max depth:       %d\n", maxDepth)
	fmt.Fprintf(w, "features:        %d (%s)\n", len(model.FeatureNames), strings.Join(model.FeatureNames, ", "))
	return nil
}

func inspectPMML(w io.Writer, path string) error {
	log.GetLogger().Debug("inspecting pmml", log.OperationKey, log.OperationInspect, "path", path)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading pmml from %s: %v", path, err)
	}
	defer f.Close()

	doc, err := pmml.Parse(f)
	if err != nil {
		return err
	}
	mm := doc.MiningModel
	if mm == nil || mm.Segmentation == nil {
		return fmt.Errorf("%s has no segmented MiningModel", path)
	}

	fmt.Fprintf(w, "model:    %s (%s, %s)\n", mm.ModelName, mm.FunctionName, mm.Segmentation.MultipleModelMethod)
	for _, seg := range mm.Segmentation.Segments {
		describeSegment(w, seg, "  ")
	}
	return nil
}

func describeSegment(w io.Writer, seg *pmml.Segment, indent string) {
	switch {
	case seg.TreeModel != nil:
		leaves, depth := treeShape(seg.TreeModel.Node)
		fmt.Fprintf(w, "%ssegment %d: tree, %d leaves, depth %d\n", indent, seg.ID, leaves, depth)
	case seg.MiningModel != nil && seg.MiningModel.Segmentation == nil:
		fmt.Fprintf(w, "%ssegment %d: mining model without segmentation\n", indent, seg.ID)
	case seg.MiningModel != nil:
		var outputs []string
		if seg.MiningModel.Output != nil {
			for _, of := range seg.MiningModel.Output.OutputFields {
				outputs = append(outputs, of.Name)
			}
		}
		inner := seg.MiningModel.Segmentation
		fmt.Fprintf(w, "%ssegment %d: %s of %d trees -> %s\n", indent, seg.ID,
			inner.MultipleModelMethod, len(inner.Segments), strings.Join(outputs, ", "))
	case seg.RegressionModel != nil:
		var inputs []string
		for _, t := range seg.RegressionModel.RegressionTables {
			for _, np := range t.NumericPredictors {
				inputs = append(inputs, np.Name)
			}
		}
		fmt.Fprintf(w, "%ssegment %d: %s combiner over %s\n", indent, seg.ID,
			seg.RegressionModel.NormalizationMethod, strings.Join(inputs, ", "))
	}
}

func treeShape(root *pmml.Node) (leaves, depth int) {
	if root == nil {
		return 0, 0
	}
	root.Walk(func(n *pmml.Node, d int) bool {
		if n.IsLeaf() {
			leaves++
		}
		if d > depth {
			depth = d
		}
		return true
	})
	return leaves, depth
}
