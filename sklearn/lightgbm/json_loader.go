package lightgbm

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
)

// JSONModel represents the top-level structure of a LightGBM dump_model() document
type JSONModel struct {
	Name                string         `json:"name"`
	Version             string         `json:"version"`
	NumClass            int            `json:"num_class"`
	NumTreePerIteration int            `json:"num_tree_per_iteration"`
	LabelIndex          int            `json:"label_index"`
	MaxFeatureIdx       int            `json:"max_feature_idx"`
	Objective           string         `json:"objective"`
	AverageOutput       bool           `json:"average_output"`
	FeatureNames        []string       `json:"feature_names"`
	TreeInfo            []JSONTreeInfo `json:"tree_info"`
}

// JSONTreeInfo represents information about a single tree
type JSONTreeInfo struct {
	TreeIndex     int           `json:"tree_index"`
	NumLeaves     int           `json:"num_leaves"`
	NumCat        int           `json:"num_cat"`
	Shrinkage     float64       `json:"shrinkage"`
	TreeStructure *JSONTreeNode `json:"tree_structure"`
}

// JSONTreeNode is one nested record of tree_structure: either a leaf
// (leaf_index/leaf_value) or a split (split_feature, threshold, children).
// Pointer fields distinguish absent keys from zero values.
type JSONTreeNode struct {
	// Internal node fields
	SplitIndex    *int          `json:"split_index,omitempty"`
	SplitFeature  *int          `json:"split_feature,omitempty"`
	SplitGain     float64       `json:"split_gain,omitempty"`
	Threshold     interface{}   `json:"threshold,omitempty"` // float64, or "a||b" for categorical
	DecisionType  string        `json:"decision_type,omitempty"`
	DefaultLeft   bool          `json:"default_left,omitempty"`
	MissingType   string        `json:"missing_type,omitempty"`
	InternalValue float64       `json:"internal_value,omitempty"`
	InternalCount int           `json:"internal_count,omitempty"`
	LeftChild     *JSONTreeNode `json:"left_child,omitempty"`
	RightChild    *JSONTreeNode `json:"right_child,omitempty"`

	// Leaf node fields
	LeafIndex *int     `json:"leaf_index,omitempty"`
	LeafValue *float64 `json:"leaf_value,omitempty"`
	LeafCount int      `json:"leaf_count,omitempty"`
}

// isLeaf reports whether the record is a leaf. Single-leaf trees are dumped
// without leaf_index, so leaf_value alone also marks a leaf.
func (n *JSONTreeNode) isLeaf() bool {
	return (n.LeafIndex != nil || n.LeafValue != nil) && n.LeftChild == nil && n.RightChild == nil
}

func (n *JSONTreeNode) isSplit() bool {
	return n.SplitFeature != nil && n.Threshold != nil && n.LeftChild != nil && n.RightChild != nil
}

// LoadFromJSON loads a LightGBM model from the JSON produced by dump_model().
func LoadFromJSON(jsonData []byte) (*Model, error) {
	var jsonModel JSONModel
	if err := json.Unmarshal(jsonData, &jsonModel); err != nil {
		return nil, errors.NewModelError("LoadFromJSON", "failed to parse JSON", err)
	}
	return jsonModel.ToModel()
}

// LoadFromReader decodes a dump_model() document from r.
func LoadFromReader(r io.Reader) (*Model, error) {
	var jsonModel JSONModel
	if err := json.NewDecoder(r).Decode(&jsonModel); err != nil {
		return nil, errors.NewModelError("LoadFromReader", "failed to parse JSON", err)
	}
	return jsonModel.ToModel()
}

// LoadFromJSONFile loads a LightGBM model from a JSON file
func LoadFromJSONFile(path string) (*Model, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.NewModelError("LoadFromJSONFile", "failed to open model file", err)
	}
	defer file.Close()

	model, err := LoadFromReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return model, nil
}

// ToModel converts the JSON representation to a Model, flattening every
// tree_structure into a node arena.
func (j *JSONModel) ToModel() (*Model, error) {
	model := NewModel()
	model.Name = j.Name
	model.Version = j.Version
	model.MaxFeatureIdx = j.MaxFeatureIdx
	model.AverageOutput = j.AverageOutput
	model.FeatureNames = j.FeatureNames
	if j.NumClass > 0 {
		model.NumClass = j.NumClass
	}
	if j.NumTreePerIteration > 0 {
		model.NumTreePerIteration = j.NumTreePerIteration
	}

	model.Objective, model.ObjectiveParams = parseObjective(j.Objective)
	if s, ok := model.ObjectiveParams["sigmoid"]; ok {
		sigmoid, err := strconv.ParseFloat(s, 64)
		if err != nil || sigmoid <= 0 {
			return nil, errors.NewValidationError("objective.sigmoid", "must be a positive number", s)
		}
		model.Sigmoid = sigmoid
	}

	model.Trees = make([]Tree, 0, len(j.TreeInfo))
	for i := range j.TreeInfo {
		info := &j.TreeInfo[i]
		tree, err := flattenTree(i, info.TreeStructure)
		if err != nil {
			return nil, err
		}
		tree.TreeIndex = info.TreeIndex
		tree.NumLeaves = info.NumLeaves
		tree.NumCat = info.NumCat
		tree.ShrinkageRate = info.Shrinkage
		model.Trees = append(model.Trees, tree)
	}

	return model, nil
}

// parseObjective splits "binary sigmoid:1" into the objective and its parameters.
func parseObjective(obj string) (ObjectiveType, map[string]string) {
	params := make(map[string]string)
	parts := strings.Fields(obj)
	if len(parts) == 0 {
		return RegressionL2, params
	}
	for _, p := range parts[1:] {
		if k, v, ok := strings.Cut(p, ":"); ok {
			params[k] = v
		}
	}
	switch parts[0] {
	case "regression_l2", "l2", "mean_squared_error", "mse":
		return RegressionL2, params
	case "softmax":
		return MulticlassSoftmax, params
	case "xentropy":
		return BinaryCrossEntropy, params
	default:
		return ObjectiveType(parts[0]), params
	}
}

// flattenTree converts a nested tree_structure into an arena in pre-order,
// so the root is node 0 and a left subtree precedes its right sibling.
func flattenTree(treeIndex int, root *JSONTreeNode) (Tree, error) {
	if root == nil {
		return Tree{}, errors.NewMalformedTreeError(treeIndex, "root", "tree_structure is missing")
	}

	type frame struct {
		node   *JSONTreeNode
		parent int
		left   bool
		path   string
	}

	var nodes []Node
	stack := []frame{{node: root, parent: -1, path: "root"}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := len(nodes)
		node := Node{NodeID: id, ParentID: f.parent, LeftChild: -1, RightChild: -1}

		switch {
		case f.node.isLeaf():
			node.NodeType = LeafNode
			if f.node.LeafIndex != nil {
				node.LeafIndex = *f.node.LeafIndex
			}
			if f.node.LeafValue != nil {
				node.LeafValue = *f.node.LeafValue
			}
			node.LeafCount = f.node.LeafCount
		case f.node.isSplit():
			if err := fillSplit(&node, f.node); err != nil {
				return Tree{}, errors.NewMalformedTreeError(treeIndex, f.path, err.Error())
			}
			// Right is pushed first so the left subtree is numbered first.
			stack = append(stack,
				frame{node: f.node.RightChild, parent: id, left: false, path: f.path + ".right"},
				frame{node: f.node.LeftChild, parent: id, left: true, path: f.path + ".left"},
			)
		default:
			return Tree{}, errors.NewMalformedTreeError(treeIndex, f.path, "node has neither leaf fields nor split_feature, threshold and both children")
		}

		nodes = append(nodes, node)
		if f.parent >= 0 {
			if f.left {
				nodes[f.parent].LeftChild = id
			} else {
				nodes[f.parent].RightChild = id
			}
		}
	}

	return Tree{Nodes: nodes}, nil
}

func fillSplit(node *Node, rec *JSONTreeNode) error {
	node.SplitFeature = *rec.SplitFeature
	node.DecisionType = rec.DecisionType
	node.DefaultLeft = rec.DefaultLeft
	node.MissingType = rec.MissingType
	node.Gain = rec.SplitGain
	node.InternalValue = rec.InternalValue
	node.InternalCount = rec.InternalCount
	if node.MissingType == "" {
		node.MissingType = MissingNone
	}

	if rec.DecisionType == "==" {
		node.NodeType = CategoricalNode
		s, ok := rec.Threshold.(string)
		if !ok {
			s = strconv.FormatFloat(toFloat(rec.Threshold), 'f', -1, 64)
		}
		for _, part := range strings.Split(s, "||") {
			cat, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return errors.Newf("invalid categorical threshold %q", s)
			}
			node.Categories = append(node.Categories, cat)
		}
		return nil
	}

	node.NodeType = NumericalNode
	switch v := rec.Threshold.(type) {
	case float64:
		node.Threshold = v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Newf("invalid numerical threshold %q", v)
		}
		node.Threshold = f
	default:
		return errors.Newf("invalid threshold of type %T", rec.Threshold)
	}
	return nil
}

func toFloat(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
