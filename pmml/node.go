package pmml

// Node is one node of a TreeModel. A leaf carries Score and no children; an
// internal node has children each guarded by its own predicate.
type Node struct {
	Score           string           `xml:"score,attr,omitempty"`
	True            *True            `xml:"True"`
	SimplePredicate *SimplePredicate `xml:"SimplePredicate"`
	Nodes           []*Node          `xml:"Node"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Nodes) == 0
}

// Walk visits n and its descendants depth first, children in document order.
// Returning false from fn skips the children of that node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		for i := len(f.node.Nodes) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Nodes[i], f.depth + 1})
		}
	}
}

// CountLeaves returns the number of leaves under n.
func (n *Node) CountLeaves() int {
	count := 0
	n.Walk(func(node *Node, _ int) bool {
		if node.IsLeaf() {
			count++
		}
		return true
	})
	return count
}
