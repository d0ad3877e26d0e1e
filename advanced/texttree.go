package advanced

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// TreeString renders the query DAG as an ascii tree, for debugging small
// cases. Because the structure is a DAG, shared subtrees would otherwise print
// repeatedly; a node that has already been printed shows up as its bare handle
// with an ellipsis.
func (tr *Trapezoidation) TreeString() string {
	tree := treeprint.NewWithRoot(tr.nodeLabel(tr.Root))
	seen := map[Idx[QueryNode]]struct{}{tr.Root: {}}
	tr.addTreeChildren(tree, tr.Root, seen)
	return tree.String()
}

func (tr *Trapezoidation) addTreeChildren(tree treeprint.Tree, qi Idx[QueryNode], seen map[Idx[QueryNode]]struct{}) {
	for _, child := range tr.Nodes.At(qi).ChildNodes() {
		if _, ok := seen[child]; ok {
			tree.AddNode(fmt.Sprintf("%s …", child.String()))
			continue
		}
		seen[child] = struct{}{}
		if _, isSink := tr.Nodes.At(child).Inner.(SinkNode); isSink {
			tree.AddNode(tr.nodeLabel(child))
			continue
		}
		branch := tree.AddBranch(tr.nodeLabel(child))
		tr.addTreeChildren(branch, child, seen)
	}
}

func (tr *Trapezoidation) nodeLabel(qi Idx[QueryNode]) string {
	switch node := tr.Nodes.At(qi).Inner.(type) {
	case SinkNode:
		return fmt.Sprintf("%s ▸ %s", qi.String(), node.Trapezoid.String())
	case YNode:
		return fmt.Sprintf("%s y(%g, %g)", qi.String(), node.Key.X, node.Key.Y)
	case XNode:
		return fmt.Sprintf("%s x(%s)", qi.String(), tr.Segments.At(node.Key).String())
	}
	return qi.String()
}
