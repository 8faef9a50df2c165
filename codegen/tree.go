package codegen

import (
	"github.com/m1gwings/treedrawer/tree"

	"github.com/sarchlab/vmtrans/vm"
)

// ExpansionTree draws the expanded program: one child per source
// instruction, with the primitives of function, call and return hanging
// below their header.
func ExpansionTree(name string, steps []Step) *tree.Tree {
	root := tree.NewTree(tree.NodeString(name))

	var header *tree.Tree
	for _, step := range steps {
		if step.Inst.Origin() == vm.FromSource {
			node := root.AddChild(tree.NodeString(step.Inst.Raw))
			header = nil
			if step.Header {
				header = node
			}
			continue
		}

		parent := header
		if parent == nil {
			parent = root
		}
		parent.AddChild(tree.NodeString(step.Inst.Raw))
	}

	return root
}
