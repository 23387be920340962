package parser

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Builder converts tree-sitter parse trees to the owned Node representation
type Builder struct {
	source []byte
}

// NewBuilder creates a new builder over the given source
func NewBuilder(source []byte) *Builder {
	return &Builder{
		source: source,
	}
}

type buildFrame struct {
	ts   *sitter.Node
	node *Node
}

// Build converts the tree rooted at rootNode. Only named tree-sitter nodes
// become Nodes; punctuation and keywords are dropped. The conversion uses an
// explicit stack so deeply chained expressions cannot exhaust the call stack.
func (b *Builder) Build(rootNode *sitter.Node) (*Node, error) {
	if rootNode == nil {
		return nil, fmt.Errorf("root node is nil")
	}

	root := b.newNode(rootNode)
	stack := []buildFrame{{ts: rootNode, node: root}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		count := int(frame.ts.ChildCount())
		for i := 0; i < count; i++ {
			child := frame.ts.Child(i)
			if child == nil || !child.IsNamed() {
				continue
			}
			node := b.newNode(child)
			frame.node.AddChild(frame.ts.FieldNameForChild(i), node)
			stack = append(stack, buildFrame{ts: child, node: node})
		}
	}

	return root, nil
}

func (b *Builder) newNode(ts *sitter.Node) *Node {
	kind := NodeKind(ts.Type())

	var pos *Position
	// The compilation unit carries no position of its own
	if kind != KindProgram {
		start := ts.StartPoint()
		pos = At(int(start.Row)+1, int(start.Column)+1)
	}

	node := NewNode(kind, pos)
	end := ts.EndPoint()
	node.End = Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1}

	if ts.NamedChildCount() == 0 {
		node.Text = ts.Content(b.source)
	}
	return node
}
