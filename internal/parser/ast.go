package parser

import "fmt"

// NodeKind is the grammar kind of a node (tree-sitter-java node type)
type NodeKind string

// Java node kinds the analyzers look at directly
const (
	KindProgram                NodeKind = "program"
	KindPackageDeclaration     NodeKind = "package_declaration"
	KindImportDeclaration      NodeKind = "import_declaration"
	KindClassDeclaration       NodeKind = "class_declaration"
	KindInterfaceDeclaration   NodeKind = "interface_declaration"
	KindEnumDeclaration        NodeKind = "enum_declaration"
	KindRecordDeclaration      NodeKind = "record_declaration"
	KindClassBody              NodeKind = "class_body"
	KindMethodDeclaration      NodeKind = "method_declaration"
	KindConstructorDeclaration NodeKind = "constructor_declaration"
	KindFieldDeclaration       NodeKind = "field_declaration"
	KindBlock                  NodeKind = "block"
	KindIdentifier             NodeKind = "identifier"
	KindScopedIdentifier       NodeKind = "scoped_identifier"
)

// Position is a 1-based source position
type Position struct {
	Line   int
	Column int
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Slot is one named group of children of a node
type Slot struct {
	Name        string
	Cardinality SlotCardinality
	Nodes       []*Node
}

// Node returns the first node held by the slot, or nil
func (s *Slot) Node() *Node {
	if s == nil || len(s.Nodes) == 0 {
		return nil
	}
	return s.Nodes[0]
}

// Node is one node of a parsed Java source tree.
// Node identity is pointer identity; nodes are never shared between trees.
type Node struct {
	Kind NodeKind

	// Pos is the start position, nil when the node carries none
	Pos *Position
	End Position

	// Slots holds the children grouped in schema order
	Slots []Slot

	// Text is the source text of leaf identifiers and literals
	Text string
}

// NewNode creates a node of the given kind with the slots its schema declares
func NewNode(kind NodeKind, pos *Position) *Node {
	return &Node{
		Kind:  kind,
		Pos:   pos,
		Slots: SlotsFor(kind),
	}
}

// At returns a position pointer, convenient for building nodes by hand
func At(line, column int) *Position {
	return &Position{Line: line, Column: column}
}

// AddChild appends child to the named slot. Unknown slot names go to the
// trailing children slot so no child is ever dropped.
func (n *Node) AddChild(slotName string, child *Node) {
	if child == nil {
		return
	}
	slot := n.slot(slotName)
	slot.Nodes = append(slot.Nodes, child)
}

// Slot returns the named slot or nil
func (n *Node) Slot(name string) *Slot {
	for i := range n.Slots {
		if n.Slots[i].Name == name {
			return &n.Slots[i]
		}
	}
	return nil
}

func (n *Node) slot(name string) *Slot {
	if name != "" {
		if s := n.Slot(name); s != nil {
			return s
		}
	}
	if s := n.Slot(ChildrenSlot); s != nil {
		return s
	}
	n.Slots = append(n.Slots, Slot{Name: ChildrenSlot, Cardinality: SlotSequence})
	return &n.Slots[len(n.Slots)-1]
}

// Children returns the children of the node in slot order
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	var children []*Node
	for _, s := range n.Slots {
		children = append(children, s.Nodes...)
	}
	return children
}

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int {
	count := 0
	for _, s := range n.Slots {
		count += len(s.Nodes)
	}
	return count
}

// HasPosition reports whether the node carries a source position
func (n *Node) HasPosition() bool {
	return n != nil && n.Pos != nil
}

// Line returns the start line, or 0 when the node has no position
func (n *Node) Line() int {
	if n == nil || n.Pos == nil {
		return 0
	}
	return n.Pos.Line
}

// Name returns the text of the node's name slot (declarations), if any
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	if named := n.Slot("name").Node(); named != nil {
		return named.Text
	}
	return ""
}

// IsCallable reports whether the node declares a method or constructor
func (n *Node) IsCallable() bool {
	return n != nil && (n.Kind == KindMethodDeclaration || n.Kind == KindConstructorDeclaration)
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	label := string(n.Kind)
	if name := n.Name(); name != "" {
		label = fmt.Sprintf("%s(%s)", n.Kind, name)
	} else if n.Text != "" {
		label = fmt.Sprintf("%s(%s)", n.Kind, n.Text)
	}
	if n.Pos != nil {
		return label + "@" + n.Pos.String()
	}
	return label
}

// Tree is the parse result for one source file
type Tree struct {
	Root   *Node
	Source []byte
}

// NewTree wraps an already built root node
func NewTree(root *Node, source []byte) *Tree {
	return &Tree{Root: root, Source: source}
}

// Nodes returns every node of the tree in pre-order
func (t *Tree) Nodes() []*Node {
	if t == nil {
		return nil
	}
	return Collect(t.Root)
}

// Size returns the number of nodes in the tree
func (t *Tree) Size() int {
	if t == nil {
		return 0
	}
	size := 0
	Walk(t.Root, func(*Node) bool {
		size++
		return true
	})
	return size
}
