package analyzer

import (
	"github.com/ludo-technologies/hunkscope/internal/parser"
)

// LocalizationOutcome tells how a hunk's subtree root was chosen
type LocalizationOutcome int

const (
	// LocalizedInRange means at least one node started inside the range
	LocalizedInRange LocalizationOutcome = iota
	// LocalizedFallbackRoot means no node fell in range; the tree root was used
	LocalizedFallbackRoot
	// LocalizedUnparsed means the file has no tree; the root is nil
	LocalizedUnparsed
)

// String returns a short label for logs
func (o LocalizationOutcome) String() string {
	switch o {
	case LocalizedInRange:
		return "in-range"
	case LocalizedFallbackRoot:
		return "fallback-root"
	case LocalizedUnparsed:
		return "unparsed"
	default:
		return "unknown"
	}
}

// HunkLocalizer maps line ranges onto subtrees of one annotated file
type HunkLocalizer struct {
	index *TreeIndex
}

// NewHunkLocalizer creates a localizer for the file described by index.
// A nil index stands for a file that failed to parse.
func NewHunkLocalizer(index *TreeIndex) *HunkLocalizer {
	return &HunkLocalizer{index: index}
}

// NodesInRange returns, in breadth-first order, every node whose start line
// lies in the range. start and end may be given in either order.
func (l *HunkLocalizer) NodesInRange(start, end int) []*parser.Node {
	if l.index == nil {
		return nil
	}
	lo, hi := orderedRange(start, end)

	var nodes []*parser.Node
	for _, n := range l.index.Nodes() {
		if !n.HasPosition() {
			continue
		}
		if line := n.Line(); line >= lo && line <= hi {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Localize returns the smallest subtree enclosing every node that starts in
// the range: the LCA of all of them. With no node in range it falls back to
// the tree root; with no tree it returns nil.
func (l *HunkLocalizer) Localize(start, end int) (*parser.Node, LocalizationOutcome) {
	if l.index == nil {
		return nil, LocalizedUnparsed
	}

	nodes := l.NodesInRange(start, end)
	if len(nodes) == 0 {
		return l.index.Root(), LocalizedFallbackRoot
	}

	root := nodes[0]
	for _, n := range nodes[1:] {
		root = l.index.LCA(root, n)
		if root == nil {
			// Every collected node came from this index, so this cannot
			// happen unless the tree was mutated after annotation.
			return l.index.Root(), LocalizedFallbackRoot
		}
	}
	return root, LocalizedInRange
}

// EnclosingCallable returns the nearest method or constructor declaration at
// or above node, or nil when node is not inside one.
func (l *HunkLocalizer) EnclosingCallable(node *parser.Node) *parser.Node {
	if l.index == nil {
		return nil
	}
	for n := node; n != nil; n = l.index.Parent(n) {
		if n.IsCallable() {
			return n
		}
	}
	return nil
}

func orderedRange(start, end int) (int, int) {
	if start > end {
		return end, start
	}
	return start, end
}
