package analyzer

import (
	"github.com/ludo-technologies/hunkscope/internal/parser"
)

// TreeIndex records parent links and depths for the nodes of one annotated
// tree. An index belongs to exactly one tree: build a fresh one per tree with
// Annotate and drop it (or Reset it) once the tree is no longer needed.
//
// All queries are safe on a nil *TreeIndex and degrade to neutral defaults
// (depth 0, distance 0, diameter 1).
type TreeIndex struct {
	tree   *parser.Tree
	parent map[*parser.Node]*parser.Node
	depth  map[*parser.Node]int
	order  []*parser.Node // breadth-first, parents before children

	diameter int // cached, 0 until computed
}

// Annotate walks every node reachable from the tree root once and records its
// parent. Returns nil for a nil tree (the file did not parse).
func Annotate(tree *parser.Tree) *TreeIndex {
	if tree == nil || tree.Root == nil {
		return nil
	}

	idx := &TreeIndex{
		tree:   tree,
		parent: make(map[*parser.Node]*parser.Node),
		depth:  make(map[*parser.Node]int),
	}

	root := tree.Root
	idx.depth[root] = 0
	queue := []*parser.Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		idx.order = append(idx.order, node)

		for _, child := range node.Children() {
			if child == nil {
				continue
			}
			if _, seen := idx.depth[child]; seen {
				continue
			}
			idx.parent[child] = node
			idx.depth[child] = idx.depth[node] + 1
			queue = append(queue, child)
		}
	}

	return idx
}

// Tree returns the tree this index was built for
func (idx *TreeIndex) Tree() *parser.Tree {
	if idx == nil {
		return nil
	}
	return idx.tree
}

// Root returns the root of the annotated tree
func (idx *TreeIndex) Root() *parser.Node {
	if idx == nil || idx.tree == nil {
		return nil
	}
	return idx.tree.Root
}

// Len returns the number of annotated nodes
func (idx *TreeIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// Nodes returns the annotated nodes, parents before children
func (idx *TreeIndex) Nodes() []*parser.Node {
	if idx == nil {
		return nil
	}
	return idx.order
}

// Contains reports whether node belongs to the annotated tree
func (idx *TreeIndex) Contains(node *parser.Node) bool {
	if idx == nil || node == nil {
		return false
	}
	_, ok := idx.depth[node]
	return ok
}

// Parent returns the parent of node, or nil for the root and foreign nodes
func (idx *TreeIndex) Parent(node *parser.Node) *parser.Node {
	if idx == nil || node == nil {
		return nil
	}
	return idx.parent[node]
}

// Reset drops every recorded link so the index can no longer answer for the
// tree it was built from.
func (idx *TreeIndex) Reset() {
	if idx == nil {
		return
	}
	idx.tree = nil
	idx.parent = make(map[*parser.Node]*parser.Node)
	idx.depth = make(map[*parser.Node]int)
	idx.order = nil
	idx.diameter = 0
}

// Depth returns the number of parent hops from node to the root. The root and
// nodes unknown to the index have depth 0.
func (idx *TreeIndex) Depth(node *parser.Node) int {
	if idx == nil || node == nil {
		return 0
	}
	return idx.depth[node]
}

// LCA returns the lowest common ancestor of u and v, or nil when they do not
// share a tree.
func (idx *TreeIndex) LCA(u, v *parser.Node) *parser.Node {
	if idx == nil || u == nil || v == nil {
		return nil
	}

	ancestors := make(map[*parser.Node]struct{})
	for x := u; x != nil; x = idx.parent[x] {
		ancestors[x] = struct{}{}
	}
	for y := v; y != nil; y = idx.parent[y] {
		if _, ok := ancestors[y]; ok {
			return y
		}
	}
	return nil
}

// Distance returns the number of edges on the path between u and v:
// depth(u) + depth(v) - 2*depth(lca(u, v)). Returns 0 when either node is nil.
func (idx *TreeIndex) Distance(u, v *parser.Node) int {
	if idx == nil || u == nil || v == nil {
		return 0
	}
	if u == v {
		return 0
	}

	d := idx.Depth(u) + idx.Depth(v)
	if w := idx.LCA(u, v); w != nil {
		d -= 2 * idx.Depth(w)
	}
	if d < 0 {
		return 0
	}
	return d
}

// Diameter returns the largest Distance between any two nodes of the tree.
// Trees with fewer than two nodes (and a nil index) report 1 so the value can
// always be used as a denominator.
//
// The value is computed with one bottom-up height pass: the longest path
// through a node joins its two tallest child subtrees, and every path has a
// unique topmost node, so the maximum over nodes equals the maximum over all
// node pairs.
func (idx *TreeIndex) Diameter() int {
	if idx == nil || len(idx.order) < 2 {
		return 1
	}
	if idx.diameter > 0 {
		return idx.diameter
	}

	height := make(map[*parser.Node]int, len(idx.order))
	best := 0
	for i := len(idx.order) - 1; i >= 0; i-- {
		node := idx.order[i]
		first, second := 0, 0
		for _, child := range node.Children() {
			if idx.parent[child] != node {
				continue
			}
			h := height[child] + 1
			if h > first {
				first, second = h, first
			} else if h > second {
				second = h
			}
		}
		height[node] = first
		if first+second > best {
			best = first + second
		}
	}

	if best == 0 {
		best = 1
	}
	idx.diameter = best
	return best
}
