package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/hunkscope/internal/parser"
)

const indexSampleJava = `package org.example.core;

import java.util.List;

public class Calculator {
    private int total;

    public int add(int a, int b) {
        int sum = a + b;
        total += sum;
        return sum;
    }

    public int reset() {
        int old = total;
        total = 0;
        return old;
    }

    Calculator() {
        this.total = 0;
    }
}
`

// smallTree builds
//
//	     root
//	    /    \
//	   a      b
//	  / \      \
//	 c   d      e
//	            |
//	            f
func smallTree() (*parser.Tree, map[string]*parser.Node) {
	nodes := map[string]*parser.Node{
		"root": parser.NewNode(parser.KindProgram, nil),
	}
	for i, name := range []string{"a", "b", "c", "d", "e", "f"} {
		nodes[name] = parser.NewNode(parser.NodeKind(name), parser.At(i+1, 1))
	}
	nodes["root"].AddChild("", nodes["a"])
	nodes["root"].AddChild("", nodes["b"])
	nodes["a"].AddChild("", nodes["c"])
	nodes["a"].AddChild("", nodes["d"])
	nodes["b"].AddChild("", nodes["e"])
	nodes["e"].AddChild("", nodes["f"])
	return parser.NewTree(nodes["root"], nil), nodes
}

func parseSample(t *testing.T, source string) *parser.Tree {
	t.Helper()
	tree, err := parser.New().Parse(context.Background(), []byte(source))
	require.NoError(t, err)
	return tree
}

// exhaustiveDiameter is the O(n^2) definition of the diameter
func exhaustiveDiameter(idx *TreeIndex) int {
	nodes := idx.Nodes()
	best := 0
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if d := idx.Distance(nodes[i], nodes[j]); d > best {
				best = d
			}
		}
	}
	if best == 0 {
		return 1
	}
	return best
}

func TestAnnotate(t *testing.T) {
	tree, n := smallTree()
	idx := Annotate(tree)
	require.NotNil(t, idx)

	assert.Equal(t, 7, idx.Len())
	assert.Equal(t, n["root"], idx.Root())
	assert.Equal(t, tree, idx.Tree())
	assert.Nil(t, idx.Parent(n["root"]))
	assert.Equal(t, n["a"], idx.Parent(n["d"]))
	assert.Equal(t, n["e"], idx.Parent(n["f"]))

	// parents precede children
	pos := make(map[*parser.Node]int)
	for i, node := range idx.Nodes() {
		pos[node] = i
	}
	for _, node := range idx.Nodes() {
		if p := idx.Parent(node); p != nil {
			assert.Less(t, pos[p], pos[node])
		}
	}
}

func TestAnnotate_NilTree(t *testing.T) {
	assert.Nil(t, Annotate(nil))
	assert.Nil(t, Annotate(&parser.Tree{}))
}

func TestTreeIndex_Depth(t *testing.T) {
	tree, n := smallTree()
	idx := Annotate(tree)

	tests := []struct {
		node string
		want int
	}{
		{"root", 0},
		{"a", 1},
		{"b", 1},
		{"c", 2},
		{"e", 2},
		{"f", 3},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Depth(n[tt.node]))
		})
	}

	foreign := parser.NewNode("x", parser.At(1, 1))
	assert.Equal(t, 0, idx.Depth(foreign))
	assert.Equal(t, 0, idx.Depth(nil))
}

func TestTreeIndex_LCA(t *testing.T) {
	tree, n := smallTree()
	idx := Annotate(tree)

	tests := []struct {
		u, v string
		want string
	}{
		{"c", "d", "a"},
		{"c", "f", "root"},
		{"e", "f", "e"},
		{"f", "e", "e"},
		{"a", "a", "a"},
		{"d", "root", "root"},
	}
	for _, tt := range tests {
		t.Run(tt.u+"-"+tt.v, func(t *testing.T) {
			assert.Equal(t, n[tt.want], idx.LCA(n[tt.u], n[tt.v]))
		})
	}

	other, _ := smallTree()
	otherIdx := Annotate(other)
	assert.Nil(t, idx.LCA(n["c"], otherIdx.Root()), "nodes of different trees share no ancestor")
	assert.Nil(t, idx.LCA(nil, n["c"]))
}

func TestTreeIndex_Distance(t *testing.T) {
	tree, n := smallTree()
	idx := Annotate(tree)

	tests := []struct {
		u, v string
		want int
	}{
		{"c", "c", 0},
		{"c", "d", 2},
		{"a", "c", 1},
		{"c", "f", 5},
		{"root", "f", 3},
		{"d", "b", 3},
	}
	for _, tt := range tests {
		t.Run(tt.u+"-"+tt.v, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Distance(n[tt.u], n[tt.v]))
		})
	}

	assert.Equal(t, 0, idx.Distance(nil, n["c"]))
	assert.Equal(t, 0, idx.Distance(n["c"], nil))
}

func TestTreeIndex_MetricProperties(t *testing.T) {
	idx := Annotate(parseSample(t, indexSampleJava))
	require.NotNil(t, idx)
	nodes := idx.Nodes()
	require.Greater(t, len(nodes), 20)

	// keep the cubic triangle check bounded
	if len(nodes) > 60 {
		nodes = nodes[:60]
	}

	for _, u := range nodes {
		assert.Equal(t, 0, idx.Distance(u, u))
		for _, v := range nodes {
			d := idx.Distance(u, v)
			assert.GreaterOrEqual(t, d, 0)
			assert.Equal(t, d, idx.Distance(v, u), "distance must be symmetric")

			w := idx.LCA(u, v)
			require.NotNil(t, w)
			assert.Equal(t, d, idx.Distance(u, w)+idx.Distance(w, v), "path must pass through the LCA")
		}
	}

	for _, u := range nodes {
		for _, v := range nodes {
			for _, w := range nodes {
				assert.LessOrEqual(t, idx.Distance(u, w), idx.Distance(u, v)+idx.Distance(v, w))
			}
		}
	}
}

func TestTreeIndex_Diameter(t *testing.T) {
	t.Run("small tree", func(t *testing.T) {
		tree, _ := smallTree()
		idx := Annotate(tree)
		// c -> a -> root -> b -> e -> f
		assert.Equal(t, 5, idx.Diameter())
		assert.Equal(t, exhaustiveDiameter(idx), idx.Diameter())
	})

	t.Run("parsed source", func(t *testing.T) {
		idx := Annotate(parseSample(t, indexSampleJava))
		assert.Equal(t, exhaustiveDiameter(idx), idx.Diameter())
	})

	t.Run("single node", func(t *testing.T) {
		idx := Annotate(parser.NewTree(parser.NewNode(parser.KindProgram, nil), nil))
		assert.Equal(t, 1, idx.Len())
		assert.Equal(t, 1, idx.Diameter())
	})

	t.Run("two nodes", func(t *testing.T) {
		root := parser.NewNode(parser.KindProgram, nil)
		root.AddChild("", parser.NewNode("a", parser.At(1, 1)))
		idx := Annotate(parser.NewTree(root, nil))
		assert.Equal(t, 1, idx.Diameter())
	})

	t.Run("deep path through root", func(t *testing.T) {
		root := parser.NewNode(parser.KindProgram, nil)
		for _, depth := range []int{4, 7} {
			cur := root
			for i := 0; i < depth; i++ {
				next := parser.NewNode(parser.NodeKind(fmt.Sprintf("n%d_%d", depth, i)), parser.At(i+1, 1))
				cur.AddChild("", next)
				cur = next
			}
		}
		idx := Annotate(parser.NewTree(root, nil))
		assert.Equal(t, 11, idx.Diameter())
		assert.Equal(t, exhaustiveDiameter(idx), idx.Diameter())
	})

	t.Run("cached value is stable", func(t *testing.T) {
		tree, _ := smallTree()
		idx := Annotate(tree)
		first := idx.Diameter()
		assert.Equal(t, first, idx.Diameter())
	})
}

func TestTreeIndex_NilIndex(t *testing.T) {
	var idx *TreeIndex
	node := parser.NewNode("a", parser.At(1, 1))

	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Root())
	assert.Nil(t, idx.Tree())
	assert.Nil(t, idx.Nodes())
	assert.Nil(t, idx.Parent(node))
	assert.False(t, idx.Contains(node))
	assert.Equal(t, 0, idx.Depth(node))
	assert.Nil(t, idx.LCA(node, node))
	assert.Equal(t, 0, idx.Distance(node, node))
	assert.Equal(t, 1, idx.Diameter())
	idx.Reset()
}

func TestTreeIndex_IndependentPerTree(t *testing.T) {
	treeA, a := smallTree()
	treeB, b := smallTree()
	idxA := Annotate(treeA)
	idxB := Annotate(treeB)

	assert.True(t, idxA.Contains(a["f"]))
	assert.False(t, idxA.Contains(b["f"]))
	assert.True(t, idxB.Contains(b["f"]))

	idxA.Reset()
	assert.False(t, idxA.Contains(a["f"]))
	assert.Equal(t, 0, idxA.Len())
	assert.True(t, idxB.Contains(b["f"]), "resetting one index leaves others intact")
	assert.Equal(t, 5, idxB.Diameter())
}

func TestAnnotate_Idempotent(t *testing.T) {
	tree := parseSample(t, indexSampleJava)
	first := Annotate(tree)
	second := Annotate(tree)

	require.Equal(t, first.Len(), second.Len())
	for _, node := range first.Nodes() {
		assert.Equal(t, first.Depth(node), second.Depth(node))
		assert.Equal(t, first.Parent(node), second.Parent(node))
	}
	assert.Equal(t, first.Diameter(), second.Diameter())
}
