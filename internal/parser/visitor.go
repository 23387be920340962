package parser

// Walk visits every node reachable from root exactly once in pre-order
// (parent before child, children in slot order). A node attached under two
// parents is visited at its first position only. Returning false from fn
// skips the node's children. The traversal is stack driven.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}

	visited := make(map[*Node]bool)
	stack := []*Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[node] {
			continue
		}
		visited[node] = true

		if !fn(node) {
			continue
		}

		children := node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] != nil {
				stack = append(stack, children[i])
			}
		}
	}
}

// Collect returns every node reachable from root in pre-order
func Collect(root *Node) []*Node {
	var nodes []*Node
	Walk(root, func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// FindAll returns every node of the given kind in pre-order
func FindAll(root *Node, kind NodeKind) []*Node {
	var nodes []*Node
	Walk(root, func(n *Node) bool {
		if n.Kind == kind {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}
