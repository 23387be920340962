// Package parser provides Java code parsing capabilities using tree-sitter.
//
// This package wraps the tree-sitter Go bindings to parse Java source code
// into an owned tree of Nodes. Each node kind declares its child slots in
// Schema, so traversal never depends on runtime inspection of node shapes.
//
// Key features:
//   - Java parsing using tree-sitter
//   - Syntax error detection (trees with errors are rejected)
//   - 1-based source positions on every node except the compilation unit
//   - Stack-driven traversal utilities
//
// Basic usage:
//
//	p := parser.New()
//	tree, err := p.Parse(ctx, []byte("class A { void f() {} }"))
//	if err != nil {
//	    // Handle parsing error
//	}
//	for _, n := range tree.Nodes() {
//	    // ...
//	}
package parser
