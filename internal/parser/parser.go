package parser

import (
	"context"
	"errors"
	"fmt"
	"io"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// ErrSyntax is returned when the source does not parse cleanly
var ErrSyntax = errors.New("syntax errors found in source code")

// Parser provides Java code parsing capabilities using tree-sitter.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new Parser instance with the Java grammar
func New() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return &Parser{
		parser: parser,
	}
}

// Parse parses Java source code and returns the owned tree
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	tsTree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	rootNode := tsTree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("root node is nil")
	}
	if rootNode.HasError() {
		return nil, ErrSyntax
	}

	root, err := NewBuilder(source).Build(rootNode)
	if err != nil {
		return nil, err
	}
	return NewTree(root, source), nil
}

// ParseFile parses a Java file from a reader
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Tree, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return p.Parse(ctx, source)
}
