// Package dagcheck classifies top-level statements of Python DAG files,
// flagging module-level code that may perform I/O or heavy computation
// every time the scheduler re-parses the file.
package dagcheck

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parser operations.
var (
	errNoRootNode = errors.New("parser: no root node")
)

// ParseError describes source text rejected by the Python grammar.
// The line is 1-based and points at the first invalid construct.
type ParseError struct {
	Line int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid syntax at line %d", e.Line)
}

// Parser wraps a tree-sitter parser configured for the Python grammar.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	tsParser *sitter.Parser
}

// NewParser creates a Parser backed by the embedded Python grammar.
func NewParser() *Parser {
	tsParser := sitter.NewParser()
	tsParser.SetLanguage(sitter.NewLanguage(python.GetLanguage()))

	return &Parser{tsParser: tsParser}
}

// Parse parses Python source into a syntax tree. The caller owns the
// returned tree and must Close it. Source that does not conform to the
// grammar yields a *ParseError.
func (p *Parser) Parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	tree, err := p.tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	if root.HasError() {
		line := firstSyntaxErrorLine(root)
		tree.Close()

		return nil, &ParseError{Line: line}
	}

	return tree, nil
}

// Check parses content and classifies its top-level statements in one
// step, releasing the tree before returning.
func (p *Parser) Check(ctx context.Context, content []byte) ([]Issue, error) {
	tree, err := p.Parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return Check(tree.RootNode()), nil
}

// firstSyntaxErrorLine locates the first ERROR or missing node in the
// tree and returns its 1-based line. Subtrees without errors are pruned.
func firstSyntaxErrorLine(tsNode sitter.Node) int {
	if tsNode.Type() == "ERROR" || tsNode.IsMissing() {
		return int(tsNode.StartPoint().Row) + 1
	}

	for idx := range tsNode.ChildCount() {
		child := tsNode.Child(idx)
		if child.IsNull() || !child.HasError() {
			continue
		}

		return firstSyntaxErrorLine(child)
	}

	return int(tsNode.StartPoint().Row) + 1
}
