package dagcheck

import (
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// StatementKind tags the top-level statement shapes the checker
// distinguishes. Classification is purely syntactic; identifiers,
// arguments and types are never inspected.
type StatementKind int

// Top-level statement kinds, ordered roughly by how often they appear
// in well-behaved DAG files.
const (
	KindImport StatementKind = iota
	KindAssignment
	KindDefinition
	KindConstantExpr
	KindWith
	KindExpression
	KindFor
	KindWhile
	KindTry
	KindOther
)

// Issue is one flagged top-level statement. Line is 1-based.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

const exprMessage = "Top-level expression found. Ensure this doesn't perform I/O."

// kindNames holds the spellings used in scheduler-safety messages.
var kindNames = map[StatementKind]string{
	KindFor:   "For",
	KindWhile: "While",
	KindTry:   "Try",
}

// Check classifies every top-level statement of a parsed Python module
// and returns the flagged ones in source order. Statements nested inside
// functions, classes or with-blocks are never inspected.
func Check(root sitter.Node) []Issue {
	var issues []Issue

	for idx := range root.NamedChildCount() {
		stmt := root.NamedChild(idx)
		if stmt.IsNull() {
			continue
		}

		line := int(stmt.StartPoint().Row) + 1

		switch kind := classifyStatement(stmt); kind {
		case KindExpression:
			issues = append(issues, Issue{Line: line, Message: exprMessage})
		case KindFor, KindWhile, KindTry:
			issues = append(issues, Issue{
				Line:    line,
				Message: fmt.Sprintf("Top-level %s found. Verify this is safe for the Scheduler.", kindNames[kind]),
			})
		}
	}

	return issues
}

// classifyStatement maps a module-scope tree-sitter node to its
// StatementKind. Unknown statement types classify as KindOther; the
// checker is permissive outside its known risk patterns.
func classifyStatement(stmt sitter.Node) StatementKind {
	switch stmt.Type() {
	case "import_statement", "import_from_statement", "future_import_statement":
		return KindImport
	case "function_definition", "class_definition", "decorated_definition":
		return KindDefinition
	case "with_statement":
		// The accepted idiom for declaring a DAG via a context manager.
		return KindWith
	case "for_statement":
		return KindFor
	case "while_statement":
		return KindWhile
	case "try_statement":
		return KindTry
	case "expression_statement":
		return classifyExpression(stmt)
	default:
		return KindOther
	}
}

// classifyExpression refines a module-scope expression statement.
// Assignments and literal constants (docstrings included) are allowed;
// anything else, bare calls included, may perform I/O at import time.
func classifyExpression(stmt sitter.Node) StatementKind {
	if stmt.NamedChildCount() == 0 {
		return KindConstantExpr
	}

	value := stmt.NamedChild(0)
	if value.IsNull() {
		return KindConstantExpr
	}

	switch value.Type() {
	case "assignment", "augmented_assignment":
		return KindAssignment
	case "string", "concatenated_string":
		// f-strings evaluate their substitutions at import time, so
		// they are expressions, not constants.
		if hasInterpolation(value) {
			return KindExpression
		}

		return KindConstantExpr
	case "integer", "float", "true", "false", "none", "ellipsis":
		return KindConstantExpr
	default:
		return KindExpression
	}
}

// hasInterpolation reports whether a string node, or any string inside
// a concatenation, carries f-string interpolations.
func hasInterpolation(value sitter.Node) bool {
	for idx := range value.NamedChildCount() {
		child := value.NamedChild(idx)
		if child.IsNull() {
			continue
		}

		switch child.Type() {
		case "interpolation":
			return true
		case "string":
			if hasInterpolation(child) {
				return true
			}
		}
	}

	return false
}
