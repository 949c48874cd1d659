// Package complexity computes cyclomatic complexity for function bodies.
package complexity

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codelantern/lantern/pkg/parser"
)

// Score computes the cyclomatic complexity of a function body: a base of 1
// plus one for each branching construct in the subtree. A nil body (abstract
// method, interface member) scores the minimum of 1.
func Score(body *sitter.Node, source []byte, lang parser.Language) int {
	if body == nil {
		return 1
	}
	return 1 + countDecisionPoints(body, source, lang)
}

// countDecisionPoints counts branching statements in a subtree.
func countDecisionPoints(node *sitter.Node, source []byte, lang parser.Language) int {
	decisionTypes := makeSet(decisionNodeTypes(lang))

	count := 0
	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if decisionTypes[nodeType] {
			count++
			return true
		}
		// Logical operators are decision points too. Each operator node
		// counts once, so a chain of three conditions scores two.
		if nodeType == "binary_expression" && isLogicalOperator(operatorOf(n, src)) {
			count++
		}
		return true
	})

	return count
}

// decisionNodeTypes returns the AST node types that branch control flow in
// each language. Ternaries count; else clauses do not (the matching if
// already did).
func decisionNodeTypes(lang parser.Language) []string {
	switch lang {
	case parser.LangPython:
		return []string{
			"if_statement", "elif_clause",
			"for_statement", "while_statement",
			"except_clause", "case_clause",
			"conditional_expression",
			"boolean_operator",
		}
	case parser.LangJavaScript, parser.LangTypeScript, parser.LangTSX, parser.LangJSX:
		return []string{
			"if_statement",
			"for_statement", "for_in_statement", "while_statement", "do_statement",
			"switch_case", "catch_clause",
			"ternary_expression",
		}
	case parser.LangJava:
		return []string{
			"if_statement",
			"for_statement", "enhanced_for_statement", "while_statement", "do_statement",
			"switch_block_statement_group", "switch_rule", "catch_clause",
			"ternary_expression",
		}
	case parser.LangCpp:
		return []string{
			"if_statement",
			"for_statement", "for_range_loop", "while_statement", "do_statement",
			"case_statement", "catch_clause",
			"conditional_expression",
		}
	case parser.LangRust:
		return []string{
			"if_expression",
			"for_expression", "while_expression", "loop_expression",
			"match_arm",
		}
	default:
		return nil
	}
}

// operatorOf extracts the operator token from a binary expression node.
func operatorOf(node *sitter.Node, source []byte) string {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "&&", "||", "and", "or":
			return child.Type()
		case "operator":
			return parser.GetNodeText(child, source)
		}
	}
	return ""
}

func isLogicalOperator(op string) bool {
	return op == "&&" || op == "||" || op == "and" || op == "or"
}

func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
