// Package parser wraps tree-sitter grammars for the languages the analyzer
// understands and provides AST traversal helpers shared by the analyzers.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported programming language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJSX        Language = "jsx"
	LangJava       Language = "java"
	LangCpp        Language = "cpp"
	LangRust       Language = "rust"
	LangUnknown    Language = "unknown"
)

// Canonical folds grammar variants into the language name reported to
// consumers (tsx is parsed with its own grammar but is TypeScript; jsx
// is JavaScript).
func (l Language) Canonical() Language {
	switch l {
	case LangTSX:
		return LangTypeScript
	case LangJSX:
		return LangJavaScript
	default:
		return l
	}
}

// DetectLanguage determines the language from a file path. Pure function of
// the extension, case-insensitive, never fails: unknown extensions return
// LangUnknown and the caller excludes the file.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw", ".pyi":
		return LangPython
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	case ".jsx":
		return LangJSX
	case ".ts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".java":
		return LangJava
	case ".cpp", ".cc", ".cxx", ".h", ".hpp", ".hxx":
		return LangCpp
	case ".rs":
		return LangRust
	default:
		return LangUnknown
	}
}

// GetTreeSitterLanguage returns the tree-sitter grammar for a Language.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangPython:
		return python.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX, LangJSX:
		// The TSX grammar handles JSX syntax as well.
		return tsx.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangCpp:
		return cpp.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// Parser wraps tree-sitter for multi-language parsing. Not safe for
// concurrent use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("unsupported language for file: %s", path)
	}

	return p.Parse(ctx, source, lang, path)
}

// Parse parses source code with a specified language. The context bounds the
// parse; a deadline abandons only this file.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits AST nodes. Returning false stops
// descent into the node's children.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// TypedNodeVisitor visits AST nodes with pre-cached node type to avoid CGO overhead.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// Walk traverses the AST calling visitor for each node.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node, source) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// WalkTyped traverses the AST with cached node types to reduce CGO overhead.
func WalkTyped(node *sitter.Node, source []byte, visitor TypedNodeVisitor) {
	if node == nil {
		return
	}
	nodeType := node.Type()
	if !visitor(node, nodeType, source) {
		return
	}
	for i := range int(node.ChildCount()) {
		WalkTyped(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// FunctionNodeTypes returns the AST node types that define functions or
// methods in each language.
func FunctionNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"function_definition"}
	case LangJavaScript, LangTypeScript, LangTSX, LangJSX:
		return []string{"function_declaration", "function_expression", "generator_function_declaration", "arrow_function", "method_definition"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangCpp:
		return []string{"function_definition"}
	case LangRust:
		return []string{"function_item"}
	default:
		return nil
	}
}

// ClassNodeTypes returns the AST node types that define classes or
// class-like containers in each language.
func ClassNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"class_definition"}
	case LangJavaScript, LangTypeScript, LangTSX, LangJSX:
		return []string{"class_declaration"}
	case LangJava:
		return []string{"class_declaration", "interface_declaration", "enum_declaration"}
	case LangCpp:
		return []string{"class_specifier", "struct_specifier"}
	case LangRust:
		return []string{"struct_item", "impl_item"}
	default:
		return nil
	}
}

// CallNodeTypes returns the AST node types for call sites in each language.
func CallNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"call"}
	case LangJavaScript, LangTypeScript, LangTSX, LangJSX:
		return []string{"call_expression", "new_expression"}
	case LangJava:
		return []string{"method_invocation", "object_creation_expression"}
	case LangCpp:
		return []string{"call_expression"}
	case LangRust:
		return []string{"call_expression", "macro_invocation"}
	default:
		return nil
	}
}

// ImportNodeTypes returns the AST node types for import statements.
func ImportNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"import_statement", "import_from_statement"}
	case LangJavaScript, LangTypeScript, LangTSX, LangJSX:
		return []string{"import_statement"}
	case LangJava:
		return []string{"import_declaration"}
	case LangCpp:
		return []string{"preproc_include"}
	case LangRust:
		return []string{"use_declaration"}
	default:
		return nil
	}
}
