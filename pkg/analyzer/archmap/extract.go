package archmap

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codelantern/lantern/pkg/analyzer/complexity"
	"github.com/codelantern/lantern/pkg/parser"
)

// extractFile builds the structural record for one parsed file. Calls are
// left as raw bare names; the resolver rewrites them in pass 2.
func extractFile(res *parser.ParseResult, relPath string) FileRecord {
	lang := res.Language
	source := res.Source
	root := res.Tree.RootNode()

	record := FileRecord{
		FilePath:  relPath,
		Language:  string(lang.Canonical()),
		Imports:   extractImports(root, source, lang),
		Functions: []FunctionRecord{},
		Classes:   []ClassRecord{},
	}
	record.TotalLines = bytes.Count(source, []byte("\n")) + 1

	classes := collectClasses(root, source, lang)
	fnNodes := collectFunctionNodes(root, source, lang)

	usedIDs := make(map[string]int)
	for _, fn := range fnNodes {
		name := functionName(fn, source, lang)
		if name == "" {
			continue // anonymous; nothing to key or resolve against
		}

		owner := enclosingClass(classes, fn)
		rec := FunctionRecord{
			FunctionName: qualifyName(relPath, name, owner, usedIDs),
			Name:         name,
			Line:         int(fn.StartPoint().Row) + 1,
			EndLine:      int(fn.EndPoint().Row) + 1,
			Args:         extractParameters(fn, source, lang),
			ReturnType:   extractReturnType(fn, source, lang),
			Complexity:   complexity.Score(fn.ChildByFieldName("body"), source, lang),
			Calls:        extractCalls(fn.ChildByFieldName("body"), source, lang),
		}
		record.Functions = append(record.Functions, rec)

		if owner != nil {
			owner.methods = append(owner.methods, name)
		}
	}

	sort.SliceStable(record.Functions, func(i, j int) bool {
		return record.Functions[i].Line < record.Functions[j].Line
	})
	record.TotalFunctions = len(record.Functions)

	for _, c := range classes {
		record.Classes = append(record.Classes, ClassRecord{
			Name:    c.name,
			Line:    c.line,
			Methods: c.methods,
		})
	}
	sort.SliceStable(record.Classes, func(i, j int) bool {
		return record.Classes[i].Line < record.Classes[j].Line
	})

	return record
}

// qualifyName builds the deterministic qualified id for a function. The
// first definition of a name claims "{path}-{name}"; a colliding method
// falls back to its class-qualified form, and anything still colliding gets
// an ordinal suffix rather than silently overwriting.
func qualifyName(relPath, name string, owner *classInfo, used map[string]int) string {
	id := relPath + "-" + name
	if used[id] > 0 && owner != nil {
		id = relPath + "-" + owner.name + "." + name
	}
	used[id]++
	if n := used[id]; n > 1 {
		return fmt.Sprintf("%s#%d", id, n)
	}
	return id
}

// classInfo tracks a class definition during extraction.
type classInfo struct {
	name    string
	line    int
	start   uint32
	end     uint32
	methods []string
}

// collectClasses finds class-like containers in source order.
func collectClasses(root *sitter.Node, source []byte, lang parser.Language) []*classInfo {
	classTypes := makeSet(parser.ClassNodeTypes(lang))

	var classes []*classInfo
	parser.WalkTyped(root, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if !classTypes[nodeType] {
			return true
		}
		name := n.ChildByFieldName("name")
		if name == nil {
			// Rust impl blocks name the type through the "type" field.
			name = n.ChildByFieldName("type")
		}
		if name == nil {
			return true
		}
		classes = append(classes, &classInfo{
			name:  parser.GetNodeText(name, src),
			line:  int(n.StartPoint().Row) + 1,
			start: n.StartByte(),
			end:   n.EndByte(),
		})
		return true
	})
	return classes
}

// enclosingClass returns the innermost class containing the node, or nil.
func enclosingClass(classes []*classInfo, node *sitter.Node) *classInfo {
	pos := node.StartByte()
	var best *classInfo
	for _, c := range classes {
		if c.start < pos && pos < c.end {
			if best == nil || c.start > best.start {
				best = c
			}
		}
	}
	return best
}

// collectFunctionNodes finds every function definition node, nested ones
// included; each becomes its own record.
func collectFunctionNodes(root *sitter.Node, source []byte, lang parser.Language) []*sitter.Node {
	fnTypes := makeSet(parser.FunctionNodeTypes(lang))

	var nodes []*sitter.Node
	parser.WalkTyped(root, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if fnTypes[nodeType] {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

// functionName extracts the declared name of a function node. Anonymous
// functions borrow the name of the variable or property they are assigned
// to; if there is none the function has no name and is dropped.
func functionName(node *sitter.Node, source []byte, lang parser.Language) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return parser.GetNodeText(name, source)
	}

	switch lang {
	case parser.LangCpp:
		return cppDeclaratorName(node, source)
	case parser.LangJavaScript, parser.LangTypeScript, parser.LangTSX, parser.LangJSX:
		parent := node.Parent()
		if parent == nil {
			return ""
		}
		switch parent.Type() {
		case "variable_declarator", "public_field_definition", "pair":
			if name := parent.ChildByFieldName("name"); name != nil {
				return parser.GetNodeText(name, source)
			}
			if key := parent.ChildByFieldName("key"); key != nil {
				return parser.GetNodeText(key, source)
			}
		case "assignment_expression":
			if left := parent.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
				return parser.GetNodeText(left, source)
			}
		}
	}
	return ""
}

// cppDeclaratorName descends through declarator wrappers (pointers,
// references) to the declared identifier.
func cppDeclaratorName(node *sitter.Node, source []byte) string {
	decl := node.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Type() {
		case "identifier", "field_identifier", "destructor_name", "operator_name":
			return parser.GetNodeText(decl, source)
		case "qualified_identifier":
			if name := decl.ChildByFieldName("name"); name != nil {
				return parser.GetNodeText(name, source)
			}
			return parser.GetNodeText(decl, source)
		default:
			decl = decl.ChildByFieldName("declarator")
		}
	}
	return ""
}

// extractParameters returns the parameter list as written, in order.
func extractParameters(node *sitter.Node, source []byte, lang parser.Language) []string {
	args := []string{}

	params := node.ChildByFieldName("parameters")
	if params == nil && lang == parser.LangCpp {
		// Parameters hang off the declarator, not the definition.
		decl := node.ChildByFieldName("declarator")
		for decl != nil && decl.Type() != "function_declarator" {
			decl = decl.ChildByFieldName("declarator")
		}
		if decl != nil {
			params = decl.ChildByFieldName("parameters")
		}
	}
	if params == nil {
		// Parenthesis-free arrow functions hold a single identifier.
		if p := node.ChildByFieldName("parameter"); p != nil {
			return append(args, parser.GetNodeText(p, source))
		}
		return args
	}

	for i := range int(params.NamedChildCount()) {
		param := params.NamedChild(i)
		if param.Type() == "comment" {
			continue
		}
		text := strings.TrimSpace(parser.GetNodeText(param, source))
		if text != "" {
			args = append(args, text)
		}
	}
	return args
}

// extractReturnType returns the declared return type, or "unknown" for
// languages and declarations that carry none.
func extractReturnType(node *sitter.Node, source []byte, lang parser.Language) string {
	var typeNode *sitter.Node
	switch lang {
	case parser.LangJava, parser.LangCpp:
		typeNode = node.ChildByFieldName("type")
	default:
		typeNode = node.ChildByFieldName("return_type")
	}
	if typeNode == nil {
		return "unknown"
	}

	text := parser.GetNodeText(typeNode, source)
	// TypeScript return types arrive as annotations (": Foo").
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), ":"))
	if text == "" {
		return "unknown"
	}
	return text
}

// extractCalls collects raw call-target names inside a function body,
// deduplicated and sorted. The walk stops at nested function definitions:
// their calls belong to their own records.
func extractCalls(body *sitter.Node, source []byte, lang parser.Language) []string {
	calls := []string{}
	if body == nil {
		return calls
	}

	fnTypes := makeSet(parser.FunctionNodeTypes(lang))
	callTypes := makeSet(parser.CallNodeTypes(lang))
	seen := make(map[string]bool)

	parser.WalkTyped(body, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if fnTypes[nodeType] {
			return false
		}
		if callTypes[nodeType] {
			if name := callTargetName(n, nodeType, src); name != "" && !seen[name] {
				seen[name] = true
				calls = append(calls, name)
			}
		}
		return true
	})

	sort.Strings(calls)
	return calls
}

// callTargetName extracts the bare callee name from a call node. Method
// calls on a receiver yield the method name only; receiver resolution is
// not attempted.
func callTargetName(node *sitter.Node, nodeType string, source []byte) string {
	switch nodeType {
	case "new_expression":
		if ctor := node.ChildByFieldName("constructor"); ctor != nil {
			return parser.GetNodeText(ctor, source)
		}
		return ""
	case "method_invocation":
		if name := node.ChildByFieldName("name"); name != nil {
			return parser.GetNodeText(name, source)
		}
		return ""
	case "object_creation_expression":
		if typ := node.ChildByFieldName("type"); typ != nil {
			return parser.GetNodeText(typ, source)
		}
		return ""
	case "macro_invocation":
		if macro := node.ChildByFieldName("macro"); macro != nil {
			return parser.GetNodeText(macro, source) + "!"
		}
		return ""
	}

	fn := node.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return parser.GetNodeText(fn, source)
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return parser.GetNodeText(attr, source)
		}
	case "member_expression":
		if prop := fn.ChildByFieldName("property"); prop != nil {
			return parser.GetNodeText(prop, source)
		}
	case "field_expression":
		if field := fn.ChildByFieldName("field"); field != nil {
			return parser.GetNodeText(field, source)
		}
	case "scoped_identifier", "qualified_identifier":
		if name := fn.ChildByFieldName("name"); name != nil {
			return parser.GetNodeText(name, source)
		}
	}
	return ""
}

// extractImports collects import/include targets in appearance order.
func extractImports(root *sitter.Node, source []byte, lang parser.Language) []string {
	imports := []string{}
	importTypes := makeSet(parser.ImportNodeTypes(lang))

	parser.WalkTyped(root, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if importTypes[nodeType] {
			if imp := importTarget(n, nodeType, src, lang); imp != "" {
				imports = append(imports, imp)
			}
			return true
		}
		// CommonJS requires are call expressions, not import statements.
		if lang != parser.LangPython && nodeType == "call_expression" {
			if imp := requireTarget(n, src); imp != "" {
				imports = append(imports, imp)
			}
		}
		return true
	})
	return imports
}

func importTarget(node *sitter.Node, nodeType string, source []byte, lang parser.Language) string {
	switch nodeType {
	case "import_statement":
		if lang == parser.LangPython {
			for i := range int(node.NamedChildCount()) {
				child := node.NamedChild(i)
				switch child.Type() {
				case "dotted_name", "identifier":
					return parser.GetNodeText(child, source)
				case "aliased_import":
					if name := child.ChildByFieldName("name"); name != nil {
						return parser.GetNodeText(name, source)
					}
				}
			}
			return ""
		}
		if src := node.ChildByFieldName("source"); src != nil {
			return strings.Trim(parser.GetNodeText(src, source), `"'`)
		}
	case "import_from_statement":
		if mod := node.ChildByFieldName("module_name"); mod != nil {
			return parser.GetNodeText(mod, source)
		}
	case "import_declaration":
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			if t := child.Type(); t == "scoped_identifier" || t == "identifier" {
				return parser.GetNodeText(child, source)
			}
		}
	case "preproc_include":
		if path := node.ChildByFieldName("path"); path != nil {
			return strings.Trim(parser.GetNodeText(path, source), "\"<>")
		}
	case "use_declaration":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			return parser.GetNodeText(arg, source)
		}
	}
	return ""
}

// requireTarget matches require("mod") calls and returns the module string.
func requireTarget(node *sitter.Node, source []byte) string {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || parser.GetNodeText(fn, source) != "require" {
		return ""
	}
	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return ""
	}
	return strings.Trim(parser.GetNodeText(arg, source), `"'`)
}

func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
