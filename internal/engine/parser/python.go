package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor collects module-scope imports and version pins. Function
// and class bodies are not visited; if/try/with blocks at module level are.
type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "python",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":        e.extractImport,
		"import_from_statement":   e.extractFromImport,
		"future_import_statement": skipNode,
		"function_definition":     skipNode,
		"class_definition":        skipNode,
		"call":                    e.extractVersionPin,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func skipNode(*ExtractionContext, *sitter.Node) bool {
	return true
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for _, child := range ctx.FieldChildren(node, "name") {
		imp := Import{Location: ctx.Location(child)}
		switch child.Kind() {
		case "dotted_name":
			imp.Module = compactDotted(ctx.Text(child))
		case "aliased_import":
			imp.Module = compactDotted(ctx.Text(child.ChildByFieldName("name")))
			imp.Alias = ctx.Text(child.ChildByFieldName("alias"))
		default:
			continue
		}
		imp.RawImport = imp.Module
		ctx.File.Imports = append(ctx.File.Imports, imp)
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return true
	}

	raw := compactDotted(ctx.Text(moduleNode))
	imp := Import{
		Module:    raw,
		RawImport: raw,
		IsFrom:    true,
		Location:  ctx.Location(node),
	}
	if moduleNode.Kind() == "relative_import" {
		imp.IsRelative = true
		imp.Module = strings.TrimLeft(raw, ".")
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "wildcard_import" {
			imp.IsWildcard = true
		}
	}

	for _, child := range ctx.FieldChildren(node, "name") {
		switch child.Kind() {
		case "dotted_name":
			imp.Items = append(imp.Items, ImportItem{Name: compactDotted(ctx.Text(child))})
		case "aliased_import":
			imp.Items = append(imp.Items, ImportItem{
				Name:  compactDotted(ctx.Text(child.ChildByFieldName("name"))),
				Alias: ctx.Text(child.ChildByFieldName("alias")),
			})
		}
	}

	ctx.File.Imports = append(ctx.File.Imports, imp)
	return true
}

// extractVersionPin records require_version("Ns", "1.0") and
// require_version(namespace="Ns", version="1.0").
func (e *PythonExtractor) extractVersionPin(ctx *ExtractionContext, node *sitter.Node) bool {
	callee := compactDotted(ctx.Text(node.ChildByFieldName("function")))
	if !bindsRequireVersion(ctx.File.Imports, callee) {
		return false
	}
	args := node.ChildByFieldName("arguments")
	if args == nil || args.Kind() != "argument_list" {
		return false
	}

	var positional []string
	keywords := make(map[string]string)
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		switch arg.Kind() {
		case "comment":
			continue
		case "keyword_argument":
			value, ok := stringLiteral(ctx, arg.ChildByFieldName("value"))
			if !ok {
				return false
			}
			keywords[ctx.Text(arg.ChildByFieldName("name"))] = value
		default:
			value, ok := stringLiteral(ctx, arg)
			if !ok {
				return false
			}
			positional = append(positional, value)
		}
	}

	pin := VersionPin{Callee: callee, Location: ctx.Location(node)}
	switch len(positional) {
	case 2:
		pin.Namespace, pin.Version = positional[0], positional[1]
	case 1:
		pin.Namespace, pin.Version = positional[0], keywords["version"]
	case 0:
		pin.Namespace, pin.Version = keywords["namespace"], keywords["version"]
	default:
		return false
	}
	if pin.Namespace == "" || pin.Version == "" {
		return false
	}
	ctx.File.VersionPins = append(ctx.File.VersionPins, pin)
	return true
}

// bindsRequireVersion reports whether callee names gi.require_version
// through the imports seen so far: "import gi [as g]" followed by
// "g.require_version", or "from gi import require_version [as r]".
func bindsRequireVersion(imports []Import, callee string) bool {
	head, name, dotted := strings.Cut(callee, ".")
	for _, imp := range imports {
		if imp.IsRelative {
			continue
		}
		if !dotted {
			if !imp.IsFrom || imp.Module != "gi" {
				continue
			}
			for _, item := range imp.Items {
				if item.Name == "require_version" && item.LocalName() == callee {
					return true
				}
			}
			continue
		}
		if name != "require_version" || imp.IsFrom {
			continue
		}
		switch {
		case imp.Alias != "":
			if imp.Alias == head && imp.Module == "gi" {
				return true
			}
		case imp.Module == "gi" || strings.HasPrefix(imp.Module, "gi."):
			if head == "gi" {
				return true
			}
		}
	}
	return false
}

// stringLiteral returns the value of a plain (non-interpolated) string.
func stringLiteral(ctx *ExtractionContext, node *sitter.Node) (string, bool) {
	if node == nil || node.Kind() != "string" {
		return "", false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.Child(i).Kind() == "interpolation" {
			return "", false
		}
	}
	text := strings.TrimLeft(ctx.Text(node), "rRbBuU")
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if len(text) >= 2*len(quote) && strings.HasPrefix(text, quote) && strings.HasSuffix(text, quote) {
			return text[len(quote) : len(text)-len(quote)], true
		}
	}
	return "", false
}

// compactDotted drops the whitespace and line continuations Python allows
// between the segments of a dotted name.
func compactDotted(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\\':
			return -1
		}
		return r
	}, value)
}
