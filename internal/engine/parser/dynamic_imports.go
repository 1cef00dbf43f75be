package parser

import (
	"strings"
)

type ImportStyle int

const (
	// StyleWholeNamespace is "from <root> import A, B": each name is a namespace.
	StyleWholeNamespace ImportStyle = iota
	// StyleSelectedSymbols is "from <root>.A import X": names live inside A.
	StyleSelectedSymbols
)

func (s ImportStyle) String() string {
	switch s {
	case StyleWholeNamespace:
		return "whole-namespace"
	case StyleSelectedSymbols:
		return "selected-symbols"
	default:
		return "unknown"
	}
}

// DynamicImport ties one namespace to the statement that imports it.
type DynamicImport struct {
	File      string
	Namespace string
	Style     ImportStyle
	Line      int
	Alias     string   // local binding of a whole-namespace import
	Names     []string // symbols selected from the namespace
	Version   string   // pinned by require_version, if any
	PinLine   int      // line of the require_version call
}

// DynamicImports lists the imports of file that go through root, in source
// order. Relative imports, plain "import" statements and "from <root> import *"
// name no namespace and are skipped.
func DynamicImports(file *File, root string) []DynamicImport {
	if file == nil || root == "" {
		return nil
	}
	pins := lastPins(file)
	prefix := root + "."

	var out []DynamicImport
	for _, imp := range file.Imports {
		if !imp.IsFrom || imp.IsRelative {
			continue
		}
		switch {
		case imp.Module == root:
			if imp.IsWildcard {
				continue
			}
			for _, item := range imp.Items {
				out = append(out, DynamicImport{
					File:      file.Path,
					Namespace: item.Name,
					Style:     StyleWholeNamespace,
					Line:      imp.Location.Line,
					Alias:     item.Alias,
					Version:   pins[item.Name].Version,
					PinLine:   pins[item.Name].Location.Line,
				})
			}
		case strings.HasPrefix(imp.Module, prefix):
			ns, _, _ := strings.Cut(imp.Module[len(prefix):], ".")
			if ns == "" {
				continue
			}
			names := imp.ItemNames()
			if imp.IsWildcard {
				names = []string{"*"}
			}
			out = append(out, DynamicImport{
				File:      file.Path,
				Namespace: ns,
				Style:     StyleSelectedSymbols,
				Line:      imp.Location.Line,
				Names:     names,
				Version:   pins[ns].Version,
				PinLine:   pins[ns].Location.Line,
			})
		}
	}
	return out
}

// ExtractNamespaces returns the distinct namespaces file imports through
// root, in first-occurrence order.
func ExtractNamespaces(file *File, root string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, rec := range DynamicImports(file, root) {
		if seen[rec.Namespace] {
			continue
		}
		seen[rec.Namespace] = true
		out = append(out, rec.Namespace)
	}
	return out
}

// VersionPins maps each pinned namespace to its version. A later pin of the
// same namespace replaces an earlier one.
func VersionPins(file *File) map[string]string {
	pins := make(map[string]string, len(file.VersionPins))
	for ns, pin := range lastPins(file) {
		pins[ns] = pin.Version
	}
	return pins
}

func lastPins(file *File) map[string]VersionPin {
	pins := make(map[string]VersionPin, len(file.VersionPins))
	for _, pin := range file.VersionPins {
		pins[pin.Namespace] = pin
	}
	return pins
}
