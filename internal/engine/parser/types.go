package parser

import (
	"time"
)

// File is the import surface of one Python module.
type File struct {
	Path        string
	Language    string
	Imports     []Import
	VersionPins []VersionPin
	ParsedAt    time.Time
}

type Import struct {
	Module     string       // Dotted module after "from"/"import", without leading dots
	RawImport  string       // Module as written, relative dots included
	Alias      string       // "import x as y"
	Items      []ImportItem // For "from X import Y, Z"
	IsFrom     bool
	IsRelative bool
	IsWildcard bool
	Location   Location
}

// ImportItem is one name bound by a from-import.
type ImportItem struct {
	Name  string
	Alias string
}

// LocalName is the name the item is bound to in the importing module.
func (i ImportItem) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Name
}

// VersionPin is a module-level require_version("Gtk", "3.0") call.
type VersionPin struct {
	Callee    string
	Namespace string
	Version   string
	Location  Location
}

type Location struct {
	File   string
	Line   int
	Column int
}

// ItemNames returns the imported names, ignoring aliases.
func (i Import) ItemNames() []string {
	out := make([]string, 0, len(i.Items))
	for _, item := range i.Items {
		out = append(out, item.Name)
	}
	return out
}
