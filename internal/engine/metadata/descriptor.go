// Package metadata holds the introspection descriptors of foreign namespaces
// and the providers that serve them to the resolver.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gibridge/internal/core/errors"
)

// FormatVersion is the namespace document format this build understands.
const FormatVersion = 1

type SymbolKind string

const (
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindStruct    SymbolKind = "struct"
	KindEnum      SymbolKind = "enum"
	KindFlags     SymbolKind = "flags"
	KindFunction  SymbolKind = "function"
	KindCallback  SymbolKind = "callback"
	KindConstant  SymbolKind = "constant"
)

func (k SymbolKind) valid() bool {
	switch k {
	case KindClass, KindInterface, KindStruct, KindEnum, KindFlags, KindFunction, KindCallback, KindConstant:
		return true
	}
	return false
}

type Direction string

const (
	DirectionIn    Direction = "in"
	DirectionOut   Direction = "out"
	DirectionInOut Direction = "inout"
)

// TypeRef names a GI type tag (utf8, gint, array, ...) or an interface type,
// either local (Widget) or qualified with its namespace (Gdk.Event).
type TypeRef struct {
	Name     string   `json:"name"`
	Nullable bool     `json:"nullable,omitempty"`
	Element  *TypeRef `json:"element,omitempty"`
	Key      *TypeRef `json:"key,omitempty"`
	Value    *TypeRef `json:"value,omitempty"`
}

type Param struct {
	Name      string    `json:"name"`
	Type      TypeRef   `json:"type"`
	Direction Direction `json:"direction,omitempty"`
	Optional  bool      `json:"optional,omitempty"`
	Nullable  bool      `json:"nullable,omitempty"`
	Variadic  bool      `json:"variadic,omitempty"`
}

// IsOutput reports whether the caller receives the value instead of passing it.
func (p Param) IsOutput() bool {
	return p.Direction == DirectionOut
}

type Callable struct {
	Name        string   `json:"name"`
	Params      []Param  `json:"params,omitempty"`
	Returns     *TypeRef `json:"returns,omitempty"`
	Throws      bool     `json:"throws,omitempty"`
	Static      bool     `json:"static,omitempty"`
	Constructor bool     `json:"constructor,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Doc         string   `json:"doc,omitempty"`
}

type Field struct {
	Name     string  `json:"name"`
	Type     TypeRef `json:"type"`
	Writable bool    `json:"writable,omitempty"`
}

type Property struct {
	Name          string  `json:"name"`
	Type          TypeRef `json:"type"`
	Readable      bool    `json:"readable,omitempty"`
	Writable      bool    `json:"writable,omitempty"`
	ConstructOnly bool    `json:"construct_only,omitempty"`
}

// PythonName is the attribute spelling of a property (dashes become underscores).
func (p Property) PythonName() string {
	return strings.ReplaceAll(p.Name, "-", "_")
}

type Signal struct {
	Name    string   `json:"name"`
	Params  []Param  `json:"params,omitempty"`
	Returns *TypeRef `json:"returns,omitempty"`
}

type EnumValue struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type Symbol struct {
	Name       string      `json:"name"`
	Kind       SymbolKind  `json:"kind"`
	Parents    []string    `json:"parents,omitempty"`
	Implements []string    `json:"implements,omitempty"`
	Type       *TypeRef    `json:"type,omitempty"`
	Function   *Callable   `json:"function,omitempty"`
	Methods    []Callable  `json:"methods,omitempty"`
	Fields     []Field     `json:"fields,omitempty"`
	Properties []Property  `json:"properties,omitempty"`
	Signals    []Signal    `json:"signals,omitempty"`
	Values     []EnumValue `json:"values,omitempty"`
	Deprecated bool        `json:"deprecated,omitempty"`
	Doc        string      `json:"doc,omitempty"`
}

// IsClassLike reports whether instances of the symbol carry attributes.
func (s Symbol) IsClassLike() bool {
	switch s.Kind {
	case KindClass, KindInterface, KindStruct:
		return true
	}
	return false
}

func (s Symbol) IsEnum() bool {
	return s.Kind == KindEnum || s.Kind == KindFlags
}

func (s Symbol) Method(name string) (Callable, bool) {
	for _, m := range s.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Callable{}, false
}

func (s Symbol) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Property finds a property by its attribute spelling or its GObject name.
func (s Symbol) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name || p.PythonName() == name {
			return p, true
		}
	}
	return Property{}, false
}

func (s Symbol) Value(name string) (EnumValue, bool) {
	for _, v := range s.Values {
		if v.Name == name {
			return v, true
		}
	}
	return EnumValue{}, false
}

// Document is the exported metadata of one namespace version.
type Document struct {
	Format       int      `json:"format"`
	Namespace    string   `json:"namespace"`
	Version      string   `json:"version,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Symbols      []Symbol `json:"symbols"`
}

// DecodeDocument reads and validates one namespace document.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedMetadata, "decode namespace document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structural invariants the resolver relies on.
func (d *Document) Validate() error {
	if d.Format != FormatVersion {
		return errors.Newf(errors.CodeMalformedMetadata, "unsupported document format %d (expected %d)", d.Format, FormatVersion)
	}
	if strings.TrimSpace(d.Namespace) == "" || strings.Contains(d.Namespace, ".") {
		return errors.Newf(errors.CodeMalformedMetadata, "invalid namespace name %q", d.Namespace)
	}
	seen := make(map[string]bool, len(d.Symbols))
	for i, sym := range d.Symbols {
		ref := fmt.Sprintf("symbols[%d]", i)
		if strings.TrimSpace(sym.Name) == "" {
			return symbolError(d.Namespace, ref, "symbol name must not be empty")
		}
		if seen[sym.Name] {
			return symbolError(d.Namespace, sym.Name, "duplicate symbol")
		}
		seen[sym.Name] = true
		if !sym.Kind.valid() {
			return symbolError(d.Namespace, sym.Name, fmt.Sprintf("unknown kind %q", sym.Kind))
		}
		if (sym.Kind == KindFunction || sym.Kind == KindCallback) && sym.Function == nil {
			return symbolError(d.Namespace, sym.Name, "function symbol has no callable")
		}
		if sym.Kind == KindConstant && sym.Type == nil {
			return symbolError(d.Namespace, sym.Name, "constant symbol has no type")
		}
	}
	return nil
}

// SymbolMap indexes the document's symbols by name.
func (d *Document) SymbolMap() map[string]Symbol {
	out := make(map[string]Symbol, len(d.Symbols))
	for _, sym := range d.Symbols {
		out[sym.Name] = sym
	}
	return out
}

func symbolError(namespace, symbol, msg string) error {
	err := errors.New(errors.CodeMalformedMetadata, msg)
	return errors.AddContext(errors.AddContext(err, errors.CtxNamespace, namespace), errors.CtxSymbol, symbol)
}
