// Package resolver answers the host analyzer's type questions about names
// under the dynamic namespace root from introspection metadata.
package resolver

import (
	"log/slog"
	"strings"

	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/typesys"
	"gibridge/internal/shared/observability"
)

// SymbolTable is the part of the host's symbol table the resolver reads.
type SymbolTable interface {
	HasModule(name string) bool
}

const (
	hookTypeForName = "type_for_name"
	hookSignature   = "function_signature"
	hookAttribute   = "attribute"
)

// Resolver holds no mutable state: every answer is a function of the
// provider's metadata and the queried name.
type Resolver struct {
	root     string
	prefix   string
	provider metadata.Provider
	table    SymbolTable
}

// NewResolver builds a resolver for names under root. A nil table claims
// every namespace; otherwise only namespaces declared as modules in the
// table are answered.
func NewResolver(root string, provider metadata.Provider, table SymbolTable) *Resolver {
	return &Resolver{
		root:     root,
		prefix:   root + ".",
		provider: provider,
		table:    table,
	}
}

func (r *Resolver) Root() string {
	return r.root
}

// qualified returns "<root>.<namespace>.<name>".
func (r *Resolver) qualified(namespace, name string) string {
	if name == "" {
		return r.prefix + namespace
	}
	return r.prefix + namespace + "." + name
}

// claim splits a fully-qualified name into its namespace and member path.
func (r *Resolver) claim(name string) (string, []string, bool) {
	rest, ok := strings.CutPrefix(name, r.prefix)
	if !ok {
		return "", nil, false
	}
	ns, tail, _ := strings.Cut(rest, ".")
	if ns == "" {
		return "", nil, false
	}
	if r.table != nil && !r.table.HasModule(r.prefix+ns) {
		return "", nil, false
	}
	if tail == "" {
		return ns, nil, true
	}
	return ns, strings.Split(tail, "."), true
}

// namespace loads the symbols of ns. When it cannot, the returned result
// carries the outcome the hook must report.
func (r *Resolver) namespace(name, ns string) (map[string]metadata.Symbol, *Result) {
	if !r.provider.IsLoaded(ns) {
		slog.Debug("namespace metadata not loaded", "namespace", ns, "name", name)
		res := deferred(name, ns)
		return nil, &res
	}
	syms, err := r.provider.Symbols(ns)
	if err != nil {
		res := missing(name, errorf("metadata for namespace %s is malformed: %v", ns, err))
		return nil, &res
	}
	return syms, nil
}

func record(hook string, res Result) Result {
	observability.HookOutcomesTotal.WithLabelValues(hook, res.Outcome.String()).Inc()
	return res
}

// ResolveTypeForName returns the type of a module-level name: the namespace
// module itself, a symbol of it, or a class member such as an enum value.
func (r *Resolver) ResolveTypeForName(name string) Result {
	return record(hookTypeForName, r.typeForName(name))
}

func (r *Resolver) typeForName(name string) Result {
	ns, path, ok := r.claim(name)
	if !ok {
		return notClaimed(name)
	}
	syms, fail := r.namespace(name, ns)
	if fail != nil {
		return *fail
	}
	if len(path) == 0 {
		return resolved(name, typesys.Module(r.qualified(ns, "")))
	}

	sym, ok := syms[path[0]]
	if !ok {
		return missing(name, errorf("module %q has no attribute %q", r.qualified(ns, ""), path[0]))
	}
	switch len(path) {
	case 1:
		return r.symbolType(name, ns, sym)
	case 2:
		return r.classAttribute(name, ns, sym, path[1])
	}
	res := resolved(name, typesys.Any())
	res.Diagnostics = []Diagnostic{notef("%s is nested below a class member; its type is not tracked", name)}
	return res
}

// symbolType is the type a symbol has when referenced by name.
func (r *Resolver) symbolType(name, ns string, sym metadata.Symbol) Result {
	fq := r.qualified(ns, sym.Name)
	switch sym.Kind {
	case metadata.KindFunction, metadata.KindCallback:
		return r.functionResult(name, ns, fq, sym)
	case metadata.KindConstant:
		return resolved(name, r.translate(ns, sym.Type))
	}
	res := resolved(name, typesys.TypeObject(fq))
	if sym.Deprecated {
		res.Diagnostics = []Diagnostic{warnf("%s is deprecated", fq)}
	}
	return res
}

// ResolveFunctionSignature returns the call signature of a function, a
// class constructor or a class-level method.
func (r *Resolver) ResolveFunctionSignature(name string) Result {
	return record(hookSignature, r.functionSignature(name))
}

func (r *Resolver) functionSignature(name string) Result {
	ns, path, ok := r.claim(name)
	if !ok {
		return notClaimed(name)
	}
	syms, fail := r.namespace(name, ns)
	if fail != nil {
		return *fail
	}
	if len(path) == 0 {
		return missing(name, errorf("module %q is not callable", name))
	}
	sym, ok := syms[path[0]]
	if !ok {
		return missing(name, errorf("module %q has no attribute %q", r.qualified(ns, ""), path[0]))
	}

	switch len(path) {
	case 1:
		return r.symbolSignature(name, ns, sym)
	case 2:
		res := r.classAttribute(name, ns, sym, path[1])
		if res.Outcome == Resolved && res.Signature == nil {
			return missing(name, errorf("%s is not callable", name))
		}
		return res
	}
	return missing(name, errorf("%s is not callable", name))
}

func (r *Resolver) symbolSignature(name, ns string, sym metadata.Symbol) Result {
	fq := r.qualified(ns, sym.Name)
	switch sym.Kind {
	case metadata.KindFunction, metadata.KindCallback:
		return r.functionResult(name, ns, fq, sym)
	case metadata.KindClass, metadata.KindStruct:
		return r.constructorSignature(name, ns, sym)
	case metadata.KindEnum, metadata.KindFlags:
		return resolvedSignature(name, typesys.Signature{
			Name: fq,
			Args: []typesys.Arg{{Name: "value", Type: typesys.Instance(typesys.Int), Kind: typesys.ArgPositional}},
			Ret:  typesys.Instance(fq),
		})
	case metadata.KindInterface:
		return missing(name, errorf("cannot instantiate interface %s", fq))
	}
	return missing(name, errorf("%s is not callable", fq))
}

func (r *Resolver) functionResult(name, ns, fq string, sym metadata.Symbol) Result {
	if sym.Function == nil {
		return missing(name, errorf("metadata for %s has no callable", fq))
	}
	sig, diags := r.callableSignature(ns, fq, *sym.Function, nil)
	res := resolvedSignature(name, sig)
	res.Diagnostics = diags
	return res
}
