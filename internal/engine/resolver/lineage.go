package resolver

import (
	"strings"

	"gibridge/internal/engine/metadata"
)

type classRef struct {
	ns  string
	sym metadata.Symbol
}

// lineage is a class followed by its ancestors and implemented interfaces
// in lookup order.
type lineage struct {
	from     string
	classes  []classRef
	unloaded []string
	diags    []Diagnostic
}

func (l *lineage) markUnloaded(ns string) {
	for _, seen := range l.unloaded {
		if seen == ns {
			return
		}
	}
	l.unloaded = append(l.unloaded, ns)
}

// lineage walks parents across namespaces depth-first. Each class is visited
// once, so inheritance cycles in broken metadata terminate.
func (r *Resolver) lineage(ns string, sym metadata.Symbol) lineage {
	out := lineage{from: ns}
	seen := make(map[string]bool)

	var visit func(ns string, sym metadata.Symbol)
	visit = func(ns string, sym metadata.Symbol) {
		key := ns + "." + sym.Name
		if seen[key] {
			return
		}
		seen[key] = true
		out.classes = append(out.classes, classRef{ns: ns, sym: sym})

		bases := make([]string, 0, len(sym.Parents)+len(sym.Implements))
		bases = append(bases, sym.Parents...)
		bases = append(bases, sym.Implements...)
		for _, base := range bases {
			pns, pname := r.splitRef(ns, base)
			if !r.provider.IsLoaded(pns) {
				out.markUnloaded(pns)
				continue
			}
			syms, err := r.provider.Symbols(pns)
			if err != nil {
				out.diags = append(out.diags, errorf("metadata for namespace %s is malformed: %v", pns, err))
				continue
			}
			parent, ok := syms[pname]
			if !ok {
				out.diags = append(out.diags, warnf("base %s.%s of %s is missing from metadata", pns, pname, key))
				continue
			}
			visit(pns, parent)
		}
	}
	visit(ns, sym)
	return out
}

// deferAncestor defers name until the first unloaded ancestor namespace
// arrives, naming the version the lineage's own namespace was built against
// when its metadata declares it.
func (r *Resolver) deferAncestor(name string, lin lineage) Result {
	ns := lin.unloaded[0]
	res := deferred(name, ns)
	if dep := r.declaredDependency(lin.from, ns); dep != "" {
		res.Diagnostics = append(res.Diagnostics, notef("%s depends on %s", lin.from, dep))
	}
	return withDiagnostics(res, lin.diags)
}

// declaredDependency finds dep in the dependency list of ns, returning the
// "Name-Version" entry or "".
func (r *Resolver) declaredDependency(ns, dep string) string {
	lister, ok := r.provider.(metadata.DependencyLister)
	if !ok {
		return ""
	}
	for _, entry := range lister.Dependencies(ns) {
		if name, _, _ := strings.Cut(entry, "-"); name == dep {
			return entry
		}
	}
	return ""
}

// splitRef resolves a symbol reference relative to the namespace that
// mentions it: "Widget", "Gdk.Screen" or "gi.repository.Gdk.Screen".
func (r *Resolver) splitRef(ns, ref string) (string, string) {
	ref = strings.TrimPrefix(ref, r.prefix)
	if other, name, ok := strings.Cut(ref, "."); ok {
		return other, name
	}
	return ns, ref
}
