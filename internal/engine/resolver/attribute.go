package resolver

import (
	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/typesys"
)

// PropsType is the suffix of the synthetic type behind "obj.props".
const PropsType = "Props"

const propsAttr = "props"

// ResolveAttribute looks attr up on owner: an instance or class object of a
// dynamic type, or a dynamic namespace module.
func (r *Resolver) ResolveAttribute(owner typesys.Expr, attr string) Result {
	return record(hookAttribute, r.attribute(owner, attr))
}

func (r *Resolver) attribute(owner typesys.Expr, attr string) Result {
	owner = owner.Unwrap()
	name := owner.Name + "." + attr

	switch owner.Kind {
	case typesys.KindModule:
		return r.typeForName(name)
	case typesys.KindTypeObject, typesys.KindInstance:
	default:
		return notClaimed(name)
	}

	ns, path, ok := r.claim(owner.Name)
	if !ok || len(path) == 0 {
		return notClaimed(name)
	}
	syms, fail := r.namespace(name, ns)
	if fail != nil {
		return *fail
	}
	sym, ok := syms[path[0]]
	if !ok {
		return missing(name, errorf("module %q has no attribute %q", r.qualified(ns, ""), path[0]))
	}

	switch {
	case len(path) == 1 && owner.Kind == typesys.KindTypeObject:
		return r.classAttribute(name, ns, sym, attr)
	case len(path) == 1:
		return r.instanceAttribute(name, ns, sym, attr)
	case len(path) == 2 && path[1] == PropsType && owner.Kind == typesys.KindInstance:
		return r.propsAttribute(name, ns, sym, attr)
	}
	return missing(name, errorf("%s is not a type of namespace %s", owner.Name, ns))
}

// instanceAttribute resolves attr on an instance: bound methods, fields and
// properties, searched class by class up the lineage.
func (r *Resolver) instanceAttribute(name, ns string, sym metadata.Symbol, attr string) Result {
	fq := r.qualified(ns, sym.Name)
	if !sym.IsClassLike() && !sym.IsEnum() {
		return missing(name, errorf("%s is not a class", fq))
	}
	if attr == propsAttr && sym.Kind != metadata.KindStruct && !sym.IsEnum() {
		return attrResult(resolved(name, typesys.Instance(fq+"."+PropsType)), AttrProps)
	}

	self := typesys.Instance(fq)
	lin := r.lineage(ns, sym)
	for _, c := range lin.classes {
		cfq := r.qualified(c.ns, c.sym.Name)
		if m, ok := c.sym.Method(attr); ok {
			res := r.methodResult(name, c.ns, cfq+"."+attr, m, &self, true)
			return withDiagnostics(res, lin.diags)
		}
		if f, ok := c.sym.Field(attr); ok {
			res := attrResult(resolved(name, r.translate(c.ns, &f.Type)), AttrField)
			return withDiagnostics(res, lin.diags)
		}
		if p, ok := c.sym.Property(attr); ok {
			res := attrResult(resolved(name, r.translate(c.ns, &p.Type)), AttrProperty)
			return withDiagnostics(res, lin.diags)
		}
	}
	if sym.IsEnum() {
		if res, ok := intMember(name, sym, attr); ok {
			return res
		}
	}
	return r.notFound(name, fq, attr, lin)
}

// classAttribute resolves attr on a class object: enum members, static
// methods, constructors and unbound methods.
func (r *Resolver) classAttribute(name, ns string, sym metadata.Symbol, attr string) Result {
	fq := r.qualified(ns, sym.Name)
	if v, ok := sym.Value(attr); ok && sym.IsEnum() {
		res := attrResult(resolved(name, typesys.Instance(fq)), AttrEnumValue)
		res.Diagnostics = []Diagnostic{notef("%s = %d", name, v.Value)}
		return res
	}
	if !sym.IsClassLike() && !sym.IsEnum() {
		return missing(name, errorf("%s has no attribute %q", fq, attr))
	}

	self := typesys.Instance(fq)
	lin := r.lineage(ns, sym)
	for _, c := range lin.classes {
		if m, ok := c.sym.Method(attr); ok {
			cfq := r.qualified(c.ns, c.sym.Name)
			res := r.methodResult(name, c.ns, cfq+"."+attr, m, &self, false)
			return withDiagnostics(res, lin.diags)
		}
	}
	return r.notFound(name, fq, attr, lin)
}

// propsAttribute resolves a property through the "props" accessor.
func (r *Resolver) propsAttribute(name, ns string, sym metadata.Symbol, attr string) Result {
	fq := r.qualified(ns, sym.Name)
	lin := r.lineage(ns, sym)
	for _, c := range lin.classes {
		if p, ok := c.sym.Property(attr); ok {
			res := attrResult(resolved(name, r.translate(c.ns, &p.Type)), AttrProperty)
			return withDiagnostics(res, lin.diags)
		}
	}
	return r.notFound(name, fq+"."+PropsType, attr, lin)
}

// methodResult builds the signature of a method reached through an
// instance (bound) or its class (unbound). Static methods and constructors
// never take self.
func (r *Resolver) methodResult(name, ns, fq string, m metadata.Callable, self *typesys.Expr, bound bool) Result {
	if m.Static || m.Constructor {
		self = nil
	}
	sig, diags := r.callableSignature(ns, fq, m, self)
	if bound && self != nil {
		sig = sig.Bind()
	}
	res := attrResult(resolvedSignature(name, sig), AttrMethod)
	res.Diagnostics = diags
	return res
}

// constructorSignature describes calling a class: every writable property
// of the lineage is an optional keyword argument.
func (r *Resolver) constructorSignature(name, ns string, sym metadata.Symbol) Result {
	fq := r.qualified(ns, sym.Name)
	sig := typesys.Signature{Name: fq, Ret: typesys.Instance(fq)}
	if sym.Kind == metadata.KindStruct {
		return resolvedSignature(name, sig)
	}

	lin := r.lineage(ns, sym)
	if len(lin.unloaded) > 0 {
		return r.deferAncestor(name, lin)
	}
	seen := make(map[string]bool)
	for _, c := range lin.classes {
		for _, p := range c.sym.Properties {
			pname := p.PythonName()
			if !p.Writable || seen[pname] {
				continue
			}
			seen[pname] = true
			sig.Args = append(sig.Args, typesys.Arg{
				Name: pname,
				Type: r.translate(c.ns, &p.Type),
				Kind: typesys.ArgNamedOptional,
			})
		}
	}
	return withDiagnostics(resolvedSignature(name, sig), lin.diags)
}

// notFound reports a failed lineage search: Deferred while some ancestor
// namespace is not loaded, NoSuchAttribute otherwise.
func (r *Resolver) notFound(name, owner, attr string, lin lineage) Result {
	if len(lin.unloaded) > 0 {
		return r.deferAncestor(name, lin)
	}
	return withDiagnostics(missing(name, errorf("%q has no attribute %q", owner, attr)), lin.diags)
}

func attrResult(res Result, kind AttrKind) Result {
	res.AttrKind = kind
	return res
}

func withDiagnostics(res Result, diags []Diagnostic) Result {
	if len(diags) == 0 {
		return res
	}
	out := make([]Diagnostic, 0, len(res.Diagnostics)+len(diags))
	out = append(out, res.Diagnostics...)
	out = append(out, diags...)
	res.Diagnostics = out
	return res
}
