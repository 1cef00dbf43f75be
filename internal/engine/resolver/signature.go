package resolver

import (
	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/typesys"
)

// callableSignature translates a GI callable. Out parameters leave the
// argument list and join the return value; a trailing run of optional
// parameters gets defaults; nullable parameters admit None. self, when
// set, becomes the leading positional argument.
func (r *Resolver) callableSignature(ns, fq string, c metadata.Callable, self *typesys.Expr) (typesys.Signature, []Diagnostic) {
	sig := r.signatureDepth(ns, fq, c, self, 0)

	var diags []Diagnostic
	if c.Throws {
		diags = append(diags, notef("%s raises %s on failure", fq, r.qualified("GLib", "Error")))
	}
	if c.Deprecated {
		diags = append(diags, warnf("%s is deprecated", fq))
	}
	return sig, diags
}

func (r *Resolver) plainSignature(ns, fq string, c metadata.Callable, depth int) typesys.Signature {
	return r.signatureDepth(ns, fq, c, nil, depth)
}

func (r *Resolver) signatureDepth(ns, fq string, c metadata.Callable, self *typesys.Expr, depth int) typesys.Signature {
	var (
		args []typesys.Arg
		rets []typesys.Expr
	)
	if self != nil {
		args = append(args, typesys.Arg{Name: "self", Type: *self, Kind: typesys.ArgPositional})
	}
	if c.Returns != nil {
		if ret := r.translateDepth(ns, c.Returns, depth); ret.Kind != typesys.KindNone {
			rets = append(rets, ret)
		}
	}

	defaulted := trailingOptional(c.Params)
	for i, p := range c.Params {
		t := r.translateDepth(ns, &p.Type, depth)
		if p.Nullable {
			t = typesys.Optional(t)
		}
		if p.IsOutput() || p.Direction == metadata.DirectionInOut {
			rets = append(rets, t)
			if p.IsOutput() {
				continue
			}
		}

		kind := typesys.ArgPositional
		switch {
		case p.Variadic:
			kind = typesys.ArgStar
		case defaulted[i]:
			kind = typesys.ArgOptional
		}
		args = append(args, typesys.Arg{Name: p.Name, Type: t, Kind: kind})
	}

	sig := typesys.Signature{Name: fq, Args: args}
	switch len(rets) {
	case 0:
		sig.Ret = typesys.None()
	case 1:
		sig.Ret = rets[0]
	default:
		sig.Ret = typesys.Tuple(rets...)
	}
	return sig
}

// trailingOptional marks the optional input parameters that no required
// input parameter follows.
func trailingOptional(params []metadata.Param) []bool {
	out := make([]bool, len(params))
	tail := true
	for i := len(params) - 1; i >= 0; i-- {
		p := params[i]
		if p.IsOutput() || p.Variadic {
			continue
		}
		if !p.Optional {
			tail = false
			continue
		}
		out[i] = tail
	}
	return out
}
