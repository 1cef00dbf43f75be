// Package typesys models the host analyzer's type expressions and call
// signatures. Values are immutable once built.
package typesys

import "strings"

type Kind int

const (
	KindAny Kind = iota
	KindNone
	KindInstance
	KindTypeObject
	KindCallable
	KindOptional
	KindTuple
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNone:
		return "none"
	case KindInstance:
		return "instance"
	case KindTypeObject:
		return "type"
	case KindCallable:
		return "callable"
	case KindOptional:
		return "optional"
	case KindTuple:
		return "tuple"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Builtin type names as the host analyzer spells them.
const (
	Object = "builtins.object"
	Int    = "builtins.int"
	Float  = "builtins.float"
	Bool   = "builtins.bool"
	Str    = "builtins.str"
	Bytes  = "builtins.bytes"
	List   = "builtins.list"
	Dict   = "builtins.dict"
)

// Expr is a type expression. Name holds the fully-qualified class or module
// name for instance, type-object and module kinds.
type Expr struct {
	Kind      Kind
	Name      string
	Args      []Expr
	Signature *Signature
}

func Any() Expr { return Expr{Kind: KindAny} }

func None() Expr { return Expr{Kind: KindNone} }

func Instance(name string, args ...Expr) Expr {
	return Expr{Kind: KindInstance, Name: name, Args: cloneExprs(args)}
}

func TypeObject(name string) Expr {
	return Expr{Kind: KindTypeObject, Name: name}
}

func Module(name string) Expr {
	return Expr{Kind: KindModule, Name: name}
}

func Tuple(items ...Expr) Expr {
	return Expr{Kind: KindTuple, Args: cloneExprs(items)}
}

func Callable(sig Signature) Expr {
	clone := sig.clone()
	return Expr{Kind: KindCallable, Signature: &clone}
}

// Optional wraps e so it also admits None. Optional of Any, None or an
// Optional is returned unchanged.
func Optional(e Expr) Expr {
	switch e.Kind {
	case KindAny, KindNone, KindOptional:
		return e
	}
	return Expr{Kind: KindOptional, Args: []Expr{e}}
}

func (e Expr) IsAny() bool { return e.Kind == KindAny }

// Unwrap strips one Optional layer.
func (e Expr) Unwrap() Expr {
	if e.Kind == KindOptional && len(e.Args) == 1 {
		return e.Args[0]
	}
	return e
}

func (e Expr) Equal(other Expr) bool {
	return e.String() == other.String()
}

func (e Expr) String() string {
	switch e.Kind {
	case KindAny:
		return "Any"
	case KindNone:
		return "None"
	case KindInstance:
		if len(e.Args) == 0 {
			return e.Name
		}
		return e.Name + "[" + joinExprs(e.Args) + "]"
	case KindTypeObject:
		return "Type[" + e.Name + "]"
	case KindOptional:
		return "Optional[" + joinExprs(e.Args) + "]"
	case KindTuple:
		if len(e.Args) == 0 {
			return "Tuple[()]"
		}
		return "Tuple[" + joinExprs(e.Args) + "]"
	case KindModule:
		return "Module(" + e.Name + ")"
	case KindCallable:
		if e.Signature == nil {
			return "Callable[..., Any]"
		}
		return e.Signature.String()
	}
	return "Any"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

func cloneExprs(exprs []Expr) []Expr {
	if len(exprs) == 0 {
		return nil
	}
	out := make([]Expr, len(exprs))
	copy(out, exprs)
	return out
}
