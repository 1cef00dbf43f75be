package resolver

import (
	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/typesys"
)

// Enum and flags values are int subclasses at run time, so members the
// metadata does not list fall back to those of builtins.int.

var intDataMembers = map[string]string{
	"real":        typesys.Int,
	"imag":        typesys.Int,
	"numerator":   typesys.Int,
	"denominator": typesys.Int,
	"value":       typesys.Int,
	"value_name":  typesys.Str,
	"value_nick":  typesys.Str,
}

func intMethods() map[string]typesys.Signature {
	integer := typesys.Instance(typesys.Int)
	return map[string]typesys.Signature{
		"bit_length":       {Ret: integer},
		"bit_count":        {Ret: integer},
		"conjugate":        {Ret: integer},
		"is_integer":       {Ret: typesys.Instance(typesys.Bool)},
		"as_integer_ratio": {Ret: typesys.Tuple(integer, integer)},
		"to_bytes": {
			Args: []typesys.Arg{
				{Name: "length", Type: integer, Kind: typesys.ArgOptional},
				{Name: "byteorder", Type: typesys.Instance(typesys.Str), Kind: typesys.ArgOptional},
				{Name: "signed", Type: typesys.Instance(typesys.Bool), Kind: typesys.ArgNamedOptional},
			},
			Ret: typesys.Instance(typesys.Bytes),
		},
	}
}

// intMember resolves attr on an enum or flags value as an int member.
func intMember(name string, sym metadata.Symbol, attr string) (Result, bool) {
	if t, ok := intDataMembers[attr]; ok {
		return attrResult(resolved(name, typesys.Instance(t)), AttrField), true
	}
	if attr == "name" {
		// A flags value combining several members has no name.
		t := typesys.Instance(typesys.Str)
		if sym.Kind == metadata.KindFlags {
			t = typesys.Optional(t)
		}
		return attrResult(resolved(name, t), AttrField), true
	}
	if sig, ok := intMethods()[attr]; ok {
		sig.Name = typesys.Int + "." + attr
		return attrResult(resolvedSignature(name, sig), AttrMethod), true
	}
	return Result{}, false
}
