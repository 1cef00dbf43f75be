package typesys

import (
	"fmt"
	"strings"
)

// ArgKind mirrors the host analyzer's argument kinds.
type ArgKind int

const (
	ArgPositional ArgKind = iota
	ArgOptional
	ArgStar
	ArgNamed
	ArgNamedOptional
	ArgStar2
)

func (k ArgKind) positional() bool {
	return k == ArgPositional || k == ArgOptional
}

func (k ArgKind) named() bool {
	return k == ArgNamed || k == ArgNamedOptional
}

type Arg struct {
	Name string
	Type Expr
	Kind ArgKind
}

type Signature struct {
	Name string
	Args []Arg
	Ret  Expr
}

// CallError describes a call that the signature does not accept.
type CallError struct {
	Callee  string
	Message string
}

func (e *CallError) Error() string {
	if e.Callee == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Callee, e.Message)
}

// MinPositional is the number of positional arguments without defaults.
func (s Signature) MinPositional() int {
	n := 0
	for _, arg := range s.Args {
		if arg.Kind == ArgPositional {
			n++
		}
	}
	return n
}

// MaxPositional returns the positional capacity; ok is false when a *args
// parameter makes it unbounded.
func (s Signature) MaxPositional() (n int, ok bool) {
	for _, arg := range s.Args {
		switch {
		case arg.Kind.positional():
			n++
		case arg.Kind == ArgStar:
			return n, false
		}
	}
	return n, true
}

// CheckCall reports whether a call with the given number of positional
// arguments and keyword names matches the signature.
func (s Signature) CheckCall(positional int, keywords []string) error {
	filled := make(map[string]bool, len(s.Args))
	slot := 0
	for _, arg := range s.Args {
		if !arg.Kind.positional() {
			continue
		}
		if slot < positional {
			filled[arg.Name] = true
			slot++
		}
	}
	if max, bounded := s.MaxPositional(); bounded && positional > max {
		return &CallError{Callee: s.Name, Message: fmt.Sprintf("too many positional arguments (expected at most %d, got %d)", max, positional)}
	}

	hasStar2 := false
	byName := make(map[string]Arg, len(s.Args))
	for _, arg := range s.Args {
		if arg.Kind == ArgStar2 {
			hasStar2 = true
			continue
		}
		if arg.Kind.positional() || arg.Kind.named() {
			byName[arg.Name] = arg
		}
	}

	for _, kw := range keywords {
		if _, ok := byName[kw]; !ok {
			if hasStar2 {
				continue
			}
			return &CallError{Callee: s.Name, Message: fmt.Sprintf("unexpected keyword argument %q", kw)}
		}
		if filled[kw] {
			return &CallError{Callee: s.Name, Message: fmt.Sprintf("multiple values for argument %q", kw)}
		}
		filled[kw] = true
	}

	for _, arg := range s.Args {
		if filled[arg.Name] {
			continue
		}
		switch arg.Kind {
		case ArgPositional:
			return &CallError{Callee: s.Name, Message: fmt.Sprintf("missing positional argument %q", arg.Name)}
		case ArgNamed:
			return &CallError{Callee: s.Name, Message: fmt.Sprintf("missing named argument %q", arg.Name)}
		}
	}
	return nil
}

// Bind drops the leading self parameter of an unbound method.
func (s Signature) Bind() Signature {
	out := s.clone()
	if len(out.Args) > 0 && out.Args[0].Kind.positional() {
		out.Args = out.Args[1:]
	}
	return out
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString("def ")
	b.WriteString("(")
	starred := false
	for i, arg := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		switch arg.Kind {
		case ArgStar:
			starred = true
			b.WriteString("*")
		case ArgStar2:
			b.WriteString("**")
		case ArgNamed, ArgNamedOptional:
			if !starred {
				b.WriteString("*, ")
				starred = true
			}
		}
		b.WriteString(arg.Name)
		b.WriteString(": ")
		b.WriteString(arg.Type.String())
		if arg.Kind == ArgOptional || arg.Kind == ArgNamedOptional {
			b.WriteString(" = ...")
		}
	}
	b.WriteString(") -> ")
	b.WriteString(s.Ret.String())
	return b.String()
}

func (s Signature) clone() Signature {
	out := Signature{Name: s.Name, Ret: s.Ret}
	if len(s.Args) > 0 {
		out.Args = make([]Arg, len(s.Args))
		copy(out.Args, s.Args)
	}
	return out
}
