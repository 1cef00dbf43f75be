package resolver

import (
	"fmt"

	"gibridge/internal/engine/typesys"
)

// Outcome classifies the answer of a resolver hook.
type Outcome int

const (
	// NotClaimed: the name is outside the dynamic namespace.
	NotClaimed Outcome = iota
	// Deferred: the namespace is recognised but its metadata is not loaded
	// yet; the host should ask again in a later pass.
	Deferred
	// NoSuchAttribute: the namespace is loaded and the name is absent.
	NoSuchAttribute
	Resolved
)

func (o Outcome) String() string {
	switch o {
	case NotClaimed:
		return "not-claimed"
	case Deferred:
		return "deferred"
	case NoSuchAttribute:
		return "no-such-attribute"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Diagnostic is a message the host may surface to the user.
type Diagnostic struct {
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return d.Severity.String() + ": " + d.Message
}

func notef(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityNote, Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func errorf(format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// AttrKind tells what an attribute lookup found.
type AttrKind int

const (
	AttrNone AttrKind = iota
	AttrMethod
	AttrField
	AttrProperty
	// AttrProps is the synthetic "props" accessor of GObject classes.
	AttrProps
	AttrEnumValue
)

func (k AttrKind) String() string {
	switch k {
	case AttrMethod:
		return "method"
	case AttrField:
		return "field"
	case AttrProperty:
		return "property"
	case AttrProps:
		return "props"
	case AttrEnumValue:
		return "enum-value"
	}
	return "none"
}

// Result is the immutable answer to one hook call.
type Result struct {
	Outcome     Outcome
	Name        string
	Type        typesys.Expr
	Signature   *typesys.Signature
	AttrKind    AttrKind
	Diagnostics []Diagnostic
}

// Claimed reports whether the bridge took authority over the queried name.
func (r Result) Claimed() bool {
	return r.Outcome != NotClaimed
}

func notClaimed(name string) Result {
	return Result{Outcome: NotClaimed, Name: name, Type: typesys.Any()}
}

func deferred(name, namespace string) Result {
	return Result{
		Outcome:     Deferred,
		Name:        name,
		Type:        typesys.Any(),
		Diagnostics: []Diagnostic{notef("metadata for namespace %s is not loaded yet", namespace)},
	}
}

func missing(name string, diag Diagnostic) Result {
	return Result{
		Outcome:     NoSuchAttribute,
		Name:        name,
		Type:        typesys.Any(),
		Diagnostics: []Diagnostic{diag},
	}
}

func resolved(name string, t typesys.Expr) Result {
	return Result{Outcome: Resolved, Name: name, Type: t}
}

func resolvedSignature(name string, sig typesys.Signature) Result {
	return Result{Outcome: Resolved, Name: name, Type: typesys.Callable(sig), Signature: &sig}
}
