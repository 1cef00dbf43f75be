// Package deps turns imported namespaces into synthetic module dependencies.
package deps

// PriorityNormal schedules a dependency alongside the modules a file
// imports explicitly.
const PriorityNormal = 10

// AnchorLine is where every namespace dependency is attributed: imports
// happen before any executable line.
const AnchorLine = 1

// Entry is one synthetic dependency handed to the host's module graph.
type Entry struct {
	Priority int
	Module   string
	Line     int
}

// Registrar composes module names under a fixed root.
type Registrar struct {
	root     string
	priority int
}

func NewRegistrar(root string, priority int) *Registrar {
	return &Registrar{root: root, priority: priority}
}

// ModuleName returns "<root>.<namespace>".
func (r *Registrar) ModuleName(namespace string) string {
	return r.root + "." + namespace
}

// Register emits one entry per namespace, in input order.
func (r *Registrar) Register(namespaces []string) []Entry {
	if len(namespaces) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(namespaces))
	for _, ns := range namespaces {
		out = append(out, Entry{
			Priority: r.priority,
			Module:   r.ModuleName(ns),
			Line:     AnchorLine,
		})
	}
	return out
}
