// Package graph is an in-memory model of the host analyzer's build graph:
// source modules, the synthetic modules the bridge declares for them, and a
// cache of names the analyzer has already resolved.
package graph

import (
	"sort"
	"strings"
	"sync"

	"gibridge/internal/engine/deps"
	"gibridge/internal/engine/resolver"
)

type Graph struct {
	mu sync.RWMutex

	fileToModule map[string]string  // path -> module name
	modules      map[string]*Module // module name -> module info

	// Relationships
	imports    map[string]map[string]*ImportEdge // from file -> to module -> edge
	importedBy map[string]map[string]bool        // to module -> from file

	resolved map[string]resolver.Result
}

type Module struct {
	Name      string
	Files     []string // source files defining the module, empty when synthetic
	Synthetic bool
}

type ImportEdge struct {
	From     string // file path
	To       string
	Priority int
	Line     int
}

func NewGraph() *Graph {
	return &Graph{
		fileToModule: make(map[string]string),
		modules:      make(map[string]*Module),
		imports:      make(map[string]map[string]*ImportEdge),
		importedBy:   make(map[string]map[string]bool),
		resolved:     make(map[string]resolver.Result),
	}
}

// AddFile records a source module and replaces the dependencies previously
// declared for path.
func (g *Graph) AddFile(path, module string, entries []deps.Entry) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.removeFileLocked(path)

	g.fileToModule[path] = module
	mod, ok := g.modules[module]
	if !ok {
		mod = &Module{Name: module}
		g.modules[module] = mod
	}
	mod.Synthetic = false
	mod.Files = append(mod.Files, path)
	sort.Strings(mod.Files)

	edges := make(map[string]*ImportEdge, len(entries))
	for _, entry := range entries {
		if existing, ok := edges[entry.Module]; ok {
			if entry.Priority < existing.Priority {
				existing.Priority = entry.Priority
			}
			continue
		}
		edges[entry.Module] = &ImportEdge{
			From:     path,
			To:       entry.Module,
			Priority: entry.Priority,
			Line:     entry.Line,
		}
		if _, ok := g.modules[entry.Module]; !ok {
			g.modules[entry.Module] = &Module{Name: entry.Module, Synthetic: true}
		}
		if g.importedBy[entry.Module] == nil {
			g.importedBy[entry.Module] = make(map[string]bool)
		}
		g.importedBy[entry.Module][path] = true
	}
	g.imports[path] = edges
}

func (g *Graph) RemoveFile(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeFileLocked(path)
}

func (g *Graph) removeFileLocked(path string) {
	for to := range g.imports[path] {
		delete(g.importedBy[to], path)
		if len(g.importedBy[to]) == 0 {
			delete(g.importedBy, to)
			g.dropIfOrphanLocked(to)
		}
	}
	delete(g.imports, path)

	module, ok := g.fileToModule[path]
	if !ok {
		return
	}
	delete(g.fileToModule, path)
	mod := g.modules[module]
	if mod == nil {
		return
	}
	for i, f := range mod.Files {
		if f == path {
			mod.Files = append(mod.Files[:i], mod.Files[i+1:]...)
			break
		}
	}
	if len(mod.Files) > 0 {
		return
	}
	if len(g.importedBy[module]) > 0 {
		mod.Synthetic = true
		return
	}
	delete(g.modules, module)
	g.invalidateLocked(module)
}

// dropIfOrphanLocked forgets a synthetic module no file depends on anymore.
func (g *Graph) dropIfOrphanLocked(module string) {
	mod, ok := g.modules[module]
	if !ok || !mod.Synthetic {
		return
	}
	delete(g.modules, module)
	g.invalidateLocked(module)
}

func (g *Graph) HasModule(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.modules[name]
	return ok
}

func (g *Graph) GetModule(name string) (*Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	mod, ok := g.modules[name]
	if !ok {
		return nil, false
	}
	return cloneModule(mod), true
}

// Modules returns every module name, sorted.
func (g *Graph) Modules() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.modules))
	for name := range g.modules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) ModuleCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.modules)
}

func (g *Graph) FileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.fileToModule)
}

// Imports returns the edges declared for path, ordered by line then module.
func (g *Graph) Imports(path string) []ImportEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]ImportEdge, 0, len(g.imports[path]))
	for _, edge := range g.imports[path] {
		out = append(out, *edge)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].To < out[j].To
	})
	return out
}

// Dependents returns the files that depend on module, sorted.
func (g *Graph) Dependents(module string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.importedBy[module]))
	for path := range g.importedBy[module] {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// BuildOrder lists synthetic modules the way the host schedules them: lower
// priority values first, ties broken by name.
func (g *Graph) BuildOrder() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	best := make(map[string]int)
	for _, edges := range g.imports {
		for to, edge := range edges {
			if !g.modules[to].Synthetic {
				continue
			}
			if p, ok := best[to]; !ok || edge.Priority < p {
				best[to] = edge.Priority
			}
		}
	}
	out := make([]string, 0, len(best))
	for name := range best {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		if best[out[i]] != best[out[j]] {
			return best[out[i]] < best[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Lookup returns a result the analyzer already resolved for name.
func (g *Graph) Lookup(name string) (resolver.Result, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	res, ok := g.resolved[name]
	return res, ok
}

// Store caches a final answer for name. Deferred and unclaimed results are
// not final and are never cached.
func (g *Graph) Store(name string, res resolver.Result) {
	if res.Outcome != resolver.Resolved && res.Outcome != resolver.NoSuchAttribute {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved[name] = res
}

// Invalidate drops cached results for module and everything below it.
func (g *Graph) Invalidate(module string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.invalidateLocked(module)
}

func (g *Graph) invalidateLocked(module string) int {
	n := 0
	for name := range g.resolved {
		if name == module || strings.HasPrefix(name, module+".") {
			delete(g.resolved, name)
			n++
		}
	}
	return n
}

func cloneModule(mod *Module) *Module {
	out := *mod
	out.Files = append([]string(nil), mod.Files...)
	return &out
}
