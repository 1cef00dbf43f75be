package metadata

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"gibridge/internal/core/errors"
)

// Provider serves already-exported namespace metadata to the resolver.
// Namespaces lists what the provider knows about; IsLoaded reports whether
// the symbol map of a namespace can be read right now.
type Provider interface {
	Namespaces() []string
	Symbols(namespace string) (map[string]Symbol, error)
	IsLoaded(namespace string) bool
}

// VersionPinner is implemented by providers holding several versions of a
// namespace. Require selects the version later Symbols calls read; an empty
// version clears the pin so the newest version is read again.
type VersionPinner interface {
	Require(namespace, version string) error
}

// DependencyLister is implemented by providers that keep the dependency
// list of each namespace document, such as "GObject-2.0".
type DependencyLister interface {
	Dependencies(namespace string) []string
}

// Snapshot is an in-memory Provider.
type Snapshot struct {
	mu        sync.RWMutex
	symbols   map[string]map[string]Symbol
	deps      map[string][]string
	declared  map[string]bool
	malformed map[string]error
}

func NewSnapshot(docs ...*Document) (*Snapshot, error) {
	s := &Snapshot{
		symbols:   make(map[string]map[string]Symbol),
		deps:      make(map[string][]string),
		declared:  make(map[string]bool),
		malformed: make(map[string]error),
	}
	for _, doc := range docs {
		if err := s.Add(doc); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add loads a document. An invalid document is kept as malformed so the
// namespace stays visible while every symbol lookup reports the fault.
func (s *Snapshot) Add(doc *Document) error {
	if doc == nil || strings.TrimSpace(doc.Namespace) == "" {
		return errors.New(errors.CodeValidationError, "document has no namespace")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.declared[doc.Namespace] = true
	if err := doc.Validate(); err != nil {
		s.malformed[doc.Namespace] = err
		delete(s.symbols, doc.Namespace)
		return nil
	}
	delete(s.malformed, doc.Namespace)
	s.symbols[doc.Namespace] = doc.SymbolMap()
	s.deps[doc.Namespace] = append([]string(nil), doc.Dependencies...)
	return nil
}

// Declare records a namespace whose metadata has not been loaded yet.
func (s *Snapshot) Declare(namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declared[namespace] = true
}

// MarkMalformed makes every lookup in namespace fail with err.
func (s *Snapshot) MarkMalformed(namespace string, err error) {
	if err == nil {
		err = errors.New(errors.CodeMalformedMetadata, "malformed metadata")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declared[namespace] = true
	delete(s.symbols, namespace)
	s.malformed[namespace] = errors.AddContext(err, errors.CtxNamespace, namespace)
}

func (s *Snapshot) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.declared))
	for ns := range s.declared {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

func (s *Snapshot) IsLoaded(namespace string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.symbols[namespace]; ok {
		return true
	}
	_, bad := s.malformed[namespace]
	return bad
}

func (s *Snapshot) Symbols(namespace string) (map[string]Symbol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, bad := s.malformed[namespace]; bad {
		return nil, err
	}
	syms, ok := s.symbols[namespace]
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "namespace not loaded"), errors.CtxNamespace, namespace)
	}
	return syms, nil
}

func (s *Snapshot) Dependencies(namespace string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.deps[namespace]...)
}

// CompareVersions orders dotted numeric versions ("3.0" < "3.10" < "4.0").
// Non-numeric segments compare lexically; an empty version sorts first.
func CompareVersions(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		if c := compareSegment(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// pickVersion returns the pinned version when present, else the newest one.
func pickVersion(versions []string, pin string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	if pin != "" {
		for _, v := range versions {
			if v == pin {
				return v, true
			}
		}
		return "", false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if CompareVersions(v, best) > 0 {
			best = v
		}
	}
	return best, true
}
