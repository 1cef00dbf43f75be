package metadata

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gibridge/internal/core/errors"
	"gibridge/internal/shared/observability"
)

const documentExt = ".json"

type cacheKey struct {
	namespace string
	version   string
}

type loadResult struct {
	symbols map[string]Symbol
	deps    []string
	err     error
}

// DirProvider reads one JSON document per namespace version from a
// directory ("Gtk.json", "Gtk-3.0.json"). The file index is taken when the
// provider is opened and refreshed by Reload; decoded namespaces are kept in
// an LRU cache.
type DirProvider struct {
	dir string

	mu    sync.RWMutex
	index map[string]map[string]string // namespace -> version -> file
	pins  map[string]string

	cache *LRUCache[cacheKey, loadResult]
}

func NewDirProvider(dir string, cacheSize int) (*DirProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "metadata directory not readable"), errors.CtxPath, dir)
	}
	if !info.IsDir() {
		return nil, errors.AddContext(errors.New(errors.CodeValidationError, "metadata path is not a directory"), errors.CtxPath, dir)
	}
	p := &DirProvider{
		dir:   dir,
		pins:  make(map[string]string),
		cache: NewLRUCache[cacheKey, loadResult](cacheSize),
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload rescans the directory and drops every cached namespace.
func (p *DirProvider) Reload() error {
	index, err := scanDocumentDir(p.dir)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.index = index
	p.mu.Unlock()
	p.cache.Clear()
	observability.MetadataCacheSize.WithLabelValues("dir").Set(0)
	slog.Debug("metadata directory indexed", "dir", p.dir, "namespaces", len(index))
	return nil
}

func (p *DirProvider) Namespaces() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.index))
	for ns := range p.index {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Versions lists the versions available for namespace, oldest first.
func (p *DirProvider) Versions(namespace string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sortedVersions(p.index[namespace])
}

func (p *DirProvider) Require(namespace, version string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if version == "" {
		delete(p.pins, namespace)
		return nil
	}
	if _, ok := p.index[namespace][version]; !ok {
		err := errors.Newf(errors.CodeNotFound, "namespace %s has no version %q", namespace, version)
		return errors.AddContext(err, errors.CtxNamespace, namespace)
	}
	p.pins[namespace] = version
	return nil
}

func (p *DirProvider) IsLoaded(namespace string) bool {
	_, _, ok := p.selected(namespace)
	return ok
}

func (p *DirProvider) Symbols(namespace string) (map[string]Symbol, error) {
	res, ok := p.document(namespace)
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotFound, "namespace not loaded"), errors.CtxNamespace, namespace)
	}
	return res.symbols, res.err
}

// Dependencies lists what the selected version of namespace was built
// against. Unknown or malformed namespaces have none.
func (p *DirProvider) Dependencies(namespace string) []string {
	res, ok := p.document(namespace)
	if !ok {
		return nil
	}
	return res.deps
}

func (p *DirProvider) document(namespace string) (loadResult, bool) {
	version, file, ok := p.selected(namespace)
	if !ok {
		return loadResult{}, false
	}
	key := cacheKey{namespace: namespace, version: version}
	if res, hit := p.cache.Get(key); hit {
		return res, true
	}

	res := p.load(namespace, file)
	p.cache.Put(key, res)
	observability.MetadataCacheSize.WithLabelValues("dir").Set(float64(p.cache.Len()))
	return res, true
}

func (p *DirProvider) selected(namespace string) (string, string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	files := p.index[namespace]
	version, ok := pickVersion(sortedVersions(files), p.pins[namespace])
	if !ok {
		return "", "", false
	}
	return version, files[version], true
}

func (p *DirProvider) load(namespace, file string) loadResult {
	doc, err := ReadDocumentFile(file)
	if err == nil && doc.Namespace != namespace {
		err = errors.Newf(errors.CodeMalformedMetadata, "document declares namespace %q", doc.Namespace)
	}
	if err != nil {
		observability.MetadataLoadsTotal.WithLabelValues("dir", "malformed").Inc()
		slog.Debug("metadata document rejected", "namespace", namespace, "file", file, "error", err)
		return loadResult{err: errors.AddContext(errors.AddContext(err, errors.CtxNamespace, namespace), errors.CtxPath, file)}
	}
	observability.MetadataLoadsTotal.WithLabelValues("dir", "ok").Inc()
	return loadResult{symbols: doc.SymbolMap(), deps: doc.Dependencies}
}

// ReadDocumentFile decodes and validates one namespace document.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "open namespace document"), errors.CtxPath, path)
	}
	defer f.Close()
	return DecodeDocument(f)
}

// DocumentFiles lists the namespace documents in dir in name order.
func DocumentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read metadata directory"), errors.CtxPath, dir)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, _, ok := ParseDocumentName(entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// ParseDocumentName splits "Gtk-3.0.json" into ("Gtk", "3.0").
func ParseDocumentName(name string) (namespace, version string, ok bool) {
	base, found := strings.CutSuffix(name, documentExt)
	if !found || base == "" || strings.HasPrefix(base, ".") {
		return "", "", false
	}
	namespace, version, _ = strings.Cut(base, "-")
	if namespace == "" {
		return "", "", false
	}
	return namespace, version, true
}

func scanDocumentDir(dir string) (map[string]map[string]string, error) {
	files, err := DocumentFiles(dir)
	if err != nil {
		return nil, err
	}
	index := make(map[string]map[string]string)
	for _, file := range files {
		ns, version, _ := ParseDocumentName(filepath.Base(file))
		if index[ns] == nil {
			index[ns] = make(map[string]string)
		}
		index[ns][version] = file
	}
	return index, nil
}

func sortedVersions(files map[string]string) []string {
	out := make([]string, 0, len(files))
	for v := range files {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return CompareVersions(out[i], out[j]) < 0 })
	return out
}
