package parser

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gibridge/internal/core/errors"
	"gibridge/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var (
	pythonOnce sync.Once
	pythonLang *sitter.Language
)

// PythonLanguage returns the shared Python grammar.
func PythonLanguage() *sitter.Language {
	pythonOnce.Do(func() {
		pythonLang = sitter.NewLanguage(tree_sitter_python.Language())
	})
	return pythonLang
}

var sourceExtensions = map[string]bool{
	".py":  true,
	".pyi": true,
}

// Parser reads the module-level import surface of Python files.
type Parser struct {
	pool      *ParserPool
	extractor *PythonExtractor
}

func NewParser() *Parser {
	return &Parser{
		pool:      NewParserPool(PythonLanguage()),
		extractor: &PythonExtractor{},
	}
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	if !p.IsSupportedPath(path) {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}
	start := time.Now()
	defer func() {
		observability.ParsingDuration.Observe(time.Since(start).Seconds())
	}()

	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	res, err := p.extractor.Extract(tree.RootNode(), content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return res, nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) SupportedExtensions() []string {
	out := make([]string, 0, len(sourceExtensions))
	for ext := range sourceExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
