package ports

import (
	"context"
	"time"

	"gibridge/internal/engine/deps"
	"gibridge/internal/engine/parser"
	"gibridge/internal/engine/resolver"
	"gibridge/internal/engine/typesys"
)

// CodeParser abstracts source parsing and language-file support checks.
type CodeParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
	IsSupportedPath(filePath string) bool
	SupportedExtensions() []string
}

// SymbolTable is the host analyzer's module graph and resolved-name cache as
// seen by the bridge. The bridge never owns it.
type SymbolTable interface {
	resolver.SymbolTable
	Lookup(name string) (resolver.Result, bool)
	// Invalidate drops cached results for module and the names below it.
	Invalidate(module string) int
}

// Plugin is the host analyzer's extension contract: one method per
// resolution question.
type Plugin interface {
	AdditionalDependencies(file *parser.File) []deps.Entry
	ResolveTypeForName(name string) resolver.Result
	ResolveFunctionSignature(name string) resolver.Result
	ResolveAttribute(owner typesys.Expr, attr string) resolver.Result
}

// ScanRequest defines a scan operation request for driving adapters.
type ScanRequest struct {
	Paths []string
}

// FileDependencies pairs one analyzed file with the modules it adds.
type FileDependencies struct {
	Path        string
	Entries     []deps.Entry
	Diagnostics []resolver.Diagnostic
}

// ScanResult summarizes a completed scan operation.
type ScanResult struct {
	SessionID    string
	FilesScanned int
	Files        []FileDependencies
	Modules      []string
	Warnings     []string
	Duration     time.Duration
}

// WatchUpdate contains state emitted to driving adapters during watch-mode updates.
type WatchUpdate struct {
	Changed []string
	Result  ScanResult
}

// AnalysisService is the driving-port surface used by the CLI.
type AnalysisService interface {
	RunScan(ctx context.Context, req ScanRequest) (ScanResult, error)
	ResolveType(ctx context.Context, name string) (resolver.Result, error)
	ResolveSignature(ctx context.Context, name string) (resolver.Result, error)
	ResolveAttribute(ctx context.Context, owner, attr string) (resolver.Result, error)
	Namespaces(ctx context.Context) ([]string, error)
	Watch(ctx context.Context, paths []string, handler func(WatchUpdate)) error
}
