// Package plugin is the single entry point the host analyzer loads: it
// answers the extension contract by dispatching to the import extractor, the
// dependency registrar and the resolver hooks.
package plugin

import (
	"fmt"
	"log/slog"
	"strings"

	"gibridge/internal/core/errors"
	"gibridge/internal/core/ports"
	"gibridge/internal/engine/deps"
	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/parser"
	"gibridge/internal/engine/resolver"
	"gibridge/internal/engine/typesys"
	"gibridge/internal/shared/observability"
	"gibridge/internal/shared/util"
)

const DefaultRoot = "gi.repository"

type Config struct {
	Root            string
	DefaultPriority int
	// StrictNamespaces drops imported namespaces the provider does not list.
	StrictNamespaces bool
}

func DefaultConfig() Config {
	return Config{Root: DefaultRoot, DefaultPriority: deps.PriorityNormal}
}

// Plugin holds a non-owning reference to the host's symbol table.
type Plugin struct {
	cfg       Config
	provider  metadata.Provider
	table     ports.SymbolTable
	registrar *deps.Registrar
	resolver  *resolver.Resolver
	pins      *pinSet
}

var _ ports.Plugin = (*Plugin)(nil)

// New validates cfg and wires the bridge. A nil table answers for every
// namespace under the root.
func New(cfg Config, provider metadata.Provider, table ports.SymbolTable) (*Plugin, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, errors.New(errors.CodeValidationError, "metadata provider is required")
	}

	var lookup resolver.SymbolTable
	if table != nil {
		lookup = table
	}
	return &Plugin{
		cfg:       cfg,
		provider:  provider,
		table:     table,
		registrar: deps.NewRegistrar(cfg.Root, cfg.DefaultPriority),
		resolver:  resolver.NewResolver(cfg.Root, provider, lookup),
		pins:      newPinSet(),
	}, nil
}

func validateConfig(cfg Config) error {
	if err := ValidateRoot(cfg.Root); err != nil {
		return err
	}
	if cfg.DefaultPriority <= 0 {
		err := errors.Newf(errors.CodeValidationError, "default priority must be positive, got %d", cfg.DefaultPriority)
		return errors.AddContext(err, errors.CtxField, "default_priority")
	}
	return nil
}

// ValidateRoot requires a dotted identifier such as "gi.repository".
func ValidateRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return errors.AddContext(errors.New(errors.CodeValidationError, "namespace root is not set"), errors.CtxField, "root")
	}
	if !util.IsDottedIdentifier(root) {
		err := errors.Newf(errors.CodeValidationError, "namespace root %q is not a dotted identifier", root)
		return errors.AddContext(err, errors.CtxField, "root")
	}
	return nil
}

func (p *Plugin) Config() Config {
	return p.cfg
}

// AdditionalDependencies returns the synthetic modules file needs.
func (p *Plugin) AdditionalDependencies(file *parser.File) []deps.Entry {
	entries, _ := p.Dependencies(file)
	return entries
}

// Dependencies is AdditionalDependencies plus the diagnostics produced while
// settling version pins and checking namespaces in strict mode.
func (p *Plugin) Dependencies(file *parser.File) ([]deps.Entry, []resolver.Diagnostic) {
	if file == nil {
		return nil, nil
	}
	records := parser.DynamicImports(file, p.cfg.Root)
	diags := p.settlePins(file.Path, records)
	if len(records) == 0 {
		return nil, diags
	}

	namespaces := parser.ExtractNamespaces(file, p.cfg.Root)
	if p.cfg.StrictNamespaces {
		var dropped []resolver.Diagnostic
		namespaces, dropped = p.knownOnly(file.Path, namespaces)
		diags = append(diags, dropped...)
	}

	entries := p.registrar.Register(namespaces)
	observability.DependencyEntriesTotal.Add(float64(len(entries)))
	return entries, diags
}

func (p *Plugin) knownOnly(path string, namespaces []string) ([]string, []resolver.Diagnostic) {
	known := make(map[string]bool)
	for _, ns := range p.provider.Namespaces() {
		known[ns] = true
	}
	var (
		kept  []string
		diags []resolver.Diagnostic
	)
	for _, ns := range namespaces {
		if known[ns] {
			kept = append(kept, ns)
			continue
		}
		slog.Debug("dropping unknown namespace", "path", path, "namespace", ns)
		observability.DroppedNamespacesTotal.Inc()
		diags = append(diags, warning("%s: %s is not a known namespace", path, p.registrar.ModuleName(ns)))
	}
	return kept, diags
}

func warning(format string, args ...any) resolver.Diagnostic {
	return resolver.Diagnostic{Severity: resolver.SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// ResolveTypeForName prefers a result the analyzer already resolved for a
// name under the root.
func (p *Plugin) ResolveTypeForName(name string) resolver.Result {
	if p.table != nil && strings.HasPrefix(name, p.cfg.Root+".") {
		if res, ok := p.table.Lookup(name); ok {
			return res
		}
	}
	return p.resolver.ResolveTypeForName(name)
}

func (p *Plugin) ResolveFunctionSignature(name string) resolver.Result {
	return p.resolver.ResolveFunctionSignature(name)
}

func (p *Plugin) ResolveAttribute(owner typesys.Expr, attr string) resolver.Result {
	return p.resolver.ResolveAttribute(owner, attr)
}
