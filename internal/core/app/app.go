package app

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gibridge/internal/core/config"
	"gibridge/internal/core/errors"
	"gibridge/internal/engine/graph"
	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/parser"
	"gibridge/internal/plugin"
)

// App wires the parser, the metadata provider, the host symbol table and
// the bridge plugin for one analysis process.
type App struct {
	Config *config.Config
	Parser *parser.Parser
	Graph  *graph.Graph

	mu       sync.RWMutex
	provider metadata.Provider
	closer   io.Closer
	plugin   *plugin.Plugin
}

func New(cfg *config.Config) (*App, error) {
	provider, closer, err := OpenProvider(cfg.Metadata)
	if err != nil {
		return nil, err
	}
	a, err := NewWithProvider(cfg, provider)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}
	a.closer = closer
	return a, nil
}

// NewWithProvider uses an already opened provider. The caller keeps
// ownership of it.
func NewWithProvider(cfg *config.Config, provider metadata.Provider) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	g := graph.NewGraph()
	p, err := plugin.New(pluginConfig(cfg), provider, g)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:   cfg,
		Parser:   parser.NewParser(),
		Graph:    g,
		provider: provider,
		plugin:   p,
	}, nil
}

func pluginConfig(cfg *config.Config) plugin.Config {
	return plugin.Config{
		Root:             cfg.Bridge.Root,
		DefaultPriority:  cfg.Bridge.DefaultPriority,
		StrictNamespaces: cfg.Bridge.StrictNamespaces,
	}
}

// OpenProvider opens the metadata source named by cfg. The returned closer
// is nil for sources that hold no handles.
func OpenProvider(cfg config.Metadata) (metadata.Provider, io.Closer, error) {
	switch cfg.Source {
	case config.SourceDir:
		p, err := metadata.NewDirProvider(cfg.Path, cfg.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	case config.SourceSQLite:
		s, err := metadata.OpenStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		err := errors.Newf(errors.CodeNotSupported, "unsupported metadata source %q", cfg.Source)
		return nil, nil, errors.AddContext(err, errors.CtxField, "metadata.source")
	}
}

// CurrentConfig returns the configuration in effect; Reload may replace it
// from another goroutine.
func (a *App) CurrentConfig() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Config
}

func (a *App) Plugin() *plugin.Plugin {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.plugin
}

func (a *App) Provider() metadata.Provider {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.provider
}

// Reload swaps in the provider and plugin described by cfg. The version
// pins of the scanned files carry over to the new provider. On failure the
// running configuration stays in place.
func (a *App) Reload(cfg *config.Config) error {
	provider, closer, err := OpenProvider(cfg.Metadata)
	if err != nil {
		return fmt.Errorf("reload metadata: %w", err)
	}
	p, err := plugin.New(pluginConfig(cfg), provider, a.Graph)
	if err != nil {
		closeQuietly(closer)
		return err
	}
	for _, d := range p.AdoptPins(a.Plugin()) {
		slog.Warn("version pin not carried over", "diagnostic", d.String())
	}

	a.mu.Lock()
	old := a.closer
	a.Config = cfg
	a.provider = provider
	a.closer = closer
	a.plugin = p
	a.mu.Unlock()

	for _, module := range a.Graph.Modules() {
		a.Graph.Invalidate(module)
	}
	closeQuietly(old)
	slog.Info("bridge reloaded", "root", cfg.Bridge.Root, "metadata", cfg.Metadata.Path)
	return nil
}

func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func closeQuietly(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("close metadata provider", "error", err)
	}
}
