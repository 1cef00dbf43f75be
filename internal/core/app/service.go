package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gibridge/internal/core/errors"
	"gibridge/internal/core/ports"
	"gibridge/internal/engine/resolver"
	"gibridge/internal/engine/typesys"
	"gibridge/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// queryPath is the pseudo file that declares the namespace of an ad hoc
// query, the way an analyzed file declares the namespaces it imports.
const queryPath = "<query>.py"

type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(app *App) ports.AnalysisService {
	return &analysisService{app: app}
}

func (a *App) AnalysisService() ports.AnalysisService {
	return NewAnalysisService(a)
}

func (s *analysisService) RunScan(ctx context.Context, req ports.ScanRequest) (ports.ScanResult, error) {
	sessionID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "analysisService.RunScan",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.ScanResult{}, err
	}
	if s.app == nil {
		return ports.ScanResult{}, fmt.Errorf("app is required")
	}

	start := time.Now()
	cfg := s.app.CurrentConfig()
	log := slog.With("session", sessionID)

	paths := req.Paths
	if len(paths) == 0 {
		paths = cfg.Scan.Paths
	}
	roots := uniqueScanRoots(paths)
	// Files are processed in path order, so the first file to pin a
	// namespace keeps the pin for the whole session.
	s.app.Plugin().ResetPins()
	files, err := s.app.ScanDirectories(roots, cfg.Scan.ExcludeDirs, cfg.Scan.ExcludeFiles)
	if err != nil {
		return ports.ScanResult{}, errors.AddContext(err, errors.CtxOperation, "scan_directories")
	}
	log.Debug("scan started", "roots", roots, "files", len(files))

	result := ports.ScanResult{SessionID: sessionID}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return ports.ScanResult{}, err
		}
		fd, err := s.app.ProcessFile(path, roots)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("process file %s: %v", path, err))
			continue
		}
		for _, d := range fd.Diagnostics {
			result.Warnings = append(result.Warnings, d.String())
		}
		result.Files = append(result.Files, fd)
	}

	result.FilesScanned = len(files)
	result.Modules = s.app.Graph.BuildOrder()
	result.Duration = time.Since(start)
	observability.SessionDuration.WithLabelValues("scan").Observe(result.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("files.scanned", result.FilesScanned),
		attribute.Int("modules.synthetic", len(result.Modules)),
	)
	log.Info("scan finished", "files", result.FilesScanned, "modules", len(result.Modules), "duration", result.Duration)
	return result, nil
}

// declare registers the namespace of name in the host graph through the
// same import pipeline an analyzed file goes through.
func (s *analysisService) declare(name string) error {
	root := s.app.CurrentConfig().Bridge.Root
	rest, ok := strings.CutPrefix(name, root+".")
	if !ok {
		return nil
	}
	ns, _, _ := strings.Cut(rest, ".")
	if ns == "" {
		return nil
	}
	source := fmt.Sprintf("from %s import %s\n", root, ns)
	file, err := s.app.Parser.ParseFile(queryPath, []byte(source))
	if err != nil {
		return err
	}
	s.app.Graph.AddFile(queryPath, "__query__", s.app.Plugin().AdditionalDependencies(file))
	return nil
}

func (s *analysisService) resolve(ctx context.Context, hook, name string, fn func() resolver.Result) (resolver.Result, error) {
	_, span := observability.Tracer.Start(ctx, "analysisService."+hook,
		trace.WithAttributes(attribute.String("name", name)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return resolver.Result{}, err
	}
	start := time.Now()
	defer func() {
		observability.SessionDuration.WithLabelValues(hook).Observe(time.Since(start).Seconds())
	}()

	if err := s.declare(name); err != nil {
		return resolver.Result{}, errors.AddContext(err, errors.CtxSymbol, name)
	}
	res := fn()
	span.SetAttributes(attribute.String("outcome", res.Outcome.String()))
	return res, nil
}

func (s *analysisService) ResolveType(ctx context.Context, name string) (resolver.Result, error) {
	res, err := s.resolve(ctx, "resolve", name, func() resolver.Result {
		return s.app.Plugin().ResolveTypeForName(name)
	})
	if err == nil {
		s.app.Graph.Store(name, res)
	}
	return res, err
}

func (s *analysisService) ResolveSignature(ctx context.Context, name string) (resolver.Result, error) {
	return s.resolve(ctx, "signature", name, func() resolver.Result {
		return s.app.Plugin().ResolveFunctionSignature(name)
	})
}

// ResolveAttribute looks attr up on an instance of the class owner.
func (s *analysisService) ResolveAttribute(ctx context.Context, owner, attr string) (resolver.Result, error) {
	return s.resolve(ctx, "attr", owner, func() resolver.Result {
		return s.app.Plugin().ResolveAttribute(typesys.Instance(owner), attr)
	})
}

func (s *analysisService) Namespaces(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.app.Provider().Namespaces(), nil
}

func (s *analysisService) Watch(ctx context.Context, paths []string, handler func(ports.WatchUpdate)) error {
	return s.app.Watch(ctx, paths, handler)
}
