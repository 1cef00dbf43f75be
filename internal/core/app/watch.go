package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gibridge/internal/core/ports"
	"gibridge/internal/core/watcher"
	"gibridge/internal/shared/observability"
	"gibridge/internal/shared/util"

	"github.com/google/uuid"
)

// Watch scans paths once, then re-runs dependency extraction for every
// batch of changed files until ctx is done. Rescans are rate limited.
func (a *App) Watch(ctx context.Context, paths []string, handler func(ports.WatchUpdate)) error {
	if handler == nil {
		return os.ErrInvalid
	}
	cfg := a.CurrentConfig()
	if len(paths) == 0 {
		paths = cfg.Scan.Paths
	}

	initial, err := a.AnalysisService().RunScan(ctx, ports.ScanRequest{Paths: paths})
	if err != nil {
		return err
	}
	handler(ports.WatchUpdate{Result: initial})

	roots := uniqueScanRoots(paths)
	limiter := util.NewLimiter(cfg.Watch.RescansPerSecond, cfg.Watch.Burst)
	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Scan.ExcludeDirs, cfg.Scan.ExcludeFiles, func(changed []string) {
		if !limiter.Allow(1) {
			observability.RescansThrottledTotal.Inc()
			if err := limiter.Wait(ctx, 1); err != nil {
				return
			}
		}
		handler(a.HandleChanges(changed, roots))
	})
	if err != nil {
		return err
	}
	w.SetExtensions(a.Parser.SupportedExtensions())
	if err := w.Watch(watchDirs(roots)); err != nil {
		w.Close()
		return err
	}

	slog.Info("watching for changes", "roots", roots, "debounce", cfg.Watch.Debounce)
	<-ctx.Done()
	return w.Close()
}

func watchDirs(roots []string) []string {
	seen := make(map[string]bool, len(roots))
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		dir := root
		if info, err := os.Stat(root); err == nil && !info.IsDir() {
			dir = filepath.Dir(root)
		}
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	return out
}

// HandleChanges updates the host graph for changed files: removed files are
// dropped, the rest are parsed again.
func (a *App) HandleChanges(paths []string, roots []string) ports.WatchUpdate {
	start := time.Now()
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	slog.Info("detected changes", "count", len(sorted))

	result := ports.ScanResult{SessionID: uuid.NewString()}
	for _, path := range sorted {
		if !a.Parser.IsSupportedPath(path) {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.Plugin().ReleasePins(path)
			a.Graph.RemoveFile(path)
			continue
		}
		fd, err := a.ProcessFile(path, roots)
		if err != nil {
			slog.Warn("failed to re-process file", "path", path, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("process file %s: %v", path, err))
			continue
		}
		for _, d := range fd.Diagnostics {
			result.Warnings = append(result.Warnings, d.String())
		}
		result.Files = append(result.Files, fd)
		result.FilesScanned++
	}

	result.Modules = a.Graph.BuildOrder()
	result.Duration = time.Since(start)
	observability.SessionDuration.WithLabelValues("rescan").Observe(result.Duration.Seconds())
	return ports.WatchUpdate{Changed: sorted, Result: result}
}
