package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gibridge/internal/core/app"
	"gibridge/internal/core/config"
	"gibridge/internal/core/errors"
	"gibridge/internal/core/ports"
	"gibridge/internal/engine/resolver"
	"gibridge/internal/shared/observability"
)

// run dispatches one command. Commands other than version and index load
// the config at configPath, falling back to defaults when it is absent.
func run(ctx context.Context, configPath string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(errors.CodeValidationError, "missing command")
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "version":
		fmt.Fprintf(out, "gibridge v%s\n", VERSION)
		return nil
	case "index":
		if len(rest) != 2 {
			return usageError("index <db> <json-dir>")
		}
		n, err := app.IndexMetadata(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "indexed %d namespaces into %s\n", n, rest[0])
		return nil
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	svc := a.AnalysisService()

	switch cmd {
	case "deps":
		return runDeps(ctx, svc, rest, out)
	case "resolve":
		if len(rest) != 1 {
			return usageError("resolve <name>")
		}
		return printResult(out, svc.ResolveType)(ctx, rest[0])
	case "signature":
		if len(rest) != 1 {
			return usageError("signature <name>")
		}
		return printResult(out, svc.ResolveSignature)(ctx, rest[0])
	case "attr":
		if len(rest) != 2 {
			return usageError("attr <class> <attr>")
		}
		res, err := svc.ResolveAttribute(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		writeResult(out, res)
		return nil
	case "namespaces":
		names, err := svc.Namespaces(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	case "watch":
		return runWatch(ctx, a, configPath, rest, out)
	}
	return errors.AddContext(errors.Newf(errors.CodeNotSupported, "unknown command %q", cmd), errors.CtxOperation, cmd)
}

func usageError(form string) error {
	return errors.Newf(errors.CodeValidationError, "usage: gibridge %s", form)
}

func runDeps(ctx context.Context, svc ports.AnalysisService, paths []string, out io.Writer) error {
	res, err := svc.RunScan(ctx, ports.ScanRequest{Paths: paths})
	if err != nil {
		return err
	}
	writeScan(out, res)
	return nil
}

func writeScan(out io.Writer, res ports.ScanResult) {
	for _, fd := range res.Files {
		if len(fd.Entries) == 0 {
			continue
		}
		fmt.Fprintln(out, fd.Path)
		for _, e := range fd.Entries {
			fmt.Fprintf(out, "  (%d, %s, %d)\n", e.Priority, e.Module, e.Line)
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(out, w)
	}
}

func printResult(out io.Writer, hook func(context.Context, string) (resolver.Result, error)) func(context.Context, string) error {
	return func(ctx context.Context, name string) error {
		res, err := hook(ctx, name)
		if err != nil {
			return err
		}
		writeResult(out, res)
		return nil
	}
}

func writeResult(out io.Writer, res resolver.Result) {
	rendered := res.Type.String()
	if res.Signature != nil {
		rendered = res.Signature.String()
	}
	fmt.Fprintf(out, "%s %s: %s\n", res.Outcome, res.Name, rendered)
	for _, d := range res.Diagnostics {
		fmt.Fprintf(out, "  %s\n", d)
	}
}

func runWatch(ctx context.Context, a *app.App, configPath string, paths []string, out io.Writer) error {
	cfg := a.CurrentConfig()
	if cfg.Observability.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Observability.MetricsAddr, a.Health)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(sctx)
		}()
	}

	if _, err := os.Stat(configPath); err == nil {
		cw := config.NewWatcher(configPath, func(next *config.Config) {
			if err := a.Reload(next); err != nil {
				slog.Error("config reload rejected", "error", err)
				return
			}
			slog.Info("config reloaded", "path", configPath)
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config hot reload disabled", "error", err)
		} else {
			defer cw.Stop()
		}
	}

	return a.Watch(ctx, paths, func(u ports.WatchUpdate) {
		if len(u.Changed) > 0 {
			fmt.Fprintf(out, "changed: %d file(s)\n", len(u.Changed))
		}
		writeScan(out, u.Result)
		fmt.Fprintf(out, "modules: %v\n", u.Result.Modules)
	})
}
