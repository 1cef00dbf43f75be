package app

import (
	"context"
	"log/slog"
	"time"

	"gibridge/internal/core/errors"
	"gibridge/internal/engine/metadata"
	"gibridge/internal/shared/observability"
	"gibridge/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// IndexMetadata imports every namespace document of jsonDir into the SQLite
// store at dbPath, creating it when needed.
func IndexMetadata(ctx context.Context, dbPath, jsonDir string) (int, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.IndexMetadata",
		trace.WithAttributes(attribute.String("db", dbPath), attribute.String("dir", jsonDir)))
	defer span.End()

	start := time.Now()
	if err := util.EnsureParentDir(dbPath); err != nil {
		return 0, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "create database directory"), errors.CtxPath, dbPath)
	}
	store, err := metadata.OpenStore(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	n, err := store.ImportDir(ctx, jsonDir)
	if err != nil {
		return n, err
	}
	observability.SessionDuration.WithLabelValues("index").Observe(time.Since(start).Seconds())
	slog.Info("metadata indexed", "db", dbPath, "dir", jsonDir, "documents", n)
	return n, nil
}
