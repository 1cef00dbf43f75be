package app

import (
	"context"
	"fmt"

	"gibridge/internal/shared/observability"
)

// Health reports "degraded" when the provider lists no namespace, since
// every hook would then defer or miss.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:  "up",
		Details: make(map[string]string),
	}
	if err := ctx.Err(); err != nil {
		status.Status = "down"
		status.Details["context"] = err.Error()
		return status
	}

	cfg := a.CurrentConfig()
	namespaces := a.Provider().Namespaces()
	status.Namespaces = len(namespaces)
	status.Details["metadata"] = fmt.Sprintf("%s %s", cfg.Metadata.Source, cfg.Metadata.Path)
	status.Details["graph"] = fmt.Sprintf("ok (%d files, %d modules)", a.Graph.FileCount(), a.Graph.ModuleCount())
	if len(namespaces) == 0 {
		status.Status = "degraded"
		status.Details["namespaces"] = "no namespace metadata available"
	}
	return status
}
