package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gibridge_parsing_seconds",
		Help:    "Time spent parsing a Python source file for dynamic imports.",
		Buckets: prometheus.DefBuckets,
	})

	DependencyEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gibridge_dependency_entries_total",
		Help: "Total number of synthetic dependency entries handed to the host.",
	})

	DroppedNamespacesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gibridge_dropped_namespaces_total",
		Help: "Total number of imported namespaces dropped by strict namespace validation.",
	})

	HookOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gibridge_hook_outcomes_total",
		Help: "Resolver hook results by hook and outcome.",
	}, []string{"hook", "outcome"})

	MetadataLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gibridge_metadata_loads_total",
		Help: "Namespace metadata loads by provider source and result.",
	}, []string{"source", "result"})

	MetadataCacheSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gibridge_metadata_cache_entries",
		Help: "Number of namespace symbol maps currently cached by a provider.",
	}, []string{"source"})

	SessionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gibridge_session_seconds",
		Help:    "Time spent on analysis sessions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gibridge_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RescansThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gibridge_rescans_throttled_total",
		Help: "Total number of watch-mode rescans delayed by the rate limiter.",
	})
)
