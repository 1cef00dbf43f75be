package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: GIBRIDGE_[SECTION]_[KEY] (e.g., GIBRIDGE_METADATA_PATH).
func ApplyEnvOverrides(cfg *Config) {
	// Bridge
	setEnvString(&cfg.Bridge.Root, "GIBRIDGE_BRIDGE_ROOT")
	setEnvInt(&cfg.Bridge.DefaultPriority, "GIBRIDGE_BRIDGE_DEFAULT_PRIORITY")
	setEnvBool(&cfg.Bridge.StrictNamespaces, "GIBRIDGE_BRIDGE_STRICT_NAMESPACES")

	// Metadata
	setEnvString(&cfg.Metadata.Source, "GIBRIDGE_METADATA_SOURCE")
	setEnvString(&cfg.Metadata.Path, "GIBRIDGE_METADATA_PATH")
	setEnvInt(&cfg.Metadata.CacheSize, "GIBRIDGE_METADATA_CACHE_SIZE")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "GIBRIDGE_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RescansPerSecond, "GIBRIDGE_WATCH_RESCANS_PER_SECOND")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "GIBRIDGE_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "GIBRIDGE_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
