package config

import (
	"fmt"
	"net"
	"strings"

	"gibridge/internal/shared/util"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateBridge(cfg *Config) error {
	if !util.IsDottedIdentifier(cfg.Bridge.Root) {
		return fmt.Errorf("bridge.root must be a dotted identifier such as gi.repository, got %q", cfg.Bridge.Root)
	}
	if cfg.Bridge.DefaultPriority <= 0 {
		return fmt.Errorf("bridge.default_priority must be positive, got %d", cfg.Bridge.DefaultPriority)
	}
	return nil
}

func validateMetadata(cfg *Config) error {
	switch cfg.Metadata.Source {
	case SourceDir, SourceSQLite:
	default:
		return fmt.Errorf("metadata.source must be one of: dir, sqlite")
	}
	if cfg.Metadata.Path == "" {
		return fmt.Errorf("metadata.path must not be empty")
	}
	if cfg.Metadata.CacheSize < 0 {
		return fmt.Errorf("metadata.cache_size must be >= 0, got %d", cfg.Metadata.CacheSize)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for i, path := range cfg.Scan.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("scan.paths[%d] must not be empty", i)
		}
	}
	for i, pattern := range cfg.Scan.ExcludeDirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("scan.exclude_dirs[%d] %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Scan.ExcludeFiles {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("scan.exclude_files[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.RescansPerSecond < 0 {
		return fmt.Errorf("watch.rescans_per_second must be >= 0, got %g", cfg.Watch.RescansPerSecond)
	}
	if cfg.Watch.Burst < 1 {
		return fmt.Errorf("watch.burst must be >= 1, got %d", cfg.Watch.Burst)
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("observability.metrics_addr %q: %w", addr, err)
		}
	}
	return nil
}

// Validate reports every problem in cfg rather than stopping at the first.
func Validate(cfg *Config) []error {
	var errs []error

	for _, check := range []func(*Config) error{
		validateVersion,
		validateBridge,
		validateMetadata,
		validateScan,
		validateWatch,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
