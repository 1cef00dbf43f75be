package config

import (
	"time"
)

// DefaultFile is looked up in the working directory when -config is not set.
const DefaultFile = "gibridge.toml"

type Config struct {
	Version       int           `toml:"version"`
	Bridge        Bridge        `toml:"bridge"`
	Metadata      Metadata      `toml:"metadata"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Bridge struct {
	Root             string `toml:"root"`
	DefaultPriority  int    `toml:"default_priority"`
	StrictNamespaces bool   `toml:"strict_namespaces"`
}

type Metadata struct {
	Source    string `toml:"source"` // dir | sqlite
	Path      string `toml:"path"`
	CacheSize int    `toml:"cache_size"`
}

type Scan struct {
	Paths        []string `toml:"paths"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
}

type Watch struct {
	Debounce         time.Duration `toml:"debounce"`
	RescansPerSecond float64       `toml:"rescans_per_second"`
	Burst            int           `toml:"burst"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

const (
	SourceDir    = "dir"
	SourceSQLite = "sqlite"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
