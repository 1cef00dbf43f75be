package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	return finish(&cfg)
}

// LoadOrDefault falls back to defaults when path does not exist. Any other
// read, decode or validation failure is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return finish(&Config{})
	}
	return cfg, err
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)
	ApplyEnvOverrides(cfg)
	normalize(cfg)

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Bridge.Root) == "" {
		cfg.Bridge.Root = "gi.repository"
	}
	if cfg.Bridge.DefaultPriority == 0 {
		cfg.Bridge.DefaultPriority = 10
	}

	if strings.TrimSpace(cfg.Metadata.Source) == "" {
		cfg.Metadata.Source = SourceDir
	}
	if strings.TrimSpace(cfg.Metadata.Path) == "" {
		cfg.Metadata.Path = "./metadata"
	}
	if cfg.Metadata.CacheSize == 0 {
		cfg.Metadata.CacheSize = 64
	}

	if len(cfg.Scan.Paths) == 0 {
		cfg.Scan.Paths = []string{"."}
	}
	if cfg.Scan.ExcludeDirs == nil {
		cfg.Scan.ExcludeDirs = []string{".git", "__pycache__", ".venv"}
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RescansPerSecond == 0 {
		cfg.Watch.RescansPerSecond = 2
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 1
	}
}

func normalize(cfg *Config) {
	cfg.Bridge.Root = strings.TrimSpace(cfg.Bridge.Root)
	cfg.Metadata.Source = strings.ToLower(strings.TrimSpace(cfg.Metadata.Source))
	cfg.Metadata.Path = strings.TrimSpace(cfg.Metadata.Path)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}
