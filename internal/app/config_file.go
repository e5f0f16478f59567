package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file YAML configuration. File values act
// as defaults; flags the user set explicitly win. Durations are strings in
// time.ParseDuration syntax ("30s", "24h").
type FileConfig struct {
	UserAgent string `yaml:"ua"`
	Timeout   string `yaml:"timeout"`
	Attempts  int    `yaml:"attempts"`

	Cache struct {
		Dir    string `yaml:"dir"`
		MaxAge string `yaml:"maxAge"`
		Clear  bool   `yaml:"clear"`
	} `yaml:"cache"`

	Verbose bool `yaml:"verbose"`
}

// LoadFile reads and decodes a YAML config file.
func LoadFile(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply copies file values into cfg for every flag the user did not set
// explicitly, keyed by flag name via isSet.
func (fc *FileConfig) Apply(cfg *Config, isSet func(name string) bool) error {
	if !isSet("ua") && fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if !isSet("timeout") && fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if !isSet("attempts") && fc.Attempts > 0 {
		cfg.MaxAttempts = fc.Attempts
	}
	if !isSet("cache.dir") && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if !isSet("cache.maxAge") && fc.Cache.MaxAge != "" {
		d, err := time.ParseDuration(fc.Cache.MaxAge)
		if err != nil {
			return fmt.Errorf("config cache.maxAge: %w", err)
		}
		cfg.CacheMaxAge = d
	}
	if !isSet("cache.clear") && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !isSet("v") && fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}
