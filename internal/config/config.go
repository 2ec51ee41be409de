// Package config loads the YAML configuration shared by the CLI and the HTTP
// server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/edesteves10/contrat-cond/pkg/debounce"
	"github.com/edesteves10/contrat-cond/pkg/export"
	"github.com/edesteves10/contrat-cond/pkg/lookup"
)

// Config is the full application configuration.
type Config struct {
	Lookup Lookup         `yaml:"lookup"`
	Export export.Options `yaml:"export"`
	Prefs  Prefs          `yaml:"prefs"`
	Server Server         `yaml:"server"`
	Log    Log            `yaml:"log"`
}

// Lookup configures the CNPJ/CEP services.
type Lookup struct {
	CNPJURL   string        `yaml:"cnpj_url"`
	CEPURL    string        `yaml:"cep_url"`
	Delay     time.Duration `yaml:"delay"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cache_size"`
}

// Prefs locates the preferences file.
type Prefs struct {
	Path string `yaml:"path"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `yaml:"addr"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Lookup: Lookup{
			CNPJURL:   lookup.DefaultCNPJURL,
			CEPURL:    lookup.DefaultCEPURL,
			Delay:     debounce.DefaultDelay,
			Timeout:   lookup.DefaultTimeout,
			CacheSize: 128,
		},
		Export: export.DefaultOptions(),
		Prefs:  Prefs{Path: "contratcond-prefs.yaml"},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("config: %s not found: %w", path, err)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes raw YAML over the defaults and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Lookup.Delay < 0 {
		return fmt.Errorf("config: lookup.delay must not be negative")
	}
	if c.Lookup.Timeout < 0 {
		return fmt.Errorf("config: lookup.timeout must not be negative")
	}
	if c.Lookup.CacheSize < 0 {
		return fmt.Errorf("config: lookup.cache_size must not be negative")
	}
	normalized, err := c.Export.Normalize()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Export = normalized
	return nil
}
