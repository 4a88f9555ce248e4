// Package config handles YAML configuration loading and merging.
//
// Configuration resolves in two layers: packaged defaults, then an optional
// user override file. Consumers receive a fully-resolved Config by
// construction; nothing in the runner path reads configuration globally.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is inserted into requests that would otherwise go out
	// without a User-Agent; some servers reject bare requests.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultAccept is inserted when a request lacks an Accept header.
	DefaultAccept = "application/json, text/plain, */*"
)

// Config is the root configuration structure.
type Config struct {
	// DefaultHeaders are applied to every request that does not set them.
	DefaultHeaders map[string]string `yaml:"default_headers"`

	// ComprehensiveHeaders imitate a full browser header set; used by the
	// capture command behind a flag.
	ComprehensiveHeaders map[string]string `yaml:"comprehensive_headers"`

	DefaultTimeout      time.Duration `yaml:"default_timeout"`
	OutputDir           string        `yaml:"output_dir"`
	AutoCreateOutputDir bool          `yaml:"auto_create_output_dir"`

	// RetryBackoff is the fixed pause between request retry attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// RequestsPerSecond caps client dispatch rate. 0 means uncapped.
	RequestsPerSecond int `yaml:"requests_per_second"`
}

// Default returns the packaged default configuration.
func Default() *Config {
	return &Config{
		DefaultHeaders: map[string]string{
			"User-Agent": DefaultUserAgent,
			"Accept":     DefaultAccept,
		},
		ComprehensiveHeaders: map[string]string{
			"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
			"accept-language":           "en-GB,en-US;q=0.9,en;q=0.8",
			"cache-control":             "no-cache",
			"pragma":                    "no-cache",
			"sec-ch-ua":                 `"Not;A=Brand";v="99", "Google Chrome";v="139", "Chromium";v="139"`,
			"sec-ch-ua-mobile":          "?0",
			"sec-ch-ua-platform":        "Windows",
			"sec-fetch-dest":            "document",
			"sec-fetch-mode":            "navigate",
			"sec-fetch-site":            "none",
			"sec-fetch-user":            "?1",
			"upgrade-insecure-requests": "1",
		},
		DefaultTimeout:      10 * time.Second,
		OutputDir:           "output",
		AutoCreateOutputDir: true,
		RetryBackoff:        time.Second,
	}
}

// Load reads a config file and overlays it onto the packaged defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := cfg.overlay(data); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadUser returns the defaults overlaid with the user config file, if one
// exists. A missing or unreadable user file yields the plain defaults.
func LoadUser() *Config {
	cfg := Default()
	path, err := UserConfigPath()
	if err != nil {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	// An invalid user config falls back to defaults rather than failing.
	if err := cfg.overlay(data); err != nil {
		return Default()
	}
	return cfg
}

// UserConfigPath returns the location of the user override file.
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "headerflow", "config.yaml"), nil
}

// fileConfig mirrors Config with optional fields so an override file only
// replaces the keys it names.
type fileConfig struct {
	DefaultHeaders       map[string]string `yaml:"default_headers"`
	ComprehensiveHeaders map[string]string `yaml:"comprehensive_headers"`
	DefaultTimeout       *time.Duration    `yaml:"default_timeout"`
	OutputDir            *string           `yaml:"output_dir"`
	AutoCreateOutputDir  *bool             `yaml:"auto_create_output_dir"`
	RetryBackoff         *time.Duration    `yaml:"retry_backoff"`
	RequestsPerSecond    *int              `yaml:"requests_per_second"`
}

func (c *Config) overlay(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.DefaultHeaders != nil {
		c.DefaultHeaders = fc.DefaultHeaders
	}
	if fc.ComprehensiveHeaders != nil {
		c.ComprehensiveHeaders = fc.ComprehensiveHeaders
	}
	if fc.DefaultTimeout != nil {
		c.DefaultTimeout = *fc.DefaultTimeout
	}
	if fc.OutputDir != nil {
		c.OutputDir = *fc.OutputDir
	}
	if fc.AutoCreateOutputDir != nil {
		c.AutoCreateOutputDir = *fc.AutoCreateOutputDir
	}
	if fc.RetryBackoff != nil {
		c.RetryBackoff = *fc.RetryBackoff
	}
	if fc.RequestsPerSecond != nil {
		c.RequestsPerSecond = *fc.RequestsPerSecond
	}
	return nil
}

// UserAgent returns the configured default User-Agent.
func (c *Config) UserAgent() string {
	return c.headerDefault("user-agent", DefaultUserAgent)
}

// Accept returns the configured default Accept header.
func (c *Config) Accept() string {
	return c.headerDefault("accept", DefaultAccept)
}

func (c *Config) headerDefault(name, fallback string) string {
	for k, v := range c.DefaultHeaders {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return fallback
}

// Dump renders the configuration as YAML.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
