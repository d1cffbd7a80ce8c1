// ============================================================================
// SmartWeb - SmartScript Web Runtime
// ============================================================================
//
// Package:     config
// Description: Server configuration loading from TOML or YAML files
// Author:      Mike Stoffels
// Created:     2026-03-02
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	Server  ServerConfig      `toml:"server" yaml:"server"`
	Logging LoggingConfig     `toml:"logging" yaml:"logging"`
	Mime    map[string]string `toml:"mime" yaml:"mime"`
	Workers map[string]string `toml:"workers" yaml:"workers"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Address          string   `toml:"address" yaml:"address"`
	Domain           string   `toml:"domain" yaml:"domain"`
	Port             int      `toml:"port" yaml:"port"`
	Workers          int      `toml:"workers" yaml:"workers"`
	SessionTimeout   int      `toml:"session_timeout" yaml:"session_timeout"` // seconds
	SweepInterval    Duration `toml:"sweep_interval" yaml:"sweep_interval"`
	DocumentRoot     string   `toml:"document_root" yaml:"document_root"`
	MaxDispatchDepth int      `toml:"max_dispatch_depth" yaml:"max_dispatch_depth"` // 0 = unlimited
	MaxHeaderBytes   int      `toml:"max_header_bytes" yaml:"max_header_bytes"`
	AccessLog        string   `toml:"access_log" yaml:"access_log"` // empty disables the access log
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// defaultMime is merged into the configured mime table for missing extensions
var defaultMime = map[string]string{
	"html": "text/html",
	"htm":  "text/html",
	"txt":  "text/plain",
	"css":  "text/css",
	"js":   "text/javascript",
	"json": "application/json",
	"png":  "image/png",
	"gif":  "image/gif",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Relative document roots are resolved against the config file location
	cfg.Server.DocumentRoot = os.ExpandEnv(cfg.Server.DocumentRoot)
	if cfg.Server.DocumentRoot != "" && !filepath.IsAbs(cfg.Server.DocumentRoot) {
		cfg.Server.DocumentRoot = filepath.Join(filepath.Dir(path), cfg.Server.DocumentRoot)
	}
	cfg.Server.AccessLog = os.ExpandEnv(cfg.Server.AccessLog)

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from the SMARTWEB_CONFIG environment variable
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("SMARTWEB_CONFIG")
	if path == "" {
		// Try default locations
		defaultPaths := []string{
			"./configs/server.toml",
			"./configs/server.yaml",
			"./server.toml",
			filepath.Join(os.Getenv("HOME"), ".config/smartweb/server.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("no config file found, set SMARTWEB_CONFIG or create configs/server.toml")
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "127.0.0.1"
	}
	if c.Server.Domain == "" {
		c.Server.Domain = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5721
	}
	if c.Server.Workers == 0 {
		c.Server.Workers = 10
	}
	if c.Server.SessionTimeout == 0 {
		c.Server.SessionTimeout = 600
	}
	if c.Server.SweepInterval.Duration == 0 {
		c.Server.SweepInterval.Duration = 5 * time.Minute
	}
	if c.Server.DocumentRoot == "" {
		c.Server.DocumentRoot = "./webroot"
	}
	if c.Server.MaxHeaderBytes == 0 {
		c.Server.MaxHeaderBytes = 64 * 1024
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Mime == nil {
		c.Mime = make(map[string]string)
	}
	normalized := make(map[string]string, len(c.Mime))
	for ext, mime := range c.Mime {
		normalized[strings.ToLower(strings.TrimPrefix(ext, "."))] = mime
	}
	for ext, mime := range defaultMime {
		if _, ok := normalized[ext]; !ok {
			normalized[ext] = mime
		}
	}
	c.Mime = normalized

	if c.Workers == nil {
		c.Workers = make(map[string]string)
	}
}

// applyEnv applies environment overrides
func (c *Config) applyEnv() {
	if addr := os.Getenv("SMARTWEB_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if port := os.Getenv("SMARTWEB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if root := os.Getenv("SMARTWEB_DOCROOT"); root != "" {
		c.Server.DocumentRoot = root
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Server.Workers)
	}
	if c.Server.SessionTimeout < 1 {
		return fmt.Errorf("session_timeout must be positive, got %d", c.Server.SessionTimeout)
	}
	if c.Server.MaxDispatchDepth < 0 {
		return fmt.Errorf("max_dispatch_depth must not be negative, got %d", c.Server.MaxDispatchDepth)
	}
	if strings.TrimSpace(c.Server.DocumentRoot) == "" {
		return fmt.Errorf("document_root is required")
	}
	for path := range c.Workers {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("worker path must start with '/': %q", path)
		}
	}
	return nil
}

// ListenAddress returns the host:port string the server binds to
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// SessionTimeout returns the session timeout as a duration
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Server.SessionTimeout) * time.Second
}

// MimeType returns the mime type for a file extension (with or without dot)
func (c *Config) MimeType(ext string) (string, bool) {
	mime, ok := c.Mime[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return mime, ok
}
