package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Server.Address != "127.0.0.1" {
		t.Errorf("Server.Address = %v, want 127.0.0.1", cfg.Server.Address)
	}
	if cfg.Server.Port != 5721 {
		t.Errorf("Server.Port = %v, want 5721", cfg.Server.Port)
	}
	if cfg.Server.Workers != 10 {
		t.Errorf("Server.Workers = %v, want 10", cfg.Server.Workers)
	}
	if cfg.Server.SessionTimeout != 600 {
		t.Errorf("Server.SessionTimeout = %v, want 600", cfg.Server.SessionTimeout)
	}
	if cfg.Server.SweepInterval.Duration != 5*time.Minute {
		t.Errorf("Server.SweepInterval = %v, want 5m", cfg.Server.SweepInterval.Duration)
	}
	if cfg.Server.MaxDispatchDepth != 0 {
		t.Errorf("Server.MaxDispatchDepth = %v, want 0 (unlimited)", cfg.Server.MaxDispatchDepth)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %v, want info", cfg.Logging.Level)
	}
	if mime, _ := cfg.MimeType("html"); mime != "text/html" {
		t.Errorf("MimeType(html) = %v, want text/html", mime)
	}
	if cfg.SessionTimeout() != 10*time.Minute {
		t.Errorf("SessionTimeout() = %v, want 10m", cfg.SessionTimeout())
	}
}

func TestConfig_MimeType(t *testing.T) {
	cfg := &Config{Mime: map[string]string{".TXT": "text/x-custom"}}
	cfg.applyDefaults()

	tests := []struct {
		ext      string
		expected string
		found    bool
	}{
		{"txt", "text/x-custom", true},
		{".txt", "text/x-custom", true},
		{"PNG", "image/png", true},
		{"exe", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			mime, ok := cfg.MimeType(tt.ext)
			if ok != tt.found || mime != tt.expected {
				t.Errorf("MimeType(%q) = (%q, %v), want (%q, %v)", tt.ext, mime, ok, tt.expected, tt.found)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"no workers", func(c *Config) { c.Server.Workers = -1 }, true},
		{"no timeout", func(c *Config) { c.Server.SessionTimeout = -5 }, true},
		{"negative depth", func(c *Config) { c.Server.MaxDispatchDepth = -1 }, true},
		{"blank root", func(c *Config) { c.Server.DocumentRoot = "  " }, true},
		{"relative worker path", func(c *Config) { c.Workers["hello"] = "HelloWorker" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/server.toml")
	if err == nil {
		t.Error("Load() expected error for non-existent file")
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "server.toml")

	configContent := `
[server]
address = "0.0.0.0"
domain = "www.example.com"
port = 8088
workers = 4
session_timeout = 120
sweep_interval = "30s"
document_root = "webroot"
max_dispatch_depth = 16

[logging]
level = "debug"
format = "text"

[mime]
zip = "application/zip"

[workers]
"/hello" = "HelloWorker"
"/cw" = "CircleWorker"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Domain != "www.example.com" {
		t.Errorf("Server.Domain = %v, want www.example.com", cfg.Server.Domain)
	}
	if cfg.ListenAddress() != "0.0.0.0:8088" {
		t.Errorf("ListenAddress() = %v, want 0.0.0.0:8088", cfg.ListenAddress())
	}
	if cfg.Server.Workers != 4 {
		t.Errorf("Server.Workers = %v, want 4", cfg.Server.Workers)
	}
	if cfg.Server.SweepInterval.Duration != 30*time.Second {
		t.Errorf("Server.SweepInterval = %v, want 30s", cfg.Server.SweepInterval.Duration)
	}
	if cfg.Server.DocumentRoot != filepath.Join(tmpDir, "webroot") {
		t.Errorf("Server.DocumentRoot = %v, want resolved against config dir", cfg.Server.DocumentRoot)
	}
	if cfg.Server.MaxDispatchDepth != 16 {
		t.Errorf("Server.MaxDispatchDepth = %v, want 16", cfg.Server.MaxDispatchDepth)
	}
	if mime, _ := cfg.MimeType("zip"); mime != "application/zip" {
		t.Errorf("MimeType(zip) = %v, want application/zip", mime)
	}
	if mime, _ := cfg.MimeType("html"); mime != "text/html" {
		t.Errorf("MimeType(html) = %v, want default text/html", mime)
	}
	if cfg.Workers["/hello"] != "HelloWorker" {
		t.Errorf("Workers[/hello] = %v, want HelloWorker", cfg.Workers["/hello"])
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %v, want text", cfg.Logging.Format)
	}
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "server.yaml")

	configContent := `
server:
  port: 9090
  session_timeout: 30
  sweep_interval: 1m
  document_root: /srv/www
workers:
  /calc: SumWorker
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %v, want 9090", cfg.Server.Port)
	}
	if cfg.Server.SweepInterval.Duration != time.Minute {
		t.Errorf("Server.SweepInterval = %v, want 1m", cfg.Server.SweepInterval.Duration)
	}
	if cfg.Server.DocumentRoot != "/srv/www" {
		t.Errorf("Server.DocumentRoot = %v, want /srv/www", cfg.Server.DocumentRoot)
	}
	if cfg.Workers["/calc"] != "SumWorker" {
		t.Errorf("Workers[/calc] = %v, want SumWorker", cfg.Workers["/calc"])
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "server.toml")

	if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for invalid TOML")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "server.toml")

	if err := os.WriteFile(configPath, []byte("[server]\nport = 8000\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("SMARTWEB_PORT", "8123")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %v, want 8123 from env", cfg.Server.Port)
	}
}
