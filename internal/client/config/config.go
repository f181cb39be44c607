// Package config handles configuration for the client, layering defaults,
// an optional JSON file, and command-line flags.
package config

import (
	"os"
	"path/filepath"
)

// Config holds runtime settings for the Daybook CLI.
//
// Fields:
//   - ServerURL: base URL of the sync server.
//   - DataDir: directory holding the local database, staged photos and the
//     session token.
type Config struct {
	ServerURL string
	DataDir   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.DataDir = filepath.Join(home, ".daybook")
}

// DatabasePath returns the SQLite file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "daybook.db")
}

// MediaDir returns the photo staging directory.
func (c *Config) MediaDir() string {
	return filepath.Join(c.DataDir, "images")
}

// TokenPath returns where the session token is kept.
func (c *Config) TokenPath() string {
	return filepath.Join(c.DataDir, "token")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
