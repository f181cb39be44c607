package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.NotEmpty(t, c.DataDir)
	assert.Equal(t, ".daybook", filepath.Base(c.DataDir))
}

func TestDerivedPaths(t *testing.T) {
	c := Config{DataDir: "/data/daybook"}

	assert.Equal(t, filepath.Join("/data/daybook", "daybook.db"), c.DatabasePath())
	assert.Equal(t, filepath.Join("/data/daybook", "images"), c.MediaDir())
	assert.Equal(t, filepath.Join("/data/daybook", "token"), c.TokenPath())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerURL)
}
