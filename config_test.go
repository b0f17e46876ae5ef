package videofx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 150*time.Millisecond, cfg.PendingRevealDelay)
	assert.Equal(t, 30, cfg.DegradedThreshold)
	assert.Less(t, cfg.BlurLightRadius, cfg.BlurNormalRadius)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "effects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"pending_reveal_delay: 200ms\ndegraded_threshold: 10\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 200*time.Millisecond, cfg.PendingRevealDelay)
	assert.Equal(t, 10, cfg.DegradedThreshold)

	// Unset fields fall back to defaults.
	assert.Equal(t, DefaultConfig().BlurLightRadius, cfg.BlurLightRadius)
	assert.Equal(t, DefaultConfig().WarmupTimeout, cfg.WarmupTimeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/effects.yaml")
	assert.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "effects.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pending_reveal_delay: [\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative reveal delay", mutate: func(c *Config) { c.PendingRevealDelay = -time.Second }},
		{name: "zero threshold", mutate: func(c *Config) { c.DegradedThreshold = 0 }},
		{name: "inverted radii", mutate: func(c *Config) { c.BlurLightRadius = 9; c.BlurNormalRadius = 2 }},
		{name: "zero warmup timeout", mutate: func(c *Config) { c.WarmupTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
