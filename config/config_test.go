package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
server:
  port: "9090"
data:
  dir: ./fixtures
  watch: true
storage:
  type: redis
  redis_url: redis://localhost:6379/1
playback:
  progress_interval: 10s
  share_base_url: https://mixes.example.com
ui:
  modal_close_grace: 150ms
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "./fixtures", cfg.Data.Dir)
	assert.True(t, cfg.Data.Watch)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Storage.RedisURL)
	assert.Equal(t, 10*time.Second, cfg.Playback.ProgressInterval.Std())
	assert.Equal(t, "https://mixes.example.com", cfg.Playback.ShareBaseURL)
	assert.Equal(t, 150*time.Millisecond, cfg.UI.ModalCloseGrace.Std())

	// Untouched fields fall back to defaults
	assert.Equal(t, 3*time.Second, cfg.Playback.ShareMessageTTL.Std())
	assert.Equal(t, 2, cfg.Playback.TrackTolerance)
	assert.Equal(t, "mixplayer", cfg.Storage.Prefix)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "data", cfg.Data.Dir)
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("non_existent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
server:
  port: "8080"
invalid_yaml: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad_duration.yaml")
	configContent := `
playback:
  progress_interval: soon
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}
