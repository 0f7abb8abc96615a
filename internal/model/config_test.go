package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	def := DefaultAppConfig()
	assert.Equal(t, def.Storage, cfg.Storage)
	assert.Equal(t, "gothamTasks", cfg.Storage.Key)
	assert.Equal(t, 1024, cfg.AI.MaxTokens)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: redis
  redis_addr: 10.0.0.5:6379
  key: ""
ai:
  max_tokens: 300
log:
  level: debug
`), 0o644))

	t.Setenv("TASKBOARD_AI_MODEL", "claude-test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, StorageDriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "10.0.0.5:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, DefaultStorageKey, cfg.Storage.Key)
	assert.Equal(t, 300, cfg.AI.MaxTokens)
	assert.Equal(t, "claude-test", cfg.AI.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Storage.Path = "/tmp/board.db"
	cfg.Display.Theme = "dark"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/board.db", loaded.Storage.Path)
	assert.Equal(t, "dark", loaded.Display.Theme)
}
