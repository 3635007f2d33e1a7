package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfig(t, `
server:
  mode: debug
jwt:
  secret: short
  expire_hours: 2
storage:
  type: local
  local_path: `+uploads+`
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 200, cfg.TTS.ChunkChars)
	assert.Contains(t, cfg.TTS.Languages, "zh-CN")
	assert.Equal(t, 30, cfg.Retention.Days)
	assert.Equal(t, 64*1024, cfg.CodeRunner.MaxCodeBytes)
	assert.Equal(t, LogConfig{Service: "helloworld-classes", File: "logs/app.log", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30, Console: true}, cfg.Log)
	assert.Equal(t, 50, cfg.Redis.PoolSize)
	assert.Equal(t, 5, cfg.Redis.DialTimeoutSeconds)
	assert.DirExists(t, uploads)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
jwt:
  secret: short
storage:
  type: minio
`)
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("CODE_RUNNER_URL", "http://piston.local/api/v2")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "http://piston.local/api/v2", cfg.CodeRunner.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigReleaseRequiresStrongSecret(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: too-short
storage:
  type: minio
`)
	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is too short")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
