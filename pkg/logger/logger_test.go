package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"helloworld_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readLines(t *testing.T, file string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var lines []map[string]interface{}
	for _, l := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestInitLoggerWritesServiceAndLevel(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })
	file := filepath.Join(t.TempDir(), "app.log")

	InitLogger(&config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{Level: "warn", Service: "hwc-test", File: file, MaxSizeMB: 1},
	})
	Log.Info("dropped")
	Log.Warn("kept", zap.String("lang", "en"))

	lines := readLines(t, file)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "hwc-test", lines[0]["service"])
	assert.Equal(t, "en", lines[0]["lang"])

	// 热更新级别
	require.NoError(t, SetLevel("info", "release"))
	Log.Info("now visible")
	lines = readLines(t, file)
	require.Len(t, lines, 2)
	assert.Equal(t, "now visible", lines[1]["msg"])

	assert.Error(t, SetLevel("loud", "release"))
}

func TestInitLoggerDefaultLevelFollowsMode(t *testing.T) {
	t.Cleanup(func() { Log = zap.NewNop() })
	file := filepath.Join(t.TempDir(), "app.log")

	InitLogger(&config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Log:    config.LogConfig{Level: "bogus", File: file},
	})
	Log.Debug("debug line")

	lines := readLines(t, file)
	require.Len(t, lines, 2)
	assert.Equal(t, "invalid log level, using default", lines[0]["msg"])
	assert.Equal(t, "debug line", lines[1]["msg"])
	assert.NotContains(t, lines[1], "service")
}
