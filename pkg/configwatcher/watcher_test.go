package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"helloworld_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfigReloads(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	write := func(days int) {
		body := "jwt:\n  secret: s\nstorage:\n  type: minio\nretention:\n  days: " + string(rune('0'+days)) + "\n"
		require.NoError(t, os.WriteFile(file, []byte(body), 0644))
	}
	write(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, file, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 建立
	time.Sleep(200 * time.Millisecond)
	write(7)

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 7, cfg.Retention.Days)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	assert.NoError(t, <-done)
}
