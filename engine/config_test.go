package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krill-engine/krill/engine/core"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	content := `
name = "test app"
start_width = 640
start_height = 480
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test app", config.Name)
	assert.Equal(t, uint32(640), config.StartWidth)
	assert.Equal(t, uint32(480), config.StartHeight)
	assert.Equal(t, "debug", config.LogLevel)

	// unset fields keep their defaults
	assert.Equal(t, uint32(100), config.StartPosX)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfigBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = [unterminated"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestWatchConfigFiresChangeEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	require.NoError(t, os.WriteFile(path, []byte(`name = "before"`), 0o644))

	core.EventInitialize()
	defer core.EventShutdown()

	seen := ""
	core.EventRegister(core.EVENT_CODE_CONFIG_CHANGED, t, func(ctx core.EventContext) bool {
		seen = ctx.String
		return true
	})
	defer core.EventUnregister(core.EVENT_CODE_CONFIG_CHANGED, t)

	closer, err := WatchConfig(path)
	require.NoError(t, err)
	defer closer()

	require.NoError(t, os.WriteFile(path, []byte(`name = "after"`), 0o644))

	// the watcher enqueues from its own goroutine; drain like the frame
	// loop does until the event lands
	deadline := time.Now().Add(5 * time.Second)
	for seen == "" && time.Now().Before(deadline) {
		core.ProcessEvents()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, path, seen)
}

func TestWatchConfigMissingFile(t *testing.T) {
	_, err := WatchConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("krill")
	assert.Equal(t, "krill", config.Name)
	assert.Equal(t, uint32(1280), config.StartWidth)
	assert.Equal(t, uint32(720), config.StartHeight)
}
