package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8, cfg.QueueCapacity)
	assert.InDelta(t, 0.033, cfg.Tolerance, 1e-9)
	assert.InDelta(t, 0.1, cfg.Epsilon, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.WatchdogPeriod)
	assert.InDelta(t, 0.25, cfg.SpeedFloor, 1e-9)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reelplay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queueCapacity: 2\nepsilon: 0.2\n"), 0o644))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))

	assert.Equal(t, 2, cfg.QueueCapacity)
	assert.InDelta(t, 0.2, cfg.Epsilon, 1e-9)
	// Untouched fields keep defaults.
	assert.InDelta(t, 0.033, cfg.Tolerance, 1e-9)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	t.Setenv("REELPLAY_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	cfg := Load()
	assert.Equal(t, Default().QueueCapacity, cfg.QueueCapacity)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REELPLAY_QUEUE_CAPACITY", "3")
	t.Setenv("REELPLAY_EMPTY_GRACE", "500ms")
	t.Setenv("REELPLAY_TOLERANCE", "0.05")

	cfg := Load()
	assert.Equal(t, 3, cfg.QueueCapacity)
	assert.Equal(t, 500*time.Millisecond, cfg.EmptyGrace)
	assert.InDelta(t, 0.05, cfg.Tolerance, 1e-9)
}

func TestClamp(t *testing.T) {
	t.Setenv("REELPLAY_QUEUE_CAPACITY", "0")

	cfg := Load()
	assert.Equal(t, 1, cfg.QueueCapacity)
}
