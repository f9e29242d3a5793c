package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdogRestartsOnEmptyQueue(t *testing.T) {
	script := newSourceScript(100)
	cfg := testConfig()
	cfg.EmptyGrace = 20 * time.Millisecond
	p := newTestPlayer(t, script, cfg)
	require.NoError(t, p.Play())

	// The session stays alive but produces nothing: a wedged decoder.
	p.Tick(0) // starts the empty-queue timer
	time.Sleep(40 * time.Millisecond)
	p.Tick(0)

	waitSeekDone(t, p)
	assert.Equal(t, 2, script.openCount(), "stall should trigger a restart")
	assert.Equal(t, uint64(1), p.stallRestarts.Load())
}

func TestWatchdogRestartsOnPresentationDrift(t *testing.T) {
	script := newSourceScript(100)
	cfg := testConfig()
	cfg.EmptyGrace = 50 * time.Millisecond
	cfg.DriftThreshold = 0.5
	p := newTestPlayer(t, script, cfg)
	require.NoError(t, p.Play())

	// A queued far-future frame keeps the empty-queue condition quiet; the
	// clock has run 10s past the last presented frame (none yet).
	p.queue.Offer(scriptFrame(1000))
	p.clock.SetTime(10)
	p.Tick(0)

	waitSeekDone(t, p)
	require.Equal(t, 2, script.openCount())
	assert.InDelta(t, 10.0, script.openOffsets()[1], 0.1, "restart resumes at the stalled position")
	assert.Equal(t, uint64(1), p.stallRestarts.Load())
}

func TestWatchdogDriftSuppressedNearEndOfStream(t *testing.T) {
	script := newSourceScript(10)
	cfg := testConfig()
	cfg.EmptyGrace = 50 * time.Millisecond
	cfg.DriftThreshold = 0.5
	p := newTestPlayer(t, script, cfg)
	require.NoError(t, p.Play())
	script.finish(0)

	// Within one grace interval of the stream end, starvation is expected.
	p.queue.Offer(scriptFrame(1000))
	p.clock.SetTime(9.96)
	p.Tick(0)

	assert.Equal(t, 1, script.openCount())
	assert.Equal(t, uint64(0), p.stallRestarts.Load())
}

func TestWatchdogIdleWhilePaused(t *testing.T) {
	script := newSourceScript(100)
	cfg := testConfig()
	cfg.EmptyGrace = time.Millisecond
	p := newTestPlayer(t, script, cfg)
	require.NoError(t, p.Initialize())
	script.finish(0)

	p.Tick(0)
	time.Sleep(10 * time.Millisecond)
	p.Tick(0)

	assert.Equal(t, 1, script.openCount(), "no restarts while paused")
	assert.Equal(t, uint64(0), p.stallRestarts.Load())
}

func TestWatchdogIdleWhileRestartInFlight(t *testing.T) {
	script := newSourceScript(100)
	cfg := testConfig()
	cfg.EmptyGrace = time.Millisecond
	cfg.SettleDelay = 50 * time.Millisecond
	p := newTestPlayer(t, script, cfg)
	require.NoError(t, p.Play())
	script.finish(0)

	require.True(t, p.RequestSeek(5))

	// Poke the stall check repeatedly while the restart worker runs; the
	// coordinator must absorb it all into the single in-flight restart.
	for i := 0; i < 10; i++ {
		p.checkStall()
		time.Sleep(2 * time.Millisecond)
	}

	waitSeekDone(t, p)
	assert.Equal(t, 2, script.openCount())
	assert.Equal(t, uint64(0), p.stallRestarts.Load())
}
