package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"reelplay/pkg/config"
	"reelplay/pkg/player"
)

func keyState(codes ...sdl.Scancode) []uint8 {
	state := make([]uint8, sdl.NUM_SCANCODES)
	for _, c := range codes {
		state[c] = 1
	}
	return state
}

func TestKeyTrackerFiresOnceWhileHeld(t *testing.T) {
	tr := NewKeyTracker()

	held := keyState(sdl.SCANCODE_SPACE)
	assert.True(t, tr.JustPressed(held, sdl.SCANCODE_SPACE))
	assert.False(t, tr.JustPressed(held, sdl.SCANCODE_SPACE))
	assert.False(t, tr.JustPressed(held, sdl.SCANCODE_SPACE))

	assert.False(t, tr.JustPressed(keyState(), sdl.SCANCODE_SPACE))
	assert.True(t, tr.JustPressed(held, sdl.SCANCODE_SPACE))
}

func TestMouseTrackerFiresOnceWhileHeld(t *testing.T) {
	tr := NewMouseTracker()

	assert.True(t, tr.JustPressed(sdl.ButtonLMask(), sdl.ButtonLMask()))
	assert.False(t, tr.JustPressed(sdl.ButtonLMask(), sdl.ButtonLMask()))
	assert.False(t, tr.JustPressed(0, sdl.ButtonLMask()))
	assert.True(t, tr.JustPressed(sdl.ButtonLMask(), sdl.ButtonLMask()))
}

func TestSeekDebounceWindow(t *testing.T) {
	cfg := config.Default()
	cfg.SeekDebounce = 250 * time.Millisecond
	c := NewControls(cfg)

	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	assert.True(t, c.admitSeek())
	assert.False(t, c.admitSeek(), "second seek inside the window is rejected")

	now = now.Add(100 * time.Millisecond)
	assert.False(t, c.admitSeek())

	now = now.Add(200 * time.Millisecond)
	assert.True(t, c.admitSeek(), "window has elapsed")
	assert.False(t, c.admitSeek(), "an admitted seek opens a new window")
}

func TestTimelineFraction(t *testing.T) {
	bar := sdl.Rect{X: 100, Y: 500, W: 200, H: 20}

	frac, ok := timelineFraction(Mouse{X: 150, Y: 510}, bar)
	assert.True(t, ok)
	assert.InDelta(t, 0.25, frac, 1e-9)

	_, ok = timelineFraction(Mouse{X: 150, Y: 400}, bar)
	assert.False(t, ok, "click above the bar must not scrub")

	_, ok = timelineFraction(Mouse{X: 150, Y: 510}, sdl.Rect{})
	assert.False(t, ok, "empty rectangle disables scrubbing")
}

func TestApplyTogglesOverlayAndQuits(t *testing.T) {
	c := NewControls(config.Default())
	p := player.New("missing.mp4", config.Default())

	assert.False(t, c.OverlayVisible())
	assert.False(t, c.Apply(p, keyState(sdl.SCANCODE_D), Mouse{}, sdl.Rect{}))
	assert.True(t, c.OverlayVisible())
	assert.False(t, c.Apply(p, keyState(), Mouse{}, sdl.Rect{}))
	assert.False(t, c.Apply(p, keyState(sdl.SCANCODE_D), Mouse{}, sdl.Rect{}))
	assert.False(t, c.OverlayVisible())

	assert.True(t, c.Apply(p, keyState(sdl.SCANCODE_ESCAPE), Mouse{}, sdl.Rect{}))
}
