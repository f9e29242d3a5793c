package input

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"reelplay/pkg/config"
	"reelplay/pkg/player"
)

// Mouse is the sampled mouse state for one tick.
type Mouse struct {
	X, Y  int32
	State uint32
}

// Controls maps per-tick input state onto player commands:
//
//	space        play/pause
//	left/right   seek ±SeekStep seconds
//	up/down      speed ±SpeedStep, floored at SpeedFloor
//	r            restart from the beginning
//	d            toggle the diagnostics overlay
//	esc / q      quit
//	left click   scrub when the click lands on the timeline bar
//
// Interactive seeks share a debounce window so a held arrow key or a jittery
// click does not flood the seek coordinator; the coordinator would coalesce
// them anyway, but debouncing keeps the accepted target the intended one.
type Controls struct {
	cfg   config.Config
	keys  KeyTracker
	mouse MouseTracker

	lastSeek time.Time
	overlay  bool

	now func() time.Time
}

// NewControls builds the control mapping with the configured seek step,
// speed step and debounce window.
func NewControls(cfg config.Config) *Controls {
	return &Controls{
		cfg:   cfg,
		keys:  NewKeyTracker(),
		mouse: NewMouseTracker(),
		now:   time.Now,
	}
}

// OverlayVisible reports whether the diagnostics overlay is toggled on.
func (c *Controls) OverlayVisible() bool {
	return c.overlay
}

// Apply processes one tick of sampled input. timeline is the scrub bar's
// screen rectangle; an empty rectangle disables scrubbing. Returns true when
// the user asked to quit.
func (c *Controls) Apply(p *player.Player, keyState []uint8, m Mouse, timeline sdl.Rect) bool {
	if c.keys.JustPressed(keyState, sdl.SCANCODE_ESCAPE) ||
		c.keys.JustPressed(keyState, sdl.SCANCODE_Q) {
		return true
	}

	if c.keys.JustPressed(keyState, sdl.SCANCODE_SPACE) {
		p.TogglePause()
	}
	if c.keys.JustPressed(keyState, sdl.SCANCODE_UP) {
		p.AdjustSpeed(c.cfg.SpeedStep)
	}
	if c.keys.JustPressed(keyState, sdl.SCANCODE_DOWN) {
		p.AdjustSpeed(-c.cfg.SpeedStep)
	}
	if c.keys.JustPressed(keyState, sdl.SCANCODE_D) {
		c.overlay = !c.overlay
	}

	if c.keys.JustPressed(keyState, sdl.SCANCODE_RIGHT) && c.admitSeek() {
		p.SeekRelative(c.cfg.SeekStep)
	}
	if c.keys.JustPressed(keyState, sdl.SCANCODE_LEFT) && c.admitSeek() {
		p.SeekRelative(-c.cfg.SeekStep)
	}
	if c.keys.JustPressed(keyState, sdl.SCANCODE_R) && c.admitSeek() {
		p.Restart()
	}

	if c.mouse.JustPressed(m.State, sdl.ButtonLMask()) {
		if frac, ok := timelineFraction(m, timeline); ok && c.admitSeek() {
			p.SeekFraction(frac)
		}
	}

	return false
}

// admitSeek applies the shared debounce window; an admitted seek opens a new
// window.
func (c *Controls) admitSeek() bool {
	now := c.now()
	if !c.lastSeek.IsZero() && now.Sub(c.lastSeek) < c.cfg.SeekDebounce {
		return false
	}
	c.lastSeek = now
	return true
}

// timelineFraction maps a click inside the timeline rectangle to a 0..1
// position along it.
func timelineFraction(m Mouse, timeline sdl.Rect) (float64, bool) {
	if timeline.W <= 0 || timeline.H <= 0 {
		return 0, false
	}
	pt := sdl.Point{X: m.X, Y: m.Y}
	if !pt.InRect(&timeline) {
		return 0, false
	}
	return float64(m.X-timeline.X) / float64(timeline.W), true
}
