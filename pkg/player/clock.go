package player

import (
	"math"
	"sync/atomic"
	"time"
)

// Clock tracks the playback position. currentTime advances by wall-clock
// delta times the speed multiplier and only moves discontinuously on seek.
//
// Field ownership: time is written by the render tick and the seek
// coordinator; speed and paused by the input path; seeking by the seek
// coordinator. All fields are single-word atomics readable from any
// goroutine.
type Clock struct {
	timeBits  atomic.Uint64
	speedBits atomic.Uint64
	paused    atomic.Bool
	seeking   atomic.Bool
}

// NewClock returns a paused clock at t=0 with speed 1.0.
func NewClock() *Clock {
	c := &Clock{}
	c.paused.Store(true)
	c.SetSpeed(1.0)
	return c
}

// Now returns the current playback position in seconds.
func (c *Clock) Now() float64 {
	return math.Float64frombits(c.timeBits.Load())
}

// SetTime jumps the playback position. Used by the frame selector (frame
// timestamps) and the seek coordinator (optimistic target).
func (c *Clock) SetTime(t float64) {
	if t < 0 {
		t = 0
	}
	c.timeBits.Store(math.Float64bits(t))
}

// Advance moves the clock forward by dt*speed. It is a no-op while paused
// or while a seek is in flight.
func (c *Clock) Advance(dt time.Duration) {
	if c.paused.Load() || c.seeking.Load() {
		return
	}
	c.SetTime(c.Now() + dt.Seconds()*c.Speed())
}

// Speed returns the playback speed multiplier.
func (c *Clock) Speed() float64 {
	return math.Float64frombits(c.speedBits.Load())
}

// SetSpeed updates the speed multiplier. Non-positive values are ignored.
func (c *Clock) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	c.speedBits.Store(math.Float64bits(speed))
}

// Paused reports whether the clock is frozen.
func (c *Clock) Paused() bool {
	return c.paused.Load()
}

// SetPaused freezes or resumes the clock.
func (c *Clock) SetPaused(paused bool) {
	c.paused.Store(paused)
}

// Seeking reports whether a seek/restart is in flight.
func (c *Clock) Seeking() bool {
	return c.seeking.Load()
}

// SetSeeking raises or lowers the in-flight seek flag.
func (c *Clock) SetSeeking(seeking bool) {
	c.seeking.Store(seeking)
}
