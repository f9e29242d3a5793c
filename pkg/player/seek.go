package player

import (
	"math"
	"time"
)

// RequestSeek asks for playback to restart at target seconds. The
// coordinator is a two-state machine (Idle, RestartInFlight): a request
// arriving while a restart is in flight is silently dropped — at most one
// restart proceeds and targets are never queued. Returns whether the
// request was accepted.
//
// An accepted request immediately jumps the clock to the target so the UI
// stays responsive while the worker tears down the old decode session,
// clears the queue and starts a new session at the target.
func (p *Player) RequestSeek(target float64) bool {
	if !p.initialized || p.disposed.Load() {
		return false
	}
	target = p.clampTarget(target)

	if !p.seekInFlight.CompareAndSwap(false, true) {
		p.log.Debug().Float64("target", target).Msg("seek dropped, restart in flight")
		return false
	}

	// Leaving end-of-stream via seek resumes playback.
	duration := p.duration()
	resume := duration > 0 && p.clock.Now() >= duration

	p.clock.SetSeeking(true)
	p.clock.SetTime(target)
	p.lastFrameBits.Store(math.Float64bits(target))

	// Invalidate the current generation right away: frames still trickling
	// out of the old session must not reach the queue.
	p.generation.Add(1)

	p.log.Info().Float64("target", target).Msg("seek accepted")
	go p.restartWorker(target, resume)
	return true
}

// SeekRelative seeks by a signed offset from the current position.
func (p *Player) SeekRelative(delta float64) bool {
	return p.RequestSeek(p.clock.Now() + delta)
}

// SeekFraction seeks to a 0..1 position on the timeline, e.g. from a
// scrub-bar click. A no-op when the duration is unknown.
func (p *Player) SeekFraction(frac float64) bool {
	duration := p.duration()
	if duration <= 0 {
		return false
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return p.RequestSeek(frac * duration)
}

// Restart seeks back to the beginning.
func (p *Player) Restart() bool {
	return p.RequestSeek(0)
}

func (p *Player) clampTarget(target float64) float64 {
	if target < 0 {
		return 0
	}
	if duration := p.duration(); duration > 0 && target > duration {
		return duration
	}
	return target
}

// restartWorker runs the stop/clear/start sequence off the render loop.
// Every exit path returns the coordinator to Idle; a wedged teardown or a
// failed session start must never permanently refuse further seeks.
func (p *Player) restartWorker(target float64, resume bool) {
	defer func() {
		p.clock.SetSeeking(false)
		p.seekInFlight.Store(false)
	}()

	p.stopSession()
	p.queue.Clear()
	p.queueEmptySince.Store(0)

	// Brief settle between teardown and the replacement session.
	time.Sleep(p.cfg.SettleDelay)

	if p.disposed.Load() {
		return
	}

	if err := p.startSession(target); err != nil {
		p.handleDecodeError(err)
		return
	}
	p.monitor.Reset()
	if resume {
		p.clock.SetPaused(false)
	}
}
