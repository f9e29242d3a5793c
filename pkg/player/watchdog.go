package player

import "time"

// The watchdog detects a wedged pipeline: either the frame queue has been
// empty beyond a grace period during playback, or the clock has drifted far
// past the last presented frame. Both cases self-heal with a restart at the
// current position, subject to the same coalescing as explicit seeks, so a
// stall during an in-flight restart is a no-op.

// watchdogLoop runs the coarse periodic check until Dispose.
func (p *Player) watchdogLoop() {
	ticker := time.NewTicker(p.cfg.WatchdogPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.watchdogStop:
			return
		case <-ticker.C:
			p.checkStall()
		}
	}
}

// checkStall is also run per render tick for faster detection.
func (p *Player) checkStall() {
	if !p.initialized || p.disposed.Load() {
		return
	}
	if p.clock.Paused() || p.clock.Seeking() || p.seekInFlight.Load() {
		return
	}

	if reason := p.stallReason(); reason != "" {
		now := p.clock.Now()
		p.log.Warn().Str("reason", reason).Float64("time", now).Msg("stall detected, restarting")
		if p.RequestSeek(now) {
			p.stallRestarts.Add(1)
		}
	}
}

// stallReason returns a non-empty description when either stall condition
// holds.
func (p *Player) stallReason() string {
	// Decode already ran to end-of-stream: the queue draining empty and the
	// clock walking ahead are both expected, not a stall.
	if p.eosSignaled.Load() {
		return ""
	}

	// (a) queue empty beyond the grace period while playing.
	if since := p.queueEmptySince.Load(); since != 0 {
		if time.Since(time.Unix(0, since)) > p.cfg.EmptyGrace {
			return "frame queue empty"
		}
	}

	// (b) clock drifted past the last presented frame, unless we are within
	// one grace interval of end-of-stream where starvation is expected.
	now := p.clock.Now()
	if duration := p.duration(); duration > 0 && duration-now <= p.cfg.EmptyGrace.Seconds() {
		return ""
	}
	if now-p.lastFrameTimestamp() > p.cfg.DriftThreshold {
		return "presentation drift"
	}
	return ""
}
