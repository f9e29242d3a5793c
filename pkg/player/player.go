// Package player coordinates the streaming pipeline: a decode session
// feeding a bounded frame queue, a playback clock driving frame selection
// into the double-buffered presentation resource, a coalescing seek/restart
// coordinator and a stall watchdog.
package player

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"reelplay/pkg/config"
	"reelplay/pkg/decode"
	"reelplay/pkg/diag"
	"reelplay/pkg/logging"
	"reelplay/pkg/media"
	"reelplay/pkg/present"
)

const (
	// producerLead is how far (seconds) a decoded frame may run ahead of
	// the clock before the producer is paced.
	producerLead = 0.25
	// producerPollInterval is the pacing poll granularity; it bounds how
	// long a paced producer takes to observe stop or a generation change.
	producerPollInterval = 2 * time.Millisecond
)

// Player plays back a single video file. The render loop drives it by
// calling Tick once per frame; decode runs on a background session and all
// communication goes through the frame queue.
//
// Concurrency roles: the decode session goroutine only offers frames; the
// render loop is the sole queue consumer and sole presentation writer;
// transient restart workers perform stop/clear/start off the render loop.
type Player struct {
	cfg     config.Config
	path    string
	factory decode.Factory
	log     zerolog.Logger

	queue   *media.FrameQueue
	buffer  *present.DoubleBuffer
	clock   *Clock
	monitor *diag.Monitor

	initialized bool
	disposed    atomic.Bool

	// mu guards session and info, both swapped by Initialize/restart
	// workers.
	mu      sync.Mutex
	info    decode.StreamInfo
	session *decode.Session

	// generation identifies the live decode session; frames tagged with any
	// other generation are rejected at the queue boundary. Incremented when
	// a seek is accepted and again when the replacement session starts.
	generation atomic.Uint64

	// lastFrameBits holds the timestamp of the last presented frame.
	// Written by the render tick and the seek coordinator.
	lastFrameBits atomic.Uint64

	// seekInFlight is the coordinator's two-state machine: false = Idle,
	// true = RestartInFlight.
	seekInFlight atomic.Bool

	// eosSignaled is set by the live session's finished callback.
	eosSignaled atomic.Bool

	decodeErrMu sync.Mutex
	decodeErr   error

	// queueEmptySince (unix nanos, 0 = not empty) is written by the render
	// tick only and read by the watchdog goroutine.
	queueEmptySince atomic.Int64

	stallRestarts atomic.Uint64

	watchdogOnce sync.Once
	watchdogStop chan struct{}
}

// Option tweaks Player construction.
type Option func(*Player)

// WithSourceFactory substitutes the decode source, e.g. a scripted source
// in tests. The default is the FFmpeg-backed source.
func WithSourceFactory(f decode.Factory) Option {
	return func(p *Player) { p.factory = f }
}

// New creates a player for the given file. Decoding starts on Play, which
// lazily runs Initialize.
func New(path string, cfg config.Config, opts ...Option) *Player {
	p := &Player{
		cfg:          cfg,
		path:         path,
		factory:      decode.NewFFmpegSource,
		log:          logging.WithComponent("player"),
		queue:        media.NewFrameQueue(cfg.QueueCapacity),
		clock:        NewClock(),
		monitor:      diag.NewMonitor(120),
		watchdogStop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialize eagerly opens the source, allocates the presentation buffer
// and starts the first decode session. Failures here are fatal to the
// player instance and returned to the caller.
func (p *Player) Initialize() error {
	if p.disposed.Load() {
		return fmt.Errorf("player disposed")
	}
	if p.initialized {
		return nil
	}

	if err := p.startSession(0); err != nil {
		return fmt.Errorf("initialize %s: %w", p.path, err)
	}

	info := p.Info()
	buffer, err := present.NewDoubleBuffer(info.Width, info.Height)
	if err != nil {
		p.stopSession()
		return fmt.Errorf("initialize %s: %w", p.path, err)
	}
	p.buffer = buffer
	p.initialized = true

	p.log.Info().
		Str("path", p.path).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("duration", info.Duration).
		Float64("fps", info.FPS).
		Msg("initialized")
	return nil
}

// Play starts (or resumes) playback, lazily initializing on first use.
func (p *Player) Play() error {
	if err := p.Initialize(); err != nil {
		return err
	}
	p.clock.SetPaused(false)
	p.watchdogOnce.Do(func() { go p.watchdogLoop() })
	return nil
}

// TogglePause flips between Playing and Paused. A no-op before Initialize.
func (p *Player) TogglePause() {
	if !p.initialized {
		return
	}
	p.clock.SetPaused(!p.clock.Paused())
}

// AdjustSpeed shifts the speed multiplier by delta, clamped to the floor.
func (p *Player) AdjustSpeed(delta float64) {
	speed := p.clock.Speed() + delta
	if speed < p.cfg.SpeedFloor {
		speed = p.cfg.SpeedFloor
	}
	p.clock.SetSpeed(speed)
}

// Speed returns the current playback speed multiplier.
func (p *Player) Speed() float64 {
	return p.clock.Speed()
}

// Tick advances playback by one render-loop iteration. dt is the wall-clock
// time since the previous tick. Must be called from the render loop only.
func (p *Player) Tick(dt time.Duration) {
	if !p.initialized || p.disposed.Load() {
		return
	}

	p.clock.Advance(dt)

	if !p.clock.Paused() && !p.clock.Seeking() {
		p.drainFrames()
	}

	p.trackQueueEmpty()
	p.checkEndOfStream()
	p.checkStall()
}

// drainFrames applies queued frames against the clock. Eligibility and the
// drain exit compare against the desired time fixed at the start of the
// drain: frames up to desired+tolerance are applied; a frame within epsilon
// ahead of desired is applied as the final catch-up frame; draining stops
// once an applied frame's timestamp has reached desired. When several
// frames qualify in one tick only the last applied stays visible —
// time-catch-up, not frame-accurate playback.
func (p *Player) drainFrames() {
	desired := p.clock.Now()
	for {
		f := p.queue.Peek()
		if f == nil {
			return
		}
		if f.Timestamp > desired+p.cfg.Tolerance && f.Timestamp-desired > p.cfg.Epsilon {
			return
		}

		p.queue.Poll()
		p.buffer.Update(f)
		p.clock.SetTime(f.Timestamp)
		p.lastFrameBits.Store(math.Float64bits(f.Timestamp))
		p.monitor.RecordPresented()

		if f.Timestamp > desired {
			return
		}
	}
}

// checkEndOfStream pauses the player once the clock reaches the stream
// duration. currentTime is left in place; only a seek leaves this state.
func (p *Player) checkEndOfStream() {
	duration := p.duration()
	if duration <= 0 || p.clock.Paused() || p.clock.Seeking() {
		return
	}
	if p.clock.Now() >= duration {
		p.clock.SetPaused(true)
		p.log.Info().Float64("time", p.clock.Now()).Msg("end of stream")
	}
}

// trackQueueEmpty maintains the empty-since timestamp consumed by the
// watchdog. Render tick is the only writer.
func (p *Player) trackQueueEmpty() {
	if p.queue.Len() == 0 {
		if p.queueEmptySince.Load() == 0 {
			p.queueEmptySince.Store(time.Now().UnixNano())
		}
		return
	}
	p.queueEmptySince.Store(0)
}

// startSession opens a fresh source at the given offset and begins
// decoding into the queue under a new generation.
func (p *Player) startSession(offset float64) error {
	src := p.factory()
	info, err := src.Open(p.path, offset)
	if err != nil {
		_ = src.Close()
		return err
	}
	gen := p.generation.Add(1)
	var sess *decode.Session
	sess = decode.NewSession(src, decode.Callbacks{
		OnFrame: func(f *media.Frame) {
			// Pace a producer running ahead of real time: hold the frame
			// while the queue is full and its PTS is still well past the
			// clock, instead of churning through drop-oldest evictions.
			for p.generation.Load() == gen && !p.disposed.Load() && !sess.Stopping() &&
				p.queue.Len() >= p.queue.Capacity() &&
				f.Timestamp > p.clock.Now()+producerLead {
				time.Sleep(producerPollInterval)
			}
			if p.generation.Load() != gen || p.disposed.Load() {
				return // stale producer; its output must not be seen
			}
			p.queue.Offer(f)
		},
		OnFinished: func() {
			if p.generation.Load() == gen {
				p.eosSignaled.Store(true)
			}
		},
		OnError: func(err error) {
			if p.generation.Load() == gen {
				p.handleDecodeError(err)
			}
		},
	})

	p.mu.Lock()
	p.info = info
	p.session = sess
	p.mu.Unlock()

	p.eosSignaled.Store(false)
	sess.Start()

	p.log.Debug().
		Str("session", sess.ID()).
		Float64("offset", offset).
		Msg("decode session started")
	return nil
}

// stopSession stops and joins the active session, bounded by JoinTimeout.
// A timed-out join abandons the session; its frames are already rejected by
// the generation check.
func (p *Player) stopSession() {
	p.mu.Lock()
	sess := p.session
	p.session = nil
	p.mu.Unlock()

	if sess == nil {
		return
	}
	sess.Stop()
	if !sess.Join(p.cfg.JoinTimeout) {
		p.log.Warn().Str("session", sess.ID()).Msg("join timed out, abandoning session")
	}
}

// handleDecodeError implements the mid-stream failure policy: pause, log,
// no retry.
func (p *Player) handleDecodeError(err error) {
	p.decodeErrMu.Lock()
	p.decodeErr = err
	p.decodeErrMu.Unlock()

	p.clock.SetPaused(true)
	p.log.Error().Err(err).Msg("decode error, playback paused")
}

// Err returns the last mid-stream decode error, if any.
func (p *Player) Err() error {
	p.decodeErrMu.Lock()
	defer p.decodeErrMu.Unlock()
	return p.decodeErr
}

// Dispose stops the decode session and the watchdog and releases the
// presentation buffer. The player cannot be reused afterwards.
func (p *Player) Dispose() {
	if !p.disposed.CompareAndSwap(false, true) {
		return
	}
	// Invalidate the live generation so late frames from any session are
	// dropped at the boundary.
	p.generation.Add(1)
	close(p.watchdogStop)
	p.stopSession()
	p.queue.Clear()
	p.buffer = nil
	p.initialized = false
	p.log.Info().Msg("disposed")
}

// lastFrameTimestamp returns the PTS of the most recently presented frame.
func (p *Player) lastFrameTimestamp() float64 {
	return math.Float64frombits(p.lastFrameBits.Load())
}

// Buffer exposes the presentation buffer for the renderer. Nil before
// Initialize.
func (p *Player) Buffer() *present.DoubleBuffer {
	return p.buffer
}

// Info returns the opened stream's properties.
func (p *Player) Info() decode.StreamInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info
}

// duration is a shorthand for the stream duration in seconds, 0 when
// unknown.
func (p *Player) duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info.Duration
}

// Monitor returns the diagnostics monitor fed by this player.
func (p *Player) Monitor() *diag.Monitor {
	return p.monitor
}

// Snapshot is the read-only diagnostics surface.
type Snapshot struct {
	CurrentTime   float64
	Duration      float64
	Speed         float64
	Playing       bool
	Seeking       bool
	QueueDepth    int
	FPS           float64
	StallRestarts uint64
}

// Diagnostics captures the current playback state for the overlay.
func (p *Player) Diagnostics() Snapshot {
	return Snapshot{
		CurrentTime:   p.clock.Now(),
		Duration:      p.duration(),
		Speed:         p.clock.Speed(),
		Playing:       p.initialized && !p.clock.Paused(),
		Seeking:       p.clock.Seeking(),
		QueueDepth:    p.queue.Len(),
		FPS:           p.monitor.GetReport().FPS,
		StallRestarts: p.stallRestarts.Load(),
	}
}
