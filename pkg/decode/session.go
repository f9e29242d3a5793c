package decode

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"reelplay/pkg/logging"
	"reelplay/pkg/media"
)

// Callbacks receive the session's output. OnFrame runs on the session
// goroutine for every decoded frame; exactly one of OnFinished or OnError
// runs exactly once when the session terminates, whether it ran to
// end-of-stream, failed, or was stopped.
type Callbacks struct {
	OnFrame    func(*media.Frame)
	OnFinished func()
	OnError    func(error)
}

// Session runs an opened Source on its own goroutine until end-of-stream,
// error, or a cooperative stop. The stop flag is polled between frame reads,
// so Stop followed by Join returns within roughly one frame's decode time.
//
// Field ownership: stopRequested is written by any goroutine via Stop and
// read by the session goroutine; running is written by the session goroutine
// only.
type Session struct {
	id  string
	src Source
	cb  Callbacks

	stopRequested atomic.Bool
	running       atomic.Bool
	started       atomic.Bool
	terminate     sync.Once
	done          chan struct{}
}

// NewSession wraps an already-opened source. Call Start to begin decoding.
func NewSession(src Source, cb Callbacks) *Session {
	return &Session{
		id:   uuid.NewString(),
		src:  src,
		cb:   cb,
		done: make(chan struct{}),
	}
}

// ID returns the session's unique identifier, used for log correlation.
func (s *Session) ID() string {
	return s.id
}

// Running reports whether the decode goroutine is currently active.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Start launches the decode goroutine. Starting twice is a no-op.
func (s *Session) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.running.Store(true)
	go s.run()
}

// Stop requests a cooperative stop. It never blocks; pair with Join to wait
// for the goroutine to wind down.
func (s *Session) Stop() {
	s.stopRequested.Store(true)
}

// Stopping reports whether a stop has been requested. Frame callbacks that
// wait on downstream capacity poll this to stay responsive to Stop.
func (s *Session) Stopping() bool {
	return s.stopRequested.Load()
}

// Join blocks until the session goroutine has exited or the timeout elapses.
// It returns false on timeout, in which case the caller may abandon the
// session: the goroutine still exits on its own once the source yields.
func (s *Session) Join(timeout time.Duration) bool {
	if !s.started.Load() {
		return true
	}
	if timeout <= 0 {
		<-s.done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	}
}

func (s *Session) run() {
	log := logging.WithComponent("decode")

	defer func() {
		if err := s.src.Close(); err != nil {
			log.Warn().Str("session", s.id).Err(err).Msg("source close failed")
		}
		s.running.Store(false)
		close(s.done)
	}()

	for {
		if s.stopRequested.Load() {
			log.Debug().Str("session", s.id).Msg("stop observed")
			s.finish(nil)
			return
		}

		frame, err := s.src.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug().Str("session", s.id).Msg("end of stream")
				s.finish(nil)
			} else {
				log.Error().Str("session", s.id).Err(err).Msg("decode failed")
				s.finish(err)
			}
			return
		}

		if s.cb.OnFrame != nil {
			s.cb.OnFrame(frame)
		}
	}
}

// finish dispatches the one-shot termination callback.
func (s *Session) finish(err error) {
	s.terminate.Do(func() {
		if err != nil {
			if s.cb.OnError != nil {
				s.cb.OnError(err)
			}
			return
		}
		if s.cb.OnFinished != nil {
			s.cb.OnFinished()
		}
	})
}
