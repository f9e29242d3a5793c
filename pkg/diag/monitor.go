// Package diag tracks playback health for the on-screen overlay and logs.
package diag

import (
	"sync"
	"time"
)

// RollingAverage maintains a rolling average of durations over a fixed window.
type RollingAverage struct {
	samples    []time.Duration
	maxSamples int
	sum        time.Duration
	index      int
	filled     bool
	mu         sync.RWMutex
}

// NewRollingAverage creates a rolling average tracker with the given window.
func NewRollingAverage(windowSize int) *RollingAverage {
	if windowSize < 1 {
		windowSize = 1
	}
	return &RollingAverage{
		samples:    make([]time.Duration, windowSize),
		maxSamples: windowSize,
	}
}

// Add records a new sample and updates the rolling average.
func (r *RollingAverage) Add(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.filled {
		r.sum -= r.samples[r.index]
	}
	r.samples[r.index] = d
	r.sum += d

	r.index++
	if r.index >= r.maxSamples {
		r.index = 0
		r.filled = true
	}
}

// Average returns the current rolling average.
func (r *RollingAverage) Average() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := r.index
	if r.filled {
		count = r.maxSamples
	}
	if count == 0 {
		return 0
	}
	return r.sum / time.Duration(count)
}

// Reset clears all samples.
func (r *RollingAverage) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sum = 0
	r.index = 0
	r.filled = false
	for i := range r.samples {
		r.samples[i] = 0
	}
}

// Monitor aggregates per-tick timings and the presented-frame rate.
type Monitor struct {
	tickTimes   *RollingAverage
	uploadTimes *RollingAverage

	mu        sync.Mutex
	presented []time.Time // ring of recent presentation instants
	presIdx   int
	presFull  bool
	total     uint64
	startTime time.Time
}

// Report is a read-only snapshot for the overlay and periodic logs.
type Report struct {
	AvgTickMs     float64 // average render-tick time in milliseconds
	AvgUploadMs   float64 // average texture upload time in milliseconds
	FPS           float64 // observed presented frames per second
	TotalFrames   uint64  // frames presented since start
	UptimeSeconds int64
}

// NewMonitor creates a monitor averaging over windowSize ticks.
func NewMonitor(windowSize int) *Monitor {
	if windowSize < 2 {
		windowSize = 2
	}
	return &Monitor{
		tickTimes:   NewRollingAverage(windowSize),
		uploadTimes: NewRollingAverage(windowSize),
		presented:   make([]time.Time, windowSize),
		startTime:   time.Now(),
	}
}

// RecordTick records the duration of one render-loop iteration.
func (m *Monitor) RecordTick(d time.Duration) {
	m.tickTimes.Add(d)
}

// RecordUpload records the duration of one texture upload.
func (m *Monitor) RecordUpload(d time.Duration) {
	m.uploadTimes.Add(d)
}

// RecordPresented marks that a new frame became visible.
func (m *Monitor) RecordPresented() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.presented[m.presIdx] = time.Now()
	m.presIdx++
	if m.presIdx >= len(m.presented) {
		m.presIdx = 0
		m.presFull = true
	}
	m.total++
}

// fpsLocked derives the presented rate from the span of the timestamp ring.
func (m *Monitor) fpsLocked() float64 {
	count := m.presIdx
	oldest := 0
	if m.presFull {
		count = len(m.presented)
		oldest = m.presIdx
	}
	if count < 2 {
		return 0
	}
	newest := (oldest + count - 1) % len(m.presented)
	span := m.presented[newest].Sub(m.presented[oldest]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(count-1) / span
}

// GetReport produces the current snapshot.
func (m *Monitor) GetReport() Report {
	m.mu.Lock()
	fps := m.fpsLocked()
	total := m.total
	m.mu.Unlock()

	return Report{
		AvgTickMs:     float64(m.tickTimes.Average().Microseconds()) / 1000.0,
		AvgUploadMs:   float64(m.uploadTimes.Average().Microseconds()) / 1000.0,
		FPS:           fps,
		TotalFrames:   total,
		UptimeSeconds: int64(time.Since(m.startTime).Seconds()),
	}
}

// Reset clears all metrics, e.g. after a seek.
func (m *Monitor) Reset() {
	m.tickTimes.Reset()
	m.uploadTimes.Reset()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.presIdx = 0
	m.presFull = false
	m.total = 0
	m.startTime = time.Now()
}
