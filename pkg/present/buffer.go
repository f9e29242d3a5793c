// Package present owns the pixels handed to the renderer. DoubleBuffer is
// the pure ping-pong resource; Texture adapts its published slot onto an
// SDL texture on the render thread.
package present

import (
	"fmt"
	"sync"
	"sync/atomic"

	"reelplay/pkg/media"
)

// DoubleBuffer holds two equally-sized RGB24 slots. Exactly one slot is
// published at any instant; the other is writable. The writer (frame
// selector) fills the write slot under a short-held lock and flips the
// published index as the single synchronization point, so a reader loading
// the index never observes a slot mid-write.
//
// Field ownership: slots are written only by Update; published is written
// only by Update and read anywhere.
type DoubleBuffer struct {
	mu        sync.Mutex
	slots     [2][]byte
	published atomic.Int32
	width     int
	height    int

	// generation increments on every publish; lets the renderer skip
	// uploads when nothing new arrived.
	generation atomic.Uint64
}

// NewDoubleBuffer allocates both slots for the given frame dimensions.
func NewDoubleBuffer(width, height int) (*DoubleBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions %dx%d", width, height)
	}
	size := width * height * 3
	b := &DoubleBuffer{width: width, height: height}
	b.slots[0] = make([]byte, size)
	b.slots[1] = make([]byte, size)
	return b, nil
}

// Update copies the frame's pixels into the write slot and publishes it.
// The lock covers only the copy and the index flip.
func (b *DoubleBuffer) Update(f *media.Frame) {
	if f == nil {
		return
	}
	b.mu.Lock()
	write := (b.published.Load() + 1) % 2
	copy(b.slots[write], f.Pixels)
	b.published.Store(write)
	b.mu.Unlock()

	b.generation.Add(1)
}

// Published returns the currently published slot index and its pixels. The
// index load is lock-free; the returned slice is the slot that will not be
// written until after the next publish flips away from it.
func (b *DoubleBuffer) Published() (int, []byte) {
	idx := b.published.Load()
	return int(idx), b.slots[idx]
}

// Generation returns the publish counter.
func (b *DoubleBuffer) Generation() uint64 {
	return b.generation.Load()
}

// Width returns the slot width in pixels.
func (b *DoubleBuffer) Width() int { return b.width }

// Height returns the slot height in pixels.
func (b *DoubleBuffer) Height() int { return b.height }
