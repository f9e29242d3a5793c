package media

import "sync"

// FrameQueue is a bounded FIFO bridging the decode goroutine (single
// producer) and the render loop (single consumer). When full, Offer evicts
// the single oldest queued frame before inserting, so the queue always holds
// the most recently produced frames: under a slow consumer, freshness beats
// completeness.
//
// Frames arrive in decode order, which matches presentation order, so the
// queue is timestamp-ascending at all times.
type FrameQueue struct {
	mu       sync.Mutex
	frames   []*Frame
	capacity int
}

// NewFrameQueue creates a queue holding at most capacity frames. A capacity
// below 1 is raised to 1.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &FrameQueue{
		frames:   make([]*Frame, 0, capacity),
		capacity: capacity,
	}
}

// Offer inserts a frame without ever blocking. At capacity, the oldest
// queued frame is dropped to make room.
func (q *FrameQueue) Offer(f *Frame) {
	if f == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) >= q.capacity {
		// Drop-oldest admission: shift out the head.
		copy(q.frames, q.frames[1:])
		q.frames = q.frames[:len(q.frames)-1]
	}
	q.frames = append(q.frames, f)
}

// Peek returns the oldest queued frame without removing it, or nil when the
// queue is empty.
func (q *FrameQueue) Peek() *Frame {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) == 0 {
		return nil
	}
	return q.frames[0]
}

// Poll removes and returns the oldest queued frame, or nil when empty.
func (q *FrameQueue) Poll() *Frame {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) == 0 {
		return nil
	}
	f := q.frames[0]
	q.frames[0] = nil
	copy(q.frames, q.frames[1:])
	q.frames = q.frames[:len(q.frames)-1]
	return f
}

// Clear drops every queued frame. Called by the restart worker after the old
// decode session has stopped so a stale pre-seek frame can never be shown
// after a seek.
func (q *FrameQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.frames {
		q.frames[i] = nil
	}
	q.frames = q.frames[:0]
}

// Len returns the current number of queued frames.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Capacity returns the fixed queue capacity.
func (q *FrameQueue) Capacity() int {
	return q.capacity
}
