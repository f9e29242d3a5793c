package media

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameAt(ts float64) *Frame {
	return &Frame{Pixels: []byte{0, 0, 0}, Width: 1, Height: 1, Timestamp: ts}
}

func TestOfferNeverExceedsCapacity(t *testing.T) {
	q := NewFrameQueue(3)

	for i := 0; i < 50; i++ {
		q.Offer(frameAt(float64(i) * 0.033))
		assert.LessOrEqual(t, q.Len(), 3)
	}
}

func TestDropOldestKeepsMostRecent(t *testing.T) {
	// Scenario from the original pipeline: capacity 2, offers at
	// t=0.0, 0.1, 0.2, 0.3 leave exactly t=0.2 and t=0.3 queued.
	q := NewFrameQueue(2)
	for _, ts := range []float64{0.0, 0.1, 0.2, 0.3} {
		q.Offer(frameAt(ts))
	}

	require.Equal(t, 2, q.Len())
	assert.InDelta(t, 0.2, q.Poll().Timestamp, 1e-9)
	assert.InDelta(t, 0.3, q.Poll().Timestamp, 1e-9)
	assert.Nil(t, q.Poll())
}

func TestPeekDoesNotConsume(t *testing.T) {
	q := NewFrameQueue(4)
	q.Offer(frameAt(1.0))

	require.NotNil(t, q.Peek())
	assert.Equal(t, 1, q.Len())
	assert.InDelta(t, 1.0, q.Peek().Timestamp, 1e-9)
}

func TestFIFOOrder(t *testing.T) {
	q := NewFrameQueue(8)
	for _, ts := range []float64{0.1, 0.2, 0.3} {
		q.Offer(frameAt(ts))
	}

	assert.InDelta(t, 0.1, q.Poll().Timestamp, 1e-9)
	assert.InDelta(t, 0.2, q.Poll().Timestamp, 1e-9)
	assert.InDelta(t, 0.3, q.Poll().Timestamp, 1e-9)
}

func TestClear(t *testing.T) {
	q := NewFrameQueue(4)
	q.Offer(frameAt(0.1))
	q.Offer(frameAt(0.2))

	q.Clear()
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Peek())
}

func TestEmptyQueue(t *testing.T) {
	q := NewFrameQueue(2)
	assert.Nil(t, q.Peek())
	assert.Nil(t, q.Poll())
	assert.Equal(t, 0, q.Len())
}

func TestMinimumCapacity(t *testing.T) {
	q := NewFrameQueue(0)
	assert.Equal(t, 1, q.Capacity())

	q.Offer(frameAt(0.1))
	q.Offer(frameAt(0.2))
	assert.Equal(t, 1, q.Len())
	assert.InDelta(t, 0.2, q.Peek().Timestamp, 1e-9)
}

// One producer offering while one consumer drains must stay within bounds
// and never hand out a nil frame for a non-empty queue.
func TestSingleProducerSingleConsumer(t *testing.T) {
	q := NewFrameQueue(4)
	const total = 2000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			q.Offer(frameAt(float64(i)))
		}
	}()

	var last float64 = -1
	for consumed := 0; consumed < total/2; {
		if f := q.Poll(); f != nil {
			// Timestamps only move forward even across evictions.
			assert.Greater(t, f.Timestamp, last)
			last = f.Timestamp
			consumed++
		}
	}
	wg.Wait()
	assert.LessOrEqual(t, q.Len(), 4)
}
