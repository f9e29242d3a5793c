// Package decode produces frames from a video file on a dedicated
// goroutine. The codec itself is behind the Source contract; everything the
// rest of the player knows about decoding is in this file.
package decode

import "reelplay/pkg/media"

// StreamInfo describes an opened video stream. Determined once per Open.
type StreamInfo struct {
	Width    int
	Height   int
	Duration float64 // seconds; 0 when the container does not report one
	FPS      float64
}

// Source is the decode contract consumed by the player. Open must be called
// first; it resolves dimensions and duration and best-effort seeks to the
// nearest keyframe at or before startOffset (a failed seek is non-fatal and
// decoding continues from the container's current position). ReadFrame then
// returns frames in presentation-time order, io.EOF at end of stream, or an
// error for a mid-stream decode failure. Each returned frame owns a fresh
// pixel buffer.
//
// A Source is driven by exactly one Session and is not safe for concurrent
// use.
type Source interface {
	Open(path string, startOffset float64) (StreamInfo, error)
	ReadFrame() (*media.Frame, error)
	Close() error
}

// Factory creates a fresh Source for each decode session. Restarts never
// reuse a Source: the old one is closed with its session and a new one is
// opened at the target offset.
type Factory func() Source
