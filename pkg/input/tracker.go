// Package input maps SDL keyboard and mouse state onto player commands.
// Trackers turn the level-triggered SDL state arrays into edge triggers so
// a held key fires once.
package input

import "github.com/veandco/go-sdl2/sdl"

// KeyTracker remembers the previous keyboard state per scancode.
type KeyTracker struct {
	down map[sdl.Scancode]bool
}

// NewKeyTracker returns an empty tracker; every key reads as released.
func NewKeyTracker() KeyTracker {
	return KeyTracker{down: make(map[sdl.Scancode]bool)}
}

// JustPressed reports a press edge: the key is down now and was not down on
// the previous call for the same scancode.
func (t *KeyTracker) JustPressed(keyState []uint8, code sdl.Scancode) bool {
	now := int(code) < len(keyState) && keyState[code] != 0
	was := t.down[code]
	t.down[code] = now
	return now && !was
}

// MouseTracker remembers the previous button state per SDL button mask.
type MouseTracker struct {
	down map[uint32]bool
}

// NewMouseTracker returns an empty tracker; every button reads as released.
func NewMouseTracker() MouseTracker {
	return MouseTracker{down: make(map[uint32]bool)}
}

// JustPressed reports a press edge for the button selected by mask.
func (t *MouseTracker) JustPressed(mouseState, mask uint32) bool {
	now := mouseState&mask != 0
	was := t.down[mask]
	t.down[mask] = now
	return now && !was
}
