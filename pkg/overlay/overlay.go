// Package overlay draws the on-screen diagnostics: a scrubber timeline plus
// playback and pipeline stats. The render loop draws it after the video
// frame; everything here runs on the render thread.
package overlay

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"reelplay/pkg/diag"
	"reelplay/pkg/player"
	"reelplay/pkg/ui"
)

const (
	timelineHeight = 14
	timelineMargin = 48
	scrimHeight    = 160
	textInset      = 24
	lineSpacing    = 26
)

var (
	textColor = sdl.Color{R: 235, G: 235, B: 235, A: 255}
	dimColor  = sdl.Color{R: 160, G: 160, B: 160, A: 255}
	barBack   = sdl.Color{R: 60, G: 60, B: 60, A: 200}
	barFill   = sdl.Color{R: 230, G: 230, B: 230, A: 255}
)

// Overlay owns the fonts used for the stats text. A nil font set degrades to
// timeline-only drawing.
type Overlay struct {
	fonts *ui.Fonts
}

func New(fonts *ui.Fonts) *Overlay {
	return &Overlay{fonts: fonts}
}

// TimelineRect is the scrub bar's screen rectangle; input hit-testing uses
// the same geometry as drawing.
func (o *Overlay) TimelineRect(screenW, screenH int32) sdl.Rect {
	return sdl.Rect{
		X: timelineMargin,
		Y: screenH - timelineMargin - timelineHeight,
		W: screenW - 2*timelineMargin,
		H: timelineHeight,
	}
}

// Draw renders the scrim, timeline and stats block.
func (o *Overlay) Draw(renderer *sdl.Renderer, snap player.Snapshot, report diag.Report, screenW, screenH int32) {
	scrim := sdl.Rect{X: 0, Y: screenH - scrimHeight, W: screenW, H: scrimHeight}
	ui.FillVerticalGradient(renderer, scrim, ui.RGB{40, 40, 40}, ui.RGB{0, 0, 0}, 140)

	o.drawTimeline(renderer, snap, screenW, screenH)
	o.drawStats(renderer, snap, report, screenH)
}

func (o *Overlay) drawTimeline(renderer *sdl.Renderer, snap player.Snapshot, screenW, screenH int32) {
	bar := o.TimelineRect(screenW, screenH)

	renderer.SetDrawColor(barBack.R, barBack.G, barBack.B, barBack.A)
	renderer.FillRect(&bar)

	if snap.Duration > 0 {
		frac := snap.CurrentTime / snap.Duration
		if frac > 1 {
			frac = 1
		}
		fill := bar
		fill.W = int32(float64(bar.W) * frac)
		renderer.SetDrawColor(barFill.R, barFill.G, barFill.B, barFill.A)
		renderer.FillRect(&fill)
	}
}

func (o *Overlay) drawStats(renderer *sdl.Renderer, snap player.Snapshot, report diag.Report, screenH int32) {
	if o.fonts == nil || o.fonts.Small == nil {
		return
	}

	state := "paused"
	switch {
	case snap.Seeking:
		state = "seeking"
	case snap.Playing:
		state = "playing"
	}

	lines := []string{
		fmt.Sprintf("%s / %s  %s  %.2fx",
			formatTime(snap.CurrentTime), formatTime(snap.Duration), state, snap.Speed),
		fmt.Sprintf("fps %.1f  queue %d  tick %.2fms  upload %.2fms",
			report.FPS, snap.QueueDepth, report.AvgTickMs, report.AvgUploadMs),
		fmt.Sprintf("frames %d  stall restarts %d  uptime %ds",
			report.TotalFrames, snap.StallRestarts, report.UptimeSeconds),
	}

	y := screenH - scrimHeight + textInset
	for i, line := range lines {
		color := textColor
		if i > 0 {
			color = dimColor
		}
		// Text failures are cosmetic; keep drawing the remaining lines.
		_ = ui.DrawText(renderer, o.fonts.Small, line, timelineMargin, y, color)
		y += lineSpacing
	}
}

// formatTime renders seconds as m:ss (or h:mm:ss past the hour).
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
