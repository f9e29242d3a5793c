package ui

import "github.com/veandco/go-sdl2/sdl"

// RGB is a plain color triple for gradient endpoints.
type RGB [3]uint8

// FillVerticalGradient fills the rectangle with a top-to-bottom linear
// gradient, drawn as per-row lines.
func FillVerticalGradient(renderer *sdl.Renderer, rect sdl.Rect, top, bottom RGB, alpha uint8) {
	if rect.H <= 0 || rect.W <= 0 {
		return
	}
	for row := int32(0); row < rect.H; row++ {
		t := 0.0
		if rect.H > 1 {
			t = float64(row) / float64(rect.H-1)
		}
		r := uint8(float64(top[0]) + (float64(bottom[0])-float64(top[0]))*t)
		g := uint8(float64(top[1]) + (float64(bottom[1])-float64(top[1]))*t)
		b := uint8(float64(top[2]) + (float64(bottom[2])-float64(top[2]))*t)
		renderer.SetDrawColor(r, g, b, alpha)
		renderer.DrawLine(rect.X, rect.Y+row, rect.X+rect.W-1, rect.Y+row)
	}
}
