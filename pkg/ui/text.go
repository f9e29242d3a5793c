package ui

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
)

// DrawText renders one line of text at (x, y). The backing surface and
// texture live only for this call; overlay text changes every frame, so
// caching buys nothing.
func DrawText(renderer *sdl.Renderer, font *ttf.Font, text string, x, y int32, color sdl.Color) error {
	if font == nil {
		return fmt.Errorf("font not loaded")
	}
	surface, err := font.RenderUTF8Blended(text, color)
	if err != nil {
		return err
	}
	defer surface.Free()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return err
	}
	defer texture.Destroy()

	dst := sdl.Rect{X: x, Y: y, W: surface.W, H: surface.H}
	return renderer.Copy(texture, nil, &dst)
}
