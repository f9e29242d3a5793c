package present

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// Filter selects the sampling mode for the presentation texture, fixed at
// construction.
type Filter string

const (
	FilterNearest Filter = "nearest"
	FilterLinear  Filter = "linear"
)

// Texture is the renderer-facing view of a DoubleBuffer: a streaming RGB24
// SDL texture that tracks the published slot. All methods must run on the
// thread that owns the graphics context.
type Texture struct {
	buf      *sdl.Texture
	source   *DoubleBuffer
	width    int32
	height   int32
	uploaded uint64
	bound    bool
}

// NewTexture creates the streaming texture for the buffer's dimensions.
// The filter hint must be set before texture creation to take effect; wrap
// behaviour is SDL's default clamp-to-edge.
func NewTexture(renderer *sdl.Renderer, source *DoubleBuffer, filter Filter) (*Texture, error) {
	quality := "0" // nearest
	if filter == FilterLinear {
		quality = "1"
	}
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, quality)

	tex, err := renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_RGB24),
		sdl.TEXTUREACCESS_STREAMING,
		int32(source.Width()),
		int32(source.Height()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture: %v", err)
	}

	return &Texture{
		buf:    tex,
		source: source,
		width:  int32(source.Width()),
		height: int32(source.Height()),
	}, nil
}

// Upload copies the published slot into the texture when a new frame has
// been published since the last upload. Returns true when pixels moved.
func (t *Texture) Upload() (bool, error) {
	gen := t.source.Generation()
	if gen == t.uploaded {
		return false, nil
	}

	_, src := t.source.Published()

	pixels, pitch, err := t.buf.Lock(nil)
	if err != nil {
		return false, fmt.Errorf("failed to lock texture: %v", err)
	}
	defer t.buf.Unlock()

	rowBytes := int(t.width) * 3
	if pitch == rowBytes {
		copy(pixels, src)
	} else {
		// The texture rows are padded; copy row by row.
		for y := 0; y < int(t.height); y++ {
			copy(pixels[y*pitch:y*pitch+rowBytes], src[y*rowBytes:(y+1)*rowBytes])
		}
	}

	t.uploaded = gen
	return true, nil
}

// Bind returns the texture handle for rendering, marking it bound.
func (t *Texture) Bind() *sdl.Texture {
	t.bound = true
	return t.buf
}

// Unbind releases the binding established by Bind.
func (t *Texture) Unbind() {
	t.bound = false
}

// Draw renders the current frame letterboxed into the given screen size.
func (t *Texture) Draw(renderer *sdl.Renderer, screenWidth, screenHeight int32) error {
	scaleW := float64(screenWidth) / float64(t.width)
	scaleH := float64(screenHeight) / float64(t.height)
	scale := scaleW
	if scaleH < scaleW {
		scale = scaleH
	}

	renderWidth := int32(float64(t.width) * scale)
	renderHeight := int32(float64(t.height) * scale)

	dstRect := sdl.Rect{
		X: (screenWidth - renderWidth) / 2,
		Y: (screenHeight - renderHeight) / 2,
		W: renderWidth,
		H: renderHeight,
	}

	handle := t.Bind()
	defer t.Unbind()
	return renderer.Copy(handle, nil, &dstRect)
}

// Destroy releases the underlying SDL texture.
func (t *Texture) Destroy() {
	if t.buf != nil {
		t.buf.Destroy()
		t.buf = nil
	}
}
