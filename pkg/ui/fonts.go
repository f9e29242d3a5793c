// Package ui holds the small SDL drawing helpers used by the diagnostics
// overlay: TrueType text and gradient fills.
package ui

import (
	"fmt"

	"github.com/veandco/go-sdl2/ttf"
)

// Fonts is the fixed set of overlay font sizes.
type Fonts struct {
	Large  *ttf.Font // 32px headings
	Medium *ttf.Font // 24px labels
	Small  *ttf.Font // 18px diagnostics lines
}

// fontPaths are tried in order; covers Debian/Raspberry Pi OS, Arch and
// macOS layouts.
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
}

// LoadFonts initializes TTF and opens the overlay fonts from the first
// usable system font path.
func LoadFonts() (*Fonts, error) {
	if err := ttf.Init(); err != nil {
		return nil, fmt.Errorf("ttf init: %w", err)
	}

	f := &Fonts{}
	var err error
	if f.Large, err = openFirst(32); err != nil {
		return nil, err
	}
	if f.Medium, err = openFirst(24); err != nil {
		f.Close()
		return nil, err
	}
	if f.Small, err = openFirst(18); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func openFirst(size int) (*ttf.Font, error) {
	var lastErr error
	for _, path := range fontPaths {
		font, err := ttf.OpenFont(path, size)
		if err == nil {
			return font, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no usable system font at %dpx: %w", size, lastErr)
}

// Close releases the loaded fonts. Safe on a partially loaded set.
func (f *Fonts) Close() {
	for _, font := range []*ttf.Font{f.Large, f.Medium, f.Small} {
		if font != nil {
			font.Close()
		}
	}
	f.Large, f.Medium, f.Small = nil, nil, nil
}
