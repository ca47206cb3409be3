// Package pal holds indexed-color palettes shared by the sprite and image decoders.
package pal

import (
	"image/color"

	"gitgub.com/cam-per/cultures/cultures/errs"
)

// Size is the number of entries of every palette the engine ships.
const Size = 256

// Palette is read-only once decoded and may be shared between goroutines.
type Palette []color.NRGBA

// At resolves a palette index. Indices the palette does not hold are
// rejected rather than clamped.
func (p Palette) At(idx int) (color.NRGBA, error) {
	if idx < 0 || idx >= len(p) {
		return color.NRGBA{}, &errs.RangeError{Index: idx, Len: len(p)}
	}
	return p[idx], nil
}

// Color converts the palette for use with image.Paletted and friends.
func (p Palette) Color() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}

// FromRGB decodes a headerless 256-entry RGB palette. Bytes past the last
// entry are ignored.
func FromRGB(data []byte) (Palette, error) {
	if len(data) < Size*3 {
		return nil, errs.Structuralf("palette needs %d bytes, got %d", Size*3, len(data))
	}
	p := make(Palette, Size)
	for i := range p {
		rgb := data[i*3 : i*3+3]
		p[i] = color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}
	}
	return p, nil
}
