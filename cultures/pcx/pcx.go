// Package pcx decodes the 8-bit run-length PCX images used for textures,
// transition masks and palettes.
package pcx

import (
	"encoding/binary"
	"fmt"

	"gitgub.com/cam-per/cultures/cultures/errs"
)

const (
	magic        = 0x0A
	paletteMagic = 0x0C
	// control bytes above runFlag repeat the next byte (c - runFlag) times
	runFlag = 192
)

var headerSize = binary.Size(header{})

type header struct {
	Magic         uint8
	Version       uint8
	Encoding      uint8
	BitsPerPixel  uint8
	X0, Y0        uint16
	X1, Y1        uint16
	HorizDpi      uint16
	VertDpi       uint16
	Colormap      [48]byte
	Reserved      uint8
	Planes        uint8
	BytesPerPlane uint16
	PaletteType   uint16
	HorizSize     uint16
	VertSize      uint16
	Filler        [54]byte
}

var ErrPaletteNotFound = fmt.Errorf("%w: palette not found", errs.ErrStructural)

// maxPixels is the most pixels n stream bytes can expand to.
func maxPixels(n int) int64 {
	return int64(n/2)*(0xFF-runFlag) + int64(n%2)
}

// readPixels expands count pixels from an RLE stream and returns them with
// the number of bytes consumed.
func readPixels(data []byte, count int) ([]byte, int, error) {
	if int64(count) > maxPixels(len(data)) {
		return nil, 0, errs.Structuralf("%d stream bytes cannot expand to %d pixels", len(data), count)
	}
	pixels := make([]byte, 0, count)
	pos := 0
	for len(pixels) < count {
		if pos >= len(data) {
			return nil, pos, errs.Structuralf("pixel data ends after %d of %d pixels", len(pixels), count)
		}
		val := data[pos]
		pos++
		n := 1
		if val > runFlag {
			n = int(val - runFlag)
			if pos >= len(data) {
				return nil, pos, errs.Structuralf("run at %d has no value", pos-1)
			}
			val = data[pos]
			pos++
		}
		if len(pixels)+n > count {
			return nil, pos, errs.Structuralf("run of %d overruns %d pixels", n, count)
		}
		for ; n > 0; n-- {
			pixels = append(pixels, val)
		}
	}
	return pixels, pos, nil
}
