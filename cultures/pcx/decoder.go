package pcx

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/cultures/pal"
)

type Decoder struct {
	header  header
	width   int
	height  int
	pixels  []byte
	palette pal.Palette
}

func NewDecoder(r io.Reader) (*Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	decoder := &Decoder{}
	if err := decoder.decode(data); err != nil {
		return nil, err
	}
	return decoder, nil
}

func (decoder *Decoder) decode(data []byte) error {
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &decoder.header); err != nil {
		return errs.Truncated("pcx header", err)
	}
	h := &decoder.header
	if h.Magic != magic {
		return errs.Structuralf("pcx magic %#02x", h.Magic)
	}
	if h.X1 < h.X0 || h.Y1 < h.Y0 {
		return errs.Structuralf("pcx bounds (%d,%d)-(%d,%d)", h.X0, h.Y0, h.X1, h.Y1)
	}
	decoder.width = int(h.X1) - int(h.X0) + 1
	decoder.height = int(h.Y1) - int(h.Y0) + 1

	rest := data[headerSize:]
	pixels, n, err := readPixels(rest, decoder.width*decoder.height)
	if err != nil {
		return err
	}
	decoder.pixels = pixels
	rest = rest[n:]

	if len(rest) == 0 || rest[0] != paletteMagic {
		return ErrPaletteNotFound
	}
	decoder.palette, err = pal.FromRGB(rest[1:])
	return err
}

func (decoder *Decoder) Width() int              { return decoder.width }
func (decoder *Decoder) Height() int             { return decoder.height }
func (decoder *Decoder) Indices() []byte         { return decoder.pixels }
func (decoder *Decoder) Palette() pal.Palette    { return decoder.palette }
func (decoder *Decoder) Bounds() image.Rectangle { return image.Rect(0, 0, decoder.width, decoder.height) }

// Image resolves the indices through the embedded palette. A nil alpha
// leaves every pixel opaque.
func (decoder *Decoder) Image(alpha []byte) (*image.NRGBA, error) {
	if alpha != nil && len(alpha) != len(decoder.pixels) {
		return nil, errs.Structuralf("alpha mask holds %d pixels, image %d", len(alpha), len(decoder.pixels))
	}
	img := image.NewNRGBA(decoder.Bounds())
	for i, idx := range decoder.pixels {
		c, err := decoder.palette.At(int(idx))
		if err != nil {
			return nil, err
		}
		if alpha != nil {
			c.A = alpha[i]
		}
		img.SetNRGBA(i%decoder.width, i/decoder.width, c)
	}
	return img, nil
}

// Paletted returns the indices with the embedded palette. The pixel slice
// is shared with the decoder.
func (decoder *Decoder) Paletted() *image.Paletted {
	return &image.Paletted{
		Pix:     decoder.pixels,
		Stride:  decoder.width,
		Rect:    decoder.Bounds(),
		Palette: decoder.palette.Color(),
	}
}

// ReadMask expands the pixel stream of a mask file as alpha values. Only
// the pixel codec applies; the header is skipped unread.
func ReadMask(data []byte, width, height int) ([]byte, error) {
	if len(data) < headerSize {
		return nil, errs.Truncated("pcx mask header", io.ErrUnexpectedEOF)
	}
	alpha, _, err := readPixels(data[headerSize:], width*height)
	if err != nil {
		return nil, err
	}
	return alpha, nil
}

// Decode decodes an image and, when mask is non-nil, takes each pixel's
// alpha from the mask file.
func Decode(data, mask []byte) (*image.NRGBA, error) {
	decoder, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var alpha []byte
	if mask != nil {
		if alpha, err = ReadMask(mask, decoder.width, decoder.height); err != nil {
			return nil, err
		}
	}
	return decoder.Image(alpha)
}

// DecodePalette returns the trailing palette of a PCX file.
func DecodePalette(data []byte) (pal.Palette, error) {
	decoder, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return decoder.palette, nil
}

// DecodePaletted decodes an image without resolving its indices.
func DecodePaletted(data []byte) (*image.Paletted, error) {
	decoder, err := NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return decoder.Paletted(), nil
}
