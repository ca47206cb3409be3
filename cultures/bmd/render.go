package bmd

import (
	"fmt"
	"image"
	"image/color"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/cultures/pal"
)

const (
	// control bytes at or above gapFlag skip (c - gapFlag) transparent pixels
	gapFlag = 0x80
	// a zero control byte ends the row
	rowEnd = 0
)

var shadowColor = color.NRGBA{R: 0, G: 0, B: 0, A: 0x80}

// pool reads the shared pixel pool from a row's own offset.
type pool struct {
	data []byte
	pos  int
}

func (p *pool) next() (byte, error) {
	if p.pos >= len(p.data) {
		return 0, errs.Structuralf("pixel pool read at %d past end %d", p.pos, len(p.data))
	}
	b := p.data[p.pos]
	p.pos++
	return b, nil
}

// The canvas holds Rows lines. The legacy renderer allocated one extra line
// that no row ever wrote.
func (decoder *Decoder) render(frame Frame, palette pal.Palette, mode AlphaMode) (*image.NRGBA, error) {
	if frame.FirstRow+frame.Rows > len(decoder.rows) {
		return nil, errs.Structuralf("rows [%d, %d) exceed row directory of %d",
			frame.FirstRow, frame.FirstRow+frame.Rows, len(decoder.rows))
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Rows))

	for y := 0; y < frame.Rows; y++ {
		row := decoder.rows[frame.FirstRow+y]
		if row.Empty() {
			continue
		}
		if err := decoder.renderRow(canvas, y, row, frame.Kind, palette, mode); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func (decoder *Decoder) renderRow(canvas *image.NRGBA, y int, row Row, kind FrameKind, palette pal.Palette, mode AlphaMode) error {
	w := canvas.Bounds().Dx()
	src := &pool{data: decoder.pixels, pos: row.Offset()}
	currentX := row.Indent()

	for {
		cmd, err := src.next()
		if err != nil {
			return err
		}
		switch {
		case cmd == rowEnd:
			return nil
		case cmd >= gapFlag:
			currentX += int(cmd - gapFlag)
			continue
		}

		for i := 0; i < int(cmd); i++ {
			if currentX >= w {
				return errs.Structuralf("row %d overruns frame width %d", y, w)
			}
			c, err := pixel(src, kind, palette, mode)
			if err != nil {
				return err
			}
			canvas.SetNRGBA(currentX, y, c)
			currentX++
		}
	}
}

func pixel(src *pool, kind FrameKind, palette pal.Palette, mode AlphaMode) (color.NRGBA, error) {
	switch kind {
	case NormalFrame:
		idx, err := src.next()
		if err != nil {
			return color.NRGBA{}, err
		}
		return palette.At(int(idx))
	case ShadowFrame:
		return shadowColor, nil
	case ExtendedFrame:
		idx, err := src.next()
		if err != nil {
			return color.NRGBA{}, err
		}
		alpha, err := src.next()
		if err != nil {
			return color.NRGBA{}, err
		}
		c, err := palette.At(int(idx))
		if err != nil {
			return color.NRGBA{}, err
		}
		if mode == AlphaFromFile {
			c.A = alpha
		} else {
			c.A = 0xFF
		}
		return c, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w %d", ErrUnknownFrameKind, uint8(kind))
}
