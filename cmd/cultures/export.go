package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	"gitgub.com/cam-per/cultures/cultures/bmd"
	"gitgub.com/cam-per/cultures/cultures/pal"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const sheetColumns = 16

func encodeImage(name, format string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(f, img)
	case "bmp":
		err = bmp.Encode(f, img)
	default:
		err = fmt.Errorf("unknown image format %q", format)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// sheet places frames on a grid of equal cells, left to right. Every cell
// covers the union of the frame footprints, so frames keep their offsets.
func sheet(info []bmd.Frame, frames []*image.NRGBA) *image.NRGBA {
	cell := bmd.Bounds(info)
	cols := min(len(frames), sheetColumns)
	rows := (len(frames) + sheetColumns - 1) / sheetColumns
	out := image.NewNRGBA(image.Rect(0, 0, cols*cell.Dx(), rows*cell.Dy()))
	for i, f := range frames {
		at := image.Pt(i%sheetColumns*cell.Dx(), i/sheetColumns*cell.Dy())
		r := info[i].Rect().Sub(cell.Min).Add(at)
		draw.Draw(out, r, f, f.Bounds().Min, draw.Src)
	}
	return out
}

// scale enlarges img by an integer factor without smoothing. Paletted
// images stay paletted.
func scale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	r := image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor)
	var out draw.Image = image.NewNRGBA(r)
	if p, ok := img.(*image.Paletted); ok {
		out = image.NewPaletted(r, p.Palette)
	}
	draw.NearestNeighbor.Scale(out, r, img, b, draw.Src, nil)
	return out
}

// grayPalette stands in when no palette file is given.
func grayPalette() pal.Palette {
	p := make(pal.Palette, pal.Size)
	for i := range p {
		p[i] = color.NRGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 0xFF}
	}
	return p
}
