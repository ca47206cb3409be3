// Package bmd decodes sprite animation files (.bmd): a frame directory, a
// shared pixel pool and a directory of bit-packed row descriptors.
package bmd

import (
	"encoding/binary"
	"fmt"
	"image"
)

type header struct {
	Magic    uint32
	Zero0    uint32
	Zero1    uint32
	Frames   uint32
	Pixels   uint32
	Rows     uint32
	Unknown0 uint32
	Unknown1 uint32
	Zero2    uint32
}

type sectionHeader struct {
	Magic  uint32
	Zero   uint32
	Length uint32
}

type frameInfo struct {
	Kind     uint8
	Dx, Dy   uint8
	Width    uint8
	Rows     uint8
	FirstRow uint8
}

var frameInfoSize = binary.Size(frameInfo{})

type FrameKind uint8

const (
	NormalFrame   FrameKind = 1
	ShadowFrame   FrameKind = 2
	ExtendedFrame FrameKind = 4
)

func (k FrameKind) String() string {
	switch k {
	case NormalFrame:
		return "normal"
	case ShadowFrame:
		return "shadow"
	case ExtendedFrame:
		return "extended"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// AlphaMode selects how the second byte of extended frame pixels is read.
// The file does not record it.
type AlphaMode uint8

const (
	AlphaFromFile AlphaMode = iota
	AlphaIgnore
)

// Frame locates one animation frame inside the shared row directory.
type Frame struct {
	Kind     FrameKind
	Dx, Dy   int
	Width    int
	Rows     int
	FirstRow int
}

// Rect is the frame's footprint relative to the sprite anchor.
func (frame Frame) Rect() image.Rectangle {
	return image.Rect(frame.Dx, frame.Dy, frame.Dx+frame.Width, frame.Dy+frame.Rows)
}

// Bounds is the smallest rectangle covering every non-empty frame at its
// offset.
func Bounds(frames []Frame) image.Rectangle {
	var r image.Rectangle
	for _, frame := range frames {
		r = r.Union(frame.Rect())
	}
	return r
}

const (
	offsetBits = 22
	offsetMask = 1<<offsetBits - 1
	indentMask = 1<<10 - 1
)

// Row packs the pool offset of a row in its low 22 bits and the left
// indent in the high 10 bits.
type Row uint32

func (row Row) Offset() int { return int(uint32(row) & offsetMask) }
func (row Row) Indent() int { return int(uint32(row)>>offsetBits) & indentMask }

// Empty reports the all-ones descriptor of a fully transparent row. Such
// rows never touch the pixel pool.
func (row Row) Empty() bool {
	return row.Offset() == offsetMask && row.Indent() == indentMask
}

// NewRow packs an offset and an indent.
func NewRow(offset, indent int) Row {
	return Row(uint32(indent&indentMask)<<offsetBits | uint32(offset&offsetMask))
}
