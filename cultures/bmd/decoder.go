package bmd

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/cultures/pal"
)

var ErrUnknownFrameKind = fmt.Errorf("%w: unknown frame type", errs.ErrStructural)

// Decoder holds a parsed sprite file. It is never modified after
// NewDecoder returns, so frames may be decoded from several goroutines.
type Decoder struct {
	r      *bytes.Reader
	header header
	frames []Frame
	pixels []byte
	rows   []Row
}

func NewDecoder(r io.Reader) (*Decoder, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	decoder := &Decoder{r: bytes.NewReader(data)}
	if err := decoder.decode(); err != nil {
		return nil, err
	}
	return decoder, nil
}

func (decoder *Decoder) decode() error {
	if err := binary.Read(decoder.r, binary.LittleEndian, &decoder.header); err != nil {
		return errs.Truncated("bmd header", err)
	}
	if err := decoder.decodeFrames(); err != nil {
		return err
	}
	pixels, err := decoder.section("pixel pool")
	if err != nil {
		return err
	}
	decoder.pixels = pixels
	return decoder.decodeRows()
}

func (decoder *Decoder) section(name string) ([]byte, error) {
	var h sectionHeader
	if err := binary.Read(decoder.r, binary.LittleEndian, &h); err != nil {
		return nil, errs.Truncated("bmd "+name+" header", err)
	}
	if int64(h.Length) > int64(decoder.r.Len()) {
		return nil, errs.Truncated("bmd "+name, io.ErrUnexpectedEOF)
	}
	buf := make([]byte, h.Length)
	if _, err := io.ReadFull(decoder.r, buf); err != nil {
		return nil, errs.Truncated("bmd "+name, err)
	}
	return buf, nil
}

func (decoder *Decoder) decodeFrames() error {
	buf, err := decoder.section("frame directory")
	if err != nil {
		return err
	}
	if len(buf)%frameInfoSize != 0 {
		return errs.Structuralf("bmd frame directory length %d is not a multiple of %d", len(buf), frameInfoSize)
	}
	infos := make([]frameInfo, len(buf)/frameInfoSize)
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, infos); err != nil {
		return errs.Truncated("bmd frame directory", err)
	}

	decoder.frames = make([]Frame, len(infos))
	for i, info := range infos {
		kind := FrameKind(info.Kind)
		switch kind {
		case NormalFrame, ShadowFrame, ExtendedFrame:
		default:
			return fmt.Errorf("%w %d in frame %d", ErrUnknownFrameKind, info.Kind, i)
		}
		decoder.frames[i] = Frame{
			Kind:     kind,
			Dx:       int(info.Dx),
			Dy:       int(info.Dy),
			Width:    int(info.Width),
			Rows:     int(info.Rows),
			FirstRow: int(info.FirstRow),
		}
	}
	return nil
}

func (decoder *Decoder) decodeRows() error {
	buf, err := decoder.section("row directory")
	if err != nil {
		return err
	}
	if len(buf)%4 != 0 {
		return errs.Structuralf("bmd row directory length %d is not a multiple of 4", len(buf))
	}
	decoder.rows = make([]Row, len(buf)/4)
	for i := range decoder.rows {
		decoder.rows[i] = Row(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return nil
}

func (decoder *Decoder) Frames() []Frame { return decoder.frames }
func (decoder *Decoder) Rows() []Row     { return decoder.rows }
func (decoder *Decoder) PoolSize() int   { return len(decoder.pixels) }

// Frame decodes frame i into a new image.
func (decoder *Decoder) Frame(i int, palette pal.Palette, mode AlphaMode) (*image.NRGBA, error) {
	if i < 0 || i >= len(decoder.frames) {
		return nil, fmt.Errorf("bmd: frame %d of %d", i, len(decoder.frames))
	}
	img, err := decoder.render(decoder.frames[i], palette, mode)
	if err != nil {
		return nil, fmt.Errorf("bmd frame %d: %w", i, err)
	}
	return img, nil
}

// All decodes every frame in directory order.
func (decoder *Decoder) All(palette pal.Palette, mode AlphaMode) ([]*image.NRGBA, error) {
	images := make([]*image.NRGBA, len(decoder.frames))
	for i := range decoder.frames {
		img, err := decoder.Frame(i, palette, mode)
		if err != nil {
			return nil, err
		}
		images[i] = img
	}
	return images, nil
}
