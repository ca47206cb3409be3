// Package channel decodes the payload streams of the map container.
//
// Run-length and raw channels share a 21 byte preamble: a flag byte, the
// section length, an 8 byte tag, the element count and a repeat of the
// section length. Dictionaries carry no preamble.
package channel

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/utils"
	"golang.org/x/text/encoding/charmap"
)

type Codec uint8

const (
	CodecBytes Codec = iota + 1
	CodecWords
	CodecRaw
	CodecDictionary
)

func (c Codec) String() string {
	switch c {
	case CodecBytes:
		return "byte-rle"
	case CodecWords:
		return "word-rle"
	case CodecRaw:
		return "raw"
	case CodecDictionary:
		return "dictionary"
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

var (
	ErrLengthMismatch = fmt.Errorf("%w: channel element count mismatch", errs.ErrStructural)
	ErrUnknownCodec   = fmt.Errorf("%w: unknown channel codec", errs.ErrStructural)
)

type header struct {
	Flag      uint8
	Length    uint32
	Tag       [8]byte
	Count     uint32
	LengthDup uint32
}

var headerSize = binary.Size(header{})

type Header struct {
	Flag   uint8
	Length uint32
	Tag    string
	// Count is the element count field as stored. Word channels store a
	// byte count here.
	Count uint32
}

// Payload is one decoded channel: *Bytes, *Words or *Dictionary.
type Payload interface {
	Codec() Codec
	Len() int
}

type Bytes struct {
	Header
	Data []byte
}

func (b *Bytes) Codec() Codec      { return CodecBytes }
func (b *Bytes) Len() int          { return len(b.Data) }
func (b *Bytes) ElementWidth() int { return 1 }

type Words struct {
	Header
	Data []uint16
}

func (w *Words) Codec() Codec      { return CodecWords }
func (w *Words) Len() int          { return len(w.Data) }
func (w *Words) ElementWidth() int { return 2 }

type Dictionary struct {
	Entries []string
}

func (d *Dictionary) Codec() Codec { return CodecDictionary }
func (d *Dictionary) Len() int     { return len(d.Entries) }

// Decode runs the strategy selected by codec over one section payload.
// Raw channels decode to *Bytes.
func Decode(codec Codec, data []byte, encoding *charmap.Charmap) (Payload, error) {
	switch codec {
	case CodecBytes:
		return DecodeBytes(data)
	case CodecWords:
		return DecodeWords(data)
	case CodecRaw:
		return DecodeRaw(data)
	case CodecDictionary:
		return DecodeDictionary(data, encoding)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
}

func readHeader(r *bytes.Reader) (Header, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, errs.Truncated("channel header", err)
	}
	if h.Length != h.LengthDup {
		return Header{}, errs.Structuralf("channel %q: section length %d disagrees with copy %d",
			utils.CString(h.Tag[:]), h.Length, h.LengthDup)
	}
	return Header{
		Flag:   h.Flag,
		Length: h.Length,
		Tag:    utils.CString(h.Tag[:]).String(),
		Count:  h.Count,
	}, nil
}

func mismatch(tag string, produced, declared int) error {
	return fmt.Errorf("%w: channel %q produced %d of %d elements", ErrLengthMismatch, tag, produced, declared)
}
