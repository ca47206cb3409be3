// Package mapfile demultiplexes the tagged sections of a map file into
// decoded channels.
package mapfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"gitgub.com/cam-per/cultures/cultures/channel"
	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/utils"
	"golang.org/x/text/encoding/charmap"
)

type header struct {
	Tag      [8]byte
	Unknown1 uint32
	Length   uint32
	Unknown2 uint32
	Unknown3 uint32
	Unknown4 uint32
	Unknown5 uint32
}

var headerSize = binary.Size(header{})

// Size is the payload of the map size section.
type Size struct {
	Width  uint32
	Height uint32
}

// Section describes one record of the container as it was scanned.
type Section struct {
	Tag    Tag
	Offset int64
	Length uint32
	Known  bool
}

type Decoder struct {
	r        *bytes.Reader
	encoding *charmap.Charmap
	sections []Section
	payloads map[Tag]channel.Payload
	size     *Size
}

// NewDecoder scans every section of a map file. Sections with a known tag
// are decoded eagerly; the rest are skipped by their declared length.
func NewDecoder(r io.Reader, encoding *charmap.Charmap) (*Decoder, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	decoder := &Decoder{
		r:        bytes.NewReader(data),
		encoding: encoding,
		payloads: make(map[Tag]channel.Payload),
	}
	if err := decoder.decode(data); err != nil {
		return nil, err
	}
	return decoder, nil
}

func (decoder *Decoder) decode(data []byte) error {
	for decoder.r.Len() > 0 {
		offset := decoder.r.Size() - int64(decoder.r.Len())

		var h header
		if err := binary.Read(decoder.r, binary.LittleEndian, &h); err != nil {
			return errs.Truncated(fmt.Sprintf("map section header at %d", offset), err)
		}
		tag := Tag(utils.CString(h.Tag[:]).String())
		start := offset + int64(headerSize)
		if int64(h.Length) > int64(decoder.r.Len()) {
			return errs.Truncated(fmt.Sprintf("map section %q", tag), io.ErrUnexpectedEOF)
		}
		payload := data[start : start+int64(h.Length)]
		if _, err := decoder.r.Seek(int64(h.Length), io.SeekCurrent); err != nil {
			return err
		}

		section := Section{Tag: tag, Offset: start, Length: h.Length}
		if err := decoder.decodeSection(&section, payload); err != nil {
			return err
		}
		decoder.sections = append(decoder.sections, section)
	}
	return nil
}

func (decoder *Decoder) decodeSection(section *Section, payload []byte) error {
	if section.Tag == TagSize {
		if len(payload) < 8 {
			return errs.Structuralf("map size section holds %d bytes, want 8", len(payload))
		}
		decoder.size = &Size{
			Width:  binary.LittleEndian.Uint32(payload[0:]),
			Height: binary.LittleEndian.Uint32(payload[4:]),
		}
		section.Known = true
		return nil
	}

	codec, ok := codecs[section.Tag]
	if !ok {
		return nil
	}
	decoded, err := channel.Decode(codec, payload, decoder.encoding)
	if err != nil {
		return fmt.Errorf("map section %q: %w", section.Tag, err)
	}
	// a repeated tag replaces the earlier section
	decoder.payloads[section.Tag] = decoded
	section.Known = true
	return nil
}

// Sections lists every record in file order, skipped ones included.
func (decoder *Decoder) Sections() []Section { return decoder.sections }

// Payload returns the decoded channel of a known section.
func (decoder *Decoder) Payload(tag Tag) (channel.Payload, bool) {
	p, ok := decoder.payloads[tag]
	return p, ok
}

func (decoder *Decoder) Size() (Size, bool) {
	if decoder.size == nil {
		return Size{}, false
	}
	return *decoder.size, true
}
