package cif

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/utils"
	"golang.org/x/text/encoding/charmap"
)

var itemPattern = regexp.MustCompile(`^([A-Za-z0-9]+)((?:[ \t]+(?:"[^"]*"|-?[0-9]+(?:\.[0-9]+)?))+)[ \t]*$`)

type Decoder struct {
	r        *bytes.Reader
	encoding *charmap.Charmap
	header   header
	index    []byte
	text     []byte
	sections []Section
	dropped  int
}

// NewDecoder reads a whole container and splits it into sections. Lines are
// converted from encoding; nil keeps their bytes.
func NewDecoder(r io.Reader, encoding *charmap.Charmap) (*Decoder, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	decoder := &Decoder{
		r:        bytes.NewReader(data),
		encoding: encoding,
	}
	if err := decoder.decode(); err != nil {
		return nil, err
	}
	return decoder, nil
}

func (decoder *Decoder) decode() error {
	var magic uint16
	if err := binary.Read(decoder.r, binary.LittleEndian, &magic); err != nil {
		return errs.Truncated("cif magic", err)
	}
	if magic != Magic {
		return fmt.Errorf("%w: magic %#04x", ErrUnknownContainer, magic)
	}

	if err := decoder.skip(prefixSkip); err != nil {
		return err
	}
	if err := binary.Read(decoder.r, binary.LittleEndian, &decoder.header); err != nil {
		return errs.Truncated("cif header", err)
	}
	h := decoder.header
	if h.Entries != h.EntriesDup1 || h.Entries != h.EntriesDup2 {
		return errs.Structuralf("cif entry counts disagree: %d, %d, %d", h.Entries, h.EntriesDup1, h.EntriesDup2)
	}

	var err error
	if decoder.index, err = decoder.table("index", h.IndexTableSize); err != nil {
		return err
	}
	if err := decoder.skip(tableGap); err != nil {
		return err
	}
	if decoder.text, err = decoder.table("text", h.TextTableSize); err != nil {
		return err
	}
	return decoder.tokenize()
}

func (decoder *Decoder) skip(n int64) error {
	if int64(decoder.r.Len()) < n {
		return errs.Truncated("cif container", io.ErrUnexpectedEOF)
	}
	_, err := decoder.r.Seek(n, io.SeekCurrent)
	return err
}

func (decoder *Decoder) table(name string, size uint32) ([]byte, error) {
	if int64(size) > int64(decoder.r.Len()) {
		return nil, errs.Truncated("cif "+name+" table", io.ErrUnexpectedEOF)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(decoder.r, buf); err != nil {
		return nil, errs.Truncated("cif "+name+" table", err)
	}
	return Decipher(buf), nil
}

func (decoder *Decoder) tokenize() error {
	text := bytes.NewReader(decoder.text)
	for i := uint32(0); i < decoder.header.Entries; i++ {
		level, err := text.ReadByte()
		if err != nil {
			return errs.Truncated(fmt.Sprintf("cif entry %d", i), err)
		}
		line, err := utils.ReadCString(text)
		if err != nil {
			return errs.Truncated(fmt.Sprintf("cif entry %d", i), err)
		}
		value := line.Decode(decoder.encoding)

		if level == sectionLevel {
			decoder.sections = append(decoder.sections, Section{Name: value})
			continue
		}
		if len(decoder.sections) == 0 {
			return fmt.Errorf("%w: entry %d has level %d", ErrNoSection, i, level)
		}
		item, ok := ParseItem(value)
		if !ok {
			decoder.dropped++
			continue
		}
		current := &decoder.sections[len(decoder.sections)-1]
		current.Items = append(current.Items, item)
	}
	return nil
}

// ParseItem splits a definition line into key and value. Lines that are not
// a key followed by quoted strings and numbers are rejected.
func ParseItem(line string) (Item, bool) {
	m := itemPattern.FindStringSubmatch(line)
	if m == nil {
		return Item{}, false
	}
	return Item{Key: m[1], Value: strings.TrimSpace(m[2])}, true
}

func (decoder *Decoder) Sections() []Section { return decoder.sections }

// Dropped counts lines that did not match the item grammar.
func (decoder *Decoder) Dropped() int { return decoder.dropped }

func (decoder *Decoder) Entries() int { return int(decoder.header.Entries) }

// IndexTable returns the deciphered index table.
func (decoder *Decoder) IndexTable() []byte { return decoder.index }

// Records builds a typed record for every section, in container order.
func (decoder *Decoder) Records() ([]Record, error) {
	records := make([]Record, 0, len(decoder.sections))
	for i, section := range decoder.sections {
		record, err := Build(section)
		if err != nil {
			return nil, fmt.Errorf("cif section %d [%s]: %w", i, section.Name, err)
		}
		records = append(records, record)
	}
	return records, nil
}
