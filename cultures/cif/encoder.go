package cif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const itemLevel = 2

// Encode writes sections as a container NewDecoder accepts. The index
// table holds the text table offset of every entry.
func Encode(w io.Writer, sections []Section, encoding *charmap.Charmap) error {
	var text, index bytes.Buffer
	entries := 0
	add := func(level byte, line string) error {
		if encoding != nil {
			s, err := encoding.NewEncoder().String(line)
			if err != nil {
				return fmt.Errorf("cif: encode %q: %w", line, err)
			}
			line = s
		}
		if strings.IndexByte(line, 0) >= 0 {
			return fmt.Errorf("cif: line %q holds a NUL byte", line)
		}
		binary.Write(&index, binary.LittleEndian, uint32(text.Len()))
		text.WriteByte(level)
		text.WriteString(line)
		text.WriteByte(0)
		entries++
		return nil
	}
	for _, section := range sections {
		if err := add(sectionLevel, section.Name); err != nil {
			return err
		}
		for _, item := range section.Items {
			if err := add(itemLevel, item.Key+" "+item.Value); err != nil {
				return err
			}
		}
	}

	h := header{
		Entries:        uint32(entries),
		EntriesDup1:    uint32(entries),
		EntriesDup2:    uint32(entries),
		TextTableSize:  uint32(text.Len()),
		IndexTableSize: uint32(index.Len()),
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(Magic))
	buf.Write(make([]byte, prefixSkip))
	binary.Write(&buf, binary.LittleEndian, h)
	buf.Write(Encipher(index.Bytes()))
	buf.Write(make([]byte, tableGap))
	buf.Write(Encipher(text.Bytes()))
	_, err := w.Write(buf.Bytes())
	return err
}
