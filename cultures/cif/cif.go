// Package cif reads the enciphered definition containers (.cif) of the
// engine and builds typed records from their sections.
package cif

import (
	"encoding/binary"
	"fmt"

	"gitgub.com/cam-per/cultures/cultures/errs"
)

// Magic is the only container variant shipped with the game.
const Magic uint16 = 0x03FD

const (
	prefixSkip = 12
	tableGap   = 13
)

// Level of the record that opens a section.
const sectionLevel = 1

type header struct {
	Entries        uint32
	EntriesDup1    uint32
	EntriesDup2    uint32
	TextTableSize  uint32
	Reserved1      uint32
	Reserved2      uint32
	IndexTableSize uint32
}

var headerSize = binary.Size(header{})

var (
	ErrUnknownContainer = fmt.Errorf("%w: unknown cif container", errs.ErrStructural)
	ErrNoSection        = fmt.Errorf("%w: cif line outside of a section", errs.ErrStructural)
	ErrInvalidValue     = fmt.Errorf("%w: invalid cif value", errs.ErrStructural)
)

// Item is one key/value line of a section. Value is the raw text after the
// key with surrounding whitespace removed.
type Item struct {
	Key   string
	Value string
}

// Section is a named group of lines. Sections are never modified after
// the decoder produced them.
type Section struct {
	Name  string
	Items []Item
}
