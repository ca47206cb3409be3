package channel

import (
	"bytes"
	"fmt"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/utils"
	"golang.org/x/text/encoding/charmap"
)

// DecodeRaw copies an uncompressed channel. The bytes after the preamble
// must be exactly Count long.
func DecodeRaw(data []byte) (*Bytes, error) {
	r := bytes.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != int(h.Count) {
		return nil, mismatch(h.Tag, r.Len(), int(h.Count))
	}
	out := make([]byte, h.Count)
	copy(out, data[headerSize:])
	return &Bytes{Header: h, Data: out}, nil
}

// DecodeDictionary reads a uint32 count followed by that many short
// strings, each trailed by one padding byte.
func DecodeDictionary(data []byte, encoding *charmap.Charmap) (*Dictionary, error) {
	r := bytes.NewReader(data)
	count, err := utils.ReadUint32LE(r)
	if err != nil {
		return nil, errs.Truncated("dictionary count", err)
	}
	// every entry takes at least two bytes
	if int64(count)*2 > int64(r.Len()) {
		return nil, mismatch("dictionary", r.Len()/2, int(count))
	}

	entries := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := utils.ReadShortString(r)
		if err != nil {
			return nil, errs.Truncated(fmt.Sprintf("dictionary entry %d", i), err)
		}
		if _, err := r.ReadByte(); err != nil {
			return nil, errs.Truncated(fmt.Sprintf("dictionary entry %d padding", i), err)
		}
		entries = append(entries, s.Decode(encoding))
	}
	if r.Len() != 0 {
		return nil, errs.Structuralf("dictionary: %d trailing bytes after %d entries", r.Len(), count)
	}
	return &Dictionary{Entries: entries}, nil
}
