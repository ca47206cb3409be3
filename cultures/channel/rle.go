package channel

import (
	"bytes"
	"io"

	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/utils"
)

// Control bytes above runFlag start a run of (c - runFlag) copies of one
// value; any other control byte is a count of literal values.
const runFlag = 0x80

// maxRun is the longest run one control byte encodes.
const maxRun = 0xFF - runFlag

// capacity is the most elements input bytes can expand to when each run
// costs one control byte plus one value of unit bytes.
func capacity(input, unit int) int64 {
	return int64(input/(1+unit)) * maxRun
}

// DecodeBytes expands a byte run-length channel. The input must produce
// exactly Count bytes.
func DecodeBytes(data []byte) (*Bytes, error) {
	r := bytes.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	if int64(h.Count) > capacity(r.Len(), 1) {
		return nil, errs.Structuralf("byte channel %q: %d bytes cannot expand to %d", h.Tag, r.Len(), h.Count)
	}
	out := make([]byte, h.Count)
	n := 0
	for r.Len() > 0 {
		c, _ := r.ReadByte()
		if c > runFlag {
			run := int(c - runFlag)
			value, err := r.ReadByte()
			if err != nil {
				return nil, errs.Truncated("byte run", err)
			}
			if n+run > len(out) {
				return nil, mismatch(h.Tag, n+run, len(out))
			}
			for i := 0; i < run; i++ {
				out[n] = value
				n++
			}
			continue
		}

		literals := int(c)
		if n+literals > len(out) {
			return nil, mismatch(h.Tag, n+literals, len(out))
		}
		if _, err := io.ReadFull(r, out[n:n+literals]); err != nil {
			return nil, errs.Truncated("byte literals", err)
		}
		n += literals
	}
	if n != len(out) {
		return nil, mismatch(h.Tag, n, len(out))
	}
	return &Bytes{Header: h, Data: out}, nil
}

// DecodeWords expands a run-length channel of little-endian 16-bit values.
// The stored count is in bytes.
func DecodeWords(data []byte) (*Words, error) {
	r := bytes.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Count%2 != 0 {
		return nil, errs.Structuralf("word channel %q: odd byte count %d", h.Tag, h.Count)
	}

	if int64(h.Count/2) > capacity(r.Len(), 2) {
		return nil, errs.Structuralf("word channel %q: %d bytes cannot expand to %d words", h.Tag, r.Len(), h.Count/2)
	}
	out := make([]uint16, h.Count/2)
	n := 0
	for r.Len() > 0 {
		c, _ := r.ReadByte()
		if c > runFlag {
			run := int(c - runFlag)
			value, err := utils.ReadUint16LE(r)
			if err != nil {
				return nil, errs.Truncated("word run", err)
			}
			if n+run > len(out) {
				return nil, mismatch(h.Tag, n+run, len(out))
			}
			for i := 0; i < run; i++ {
				out[n] = value
				n++
			}
			continue
		}

		literals := int(c)
		if n+literals > len(out) {
			return nil, mismatch(h.Tag, n+literals, len(out))
		}
		for i := 0; i < literals; i++ {
			value, err := utils.ReadUint16LE(r)
			if err != nil {
				return nil, errs.Truncated("word literals", err)
			}
			out[n] = value
			n++
		}
	}
	if n != len(out) {
		return nil, mismatch(h.Tag, n, len(out))
	}
	return &Words{Header: h, Data: out}, nil
}
