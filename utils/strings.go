package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
)

type CString []byte

func (c CString) NullTerminateBytes() []byte {
	i := bytes.IndexByte(c, 0)
	if i == -1 {
		return c
	} else if i == 0 {
		return nil
	} else {
		return c[:i]
	}
}

func (c CString) String() string { return string(c.NullTerminateBytes()) }

// Decode converts the string from a single-byte code page. A nil encoding
// keeps the bytes as they are.
func (c CString) Decode(encoding *charmap.Charmap) string {
	if encoding == nil {
		return c.String()
	}
	buf, err := encoding.NewDecoder().Bytes(c.NullTerminateBytes())
	if err != nil {
		return c.String()
	}
	return string(buf)
}

// ReadCString reads bytes up to and including a NUL terminator and returns
// them without it. Running out of input before the terminator is
// io.ErrUnexpectedEOF.
func ReadCString(r io.ByteReader) (CString, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if b == 0 {
			return buf, nil
		}
		buf = append(buf, b)
	}
}

// ReadShortString reads a string prefixed by a one byte length.
func ReadShortString(r io.Reader) (CString, error) {
	n, err := ReadByte(r)
	if err != nil {
		return nil, err
	}
	return readFixed(r, int(n))
}

var ErrStringTooLong = errors.New("string length exceeds limit")

// ReadLongString reads a string prefixed by a little-endian uint32 length
// of at most limit bytes.
func ReadLongString(r io.Reader, limit uint32) (CString, error) {
	n, err := ReadUint32LE(r)
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrStringTooLong, n, limit)
	}
	return readFixed(r, int(n))
}

func readFixed(r io.Reader, n int) (CString, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
