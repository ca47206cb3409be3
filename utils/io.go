package utils

import (
	"encoding/binary"
	"io"
)

func ReadByte(reader io.Reader) (byte, error) {
	if br, ok := reader.(io.ByteReader); ok {
		return br.ReadByte()
	}
	buf := make([]byte, 1)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func ReadUint16LE(reader io.Reader) (uint16, error) {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func ReadUint32LE(reader io.Reader) (uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}
