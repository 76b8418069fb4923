package bitio

import (
	"errors"
	"io"
)

// MaxVarIntLen is the longest encoding of a 32-bit varint.
const MaxVarIntLen = 5

// ErrVarIntOverflow is returned when a varint does not terminate within
// MaxVarIntLen bytes.
var ErrVarIntOverflow = errors.New("bitio: varint overflows 32 bits")

// AppendVarInt appends the LEB128 encoding of v to dst.
func AppendVarInt(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// VarIntLen returns the number of bytes AppendVarInt uses for v.
func VarIntLen(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ReadVarInt decodes one varint from r.
func ReadVarInt(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < MaxVarIntLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if i == MaxVarIntLen-1 && b > 0x0F {
			return 0, ErrVarIntOverflow
		}
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrVarIntOverflow
}

// DecodeVarInt decodes a varint from the front of b and returns the value and
// the number of bytes consumed.
func DecodeVarInt(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < MaxVarIntLen; i++ {
		if i >= len(b) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		c := b[i]
		if i == MaxVarIntLen-1 && c > 0x0F {
			return 0, 0, ErrVarIntOverflow
		}
		v |= uint32(c&0x7F) << (7 * i)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrVarIntOverflow
}
