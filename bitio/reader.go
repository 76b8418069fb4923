package bitio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultMaxAlloc bounds any single length-prefixed read.
const DefaultMaxAlloc = 64 << 20

// ErrTooLarge is returned when a declared length exceeds the reader's limit.
var ErrTooLarge = errors.New("bitio: declared length exceeds limit")

var be = binary.BigEndian

// Reader decodes wire primitives from a buffered byte source.
type Reader struct {
	src *bufio.Reader
	// MaxAlloc caps the size of a single length-prefixed payload. Zero means
	// DefaultMaxAlloc.
	MaxAlloc int
	scratch  [8]byte
}

// NewReader wraps r. An existing *bufio.Reader is used as is.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{src: br}
}

func (r *Reader) limit() int {
	if r.MaxAlloc > 0 {
		return r.MaxAlloc
	}
	return DefaultMaxAlloc
}

// Limit returns the effective allocation limit.
func (r *Reader) Limit() int { return r.limit() }

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	return r.src.ReadByte()
}

// Read implements io.Reader over the buffered source.
func (r *Reader) Read(p []byte) (int, error) {
	return r.src.Read(p)
}

func (r *Reader) fill(n int) ([]byte, error) {
	b := r.scratch[:n]
	if _, err := io.ReadFull(r.src, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b, nil
}

// ReadUint8 reads one byte; a clean end of stream is io.ErrUnexpectedEOF.
func (r *Reader) ReadUint8() (byte, error) {
	b, err := r.src.ReadByte()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return b, err
}

// ReadInt8 reads a signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadUint8()
	return int8(b), err
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	return b != 0, err
}

// ReadUint16 reads a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return be.Uint16(b), nil
}

// ReadInt16 reads a big-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads a big-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return int32(be.Uint32(b)), nil
}

// ReadInt64 reads a big-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return int64(be.Uint64(b)), nil
}

// ReadFloat32 reads big-endian IEEE bits.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadInt32()
	return math.Float32frombits(uint32(v)), err
}

// ReadFloat64 reads big-endian IEEE bits.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadInt64()
	return math.Float64frombits(uint64(v)), err
}

// ReadInt24 reads a sign-extended 24-bit integer.
func (r *Reader) ReadInt24() (int32, error) {
	b, err := r.fill(3)
	if err != nil {
		return 0, err
	}
	return Int24(b), nil
}

// ReadInt40 reads a sign-extended 40-bit integer.
func (r *Reader) ReadInt40() (int64, error) {
	b, err := r.fill(5)
	if err != nil {
		return 0, err
	}
	return Int40(b), nil
}

// ReadInt48 reads a sign-extended 48-bit integer.
func (r *Reader) ReadInt48() (int64, error) {
	b, err := r.fill(6)
	if err != nil {
		return 0, err
	}
	return Int48(b), nil
}

// ReadInt56 reads a sign-extended 56-bit integer.
func (r *Reader) ReadInt56() (int64, error) {
	b, err := r.fill(7)
	if err != nil {
		return 0, err
	}
	return Int56(b), nil
}

// ReadVarInt reads a LEB128 varint.
func (r *Reader) ReadVarInt() (uint32, error) {
	v, err := ReadVarInt(r.src)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return v, err
}

// ReadLength reads a varint and checks it against the allocation limit.
func (r *Reader) ReadLength() (int, error) {
	v, err := r.ReadVarInt()
	if err != nil {
		return 0, err
	}
	if uint64(v) > uint64(r.limit()) {
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, v)
	}
	return int(v), nil
}

// ReadBytes reads exactly n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.limit() {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// ReadVarBytes reads a varint length followed by that many bytes.
func (r *Reader) ReadVarBytes() ([]byte, error) {
	n, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(n)
}

// ReadUTF reads a u16-prefixed modified UTF-8 string.
func (r *Reader) ReadUTF() (string, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return DecodeUTF(b)
}
