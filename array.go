package nbt

import (
	"fmt"
	"slices"

	"github.com/starfederation/nbt-go/bitio"
)

// Numeric arrays are written as a varint byte length followed by the
// elements in little-endian order. ByteArray and BooleanArray carry their
// element count instead, which for one byte elements is the same thing.

type ByteArray []byte

func (ByteArray) Type() *Type { return ByteArrayType }
func (a ByteArray) Value() any { return []byte(a) }
func (a ByteArray) Copy() Tag  { return slices.Clone(a) }
func (a ByteArray) Write(w *Writer) error {
	w.WriteVarBytes(a)
	return w.Err()
}

func loadByteArray(r *Reader) (Tag, error) {
	b, err := r.ReadVarBytes()
	if err != nil {
		return nil, err
	}
	return ByteArray(b), nil
}

type ShortArray []int16

func (ShortArray) Type() *Type { return ShortArrayType }
func (a ShortArray) Value() any { return []int16(a) }
func (a ShortArray) Copy() Tag  { return slices.Clone(a) }
func (a ShortArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.AppendInt16s(nil, a))
	return w.Err()
}

type IntArray []int32

func (IntArray) Type() *Type { return IntArrayType }
func (a IntArray) Value() any { return []int32(a) }
func (a IntArray) Copy() Tag  { return slices.Clone(a) }
func (a IntArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.AppendInt32s(nil, a))
	return w.Err()
}

type LongArray []int64

func (LongArray) Type() *Type { return LongArrayType }
func (a LongArray) Value() any { return []int64(a) }
func (a LongArray) Copy() Tag  { return slices.Clone(a) }
func (a LongArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.AppendInt64s(nil, a))
	return w.Err()
}

type FloatArray []float32

func (FloatArray) Type() *Type { return FloatArrayType }
func (a FloatArray) Value() any { return []float32(a) }
func (a FloatArray) Copy() Tag  { return slices.Clone(a) }
func (a FloatArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.AppendFloat32s(nil, a))
	return w.Err()
}

type DoubleArray []float64

func (DoubleArray) Type() *Type { return DoubleArrayType }
func (a DoubleArray) Value() any { return []float64(a) }
func (a DoubleArray) Copy() Tag  { return slices.Clone(a) }
func (a DoubleArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.AppendFloat64s(nil, a))
	return w.Err()
}

// CharArray holds UTF-16 code units.
type CharArray []uint16

func (CharArray) Type() *Type { return CharArrayType }
func (a CharArray) Value() any { return []uint16(a) }
func (a CharArray) Copy() Tag  { return slices.Clone(a) }
func (a CharArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.AppendUint16s(nil, a))
	return w.Err()
}

// BooleanArray spends one byte per element.
type BooleanArray []bool

func (BooleanArray) Type() *Type { return BooleanArrayType }
func (a BooleanArray) Value() any { return []bool(a) }
func (a BooleanArray) Copy() Tag  { return slices.Clone(a) }
func (a BooleanArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.BoolsToBytes(a))
	return w.Err()
}

func loadBooleanArray(r *Reader) (Tag, error) {
	b, err := r.ReadVarBytes()
	if err != nil {
		return nil, err
	}
	return BooleanArray(bitio.BytesToBools(b)), nil
}

// PackedBooleanArray stores eight elements per byte. A length that is not a
// multiple of eight is padded with false, so a decoded array always has
// 8*n elements.
type PackedBooleanArray []bool

func (PackedBooleanArray) Type() *Type { return PackedBooleanArrayType }
func (a PackedBooleanArray) Value() any { return []bool(a) }
func (a PackedBooleanArray) Copy() Tag  { return slices.Clone(a) }
func (a PackedBooleanArray) Write(w *Writer) error {
	w.WriteVarBytes(bitio.PackBools(a))
	return w.Err()
}

func loadPackedBooleanArray(r *Reader) (Tag, error) {
	b, err := r.ReadVarBytes()
	if err != nil {
		return nil, err
	}
	return PackedBooleanArray(bitio.UnpackBools(b)), nil
}

func arrayLoader[T any](width int, decode func([]byte) T, wrap func(T) Tag) LoadFunc {
	return func(r *Reader) (Tag, error) {
		b, err := r.ReadVarBytes()
		if err != nil {
			return nil, err
		}
		if len(b)%width != 0 {
			return nil, fmt.Errorf("%w: %d bytes, width %d", ErrArrayLength, len(b), width)
		}
		return wrap(decode(b)), nil
	}
}

var (
	loadShortArray  = arrayLoader(bitio.Width16, bitio.Int16s, func(v []int16) Tag { return ShortArray(v) })
	loadIntArray    = arrayLoader(bitio.Width32, bitio.Int32s, func(v []int32) Tag { return IntArray(v) })
	loadLongArray   = arrayLoader(bitio.Width64, bitio.Int64s, func(v []int64) Tag { return LongArray(v) })
	loadFloatArray  = arrayLoader(bitio.Width32, bitio.Float32s, func(v []float32) Tag { return FloatArray(v) })
	loadDoubleArray = arrayLoader(bitio.Width64, bitio.Float64s, func(v []float64) Tag { return DoubleArray(v) })
	loadCharArray   = arrayLoader(bitio.Width16, bitio.Uint16s, func(v []uint16) Tag { return CharArray(v) })
)
