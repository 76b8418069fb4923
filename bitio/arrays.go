package bitio

import (
	"encoding/binary"
	"math"
)

var le = binary.LittleEndian

// Element widths of the fixed size array payloads.
const (
	Width16 = 2
	Width32 = 4
	Width64 = 8
)

func appendLE16[T ~int16 | ~uint16](dst []byte, v []T) []byte {
	for _, x := range v {
		dst = le.AppendUint16(dst, uint16(x))
	}
	return dst
}

func decodeLE16[T ~int16 | ~uint16](b []byte) []T {
	out := make([]T, len(b)/Width16)
	for i := range out {
		out[i] = T(le.Uint16(b[i*Width16:]))
	}
	return out
}

func appendLE32[T ~int32 | ~uint32](dst []byte, v []T) []byte {
	for _, x := range v {
		dst = le.AppendUint32(dst, uint32(x))
	}
	return dst
}

func decodeLE32[T ~int32 | ~uint32](b []byte) []T {
	out := make([]T, len(b)/Width32)
	for i := range out {
		out[i] = T(le.Uint32(b[i*Width32:]))
	}
	return out
}

func appendLE64[T ~int64 | ~uint64](dst []byte, v []T) []byte {
	for _, x := range v {
		dst = le.AppendUint64(dst, uint64(x))
	}
	return dst
}

func decodeLE64[T ~int64 | ~uint64](b []byte) []T {
	out := make([]T, len(b)/Width64)
	for i := range out {
		out[i] = T(le.Uint64(b[i*Width64:]))
	}
	return out
}

// AppendInt16s appends v little-endian.
func AppendInt16s(dst []byte, v []int16) []byte { return appendLE16(dst, v) }

// Int16s decodes little-endian int16 values; a trailing partial element is ignored.
func Int16s(b []byte) []int16 { return decodeLE16[int16](b) }

// AppendUint16s appends v little-endian.
func AppendUint16s(dst []byte, v []uint16) []byte { return appendLE16(dst, v) }

// Uint16s decodes little-endian uint16 values.
func Uint16s(b []byte) []uint16 { return decodeLE16[uint16](b) }

// AppendInt32s appends v little-endian.
func AppendInt32s(dst []byte, v []int32) []byte { return appendLE32(dst, v) }

// Int32s decodes little-endian int32 values.
func Int32s(b []byte) []int32 { return decodeLE32[int32](b) }

// AppendInt64s appends v little-endian.
func AppendInt64s(dst []byte, v []int64) []byte { return appendLE64(dst, v) }

// Int64s decodes little-endian int64 values.
func Int64s(b []byte) []int64 { return decodeLE64[int64](b) }

// AppendFloat32s appends the IEEE bits of v little-endian.
func AppendFloat32s(dst []byte, v []float32) []byte {
	for _, x := range v {
		dst = le.AppendUint32(dst, math.Float32bits(x))
	}
	return dst
}

// Float32s decodes little-endian IEEE float32 values.
func Float32s(b []byte) []float32 {
	bits := decodeLE32[uint32](b)
	out := make([]float32, len(bits))
	for i, u := range bits {
		out[i] = math.Float32frombits(u)
	}
	return out
}

// AppendFloat64s appends the IEEE bits of v little-endian.
func AppendFloat64s(dst []byte, v []float64) []byte {
	for _, x := range v {
		dst = le.AppendUint64(dst, math.Float64bits(x))
	}
	return dst
}

// Float64s decodes little-endian IEEE float64 values.
func Float64s(b []byte) []float64 {
	bits := decodeLE64[uint64](b)
	out := make([]float64, len(bits))
	for i, u := range bits {
		out[i] = math.Float64frombits(u)
	}
	return out
}
