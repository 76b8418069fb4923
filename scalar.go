package nbt

import (
	"github.com/starfederation/nbt-go/bitio"
)

// EmptyTag is the payload-less tag. Its id doubles as the compound
// terminator and as the element type of an empty list.
type EmptyTag struct{}

// Empty is the single EmptyTag value.
var Empty = EmptyTag{}

func (EmptyTag) Type() *Type           { return EmptyType }
func (EmptyTag) Value() any            { return nil }
func (EmptyTag) Write(w *Writer) error { return w.Err() }
func (EmptyTag) Copy() Tag             { return Empty }

func loadEmpty(*Reader) (Tag, error) { return Empty, nil }

// IsEmpty reports whether t is nil or the Empty tag.
func IsEmpty(t Tag) bool {
	return t == nil || t.Type() == EmptyType
}

type Byte int8

func (Byte) Type() *Type { return ByteType }
func (b Byte) Value() any { return int8(b) }
func (b Byte) Copy() Tag  { return b }
func (b Byte) Write(w *Writer) error {
	w.WriteInt8(int8(b))
	return w.Err()
}

type Short int16

func (Short) Type() *Type { return ShortType }
func (s Short) Value() any { return int16(s) }
func (s Short) Copy() Tag  { return s }
func (s Short) Write(w *Writer) error {
	w.WriteInt16(int16(s))
	return w.Err()
}

type Int int32

func (Int) Type() *Type { return IntType }
func (i Int) Value() any { return int32(i) }
func (i Int) Copy() Tag  { return i }
func (i Int) Write(w *Writer) error {
	w.WriteInt32(int32(i))
	return w.Err()
}

type Long int64

func (Long) Type() *Type { return LongType }
func (l Long) Value() any { return int64(l) }
func (l Long) Copy() Tag  { return l }
func (l Long) Write(w *Writer) error {
	w.WriteInt64(int64(l))
	return w.Err()
}

type Float float32

func (Float) Type() *Type { return FloatType }
func (f Float) Value() any { return float32(f) }
func (f Float) Copy() Tag  { return f }
func (f Float) Write(w *Writer) error {
	w.WriteFloat32(float32(f))
	return w.Err()
}

type Double float64

func (Double) Type() *Type { return DoubleType }
func (d Double) Value() any { return float64(d) }
func (d Double) Copy() Tag  { return d }
func (d Double) Write(w *Writer) error {
	w.WriteFloat64(float64(d))
	return w.Err()
}

// Char is a single UTF-16 code unit.
type Char uint16

func (Char) Type() *Type { return CharType }
func (c Char) Value() any { return uint16(c) }
func (c Char) Copy() Tag  { return c }
func (c Char) Write(w *Writer) error {
	w.WriteUint16(uint16(c))
	return w.Err()
}

// Rune returns the code unit as a rune. Surrogate halves are returned as is.
func (c Char) Rune() rune { return rune(c) }

type String string

func (String) Type() *Type { return StringType }
func (s String) Value() any { return string(s) }
func (s String) Copy() Tag  { return s }
func (s String) Write(w *Writer) error {
	w.WriteUTF(string(s))
	return w.Err()
}

// Boolean stores up to eight flags in one byte. A single boolean uses bit 0,
// so True is 1 and False is 0.
type Boolean uint8

const (
	False Boolean = 0
	True  Boolean = 1
)

// NewBoolean packs flags into bits 0..7. Flags past the eighth are ignored.
func NewBoolean(flags ...bool) Boolean {
	var b Boolean
	for i, f := range flags {
		if i == 8 {
			break
		}
		b = b.WithBit(i, f)
	}
	return b
}

// BooleanOf returns True or False.
func BooleanOf(v bool) Boolean {
	if v {
		return True
	}
	return False
}

func (Boolean) Type() *Type { return BooleanType }
func (b Boolean) Value() any { return uint8(b) }
func (b Boolean) Copy() Tag  { return b }
func (b Boolean) Write(w *Writer) error {
	w.WriteUint8(uint8(b))
	return w.Err()
}

// Bool reports whether any flag is set.
func (b Boolean) Bool() bool { return b != 0 }

// Bit reports flag i.
func (b Boolean) Bit(i int) bool { return b&(1<<uint(i&7)) != 0 }

// WithBit returns b with flag i set to v.
func (b Boolean) WithBit(i int, v bool) Boolean {
	mask := Boolean(1) << uint(i&7)
	if v {
		return b | mask
	}
	return b &^ mask
}

func scalar[V any](read func(*bitio.Reader) (V, error), wrap func(V) Tag) LoadFunc {
	return func(r *Reader) (Tag, error) {
		v, err := read(r.Reader)
		if err != nil {
			return nil, err
		}
		return wrap(v), nil
	}
}

var (
	loadByte    = scalar((*bitio.Reader).ReadInt8, func(v int8) Tag { return Byte(v) })
	loadShort   = scalar((*bitio.Reader).ReadInt16, func(v int16) Tag { return Short(v) })
	loadInt     = scalar((*bitio.Reader).ReadInt32, func(v int32) Tag { return Int(v) })
	loadLong    = scalar((*bitio.Reader).ReadInt64, func(v int64) Tag { return Long(v) })
	loadFloat   = scalar((*bitio.Reader).ReadFloat32, func(v float32) Tag { return Float(v) })
	loadDouble  = scalar((*bitio.Reader).ReadFloat64, func(v float64) Tag { return Double(v) })
	loadChar    = scalar((*bitio.Reader).ReadUint16, func(v uint16) Tag { return Char(v) })
	loadString  = scalar((*bitio.Reader).ReadUTF, func(v string) Tag { return String(v) })
	loadBoolean = scalar((*bitio.Reader).ReadUint8, func(v uint8) Tag { return Boolean(v) })
	loadInt24   = scalar((*bitio.Reader).ReadInt24, func(v int32) Tag { return Int24(v) })
	loadInt40   = scalar((*bitio.Reader).ReadInt40, func(v int64) Tag { return Int40(v) })
	loadInt48   = scalar((*bitio.Reader).ReadInt48, func(v int64) Tag { return Int48(v) })
	loadInt56   = scalar((*bitio.Reader).ReadInt56, func(v int64) Tag { return Int56(v) })
)
