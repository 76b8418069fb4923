package nbt

import "github.com/starfederation/nbt-go/bitio"

// Odd width integers occupy 3, 5, 6 or 7 bytes on the wire. Values are kept
// in the next wider Go integer; only the low bits are written and reads
// sign-extend, so use the New constructors to normalize out of range input.

type Int24 int32

// NewInt24 truncates v to 24 bits.
func NewInt24(v int64) Int24 { return Int24(bitio.TruncateSigned(v, 24)) }

func (Int24) Type() *Type { return Int24Type }
func (i Int24) Value() any { return int32(i) }
func (i Int24) Copy() Tag  { return i }
func (i Int24) Write(w *Writer) error {
	w.WriteInt24(int32(i))
	return w.Err()
}

type Int40 int64

// NewInt40 truncates v to 40 bits.
func NewInt40(v int64) Int40 { return Int40(bitio.TruncateSigned(v, 40)) }

func (Int40) Type() *Type { return Int40Type }
func (i Int40) Value() any { return int64(i) }
func (i Int40) Copy() Tag  { return i }
func (i Int40) Write(w *Writer) error {
	w.WriteInt40(int64(i))
	return w.Err()
}

type Int48 int64

// NewInt48 truncates v to 48 bits.
func NewInt48(v int64) Int48 { return Int48(bitio.TruncateSigned(v, 48)) }

func (Int48) Type() *Type { return Int48Type }
func (i Int48) Value() any { return int64(i) }
func (i Int48) Copy() Tag  { return i }
func (i Int48) Write(w *Writer) error {
	w.WriteInt48(int64(i))
	return w.Err()
}

type Int56 int64

// NewInt56 truncates v to 56 bits.
func NewInt56(v int64) Int56 { return Int56(bitio.TruncateSigned(v, 56)) }

func (Int56) Type() *Type { return Int56Type }
func (i Int56) Value() any { return int64(i) }
func (i Int56) Copy() Tag  { return i }
func (i Int56) Write(w *Writer) error {
	w.WriteInt56(int64(i))
	return w.Err()
}
