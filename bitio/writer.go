package bitio

import (
	"io"
	"math"
)

// Writer encodes wire primitives onto a byte sink. The first failure sticks:
// later writes are dropped and Err reports it.
type Writer struct {
	dst     io.Writer
	err     error
	scratch []byte
}

// NewWriter wraps w. Callers that need buffering wrap w themselves.
func NewWriter(w io.Writer) *Writer {
	return &Writer{dst: w, scratch: make([]byte, 0, 16)}
}

// Err returns the first error hit by the writer.
func (w *Writer) Err() error { return w.err }

// Fail records err unless an earlier error is already recorded.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) emit(b []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.dst.Write(b); err != nil {
		w.err = err
	}
	w.scratch = b[:0]
}

// WriteRaw writes b as is.
func (w *Writer) WriteRaw(b []byte) {
	if w.err != nil || len(b) == 0 {
		return
	}
	if _, err := w.dst.Write(b); err != nil {
		w.err = err
	}
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v byte) { w.emit(append(w.scratch[:0], v)) }

// WriteInt8 writes a signed byte.
func (w *Writer) WriteInt8(v int8) { w.WriteUint8(byte(v)) }

// WriteBool writes 1 or 0.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

// WriteUint16 writes a big-endian uint16.
func (w *Writer) WriteUint16(v uint16) { w.emit(be.AppendUint16(w.scratch[:0], v)) }

// WriteInt16 writes a big-endian int16.
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

// WriteInt32 writes a big-endian int32.
func (w *Writer) WriteInt32(v int32) { w.emit(be.AppendUint32(w.scratch[:0], uint32(v))) }

// WriteInt64 writes a big-endian int64.
func (w *Writer) WriteInt64(v int64) { w.emit(be.AppendUint64(w.scratch[:0], uint64(v))) }

// WriteFloat32 writes big-endian IEEE bits.
func (w *Writer) WriteFloat32(v float32) { w.WriteInt32(int32(math.Float32bits(v))) }

// WriteFloat64 writes big-endian IEEE bits.
func (w *Writer) WriteFloat64(v float64) { w.WriteInt64(int64(math.Float64bits(v))) }

// WriteInt24 writes the low 24 bits of v.
func (w *Writer) WriteInt24(v int32) { w.emit(AppendInt24(w.scratch[:0], v)) }

// WriteInt40 writes the low 40 bits of v.
func (w *Writer) WriteInt40(v int64) { w.emit(AppendInt40(w.scratch[:0], v)) }

// WriteInt48 writes the low 48 bits of v.
func (w *Writer) WriteInt48(v int64) { w.emit(AppendInt48(w.scratch[:0], v)) }

// WriteInt56 writes the low 56 bits of v.
func (w *Writer) WriteInt56(v int64) { w.emit(AppendInt56(w.scratch[:0], v)) }

// WriteVarInt writes v as a LEB128 varint.
func (w *Writer) WriteVarInt(v uint32) { w.emit(AppendVarInt(w.scratch[:0], v)) }

// WriteVarBytes writes a varint length followed by b.
func (w *Writer) WriteVarBytes(b []byte) {
	w.WriteVarInt(uint32(len(b)))
	w.WriteRaw(b)
}

// WriteUTF writes s as a u16-prefixed modified UTF-8 string.
func (w *Writer) WriteUTF(s string) {
	if w.err != nil {
		return
	}
	b, err := AppendUTF(make([]byte, 0, len(s)+2), s)
	if err != nil {
		w.Fail(err)
		return
	}
	w.WriteRaw(b)
}
