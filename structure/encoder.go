package structure

import (
	"io"
	"math"
	"reflect"

	"github.com/pkg/errors"

	nbt "github.com/starfederation/nbt-go"
	"github.com/starfederation/nbt-go/bitio"
)

// Encoder writes primitive values in tag format encodings. Nested scopes
// returned by BeginStructure and BeginCollection share the parent's stream.
type Encoder struct {
	w     *bitio.Writer
	shape *Shape
}

// NewEncoder returns an encoder writing to w. The caller owns buffering and
// closing of w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bitio.NewWriter(w)}
}

// Err returns the first write error.
func (e *Encoder) Err() error { return e.w.Err() }

// Shape returns the shape of the current scope, nil at the top level.
func (e *Encoder) Shape() *Shape { return e.shape }

func (e *Encoder) EncodeBool(v bool) error {
	e.w.WriteBool(v)
	return e.w.Err()
}

func (e *Encoder) EncodeInt8(v int8) error {
	e.w.WriteInt8(v)
	return e.w.Err()
}

func (e *Encoder) EncodeInt16(v int16) error {
	e.w.WriteInt16(v)
	return e.w.Err()
}

func (e *Encoder) EncodeInt32(v int32) error {
	e.w.WriteInt32(v)
	return e.w.Err()
}

func (e *Encoder) EncodeInt64(v int64) error {
	e.w.WriteInt64(v)
	return e.w.Err()
}

func (e *Encoder) EncodeFloat32(v float32) error {
	e.w.WriteFloat32(v)
	return e.w.Err()
}

func (e *Encoder) EncodeFloat64(v float64) error {
	e.w.WriteFloat64(v)
	return e.w.Err()
}

// EncodeChar writes one UTF-16 code unit.
func (e *Encoder) EncodeChar(v uint16) error {
	e.w.WriteUint16(v)
	return e.w.Err()
}

// EncodeString writes v as u16-prefixed modified UTF-8.
func (e *Encoder) EncodeString(v string) error {
	e.w.WriteUTF(v)
	return errors.Wrap(e.w.Err(), "encode string")
}

// EncodeEnum writes an enum constant as its varint index.
func (e *Encoder) EncodeEnum(index int) error {
	if index < 0 || uint64(index) > math.MaxUint32 {
		return errors.Wrapf(ErrShapeMismatch, "enum index %d", index)
	}
	e.w.WriteVarInt(uint32(index))
	return e.w.Err()
}

// EncodeTag embeds a tag tree: its type id followed by its payload.
func (e *Encoder) EncodeTag(t nbt.Tag) error {
	return errors.Wrap(nbt.WriterFrom(e.w).WriteTag(t), "encode tag")
}

// BeginStructure opens a scope whose element count is fixed by shape.
// Nothing is written.
func (e *Encoder) BeginStructure(shape *Shape) *Encoder {
	return &Encoder{w: e.w, shape: shape}
}

// BeginCollection writes size as a varint and opens a scope for the
// elements.
func (e *Encoder) BeginCollection(shape *Shape, size int) *Encoder {
	if size < 0 || uint64(size) > math.MaxUint32 {
		e.w.Fail(errors.Wrapf(ErrShapeMismatch, "collection size %d", size))
	} else {
		e.w.WriteVarInt(uint32(size))
	}
	return &Encoder{w: e.w, shape: shape}
}

// EndStructure closes a scope and reports any write error inside it.
func (e *Encoder) EndStructure() error { return e.w.Err() }

// Encode writes v through its shape. A pointer is encoded as the value it
// points to. Values implementing Marshaler encode themselves.
func (e *Encoder) Encode(v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return errors.Wrap(ErrUnsupportedKind, "encode nil")
	}
	rv = indirect(rv)
	shape, err := ShapeOf(rv.Type())
	if err != nil {
		return err
	}
	return encodeValue(e, shape, rv)
}

// EncodeElement writes the value ptr points to with an explicit shape.
// Generated EncodeStructure methods use it for fields that are not leaves.
func (e *Encoder) EncodeElement(shape *Shape, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Wrapf(ErrUnsupportedKind, "encode element from %T", ptr)
	}
	return encodeValue(e, shape, rv.Elem())
}
