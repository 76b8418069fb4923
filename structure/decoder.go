package structure

import (
	"io"
	"reflect"

	"github.com/pkg/errors"

	nbt "github.com/starfederation/nbt-go"
	"github.com/starfederation/nbt-go/bitio"
)

// DecodeDone is returned by DecodeElementIndex once a scope is exhausted.
const DecodeDone = -1

// Decoder reads values written by Encoder. Each scope knows how many
// elements it holds, either from its shape or from a decoded collection
// size, and hands out element indices strictly in order.
type Decoder struct {
	r        *bitio.Reader
	registry *nbt.Registry
	shape    *Shape
	size     int
	index    int
}

// NewDecoder returns a decoder reading from r. Embedded tags resolve
// against nbt.Default.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bitio.NewReader(r), registry: nbt.Default()}
}

// WithRegistry makes embedded tags resolve against reg and returns d.
func (d *Decoder) WithRegistry(reg *nbt.Registry) *Decoder {
	if reg != nil {
		d.registry = reg
	}
	return d
}

// SetMaxAlloc bounds collection sizes and string or tag payloads.
func (d *Decoder) SetMaxAlloc(n int) {
	if n > 0 {
		d.r.MaxAlloc = n
	}
}

// Shape returns the shape of the current scope, nil at the top level.
func (d *Decoder) Shape() *Shape { return d.shape }

// DecodeSequentially is always true: elements arrive in declared order and
// none are skipped.
func (d *Decoder) DecodeSequentially() bool { return true }

func (d *Decoder) DecodeBool() (bool, error) {
	v, err := d.r.ReadBool()
	return v, errors.Wrap(err, "decode bool")
}

func (d *Decoder) DecodeInt8() (int8, error) {
	v, err := d.r.ReadInt8()
	return v, errors.Wrap(err, "decode int8")
}

func (d *Decoder) DecodeInt16() (int16, error) {
	v, err := d.r.ReadInt16()
	return v, errors.Wrap(err, "decode int16")
}

func (d *Decoder) DecodeInt32() (int32, error) {
	v, err := d.r.ReadInt32()
	return v, errors.Wrap(err, "decode int32")
}

func (d *Decoder) DecodeInt64() (int64, error) {
	v, err := d.r.ReadInt64()
	return v, errors.Wrap(err, "decode int64")
}

func (d *Decoder) DecodeFloat32() (float32, error) {
	v, err := d.r.ReadFloat32()
	return v, errors.Wrap(err, "decode float32")
}

func (d *Decoder) DecodeFloat64() (float64, error) {
	v, err := d.r.ReadFloat64()
	return v, errors.Wrap(err, "decode float64")
}

func (d *Decoder) DecodeChar() (uint16, error) {
	v, err := d.r.ReadUint16()
	return v, errors.Wrap(err, "decode char")
}

func (d *Decoder) DecodeString() (string, error) {
	v, err := d.r.ReadUTF()
	return v, errors.Wrap(err, "decode string")
}

// DecodeEnum reads a varint enum index.
func (d *Decoder) DecodeEnum() (int, error) {
	v, err := d.r.ReadVarInt()
	return int(v), errors.Wrap(err, "decode enum")
}

// DecodeTag reads an embedded tag tree.
func (d *Decoder) DecodeTag() (nbt.Tag, error) {
	t, err := nbt.ReaderFrom(d.r, d.registry).ReadTag()
	return t, errors.Wrap(err, "decode tag")
}

// BeginStructure opens a scope sized by shape.ElementCount. Nothing is read.
func (d *Decoder) BeginStructure(shape *Shape) *Decoder {
	return &Decoder{r: d.r, registry: d.registry, shape: shape, size: shape.ElementCount()}
}

// BeginCollection opens a scope for a runtime sized collection. Call
// DecodeCollectionSize on it before iterating.
func (d *Decoder) BeginCollection(shape *Shape) *Decoder {
	return &Decoder{r: d.r, registry: d.registry, shape: shape}
}

// DecodeCollectionSize reads the varint element count of the current scope.
func (d *Decoder) DecodeCollectionSize() (int, error) {
	n, err := d.r.ReadLength()
	if err != nil {
		return 0, errors.Wrap(err, "decode collection size")
	}
	d.size, d.index = n, 0
	return n, nil
}

// DecodeElementIndex returns the next element index, or DecodeDone.
func (d *Decoder) DecodeElementIndex() int {
	if d.index >= d.size {
		return DecodeDone
	}
	i := d.index
	d.index++
	return i
}

// EndStructure closes a scope. It fails if elements were left unread.
func (d *Decoder) EndStructure() error {
	if d.index < d.size {
		return errors.Wrapf(ErrShapeMismatch, "%d of %d elements left in %s", d.size-d.index, d.size, d.shape)
	}
	return nil
}

// Decode reads into the value v points to. Targets implementing
// Unmarshaler decode themselves.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Wrapf(ErrUnsupportedKind, "decode into non-pointer %T", v)
	}
	shape, err := ShapeOf(rv.Type().Elem())
	if err != nil {
		return err
	}
	return decodeValue(d, shape, rv.Elem())
}

// DecodeElement reads into the value ptr points to with an explicit shape.
func (d *Decoder) DecodeElement(shape *Shape, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Wrapf(ErrUnsupportedKind, "decode element into %T", ptr)
	}
	return decodeValue(d, shape, rv.Elem())
}
