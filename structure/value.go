package structure

import (
	"bytes"
	"cmp"
	"io"
	"math"
	"reflect"
	"slices"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/pkg/errors"

	nbt "github.com/starfederation/nbt-go"
	"github.com/starfederation/nbt-go/compression"
)

var (
	// ErrUnsupportedKind is returned for Go types with no structural
	// encoding, such as channels, functions and non-tag interfaces.
	ErrUnsupportedKind = errors.New("unsupported kind")
	// ErrShapeMismatch is returned when a value or the stream does not fit
	// the shape it is encoded or decoded with.
	ErrShapeMismatch = errors.New("value does not match shape")
)

// Marshaler is implemented by values that encode themselves.
type Marshaler interface {
	EncodeStructure(e *Encoder) error
}

// Unmarshaler is implemented by values that decode themselves.
type Unmarshaler interface {
	DecodeStructure(d *Decoder) error
}

var (
	marshalerType   = reflect.TypeFor[Marshaler]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
)

// EncodeValue writes v to w through strategy s. A nil shape is derived from
// v's type. The compressed stream is closed before returning, which closes w
// when it is an io.Closer.
func EncodeValue(w io.Writer, shape *Shape, v any, s compression.Strategy) (err error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		closeQuietly(w)
		return errors.Wrap(ErrUnsupportedKind, "encode nil")
	}
	if shape == nil {
		rv = indirect(rv)
		if shape, err = ShapeOf(rv.Type()); err != nil {
			closeQuietly(w)
			return err
		}
	}
	s = compression.OrDefault(s)
	stream, err := s.WrapWriter(w)
	if err != nil {
		return errors.Wrapf(err, "open %s writer", s.Name())
	}
	defer func() {
		if cerr := stream.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s writer", s.Name())
		}
	}()

	e := NewEncoder(stream)
	if err := encodeValue(e, shape, rv); err != nil {
		return errors.Wrapf(err, "encode %s", shape)
	}
	return e.Err()
}

// DecodeValue reads into the value v points to from r through strategy s. A
// nil shape is derived from v's element type. r is closed when it is an
// io.Closer.
func DecodeValue(r io.Reader, shape *Shape, v any, s compression.Strategy) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		closeQuietly(r)
		return errors.Wrapf(ErrUnsupportedKind, "decode into non-pointer %T", v)
	}
	if shape == nil {
		var err error
		if shape, err = ShapeOf(rv.Type().Elem()); err != nil {
			closeQuietly(r)
			return err
		}
	}
	s = compression.OrDefault(s)
	stream, err := s.WrapReader(r)
	if err != nil {
		return errors.Wrapf(err, "open %s reader", s.Name())
	}
	defer stream.Close()

	d := NewDecoder(stream)
	return errors.Wrapf(decodeValue(d, shape, rv.Elem()), "decode %s", shape)
}

// Marshal encodes v with its derived shape.
func Marshal(v any, s compression.Strategy) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := EncodeValue(buf, nil, v, s); err != nil {
		return nil, err
	}
	return append([]byte{}, buf.Bytes()...), nil
}

// Unmarshal decodes data into the value v points to.
func Unmarshal(data []byte, v any, s compression.Strategy) error {
	return DecodeValue(bytes.NewReader(data), nil, v, s)
}

// indirect unwraps one non-nil pointer so Marshal(&v) and Unmarshal(data, &v)
// agree on v's shape.
func indirect(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return v.Elem()
	}
	return v
}

func marshalerOf(v reflect.Value) (Marshaler, bool) {
	if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		return nil, false
	}
	if v.Type().Implements(marshalerType) && v.CanInterface() {
		return v.Interface().(Marshaler), true
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(marshalerType) {
		return v.Addr().Interface().(Marshaler), true
	}
	return nil, false
}

func unmarshalerOf(v reflect.Value) (Unmarshaler, bool) {
	if v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface || !v.CanAddr() {
		return nil, false
	}
	if reflect.PointerTo(v.Type()).Implements(unmarshalerType) {
		return v.Addr().Interface().(Unmarshaler), true
	}
	return nil, false
}

func mismatch(shape *Shape, v reflect.Value) error {
	return errors.Wrapf(ErrShapeMismatch, "%s cannot hold %s", shape, v.Type())
}

func fieldOf(v reflect.Value, f Field) (reflect.Value, bool) {
	if f.Index != nil {
		fv, err := v.FieldByIndexErr(f.Index)
		return fv, err == nil
	}
	return lookupField(v, f.Name)
}

func encodeValue(e *Encoder, shape *Shape, v reflect.Value) error {
	if m, ok := marshalerOf(v); ok {
		return m.EncodeStructure(e)
	}
	switch shape.Kind {
	case Bool:
		if v.Kind() != reflect.Bool {
			return mismatch(shape, v)
		}
		return e.EncodeBool(v.Bool())
	case Int8, Int16, Int32, Int64, Uint8, Char, Uint32, Uint64, Enum:
		n, ok := integerOf(v)
		if !ok {
			return mismatch(shape, v)
		}
		return encodeInteger(e, shape, n)
	case Float32:
		if !v.CanFloat() {
			return mismatch(shape, v)
		}
		return e.EncodeFloat32(float32(v.Float()))
	case Float64:
		if !v.CanFloat() {
			return mismatch(shape, v)
		}
		return e.EncodeFloat64(v.Float())
	case String:
		if v.Kind() != reflect.String {
			return mismatch(shape, v)
		}
		return e.EncodeString(v.String())
	case Struct:
		if v.Kind() != reflect.Struct {
			return mismatch(shape, v)
		}
		child := e.BeginStructure(shape)
		for _, f := range shape.Elements {
			fv, ok := fieldOf(v, f)
			if !ok {
				return errors.Wrapf(ErrShapeMismatch, "%s has no field %s", v.Type(), f.Name)
			}
			if err := encodeValue(child, f.Shape, fv); err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
		}
		return child.EndStructure()
	case Array:
		if (v.Kind() != reflect.Array && v.Kind() != reflect.Slice) || v.Len() != shape.Len {
			return mismatch(shape, v)
		}
		child := e.BeginStructure(shape)
		for i := 0; i < shape.Len; i++ {
			if err := encodeValue(child, shape.Elem, v.Index(i)); err != nil {
				return errors.Wrapf(err, "index %d", i)
			}
		}
		return child.EndStructure()
	case List:
		if v.Kind() != reflect.Array && v.Kind() != reflect.Slice {
			return mismatch(shape, v)
		}
		child := e.BeginCollection(shape, v.Len())
		for i := 0; i < v.Len(); i++ {
			if err := encodeValue(child, shape.Elem, v.Index(i)); err != nil {
				return errors.Wrapf(err, "index %d", i)
			}
		}
		return child.EndStructure()
	case Map:
		if v.Kind() != reflect.Map {
			return mismatch(shape, v)
		}
		child := e.BeginCollection(shape, v.Len())
		for _, k := range sortedKeys(v) {
			if err := encodeValue(child, shape.Key, k); err != nil {
				return errors.Wrap(err, "map key")
			}
			if err := encodeValue(child, shape.Elem, v.MapIndex(k)); err != nil {
				return errors.Wrapf(err, "map value %v", k)
			}
		}
		return child.EndStructure()
	case Optional:
		if v.Kind() != reflect.Pointer {
			return mismatch(shape, v)
		}
		if v.IsNil() {
			return e.EncodeBool(false)
		}
		if err := e.EncodeBool(true); err != nil {
			return err
		}
		return encodeValue(e, shape.Elem, v.Elem())
	case Tag:
		if !v.Type().Implements(tagType) {
			return mismatch(shape, v)
		}
		if v.Kind() == reflect.Interface && v.IsNil() || v.Kind() == reflect.Pointer && v.IsNil() {
			return e.EncodeTag(nbt.Empty)
		}
		return e.EncodeTag(v.Interface().(nbt.Tag))
	}
	return errors.Wrapf(ErrUnsupportedKind, "shape kind %s", shape.Kind)
}

// closeQuietly closes x when it is an io.Closer. Early returns use it so the
// caller's stream is closed on every path.
func closeQuietly(x any) {
	if c, ok := x.(io.Closer); ok {
		c.Close()
	}
}

// fitsWidth reports whether n is representable in the wire width of kind.
func fitsWidth(kind Kind, n int64) bool {
	switch kind {
	case Int8:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case Uint8:
		return n >= 0 && n <= math.MaxUint8
	case Int16:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case Char:
		return n >= 0 && n <= math.MaxUint16
	case Int32:
		return n >= math.MinInt32 && n <= math.MaxInt32
	case Uint32:
		return n >= 0 && n <= math.MaxUint32
	}
	return true
}

func encodeInteger(e *Encoder, shape *Shape, n int64) error {
	if !fitsWidth(shape.Kind, n) {
		return errors.Wrapf(ErrShapeMismatch, "%d overflows %s", n, shape)
	}
	switch shape.Kind {
	case Int8, Uint8:
		return e.EncodeInt8(int8(n))
	case Int16:
		return e.EncodeInt16(int16(n))
	case Char:
		return e.EncodeChar(uint16(n))
	case Int32, Uint32:
		return e.EncodeInt32(int32(n))
	case Enum:
		if len(shape.EnumNames) > 0 && (n < 0 || n >= int64(len(shape.EnumNames))) {
			return errors.Wrapf(ErrShapeMismatch, "enum %s has no constant %d", shape, n)
		}
		return e.EncodeEnum(int(n))
	}
	return e.EncodeInt64(n)
}

// integerOf returns the bits of an integer value; unsigned values are
// reinterpreted.
func integerOf(v reflect.Value) (int64, bool) {
	switch {
	case v.CanInt():
		return v.Int(), true
	case v.CanUint():
		return int64(v.Uint()), true
	}
	return 0, false
}

func sortedKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b reflect.Value) int {
	switch {
	case a.Kind() == reflect.String:
		return cmp.Compare(a.String(), b.String())
	case a.CanInt():
		return cmp.Compare(a.Int(), b.Int())
	case a.CanUint():
		return cmp.Compare(a.Uint(), b.Uint())
	case a.CanFloat():
		return cmp.Compare(a.Float(), b.Float())
	case a.Kind() == reflect.Bool:
		return cmp.Compare(boolInt(a.Bool()), boolInt(b.Bool()))
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func decodeValue(d *Decoder, shape *Shape, v reflect.Value) error {
	if u, ok := unmarshalerOf(v); ok {
		return u.DecodeStructure(d)
	}
	if !v.CanSet() {
		return errors.Wrapf(ErrShapeMismatch, "%s is not settable", v.Type())
	}
	switch shape.Kind {
	case Bool:
		if v.Kind() != reflect.Bool {
			return mismatch(shape, v)
		}
		b, err := d.DecodeBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil
	case Int8, Int16, Int32, Int64, Uint8, Char, Uint32, Uint64, Enum:
		if !v.CanInt() && !v.CanUint() {
			return mismatch(shape, v)
		}
		n, err := decodeInteger(d, shape)
		if err != nil {
			return err
		}
		return setInteger(shape, v, n)
	case Float32:
		if !v.CanFloat() {
			return mismatch(shape, v)
		}
		f, err := d.DecodeFloat32()
		if err != nil {
			return err
		}
		v.SetFloat(float64(f))
		return nil
	case Float64:
		if !v.CanFloat() {
			return mismatch(shape, v)
		}
		f, err := d.DecodeFloat64()
		if err != nil {
			return err
		}
		v.SetFloat(f)
		return nil
	case String:
		if v.Kind() != reflect.String {
			return mismatch(shape, v)
		}
		s, err := d.DecodeString()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	case Struct:
		if v.Kind() != reflect.Struct {
			return mismatch(shape, v)
		}
		child := d.BeginStructure(shape)
		for i := child.DecodeElementIndex(); i != DecodeDone; i = child.DecodeElementIndex() {
			f := shape.Elements[i]
			fv, ok := fieldOf(v, f)
			if !ok {
				return errors.Wrapf(ErrShapeMismatch, "%s has no field %s", v.Type(), f.Name)
			}
			if err := decodeValue(child, f.Shape, fv); err != nil {
				return errors.Wrapf(err, "field %s", f.Name)
			}
		}
		return child.EndStructure()
	case Array:
		switch {
		case v.Kind() == reflect.Array && v.Len() == shape.Len:
		case v.Kind() == reflect.Slice:
			v.Set(reflect.MakeSlice(v.Type(), shape.Len, shape.Len))
		default:
			return mismatch(shape, v)
		}
		child := d.BeginStructure(shape)
		for i := child.DecodeElementIndex(); i != DecodeDone; i = child.DecodeElementIndex() {
			if err := decodeValue(child, shape.Elem, v.Index(i)); err != nil {
				return errors.Wrapf(err, "index %d", i)
			}
		}
		return child.EndStructure()
	case List:
		return decodeList(d, shape, v)
	case Map:
		return decodeMap(d, shape, v)
	case Optional:
		if v.Kind() != reflect.Pointer {
			return mismatch(shape, v)
		}
		present, err := d.DecodeBool()
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeValue(d, shape.Elem, v.Elem())
	case Tag:
		t, err := d.DecodeTag()
		if err != nil {
			return err
		}
		if t.Type() == nbt.EmptyType && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
			v.SetZero()
			return nil
		}
		tv := reflect.ValueOf(t)
		if !tv.Type().AssignableTo(v.Type()) {
			return errors.Wrapf(ErrShapeMismatch, "decoded %s tag does not fit %s", t.Type().Name(), v.Type())
		}
		v.Set(tv)
		return nil
	}
	return errors.Wrapf(ErrUnsupportedKind, "shape kind %s", shape.Kind)
}

func decodeInteger(d *Decoder, shape *Shape) (int64, error) {
	switch shape.Kind {
	case Int8:
		n, err := d.DecodeInt8()
		return int64(n), err
	case Uint8:
		n, err := d.DecodeInt8()
		return int64(uint8(n)), err
	case Int16:
		n, err := d.DecodeInt16()
		return int64(n), err
	case Char:
		n, err := d.DecodeChar()
		return int64(n), err
	case Int32:
		n, err := d.DecodeInt32()
		return int64(n), err
	case Uint32:
		n, err := d.DecodeInt32()
		return int64(uint32(n)), err
	case Enum:
		n, err := d.DecodeEnum()
		if err != nil {
			return 0, err
		}
		if len(shape.EnumNames) > 0 && n >= len(shape.EnumNames) {
			return 0, errors.Wrapf(ErrShapeMismatch, "enum %s has no constant %d", shape, n)
		}
		return int64(n), nil
	}
	return d.DecodeInt64()
}

func setInteger(shape *Shape, v reflect.Value, n int64) error {
	if v.CanInt() {
		if v.OverflowInt(n) {
			return errors.Wrapf(ErrShapeMismatch, "%d overflows %s", n, v.Type())
		}
		v.SetInt(n)
		return nil
	}
	u := uint64(n)
	if shape.Kind != Uint64 && n < 0 || v.OverflowUint(u) {
		return errors.Wrapf(ErrShapeMismatch, "%d overflows %s", n, v.Type())
	}
	v.SetUint(u)
	return nil
}

// growCap bounds up-front allocation for untrusted collection sizes.
func growCap(n int) int { return min(n, 1024) }

func decodeList(d *Decoder, shape *Shape, v reflect.Value) error {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return mismatch(shape, v)
	}
	child := d.BeginCollection(shape)
	n, err := child.DecodeCollectionSize()
	if err != nil {
		return err
	}
	if v.Kind() == reflect.Array {
		if n != v.Len() {
			return errors.Wrapf(ErrShapeMismatch, "%d elements for %s", n, v.Type())
		}
		for i := child.DecodeElementIndex(); i != DecodeDone; i = child.DecodeElementIndex() {
			if err := decodeValue(child, shape.Elem, v.Index(i)); err != nil {
				return errors.Wrapf(err, "index %d", i)
			}
		}
		return child.EndStructure()
	}
	out := reflect.MakeSlice(v.Type(), 0, growCap(n))
	elem := reflect.New(v.Type().Elem()).Elem()
	for i := child.DecodeElementIndex(); i != DecodeDone; i = child.DecodeElementIndex() {
		elem.SetZero()
		if err := decodeValue(child, shape.Elem, elem); err != nil {
			return errors.Wrapf(err, "index %d", i)
		}
		out = reflect.Append(out, elem)
	}
	v.Set(out)
	return child.EndStructure()
}

func decodeMap(d *Decoder, shape *Shape, v reflect.Value) error {
	if v.Kind() != reflect.Map {
		return mismatch(shape, v)
	}
	child := d.BeginCollection(shape)
	n, err := child.DecodeCollectionSize()
	if err != nil {
		return err
	}
	t := v.Type()
	out := reflect.MakeMapWithSize(t, growCap(n))
	for i := child.DecodeElementIndex(); i != DecodeDone; i = child.DecodeElementIndex() {
		key := reflect.New(t.Key()).Elem()
		if err := decodeValue(child, shape.Key, key); err != nil {
			return errors.Wrapf(err, "map key %d", i)
		}
		val := reflect.New(t.Elem()).Elem()
		if err := decodeValue(child, shape.Elem, val); err != nil {
			return errors.Wrapf(err, "map value %v", key)
		}
		out.SetMapIndex(key, val)
	}
	v.Set(out)
	return child.EndStructure()
}

