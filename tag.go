package nbt

import "fmt"

// TypeID is the one byte wire identifier of a tag type.
type TypeID uint8

// Vanilla type ids. The order is part of the wire format and never changes.
const (
	IDEmpty TypeID = iota
	IDByte
	IDShort
	IDInt
	IDLong
	IDFloat
	IDDouble
	IDByteArray
	IDString
	IDList
	IDCompound
	IDIntArray
	IDLongArray
	IDChar
	IDBoolean
	IDSet
	IDShortArray
	IDFloatArray
	IDDoubleArray
	IDCharArray
	IDBooleanArray
	IDPackedBooleanArray
	IDInt24
	IDInt40
	IDInt48
	IDInt56
	IDUUID
)

// Tag is one node of an NBT tree.
type Tag interface {
	// Type identifies the variant and supplies the wire id.
	Type() *Type
	// Value returns the payload as a plain Go value.
	Value() any
	// Write encodes the payload, without the leading type id.
	Write(w *Writer) error
	// Copy returns a tag that shares no mutable state with the receiver.
	Copy() Tag
}

// LoadFunc decodes one payload. The type id has already been consumed.
type LoadFunc func(r *Reader) (Tag, error)

// Type describes a tag variant: its name, its wire id and how to load it.
// A type receives its id when it is registered and keeps it for life.
type Type struct {
	id    TypeID
	bound bool
	name  string
	load  LoadFunc
	// home is the registry that bound a custom type; nil for vanilla types.
	home *Registry
}

// NewType returns an unregistered type. Register it with a Registry before
// writing or reading tags of this type.
func NewType(name string, load LoadFunc) *Type {
	return &Type{name: name, load: load}
}

// ID returns the wire id. It is only meaningful once the type is bound.
func (t *Type) ID() TypeID { return t.id }

// Bound reports whether the type has been assigned an id.
func (t *Type) Bound() bool { return t.bound }

// Name returns the type's display name.
func (t *Type) Name() string { return t.name }

func (t *Type) String() string {
	if !t.bound {
		return t.name
	}
	return fmt.Sprintf("%s(%d)", t.name, t.id)
}

// Load decodes one payload of this type from r.
func (t *Type) Load(r *Reader) (Tag, error) {
	if t.load == nil {
		return nil, fmt.Errorf("type %s has no loader", t.name)
	}
	return t.load(r)
}

// Vanilla types.
var (
	EmptyType              = vanilla(IDEmpty, "empty")
	ByteType               = vanilla(IDByte, "byte")
	ShortType              = vanilla(IDShort, "short")
	IntType                = vanilla(IDInt, "int")
	LongType               = vanilla(IDLong, "long")
	FloatType              = vanilla(IDFloat, "float")
	DoubleType             = vanilla(IDDouble, "double")
	ByteArrayType          = vanilla(IDByteArray, "byte_array")
	StringType             = vanilla(IDString, "string")
	ListType               = vanilla(IDList, "list")
	CompoundType           = vanilla(IDCompound, "compound")
	IntArrayType           = vanilla(IDIntArray, "int_array")
	LongArrayType          = vanilla(IDLongArray, "long_array")
	CharType               = vanilla(IDChar, "char")
	BooleanType            = vanilla(IDBoolean, "boolean")
	SetType                = vanilla(IDSet, "set")
	ShortArrayType         = vanilla(IDShortArray, "short_array")
	FloatArrayType         = vanilla(IDFloatArray, "float_array")
	DoubleArrayType        = vanilla(IDDoubleArray, "double_array")
	CharArrayType          = vanilla(IDCharArray, "char_array")
	BooleanArrayType       = vanilla(IDBooleanArray, "boolean_array")
	PackedBooleanArrayType = vanilla(IDPackedBooleanArray, "packed_boolean_array")
	Int24Type              = vanilla(IDInt24, "int24")
	Int40Type              = vanilla(IDInt40, "int40")
	Int48Type              = vanilla(IDInt48, "int48")
	Int56Type              = vanilla(IDInt56, "int56")
	UUIDType               = vanilla(IDUUID, "uuid")
)

// vanillaTypes is indexed by TypeID.
var vanillaTypes = []*Type{
	EmptyType, ByteType, ShortType, IntType, LongType, FloatType, DoubleType,
	ByteArrayType, StringType, ListType, CompoundType, IntArrayType, LongArrayType,
	CharType, BooleanType, SetType, ShortArrayType, FloatArrayType, DoubleArrayType,
	CharArrayType, BooleanArrayType, PackedBooleanArrayType,
	Int24Type, Int40Type, Int48Type, Int56Type, UUIDType,
}

func vanilla(id TypeID, name string) *Type {
	return &Type{id: id, bound: true, name: name}
}

// Loaders are attached here rather than in the var block: they construct
// tags whose Type methods refer back to these vars.
func init() {
	EmptyType.load = loadEmpty
	ByteType.load = loadByte
	ShortType.load = loadShort
	IntType.load = loadInt
	LongType.load = loadLong
	FloatType.load = loadFloat
	DoubleType.load = loadDouble
	ByteArrayType.load = loadByteArray
	StringType.load = loadString
	ListType.load = loadList
	CompoundType.load = loadCompound
	IntArrayType.load = loadIntArray
	LongArrayType.load = loadLongArray
	CharType.load = loadChar
	BooleanType.load = loadBoolean
	SetType.load = loadSet
	ShortArrayType.load = loadShortArray
	FloatArrayType.load = loadFloatArray
	DoubleArrayType.load = loadDoubleArray
	CharArrayType.load = loadCharArray
	BooleanArrayType.load = loadBooleanArray
	PackedBooleanArrayType.load = loadPackedBooleanArray
	Int24Type.load = loadInt24
	Int40Type.load = loadInt40
	Int48Type.load = loadInt48
	Int56Type.load = loadInt56
	UUIDType.load = loadUUID

	defaultRegistry = NewRegistry().Freeze()
}
