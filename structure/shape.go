package structure

import (
	"fmt"
	"reflect"
)

// Kind is the structural category of a Shape.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Char
	Uint32
	Uint64
	Float32
	Float64
	String
	Enum
	Struct
	Array
	List
	Map
	Optional
	Tag
)

var kindNames = [...]string{
	Invalid:  "invalid",
	Bool:     "bool",
	Int8:     "int8",
	Int16:    "int16",
	Int32:    "int32",
	Int64:    "int64",
	Uint8:    "uint8",
	Char:     "char",
	Uint32:   "uint32",
	Uint64:   "uint64",
	Float32:  "float32",
	Float64:  "float64",
	String:   "string",
	Enum:     "enum",
	Struct:   "struct",
	Array:    "array",
	List:     "list",
	Map:      "map",
	Optional: "optional",
	Tag:      "tag",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Shape describes the structure of a value.
type Shape struct {
	Kind Kind
	Name string
	// Elements are the fields of a Struct, in wire order.
	Elements []Field
	// Elem is the element shape of Array, List and Optional, and the value
	// shape of Map.
	Elem *Shape
	// Key is the key shape of Map.
	Key *Shape
	// Len is the element count of Array.
	Len int
	// EnumNames lists the constants of an Enum by index.
	EnumNames []string
}

// Field is one element of a Struct shape.
type Field struct {
	Name  string
	Shape *Shape
	// Index is the reflect field index path. When nil the field is found by
	// its nbt tag or Go name.
	Index []int
}

// ElementCount is the statically known number of elements: the field count
// of a Struct, Len of an Array and zero otherwise.
func (s *Shape) ElementCount() int {
	switch s.Kind {
	case Struct:
		return len(s.Elements)
	case Array:
		return s.Len
	}
	return 0
}

func (s *Shape) String() string {
	if s == nil {
		return "<nil>"
	}
	if s.Name != "" {
		return s.Name
	}
	switch s.Kind {
	case Array:
		return fmt.Sprintf("[%d]%s", s.Len, s.Elem)
	case List:
		return "[]" + s.Elem.String()
	case Map:
		return fmt.Sprintf("map[%s]%s", s.Key, s.Elem)
	case Optional:
		return "*" + s.Elem.String()
	}
	return s.Kind.String()
}

// Predeclared leaf shapes.
var (
	BoolShape    = &Shape{Kind: Bool}
	Int8Shape    = &Shape{Kind: Int8}
	Int16Shape   = &Shape{Kind: Int16}
	Int32Shape   = &Shape{Kind: Int32}
	Int64Shape   = &Shape{Kind: Int64}
	Uint8Shape   = &Shape{Kind: Uint8}
	CharShape    = &Shape{Kind: Char}
	Uint32Shape  = &Shape{Kind: Uint32}
	Uint64Shape  = &Shape{Kind: Uint64}
	Float32Shape = &Shape{Kind: Float32}
	Float64Shape = &Shape{Kind: Float64}
	StringShape  = &Shape{Kind: String}
	TagShape     = &Shape{Kind: Tag}
)

// ListOf returns a List shape of elem.
func ListOf(elem *Shape) *Shape { return &Shape{Kind: List, Elem: elem} }

// ArrayOf returns an Array shape of n elem.
func ArrayOf(n int, elem *Shape) *Shape { return &Shape{Kind: Array, Len: n, Elem: elem} }

// MapOf returns a Map shape.
func MapOf(key, elem *Shape) *Shape { return &Shape{Kind: Map, Key: key, Elem: elem} }

// OptionalOf returns an Optional shape of elem.
func OptionalOf(elem *Shape) *Shape { return &Shape{Kind: Optional, Elem: elem} }

// EnumOf returns an Enum shape with the given constant names.
func EnumOf(name string, names ...string) *Shape {
	return &Shape{Kind: Enum, Name: name, EnumNames: names}
}

// StructOf returns a Struct shape with fields in wire order.
func StructOf(name string, fields ...Field) *Shape {
	return &Shape{Kind: Struct, Name: name, Elements: fields}
}

func leafShape(k reflect.Kind) *Shape {
	switch k {
	case reflect.Bool:
		return BoolShape
	case reflect.Int8:
		return Int8Shape
	case reflect.Int16:
		return Int16Shape
	case reflect.Int32:
		return Int32Shape
	case reflect.Int64, reflect.Int:
		return Int64Shape
	case reflect.Uint8:
		return Uint8Shape
	case reflect.Uint16:
		return CharShape
	case reflect.Uint32:
		return Uint32Shape
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return Uint64Shape
	case reflect.Float32:
		return Float32Shape
	case reflect.Float64:
		return Float64Shape
	case reflect.String:
		return StringShape
	}
	return nil
}
