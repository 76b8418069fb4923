package structure

import (
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"

	nbt "github.com/starfederation/nbt-go"
)

// Enumerated is implemented by integer types that encode as an Enum. The
// integer value is the constant's index into the returned names.
type Enumerated interface {
	EnumNames() []string
}

// Shaper is implemented by types that supply their own shape, as nbtgen
// output does.
type Shaper interface {
	NBTShape() *Shape
}

var (
	tagType        = reflect.TypeFor[nbt.Tag]()
	enumeratedType = reflect.TypeFor[Enumerated]()
	shaperType     = reflect.TypeFor[Shaper]()
)

var shapeCache sync.Map // reflect.Type -> *Shape

// ShapeFor derives the shape of T.
func ShapeFor[T any]() (*Shape, error) {
	return ShapeOf(reflect.TypeFor[T]())
}

// MustShapeFor is ShapeFor for types known to be supported, as in generated
// code. It panics on error.
func MustShapeFor[T any]() *Shape {
	s, err := ShapeFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// ShapeOf derives the shape of t. Exported struct fields become elements in
// declaration order; the nbt struct tag renames a field and "-" skips it.
// Pointers become Optional, slices List, arrays Array and maps Map. Fields
// typed as nbt.Tag, or as a concrete tag type, embed a tag tree.
func ShapeOf(t reflect.Type) (*Shape, error) {
	if cached, ok := shapeCache.Load(t); ok {
		return cached.(*Shape), nil
	}
	b := shapeBuilder{seen: make(map[reflect.Type]*Shape)}
	s, err := b.build(t)
	if err != nil {
		return nil, err
	}
	for typ, built := range b.seen {
		shapeCache.LoadOrStore(typ, built)
	}
	return s, nil
}

type shapeBuilder struct {
	seen map[reflect.Type]*Shape
}

func (b *shapeBuilder) build(t reflect.Type) (*Shape, error) {
	if s, ok := b.seen[t]; ok {
		return s, nil
	}
	if cached, ok := shapeCache.Load(t); ok {
		return cached.(*Shape), nil
	}
	if k := t.Kind(); k != reflect.Pointer && k != reflect.Interface {
		if t.Implements(shaperType) {
			return reflect.Zero(t).Interface().(Shaper).NBTShape(), nil
		}
		if reflect.PointerTo(t).Implements(shaperType) {
			return reflect.New(t).Interface().(Shaper).NBTShape(), nil
		}
	}
	if t.Implements(tagType) {
		return TagShape, nil
	}
	if t.Implements(enumeratedType) && isInteger(t.Kind()) {
		names := reflect.Zero(t).Interface().(Enumerated).EnumNames()
		s := &Shape{Kind: Enum, Name: t.Name(), EnumNames: names}
		b.seen[t] = s
		return s, nil
	}
	if leaf := leafShape(t.Kind()); leaf != nil {
		return leaf, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		s := &Shape{Kind: Optional}
		b.seen[t] = s
		elem, err := b.build(t.Elem())
		if err != nil {
			return nil, err
		}
		s.Elem = elem
		return s, nil
	case reflect.Slice:
		s := &Shape{Kind: List}
		b.seen[t] = s
		elem, err := b.build(t.Elem())
		if err != nil {
			return nil, err
		}
		s.Elem = elem
		return s, nil
	case reflect.Array:
		s := &Shape{Kind: Array, Len: t.Len()}
		b.seen[t] = s
		elem, err := b.build(t.Elem())
		if err != nil {
			return nil, err
		}
		s.Elem = elem
		return s, nil
	case reflect.Map:
		s := &Shape{Kind: Map}
		b.seen[t] = s
		key, err := b.build(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := b.build(t.Elem())
		if err != nil {
			return nil, err
		}
		s.Key, s.Elem = key, elem
		return s, nil
	case reflect.Struct:
		s := &Shape{Kind: Struct, Name: t.Name()}
		b.seen[t] = s
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			name, ok := fieldName(sf)
			if !ok {
				continue
			}
			fs, err := b.build(sf.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", t.Name(), sf.Name)
			}
			s.Elements = append(s.Elements, Field{Name: name, Shape: fs, Index: sf.Index})
		}
		return s, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedKind, "%s", t)
}

// fieldName returns the wire name of an exported field, or false when the
// field is skipped.
func fieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", false
	}
	tag := sf.Tag.Get("nbt")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return sf.Name, true
}

// lookupField finds a struct field by wire name for shapes built without
// index paths.
func lookupField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if n, ok := fieldName(t.Field(i)); ok && n == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
