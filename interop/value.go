package interop

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/google/uuid"

	nbt "github.com/starfederation/nbt-go"
)

// ErrUnsupported is returned for values with no tag representation.
var ErrUnsupported = errors.New("unsupported value")

// ToGo converts t to plain Go values. Compounds become map[string]any, lists
// and sets become []any and numeric arrays become typed slices.
func ToGo(t nbt.Tag) any {
	switch v := t.(type) {
	case nil, nbt.EmptyTag:
		return nil
	case nbt.Boolean:
		return v.Bool()
	case nbt.Char:
		return string(v.Rune())
	case nbt.UUID:
		return v.String()
	case nbt.ByteArray:
		return []byte(v)
	case nbt.ShortArray:
		return []int16(v)
	case nbt.IntArray:
		return []int32(v)
	case nbt.LongArray:
		return []int64(v)
	case nbt.FloatArray:
		return []float32(v)
	case nbt.DoubleArray:
		return []float64(v)
	case nbt.CharArray:
		return []uint16(v)
	case nbt.BooleanArray:
		return []bool(v)
	case nbt.PackedBooleanArray:
		return []bool(v)
	case *nbt.List:
		out := make([]any, 0, v.Len())
		for _, item := range v.All() {
			out = append(out, ToGo(item))
		}
		return out
	case *nbt.Set:
		out := make([]any, 0, v.Len())
		for item := range v.All() {
			out = append(out, ToGo(item))
		}
		return out
	case *nbt.Compound:
		out := make(map[string]any, v.Len())
		for k, item := range v.All() {
			out[k] = ToGo(item)
		}
		return out
	}
	return t.Value()
}

// FromGo converts a Go value to a tag. Maps must have string keys and are
// converted with sorted keys; entries whose value is nil are dropped. Slices
// of tags or mixed values become lists, with integer and floating point
// elements widened to a common type.
func FromGo(v any) (nbt.Tag, error) {
	switch v := v.(type) {
	case nil:
		return nbt.Empty, nil
	case nbt.Tag:
		return v, nil
	case bool:
		return nbt.BooleanOf(v), nil
	case int8:
		return nbt.Byte(v), nil
	case uint8:
		return nbt.Byte(v), nil
	case int16:
		return nbt.Short(v), nil
	case uint16:
		return nbt.Char(v), nil
	case int32:
		return nbt.Int(v), nil
	case int:
		return nbt.Long(v), nil
	case int64:
		return nbt.Long(v), nil
	case uint32:
		return nbt.Long(v), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return nbt.Float(v), nil
	case float64:
		return nbt.Double(v), nil
	case string:
		return nbt.String(v), nil
	case uuid.UUID:
		return nbt.UUID(v), nil
	case []byte:
		return nbt.ByteArray(slices.Clone(v)), nil
	case []int16:
		return nbt.ShortArray(slices.Clone(v)), nil
	case []int32:
		return nbt.IntArray(slices.Clone(v)), nil
	case []int64:
		return nbt.LongArray(slices.Clone(v)), nil
	case []float32:
		return nbt.FloatArray(slices.Clone(v)), nil
	case []float64:
		return nbt.DoubleArray(slices.Clone(v)), nil
	case []uint16:
		return nbt.CharArray(slices.Clone(v)), nil
	case []bool:
		return nbt.BooleanArray(slices.Clone(v)), nil
	case []any:
		return listFromGo(v, FromGo)
	case map[string]any:
		return compoundFromGo(v, FromGo)
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (nbt.Tag, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nbt.Empty, nil
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return listFromGo(items, FromGo)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return compoundFromGo(m, FromGo)
	case reflect.String:
		return nbt.String(rv.String()), nil
	case reflect.Bool:
		return nbt.BooleanOf(rv.Bool()), nil
	}
	if rv.CanInt() || rv.CanUint() || rv.CanFloat() {
		return FromGo(rv.Convert(basicType(rv.Kind())).Interface())
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, rv.Type())
}

func basicType(k reflect.Kind) reflect.Type {
	switch k {
	case reflect.Int:
		return reflect.TypeFor[int]()
	case reflect.Int8:
		return reflect.TypeFor[int8]()
	case reflect.Int16:
		return reflect.TypeFor[int16]()
	case reflect.Int32:
		return reflect.TypeFor[int32]()
	case reflect.Int64:
		return reflect.TypeFor[int64]()
	case reflect.Uint8:
		return reflect.TypeFor[uint8]()
	case reflect.Uint16:
		return reflect.TypeFor[uint16]()
	case reflect.Uint32:
		return reflect.TypeFor[uint32]()
	case reflect.Float32:
		return reflect.TypeFor[float32]()
	case reflect.Float64:
		return reflect.TypeFor[float64]()
	}
	return reflect.TypeFor[uint64]()
}

func fromUint(v uint64) nbt.Tag {
	if v > math.MaxInt64 {
		return nbt.Double(v)
	}
	return nbt.Long(v)
}

// intTag narrows n to Int when it fits.
func intTag(n int64) nbt.Tag {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return nbt.Int(n)
	}
	return nbt.Long(n)
}

func compoundFromGo(m map[string]any, conv func(any) (nbt.Tag, error)) (*nbt.Compound, error) {
	c := nbt.NewCompound()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		t, err := conv(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		c.Put(k, t)
	}
	return c, nil
}

func listFromGo(items []any, conv func(any) (nbt.Tag, error)) (*nbt.List, error) {
	tags := make([]nbt.Tag, 0, len(items))
	for i, item := range items {
		t, err := conv(item)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		tags = append(tags, t)
	}
	return unifyList(tags)
}

// numericRank orders the numeric scalar types by width. Zero means the type
// does not widen.
func numericRank(t nbt.Tag) int {
	switch t.(type) {
	case nbt.Byte:
		return 1
	case nbt.Short:
		return 2
	case nbt.Int:
		return 3
	case nbt.Long:
		return 4
	case nbt.Float:
		return 5
	case nbt.Double:
		return 6
	}
	return 0
}

// unifyList builds a list from tags, widening mixed numeric elements to the
// widest type among them. Integers mixed with floats become Double.
func unifyList(tags []nbt.Tag) (*nbt.List, error) {
	if len(tags) == 0 {
		return nbt.NewList(), nil
	}
	first := tags[0].Type()
	mixed := false
	widest := 0
	hasInt := false
	for _, t := range tags {
		if t.Type() != first {
			mixed = true
		}
		r := numericRank(t)
		if r == 0 {
			widest = -1
		} else if widest >= 0 {
			widest = max(widest, r)
		}
		hasInt = hasInt || (r > 0 && r < 5)
	}
	if !mixed {
		return nbt.NewList(tags...), nil
	}
	if widest <= 0 {
		return nil, fmt.Errorf("%w: %s and others", nbt.ErrMixedList, first.Name())
	}
	if widest == 5 && hasInt {
		widest = 6
	}
	out := make([]nbt.Tag, len(tags))
	for i, t := range tags {
		out[i] = widen(t, widest)
	}
	return nbt.NewList(out...), nil
}

func widen(t nbt.Tag, rank int) nbt.Tag {
	var i int64
	var f float64
	switch v := t.(type) {
	case nbt.Byte:
		i, f = int64(v), float64(v)
	case nbt.Short:
		i, f = int64(v), float64(v)
	case nbt.Int:
		i, f = int64(v), float64(v)
	case nbt.Long:
		i, f = int64(v), float64(v)
	case nbt.Float:
		f = float64(v)
	case nbt.Double:
		f = float64(v)
	}
	switch rank {
	case 2:
		return nbt.Short(i)
	case 3:
		return nbt.Int(i)
	case 4:
		return nbt.Long(i)
	case 5:
		return nbt.Float(f)
	case 6:
		return nbt.Double(f)
	}
	return t
}
