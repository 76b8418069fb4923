package nbt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starfederation/nbt-go/compression"
)

func TestVanillaIDs(t *testing.T) {
	r := Default()
	require.True(t, r.Frozen())
	require.Equal(t, 27, r.Len())
	for i, typ := range r.Types() {
		require.Equal(t, TypeID(i), typ.ID())
		require.True(t, typ.Bound())
	}
	require.Same(t, CompoundType, r.Get(10))
	require.Same(t, PackedBooleanArrayType, r.Get(21))
	require.Same(t, UUIDType, r.Get(26))
	require.Same(t, EmptyType, r.Get(200))
	require.False(t, r.IsRegistered(200))
}

// point is a custom tag: two int32s.
type point struct{ x, y int32 }

var pointType = NewType("point", func(r *Reader) (Tag, error) {
	x, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	y, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	return point{x, y}, nil
})

func (point) Type() *Type  { return pointType }
func (p point) Value() any { return [2]int32{p.x, p.y} }
func (p point) Copy() Tag  { return p }
func (p point) Write(w *Writer) error {
	w.WriteInt32(p.x)
	w.WriteInt32(p.y)
	return w.Err()
}

func TestCustomType(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	w.WriteType(NewType("ghost", nil))
	require.ErrorIs(t, w.Err(), ErrUnboundType)

	reg := NewRegistry()
	id, err := reg.Register(pointType)
	require.NoError(t, err)
	require.Equal(t, TypeID(27), id)

	again, err := reg.Register(pointType)
	require.NoError(t, err)
	require.Equal(t, id, again)

	_, err = reg.Register(CompoundType)
	require.NoError(t, err)
	require.Equal(t, 28, reg.Len())

	codec := &Codec{Registry: reg.Freeze()}
	c := NewCompound().Put("p", point{3, -4})
	data, err := codec.Marshal(c, compression.None)
	require.NoError(t, err)

	got, err := codec.Unmarshal(data, compression.None)
	require.NoError(t, err)
	require.Equal(t, point{3, -4}, got.(*Compound).Get("p"))

	// a custom root decodes through the registry that bound its type
	root, err := codec.Marshal(point{1, 2}, compression.None)
	require.NoError(t, err)
	p, err := pointType.Decode(root, compression.None)
	require.NoError(t, err)
	require.Equal(t, point{1, 2}, p)
	p, err = codec.Decode(pointType, root, compression.None)
	require.NoError(t, err)
	require.Equal(t, point{1, 2}, p)
	pt, err := DecodeAsWith[point](codec, root, compression.None)
	require.NoError(t, err)
	require.Equal(t, point{1, 2}, pt)
	_, err = codec.Decode(CompoundType, root, compression.None)
	require.ErrorIs(t, err, ErrTypeMismatch)

	// a reader without the custom type rejects the payload
	_, err = Unmarshal(data, compression.None)
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = reg.Register(NewType("late", nil))
	require.ErrorIs(t, err, ErrRegistryFrozen)

	other := NewRegistry()
	other.MustRegister(NewType("filler", nil))
	_, err = other.Register(pointType)
	require.ErrorIs(t, err, ErrTypeBound)
}

func TestCompoundOrderAndRemoval(t *testing.T) {
	c := NewCompound()
	c.Put("z", Int(1)).Put("a", Int(2)).Put("m", Int(3))
	require.Equal(t, []string{"z", "a", "m"}, c.Keys())

	c.Put("z", Int(9))
	require.Equal(t, []string{"z", "a", "m"}, c.Keys())
	require.Equal(t, Int(9), c.Get("z"))

	require.Equal(t, Int(2), c.Remove("a"))
	require.Equal(t, []string{"z", "m"}, c.Keys())
	require.Equal(t, Int(3), c.Get("m"))

	c.Put("m", Empty)
	require.False(t, c.Contains("m"))
	c.Put("z", nil)
	require.Zero(t, c.Len())
	require.Equal(t, Empty, c.Get("missing"))
}

func TestCompoundTypeQueries(t *testing.T) {
	c := NewCompound().Put("n", Long(1)).Put("s", String("x"))
	require.True(t, c.Has("n", LongType))
	require.False(t, c.Has("n", IntType))
	require.Same(t, StringType, c.TypeOf("s"))
	require.Same(t, EmptyType, c.TypeOf("nope"))
	require.Equal(t, IDLong, c.TypeIDOf("n"))
	require.Equal(t, IDEmpty, c.TypeIDOf("nope"))

	var keys []string
	for k, v := range c.All() {
		keys = append(keys, k)
		require.NotNil(t, v)
	}
	require.Equal(t, []string{"n", "s"}, keys)
}

func TestCompoundMerge(t *testing.T) {
	left := NewCompound().
		Put("keep", Int(1)).
		Put("replace", Int(2)).
		Put("nested", NewCompound().Put("a", Int(1)).Put("b", Int(2)))
	right := NewCompound().
		Put("replace", String("new")).
		Put("nested", NewCompound().Put("b", Int(20)).Put("c", Int(30))).
		Put("added", ByteArray{1})

	left.Merge(right)
	require.Equal(t, []string{"keep", "replace", "nested", "added"}, left.Keys())
	require.Equal(t, String("new"), left.Get("replace"))
	nested := left.Get("nested").(*Compound)
	require.Equal(t, []string{"a", "b", "c"}, nested.Keys())
	require.Equal(t, Int(20), nested.Get("b"))

	// merged values are copies
	right.Get("added").(ByteArray)[0] = 9
	require.Equal(t, ByteArray{1}, left.Get("added"))
}

func TestCopyIsIndependent(t *testing.T) {
	inner := IntArray{1, 2}
	orig := NewCompound().Put("list", NewList(inner)).Put("set", NewSet(String("a")))
	cp := orig.Copy().(*Compound)
	require.True(t, Equal(orig, cp))

	inner[0] = 100
	cp.Get("list").(*List).Add(IntArray{3})
	cp.Get("set").(*Set).Add(String("b"))
	cp.Put("extra", Byte(1))

	require.Equal(t, 1, orig.Get("list").(*List).Len())
	require.Equal(t, 1, orig.Get("set").(*Set).Len())
	require.False(t, orig.Contains("extra"))
	require.Equal(t, IntArray{1, 2}, cp.Get("list").(*List).Get(0))
}

func TestListOperations(t *testing.T) {
	l := NewList(Int(1), Int(3))
	require.True(t, l.Insert(1, Int(2)))
	require.False(t, l.Insert(9, Int(0)))
	require.Equal(t, []Tag{Int(1), Int(2), Int(3)}, l.Items())
	require.Same(t, IntType, l.ElementType())

	require.Equal(t, Int(1), l.Remove(0))
	require.Equal(t, Empty, l.Remove(5))
	require.True(t, l.Set(0, Int(7)))
	require.Equal(t, Int(7), l.Get(0))
	require.Equal(t, Empty, l.Get(-1))

	l.Clear()
	require.Zero(t, l.Len())
	require.Same(t, EmptyType, l.ElementType())
}

func TestSetUniqueness(t *testing.T) {
	s := NewSet()
	require.True(t, s.Add(String("a")))
	require.False(t, s.Add(String("a")))
	require.True(t, s.Add(String("b")))

	c1 := NewCompound().Put("x", Int(1)).Put("y", Int(2))
	c2 := NewCompound().Put("y", Int(2)).Put("x", Int(1))
	cs := NewSet(c1)
	require.False(t, cs.Add(c2))
	require.True(t, cs.Contains(c2))

	require.True(t, s.Remove(String("a")))
	require.False(t, s.Remove(String("a")))
	require.True(t, s.Contains(String("b")))
	require.Equal(t, []Tag{String("b")}, s.Items())
}

func TestSetCollapsesDuplicatesOnRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteType(SetType)
	require.NoError(t, writeElements(w, []Tag{Int(1), Int(1), Int(2)}))

	got := decodeRaw(t, buf.Bytes()).(*Set)
	require.Equal(t, 2, got.Len())
}

func TestBooleanBits(t *testing.T) {
	b := NewBoolean(true, false, true, true)
	require.Equal(t, Boolean(0x0D), b)
	require.True(t, b.Bit(0))
	require.False(t, b.Bit(1))
	require.True(t, b.Bit(3))
	require.Equal(t, Boolean(0x0F), b.WithBit(1, true))
	require.Equal(t, Boolean(0x0C), b.WithBit(0, false))
	require.True(t, b.Bool())
	require.False(t, False.Bool())
	require.Equal(t, True, BooleanOf(true))
}

func TestEqualAndHash(t *testing.T) {
	require.True(t, Equal(nil, Empty))
	require.False(t, Equal(Int(1), Long(1)))
	require.False(t, Equal(NewList(Int(1), Int(2)), NewList(Int(2), Int(1))))
	require.True(t, Equal(NewSet(Int(1), Int(2)), NewSet(Int(2), Int(1))))
	require.Equal(t, Hash(NewSet(Int(1), Int(2))), Hash(NewSet(Int(2), Int(1))))

	a := NewCompound().Put("x", Double(1)).Put("y", String("s"))
	b := NewCompound().Put("y", String("s")).Put("x", Double(1))
	require.True(t, Equal(a, b))
	require.Equal(t, Hash(a), Hash(b))

	require.NotEqual(t, Hash(Int(1)), Hash(Int(2)))
	require.False(t, Equal(FloatArray{0}, FloatArray{0, 0}))
}

func TestEqualUnencodableString(t *testing.T) {
	long := String(strings.Repeat("x", 70000))
	require.True(t, Equal(long, long))
	require.NotZero(t, Hash(long))
	require.Equal(t, Hash(long), Hash(String(strings.Repeat("x", 70000))))
	require.False(t, Equal(long, String(strings.Repeat("x", 70001))))

	s := NewSet()
	require.True(t, s.Add(long))
	require.False(t, s.Add(String(strings.Repeat("x", 70000))))
	require.Equal(t, 1, s.Len())
}
