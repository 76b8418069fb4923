package interop

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	nbt "github.com/starfederation/nbt-go"
)

func sampleCompound() *nbt.Compound {
	inner := nbt.NewCompound().Put("z", nbt.Int(1)).Put("a", nbt.String("x"))
	return nbt.NewCompound().
		Put("name", nbt.String("Bananrama")).
		Put("level", nbt.Int(7)).
		Put("big", nbt.Long(1<<40)).
		Put("ratio", nbt.Double(0.5)).
		Put("alive", nbt.True).
		Put("blob", nbt.ByteArray{0, 1, 2, 0xFF}).
		Put("scores", nbt.NewList(nbt.Int(1), nbt.Int(2), nbt.Int(3))).
		Put("inner", inner)
}

func TestToJSONKeepsOrder(t *testing.T) {
	out, err := ToJSON(sampleCompound())
	require.NoError(t, err)
	require.Equal(t,
		`{"name":"Bananrama","level":7,"big":1099511627776,"ratio":0.5,"alive":true,"blob":"b64:AAEC/w==","scores":[1,2,3],"inner":{"z":1,"a":"x"}}`,
		out)
}

func TestJSONRoundTrip(t *testing.T) {
	in := sampleCompound()
	out, err := ToJSON(in)
	require.NoError(t, err)

	back, err := FromJSON([]byte(out))
	require.NoError(t, err)
	require.True(t, nbt.Equal(in, back), "got %v", ToGo(back))

	c := back.(*nbt.Compound)
	require.Equal(t, in.Keys(), c.Keys())
	require.Equal(t, []string{"z", "a"}, c.Get("inner").(*nbt.Compound).Keys())
}

func TestFromJSONStream(t *testing.T) {
	got, err := fromJSONStream([]byte(`{"b":[1,2.5],"a":null,"c":"b64:AQ==","d":18446744073709551615}`))
	require.NoError(t, err)

	c := got.(*nbt.Compound)
	require.Equal(t, []string{"b", "c", "d"}, c.Keys())
	require.True(t, nbt.Equal(nbt.NewList(nbt.Double(1), nbt.Double(2.5)), c.Get("b")))
	require.False(t, c.Contains("a"))
	require.Equal(t, nbt.ByteArray{1}, c.Get("c"))
	require.Equal(t, nbt.Double(math.MaxUint64), c.Get("d"))
}

func TestFromJSONScalars(t *testing.T) {
	cases := []struct {
		in   string
		want nbt.Tag
	}{
		{`null`, nbt.Empty},
		{`true`, nbt.True},
		{`42`, nbt.Int(42)},
		{`-5000000000`, nbt.Long(-5000000000)},
		{`1.5`, nbt.Double(1.5)},
		{`"hi"`, nbt.String("hi")},
		{`"b64:not base64!"`, nbt.String("b64:not base64!")},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := FromJSON([]byte(tc.in))
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFromJSONComments(t *testing.T) {
	got, err := FromJSON([]byte(`{
		// entity
		"id": 3, /* block */
		"tags": ["a", "b",],
	}`))
	require.NoError(t, err)
	c := got.(*nbt.Compound)
	require.Equal(t, nbt.Int(3), c.Get("id"))
	require.Equal(t, 2, c.Get("tags").(*nbt.List).Len())
}

func TestFromJSONErrors(t *testing.T) {
	_, err := FromJSON([]byte("  "))
	require.Error(t, err)

	_, err = FromJSON([]byte(`[1, "two"]`))
	require.ErrorIs(t, err, nbt.ErrMixedList)

	_, err = fromJSONStream([]byte(`1 2`))
	require.Error(t, err)
}

func TestWidenMixedNumbers(t *testing.T) {
	got, err := FromJSON([]byte(`[1, 5000000000]`))
	require.NoError(t, err)
	require.True(t, nbt.Equal(nbt.NewList(nbt.Long(1), nbt.Long(5000000000)), got))

	l, err := unifyList([]nbt.Tag{nbt.Byte(1), nbt.Float(2)})
	require.NoError(t, err)
	require.Equal(t, nbt.DoubleType, l.ElementType())

	l, err = unifyList([]nbt.Tag{nbt.Float(1), nbt.Float(2)})
	require.NoError(t, err)
	require.Equal(t, nbt.FloatType, l.ElementType())
}

func TestToJSONArraysAndSpecials(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	c := nbt.NewCompound().
		Put("ints", nbt.IntArray{1, -2}).
		Put("floats", nbt.FloatArray{0.5, float32(math.NaN())}).
		Put("bools", nbt.PackedBooleanArray{true, false}).
		Put("id", nbt.UUID(id)).
		Put("char", nbt.Char('é')).
		Put("text", nbt.String("a\"b\n\x01")).
		Put("set", nbt.NewSet(nbt.Short(4)))

	out, err := ToJSON(c)
	require.NoError(t, err)
	require.Equal(t,
		`{"ints":[1,-2],"floats":[0.5,null],"bools":[true,false],"id":"123e4567-e89b-12d3-a456-426614174000","char":"é","text":"a\"b\n\u0001","set":[4]}`,
		out)
}

func TestYAMLRoundTrip(t *testing.T) {
	in := sampleCompound()
	out, err := ToYAML(in)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "name: Bananrama\n"), string(out))
	require.Contains(t, string(out), "blob: !!binary AAEC/w==")

	back, err := FromYAML(out)
	require.NoError(t, err)
	require.True(t, nbt.Equal(in, back), "got %v", ToGo(back))
	require.Equal(t, in.Keys(), back.(*nbt.Compound).Keys())
}

func TestFromYAML(t *testing.T) {
	got, err := FromYAML([]byte(`
base: &b
  hp: 20
copy: *b
speed: 1.25
flags: [true, false]
nothing: ~
label: "42"
`))
	require.NoError(t, err)
	c := got.(*nbt.Compound)
	require.Equal(t, []string{"base", "copy", "speed", "flags", "label"}, c.Keys())
	require.True(t, nbt.Equal(c.Get("base"), c.Get("copy")))
	require.Equal(t, nbt.Double(1.25), c.Get("speed"))
	require.False(t, c.Contains("nothing"))
	require.Equal(t, nbt.String("42"), c.Get("label"))

	empty, err := FromYAML(nil)
	require.NoError(t, err)
	require.Equal(t, nbt.Empty, empty)
}

func TestYAMLFloatsStayFloats(t *testing.T) {
	out, err := ToYAML(nbt.NewList(nbt.Double(2), nbt.Double(math.Inf(1))))
	require.NoError(t, err)

	back, err := FromYAML(out)
	require.NoError(t, err)
	require.True(t, nbt.Equal(nbt.NewList(nbt.Double(2), nbt.Double(math.Inf(1))), back))
}

func TestCBORRoundTrip(t *testing.T) {
	in := nbt.NewCompound().
		Put("level", nbt.Int(7)).
		Put("neg", nbt.Int(-3)).
		Put("ratio", nbt.Double(1.5)).
		Put("blob", nbt.ByteArray{9, 8}).
		Put("list", nbt.NewList(nbt.String("a"), nbt.String("b"))).
		Put("inner", nbt.NewCompound().Put("ok", nbt.True))

	data, err := ToCBOR(in)
	require.NoError(t, err)

	again, err := ToCBOR(in.Copy())
	require.NoError(t, err)
	require.Equal(t, data, again)

	back, err := FromCBOR(data)
	require.NoError(t, err)
	require.True(t, nbt.Equal(in, back), "got %v", ToGo(back))
}

func TestFromCBORInvalid(t *testing.T) {
	_, err := FromCBOR([]byte{0xFF})
	require.Error(t, err)
}

func TestGoValues(t *testing.T) {
	type label string
	got, err := FromGo(map[string]any{
		"b":     int16(2),
		"a":     []int32{1, 2},
		"c":     []string{"x", "y"},
		"d":     label("named"),
		"e":     uint(7),
		"f":     map[string]int{"n": 1},
		"ptr":   (*int)(nil),
		"bytes": []byte("hi"),
	})
	require.NoError(t, err)
	c := got.(*nbt.Compound)
	require.Equal(t, []string{"a", "b", "bytes", "c", "d", "e", "f"}, c.Keys())
	require.Equal(t, nbt.IntArray{1, 2}, c.Get("a"))
	require.Equal(t, nbt.Short(2), c.Get("b"))
	require.Equal(t, nbt.String("named"), c.Get("d"))
	require.Equal(t, nbt.Long(7), c.Get("e"))
	require.True(t, nbt.Equal(nbt.NewCompound().Put("n", nbt.Long(1)), c.Get("f")))
	require.False(t, c.Contains("ptr"))

	back := ToGo(c).(map[string]any)
	require.Equal(t, []int32{1, 2}, back["a"])
	require.Equal(t, []any{"x", "y"}, back["c"])
	require.Equal(t, []byte("hi"), back["bytes"])

	_, err = FromGo(make(chan int))
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = FromGo(map[int]string{1: "x"})
	require.ErrorIs(t, err, ErrUnsupported)
}
