package nbt

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starfederation/nbt-go/bitio"
	"github.com/starfederation/nbt-go/compression"
)

func encodeRaw(t *testing.T, tag Tag) []byte {
	t.Helper()
	data, err := Marshal(tag, compression.None)
	require.NoError(t, err)
	return data
}

func decodeRaw(t *testing.T, data []byte) Tag {
	t.Helper()
	tag, err := Unmarshal(data, compression.None)
	require.NoError(t, err)
	return tag
}

func TestCompoundWireLayout(t *testing.T) {
	c := NewCompound().Put("a", Int(1)).Put("b", String("x"))
	want := []byte{
		0x0A,
		0x03, 0x00, 0x01, 'a', 0x00, 0x00, 0x00, 0x01,
		0x08, 0x00, 0x01, 'b', 0x00, 0x01, 'x',
		0x00,
	}
	data := encodeRaw(t, c)
	require.Equal(t, want, data)

	got := decodeRaw(t, data).(*Compound)
	require.Equal(t, []string{"a", "b"}, got.Keys())
	require.Equal(t, Int(1), got.Get("a"))
	require.Equal(t, String("x"), got.Get("b"))
	require.Equal(t, IDInt, got.TypeIDOf("a"))
	require.Equal(t, IDString, got.TypeIDOf("b"))
	require.Equal(t, IDEmpty, got.TypeIDOf("missing"))
}

func TestEmptyListPayload(t *testing.T) {
	data := encodeRaw(t, NewList())
	require.Equal(t, []byte{byte(IDList), 0x00, 0x00}, data)

	got := decodeRaw(t, data).(*List)
	require.Zero(t, got.Len())
	require.Equal(t, EmptyType, got.ElementType())
}

func TestPackedBooleanArrayPayload(t *testing.T) {
	data := encodeRaw(t, PackedBooleanArray{true, false, true, true})
	require.Equal(t, []byte{byte(IDPackedBooleanArray), 0x01, 0x0D}, data)

	got := decodeRaw(t, data).(PackedBooleanArray)
	require.Len(t, got, 8)
	require.Equal(t, PackedBooleanArray{true, false, true, true, false, false, false, false}, got)
}

func TestGzipRoundTrip(t *testing.T) {
	c := NewCompound().
		Put("name", String("level")).
		Put("seed", Long(-4172144997902289642)).
		Put("spawn", IntArray{0, 64, 0}).
		Put("players", NewList(
			NewCompound().Put("id", NewUUID()).Put("health", Float(20)),
			NewCompound().Put("id", NewUUID()).Put("health", Float(7.5)),
		))

	var buf bytes.Buffer
	Write(&buf, c, compression.Gzip)
	require.Equal(t, []byte{0x1f, 0x8b}, buf.Bytes()[:2])

	got := Read(&buf, compression.Gzip)
	require.True(t, Equal(c, got))
	require.Equal(t, c.Keys(), got.(*Compound).Keys())
}

func TestRoundTripEveryVariant(t *testing.T) {
	id, err := ParseUUID("123e4567-e89b-12d3-a456-426614174000")
	require.NoError(t, err)

	tests := []struct {
		name string
		tag  Tag
	}{
		{"empty", Empty},
		{"byte", Byte(-128)},
		{"short", Short(math.MinInt16)},
		{"int", Int(math.MaxInt32)},
		{"long", Long(math.MinInt64)},
		{"float", Float(-1.5)},
		{"float nan", Float(float32(math.NaN()))},
		{"double", Double(math.SmallestNonzeroFloat64)},
		{"byte array", ByteArray{0, 1, 0xFF}},
		{"string", String("héllo\x00wörld😀")},
		{"list", NewList(Short(1), Short(2))},
		{"compound", NewCompound().Put("k", Byte(1))},
		{"int array", IntArray{math.MinInt32, 0, math.MaxInt32}},
		{"long array", LongArray{1, -1}},
		{"char", Char('Z')},
		{"boolean", NewBoolean(true, false, true)},
		{"set", NewSet(String("a"), String("b"))},
		{"short array", ShortArray{-2, 2}},
		{"float array", FloatArray{0.5, float32(math.Inf(1))}},
		{"double array", DoubleArray{math.Pi, math.E}},
		{"char array", CharArray{'h', 'i', 0xD83D}},
		{"boolean array", BooleanArray{true, false, false}},
		{"packed boolean array", PackedBooleanArray{true, true, false, false, true, false, true, false}},
		{"int24", Int24(-1 << 23)},
		{"int40", Int40(1<<39 - 1)},
		{"int48", Int48(-1234567890123)},
		{"int56", Int56(1 << 54)},
		{"uuid", UUID(id)},
		{"empty byte array", ByteArray{}},
		{"nested", NewList(NewList(Int(1)), NewList(Int(2), Int(3)))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, s := range []compression.Strategy{compression.None, compression.Gzip} {
				data, err := Marshal(tc.tag, s)
				require.NoError(t, err)
				got, err := Unmarshal(data, s)
				require.NoError(t, err)
				require.Same(t, tc.tag.Type(), got.Type())
				require.True(t, Equal(tc.tag, got), "%s: %#v != %#v", s.Name(), tc.tag, got)
			}
		})
	}
}

func TestArrayPayloadIsLittleEndian(t *testing.T) {
	data := encodeRaw(t, IntArray{1, 2})
	require.Equal(t, []byte{byte(IDIntArray), 8, 1, 0, 0, 0, 2, 0, 0, 0}, data)

	data = encodeRaw(t, BooleanArray{true, false})
	require.Equal(t, []byte{byte(IDBooleanArray), 2, 1, 0}, data)
}

func TestOddWidthWire(t *testing.T) {
	data := encodeRaw(t, Int40(0x12_3456_789A))
	require.Equal(t, []byte{byte(IDInt40), 0x12, 0x34, 0x56, 0x78, 0x9A}, data)
	require.Equal(t, Int40(0x12_3456_789A), decodeRaw(t, data))

	require.Equal(t, Int24(-1), NewInt24(0xFFFFFF))
	require.Equal(t, Int56(0), NewInt56(1<<56))
}

func TestUUIDWire(t *testing.T) {
	id, err := ParseUUID("00112233-4455-6677-8899-aabbccddeeff")
	require.NoError(t, err)
	data := encodeRaw(t, id)
	require.Equal(t, byte(IDUUID), data[0])
	require.Equal(t, []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, data[1:])
}

func TestMixedListWriteFails(t *testing.T) {
	_, err := Marshal(NewList(Int(1), String("x")), compression.None)
	require.ErrorIs(t, err, ErrMixedList)

	c := NewCompound().Put("bad", NewSet(Int(1), Long(1)))
	_, err = Marshal(c, compression.None)
	require.ErrorIs(t, err, ErrMixedList)
}

func TestReadSwallowsErrors(t *testing.T) {
	data := encodeRaw(t, NewCompound().Put("a", Long(5)))
	got := Read(bytes.NewReader(data[:len(data)-3]), compression.None)
	require.Equal(t, Empty, got)

	got = Read(bytes.NewReader([]byte("not gzip")), compression.Gzip)
	require.Equal(t, Empty, got)

	_, err := ReadTag(bytes.NewReader(data[:4]), compression.None)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestUnknownTypeFailsRead(t *testing.T) {
	_, err := Unmarshal([]byte{0xEE}, compression.None)
	require.ErrorIs(t, err, ErrUnknownType)

	// unknown id nested inside a compound
	_, err = Unmarshal([]byte{0x0A, 0x7F, 0x00, 0x01, 'k', 0x00}, compression.None)
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestArrayLengthMustMatchWidth(t *testing.T) {
	_, err := Unmarshal([]byte{byte(IDLongArray), 3, 1, 2, 3}, compression.None)
	require.ErrorIs(t, err, ErrArrayLength)
}

func TestDepthLimit(t *testing.T) {
	var tag Tag = Int(1)
	for i := 0; i < 20; i++ {
		tag = NewList(tag)
	}
	data := encodeRaw(t, tag)

	c := &Codec{MaxDepth: 10}
	_, err := c.Unmarshal(data, compression.None)
	require.ErrorIs(t, err, ErrMaxDepth)

	_, err = c.Marshal(tag, compression.None)
	require.ErrorIs(t, err, ErrMaxDepth)

	got, err := (&Codec{MaxDepth: 21}).Unmarshal(data, compression.None)
	require.NoError(t, err)
	require.True(t, Equal(tag, got))
}

func TestSelfReferenceHitsDepthLimit(t *testing.T) {
	c := NewCompound()
	c.Put("self", c)
	_, err := Marshal(c, compression.None)
	require.ErrorIs(t, err, ErrMaxDepth)
}

func TestAllocLimit(t *testing.T) {
	data := append([]byte{byte(IDByteArray)}, bitio.AppendVarInt(nil, 1<<30)...)
	_, err := Unmarshal(data, compression.None)
	require.ErrorIs(t, err, bitio.ErrTooLarge)

	data = encodeRaw(t, ByteArray(make([]byte, 2048)))
	c := &Codec{MaxAlloc: 1024}
	_, err = c.Unmarshal(data, compression.None)
	require.ErrorIs(t, err, bitio.ErrTooLarge)

	// a huge declared element count with no elements behind it
	data = append([]byte{byte(IDList), byte(IDInt)}, bitio.AppendVarInt(nil, 1<<20)...)
	_, err = Unmarshal(data, compression.None)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestZeroWidthElementLimit(t *testing.T) {
	// Empty elements take no bytes, so six bytes would declare 16M slots.
	data := append([]byte{byte(IDList), byte(IDEmpty)}, bitio.AppendVarInt(nil, 1<<24)...)
	_, err := Unmarshal(data, compression.None)
	require.ErrorIs(t, err, bitio.ErrTooLarge)

	// nested lists share one budget
	c := &Codec{MaxAlloc: 64 * tagSlotSize}
	inner := append([]byte{byte(IDEmpty)}, bitio.AppendVarInt(nil, 40)...)
	data = append([]byte{byte(IDList), byte(IDList)}, bitio.AppendVarInt(nil, 2)...)
	data = append(data, inner...)
	data = append(data, inner...)
	_, err = c.Unmarshal(data, compression.None)
	require.ErrorIs(t, err, bitio.ErrTooLarge)

	list := NewList(Empty, Empty, Empty)
	got, err := c.Unmarshal(encodeRaw(t, list), compression.None)
	require.NoError(t, err)
	require.Equal(t, 3, got.(*List).Len())
}

func TestDecodeAs(t *testing.T) {
	data, err := Marshal(NewCompound().Put("x", Int(3)), compression.Zstd)
	require.NoError(t, err)

	c, err := DecodeAs[*Compound](data, compression.Zstd)
	require.NoError(t, err)
	require.Equal(t, Int(3), c.Get("x"))

	_, err = DecodeAs[*List](data, compression.Zstd)
	require.ErrorIs(t, err, ErrTypeMismatch)

	tag, err := CompoundType.Decode(data, compression.Zstd)
	require.NoError(t, err)
	require.True(t, Equal(c, tag))

	_, err = StringType.Decode(data, compression.Zstd)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestEntryPointsCloseStreams(t *testing.T) {
	sink := &closeRecorder{}
	Write(sink, String("x"), compression.Deflate)
	require.True(t, sink.closed)

	src := &closeRecorder{Buffer: *bytes.NewBuffer(sink.Bytes())}
	require.Equal(t, String("x"), Read(src, compression.Deflate))
	require.True(t, src.closed)

	src = &closeRecorder{Buffer: *bytes.NewBufferString("junk")}
	require.Equal(t, Empty, Read(src, compression.Deflate))
	require.True(t, src.closed)

	sink = &closeRecorder{}
	Write(sink, NewList(Int(1), Byte(1)), compression.None)
	require.True(t, sink.closed)
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSwallowsErrors(t *testing.T) {
	require.NotPanics(t, func() {
		Write(errWriter{}, NewCompound().Put("a", Int(1)), compression.None)
	})
	require.Error(t, WriteTag(errWriter{}, NewCompound().Put("a", Int(1)), compression.None))
}

func TestFileHelpers(t *testing.T) {
	path := t.TempDir() + "/level.dat"
	c := NewCompound().Put("hardcore", True)
	codec := &Codec{}
	require.NoError(t, codec.WriteFile(path, c, compression.Gzip))
	got, err := codec.ReadFile(path, compression.Gzip)
	require.NoError(t, err)
	require.True(t, Equal(c, got))
}
