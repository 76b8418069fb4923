package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type closeTracker struct {
	bytes.Buffer
	closed int
}

func (c *closeTracker) Close() error {
	c.closed++
	return nil
}

func allStrategies() []Strategy {
	return []Strategy{None, Deflate, Gzip, Zip, Zstd, LZ4, S2}
}

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("named binary tag ", 512))
	for _, s := range allStrategies() {
		t.Run(s.Name(), func(t *testing.T) {
			sink := &closeTracker{}
			w, err := s.WrapWriter(sink)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			require.NoError(t, w.Close())
			require.Equal(t, 1, sink.closed)
			if s != None {
				require.Less(t, sink.Len(), len(payload))
			}

			src := &closeTracker{Buffer: *bytes.NewBuffer(sink.Bytes())}
			r, err := s.WrapReader(src)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.NoError(t, r.Close())
			require.Equal(t, 1, src.closed)
			require.Equal(t, payload, got)
		})
	}
}

func TestNoneIsIdentity(t *testing.T) {
	var buf bytes.Buffer
	w, err := None.WrapWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, []byte{1, 2, 3}, buf.Bytes())
}

func TestDeflateUsesZlibHeader(t *testing.T) {
	var buf bytes.Buffer
	w, err := Deflate.WrapWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, byte(0x78), buf.Bytes()[0])
}

func TestGzipMagic(t *testing.T) {
	var buf bytes.Buffer
	w, err := Default.WrapWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, []byte{0x1f, 0x8b}, buf.Bytes()[:2])
}

func TestCorruptInputFails(t *testing.T) {
	garbage := []byte("definitely not compressed")
	for _, s := range []Strategy{Deflate, Gzip, Zip} {
		src := &closeTracker{Buffer: *bytes.NewBuffer(garbage)}
		_, err := s.WrapReader(src)
		require.Error(t, err, s.Name())
		require.Equal(t, 1, src.closed, s.Name())
	}
}

func TestByName(t *testing.T) {
	for _, s := range allStrategies() {
		got, err := ByName(strings.ToUpper(s.Name()))
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := ByName("brotli")
	require.ErrorIs(t, err, ErrUnknownStrategy)

	require.Equal(t, []string{"deflate", "gzip", "lz4", "none", "s2", "zip", "zstd"}, Names())
	require.Equal(t, Gzip, OrDefault(nil))
	require.Equal(t, Zstd, OrDefault(Zstd))
}

func TestWriterSetupFailureClosesSink(t *testing.T) {
	for _, s := range []Strategy{DeflateStrategy{Level: 42}, GzipStrategy{Level: 42}} {
		sink := &closeTracker{}
		_, err := s.WrapWriter(sink)
		require.Error(t, err, s.Name())
		require.Equal(t, 1, sink.closed, s.Name())
	}
}

func TestZipSizeLimit(t *testing.T) {
	var packed bytes.Buffer
	w, err := Zip.WrapWriter(&packed)
	require.NoError(t, err)
	_, err = w.Write(bytes.Repeat([]byte{7}, 4096))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	src := &closeTracker{Buffer: *bytes.NewBuffer(packed.Bytes())}
	_, err = ZipStrategy{MaxSize: 64}.WrapReader(src)
	require.ErrorIs(t, err, ErrArchiveTooLarge)
	require.Equal(t, 1, src.closed)

	r, err := ZipStrategy{MaxSize: int64(packed.Len())}.WrapReader(bytes.NewReader(packed.Bytes()))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Len(t, got, 4096)
}
