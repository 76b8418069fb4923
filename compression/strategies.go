package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// DefaultLevel selects each codec's own default compression level.
const DefaultLevel = -1

// DefaultZipEntry names the single entry written by Zip.
const DefaultZipEntry = "data"

// DefaultZipMaxSize bounds how much of a zip container is buffered on read.
const DefaultZipMaxSize = 64 << 20

var (
	// ErrEmptyArchive is returned when a zip container holds no entries.
	ErrEmptyArchive = errors.New("compression: zip archive has no entries")
	// ErrArchiveTooLarge is returned when a zip container exceeds its
	// strategy's MaxSize.
	ErrArchiveTooLarge = errors.New("compression: zip archive too large")
)

// Identity passes bytes through untouched.
type Identity struct{}

func (Identity) Name() string { return "none" }

func (Identity) WrapReader(r io.Reader) (io.ReadCloser, error) {
	return newReadStream(r, nil, r), nil
}

func (Identity) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return newWriteStream(w, nil, w), nil
}

// DeflateStrategy reads and writes zlib framed deflate streams.
type DeflateStrategy struct {
	Level int
}

func (DeflateStrategy) Name() string { return "deflate" }

func (DeflateStrategy) WrapReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(bufio.NewReader(r))
	if err != nil {
		closeRaw(r)
		return nil, fmt.Errorf("deflate reader: %w", err)
	}
	return newReadStream(zr, zr.Close, r), nil
}

func (s DeflateStrategy) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	zw, err := zlib.NewWriterLevel(w, s.Level)
	if err != nil {
		closeRaw(w)
		return nil, fmt.Errorf("deflate writer: %w", err)
	}
	return newWriteStream(zw, zw.Close, w), nil
}

// GzipStrategy reads and writes gzip members.
type GzipStrategy struct {
	Level int
}

func (GzipStrategy) Name() string { return "gzip" }

func (GzipStrategy) WrapReader(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		closeRaw(r)
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return newReadStream(gr, gr.Close, r), nil
}

func (s GzipStrategy) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	gw, err := gzip.NewWriterLevel(w, s.Level)
	if err != nil {
		closeRaw(w)
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	return newWriteStream(gw, gw.Close, w), nil
}

// ZipStrategy stores the payload as the single entry of a zip container.
// Reading takes the first entry regardless of its name.
type ZipStrategy struct {
	Entry string
	// MaxSize bounds the container read into memory. Zero means
	// DefaultZipMaxSize.
	MaxSize int64
}

func (ZipStrategy) Name() string { return "zip" }

func (s ZipStrategy) WrapReader(r io.Reader) (io.ReadCloser, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = DefaultZipMaxSize
	}
	// the central directory sits at the end, so the whole container is needed
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		closeRaw(r)
		return nil, fmt.Errorf("zip reader: %w", err)
	}
	if int64(len(data)) > limit {
		closeRaw(r)
		return nil, fmt.Errorf("%w: more than %d bytes", ErrArchiveTooLarge, limit)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		closeRaw(r)
		return nil, fmt.Errorf("zip reader: %w", err)
	}
	if len(zr.File) == 0 {
		closeRaw(r)
		return nil, ErrEmptyArchive
	}
	entry, err := zr.File[0].Open()
	if err != nil {
		closeRaw(r)
		return nil, fmt.Errorf("zip entry %q: %w", zr.File[0].Name, err)
	}
	return newReadStream(entry, entry.Close, r), nil
}

func (s ZipStrategy) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	name := s.Entry
	if name == "" {
		name = DefaultZipEntry
	}
	zw := zip.NewWriter(w)
	entry, err := zw.Create(name)
	if err != nil {
		closeRaw(w)
		return nil, fmt.Errorf("zip entry %q: %w", name, err)
	}
	return newWriteStream(entry, zw.Close, w), nil
}

// ZstdStrategy reads and writes zstd frames. The zero Level means
// zstd.SpeedDefault.
type ZstdStrategy struct {
	Level zstd.EncoderLevel
}

func (ZstdStrategy) Name() string { return "zstd" }

func (ZstdStrategy) WrapReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		closeRaw(r)
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return newReadStream(dec, func() error { dec.Close(); return nil }, r), nil
}

func (s ZstdStrategy) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	level := s.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		closeRaw(w)
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return newWriteStream(enc, enc.Close, w), nil
}

// LZ4Strategy reads and writes LZ4 frames. The zero Level is lz4.Fast.
type LZ4Strategy struct {
	Level lz4.CompressionLevel
}

func (LZ4Strategy) Name() string { return "lz4" }

func (LZ4Strategy) WrapReader(r io.Reader) (io.ReadCloser, error) {
	return newReadStream(lz4.NewReader(r), nil, r), nil
}

func (s LZ4Strategy) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	lw := lz4.NewWriter(w)
	if s.Level != 0 {
		if err := lw.Apply(lz4.CompressionLevelOption(s.Level)); err != nil {
			closeRaw(w)
			return nil, fmt.Errorf("lz4 writer: %w", err)
		}
	}
	return newWriteStream(lw, lw.Close, w), nil
}

// S2Strategy reads and writes S2 streams.
type S2Strategy struct {
	Better bool
}

func (S2Strategy) Name() string { return "s2" }

func (S2Strategy) WrapReader(r io.Reader) (io.ReadCloser, error) {
	return newReadStream(s2.NewReader(r), nil, r), nil
}

func (s S2Strategy) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	var opts []s2.WriterOption
	if s.Better {
		opts = append(opts, s2.WriterBetterCompression())
	}
	sw := s2.NewWriter(w, opts...)
	return newWriteStream(sw, sw.Close, w), nil
}
