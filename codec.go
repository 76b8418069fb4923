package nbt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/delaneyj/toolbelt/bytebufferpool"

	"github.com/starfederation/nbt-go/compression"
)

// ErrTypeMismatch is returned when a decoded root is not of the requested
// type.
var ErrTypeMismatch = errors.New("decoded tag has unexpected type")

// Codec reads and writes root tags through a compression strategy. The zero
// value uses the Default registry, discards logs and applies the default
// limits.
//
// Read and Write never fail: a broken read yields Empty, a broken write is
// logged and dropped. ReadTag and WriteTag report errors instead. Every entry
// point closes the source or sink it is given when that is an io.Closer.
type Codec struct {
	Registry *Registry
	Logger   *slog.Logger
	// MaxDepth bounds tag nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// MaxAlloc bounds any declared length on read. Zero means DefaultMaxAlloc.
	MaxAlloc int
}

var discard = slog.New(slog.DiscardHandler)

var defaultCodec = &Codec{}

func (c *Codec) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discard
}

func (c *Codec) registry() *Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return Default()
}

// Read decodes one root tag from src. Any failure is logged and Empty is
// returned.
func (c *Codec) Read(src io.Reader, s compression.Strategy) Tag {
	tag, err := c.ReadTag(src, s)
	if err != nil {
		c.logger().Warn("nbt read failed", "compression", compression.OrDefault(s).Name(), "error", err)
		return Empty
	}
	return tag
}

// Write encodes tag to dst. Any failure is logged and dropped.
func (c *Codec) Write(dst io.Writer, tag Tag, s compression.Strategy) {
	if err := c.WriteTag(dst, tag, s); err != nil {
		c.logger().Error("nbt write failed", "type", orEmpty(tag).Type().Name(), "compression", compression.OrDefault(s).Name(), "error", err)
	}
}

// ReadTag decodes one root tag from src. A nil strategy means
// compression.Default.
func (c *Codec) ReadTag(src io.Reader, s compression.Strategy) (Tag, error) {
	s = compression.OrDefault(s)
	stream, err := s.WrapReader(src)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	r := NewReader(stream, c.registry())
	r.SetLimits(c.MaxDepth, c.MaxAlloc)
	tag, err := r.ReadTag()
	if err != nil {
		return nil, fmt.Errorf("read %s root: %w", s.Name(), err)
	}
	c.logger().Debug("nbt read", "type", tag.Type().Name(), "compression", s.Name())
	return tag, nil
}

// WriteTag encodes tag to dst. A nil strategy means compression.Default.
func (c *Codec) WriteTag(dst io.Writer, tag Tag, s compression.Strategy) (err error) {
	s = compression.OrDefault(s)
	stream, err := s.WrapWriter(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stream.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s stream: %w", s.Name(), cerr)
		}
	}()

	w := NewWriter(stream)
	w.SetMaxDepth(c.MaxDepth)
	if werr := w.WriteTag(tag); werr != nil {
		return fmt.Errorf("write %s root: %w", s.Name(), werr)
	}
	c.logger().Debug("nbt write", "type", orEmpty(tag).Type().Name(), "compression", s.Name())
	return nil
}

// Marshal encodes tag into a new byte slice.
func (c *Codec) Marshal(tag Tag, s compression.Strategy) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := c.WriteTag(buf, tag, s); err != nil {
		return nil, err
	}
	return append([]byte{}, buf.Bytes()...), nil
}

// Unmarshal decodes one root tag from data.
func (c *Codec) Unmarshal(data []byte, s compression.Strategy) (Tag, error) {
	return c.ReadTag(bytes.NewReader(data), s)
}

// ReadFile decodes the root tag stored at path.
func (c *Codec) ReadFile(path string, s compression.Strategy) (Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return c.ReadTag(f, s)
}

// WriteFile encodes tag to path, replacing any existing file.
func (c *Codec) WriteFile(path string, tag Tag, s compression.Strategy) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return c.WriteTag(f, tag, s)
}

// Read decodes one root tag with the default codec. See Codec.Read.
func Read(src io.Reader, s compression.Strategy) Tag { return defaultCodec.Read(src, s) }

// Write encodes tag with the default codec. See Codec.Write.
func Write(dst io.Writer, tag Tag, s compression.Strategy) { defaultCodec.Write(dst, tag, s) }

// ReadTag decodes one root tag with the default codec.
func ReadTag(src io.Reader, s compression.Strategy) (Tag, error) {
	return defaultCodec.ReadTag(src, s)
}

// WriteTag encodes tag with the default codec.
func WriteTag(dst io.Writer, tag Tag, s compression.Strategy) error {
	return defaultCodec.WriteTag(dst, tag, s)
}

// Marshal encodes tag with the default codec.
func Marshal(tag Tag, s compression.Strategy) ([]byte, error) { return defaultCodec.Marshal(tag, s) }

// Unmarshal decodes data with the default codec.
func Unmarshal(data []byte, s compression.Strategy) (Tag, error) {
	return defaultCodec.Unmarshal(data, s)
}

// ReadFile decodes the root tag at path with the default codec.
func ReadFile(path string, s compression.Strategy) (Tag, error) {
	return defaultCodec.ReadFile(path, s)
}

// WriteFile encodes tag to path with the default codec.
func WriteFile(path string, tag Tag, s compression.Strategy) error {
	return defaultCodec.WriteFile(path, tag, s)
}

// Decode reads a root tag from data and checks that it has type t.
func (c *Codec) Decode(t *Type, data []byte, s compression.Strategy) (Tag, error) {
	tag, err := c.Unmarshal(data, s)
	if err != nil {
		return nil, err
	}
	if tag.Type() != t {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, t.Name(), tag.Type().Name())
	}
	return tag, nil
}

// Decode reads a root tag from data and checks that it has type t. A custom
// type decodes through the registry that first bound it; vanilla types use
// Default.
func (t *Type) Decode(data []byte, s compression.Strategy) (Tag, error) {
	c := defaultCodec
	if t.home != nil {
		c = &Codec{Registry: t.home}
	}
	return c.Decode(t, data, s)
}

// DecodeAs reads a root tag from data and narrows it to T.
func DecodeAs[T Tag](data []byte, s compression.Strategy) (T, error) {
	return DecodeAsWith[T](defaultCodec, data, s)
}

// DecodeAsWith is DecodeAs through codec c.
func DecodeAsWith[T Tag](c *Codec, data []byte, s compression.Strategy) (T, error) {
	var zero T
	tag, err := c.Unmarshal(data, s)
	if err != nil {
		return zero, err
	}
	out, ok := tag.(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %T, got %s", ErrTypeMismatch, zero, tag.Type().Name())
	}
	return out, nil
}
