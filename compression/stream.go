package compression

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

const bufferSize = 32 << 10

// readStream is a decompressing reader that tears down its codec and then the
// raw source on Close.
type readStream struct {
	io.Reader
	codec func() error
	raw   io.Reader

	once sync.Once
	err  error
}

func newReadStream(decoded io.Reader, codec func() error, raw io.Reader) *readStream {
	return &readStream{
		Reader: bufio.NewReaderSize(decoded, bufferSize),
		codec:  codec,
		raw:    raw,
	}
}

func (s *readStream) Close() error {
	s.once.Do(func() {
		var errs []error
		if s.codec != nil {
			errs = append(errs, s.codec())
		}
		errs = append(errs, closeRaw(s.raw))
		s.err = errors.Join(errs...)
	})
	return s.err
}

// writeStream buffers writes in front of a compressing writer. Close flushes
// the buffer, finalizes the codec and closes the raw sink.
type writeStream struct {
	buf   *bufio.Writer
	codec func() error
	raw   io.Writer

	once sync.Once
	err  error
}

func newWriteStream(encoder io.Writer, codec func() error, raw io.Writer) *writeStream {
	return &writeStream{
		buf:   bufio.NewWriterSize(encoder, bufferSize),
		codec: codec,
		raw:   raw,
	}
}

func (s *writeStream) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *writeStream) Close() error {
	s.once.Do(func() {
		errs := []error{s.buf.Flush()}
		if s.codec != nil {
			errs = append(errs, s.codec())
		}
		errs = append(errs, closeRaw(s.raw))
		s.err = errors.Join(errs...)
	})
	return s.err
}

func closeRaw(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
