// Package compression wraps raw byte streams in the compression codecs an NBT
// payload may be stored under. Nothing on the wire records which strategy
// was used; reader and writer must agree out of band.
package compression

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrUnknownStrategy is returned by ByName for names no strategy answers to.
var ErrUnknownStrategy = errors.New("compression: unknown strategy")

// Strategy turns a raw stream into a compressed one and back. Every returned
// stream is buffered, and closing it closes the raw stream as well when that
// stream is an io.Closer. Close is safe to call more than once. When wrapping
// fails the raw stream is closed before the error is returned.
type Strategy interface {
	Name() string
	WrapReader(r io.Reader) (io.ReadCloser, error)
	WrapWriter(w io.Writer) (io.WriteCloser, error)
}

var (
	None    Strategy = Identity{}
	Deflate Strategy = DeflateStrategy{Level: DefaultLevel}
	Gzip    Strategy = GzipStrategy{Level: DefaultLevel}
	Zip     Strategy = ZipStrategy{Entry: DefaultZipEntry}
	Zstd    Strategy = ZstdStrategy{}
	LZ4     Strategy = LZ4Strategy{}
	S2      Strategy = S2Strategy{}

	// Default is the strategy used when the caller does not pick one.
	Default = Gzip
)

var byName = map[string]Strategy{}

func init() {
	for _, s := range []Strategy{None, Deflate, Gzip, Zip, Zstd, LZ4, S2} {
		byName[s.Name()] = s
	}
}

// ByName returns the built-in strategy registered under name. Matching is
// case insensitive.
func ByName(name string) (Strategy, error) {
	s, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names lists the built-in strategy names in sorted order.
func Names() []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// OrDefault returns s, or Default when s is nil.
func OrDefault(s Strategy) Strategy {
	if s == nil {
		return Default
	}
	return s
}
