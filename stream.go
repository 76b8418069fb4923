package nbt

import (
	"errors"
	"fmt"
	"io"
	"unsafe"

	"github.com/starfederation/nbt-go/bitio"
)

const (
	// DefaultMaxDepth bounds tag nesting on both read and write.
	DefaultMaxDepth = 512
	// DefaultMaxAlloc bounds any single declared length on read.
	DefaultMaxAlloc = bitio.DefaultMaxAlloc
)

var (
	ErrMaxDepth    = errors.New("tag nesting exceeds depth limit")
	ErrUnknownType = errors.New("unknown tag type id")
	ErrUnboundType = errors.New("tag type is not registered")
	ErrArrayLength = errors.New("array byte length is not a multiple of the element width")
)

// Reader decodes tags from a byte stream. Loaders receive it and use the
// embedded bitio.Reader for primitives and ReadType/ReadPayload for nested
// tags.
type Reader struct {
	*bitio.Reader
	registry *Registry
	depth    int
	maxDepth int
	// elements counts list and set slots allocated so far in this read.
	elements int
}

// NewReader reads tags registered in reg. A nil reg means Default.
func NewReader(r io.Reader, reg *Registry) *Reader {
	if reg == nil {
		reg = Default()
	}
	return &Reader{
		Reader:   bitio.NewReader(r),
		registry: reg,
		maxDepth: DefaultMaxDepth,
	}
}

// ReaderFrom reads tags from an existing primitive reader, sharing its
// position and allocation limit.
func ReaderFrom(br *bitio.Reader, reg *Registry) *Reader {
	if reg == nil {
		reg = Default()
	}
	return &Reader{Reader: br, registry: reg, maxDepth: DefaultMaxDepth}
}

// tagSlotSize is the memory one list or set element costs regardless of how
// many bytes its payload took on the wire.
const tagSlotSize = int(unsafe.Sizeof(Tag(nil)))

// reserveElements charges n element slots against the allocation limit. The
// budget spans the whole read, so zero-width payloads such as Empty cannot
// multiply a few input bytes into unbounded memory.
func (r *Reader) reserveElements(n int) error {
	budget := r.Limit() / tagSlotSize
	if n > budget-r.elements {
		return fmt.Errorf("%w: %d more elements after %d", bitio.ErrTooLarge, n, r.elements)
	}
	r.elements += n
	return nil
}

// SetLimits overrides the nesting and allocation limits. Zero keeps the
// default.
func (r *Reader) SetLimits(maxDepth, maxAlloc int) {
	if maxDepth > 0 {
		r.maxDepth = maxDepth
	}
	if maxAlloc > 0 {
		r.MaxAlloc = maxAlloc
	}
}

// Registry returns the registry ids are resolved against.
func (r *Reader) Registry() *Registry { return r.registry }

// ReadType reads one id byte and resolves it.
func (r *Reader) ReadType() (*Type, error) {
	id, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	t, ok := r.registry.Lookup(TypeID(id))
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, id)
	}
	return t, nil
}

// ReadPayload loads one payload of type t.
func (r *Reader) ReadPayload(t *Type) (Tag, error) {
	if r.depth >= r.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrMaxDepth, r.maxDepth)
	}
	r.depth++
	tag, err := t.Load(r)
	r.depth--
	return tag, err
}

// ReadTag reads an id byte followed by its payload.
func (r *Reader) ReadTag() (Tag, error) {
	t, err := r.ReadType()
	if err != nil {
		return nil, err
	}
	return r.ReadPayload(t)
}

// Writer encodes tags onto a byte stream. The first error sticks; see
// bitio.Writer.
type Writer struct {
	*bitio.Writer
	depth    int
	maxDepth int
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Writer:   bitio.NewWriter(w),
		maxDepth: DefaultMaxDepth,
	}
}

// WriterFrom writes tags through an existing primitive writer, sharing its
// sticky error.
func WriterFrom(bw *bitio.Writer) *Writer {
	return &Writer{Writer: bw, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth overrides the nesting limit. Zero keeps the default.
func (w *Writer) SetMaxDepth(n int) {
	if n > 0 {
		w.maxDepth = n
	}
}

// WriteType writes t's id byte.
func (w *Writer) WriteType(t *Type) {
	if !t.bound {
		w.Fail(fmt.Errorf("%w: %s", ErrUnboundType, t.name))
		return
	}
	w.WriteUint8(uint8(t.id))
}

// WritePayload writes tag without its id.
func (w *Writer) WritePayload(tag Tag) error {
	if w.Err() != nil {
		return w.Err()
	}
	if w.depth >= w.maxDepth {
		w.Fail(fmt.Errorf("%w (%d)", ErrMaxDepth, w.maxDepth))
		return w.Err()
	}
	w.depth++
	if err := tag.Write(w); err != nil {
		w.Fail(err)
	}
	w.depth--
	return w.Err()
}

// WriteTag writes tag's id followed by its payload. A nil tag is written as
// Empty.
func (w *Writer) WriteTag(tag Tag) error {
	if tag == nil {
		tag = Empty
	}
	w.WriteType(tag.Type())
	return w.WritePayload(tag)
}
