package nbt

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrMixedList is returned when a list or set holding more than one element
// type is written. The wire format records a single element type.
var ErrMixedList = errors.New("list elements have different types")

// List is an ordered sequence of tags of one type. The element type is the
// type of the first element; an empty list declares Empty.
type List struct {
	items []Tag
}

// NewList returns a list holding items in order.
func NewList(items ...Tag) *List {
	l := &List{items: make([]Tag, 0, len(items))}
	l.Add(items...)
	return l
}

func (l *List) Type() *Type { return ListType }

// Value returns the backing elements.
func (l *List) Value() any { return l.items }

func (l *List) Len() int { return len(l.items) }

// ElementType returns the declared element type.
func (l *List) ElementType() *Type { return elementType(l.items) }

// Get returns element i, or Empty when i is out of range.
func (l *List) Get(i int) Tag {
	if i < 0 || i >= len(l.items) {
		return Empty
	}
	return l.items[i]
}

// Set replaces element i. It reports false when i is out of range.
func (l *List) Set(i int, t Tag) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items[i] = orEmpty(t)
	return true
}

// Add appends tags. A nil tag is stored as Empty.
func (l *List) Add(tags ...Tag) {
	for _, t := range tags {
		l.items = append(l.items, orEmpty(t))
	}
}

// Insert places t before element i.
func (l *List) Insert(i int, t Tag) bool {
	if i < 0 || i > len(l.items) {
		return false
	}
	l.items = slices.Insert(l.items, i, orEmpty(t))
	return true
}

// Remove deletes element i and returns it, or Empty when i is out of range.
func (l *List) Remove(i int) Tag {
	if i < 0 || i >= len(l.items) {
		return Empty
	}
	t := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	return t
}

// Clear drops every element.
func (l *List) Clear() {
	clear(l.items)
	l.items = l.items[:0]
}

// All iterates elements in order.
func (l *List) All() iter.Seq2[int, Tag] {
	return slices.All(l.items)
}

// Items returns a copy of the element slice.
func (l *List) Items() []Tag { return slices.Clone(l.items) }

// Copy deep copies the list.
func (l *List) Copy() Tag {
	return &List{items: copyTags(l.items)}
}

func (l *List) Write(w *Writer) error { return writeElements(w, l.items) }

func loadList(r *Reader) (Tag, error) {
	items, err := readElements(r)
	if err != nil {
		return nil, err
	}
	return &List{items: items}, nil
}

func orEmpty(t Tag) Tag {
	if t == nil {
		return Empty
	}
	return t
}

func copyTags(src []Tag) []Tag {
	out := make([]Tag, len(src))
	for i, t := range src {
		out[i] = t.Copy()
	}
	return out
}

func elementType(items []Tag) *Type {
	if len(items) == 0 {
		return EmptyType
	}
	return items[0].Type()
}

func writeElements(w *Writer, items []Tag) error {
	elem := elementType(items)
	for i, t := range items {
		if t.Type() != elem {
			w.Fail(fmt.Errorf("%w: element %d is %s, first is %s", ErrMixedList, i, t.Type().Name(), elem.Name()))
			return w.Err()
		}
	}
	w.WriteType(elem)
	w.WriteVarInt(uint32(len(items)))
	for _, t := range items {
		if err := w.WritePayload(t); err != nil {
			return err
		}
	}
	return w.Err()
}

func readElements(r *Reader) ([]Tag, error) {
	elem, err := r.ReadType()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	if err := r.reserveElements(n); err != nil {
		return nil, err
	}
	// declared count is untrusted; grow a pooled slice instead of sizing by n
	scratch := getTagSlice()
	defer func() { putTagSlice(scratch) }()
	for i := 0; i < n; i++ {
		t, err := r.ReadPayload(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d of %d: %w", i, n, err)
		}
		scratch = append(scratch, t)
	}
	return slices.Clone(scratch), nil
}
