package nbt

import (
	"iter"
	"slices"
)

// Set is a List whose elements are structurally distinct. It keeps
// insertion order and uses the same wire layout as List.
type Set struct {
	items []Tag
	index map[uint64][]int
}

// NewSet returns a set holding the distinct tags of items.
func NewSet(items ...Tag) *Set {
	s := &Set{index: make(map[uint64][]int, len(items))}
	for _, t := range items {
		s.Add(t)
	}
	return s
}

func (s *Set) Type() *Type { return SetType }

// Value returns the backing elements in insertion order.
func (s *Set) Value() any { return s.items }

func (s *Set) Len() int { return len(s.items) }

// ElementType returns the declared element type.
func (s *Set) ElementType() *Type { return elementType(s.items) }

func (s *Set) find(t Tag) (uint64, int) {
	h := Hash(t)
	for _, i := range s.index[h] {
		if Equal(s.items[i], t) {
			return h, i
		}
	}
	return h, -1
}

// Contains reports whether a tag equal to t is present.
func (s *Set) Contains(t Tag) bool {
	_, i := s.find(orEmpty(t))
	return i >= 0
}

// Add inserts t unless an equal tag is present. It reports whether t was
// added.
func (s *Set) Add(t Tag) bool {
	t = orEmpty(t)
	h, i := s.find(t)
	if i >= 0 {
		return false
	}
	if s.index == nil {
		s.index = make(map[uint64][]int)
	}
	s.index[h] = append(s.index[h], len(s.items))
	s.items = append(s.items, t)
	return true
}

// Remove deletes the tag equal to t. It reports whether one was present.
func (s *Set) Remove(t Tag) bool {
	_, i := s.find(orEmpty(t))
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.reindex()
	return true
}

func (s *Set) reindex() {
	s.index = make(map[uint64][]int, len(s.items))
	for i, t := range s.items {
		h := Hash(t)
		s.index[h] = append(s.index[h], i)
	}
}

// All iterates elements in insertion order.
func (s *Set) All() iter.Seq[Tag] {
	return slices.Values(s.items)
}

// Items returns a copy of the element slice.
func (s *Set) Items() []Tag { return slices.Clone(s.items) }

// Copy deep copies the set.
func (s *Set) Copy() Tag {
	c := &Set{items: copyTags(s.items)}
	c.reindex()
	return c
}

func (s *Set) Write(w *Writer) error { return writeElements(w, s.items) }

// Duplicates on the wire collapse into one element.
func loadSet(r *Reader) (Tag, error) {
	items, err := readElements(r)
	if err != nil {
		return nil, err
	}
	return NewSet(items...), nil
}
