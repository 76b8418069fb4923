package nbt

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// Compound maps string keys to tags and remembers insertion order. It never
// holds an Empty value: storing Empty removes the key.
type Compound struct {
	keys  []string
	vals  []Tag
	index map[string]int
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{index: make(map[string]int)}
}

func (c *Compound) Type() *Type { return CompoundType }

// Value returns the entries as an unordered map.
func (c *Compound) Value() any {
	out := make(map[string]Tag, len(c.keys))
	for i, k := range c.keys {
		out[k] = c.vals[i]
	}
	return out
}

func (c *Compound) Len() int { return len(c.keys) }

// Lookup returns the tag stored under key.
func (c *Compound) Lookup(key string) (Tag, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.vals[i], true
}

// Get returns the tag stored under key, or Empty.
func (c *Compound) Get(key string) Tag {
	if t, ok := c.Lookup(key); ok {
		return t
	}
	return Empty
}

// Contains reports whether key is present.
func (c *Compound) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Has reports whether key is present with a tag of type t.
func (c *Compound) Has(key string, t *Type) bool {
	v, ok := c.Lookup(key)
	return ok && v.Type() == t
}

// TypeOf returns the type stored under key, or EmptyType.
func (c *Compound) TypeOf(key string) *Type {
	return c.Get(key).Type()
}

// TypeIDOf returns the id of the type stored under key, or IDEmpty.
func (c *Compound) TypeIDOf(key string) TypeID {
	return c.TypeOf(key).ID()
}

// Put stores t under key and returns c. An existing key keeps its position.
// A nil or Empty t removes key.
func (c *Compound) Put(key string, t Tag) *Compound {
	if IsEmpty(t) {
		c.Remove(key)
		return c
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[key]; ok {
		c.vals[i] = t
		return c
	}
	c.index[key] = len(c.keys)
	c.keys = append(c.keys, key)
	c.vals = append(c.vals, t)
	return c
}

// Remove deletes key and returns the tag it held, or Empty.
func (c *Compound) Remove(key string) Tag {
	i, ok := c.index[key]
	if !ok {
		return Empty
	}
	t := c.vals[i]
	delete(c.index, key)
	c.keys = slices.Delete(c.keys, i, i+1)
	c.vals = slices.Delete(c.vals, i, i+1)
	for j := i; j < len(c.keys); j++ {
		c.index[c.keys[j]] = j
	}
	return t
}

// Clear drops every entry.
func (c *Compound) Clear() {
	c.keys = c.keys[:0]
	clear(c.vals)
	c.vals = c.vals[:0]
	clear(c.index)
}

// Keys returns the keys in insertion order.
func (c *Compound) Keys() []string { return slices.Clone(c.keys) }

// All iterates entries in insertion order.
func (c *Compound) All() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		for i, k := range c.keys {
			if !yield(k, c.vals[i]) {
				return
			}
		}
	}
}

// Merge copies every entry of other into c, right-biased: when both sides
// hold a compound under the same key the two are merged recursively,
// otherwise other's value replaces c's. Returns c.
func (c *Compound) Merge(other *Compound) *Compound {
	if other == nil || other == c {
		return c
	}
	for i, k := range other.keys {
		right := other.vals[i]
		if rc, ok := right.(*Compound); ok {
			if lc, ok := c.Get(k).(*Compound); ok {
				lc.Merge(rc)
				continue
			}
		}
		c.Put(k, right.Copy())
	}
	return c
}

// Copy deep copies the compound.
func (c *Compound) Copy() Tag {
	out := &Compound{
		keys:  slices.Clone(c.keys),
		vals:  copyTags(c.vals),
		index: maps.Clone(c.index),
	}
	if out.index == nil {
		out.index = make(map[string]int)
	}
	return out
}

func (c *Compound) Write(w *Writer) error {
	for i, k := range c.keys {
		t := c.vals[i]
		w.WriteType(t.Type())
		w.WriteUTF(k)
		if err := w.WritePayload(t); err != nil {
			return err
		}
	}
	w.WriteType(EmptyType)
	return w.Err()
}

func loadCompound(r *Reader) (Tag, error) {
	c := NewCompound()
	for {
		t, err := r.ReadType()
		if err != nil {
			return nil, err
		}
		if t == EmptyType {
			return c, nil
		}
		key, err := r.ReadUTF()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadPayload(t)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		c.Put(key, v)
	}
}
