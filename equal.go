package nbt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/zeebo/xxh3"
)

// Equal reports whether a and b are structurally equal. Compounds compare
// as maps, ignoring key order; sets compare as sets; strings compare as Go
// strings; everything else compares by its encoded payload, so floats are
// equal when their bits are.
func Equal(a, b Tag) bool {
	a, b = orEmpty(a), orEmpty(b)
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case String:
		return av == b.(String)
	case *Compound:
		bv := b.(*Compound)
		if av.Len() != bv.Len() {
			return false
		}
		for i, k := range av.keys {
			other, ok := bv.Lookup(k)
			if !ok || !Equal(av.vals[i], other) {
				return false
			}
		}
		return true
	case *List:
		bv := b.(*List)
		return slices.EqualFunc(av.items, bv.items, Equal)
	case *Set:
		bv := b.(*Set)
		if av.Len() != bv.Len() {
			return false
		}
		for _, t := range av.items {
			if !bv.Contains(t) {
				return false
			}
		}
		return true
	}
	return payloadEqual(a, b)
}

func payloadEqual(a, b Tag) bool {
	ab := canonicalPayload(a)
	defer bytebufferpool.Put(ab)
	bb := canonicalPayload(b)
	defer bytebufferpool.Put(bb)
	return bytes.Equal(ab.Bytes(), bb.Bytes())
}

// unencodable prefixes the fallback form of a payload the wire rejects.
const unencodable = 0xFF

// canonicalPayload returns t's encoded payload in a pooled buffer. A payload
// the writer rejects is replaced by a marker byte and its printed value, so
// it still compares equal to itself.
func canonicalPayload(t Tag) *bytebufferpool.ByteBuffer {
	buf := bytebufferpool.Get()
	if err := NewWriter(buf).WritePayload(t); err == nil {
		return buf
	}
	buf.Reset()
	buf.WriteByte(unencodable)
	fmt.Fprintf(buf, "%#v", t.Value())
	return buf
}

// Hash returns a 64-bit digest consistent with Equal: equal tags hash the
// same. Compounds and sets hash independently of their order.
func Hash(t Tag) uint64 {
	t = orEmpty(t)
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.WriteByte(byte(t.Type().ID()))

	var scratch [8]byte
	switch v := t.(type) {
	case String:
		buf.WriteString(string(v))
	case *Compound:
		keys := getKeySlice()
		keys = append(keys, v.keys...)
		slices.Sort(keys)
		for _, k := range keys {
			buf.WriteString(k)
			buf.WriteByte(0)
			buf.Write(binary.LittleEndian.AppendUint64(scratch[:0], Hash(v.Get(k))))
		}
		putKeySlice(keys)
	case *List:
		for _, e := range v.items {
			buf.Write(binary.LittleEndian.AppendUint64(scratch[:0], Hash(e)))
		}
	case *Set:
		var sum uint64
		for _, e := range v.items {
			sum += Hash(e)
		}
		buf.Write(binary.LittleEndian.AppendUint64(scratch[:0], sum))
	default:
		p := canonicalPayload(t)
		buf.Write(p.Bytes())
		bytebufferpool.Put(p)
	}
	return xxh3.Hash(buf.Bytes())
}
