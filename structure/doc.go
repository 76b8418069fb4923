// Package structure streams Go values to and from the NBT primitive
// encodings without building a tag tree.
//
// A Shape describes a value: its kind, its ordered fields or its element
// shape. Fields carry no names or type ids on the wire. Structs and fixed
// arrays write their elements back to back because the count is known from
// the shape; slices and maps are prefixed with a varint count. Strings use
// the u16 length prefix of the tag format. Decoding is strictly sequential
// and must use the same shape the value was encoded with.
//
// Errors are never swallowed here. A truncated stream or a value that does
// not fit its shape fails the call.
package structure
