// Package bitio holds the byte level building blocks of the NBT wire format:
// LEB128 varints, big-endian odd width integers (24/40/48/56 bit), boolean bit
// packing, little-endian numeric array conversion and the length prefixed
// modified UTF-8 string encoding.
//
// Scalars are big-endian. Array payloads are little-endian. Varints carry 7
// payload bits per byte, low group first, with 0x80 as the continuation flag.
//
// Reader and Writer wrap a byte stream with these primitives. Reader returns
// explicit errors; Writer keeps the first error and reports it from Err so
// that a tag can write a run of fields and check once.
package bitio
