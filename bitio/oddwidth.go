package bitio

// Odd width integers are stored as their low 24, 40, 48 or 56 bits, most
// significant byte first. Decoding sign-extends from the declared width, so
// every value in [-2^(w-1), 2^(w-1)) round-trips exactly.

func appendBE(dst []byte, v uint64, n int) []byte {
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst
}

func decodeBE(b []byte, n int) int64 {
	var u uint64
	for i := 0; i < n; i++ {
		u = u<<8 | uint64(b[i])
	}
	shift := 64 - 8*n
	return int64(u<<shift) >> shift
}

// AppendInt24 appends the low 24 bits of v.
func AppendInt24(dst []byte, v int32) []byte { return appendBE(dst, uint64(v), 3) }

// AppendInt40 appends the low 40 bits of v.
func AppendInt40(dst []byte, v int64) []byte { return appendBE(dst, uint64(v), 5) }

// AppendInt48 appends the low 48 bits of v.
func AppendInt48(dst []byte, v int64) []byte { return appendBE(dst, uint64(v), 6) }

// AppendInt56 appends the low 56 bits of v.
func AppendInt56(dst []byte, v int64) []byte { return appendBE(dst, uint64(v), 7) }

// Int24 decodes a sign-extended 24-bit integer from the first 3 bytes of b.
func Int24(b []byte) int32 { return int32(decodeBE(b, 3)) }

// Int40 decodes a sign-extended 40-bit integer from the first 5 bytes of b.
func Int40(b []byte) int64 { return decodeBE(b, 5) }

// Int48 decodes a sign-extended 48-bit integer from the first 6 bytes of b.
func Int48(b []byte) int64 { return decodeBE(b, 6) }

// Int56 decodes a sign-extended 56-bit integer from the first 7 bytes of b.
func Int56(b []byte) int64 { return decodeBE(b, 7) }

// TruncateSigned returns v reduced to its low bits and sign-extended, which is
// the value a bits-wide odd integer field reads back as.
func TruncateSigned(v int64, bits int) int64 {
	shift := 64 - bits
	return (v << shift) >> shift
}
