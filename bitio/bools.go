package bitio

// PackBools stores 8 booleans per byte. Element i lands in bit i%8 of byte
// i/8, so the first element is the least significant bit. A trailing partial
// byte is padded with false.
func PackBools(v []bool) []byte {
	out := make([]byte, (len(v)+7)/8)
	for i, set := range v {
		if set {
			out[i>>3] |= 1 << (i & 7)
		}
	}
	return out
}

// UnpackBools expands every byte of b into 8 booleans.
func UnpackBools(b []byte) []bool {
	out := make([]bool, len(b)*8)
	for i, c := range b {
		base := i << 3
		for bit := 0; bit < 8; bit++ {
			out[base+bit] = c&(1<<bit) != 0
		}
	}
	return out
}

// BoolsToBytes stores one boolean per byte (1 or 0).
func BoolsToBytes(v []bool) []byte {
	out := make([]byte, len(v))
	for i, set := range v {
		if set {
			out[i] = 1
		}
	}
	return out
}

// BytesToBools is the inverse of BoolsToBytes. Only the value 1 is true.
func BytesToBools(b []byte) []bool {
	out := make([]bool, len(b))
	for i, c := range b {
		out[i] = c == 1
	}
	return out
}
