package bitio

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// MaxUTFLen is the largest encoded string length a u16 prefix can describe.
const MaxUTFLen = 0xFFFF

var (
	// ErrUTFTooLong is returned when an encoded string exceeds MaxUTFLen bytes.
	ErrUTFTooLong = errors.New("bitio: encoded string longer than 65535 bytes")
	// ErrMalformedUTF is returned for byte sequences that are not modified UTF-8.
	ErrMalformedUTF = errors.New("bitio: malformed modified UTF-8")
)

// UTFLen returns the modified UTF-8 length of s, excluding the prefix.
func UTFLen(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r == 0:
			n += 2
		case r < 0x80:
			n++
		case r < 0x800:
			n += 2
		case r < 0x10000:
			n += 3
		default:
			n += 6
		}
	}
	return n
}

// AppendUTF appends s as a big-endian u16 byte length followed by modified
// UTF-8: NUL is written as C0 80 and code points above U+FFFF are written as
// two 3-byte surrogates.
func AppendUTF(dst []byte, s string) ([]byte, error) {
	n := UTFLen(s)
	if n > MaxUTFLen {
		return dst, ErrUTFTooLong
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			dst = appendUnit(dst, uint16(hi))
			dst = appendUnit(dst, uint16(lo))
			continue
		}
		dst = appendUnit(dst, uint16(r))
	}
	return dst, nil
}

func appendUnit(dst []byte, c uint16) []byte {
	switch {
	case c != 0 && c < 0x80:
		return append(dst, byte(c))
	case c < 0x800:
		return append(dst, 0xC0|byte(c>>6), 0x80|byte(c&0x3F))
	default:
		return append(dst, 0xE0|byte(c>>12), 0x80|byte((c>>6)&0x3F), 0x80|byte(c&0x3F))
	}
}

// DecodeUTF decodes a modified UTF-8 body (without the length prefix).
func DecodeUTF(b []byte) (string, error) {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0:
			return "", ErrMalformedUTF
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", ErrMalformedUTF
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", ErrMalformedUTF
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", ErrMalformedUTF
		}
	}
	return string(utf16.Decode(units)), nil
}
