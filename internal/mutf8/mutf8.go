// Package mutf8 encodes and decodes Java's Modified UTF-8, the string
// encoding NBT uses on the wire. It differs from standard UTF-8 in two
// ways: U+0000 is encoded as the two-byte sequence 0xC0 0x80 instead of a
// single zero byte, and code points outside the Basic Multilingual Plane
// are written as a surrogate pair, each half encoded as its own
// three-byte UTF-8-shaped sequence rather than a single four-byte one.
package mutf8

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Encode converts s to Modified UTF-8.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < utf8.RuneSelf:
			out = append(out, byte(r))
		case r <= 0x7FF:
			out = append(out,
				0xC0|byte(r>>6),
				0x80|byte(r&0x3F),
			)
		case r <= 0xFFFF:
			out = append(out, encode3(r)...)
		default:
			r1, r2 := utf16.EncodeRune(r)
			out = append(out, encode3(r1)...)
			out = append(out, encode3(r2)...)
		}
	}
	return out
}

func encode3(r rune) []byte {
	return []byte{
		0xE0 | byte(r>>12),
		0x80 | byte((r>>6)&0x3F),
		0x80 | byte(r&0x3F),
	}
}

// Decode converts Modified UTF-8 bytes to a Go string. It returns an error
// if the input contains a malformed sequence or an unpaired surrogate.
func Decode(b []byte) (string, error) {
	var out []rune
	for i := 0; i < len(b); {
		c0 := b[i]
		switch {
		case c0 < 0x80:
			out = append(out, rune(c0))
			i++
		case c0&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", fmt.Errorf("mutf8: truncated 2-byte sequence at offset %d", i)
			}
			r := (rune(c0&0x1F) << 6) | rune(b[i+1]&0x3F)
			out = append(out, r)
			i += 2
		case c0&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", fmt.Errorf("mutf8: truncated 3-byte sequence at offset %d", i)
			}
			r1 := (rune(c0&0x0F) << 12) | (rune(b[i+1]&0x3F) << 6) | rune(b[i+2]&0x3F)
			i += 3
			if utf16.IsSurrogate(r1) {
				if i+2 >= len(b) || b[i]&0xF0 != 0xE0 || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
					return "", fmt.Errorf("mutf8: unpaired surrogate at offset %d", i)
				}
				r2 := (rune(b[i]&0x0F) << 12) | (rune(b[i+1]&0x3F) << 6) | rune(b[i+2]&0x3F)
				combined := utf16.DecodeRune(r1, r2)
				if combined == utf8.RuneError {
					return "", fmt.Errorf("mutf8: invalid surrogate pair at offset %d", i)
				}
				out = append(out, combined)
				i += 3
				continue
			}
			out = append(out, r1)
		default:
			return "", fmt.Errorf("mutf8: invalid leading byte 0x%02x at offset %d", c0, i)
		}
	}
	return string(out), nil
}
