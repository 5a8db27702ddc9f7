// Package fourcc converts between the protocol's four-byte type/name codes
// and their display-string form.
//
// Codes are historically Mac Roman-encoded: every byte value 0x00-0xFF maps
// to exactly one Unicode rune and back, so code<->string conversion is a
// bijection over all 256^4 byte combinations.
package fourcc

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// Sentinel errors
var (
	ErrCodeLength = errors.New("four-byte code must be exactly four characters")
	ErrCodeRange  = errors.New("character not representable in Mac Roman")
)

// Code is a four-byte protocol code. The most significant byte is the first
// character of the display form.
type Code uint32

// Parse converts a four-character display string into a Code, reversing the
// Mac Roman mapping applied by String.
func Parse(s string) (Code, error) {
	runes := []rune(s)
	if len(runes) != 4 {
		return 0, fmt.Errorf("%w: %q has %d", ErrCodeLength, s, len(runes))
	}

	var c Code

	for _, r := range runes {
		b, ok := charmap.Macintosh.EncodeRune(r)
		if !ok {
			return 0, fmt.Errorf("%w: %q in %q", ErrCodeRange, r, s)
		}

		c = c<<8 | Code(b)
	}

	return c, nil
}

// MustParse is Parse for trusted constant strings; it panics on failure.
func MustParse(s string) Code {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return c
}

// String returns the four-character display form, mapping bytes above 0x7F
// through Mac Roman rather than rejecting them.
func (c Code) String() string {
	runes := make([]rune, 4)
	for i := range 4 {
		b := byte(c >> (8 * (3 - i)))
		runes[i] = charmap.Macintosh.DecodeByte(b)
	}

	return string(runes)
}

// Bytes returns the code in wire order (most significant byte first).
func (c Code) Bytes() [4]byte {
	return [4]byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)}
}

// FromBytes assembles a Code from wire-order bytes.
func FromBytes(b [4]byte) Code {
	return Code(b[0])<<24 | Code(b[1])<<16 | Code(b[2])<<8 | Code(b[3])
}

// Derive lowercases name and truncates or space-pads it to four characters.
// It is a fallback for names that cannot be resolved through a dictionary;
// characters outside Mac Roman are replaced with '?'.
func Derive(name string) Code {
	var c Code

	runes := []rune(name)
	for i := range 4 {
		b := byte(' ')

		if i < len(runes) {
			r := runes[i]
			if 'A' <= r && r <= 'Z' {
				r += 'a' - 'A'
			}

			var ok bool

			b, ok = charmap.Macintosh.EncodeRune(r)
			if !ok {
				b = '?'
			}
		}

		c = c<<8 | Code(b)
	}

	return c
}
