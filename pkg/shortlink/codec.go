// Package shortlink converts numeric recipe IDs to compact base-36
// codes and back. Codes are what appear in /s/{code} URLs.
package shortlink

import (
	"errors"
	"strings"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	base     = uint64(len(alphabet))

	// MinLength is the minimum code width; shorter values are
	// left-padded with '0'.
	MinLength = 3
)

var ErrInvalidCode = errors.New("invalid short link code")

// Encode returns the base-36 representation of n, most significant
// symbol first, left-padded with '0' to MinLength characters.
func Encode(n uint64) string {
	if n == 0 {
		// The digit expansion below would yield an empty string.
		return strings.Repeat("0", MinLength)
	}

	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = alphabet[n%base]
		n /= base
	}

	code := string(buf[i:])
	if len(code) < MinLength {
		code = strings.Repeat("0", MinLength-len(code)) + code
	}
	return code
}

// Decode parses a base-36 code back into the number it encodes. Any
// character outside the alphabet makes the whole code invalid; the
// caller is expected to treat that the same as an unknown code.
func Decode(code string) (uint64, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}

	var result uint64
	for _, c := range code {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return 0, ErrInvalidCode
		}
		result = result*base + uint64(idx)
	}
	return result, nil
}
