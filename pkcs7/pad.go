// Package pkcs7 implements padding for cryptographic purposes as specified
// in RFC 5652: Cryptographic Message Syntax (CMS)
package pkcs7

import (
	"bytes"
	"errors"
)

// ErrBadPadding is returned when the trailing bytes do not form valid
// padding. When it comes up during decryption it almost always means the
// wrong key was used.
var ErrBadPadding = errors.New("bad pkcs7 padding")

// Pad a byte slice given k (in bytes). This is commonly the block size of a
// cipher, as example AES = 16. The input is padded at the trailing end with
// k - (l mod k) octets all having value k - (l mod k), where l is the length
// of the input. When the input is already a multiple of k an entire block of
// padding is added, so padding is always present and can be removed
// unambiguously. This scheme is well-defined only for k < 256.
//
// The input slice is not modified.
func Pad(b []byte, k int) []byte {
	if k < 1 || k > 255 {
		panic("invalid k, must be between 1 and 255")
	}

	padBytes := k - (len(b) % k)

	padded := make([]byte, 0, len(b)+padBytes)
	padded = append(padded, b...)
	return append(padded, bytes.Repeat([]byte{byte(padBytes)}, padBytes)...)
}

// Unpad removes pkcs7 padding from a slice padded to multiples of k. It
// returns ErrBadPadding when the input is empty, not a multiple of k, or the
// trailing bytes are inconsistent.
func Unpad(b []byte, k int) ([]byte, error) {
	if len(b) == 0 || len(b)%k != 0 {
		return nil, ErrBadPadding
	}

	padBytes := int(b[len(b)-1])
	if padBytes == 0 || padBytes > k {
		return nil, ErrBadPadding
	}

	for _, c := range b[len(b)-padBytes:] {
		if c != byte(padBytes) {
			return nil, ErrBadPadding
		}
	}

	return b[:len(b)-padBytes], nil
}
