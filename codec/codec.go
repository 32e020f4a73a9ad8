// Package codec converts between hexadecimal blob text and raw bytes, and
// normalizes blob text received from files or other transports.
package codec

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// ToHex encodes b as lowercase hexadecimal text.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes hexadecimal text into raw bytes. Uppercase digits are
// accepted.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex input")
	}

	return b, nil
}

// NormalizeBlobText prepares encrypted config text for decoding: surrounding
// whitespace is trimmed, embedded CR/LF are stripped and the result is
// lowercased. Files written by hand or transferred between systems tend to
// pick up stray line endings.
func NormalizeBlobText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")

	return strings.ToLower(s)
}
