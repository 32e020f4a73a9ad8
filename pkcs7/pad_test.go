package pkcs7

import (
	"bytes"
	"testing"
)

func TestPKCS7Padding(t *testing.T) {
	t.Parallel()

	unpadded := []byte("hello")
	padded := Pad(unpadded, 8)
	expect := []byte{'h', 'e', 'l', 'l', 'o', 3, 3, 3}

	if !bytes.Equal(padded, expect) {
		t.Errorf("bytes were wrong: %v", padded)
	}

	u, err := Unpad(padded, 8)
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(u, unpadded) {
		t.Errorf("bytes were wrong: %v", u)
	}

	unpadded = []byte("fullblok")
	padded = Pad(unpadded, 8)
	expect = append([]byte("fullblok"), bytes.Repeat([]byte{8}, 8)...)

	if !bytes.Equal(padded, expect) {
		t.Errorf("bytes were wrong: %v", padded)
	}

	u, err = Unpad(padded, 8)
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(u, unpadded) {
		t.Errorf("bytes were wrong: %v", u)
	}
}

func TestPKCS7PadEmpty(t *testing.T) {
	t.Parallel()

	padded := Pad(nil, 16)
	if len(padded) != 16 {
		t.Error("empty input must pad to a full block:", len(padded))
	}

	u, err := Unpad(padded, 16)
	if err != nil {
		t.Error(err)
	}
	if len(u) != 0 {
		t.Errorf("bytes were wrong: %v", u)
	}
}

func TestPKCS7UnpadErrors(t *testing.T) {
	t.Parallel()

	tests := [][]byte{
		nil,
		{1, 2, 3},                // not a multiple of k
		{1, 2, 3, 4, 5, 6, 7, 0}, // zero pad byte
		{1, 2, 3, 4, 5, 6, 7, 9}, // pad byte larger than k
		{1, 2, 3, 4, 5, 3, 2, 3}, // inconsistent padding run
	}

	for _, in := range tests {
		if _, err := Unpad(in, 8); err != ErrBadPadding {
			t.Errorf("expected ErrBadPadding for %v, got %v", in, err)
		}
	}
}
