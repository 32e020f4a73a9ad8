package crypt

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	key := DeriveKey([]byte("hunter42"), ConfigSalt, BaseIterations)

	payloads := [][]byte{
		nil,
		[]byte("[]"),
		[]byte(`[{"name":"example.com","iterations":1}]`),
		bytes.Repeat([]byte(`[{"name":"example.com","iterations":1}]`), 128),
	}

	for _, pt := range payloads {
		blob, err := Encrypt(key, pt)
		if err != nil {
			t.Fatal(err)
		}

		if len(blob)%2 != 0 || len(blob) < 2*ivSize {
			t.Errorf("blob has bad length: %d", len(blob))
		}
		if strings.ToLower(blob) != blob {
			t.Error("blob must be lowercase hex")
		}
		if strings.Contains(blob, string(pt)) && len(pt) > 0 {
			t.Error("the plain text is visible")
		}

		got, err := Decrypt(key, blob)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(pt, got) {
			t.Errorf("want: %s, got: %s", pt, got)
		}
	}
}

func TestEncryptFreshIV(t *testing.T) {
	t.Parallel()

	key := DeriveKey([]byte("hunter42"), ConfigSalt, BaseIterations)
	pt := []byte(`[{"name":"example.com","iterations":1}]`)

	blob1, err := Encrypt(key, pt)
	if err != nil {
		t.Fatal(err)
	}
	blob2, err := Encrypt(key, pt)
	if err != nil {
		t.Fatal(err)
	}

	if blob1[:2*ivSize] == blob2[:2*ivSize] {
		t.Error("iv must be fresh on every encrypt")
	}
	if blob1 == blob2 {
		t.Error("same plaintext must not encrypt to the same blob twice")
	}
}

func TestDecryptFixture(t *testing.T) {
	t.Parallel()

	// Captured once from a known-good encrypt under the "hunter42" config
	// key; pins the wire format (hex iv || hex ciphertext).
	const blob = "8f3a1c2b9d4e5f60718293a4b5c6d7e8" +
		"5e488247d5b840a6b04bbe25613d7ac6ba9298cdd874e0ecb7006aaf78fbba87" +
		"cba50f7e447f28d43845a94dfa1494d97fabc27fe4ce4fd59b1cd2e9a9675c4b" +
		"bc61ee02ea6311e85eeb066de7d44ce88f93e6dd3e6c8a3a595296ef069efe14"

	key := DeriveKey([]byte("hunter42"), ConfigSalt, BaseIterations)

	pt, err := Decrypt(key, blob)
	if err != nil {
		t.Fatal(err)
	}

	want := `[{"name":"example.com","iterations":1,"pattern":"c16"},{"name":"github.com","iterations":3}]`
	if string(pt) != want {
		t.Errorf("plaintext was wrong: %s", pt)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	t.Parallel()

	pt := []byte(`[{"name":"example.com","iterations":1}]`)

	// A wrong key must never silently hand back a structurally valid
	// service list: either the padding check trips, or the plaintext is
	// garbage that fails JSON parsing.
	for i := 0; i < 50; i++ {
		keyA := make([]byte, KeySize)
		keyB := make([]byte, KeySize)
		if _, err := rand.Read(keyA); err != nil {
			t.Fatal(err)
		}
		if _, err := rand.Read(keyB); err != nil {
			t.Fatal(err)
		}

		blob, err := Encrypt(keyA, pt)
		if err != nil {
			t.Fatal(err)
		}

		got, err := Decrypt(keyB, blob)
		if err != nil {
			if !errors.Is(err, ErrDecryption) {
				t.Errorf("expected ErrDecryption, got: %v", err)
			}
			continue
		}

		var list []map[string]any
		if json.Unmarshal(got, &list) == nil {
			t.Fatalf("wrong key produced a parseable service list: %s", got)
		}
	}
}

func TestDecryptMalformedBlob(t *testing.T) {
	t.Parallel()

	key := DeriveKey([]byte("hunter42"), ConfigSalt, BaseIterations)

	tests := []struct {
		Name string
		Blob string
	}{
		{"short", "abcdef1234"}, // 10 chars, shorter than the 32 char iv
		{"empty", ""},
		{"iv only", strings.Repeat("ab", ivSize)},
		{"non-hex", strings.Repeat("zz", ivSize+8)},
		{"partial block", strings.Repeat("ab", ivSize) + "abcdef"},
	}

	for _, test := range tests {
		_, err := Decrypt(key, test.Blob)
		if !errors.Is(err, ErrDecryption) {
			t.Errorf("%s: expected ErrDecryption, got: %v", test.Name, err)
		}
	}

	// The short-blob failure must name the length problem.
	_, err := Decrypt(key, "abcdef1234")
	if err == nil || !strings.Contains(err.Error(), "shorter than") {
		t.Errorf("short blob error should mention length: %v", err)
	}
}
