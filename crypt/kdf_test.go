package crypt

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	key := DeriveKey([]byte("hunter42"), ConfigSalt, BaseIterations)
	if len(key) != KeySize {
		t.Error("keysize was wrong:", len(key))
	}

	want, _ := hex.DecodeString("f098379d8f0b69b19971cca82206e3ed9a36ad9febd5ea1d70e524d9bfc8564e")
	if !bytes.Equal(want, key) {
		t.Errorf("key was not equal: %x", key)
	}

	again := DeriveKey([]byte("hunter42"), ConfigSalt, BaseIterations)
	if !bytes.Equal(key, again) {
		t.Error("derivation must be deterministic")
	}
}

func TestDeriveKeyEmptySecret(t *testing.T) {
	t.Parallel()

	// An empty secret is accepted, not rejected; it derives a valid key.
	key := DeriveKey(nil, ConfigSalt, BaseIterations)
	if len(key) != KeySize {
		t.Error("keysize was wrong:", len(key))
	}
	if bytes.Equal(key, make([]byte, KeySize)) {
		t.Error("key must not be all zeroes")
	}
}

func TestRootKeyServiceKey(t *testing.T) {
	t.Parallel()

	root := NewRootKey("mT9GKQaN44AGV1vd")

	key, err := root.ServiceKey("example.com", 1)
	if err != nil {
		t.Fatal(err)
	}

	want, _ := hex.DecodeString("1483176f77952e7dac896f704c50b5e8daa08a5daee3c4e6bfb9da61fae62c38")
	if !bytes.Equal(want, key) {
		t.Errorf("key was not equal: %x", key)
	}

	// The enclave must survive repeated derivations.
	again, err := root.ServiceKey("example.com", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(key, again) {
		t.Error("derivation must be deterministic")
	}
}

func TestServiceKeyCounterAvalanche(t *testing.T) {
	t.Parallel()

	root := NewRootKey("mT9GKQaN44AGV1vd")

	key1, err := root.ServiceKey("example.com", 1)
	if err != nil {
		t.Fatal(err)
	}
	key2, err := root.ServiceKey("example.com", 2)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(key1, key2) {
		t.Fatal("consecutive counters must not produce the same key")
	}

	// Consecutive counters should share nothing recognizable: expect the
	// keys to differ in most byte positions, not just a suffix.
	same := 0
	for i := range key1 {
		if key1[i] == key2[i] {
			same++
		}
	}
	if same > KeySize/4 {
		t.Errorf("keys for consecutive counters share %d of %d bytes", same, KeySize)
	}
}

func TestRootKeyEmptyMaster(t *testing.T) {
	t.Parallel()

	root := NewRootKey("")

	key, err := root.ConfigKey()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(key, DeriveKey(nil, ConfigSalt, BaseIterations)) {
		t.Error("empty master must derive like an empty byte string")
	}
}
