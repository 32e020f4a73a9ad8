// Package crypt derives keys from the master secret and encrypts/decrypts
// the service list blob.
//
// Every key in the system comes out of PBKDF2-SHA512 over the master secret:
// the config key (salt "config") that guards the service list, and one key
// per service (salt = service name) whose raw bytes feed password synthesis.
// The blob format is AES-256-CBC with a random 16 byte IV and no integrity
// tag; a wrong master secret shows up as a padding failure here or as a
// parse failure downstream, and both mean the same thing to the user.
package crypt

import (
	"crypto/sha512"

	"github.com/awnumar/memguard"
	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of every derived key in bytes (AES-256, and the
	// raw byte count handed to password synthesis).
	KeySize = 32

	// BaseIterations is the PBKDF2 iteration floor. The config key uses it
	// directly; service keys add the per-service counter on top of it so
	// that bumping a counter by one yields an unrelated key rather than a
	// sequential neighbor.
	BaseIterations = 1000

	// ConfigSalt is the fixed salt for the config key derivation. Whether
	// the resulting key can decrypt the config is also the only
	// wrong-secret check in the system, so this value is part of the wire
	// format and cannot change without orphaning existing blobs.
	ConfigSalt = "config"
)

// DeriveKey runs PBKDF2-SHA512 over secret with the UTF-8 bytes of saltText
// and returns a KeySize byte key. It is the pure primitive underneath
// RootKey; no validation is performed on secret, an empty one derives a
// valid (but guessable) key.
func DeriveKey(secret []byte, saltText string, iterations int) []byte {
	return pbkdf2.Key(secret, []byte(saltText), iterations, KeySize, sha512.New)
}

// RootKey holds the master secret for the life of a session. It can only
// derive further keys, never encrypt or decrypt on its own. The secret sits
// in a memguard enclave and is exposed only for the duration of a single
// derivation.
type RootKey struct {
	enclave *memguard.Enclave
}

// NewRootKey seals the UTF-8 bytes of the master secret.
func NewRootKey(masterText string) *RootKey {
	if len(masterText) == 0 {
		// memguard refuses zero-length buffers; an empty master secret is
		// still accepted and derives like an empty byte string.
		return &RootKey{}
	}

	return &RootKey{enclave: memguard.NewEnclave([]byte(masterText))}
}

// Derive produces a KeySize byte key from the sealed master secret.
func (r *RootKey) Derive(saltText string, iterations int) ([]byte, error) {
	if r.enclave == nil {
		return DeriveKey(nil, saltText, iterations), nil
	}

	buf, err := r.enclave.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open master secret enclave")
	}
	defer buf.Destroy()

	return DeriveKey(buf.Bytes(), saltText, iterations), nil
}

// ConfigKey derives the key that encrypts and decrypts the service list.
func (r *RootKey) ConfigKey() ([]byte, error) {
	return r.Derive(ConfigSalt, BaseIterations)
}

// ServiceKey derives the raw key bytes for a single service. counter is the
// service's iterations value (>= 1).
func (r *RootKey) ServiceKey(name string, counter int) ([]byte, error) {
	return r.Derive(name, BaseIterations+counter)
}
