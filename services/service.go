// Package services holds the in-memory service list and its JSON wire
// schema.
//
// The plaintext inside the encrypted config blob is a JSON array of
// service objects: {"name": ..., "iterations"?: ..., "pattern"?: ...}.
// Optional fields are resolved once at the load/add boundary: a missing or
// non-positive iterations becomes 1 (and is always written back), a missing
// pattern stays empty and is resolved to the default at synthesis time.
// Unknown pattern keys round-trip through the schema untouched.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedConfig means a decrypted payload was not a valid service
	// list. For the user this is the same failure as a decryption error:
	// wrong master secret or a bad file.
	ErrMalformedConfig = errors.New("config payload is not a valid service list")

	// ErrDuplicate is returned when adding a name that already exists.
	ErrDuplicate = errors.New("service already exists")

	// ErrInvalidName rejects names that don't look minimally domain-like.
	ErrInvalidName = errors.New("service name must be domain-like (word.word)")

	// ErrNotFound is returned when a named service isn't in the registry.
	ErrNotFound = errors.New("service not found")
)

// Service is one password derivation target.
type Service struct {
	// Name is the exact PBKDF2 salt for this service's key, so renaming a
	// service changes its password. Conventionally a dot-separated domain.
	Name string `json:"name"`

	// Iterations is added to the derivation iteration floor. Bumping it
	// rotates the password without touching the master secret.
	Iterations int `json:"iterations"`

	// Pattern names the template family. Empty means the default; values
	// this build doesn't know are kept as-is so configs written by newer
	// builds survive a round trip.
	Pattern string `json:"pattern,omitempty"`
}

// normalize resolves optional fields at the load/add boundary.
func normalize(s Service) Service {
	s.Name = strings.TrimSpace(s.Name)
	if s.Iterations < 1 {
		s.Iterations = 1
	}
	return s
}

// ValidName reports whether name is minimally domain-like: at least one dot
// with a word character on each side.
func ValidName(name string) bool {
	for i := 1; i < len(name)-1; i++ {
		if name[i] == '.' && isWordChar(name[i-1]) && isWordChar(name[i+1]) {
			return true
		}
	}
	return false
}

func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}

// Parse decodes a decrypted config payload into normalized service records.
// Anything that doesn't decode as a service array, or that contains a
// record without a name, is ErrMalformedConfig. Records repeating an
// earlier name are dropped, first occurrence wins.
func Parse(payload []byte) ([]Service, error) {
	var list []Service
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}

	seen := make(map[string]bool, len(list))
	out := make([]Service, 0, len(list))
	for _, s := range list {
		s = normalize(s)
		if s.Name == "" {
			return nil, fmt.Errorf("%w: record without a name", ErrMalformedConfig)
		}
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}

	return out, nil
}
