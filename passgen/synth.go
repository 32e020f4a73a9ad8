package passgen

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPattern is returned for a pattern key that names no
	// declared family. Unknown keys are tolerated in stored service lists
	// and only rejected here, at synthesis time.
	ErrUnknownPattern = errors.New("unknown pattern key")

	// ErrKeyTooShort means the caller supplied fewer key bytes than the
	// selected template needs. Derived keys are always 32 bytes and
	// templates at most 16 characters, so hitting this is a programmer
	// error, not bad user input.
	ErrKeyTooShort = errors.New("key bytes shorter than template requires")
)

func errUnknown(key string) error {
	return fmt.Errorf("%w: %q", ErrUnknownPattern, key)
}

func errUnknownClass(class byte) error {
	return fmt.Errorf("template class %q has no alphabet", class)
}

// Synthesize maps raw key bytes onto a password for the given pattern key.
// An empty patternKey resolves to DefaultPattern.
//
// Byte 0 selects the template within the family, byte i+1 selects the
// character for template position i, always by modulo into the class
// alphabet. The output length equals the template length exactly.
func Synthesize(keyBytes []byte, patternKey string) (string, error) {
	if patternKey == "" {
		patternKey = DefaultPattern()
	}

	set, ok := patterns[patternKey]
	if !ok {
		return "", errUnknown(patternKey)
	}

	if len(keyBytes) == 0 {
		return "", fmt.Errorf("%w: no bytes at all", ErrKeyTooShort)
	}

	template := set[int(keyBytes[0])%len(set)]
	if len(keyBytes) < len(template)+1 {
		return "", fmt.Errorf("%w: have %d, need %d",
			ErrKeyTooShort, len(keyBytes), len(template)+1)
	}

	out := make([]byte, len(template))
	for i := 0; i < len(template); i++ {
		alphabet, ok := classes[template[i]]
		if !ok {
			return "", errUnknownClass(template[i])
		}
		out[i] = alphabet[int(keyBytes[i+1])%len(alphabet)]
	}

	return string(out), nil
}
