package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/passmint/passmint/codec"
	"github.com/passmint/passmint/pkcs7"
)

// ErrDecryption is returned whenever a blob cannot be decrypted. A wrong
// master secret, a truncated IV and corrupted ciphertext all look the same
// from here; callers treat them as one failure and re-prompt.
var ErrDecryption = errors.New("unable to decrypt config")

// ivSize is the CBC initialization vector size: 16 bytes, 32 hex characters
// at the front of every blob.
const ivSize = aes.BlockSize

// Encrypt encrypts plaintext under a KeySize byte key with AES-256-CBC and a
// fresh random IV, returning the blob text: a single line of lowercase hex,
// 32 characters of IV followed by the ciphertext.
//
// No integrity tag is attached. Corruption or a wrong key is detected on
// decrypt by the padding check, and failing that by the service list JSON
// refusing to parse.
func Encrypt(key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	iv := make([]byte, ivSize)
	if n, err := rand.Read(iv); n != ivSize || err != nil {
		return "", fmt.Errorf("failed to get randomness for iv: %w", err)
	}

	work := pkcs7.Pad(plaintext, aes.BlockSize)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(work, work)

	return codec.ToHex(iv) + codec.ToHex(work), nil
}

// Decrypt reverses Encrypt. blobText must already be normalized (trimmed, no
// embedded CR/LF, see codec.NormalizeBlobText). All failures surface as
// ErrDecryption; a blob shorter than the IV is reported as such rather than
// read out of bounds.
func Decrypt(key []byte, blobText string) ([]byte, error) {
	if len(blobText) < 2*ivSize {
		return nil, fmt.Errorf("%w: blob is %d hex chars, shorter than the %d char iv",
			ErrDecryption, len(blobText), 2*ivSize)
	}

	raw, err := codec.FromHex(blobText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	iv, ciphertext := raw[:ivSize], raw[ivSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a whole number of blocks", ErrDecryption)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}

	work := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(work, ciphertext)

	plaintext, err := pkcs7.Unpad(work, aes.BlockSize)
	if err != nil {
		// A wrong key is indistinguishable from corruption here.
		return nil, ErrDecryption
	}

	return plaintext, nil
}
