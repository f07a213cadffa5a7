// Package crypto implements the contact-detail cipher used to keep reporter
// identities confidential at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
)

const (
	keyLength     = 32
	ivLength      = 12
	authTagLength = 16
)

// ContactCipher encrypts and decrypts reporter contact details with
// AES-256-GCM. The wire format is base64(iv || authTag || ciphertext) with a
// 12-byte IV and 16-byte tag, so records written by earlier deployments stay
// readable.
type ContactCipher struct {
	aead cipher.AEAD
}

// NewContactCipher builds a cipher from a base64-encoded 32-byte key
// (generate one with `openssl rand -base64 32`).
func NewContactCipher(base64Key string) (*ContactCipher, error) {
	if base64Key == "" {
		return nil, pkgerrors.New(pkgerrors.ErrCodeEncryptionKeyInvalid, "encryption key is not configured")
	}
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeEncryptionKeyInvalid, "encryption key is not valid base64")
	}
	if len(key) != keyLength {
		return nil, pkgerrors.New(pkgerrors.ErrCodeEncryptionKeyInvalid,
			fmt.Sprintf("encryption key must be %d bytes when decoded, got %d", keyLength, len(key)))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeEncryptionKeyInvalid, "failed to initialize cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeEncryptionKeyInvalid, "failed to initialize GCM")
	}
	return &ContactCipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns base64(iv || authTag || ciphertext).
func (c *ContactCipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeEncryptFailed, "failed to generate IV")
	}

	// Seal returns ciphertext||tag; the wire format wants iv||tag||ciphertext.
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	ct := sealed[:len(sealed)-authTagLength]
	tag := sealed[len(sealed)-authTagLength:]

	out := make([]byte, 0, ivLength+authTagLength+len(ct))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ct...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Tampered or truncated input fails with
// ErrCodeDecryptFailed; it is never partially decrypted.
func (c *ContactCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeDecryptFailed, "ciphertext is not valid base64")
	}
	if len(raw) < ivLength+authTagLength {
		return "", pkgerrors.New(pkgerrors.ErrCodeDecryptFailed, "ciphertext too short")
	}

	iv := raw[:ivLength]
	tag := raw[ivLength : ivLength+authTagLength]
	ct := raw[ivLength+authTagLength:]

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.ErrCodeDecryptFailed, "authentication failed")
	}
	return string(plain), nil
}

// GenerateKey returns a fresh base64-encoded 32-byte key, used by the CLI
// keygen command.
func GenerateKey() (string, error) {
	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("crypto: generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

//Personal.AI order the ending
