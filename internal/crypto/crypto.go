package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 32                // Salt size in bytes
	KeySize      = 32                // AES-256 key size
	NonceSize    = 12                // GCM nonce size
	TagSize      = 16                // GCM authentication tag size
	DefaultIters = 210000            // Default PBKDF2 iterations (OWASP minimum)
	MaxIters     = 10 * DefaultIters // Upper bound accepted when writing and reading blobs

	// LegacySalt is appended to every passphrase by the legacy key derivation.
	// It is shared by all records, so it offers no protection against
	// precomputed tables.
	LegacySalt = "THE_VAULT_SALT"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEncryptionFailure = errors.New("encryption failed")
	ErrDecryptionFailure = errors.New("decryption failed")
)

// DeriveLegacyKey derives the legacy AES-256 key: SHA-256(passphrase || LegacySalt).
func DeriveLegacyKey(passphrase string) ([]byte, error) {
	if !utf8.ValidString(passphrase) {
		return nil, fmt.Errorf("%w: passphrase is not valid UTF-8", ErrInvalidInput)
	}

	h := sha256.New()
	h.Write([]byte(passphrase))
	h.Write([]byte(LegacySalt))
	return h.Sum(nil), nil
}

// KDF handles key derivation from passwords
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a new KDF with a random salt
func NewKDF(iterations int) (*KDF, error) {
	if iterations > MaxIters {
		return nil, fmt.Errorf("%w: %d iterations exceeds the maximum of %d", ErrInvalidInput, iterations, MaxIters)
	}
	if iterations <= 0 {
		iterations = DefaultIters
	}
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &KDF{
		Salt:       salt,
		Iterations: iterations,
	}, nil
}

// DeriveKey derives an encryption key from a password
func (k *KDF) DeriveKey(password []byte) []byte {
	return pbkdf2.Key(password, k.Salt, k.Iterations, KeySize, sha256.New)
}

// Encryptor provides authenticated encryption
type Encryptor struct {
	key        []byte
	fixedNonce bool
}

// NewEncryptor creates an encryptor that draws a random nonce per message.
func NewEncryptor(key []byte) *Encryptor {
	return &Encryptor{
		key: key,
	}
}

// NewFixedNonceEncryptor creates an encryptor that always uses an all-zero
// nonce. Output is deterministic for a given key and plaintext; reusing a
// GCM nonce under one key leaks the XOR of plaintexts and the auth key.
func NewFixedNonceEncryptor(key []byte) *Encryptor {
	return &Encryptor{
		key:        key,
		fixedNonce: true,
	}
}

func (e *Encryptor) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt encrypts plaintext using AES-256-GCM and returns nonce || ciphertext || tag.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := e.gcm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
	}

	nonce := make([]byte, NonceSize)
	if !e.fixedNonce {
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("%w: failed to generate nonce: %v", ErrEncryptionFailure, err)
		}
	}

	// Seal appends ciphertext and tag after the nonce
	result := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	copy(result, nonce)
	return gcm.Seal(result, nonce, plaintext, nil), nil
}

// Decrypt verifies and decrypts nonce || ciphertext || tag.
// Truncated input and tag mismatches both report ErrDecryptionFailure.
func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize+TagSize {
		return nil, ErrDecryptionFailure
	}

	gcm, err := e.gcm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailure, err)
	}

	nonce := ciphertext[:NonceSize]
	plaintext, err := gcm.Open(nil, nonce, ciphertext[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailure
	}

	return plaintext, nil
}

// Destroy clears the encryptor's key from memory
func (e *Encryptor) Destroy() {
	ClearBytes(e.key)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
