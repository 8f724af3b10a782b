package crypto

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Scheme selects how Engine.Encrypt frames new blobs.
type Scheme string

const (
	// SchemeLegacy: SHA-256 key with the global salt, zero nonce,
	// base64(nonce || ciphertext || tag).
	SchemeLegacy Scheme = "legacy"
	// SchemeHardened: PBKDF2 key with a per-blob salt, random nonce,
	// "v2$" + base64(iterations || salt || nonce || ciphertext || tag).
	SchemeHardened Scheme = "hardened"

	hardenedPrefix = "v2$"
	itersSize      = 4
)

var ErrUnknownScheme = errors.New("unknown cipher scheme")

var encoding = base64.StdEncoding.Strict()

// Engine encrypts and decrypts text under a passphrase. It keeps no key
// material between calls.
type Engine struct {
	scheme     Scheme
	iterations int
}

// Option configures an Engine.
type Option func(*Engine)

// WithIterations sets the PBKDF2 iteration count for hardened blobs.
// Counts above MaxIters make NewEngine fail.
func WithIterations(n int) Option {
	return func(e *Engine) {
		e.iterations = n
	}
}

// NewEngine creates an engine that writes blobs in the given scheme.
// An empty scheme means SchemeLegacy.
func NewEngine(scheme Scheme, opts ...Option) (*Engine, error) {
	switch scheme {
	case "":
		scheme = SchemeLegacy
	case SchemeLegacy, SchemeHardened:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}

	e := &Engine{scheme: scheme, iterations: DefaultIters}
	for _, opt := range opts {
		opt(e)
	}
	if e.iterations <= 0 {
		e.iterations = DefaultIters
	}
	if e.iterations > MaxIters {
		return nil, fmt.Errorf("%w: %d iterations exceeds the maximum of %d", ErrInvalidInput, e.iterations, MaxIters)
	}
	return e, nil
}

// Scheme returns the scheme used for new blobs.
func (e *Engine) Scheme() Scheme {
	return e.scheme
}

// Encrypt encrypts plaintext under passphrase and returns the textual blob.
func (e *Engine) Encrypt(plaintext, passphrase string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrInvalidInput)
	}

	if e.scheme == SchemeHardened {
		return e.encryptHardened(plaintext, passphrase)
	}

	key, err := DeriveLegacyKey(passphrase)
	if err != nil {
		return "", err
	}
	enc := NewFixedNonceEncryptor(key)
	defer enc.Destroy()

	sealed, err := enc.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return encoding.EncodeToString(sealed), nil
}

func (e *Engine) encryptHardened(plaintext, passphrase string) (string, error) {
	if !utf8.ValidString(passphrase) {
		return "", fmt.Errorf("%w: passphrase is not valid UTF-8", ErrInvalidInput)
	}

	kdf, err := NewKDF(e.iterations)
	if errors.Is(err, ErrInvalidInput) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailure, err)
	}
	key := kdf.DeriveKey([]byte(passphrase))
	enc := NewEncryptor(key)
	defer enc.Destroy()

	sealed, err := enc.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}

	out := make([]byte, itersSize+SaltSize, itersSize+SaltSize+len(sealed))
	binary.BigEndian.PutUint32(out, uint32(kdf.Iterations))
	copy(out[itersSize:], kdf.Salt)
	out = append(out, sealed...)
	return hardenedPrefix + encoding.EncodeToString(out), nil
}

// Decrypt authenticates and decrypts a blob produced by Encrypt in either
// scheme. Wrong passphrases, tampering and truncation are indistinguishable.
func (e *Engine) Decrypt(blob, passphrase string) (string, error) {
	var plaintext []byte
	if rest, ok := strings.CutPrefix(blob, hardenedPrefix); ok {
		data, err := encoding.DecodeString(rest)
		if err != nil {
			return "", fmt.Errorf("%w: ciphertext is not valid base64", ErrInvalidInput)
		}
		plaintext, err = decryptHardened(data, passphrase)
		if err != nil {
			return "", err
		}
	} else {
		data, err := encoding.DecodeString(blob)
		if err != nil {
			return "", fmt.Errorf("%w: ciphertext is not valid base64", ErrInvalidInput)
		}
		key, err := DeriveLegacyKey(passphrase)
		if err != nil {
			return "", err
		}
		enc := NewEncryptor(key)
		defer enc.Destroy()
		if plaintext, err = enc.Decrypt(data); err != nil {
			return "", err
		}
	}
	defer ClearBytes(plaintext)

	if !utf8.Valid(plaintext) {
		return "", ErrDecryptionFailure
	}
	return string(plaintext), nil
}

// CheckBlob reports whether blob is framed like Encrypt output: valid
// base64 long enough to hold a nonce and tag. It cannot tell whether the
// blob authenticates.
func CheckBlob(blob string) error {
	minLen := NonceSize + TagSize
	body := blob
	if rest, ok := strings.CutPrefix(blob, hardenedPrefix); ok {
		body = rest
		minLen += itersSize + SaltSize
	}
	data, err := encoding.DecodeString(body)
	if err != nil {
		return fmt.Errorf("%w: ciphertext is not valid base64", ErrInvalidInput)
	}
	if len(data) < minLen {
		return fmt.Errorf("%w: ciphertext is too short", ErrInvalidInput)
	}
	return nil
}

func decryptHardened(data []byte, passphrase string) ([]byte, error) {
	if !utf8.ValidString(passphrase) {
		return nil, fmt.Errorf("%w: passphrase is not valid UTF-8", ErrInvalidInput)
	}
	if len(data) < itersSize+SaltSize {
		return nil, ErrDecryptionFailure
	}

	iterations := binary.BigEndian.Uint32(data[:itersSize])
	if iterations == 0 || iterations > MaxIters {
		return nil, ErrDecryptionFailure
	}
	kdf := &KDF{
		Salt:       data[itersSize : itersSize+SaltSize],
		Iterations: int(iterations),
	}
	enc := NewEncryptor(kdf.DeriveKey([]byte(passphrase)))
	defer enc.Destroy()

	return enc.Decrypt(data[itersSize+SaltSize:])
}
