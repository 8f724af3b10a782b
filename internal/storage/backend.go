package storage

import (
	"context"
	"errors"
	"fmt"
)

// PreferenceKey is the fixed key the record document is stored under.
const PreferenceKey = "encrypted_mnemonics"

var (
	ErrNotFound       = errors.New("preference not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Backend is a key-value preference store. Each value is written as one
// atomic unit; there is no partial update.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Deleter is implemented by backends that can drop a key entirely. The
// store removes its key from such backends once the last record is gone.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Backend kinds understood by OpenBackend.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenBackend opens a file-backed or in-memory backend by kind. The keyring
// backend lives in its own package and is opened by the caller.
func OpenBackend(kind, path string) (Backend, error) {
	switch kind {
	case BackendBolt, "":
		return OpenBolt(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
