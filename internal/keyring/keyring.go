// Package keyring stores the record document in the OS keyring
// (macOS Keychain, Secret Service, Windows Credential Manager).
package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/illarion/seedvault/internal/storage"
)

const serviceName = "seedvault"

// Backend is a storage.Backend whose keys are keyring accounts under one
// service name. Platform keyrings cap secret size (a few KB on Windows and
// macOS), which bounds how many records fit.
type Backend struct {
	service string
}

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.Deleter = (*Backend)(nil)
)

// New creates a keyring backend. An empty service uses "seedvault".
func New(service string) *Backend {
	if service == "" {
		service = serviceName
	}
	return &Backend{service: service}
}

// Get retrieves a value from the OS keyring
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := keyring.Get(b.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
	return []byte(v), nil
}

// Set stores a value in the OS keyring
func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := keyring.Set(b.service, key, string(value)); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

// Delete removes a value from the OS keyring. A missing value is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := keyring.Delete(b.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}
