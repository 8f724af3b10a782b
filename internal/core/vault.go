package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/illarion/seedvault/internal/crypto"
	"github.com/illarion/seedvault/internal/logging"
	"github.com/illarion/seedvault/internal/storage"
)

// Vault combines the cipher engine and the record store. It keeps the most
// recent encryption result until it is saved, plus a snapshot of the stored
// records. It never holds passphrases or keys between calls.
type Vault struct {
	engine *crypto.Engine
	store  *storage.Store

	mu      sync.Mutex
	pending string
	records []storage.Record
}

// New creates a Vault and loads the current records.
func New(ctx context.Context, engine *crypto.Engine, store *storage.Store) (*Vault, error) {
	v := &Vault{
		engine: engine,
		store:  store,
	}
	if err := v.Refresh(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Close closes the underlying store
func (v *Vault) Close() error {
	return v.store.Close()
}

// Encrypt encrypts a mnemonic and keeps the blob pending until saved.
func (v *Vault) Encrypt(mnemonic, passphrase string) (string, error) {
	blob, err := v.engine.Encrypt(mnemonic, passphrase)
	if err != nil {
		return "", wrap("encrypt", err)
	}

	v.mu.Lock()
	v.pending = blob
	v.mu.Unlock()
	return blob, nil
}

// Pending returns the last encryption result not yet saved, or "".
func (v *Vault) Pending() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending
}

// Decrypt decrypts an arbitrary blob.
func (v *Vault) Decrypt(blob, passphrase string) (string, error) {
	plaintext, err := v.engine.Decrypt(blob, passphrase)
	if err != nil {
		return "", wrap("decrypt", err)
	}
	return plaintext, nil
}

// DecryptRecord decrypts a stored record and marks it accessed. A failed
// access-time update is logged; the plaintext is still returned.
func (v *Vault) DecryptRecord(ctx context.Context, id uuid.UUID, passphrase string) (string, error) {
	record, err := v.store.Get(ctx, id)
	if err != nil {
		return "", wrap("decrypt record", err)
	}

	plaintext, err := v.engine.Decrypt(record.Ciphertext, passphrase)
	if err != nil {
		return "", wrap("decrypt record", err)
	}

	if err := v.store.Touch(ctx, id); err != nil {
		logging.Warnf("failed to update last access of %s: %v", id, err)
		return plaintext, nil
	}
	if err := v.Refresh(ctx); err != nil {
		logging.Warnf("failed to refresh records: %v", err)
	}
	return plaintext, nil
}

// Save stores ciphertext as a new named record. Once the record is
// persisted Save succeeds; a failed snapshot reload is only logged.
func (v *Vault) Save(ctx context.Context, name, ciphertext string) (storage.Record, error) {
	if strings.TrimSpace(name) == "" {
		return storage.Record{}, wrap("save", fmt.Errorf("%w: name is empty", ErrInvalidInput))
	}
	if err := crypto.CheckBlob(ciphertext); err != nil {
		return storage.Record{}, wrap("save", err)
	}

	record := storage.NewRecord(name, ciphertext)
	if err := v.store.Save(ctx, record); err != nil {
		return storage.Record{}, wrap("save", err)
	}
	logging.Infof("saved record %s", record.ID)

	if err := v.Refresh(ctx); err != nil {
		logging.Errorf("saved record %s but failed to reload records: %v", record.ID, err)
	}
	return record, nil
}

// SavePending saves the pending blob under name and clears it.
func (v *Vault) SavePending(ctx context.Context, name string) (storage.Record, error) {
	blob := v.Pending()
	if blob == "" {
		return storage.Record{}, wrap("save", ErrNothingPending)
	}

	record, err := v.Save(ctx, name, blob)
	if err != nil {
		return record, err
	}

	v.mu.Lock()
	if v.pending == blob {
		v.pending = ""
	}
	v.mu.Unlock()
	return record, nil
}

// Delete removes a record. Unknown ids are ignored.
func (v *Vault) Delete(ctx context.Context, id uuid.UUID) error {
	if err := v.store.Delete(ctx, id); err != nil {
		return wrap("delete", err)
	}
	logging.Infof("deleted record %s", id)
	return v.Refresh(ctx)
}

// Touch marks a record accessed now. Unknown ids are ignored.
func (v *Vault) Touch(ctx context.Context, id uuid.UUID) error {
	if err := v.store.Touch(ctx, id); err != nil {
		return wrap("touch", err)
	}
	return v.Refresh(ctx)
}

// Rekey re-encrypts a stored record under a new passphrase.
func (v *Vault) Rekey(ctx context.Context, id uuid.UUID, oldPassphrase, newPassphrase string) error {
	record, err := v.store.Get(ctx, id)
	if err != nil {
		return wrap("rekey", err)
	}

	plaintext, err := v.engine.Decrypt(record.Ciphertext, oldPassphrase)
	if err != nil {
		return wrap("rekey", err)
	}
	blob, err := v.engine.Encrypt(plaintext, newPassphrase)
	if err != nil {
		return wrap("rekey", err)
	}

	record.Ciphertext = blob
	if err := v.store.Replace(ctx, record); err != nil {
		return wrap("rekey", err)
	}
	logging.Infof("rekeyed record %s", id)
	return v.Refresh(ctx)
}

// Refresh reloads the record snapshot from the store.
func (v *Vault) Refresh(ctx context.Context) error {
	records, err := v.store.List(ctx)
	if err != nil {
		return wrap("list", err)
	}

	v.mu.Lock()
	v.records = records
	v.mu.Unlock()
	return nil
}

// Records returns a copy of the last loaded records in insertion order.
func (v *Vault) Records() []storage.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]storage.Record(nil), v.records...)
}

// Find returns records whose ID starts with prefix or whose name equals it.
func (v *Vault) Find(prefix string) []storage.Record {
	var matches []storage.Record
	for _, r := range v.Records() {
		if strings.HasPrefix(r.ID.String(), strings.ToLower(prefix)) || r.Name == prefix {
			matches = append(matches, r)
		}
	}
	return matches
}
