package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/illarion/seedvault/internal/logging"
)

var (
	ErrStorageCorrupt = errors.New("record storage is corrupt")
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateID    = errors.New("record id already exists")
	ErrInvalidRecord  = errors.New("invalid record")
)

// Store is the ordered collection of encrypted records. The whole
// collection is one JSON document under a single backend key; every
// mutation reads it, applies the change and writes it back. The mutex makes
// that cycle atomic within a process. Writers in other processes still
// race with last-write-wins.
type Store struct {
	backend Backend
	key     string
	strict  bool
	now     func() time.Time

	mu sync.Mutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStrict makes List and mutations report ErrStorageCorrupt instead of
// treating an unreadable document as an empty store.
func WithStrict(strict bool) StoreOption {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithKey overrides PreferenceKey.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// WithClock overrides time.Now for Touch.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a record store on top of backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		key:     PreferenceKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// load reads the full sequence. Callers must hold mu.
func (s *Store) load(ctx context.Context) ([]Record, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		if s.strict {
			return nil, err
		}
		logging.Warnf("ignoring unreadable record document: %v", err)
		return nil, nil
	}
	return records, nil
}

// store rewrites the full sequence. Callers must hold mu.
func (s *Store) store(ctx context.Context, records []Record) error {
	if d, ok := s.backend.(Deleter); ok && len(records) == 0 {
		if err := d.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}
		return nil
	}

	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// update runs fn over the current sequence and persists the result when fn
// reports a change.
func (s *Store) update(ctx context.Context, fn func([]Record) ([]Record, bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	records, changed, err := fn(records)
	if err != nil || !changed {
		return err
	}
	return s.store(ctx, records)
}

// List returns all records in insertion order.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Record{}, err
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i], nil
	}
	return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// Save appends r. Names are not deduplicated; IDs must be unique.
func (s *Store) Save(ctx context.Context, r Record) error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if r.LastAccessed.Before(r.CreatedAt.Time) {
		return fmt.Errorf("%w: last access precedes creation", ErrInvalidRecord)
	}

	return s.update(ctx, func(records []Record) ([]Record, bool, error) {
		if indexOf(records, r.ID) >= 0 {
			return nil, false, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		return append(records, r), true, nil
	})
}

// Delete removes the record with the given id. Missing ids are ignored.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, func(records []Record) ([]Record, bool, error) {
		i := indexOf(records, id)
		if i < 0 {
			return records, false, nil
		}
		return append(records[:i], records[i+1:]...), true, nil
	})
}

// Touch sets the record's last access time to now. The time never moves
// backwards, even if the clock does. Missing ids are ignored.
func (s *Store) Touch(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, func(records []Record) ([]Record, bool, error) {
		i := indexOf(records, id)
		if i < 0 {
			return records, false, nil
		}
		now := s.now().UTC()
		if now.After(records[i].LastAccessed.Time) {
			records[i].LastAccessed = Timestamp{now}
		}
		return records, true, nil
	})
}

// Replace swaps the ciphertext of an existing record, keeping its identity
// and timestamps.
func (s *Store) Replace(ctx context.Context, r Record) error {
	return s.update(ctx, func(records []Record) ([]Record, bool, error) {
		i := indexOf(records, r.ID)
		if i < 0 {
			return nil, false, fmt.Errorf("%w: %s", ErrRecordNotFound, r.ID)
		}
		records[i].Ciphertext = r.Ciphertext
		return records, true, nil
	})
}

func indexOf(records []Record, id uuid.UUID) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
