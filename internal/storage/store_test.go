package storage

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/seedvault/internal/logging"
)

func TestStoreEmpty(t *testing.T) {
	s := NewStore(NewMemory())

	records, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(b)
			r := NewRecord("My Ledger", "C")

			require.NoError(t, s.Save(ctx, r))
			records, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, r.ID, records[0].ID)
			assert.Equal(t, "My Ledger", records[0].Name)
			assert.Equal(t, "C", records[0].Ciphertext)

			got, err := s.Get(ctx, r.ID)
			require.NoError(t, err)
			assert.Equal(t, r.ID, got.ID)

			require.NoError(t, s.Delete(ctx, r.ID))
			records, err = s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, records)

			_, err = s.Get(ctx, r.ID)
			assert.ErrorIs(t, err, ErrRecordNotFound)
		})
	}
}

func TestStorePreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory())

	var ids []uuid.UUID
	for _, name := range []string{"zeta", "alpha", "mid", "alpha"} {
		r := NewRecord(name, "c-"+name)
		ids = append(ids, r.ID)
		require.NoError(t, s.Save(ctx, r))
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4, "names are not deduplicated")
	for i, r := range records {
		assert.Equal(t, ids[i], r.ID)
	}

	require.NoError(t, s.Delete(ctx, ids[1]))
	records, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []uuid.UUID{ids[0], ids[2], ids[3]},
		[]uuid.UUID{records[0].ID, records[1].ID, records[2].ID})
}

func TestStoreSaveRejectsDuplicateAndInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory())
	r := NewRecord("a", "c")

	require.NoError(t, s.Save(ctx, r))
	assert.ErrorIs(t, s.Save(ctx, r), ErrDuplicateID)

	assert.ErrorIs(t, s.Save(ctx, Record{Name: "no id"}), ErrInvalidRecord)

	bad := NewRecord("b", "c")
	bad.LastAccessed = Timestamp{bad.CreatedAt.Add(-time.Hour)}
	assert.ErrorIs(t, s.Save(ctx, bad), ErrInvalidRecord)
}

func TestStoreDeleteAndTouchMissingAreNoops(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	s := NewStore(b)

	require.NoError(t, s.Delete(ctx, uuid.New()))
	require.NoError(t, s.Touch(ctx, uuid.New()))

	_, err := b.Get(ctx, PreferenceKey)
	assert.ErrorIs(t, err, ErrNotFound, "no-op mutations must not write")
}

func TestStoreTouch(t *testing.T) {
	ctx := context.Background()
	clock := time.Now().UTC()
	s := NewStore(NewMemory(), WithClock(func() time.Time { return clock }))

	r := NewRecord("a", "c")
	require.NoError(t, s.Save(ctx, r))

	clock = clock.Add(time.Minute)
	require.NoError(t, s.Touch(ctx, r.ID))
	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.LastAccessed.Equal(clock))
	assert.True(t, got.CreatedAt.Equal(r.CreatedAt.Time), "createdAt is immutable")

	// clock going backwards must not move lastAccessed backwards
	clock = clock.Add(-time.Hour)
	require.NoError(t, s.Touch(ctx, r.ID))
	again, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, again.LastAccessed.Equal(got.LastAccessed.Time))
	assert.False(t, again.LastAccessed.Before(again.CreatedAt.Time))
}

func TestStoreReplace(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory())
	r := NewRecord("a", "old")
	require.NoError(t, s.Save(ctx, r))

	require.NoError(t, s.Replace(ctx, Record{ID: r.ID, Name: "ignored", Ciphertext: "new"}))
	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Ciphertext)
	assert.Equal(t, "a", got.Name)

	assert.ErrorIs(t, s.Replace(ctx, Record{ID: uuid.New()}), ErrRecordNotFound)
}

func TestStoreCorruptionSwallowed(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	prev := logging.L
	logging.L = clog.New(&buf)
	defer func() { logging.L = prev }()

	b := NewMemory()
	require.NoError(t, b.Set(ctx, PreferenceKey, []byte("{garbage")))
	s := NewStore(b)

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Contains(t, buf.String(), "unreadable record document")

	// a save over a corrupt document starts a fresh sequence
	r := NewRecord("fresh", "c")
	require.NoError(t, s.Save(ctx, r))
	records, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, r.ID, records[0].ID)
}

func TestStoreCorruptionStrict(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	require.NoError(t, b.Set(ctx, PreferenceKey, []byte("{garbage")))
	s := NewStore(b, WithStrict(true))

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, ErrStorageCorrupt)

	assert.ErrorIs(t, s.Save(ctx, NewRecord("x", "c")), ErrStorageCorrupt)

	data, err := b.Get(ctx, PreferenceKey)
	require.NoError(t, err)
	assert.Equal(t, "{garbage", string(data), "strict store must not overwrite")
}

func TestStoreCustomKey(t *testing.T) {
	ctx := context.Background()
	b := NewMemory()
	s := NewStore(b, WithKey("other"))
	require.NoError(t, s.Save(ctx, NewRecord("a", "c")))

	_, err := b.Get(ctx, PreferenceKey)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.Get(ctx, "other")
	assert.NoError(t, err)
}

func TestStoreConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemory())

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Save(ctx, NewRecord(fmt.Sprintf("r%d", i), "c"))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, n)
}

func TestStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore(NewMemory())

	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, NewRecord("a", "c")), context.Canceled)
}
