package keyring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/illarion/seedvault/internal/storage"
)

func TestBackendGetSetDelete(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	b := New("")

	_, err := b.Get(ctx, storage.PreferenceKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, b.Set(ctx, storage.PreferenceKey, []byte("[]")))
	got, err := b.Get(ctx, storage.PreferenceKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, b.Delete(ctx, storage.PreferenceKey))
	require.NoError(t, b.Delete(ctx, storage.PreferenceKey), "deleting twice is not an error")
	_, err = b.Get(ctx, storage.PreferenceKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBackendServiceIsolation(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	require.NoError(t, New("one").Set(ctx, "k", []byte("v")))
	_, err := New("two").Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreOverKeyring(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	s := storage.NewStore(New(""))

	r := storage.NewRecord("My Ledger", "C")
	require.NoError(t, s.Save(ctx, r))
	require.NoError(t, s.Touch(ctx, r.ID))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "My Ledger", records[0].Name)
}

func TestStoreDropsEmptyDocument(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	b := New("")
	s := storage.NewStore(b)

	r := storage.NewRecord("My Ledger", "C")
	require.NoError(t, s.Save(ctx, r))
	require.NoError(t, s.Delete(ctx, r.ID))

	_, err := b.Get(ctx, storage.PreferenceKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBackendErrorPassthrough(t *testing.T) {
	keyring.MockInitWithError(assert.AnError)
	ctx := context.Background()

	_, err := New("").Get(ctx, "k")
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, New("").Set(ctx, "k", nil), assert.AnError)
	assert.ErrorIs(t, New("").Delete(ctx, "k"), assert.AnError)
}
