package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	r := NewRecord("My Ledger", "blob")

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, "My Ledger", r.Name)
	assert.Equal(t, "blob", r.Ciphertext)
	assert.Equal(t, r.CreatedAt, r.LastAccessed)
	assert.NotEqual(t, r.ID, NewRecord("My Ledger", "blob").ID)
}

func TestRecordJSONFieldNames(t *testing.T) {
	r := NewRecord("n", "c")
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, r.ID.String(), fields["id"])
	assert.Equal(t, "n", fields["name"])
	assert.Equal(t, "c", fields["encryptedData"])
	assert.IsType(t, "", fields["createdAt"])
	assert.IsType(t, "", fields["lastAccessed"])
}

func TestTimestampRFC3339(t *testing.T) {
	want := time.Date(2024, 3, 9, 12, 30, 15, 123456789, time.UTC)

	data, err := json.Marshal(Timestamp{want})
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09T12:30:15.123456789Z"`, string(data))

	var got Timestamp
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, want.Equal(got.Time))
}

func TestTimestampReferenceSeconds(t *testing.T) {
	var got Timestamp
	require.NoError(t, json.Unmarshal([]byte(`0`), &got))
	assert.True(t, got.Equal(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)))

	require.NoError(t, json.Unmarshal([]byte(`86400.5`), &got))
	assert.True(t, got.Equal(time.Date(2001, 1, 2, 0, 0, 0, int(500*time.Millisecond), time.UTC)))
}

func TestTimestampInvalid(t *testing.T) {
	var got Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`true`), &got))
}

func TestTimestampOutOfRange(t *testing.T) {
	var got Timestamp
	for _, raw := range []string{`1e12`, `-1e12`, `9223372037`} {
		err := json.Unmarshal([]byte(raw), &got)
		assert.ErrorIs(t, err, ErrStorageCorrupt, raw)
	}

	require.NoError(t, json.Unmarshal([]byte(`9223372036`), &got))
	assert.True(t, got.After(referenceEpoch))
}

func TestDecodeRecords(t *testing.T) {
	records, err := decodeRecords(nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = decodeRecords([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, records)

	doc := `[{"id":"2f1c7a8e-6a4b-4a55-9d1e-0c3b8f6c1a01","name":"Old","encryptedData":"AAAA",` +
		`"createdAt":700000000,"lastAccessed":700000100.25}]`
	records, err = decodeRecords([]byte(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Old", records[0].Name)
	assert.True(t, records[0].LastAccessed.After(records[0].CreatedAt.Time))
}

func TestDecodeRecordsCorrupt(t *testing.T) {
	id := uuid.New().String()
	for _, doc := range []string{
		`{not json`,
		`{"id":"x"}`,
		`[{"id":"not-a-uuid"}]`,
		`[{"name":"no id"}]`,
		`[{"id":"` + id + `"},{"id":"` + id + `"}]`,
		`[{"id":"` + id + `","createdAt":1e12}]`,
	} {
		_, err := decodeRecords([]byte(doc))
		assert.ErrorIs(t, err, ErrStorageCorrupt, doc)
	}
}

func TestEncodeRecordsEmpty(t *testing.T) {
	data, err := encodeRecords(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
