package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// referenceEpoch is 2001-01-01T00:00:00Z, the zero point of Apple's
// JSONEncoder default date encoding.
var referenceEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxReferenceSeconds is the largest offset a time.Duration can hold.
const maxReferenceSeconds = float64(math.MaxInt64 / int64(time.Second))

// Record is one named encrypted mnemonic. Ciphertext is opaque to this
// package; it is produced and consumed only by the crypto engine.
type Record struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Ciphertext   string    `json:"encryptedData"`
	CreatedAt    Timestamp `json:"createdAt"`
	LastAccessed Timestamp `json:"lastAccessed"`
}

// NewRecord creates a record with a fresh ID and both timestamps set to now.
func NewRecord(name, ciphertext string) Record {
	now := Timestamp{time.Now().UTC()}
	return Record{
		ID:           uuid.New(),
		Name:         name,
		Ciphertext:   ciphertext,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

// Timestamp encodes as RFC 3339 and decodes from either RFC 3339 or a
// number of seconds since referenceEpoch.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed.UTC()
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	if math.IsNaN(secs) || math.Abs(secs) > maxReferenceSeconds {
		return fmt.Errorf("%w: timestamp %s out of range", ErrStorageCorrupt, data)
	}
	whole, frac := math.Modf(secs)
	t.Time = referenceEpoch.Add(time.Duration(whole) * time.Second).
		Add(time.Duration(frac * float64(time.Second)))
	return nil
}

// decodeRecords parses the persisted document. A missing or empty value is
// an empty store; anything unparsable is ErrStorageCorrupt.
func decodeRecords(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}

	seen := make(map[uuid.UUID]struct{}, len(records))
	for _, r := range records {
		if r.ID == uuid.Nil {
			return nil, fmt.Errorf("%w: record without id", ErrStorageCorrupt)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrStorageCorrupt, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return records, nil
}

func encodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
