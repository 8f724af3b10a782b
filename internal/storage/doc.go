// Package storage persists encrypted mnemonic records for seedvault.
//
// All records live in one JSON array written under a single key
// (PreferenceKey) of a Backend. Writes replace the whole array; there is no
// per-record granularity. Store serializes read-modify-write cycles with a
// mutex.
//
// Backends:
//   - Bolt: BBolt file with a config bucket (version, timestamps) and a
//     preferences bucket. BBolt provides ACID transactions and file locking.
//   - SQLite: a single preferences table (modernc.org/sqlite, no cgo).
//   - Memory: in-process map for tests.
//
// The OS keyring backend lives in package keyring.
package storage
