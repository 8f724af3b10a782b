// Package core provides the seedvault operations callers use.
//
// Vault wires the cipher engine to the record store:
//   - Encrypt/Pending/SavePending: encrypt a mnemonic, hold the blob, store it
//   - Decrypt: decrypt any blob with a passphrase
//   - DecryptRecord: decrypt a stored record and update its last access time
//   - Save/Delete/Touch/Rekey: record lifecycle
//   - Records/Refresh: the in-memory view of stored records
//
// Callers are expected to have passed device authentication before calling
// in. Every failure is an *Error with a Kind; a successful empty plaintext is
// never confused with a failure.
package core
