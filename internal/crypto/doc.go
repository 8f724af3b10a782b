// Package crypto provides cryptographic operations for seedvault.
//
// Engine is the text-level API: Encrypt turns a mnemonic and a passphrase
// into a base64 blob, Decrypt reverses it.
//
// The legacy scheme (default) reads and writes the format of existing
// records:
//   - 32-byte key = SHA-256(passphrase || "THE_VAULT_SALT")
//   - AES-256-GCM with a fixed all-zero 12-byte nonce
//   - blob = base64(nonce || ciphertext || tag)
//
// Identical inputs give identical blobs, and the salt is global. The
// hardened scheme avoids both and must be selected explicitly:
//   - 32-byte key derived via PBKDF2-HMAC-SHA256 with a random 32-byte salt
//   - 12-byte random nonce per encryption operation
//   - blob = "v2$" + base64(iterations || salt || nonce || ciphertext || tag)
//
// Decrypt accepts both formats regardless of the engine's scheme.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Encryptor.Destroy() when done with encryption operations
package crypto
