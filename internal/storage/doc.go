// Package storage provides the BBolt database interface for the vault.
//
// Database structure uses three buckets:
//   - config: vault id, format version, timestamps (unencrypted)
//   - records: envelope tokens plus id/name/timestamp metadata
//   - lockout: per-principal failed-attempt state
//
// Record names and timestamps are stored in the clear so that stash ls
// and stash status work without a passkey. The secret itself only ever
// appears inside the envelope token.
//
// Lockout state lives here rather than in process memory so the policy
// survives restarts.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
