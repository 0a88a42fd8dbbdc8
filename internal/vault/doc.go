// Package vault provides the main stash operations.
//
// Core operations:
//   - Store: seal plaintext under a passkey into a new record
//   - Retrieve: open a record's envelope, gated by the lockout policy
//   - List/Status: metadata views, no passkey required
//   - Delete/Rename: record lifecycle
//   - ResetLockout: master-secret-gated administrative clear
//   - Diff: compare a decrypted record against local content
//
// The vault is the policy boundary: envelope failures are translated here
// into wrong-passkey or locked-out results per the attempt state machine,
// and every decrypt failure leaves the record store untouched. Plaintext
// only ever exists transiently in memory during seal and open.
package vault
