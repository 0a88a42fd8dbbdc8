// Package lockout enforces the brute-force mitigation policy: after a
// configured number of consecutive failed decrypt attempts, a principal
// is locked out for a fixed window and every attempt during the window
// is rejected before any key derivation runs.
//
// Scope is per principal across all records, not per record. A per-record
// counter would hand an attacker a fresh set of free guesses for every
// record in the vault. The CLI uses a single "local" principal.
//
// State persists in the vault database, so the policy holds across
// process restarts.
package lockout
