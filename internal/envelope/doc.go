// Package envelope implements the portable ciphertext token format.
//
// A token is a single line of text carrying everything needed to decrypt
// it with the right passkey: format version, KDF salt, nonce, ciphertext
// and authentication tag. Tokens have no dependency on process-local
// state, so any process sharing the vault file can open them.
//
// Open deliberately reports every failure as ErrAuthFailed. A caller (or
// an attacker) cannot tell a wrong passkey from a corrupted token.
package envelope
