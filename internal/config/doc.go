// Package config loads the stash deployment configuration from a TOML
// file (~/.config/stash/config.toml by default, STASH_CONFIG to
// override). It carries the master-secret digest for lockout resets and
// the lockout policy parameters. The file is read once at startup; the
// master secret is never hard-coded and never stored in the vault
// database alongside the records it protects.
package config
