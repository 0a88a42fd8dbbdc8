package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/illarion/stash/internal/config"
	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/envelope"
	"github.com/illarion/stash/internal/lockout"
	"github.com/illarion/stash/internal/storage"
)

const (
	// StashFile is the vault database filename in the working directory.
	StashFile = ".stash"

	// DefaultPrincipal is the lockout principal used by the single-user CLI.
	DefaultPrincipal = "local"
)

var (
	ErrNotInitialized  = errors.New("stash not initialized")
	ErrAlreadyExists   = errors.New("stash already exists")
	ErrNotFound        = errors.New("record not found")
	ErrWrongPasskey    = errors.New("wrong passkey")
	ErrEmptyPasskey    = errors.New("passkey must not be empty")
	ErrNoMasterSecret  = errors.New("master secret not configured")
	ErrBadMasterSecret = errors.New("authentication failed")

	// ErrLockedOut is returned while a lockout is in effect. Retrieval is
	// rejected before any key derivation runs.
	ErrLockedOut = lockout.ErrLocked
)

// PasskeyError reports a failed decrypt attempt along with the number of
// attempts left before lockout. It unwraps to ErrWrongPasskey.
type PasskeyError struct {
	Remaining int
}

func (e *PasskeyError) Error() string {
	if e.Remaining == 0 {
		return "wrong passkey: locked out"
	}
	return fmt.Sprintf("wrong passkey: %d attempts remaining", e.Remaining)
}

func (e *PasskeyError) Unwrap() error {
	return ErrWrongPasskey
}

// Vault is the policy boundary over the record store: it seals and opens
// records through the envelope format and gates every decrypt behind the
// lockout guard.
type Vault struct {
	path  string
	db    *storage.Storage
	guard *lockout.Guard
	cfg   *config.Config
}

// Create initializes a new vault database in dir. Fails with
// ErrAlreadyExists if one is present.
func Create(dir string) error {
	path := filepath.Join(dir, StashFile)
	if _, err := os.Stat(path); err == nil {
		return ErrAlreadyExists
	}

	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if _, err := db.GetOrCreateVaultID(); err != nil {
		return fmt.Errorf("failed to assign vault id: %w", err)
	}
	return nil
}

// Open opens an existing vault in dir with the given deployment config.
// The caller must Close the vault when done.
func Open(dir string, cfg *config.Config) (*Vault, error) {
	path := filepath.Join(dir, StashFile)
	if _, err := os.Stat(path); err != nil {
		return nil, ErrNotInitialized
	}

	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	initialized, err := db.IsInitialized()
	if err != nil || !initialized {
		db.Close()
		return nil, ErrNotInitialized
	}

	if cfg == nil {
		cfg = config.Default()
	}

	return &Vault{
		path:  path,
		db:    db,
		guard: lockout.NewGuard(db, cfg.MaxAttempts, cfg.LockoutDuration()),
		cfg:   cfg,
	}, nil
}

// Close releases the vault database.
func (v *Vault) Close() error {
	return v.db.Close()
}

// Path returns the vault database file path.
func (v *Vault) Path() string {
	return v.path
}

// VaultID returns the stable vault identifier, creating one if needed.
func (v *Vault) VaultID() (string, error) {
	return v.db.GetOrCreateVaultID()
}

// Store seals plaintext under the passkey and persists a new record,
// returning its id. The plaintext is never written to disk; only the
// envelope token is stored. The record is durable when Store returns.
func (v *Vault) Store(ctx context.Context, plaintext, passkey []byte, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(passkey) == 0 {
		return "", ErrEmptyPasskey
	}

	token, err := envelope.Seal(plaintext, passkey)
	if err != nil {
		return "", fmt.Errorf("failed to seal record: %w", err)
	}

	record := &storage.Record{
		ID:        uuid.NewString(),
		Name:      name,
		Envelope:  token,
		CreatedAt: time.Now(),
	}
	if err := v.db.PutRecord(record); err != nil {
		return "", fmt.Errorf("failed to store record: %w", err)
	}
	if err := v.db.UpdateModified(); err != nil {
		return "", fmt.Errorf("failed to update modification time: %w", err)
	}

	return record.ID, nil
}

// Retrieve opens the record's envelope with the passkey and returns the
// plaintext. The sequence per the lockout policy:
//
//  1. An active lockout for the principal rejects the call immediately,
//     before any record lookup or key derivation (ErrLockedOut).
//  2. An unknown id fails with ErrNotFound.
//  3. A failed open counts against the principal and may trigger the
//     lockout; the caller gets a PasskeyError wrapping ErrWrongPasskey.
//  4. Success resets the principal's counter to zero.
//
// The caller owns the returned plaintext and should ClearBytes it when done.
func (v *Vault) Retrieve(ctx context.Context, id string, passkey []byte, principal string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if principal == "" {
		principal = DefaultPrincipal
	}
	if len(passkey) == 0 {
		return nil, ErrEmptyPasskey
	}

	if err := v.guard.Check(principal); err != nil {
		return nil, err
	}

	record, err := v.db.GetRecord(id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	plaintext, err := envelope.Open(record.Envelope, passkey)
	if err != nil {
		remaining, gerr := v.guard.RecordFailure(principal)
		if gerr != nil {
			return nil, gerr
		}
		return nil, &PasskeyError{Remaining: remaining}
	}

	if err := v.guard.RecordSuccess(principal); err != nil {
		crypto.ClearBytes(plaintext)
		return nil, err
	}

	return plaintext, nil
}

// Resolve maps a record reference to a record id. A ref matching an
// existing id wins; otherwise a unique name match is accepted. Touches
// metadata only, so no passkey is needed and the lockout state is not
// consulted.
func (v *Vault) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ok, err := v.db.HasRecord(ref)
	if err != nil {
		return "", fmt.Errorf("failed to read record: %w", err)
	}
	if ok {
		return ref, nil
	}

	infos, err := v.db.ListRecords()
	if err != nil {
		return "", fmt.Errorf("failed to list records: %w", err)
	}
	match := ""
	for _, info := range infos {
		if info.Name != ref {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("name %q is ambiguous, use the record id", ref)
		}
		match = info.ID
	}
	if match == "" {
		return "", ErrNotFound
	}
	return match, nil
}

// List returns metadata for all records, oldest first. No passkey is
// required and no plaintext is touched.
func (v *Vault) List(ctx context.Context) ([]storage.RecordInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := v.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return infos, nil
}

// Delete removes the record. Deleting an unknown id is a no-op, so Delete
// is idempotent.
func (v *Vault) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := v.db.DeleteRecord(id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return v.db.UpdateModified()
}

// Rename changes a record's name. The name is a human label only, never a
// security input; the envelope is untouched.
func (v *Vault) Rename(ctx context.Context, id, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record, err := v.db.GetRecord(id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read record: %w", err)
	}

	record.Name = name
	if err := v.db.PutRecord(record); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return v.db.UpdateModified()
}

// ResetLockout clears the principal's lockout state. It requires the
// deployment master secret, which is verified in constant time against
// the configured digest and is never related to any record passkey.
// A wrong secret fails with ErrBadMasterSecret.
func (v *Vault) ResetLockout(ctx context.Context, masterSecret []byte, principal string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if principal == "" {
		principal = DefaultPrincipal
	}
	if !v.cfg.HasMasterSecret() {
		return ErrNoMasterSecret
	}

	digest := sha256.Sum256(masterSecret)
	supplied := hex.EncodeToString(digest[:])
	if !crypto.ConstantTimeCompare([]byte(supplied), []byte(v.cfg.MasterSecretSHA256)) {
		return ErrBadMasterSecret
	}

	return v.guard.Reset(principal)
}

// LockoutStatus returns the principal's current lockout state, or nil
// when no failed attempts are recorded.
func (v *Vault) LockoutStatus(principal string) (*storage.LockoutState, error) {
	if principal == "" {
		principal = DefaultPrincipal
	}
	return v.guard.Status(principal)
}

// Compact rewrites the vault database to reclaim space left by deleted
// records.
func (v *Vault) Compact() error {
	return v.db.Compact()
}
