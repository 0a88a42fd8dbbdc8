package vault

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/illarion/stash/internal/config"
	"github.com/illarion/stash/internal/storage"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	dir := t.TempDir()
	if err := Create(dir); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cfg := config.Default()
	cfg.SetMasterSecret([]byte("deploy-master-secret"))

	v, err := Open(dir, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestCreateTwice(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := Create(dir); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestOpenUninitialized(t *testing.T) {
	if _, err := Open(t.TempDir(), nil); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestStoreAndRetrieve(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("top-secret-note"), []byte("Secur3P@sskey2023!"), "api-key")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if id == "" {
		t.Fatal("Store returned an empty id")
	}

	plaintext, err := v.Retrieve(ctx, id, []byte("Secur3P@sskey2023!"), "")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !bytes.Equal(plaintext, []byte("top-secret-note")) {
		t.Errorf("Got %q, want %q", plaintext, "top-secret-note")
	}
}

func TestStoreEmptyPasskey(t *testing.T) {
	v := newTestVault(t)

	if _, err := v.Store(context.Background(), []byte("data"), nil, ""); !errors.Is(err, ErrEmptyPasskey) {
		t.Errorf("Expected ErrEmptyPasskey, got %v", err)
	}
}

func TestStoreIsRandomized(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id1, err := v.Store(ctx, []byte("same"), []byte("passkey"), "")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	id2, err := v.Store(ctx, []byte("same"), []byte("passkey"), "")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	r1, err := v.db.GetRecord(id1)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	r2, err := v.db.GetRecord(id2)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if r1.Envelope == r2.Envelope {
		t.Error("Two records sealing the same plaintext should have different envelopes")
	}
}

func TestRetrieveNotFound(t *testing.T) {
	v := newTestVault(t)

	if _, err := v.Retrieve(context.Background(), "no-such-id", []byte("passkey"), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteThenRetrieve(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("secret"), []byte("passkey"), "")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := v.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := v.Retrieve(ctx, id, []byte("passkey"), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// Delete is idempotent
	if err := v.Delete(ctx, id); err != nil {
		t.Errorf("Second delete should be a no-op: %v", err)
	}
}

func TestWrongPasskeyCountsDown(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("secret"), []byte("right"), "")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	_, err = v.Retrieve(ctx, id, []byte("wrong"), "")
	var perr *PasskeyError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PasskeyError, got %v", err)
	}
	if perr.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", perr.Remaining)
	}
	if !errors.Is(err, ErrWrongPasskey) {
		t.Error("PasskeyError should unwrap to ErrWrongPasskey")
	}

	// A success resets the counter
	if _, err := v.Retrieve(ctx, id, []byte("right"), ""); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	state, err := v.LockoutStatus("")
	if err != nil {
		t.Fatalf("LockoutStatus failed: %v", err)
	}
	if state != nil {
		t.Errorf("Expected cleared state after success, got %+v", state)
	}
}

func TestLockoutAfterThreeFailures(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("top-secret-note"), []byte("Secur3P@sskey2023!"), "api-key")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := v.Retrieve(ctx, id, []byte("wrong-pass"), ""); !errors.Is(err, ErrWrongPasskey) {
			t.Fatalf("Attempt %d: expected ErrWrongPasskey, got %v", i+1, err)
		}
	}

	// The fourth attempt fails even with the correct passkey
	if _, err := v.Retrieve(ctx, id, []byte("Secur3P@sskey2023!"), ""); !errors.Is(err, ErrLockedOut) {
		t.Errorf("Expected ErrLockedOut, got %v", err)
	}

	// Locked-out attempts do not consume attempts
	state, err := v.LockoutStatus("")
	if err != nil {
		t.Fatalf("LockoutStatus failed: %v", err)
	}
	if state == nil || state.FailedAttempts != 3 {
		t.Errorf("Expected 3 recorded failures, got %+v", state)
	}
}

func TestLockoutExpiry(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("secret"), []byte("right"), "")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		v.Retrieve(ctx, id, []byte("wrong"), "")
	}
	if _, err := v.Retrieve(ctx, id, []byte("right"), ""); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("Expected ErrLockedOut, got %v", err)
	}

	// Simulate the lockout window elapsing
	expired := &storage.LockoutState{
		FailedAttempts: 3,
		LockedUntil:    time.Now().Add(-time.Second),
	}
	if err := v.db.PutLockout(DefaultPrincipal, expired); err != nil {
		t.Fatalf("PutLockout failed: %v", err)
	}

	plaintext, err := v.Retrieve(ctx, id, []byte("right"), "")
	if err != nil {
		t.Fatalf("Retrieve after expiry failed: %v", err)
	}
	if !bytes.Equal(plaintext, []byte("secret")) {
		t.Errorf("Got %q, want %q", plaintext, "secret")
	}

	state, err := v.LockoutStatus("")
	if err != nil {
		t.Fatalf("LockoutStatus failed: %v", err)
	}
	if state != nil {
		t.Errorf("Counter should reset after expiry, got %+v", state)
	}
}

func TestLockoutSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	cfg := config.Default()

	v, err := Open(dir, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("secret"), []byte("right"), "")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		v.Retrieve(ctx, id, []byte("wrong"), "")
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	v, err = Open(dir, cfg)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer v.Close()

	if _, err := v.Retrieve(ctx, id, []byte("right"), ""); !errors.Is(err, ErrLockedOut) {
		t.Errorf("Lockout should survive a restart, got %v", err)
	}
}

func TestResetLockout(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("secret"), []byte("right"), "")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		v.Retrieve(ctx, id, []byte("wrong"), "")
	}
	if _, err := v.Retrieve(ctx, id, []byte("right"), ""); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("Expected ErrLockedOut, got %v", err)
	}

	// Wrong master secret is rejected
	if err := v.ResetLockout(ctx, []byte("not-the-secret"), ""); !errors.Is(err, ErrBadMasterSecret) {
		t.Errorf("Expected ErrBadMasterSecret, got %v", err)
	}
	if _, err := v.Retrieve(ctx, id, []byte("right"), ""); !errors.Is(err, ErrLockedOut) {
		t.Errorf("Failed reset should leave the lockout in place: %v", err)
	}

	// Correct master secret clears the lockout
	if err := v.ResetLockout(ctx, []byte("deploy-master-secret"), ""); err != nil {
		t.Fatalf("ResetLockout failed: %v", err)
	}
	plaintext, err := v.Retrieve(ctx, id, []byte("right"), "")
	if err != nil {
		t.Fatalf("Retrieve after reset failed: %v", err)
	}
	if !bytes.Equal(plaintext, []byte("secret")) {
		t.Errorf("Got %q, want %q", plaintext, "secret")
	}
}

func TestResetLockoutUnconfigured(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	v, err := Open(dir, config.Default())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer v.Close()

	if err := v.ResetLockout(context.Background(), []byte("anything"), ""); !errors.Is(err, ErrNoMasterSecret) {
		t.Errorf("Expected ErrNoMasterSecret, got %v", err)
	}
}

func TestListMetadataOnly(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id1, err := v.Store(ctx, []byte("one"), []byte("passkey"), "first")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, err := v.Store(ctx, []byte("two"), []byte("passkey"), "second"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	infos, err := v.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(infos))
	}
	if infos[0].ID != id1 || infos[0].Name != "first" {
		t.Errorf("Unexpected first record: %+v", infos[0])
	}
	if infos[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestResolve(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id1, err := v.Store(ctx, []byte("one"), []byte("passkey"), "api-token")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, err := v.Store(ctx, []byte("two"), []byte("passkey"), "dup"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if _, err := v.Store(ctx, []byte("three"), []byte("passkey"), "dup"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// By id
	if got, err := v.Resolve(ctx, id1); err != nil || got != id1 {
		t.Errorf("Resolve(id) = %q, %v; want %q", got, err, id1)
	}
	// By unique name
	if got, err := v.Resolve(ctx, "api-token"); err != nil || got != id1 {
		t.Errorf("Resolve(name) = %q, %v; want %q", got, err, id1)
	}
	// Ambiguous name is an error, not a guess
	if _, err := v.Resolve(ctx, "dup"); err == nil {
		t.Error("Expected error for ambiguous name")
	}
	if _, err := v.Resolve(ctx, "no-such"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRename(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	id, err := v.Store(ctx, []byte("secret"), []byte("passkey"), "old-name")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	before, err := v.db.GetRecord(id)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}

	if err := v.Rename(ctx, id, "new-name"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	after, err := v.db.GetRecord(id)
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if after.Name != "new-name" {
		t.Errorf("Name = %q, want %q", after.Name, "new-name")
	}
	// Rename never touches the ciphertext
	if after.Envelope != before.Envelope {
		t.Error("Rename must not modify the envelope")
	}

	if err := v.Rename(ctx, "no-such-id", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if _, err := v.Store(ctx, []byte("secret"), []byte("passkey"), "api-key"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	status, err := v.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.RecordCount != 1 {
		t.Errorf("RecordCount = %d, want 1", status.RecordCount)
	}
	if status.Algorithm != "AES-256-GCM" {
		t.Errorf("Algorithm = %q", status.Algorithm)
	}
	if status.KDFIterations < 100000 {
		t.Errorf("KDFIterations = %d, want >= 100000", status.KDFIterations)
	}
	if status.FileSize == 0 {
		t.Error("FileSize should be non-zero")
	}
}

func TestCanceledContext(t *testing.T) {
	v := newTestVault(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := v.Store(ctx, []byte("x"), []byte("passkey"), ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, err := v.Retrieve(ctx, "id", []byte("passkey"), ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
