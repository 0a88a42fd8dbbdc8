package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.stash"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	return db
}

func TestOpenAndInitialize(t *testing.T) {
	db := openTestStorage(t)

	initialized, err := db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if !initialized {
		t.Error("Database should be initialized")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	db := openTestStorage(t)

	record := &Record{
		ID:        "rec-1",
		Name:      "api-key",
		Envelope:  "s1.dGVzdC10b2tlbg",
		CreatedAt: time.Now().Truncate(time.Second),
	}
	if err := db.PutRecord(record); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	got, err := db.GetRecord("rec-1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got.ID != record.ID || got.Name != record.Name || got.Envelope != record.Envelope {
		t.Errorf("Record mismatch: got %+v, want %+v", got, record)
	}
	if !got.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, record.CreatedAt)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	db := openTestStorage(t)

	if _, err := db.GetRecord("missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteRecord(t *testing.T) {
	db := openTestStorage(t)

	record := &Record{ID: "rec-1", Envelope: "s1.x", CreatedAt: time.Now()}
	if err := db.PutRecord(record); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	if err := db.DeleteRecord("rec-1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, err := db.GetRecord("rec-1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op
	if err := db.DeleteRecord("rec-1"); err != nil {
		t.Errorf("Deleting an absent record should not fail: %v", err)
	}
}

func TestListRecordsSorted(t *testing.T) {
	db := openTestStorage(t)

	base := time.Now()
	for i, id := range []string{"c", "a", "b"} {
		record := &Record{
			ID:        id,
			Name:      "name-" + id,
			Envelope:  "s1.x",
			CreatedAt: base.Add(time.Duration(2-i) * time.Minute),
		}
		if err := db.PutRecord(record); err != nil {
			t.Fatalf("PutRecord failed: %v", err)
		}
	}

	infos, err := db.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(infos))
	}
	// Oldest first: c was created last-minus-2, so order is b, a, c
	want := []string{"b", "a", "c"}
	for i, info := range infos {
		if info.ID != want[i] {
			t.Errorf("Position %d: got %s, want %s", i, info.ID, want[i])
		}
	}
}

func TestListRecordsMetadataOnly(t *testing.T) {
	db := openTestStorage(t)

	record := &Record{ID: "rec-1", Name: "api-key", Envelope: "s1.secret-token", CreatedAt: time.Now()}
	if err := db.PutRecord(record); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	infos, err := db.ListRecords()
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if infos[0].ID != "rec-1" || infos[0].Name != "api-key" {
		t.Errorf("Unexpected metadata: %+v", infos[0])
	}
}

func TestLockoutStateRoundTrip(t *testing.T) {
	db := openTestStorage(t)

	// No state recorded yet
	state, err := db.GetLockout("local")
	if err != nil {
		t.Fatalf("GetLockout failed: %v", err)
	}
	if state != nil {
		t.Errorf("Expected nil state, got %+v", state)
	}

	want := &LockoutState{
		FailedAttempts: 2,
		LockedUntil:    time.Now().Add(5 * time.Minute).Truncate(time.Second),
		LastAttempt:    time.Now().Truncate(time.Second),
	}
	if err := db.PutLockout("local", want); err != nil {
		t.Fatalf("PutLockout failed: %v", err)
	}

	got, err := db.GetLockout("local")
	if err != nil {
		t.Fatalf("GetLockout failed: %v", err)
	}
	if got.FailedAttempts != want.FailedAttempts {
		t.Errorf("FailedAttempts: got %d, want %d", got.FailedAttempts, want.FailedAttempts)
	}
	if !got.LockedUntil.Equal(want.LockedUntil) {
		t.Errorf("LockedUntil: got %v, want %v", got.LockedUntil, want.LockedUntil)
	}

	if err := db.DeleteLockout("local"); err != nil {
		t.Fatalf("DeleteLockout failed: %v", err)
	}
	state, err = db.GetLockout("local")
	if err != nil {
		t.Fatalf("GetLockout failed: %v", err)
	}
	if state != nil {
		t.Errorf("Expected nil state after delete, got %+v", state)
	}
}

func TestLockoutStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.stash")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	lockedUntil := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	if err := db.PutLockout("local", &LockoutState{FailedAttempts: 3, LockedUntil: lockedUntil}); err != nil {
		t.Fatalf("PutLockout failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	state, err := db.GetLockout("local")
	if err != nil {
		t.Fatalf("GetLockout failed: %v", err)
	}
	if state == nil || state.FailedAttempts != 3 || !state.LockedUntil.Equal(lockedUntil) {
		t.Errorf("Lockout state did not survive reopen: %+v", state)
	}
}

func TestVaultID(t *testing.T) {
	db := openTestStorage(t)

	id1, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("GetOrCreateVaultID failed: %v", err)
	}
	if len(id1) != 32 {
		t.Errorf("Expected 32 hex chars, got %d", len(id1))
	}

	id2, err := db.GetOrCreateVaultID()
	if err != nil {
		t.Fatalf("GetOrCreateVaultID failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("Vault ID should be stable: %s != %s", id1, id2)
	}
}

func TestCompact(t *testing.T) {
	db := openTestStorage(t)

	for i := 0; i < 20; i++ {
		record := &Record{
			ID:        string(rune('a' + i)),
			Envelope:  "s1.x",
			CreatedAt: time.Now(),
		}
		if err := db.PutRecord(record); err != nil {
			t.Fatalf("PutRecord failed: %v", err)
		}
	}
	for i := 0; i < 19; i++ {
		if err := db.DeleteRecord(string(rune('a' + i))); err != nil {
			t.Fatalf("DeleteRecord failed: %v", err)
		}
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	// Data still intact after compaction
	count, err := db.CountRecords()
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 record after compact, got %d", count)
	}
}

func TestLockoutStateHelpers(t *testing.T) {
	now := time.Now()

	state := &LockoutState{}
	if state.LockedAt(now) {
		t.Error("Zero LockedUntil should not be locked")
	}
	if state.Remaining(now) != 0 {
		t.Error("Unlocked state should have no remaining time")
	}

	state.LockedUntil = now.Add(time.Minute)
	if !state.LockedAt(now) {
		t.Error("Future LockedUntil should be locked")
	}
	if r := state.Remaining(now); r != time.Minute {
		t.Errorf("Remaining: got %v, want %v", r, time.Minute)
	}

	if state.LockedAt(now.Add(2 * time.Minute)) {
		t.Error("Past LockedUntil should not be locked")
	}
}
