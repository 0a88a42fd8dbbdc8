package storage

import (
	"time"
)

// Record is a named encrypted entry in the vault. The envelope token is
// immutable once created; re-encrypting produces a new record. Only the
// name may change, via an explicit rename.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Envelope  string    `json:"envelope"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordInfo is the metadata-only view of a record, safe to list without
// a passkey.
type RecordInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Info returns the metadata-only view of the record.
func (r *Record) Info() RecordInfo {
	return RecordInfo{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

// LockoutState tracks failed decrypt attempts for one principal. It is
// persisted so the policy survives process restarts.
type LockoutState struct {
	// FailedAttempts is the number of consecutive failed attempts.
	FailedAttempts int `json:"failed_attempts"`

	// LockedUntil is when the lockout expires. Zero means not locked.
	LockedUntil time.Time `json:"locked_until,omitempty"`

	// LastAttempt is the timestamp of the most recent attempt.
	LastAttempt time.Time `json:"last_attempt,omitempty"`

	// LockoutCount is the total number of lockouts for this principal.
	LockoutCount int `json:"lockout_count,omitempty"`
}

// LockedAt reports whether the state holds an active lock at the given time.
func (s *LockoutState) LockedAt(now time.Time) bool {
	return !s.LockedUntil.IsZero() && now.Before(s.LockedUntil)
}

// Remaining returns the time left on the lock at the given time.
// Returns 0 if not locked or already expired.
func (s *LockoutState) Remaining(now time.Time) time.Duration {
	if !s.LockedAt(now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}
