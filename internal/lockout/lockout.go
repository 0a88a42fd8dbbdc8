package lockout

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/illarion/stash/internal/storage"
)

const (
	// DefaultMaxAttempts is the number of failed attempts before lockout.
	DefaultMaxAttempts = 3

	// DefaultDuration is how long a lockout lasts once triggered.
	DefaultDuration = 5 * time.Minute
)

// ErrLocked is returned while a principal's lockout is active. Attempts
// made during the lockout are rejected without consuming an attempt.
var ErrLocked = errors.New("locked out: too many failed attempts")

// Store is the durable backing for lockout state.
type Store interface {
	GetLockout(principal string) (*storage.LockoutState, error)
	PutLockout(principal string, state *storage.LockoutState) error
	DeleteLockout(principal string) error
}

// Guard enforces the failed-attempt lockout policy for decrypt operations.
// State is written through to the store on every transition, so a crash
// cannot leave memory and disk permanently inconsistent, and the policy
// survives restarts.
//
// All state transitions for one principal run under a per-principal mutex:
// two concurrent failing attempts cannot both read a below-threshold
// counter and skip the lockout.
type Guard struct {
	store       Store
	maxAttempts int
	duration    time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// now is replaced in tests
	now func() time.Time
}

// NewGuard creates a Guard over the given store. Non-positive maxAttempts
// or duration fall back to the defaults.
func NewGuard(store Store, maxAttempts int, duration time.Duration) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Guard{
		store:       store,
		maxAttempts: maxAttempts,
		duration:    duration,
		locks:       make(map[string]*sync.Mutex),
		now:         time.Now,
	}
}

// MaxAttempts returns the configured attempt threshold.
func (g *Guard) MaxAttempts() int {
	return g.maxAttempts
}

func (g *Guard) principalLock(principal string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[principal]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[principal] = lock
	}
	return lock
}

// Check returns ErrLocked while the principal's lockout is active. It must
// be called before any key derivation work, so a locked-out caller learns
// nothing about derivation timing. An expired lockout is cleared here and
// the attempt counter reset.
func (g *Guard) Check(principal string) error {
	lock := g.principalLock(principal)
	lock.Lock()
	defer lock.Unlock()

	state, err := g.store.GetLockout(principal)
	if err != nil {
		return fmt.Errorf("failed to read lockout state: %w", err)
	}
	if state == nil {
		return nil
	}

	now := g.now()
	if state.LockedAt(now) {
		return fmt.Errorf("%w (retry in %s)", ErrLocked, state.Remaining(now).Round(time.Second))
	}

	// Lockout expired: clear it and reset the counter
	if !state.LockedUntil.IsZero() {
		if err := g.store.DeleteLockout(principal); err != nil {
			return fmt.Errorf("failed to clear expired lockout: %w", err)
		}
	}
	return nil
}

// RecordFailure records a failed decrypt attempt and returns the number of
// attempts left before lockout. When the threshold is reached the lockout
// timestamp is set and 0 is returned.
func (g *Guard) RecordFailure(principal string) (remaining int, err error) {
	lock := g.principalLock(principal)
	lock.Lock()
	defer lock.Unlock()

	state, err := g.store.GetLockout(principal)
	if err != nil {
		return 0, fmt.Errorf("failed to read lockout state: %w", err)
	}
	if state == nil {
		// Created lazily on the first failed attempt
		state = &storage.LockoutState{}
	}

	now := g.now()

	// An expired lockout means the previous series is over
	if !state.LockedUntil.IsZero() && !state.LockedAt(now) {
		state.FailedAttempts = 0
		state.LockedUntil = time.Time{}
	}

	state.FailedAttempts++
	state.LastAttempt = now

	if state.FailedAttempts >= g.maxAttempts {
		state.LockedUntil = now.Add(g.duration)
		state.LockoutCount++
	}

	if err := g.store.PutLockout(principal, state); err != nil {
		return 0, fmt.Errorf("failed to persist lockout state: %w", err)
	}

	remaining = g.maxAttempts - state.FailedAttempts
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RecordSuccess resets the principal's counter after a successful decrypt.
func (g *Guard) RecordSuccess(principal string) error {
	lock := g.principalLock(principal)
	lock.Lock()
	defer lock.Unlock()

	if err := g.store.DeleteLockout(principal); err != nil {
		return fmt.Errorf("failed to clear lockout state: %w", err)
	}
	return nil
}

// Reset clears the principal's lockout state unconditionally. The caller
// is responsible for authorizing the reset.
func (g *Guard) Reset(principal string) error {
	lock := g.principalLock(principal)
	lock.Lock()
	defer lock.Unlock()

	if err := g.store.DeleteLockout(principal); err != nil {
		return fmt.Errorf("failed to reset lockout state: %w", err)
	}
	return nil
}

// Status returns a copy of the principal's current state, or nil when no
// attempts have been recorded.
func (g *Guard) Status(principal string) (*storage.LockoutState, error) {
	lock := g.principalLock(principal)
	lock.Lock()
	defer lock.Unlock()

	return g.store.GetLockout(principal)
}
