package lockout

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goTeller/account"
)

// DefaultThreshold is the number of consecutive failures that locks an account.
const DefaultThreshold = 3

// Config holds configuration for the lockout policy.
type Config struct {
	Threshold int
}

var (
	// ErrPersistFailed indicates the updated account could not be saved.
	ErrPersistFailed = errors.New("lockout state not persisted")
	// ErrNotReady indicates the policy was built without a persist function.
	ErrNotReady = errors.New("lockout policy not initialized")
)

// PersistFunc durably saves next and commits it to memory. It must leave
// memory untouched when it returns an error.
type PersistFunc func(ctx context.Context, next account.Account) error

// Policy tracks consecutive failed logins on the account record itself and
// locks the account when the threshold is reached.
type Policy struct {
	threshold int
	persist   PersistFunc
}

// New creates a lockout policy. A non-positive threshold falls back to
// [DefaultThreshold].
func New(cfg Config, persist PersistFunc) *Policy {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Policy{threshold: cfg.Threshold, persist: persist}
}

// Threshold returns the configured failure threshold.
func (p *Policy) Threshold() int {
	return p.threshold
}

// CanAttempt reports whether a login attempt may be evaluated for a.
func (p *Policy) CanAttempt(a account.Account) bool {
	return a.Status != account.StatusLocked
}

// RecordFailure increments the failure counter, locking the account when the
// threshold is reached. It returns the committed record and whether this
// call performed the Active to Locked transition.
func (p *Policy) RecordFailure(ctx context.Context, a account.Account) (account.Account, bool, error) {
	next := a.Next()
	next.FailedAttempts++

	lockedNow := false
	if next.FailedAttempts >= p.threshold && next.Status != account.StatusLocked {
		next.Status = account.StatusLocked
		lockedNow = true
	}

	if err := p.save(ctx, next); err != nil {
		return a, false, err
	}
	return next, lockedNow, nil
}

// RecordSuccess resets the failure counter after a correct login. Status is
// left as is. Nothing is written when the counter is already zero.
func (p *Policy) RecordSuccess(ctx context.Context, a account.Account) (account.Account, error) {
	if a.FailedAttempts == 0 {
		return a, nil
	}
	next := a.Next()
	next.FailedAttempts = 0
	if err := p.save(ctx, next); err != nil {
		return a, err
	}
	return next, nil
}

// Unlock resets the counter and reactivates the account. mutate, when not
// nil, is applied to the record before it is saved so extra recovery changes
// commit atomically with the unlock.
func (p *Policy) Unlock(ctx context.Context, a account.Account, mutate func(*account.Account)) (account.Account, error) {
	next := a.Next()
	next.FailedAttempts = 0
	next.Status = account.StatusActive
	if mutate != nil {
		mutate(&next)
	}
	if err := p.save(ctx, next); err != nil {
		return a, err
	}
	return next, nil
}

// Lock moves the account to Locked without touching the counter.
func (p *Policy) Lock(ctx context.Context, a account.Account) (account.Account, error) {
	if a.Status == account.StatusLocked {
		return a, nil
	}
	next := a.Next()
	next.Status = account.StatusLocked
	if err := p.save(ctx, next); err != nil {
		return a, err
	}
	return next, nil
}

func (p *Policy) save(ctx context.Context, next account.Account) error {
	if p.persist == nil {
		return ErrNotReady
	}
	if err := p.persist(ctx, next); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}
