package goTeller

import "errors"

var (
	// ErrAccountNotFound is returned for an unknown account number and, as
	// the very same value, for a wrong secret. Callers cannot tell the two apart.
	ErrAccountNotFound = errors.New("invalid account number or secret")
	// ErrAccountLocked is returned when the account rejects login attempts.
	ErrAccountLocked = errors.New("account locked")
	// ErrInvalidToken is returned for unknown, expired, replaced, or logged-out tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrRecoveryFailed is returned when any recovery answer is missing or wrong.
	ErrRecoveryFailed = errors.New("recovery answers rejected")
	// ErrIntegrity is returned when an operation hit an internal inconsistency.
	// The caller's session has been invalidated.
	ErrIntegrity = errors.New("integrity failure, session ended")
	// ErrPersistence wraps storage failures. In-memory state is unchanged.
	ErrPersistence = errors.New("account state not persisted")
	// ErrAccountNotLocked is returned by recovery calls on an Active account.
	ErrAccountNotLocked = errors.New("account not locked")
	// ErrInvalidAmount is returned for non-positive or overflowing amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds is returned when a withdrawal exceeds the available funds.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceNotZero is returned when closing an account that still holds
	// funds or debt.
	ErrBalanceNotZero = errors.New("account balance is not zero")
	// ErrEngineNotReady is returned by an Engine that was not built by [Builder].
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrSessionUnavailable wraps session backend failures.
	ErrSessionUnavailable = errors.New("session backend unavailable")
)
