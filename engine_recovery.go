package goTeller

import (
	"context"

	"github.com/MrEthical07/goTeller/internal/flows"
)

// RecoveryQuestions returns the question ids to present for unlocking a
// Locked account: full name, birth date (dd/mm/yyyy), then the customer's
// registered questions in sorted order.
//
// Unknown accounts return ErrAccountNotFound; Active accounts return
// ErrAccountNotLocked.
func (e *Engine) RecoveryQuestions(ctx context.Context, accountNumber string) ([]string, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	return flows.RunRecoveryQuestions(accountNumber, e.flowDeps.Recovery)
}

// AttemptUnlock verifies every recovery answer. On success the account is
// Active with a zero counter, and NewSecret, when set, replaces the stored
// secret in the same write. Any missing or wrong answer returns
// ErrRecoveryFailed and leaves the account untouched.
func (e *Engine) AttemptUnlock(ctx context.Context, req UnlockRequest) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	return flows.RunAttemptUnlock(ctx, flows.UnlockInput{
		AccountNumber: req.AccountNumber,
		Answers:       req.Answers,
		NewSecret:     req.NewSecret,
	}, e.flowDeps.Recovery)
}
