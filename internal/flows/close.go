package flows

import (
	"context"
	"fmt"
)

// CloseMetrics carries metric IDs needed by account closure.
type CloseMetrics struct {
	Closed   int
	Rejected int
}

// CloseEvents carries audit event names used by account closure.
type CloseEvents struct {
	Closed string
}

// CloseErrors carries host-level sentinel errors used by account closure.
type CloseErrors struct {
	EngineNotReady  error
	AccountNotFound error
	BalanceNotZero  error
	Persistence     error
}

// CloseDeps captures account closure dependencies. A wrong secret is
// recorded through Login exactly like a failed login.
type CloseDeps struct {
	Login   LoginDeps
	Resolve ResolveDeps

	// Delete removes the account from storage and, once storage accepted
	// it, from memory.
	Delete func(ctx context.Context, number string) error

	Metrics CloseMetrics
	Events  CloseEvents
	Errors  CloseErrors
}

func (d *CloseDeps) defaults() bool {
	if d.Login.Lock == nil {
		d.Login.Lock = noopLock
	}
	if d.Login.MetricInc == nil {
		d.Login.MetricInc = noopMetric
	}
	if d.Login.EmitAudit == nil {
		d.Login.EmitAudit = noopAudit
	}
	if d.Login.Warn == nil {
		d.Login.Warn = noopWarn
	}
	return d.Delete != nil &&
		d.Login.Policy != nil &&
		d.Login.VerifySecret != nil &&
		d.Login.InvalidateAccount != nil
}

// RunCloseAccount permanently removes the account behind token after the
// secret is confirmed. Only a zero balance can be closed; the session ends
// with the account.
func RunCloseAccount(ctx context.Context, token, secret string, deps CloseDeps) error {
	if !deps.defaults() {
		return deps.Errors.EngineNotReady
	}
	sess, err := RunResolveSession(ctx, token, deps.Resolve)
	if err != nil {
		return err
	}

	unlock := deps.Login.Lock(sess.AccountNumber)
	defer unlock()

	res, err := RunResolve(ctx, token, deps.Resolve)
	if err != nil {
		return err
	}
	acct := res.Account

	ok, verr := deps.Login.VerifySecret(secret, acct.Secret)
	secret = ""
	if verr != nil || !ok {
		deps.Login.MetricInc(deps.Metrics.Rejected)
		return recordFailure(ctx, acct, verr, deps.Login)
	}

	if acct.Balance != 0 {
		deps.Login.MetricInc(deps.Metrics.Rejected)
		deps.Login.EmitAudit(ctx, deps.Events.Closed, false, acct.Number, res.SessionID, deps.Errors.BalanceNotZero, nil)
		return deps.Errors.BalanceNotZero
	}

	if err := deps.Delete(ctx, acct.Number); err != nil {
		deps.Login.MetricInc(deps.Metrics.Rejected)
		deps.Login.EmitAudit(ctx, deps.Events.Closed, false, acct.Number, res.SessionID, err, func() map[string]string {
			return map[string]string{"reason": "persist_failed"}
		})
		return fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	// A session that outlives this call resolves to a missing account and
	// is ended there as an integrity failure.
	if err := deps.Login.InvalidateAccount(ctx, acct.Number); err != nil {
		deps.Login.Warn("goTeller: session invalidation after close failed: %v", err)
	}

	deps.Login.MetricInc(deps.Metrics.Closed)
	deps.Login.EmitAudit(ctx, deps.Events.Closed, true, acct.Number, res.SessionID, nil, nil)
	return nil
}
