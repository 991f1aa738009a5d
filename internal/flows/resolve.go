package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goTeller/account"
	"github.com/MrEthical07/goTeller/session"
)

// ResolveMetrics carries metric IDs needed by resolution and logout.
type ResolveMetrics struct {
	ResolveSuccess int
	ResolveFailure int
	ZombieRejected int
	Logout         int
	Invalidated    int
}

// ResolveEvents carries audit event names used by resolution and logout.
type ResolveEvents struct {
	ZombieRejected string
	Integrity      string
	Logout         string
	ForcedLogout   string
}

// ResolveErrors carries host-level sentinel errors.
type ResolveErrors struct {
	EngineNotReady     error
	InvalidToken       error
	Integrity          error
	SessionUnavailable error
}

// ResolveDeps captures session resolution dependencies.
type ResolveDeps struct {
	ParseToken    func(token string) (sessionID string, err error)
	GetSession    func(ctx context.Context, sessionID string) (*session.Session, error)
	DeleteSession func(ctx context.Context, sessionID string) (bool, error)
	FindAccount   func(number string) (account.Account, error)

	MetricInc func(int)
	EmitAudit AuditFunc
	Warn      func(string, ...any)

	Metrics ResolveMetrics
	Events  ResolveEvents
	Errors  ResolveErrors
}

// Resolved is a live session together with a copy of its account.
type Resolved struct {
	SessionID string
	Account   account.Account
}

func (d *ResolveDeps) defaults() bool {
	if d.MetricInc == nil {
		d.MetricInc = noopMetric
	}
	if d.EmitAudit == nil {
		d.EmitAudit = noopAudit
	}
	if d.Warn == nil {
		d.Warn = noopWarn
	}
	return d.ParseToken != nil && d.GetSession != nil && d.DeleteSession != nil && d.FindAccount != nil
}

// RunResolveSession maps a token to its live session without touching the
// registry.
func RunResolveSession(ctx context.Context, token string, deps ResolveDeps) (*session.Session, error) {
	if !deps.defaults() {
		return nil, deps.Errors.EngineNotReady
	}

	sid, err := deps.ParseToken(token)
	if err != nil {
		deps.MetricInc(deps.Metrics.ResolveFailure)
		return nil, deps.Errors.InvalidToken
	}

	sess, err := deps.GetSession(ctx, sid)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrCorrupt) || errors.Is(err, session.ErrUnsupportedVersion) {
			deps.MetricInc(deps.Metrics.ResolveFailure)
			return nil, deps.Errors.InvalidToken
		}
		return nil, fmt.Errorf("%w: %v", deps.Errors.SessionUnavailable, err)
	}
	return sess, nil
}

// RunResolve maps a token to a copy of the account it unlocks. A session
// whose account is Locked is invalidated and reported as an invalid token; a
// session whose account is gone is invalidated and reported as an integrity
// failure.
func RunResolve(ctx context.Context, token string, deps ResolveDeps) (*Resolved, error) {
	if !deps.defaults() {
		return nil, deps.Errors.EngineNotReady
	}
	sess, err := RunResolveSession(ctx, token, deps)
	if err != nil {
		return nil, err
	}

	acct, err := deps.FindAccount(sess.AccountNumber)
	if err != nil {
		deps.MetricInc(deps.Metrics.ResolveFailure)
		deps.EmitAudit(ctx, deps.Events.Integrity, false, sess.AccountNumber, sess.SessionID, deps.Errors.Integrity, func() map[string]string {
			return map[string]string{"reason": "account_missing"}
		})
		ForceLogout(ctx, sess.SessionID, sess.AccountNumber, "account_missing", deps)
		return nil, deps.Errors.Integrity
	}

	if acct.Locked() {
		deps.MetricInc(deps.Metrics.ZombieRejected)
		deps.EmitAudit(ctx, deps.Events.ZombieRejected, false, acct.Number, sess.SessionID, deps.Errors.InvalidToken, nil)
		ForceLogout(ctx, sess.SessionID, acct.Number, "account_locked", deps)
		return nil, deps.Errors.InvalidToken
	}

	deps.MetricInc(deps.Metrics.ResolveSuccess)
	return &Resolved{SessionID: sess.SessionID, Account: acct}, nil
}

// RunLogout invalidates the session behind token. Logging out twice
// reports an invalid token the second time.
func RunLogout(ctx context.Context, token string, deps ResolveDeps) error {
	if !deps.defaults() {
		return deps.Errors.EngineNotReady
	}
	sess, err := RunResolveSession(ctx, token, deps)
	if err != nil {
		return err
	}
	removed, err := deps.DeleteSession(ctx, sess.SessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", deps.Errors.SessionUnavailable, err)
	}
	if !removed {
		return deps.Errors.InvalidToken
	}
	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, true, sess.AccountNumber, sess.SessionID, nil, nil)
	return nil
}

// ForceLogout invalidates a session after an integrity or lock condition.
// A failing backend is logged; callers have already decided the outcome.
func ForceLogout(ctx context.Context, sessionID, accountNumber, reason string, deps ResolveDeps) {
	if deps.DeleteSession == nil {
		return
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	removed, err := deps.DeleteSession(ctx, sessionID)
	if err != nil {
		deps.Warn("goTeller: forced logout failed: %v", err)
		return
	}
	if removed {
		deps.MetricInc(deps.Metrics.Invalidated)
	}
	deps.EmitAudit(ctx, deps.Events.ForcedLogout, true, accountNumber, sessionID, nil, func() map[string]string {
		return map[string]string{"reason": reason}
	})
}
