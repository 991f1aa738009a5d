package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goTeller/account"
	"github.com/MrEthical07/goTeller/internal/lockout"
)

// LoginResult is the flow-local view of a freshly issued session.
type LoginResult struct {
	Token         string
	SessionID     string
	AccountNumber string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	Replaced      string
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess   int
	LoginFailure   int
	LoginLocked    int
	AccountLockout int
	SessionCreated int
	SessionReplace int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	LoginSuccess   string
	LoginFailure   string
	LoginLocked    string
	AccountLockout string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	AccountNotFound    error
	AccountLocked      error
	Persistence        error
	SessionUnavailable error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	Lock         LockFunc
	FindAccount  func(number string) (account.Account, error)
	Policy       *lockout.Policy
	VerifySecret func(presented, stored string) (bool, error)

	// IssueSession creates and activates a session, replacing any previous
	// one of the same account in the same store operation.
	IssueSession      func(ctx context.Context, accountNumber string) (*LoginResult, error)
	InvalidateAccount func(ctx context.Context, accountNumber string) error

	MetricInc func(int)
	EmitAudit AuditFunc
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunCanAttempt is the fail-fast policy probe used before prompting for a
// secret. Unknown or malformed numbers report nil.
func RunCanAttempt(number string, deps LoginDeps) error {
	if deps.FindAccount == nil || deps.Policy == nil {
		return deps.Errors.EngineNotReady
	}
	if !account.ValidNumber(number) {
		return nil
	}
	acct, err := deps.FindAccount(number)
	if err != nil {
		return nil
	}
	if !deps.Policy.CanAttempt(acct) {
		return deps.Errors.AccountLocked
	}
	return nil
}

// RunAuthenticate executes one login attempt. A wrong secret and an unknown
// account number return the same error value.
func RunAuthenticate(ctx context.Context, number, secret string, deps LoginDeps) (*LoginResult, error) {
	if deps.Lock == nil {
		deps.Lock = noopLock
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.FindAccount == nil ||
		deps.Policy == nil ||
		deps.VerifySecret == nil ||
		deps.IssueSession == nil ||
		deps.InvalidateAccount == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if !account.ValidNumber(number) {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, "", "", deps.Errors.AccountNotFound, func() map[string]string {
			return map[string]string{"reason": "malformed_number"}
		})
		return nil, deps.Errors.AccountNotFound
	}

	unlock := deps.Lock(number)
	defer unlock()

	acct, err := deps.FindAccount(number)
	if err != nil {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, number, "", deps.Errors.AccountNotFound, func() map[string]string {
			return map[string]string{"reason": "account_not_found"}
		})
		return nil, deps.Errors.AccountNotFound
	}

	if !deps.Policy.CanAttempt(acct) {
		deps.MetricInc(deps.Metrics.LoginLocked)
		deps.EmitAudit(ctx, deps.Events.LoginLocked, false, number, "", deps.Errors.AccountLocked, nil)
		return nil, deps.Errors.AccountLocked
	}

	ok, verr := deps.VerifySecret(secret, acct.Secret)
	secret = ""
	if verr != nil || !ok {
		return nil, recordFailure(ctx, acct, verr, deps)
	}

	if _, err := deps.Policy.RecordSuccess(ctx, acct); err != nil {
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, number, "", err, func() map[string]string {
			return map[string]string{"reason": "persist_failed"}
		})
		return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	result, err := deps.IssueSession(ctx, number)
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, number, "", err, func() map[string]string {
			return map[string]string{"reason": "session_unavailable"}
		})
		return nil, fmt.Errorf("%w: %v", deps.Errors.SessionUnavailable, err)
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.MetricInc(deps.Metrics.SessionCreated)
	if result.Replaced != "" {
		deps.MetricInc(deps.Metrics.SessionReplace)
	}
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, number, result.SessionID, nil, func() map[string]string {
		if result.Replaced == "" {
			return nil
		}
		return map[string]string{"replaced_session": result.Replaced}
	})
	return result, nil
}

func recordFailure(ctx context.Context, acct account.Account, verifyErr error, deps LoginDeps) error {
	_, lockedNow, err := deps.Policy.RecordFailure(ctx, acct)
	if err != nil {
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, acct.Number, "", err, func() map[string]string {
			return map[string]string{"reason": "persist_failed"}
		})
		return fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	if verifyErr != nil {
		deps.Warn("goTeller: stored secret for account could not be verified")
	}

	deps.MetricInc(deps.Metrics.LoginFailure)
	deps.EmitAudit(ctx, deps.Events.LoginFailure, false, acct.Number, "", deps.Errors.AccountNotFound, func() map[string]string {
		return map[string]string{"reason": "secret_mismatch"}
	})

	if lockedNow {
		deps.MetricInc(deps.Metrics.AccountLockout)
		deps.EmitAudit(ctx, deps.Events.AccountLockout, true, acct.Number, "", nil, func() map[string]string {
			return map[string]string{"threshold": fmt.Sprint(deps.Policy.Threshold())}
		})
		if err := deps.InvalidateAccount(ctx, acct.Number); err != nil {
			deps.Warn("goTeller: session invalidation after lockout failed: %v", err)
		}
	}

	return deps.Errors.AccountNotFound
}
