package flows

import "context"

// AuditFunc emits one audit event. metadata is only evaluated when the
// event is actually recorded.
type AuditFunc func(ctx context.Context, event string, success bool, accountNumber, sessionID string, err error, metadata func() map[string]string)

// LockFunc acquires the per-account mutex and returns its release.
type LockFunc func(accountNumber string) (unlock func())

// Deps groups flow dependency sets. The root engine builds this once and
// delegates each request method to the matching flow.
type Deps struct {
	Login    LoginDeps
	Resolve  ResolveDeps
	Recovery RecoveryDeps
	Teller   TellerDeps
	Close    CloseDeps
}

func noopAudit(context.Context, string, bool, string, string, error, func() map[string]string) {}

func noopMetric(int) {}

func noopWarn(string, ...any) {}

func noopLock(string) func() { return func() {} }
