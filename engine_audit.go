package goTeller

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MrEthical07/goTeller/internal/lockout"
	"github.com/MrEthical07/goTeller/session"
)

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLoginLocked      = "login_locked"
	auditEventAccountLockout   = "account_lockout"
	auditEventAccountLocked    = "account_locked"
	auditEventRecoverySuccess  = "recovery_success"
	auditEventRecoveryFailure  = "recovery_failure"
	auditEventLogout           = "logout"
	auditEventForcedLogout     = "forced_logout"
	auditEventZombieRejected   = "zombie_session_rejected"
	auditEventIntegrityFailure = "integrity_failure"
	auditEventDeposit          = "deposit"
	auditEventWithdraw         = "withdraw"
	auditEventAccountClosed    = "account_closed"
)

// AuditErrorCode is the stable error label written into audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrAccountLocked      AuditErrorCode = "account_locked"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrRecoveryFailed     AuditErrorCode = "recovery_failed"
	auditErrIntegrity          AuditErrorCode = "integrity"
	auditErrPersistence        AuditErrorCode = "persistence"
	auditErrSessionUnavailable AuditErrorCode = "session_unavailable"
	auditErrBalanceNotZero     AuditErrorCode = "balance_not_zero"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountNotFound):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountLocked):
		return auditErrAccountLocked
	case errors.Is(err, ErrInvalidToken):
		return auditErrInvalidToken
	case errors.Is(err, ErrRecoveryFailed):
		return auditErrRecoveryFailed
	case errors.Is(err, ErrIntegrity):
		return auditErrIntegrity
	case errors.Is(err, ErrPersistence), errors.Is(err, lockout.ErrPersistFailed):
		return auditErrPersistence
	case errors.Is(err, ErrSessionUnavailable), errors.Is(err, session.ErrBackendUnavailable):
		return auditErrSessionUnavailable
	case errors.Is(err, ErrBalanceNotZero):
		return auditErrBalanceNotZero
	default:
		return auditErrInternal
	}
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, accountNumber, sessionID string, err error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		ID:            uuid.NewString(),
		Timestamp:     e.now().UTC(),
		EventType:     eventType,
		AccountNumber: accountNumber,
		SessionID:     sessionID,
		Success:       success,
		Error:         string(auditErrorCode(err)),
	}
	if metadata != nil {
		event.Metadata = metadata()
	}
	e.audit.Emit(ctx, event)
}
