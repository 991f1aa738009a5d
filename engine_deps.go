package goTeller

import "github.com/MrEthical07/goTeller/internal/flows"

func (e *Engine) buildFlowDeps() flows.Deps {
	resolve := flows.ResolveDeps{
		ParseToken:    e.parseToken,
		GetSession:    e.getSession,
		DeleteSession: e.deleteSession,
		FindAccount:   e.findAccount,
		MetricInc:     e.metricIncInt,
		EmitAudit:     e.emitAudit,
		Warn:          warn,
		Metrics: flows.ResolveMetrics{
			ResolveSuccess: int(MetricResolveSuccess),
			ResolveFailure: int(MetricResolveFailure),
			ZombieRejected: int(MetricZombieRejected),
			Logout:         int(MetricLogout),
			Invalidated:    int(MetricSessionInvalidated),
		},
		Events: flows.ResolveEvents{
			ZombieRejected: auditEventZombieRejected,
			Integrity:      auditEventIntegrityFailure,
			Logout:         auditEventLogout,
			ForcedLogout:   auditEventForcedLogout,
		},
		Errors: flows.ResolveErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidToken:       ErrInvalidToken,
			Integrity:          ErrIntegrity,
			SessionUnavailable: ErrSessionUnavailable,
		},
	}

	deps := flows.Deps{
		Login: flows.LoginDeps{
			Lock:              e.lock,
			FindAccount:       e.findAccount,
			Policy:            e.policy,
			VerifySecret:      e.verifier.Verify,
			IssueSession:      e.issueSession,
			InvalidateAccount: e.invalidateAccount,
			MetricInc:         e.metricIncInt,
			EmitAudit:         e.emitAudit,
			Warn:              warn,
			Metrics: flows.LoginMetrics{
				LoginSuccess:   int(MetricLoginSuccess),
				LoginFailure:   int(MetricLoginFailure),
				LoginLocked:    int(MetricLoginLocked),
				AccountLockout: int(MetricAccountLockout),
				SessionCreated: int(MetricSessionCreated),
				SessionReplace: int(MetricSessionReplaced),
			},
			Events: flows.LoginEvents{
				LoginSuccess:   auditEventLoginSuccess,
				LoginFailure:   auditEventLoginFailure,
				LoginLocked:    auditEventLoginLocked,
				AccountLockout: auditEventAccountLockout,
			},
			Errors: flows.LoginErrors{
				EngineNotReady:     ErrEngineNotReady,
				AccountNotFound:    ErrAccountNotFound,
				AccountLocked:      ErrAccountLocked,
				Persistence:        ErrPersistence,
				SessionUnavailable: ErrSessionUnavailable,
			},
		},
		Resolve: resolve,
		Recovery: flows.RecoveryDeps{
			Lock:              e.lock,
			FindAccount:       e.findAccount,
			FindCustomer:      e.findCustomer,
			Policy:            e.policy,
			HashSecret:        e.hasher.Hash,
			InvalidateAccount: e.invalidateAccount,
			MetricInc:         e.metricIncInt,
			EmitAudit:         e.emitAudit,
			Warn:              warn,
			Metrics: flows.RecoveryMetrics{
				RecoverySuccess: int(MetricRecoverySuccess),
				RecoveryFailure: int(MetricRecoveryFailure),
			},
			Events: flows.RecoveryEvents{
				RecoverySuccess: auditEventRecoverySuccess,
				RecoveryFailure: auditEventRecoveryFailure,
				AccountLocked:   auditEventAccountLocked,
			},
			Errors: flows.RecoveryErrors{
				EngineNotReady:     ErrEngineNotReady,
				AccountNotFound:    ErrAccountNotFound,
				AccountNotLocked:   ErrAccountNotLocked,
				RecoveryFailed:     ErrRecoveryFailed,
				Persistence:        ErrPersistence,
				Integrity:          ErrIntegrity,
				SessionUnavailable: ErrSessionUnavailable,
			},
		},
		Teller: flows.TellerDeps{
			Lock:      e.lock,
			Resolve:   resolve,
			Persist:   e.commit,
			MetricInc: e.metricIncInt,
			EmitAudit: e.emitAudit,
			Metrics: flows.TellerMetrics{
				Deposit:   int(MetricDeposit),
				Withdraw:  int(MetricWithdraw),
				Statement: int(MetricStatement),
				Rejected:  int(MetricTellerRejected),
				Integrity: int(MetricIntegrityFailure),
			},
			Events: flows.TellerEvents{
				Deposit:  auditEventDeposit,
				Withdraw: auditEventWithdraw,
			},
			Errors: flows.TellerErrors{
				EngineNotReady:    ErrEngineNotReady,
				InvalidAmount:     ErrInvalidAmount,
				InsufficientFunds: ErrInsufficientFunds,
				Persistence:       ErrPersistence,
				Integrity:         ErrIntegrity,
			},
		},
	}
	deps.Close = flows.CloseDeps{
		Login:   deps.Login,
		Resolve: resolve,
		Delete:  e.deleteAccount,
		Metrics: flows.CloseMetrics{
			Closed:   int(MetricAccountClosed),
			Rejected: int(MetricTellerRejected),
		},
		Events: flows.CloseEvents{
			Closed: auditEventAccountClosed,
		},
		Errors: flows.CloseErrors{
			EngineNotReady:  ErrEngineNotReady,
			AccountNotFound: ErrAccountNotFound,
			BalanceNotZero:  ErrBalanceNotZero,
			Persistence:     ErrPersistence,
		},
	}
	return deps
}
