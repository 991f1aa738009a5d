package internaldefs

import (
	goTeller "github.com/MrEthical07/goTeller"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   goTeller.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   goTeller.MetricID
	Name string
	Help string
}

// AuditDroppedName is the exported name of the audit backpressure counter.
const AuditDroppedName = "goteller_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: goTeller.MetricLoginSuccess, Name: "goteller_login_success_total", Help: "Logins that issued a session."},
	{ID: goTeller.MetricLoginFailure, Name: "goteller_login_failure_total", Help: "Rejected logins (unknown account or wrong secret)."},
	{ID: goTeller.MetricLoginLocked, Name: "goteller_login_locked_total", Help: "Login attempts rejected because the account is locked."},
	{ID: goTeller.MetricAccountLockout, Name: "goteller_account_lockout_total", Help: "Accounts locked by the failure threshold."},
	{ID: goTeller.MetricSessionCreated, Name: "goteller_session_created_total", Help: "Created sessions."},
	{ID: goTeller.MetricSessionReplaced, Name: "goteller_session_replaced_total", Help: "Sessions replaced by a newer login."},
	{ID: goTeller.MetricSessionInvalidated, Name: "goteller_session_invalidated_total", Help: "Sessions ended by lock or forced logout."},
	{ID: goTeller.MetricResolveSuccess, Name: "goteller_resolve_success_total", Help: "Tokens resolved to an account."},
	{ID: goTeller.MetricResolveFailure, Name: "goteller_resolve_failure_total", Help: "Tokens that failed to resolve."},
	{ID: goTeller.MetricZombieRejected, Name: "goteller_zombie_rejected_total", Help: "Live sessions refused because their account is locked."},
	{ID: goTeller.MetricLogout, Name: "goteller_logout_total", Help: "Explicit logouts."},
	{ID: goTeller.MetricRecoverySuccess, Name: "goteller_recovery_success_total", Help: "Successful account unlocks."},
	{ID: goTeller.MetricRecoveryFailure, Name: "goteller_recovery_failure_total", Help: "Rejected unlock attempts."},
	{ID: goTeller.MetricAccountLocked, Name: "goteller_account_locked_total", Help: "Operator account locks."},
	{ID: goTeller.MetricDeposit, Name: "goteller_deposit_total", Help: "Committed deposits."},
	{ID: goTeller.MetricWithdraw, Name: "goteller_withdraw_total", Help: "Committed withdrawals."},
	{ID: goTeller.MetricStatement, Name: "goteller_statement_total", Help: "Statements served."},
	{ID: goTeller.MetricTellerRejected, Name: "goteller_teller_rejected_total", Help: "Teller operations that did not commit."},
	{ID: goTeller.MetricIntegrityFailure, Name: "goteller_integrity_failure_total", Help: "Integrity failures recovered by forced logout."},
	{ID: goTeller.MetricAccountClosed, Name: "goteller_account_closed_total", Help: "Accounts closed by their owner."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goTeller.MetricAuthenticateLatency, Name: "goteller_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the Prometheus le labels of the eight buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are metric-name-safe forms of [HistogramBounds].
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to exactly eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
