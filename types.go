package goTeller

import (
	"context"
	"io"
	"time"

	"github.com/MrEthical07/goTeller/account"
	internalaudit "github.com/MrEthical07/goTeller/internal/audit"
	"github.com/MrEthical07/goTeller/internal/flows"
)

// Account is a bank account record as seen by callers. Values are copies.
type Account = account.Account

// Customer owns accounts and carries the recovery answers.
type Customer = account.Customer

// AccountStatus is the access state of an account.
type AccountStatus = account.Status

// AccountKind selects savings or checking withdrawal rules.
type AccountKind = account.Kind

const (
	// StatusActive accepts logins.
	StatusActive = account.StatusActive
	// StatusLocked rejects logins until recovery succeeds.
	StatusLocked = account.StatusLocked

	// KindSavings limits withdrawals to the balance.
	KindSavings = account.KindSavings
	// KindChecking allows withdrawals up to the overdraft limit.
	KindChecking = account.KindChecking
)

// Storage is the durable home of account and customer records. Save calls
// are synchronous; the engine commits to memory only after they return nil.
type Storage interface {
	Load(ctx context.Context) ([]Account, []Customer, error)
	SaveAccount(ctx context.Context, a Account) error
	SaveCustomer(ctx context.Context, c Customer) error
	// DeleteAccount removes a closed account. Unknown numbers are a no-op.
	DeleteAccount(ctx context.Context, number string) error
}

// AuthSession is returned by a successful login. Token is the only value
// later operations accept.
type AuthSession struct {
	Token         string
	AccountNumber string
	CreatedAt     time.Time
	// ExpiresAt is zero when sessions do not expire.
	ExpiresAt time.Time
}

// UnlockRequest carries the answers for [Engine.AttemptUnlock], keyed by the
// question ids from [Engine.RecoveryQuestions]. A non-empty NewSecret
// replaces the account secret when the unlock succeeds.
type UnlockRequest struct {
	AccountNumber string
	Answers       map[string]string
	NewSecret     string
}

// Statement is a read-only view of an account's funds and history.
type Statement struct {
	AccountNumber  string
	Kind           AccountKind
	Balance        int64
	OverdraftLimit int64
	Available      int64
	Transactions   []int64
}

// Recovery question ids that every challenge starts with.
const (
	QuestionFullName  = flows.QuestionFullName
	QuestionBirthDate = flows.QuestionBirthDate
)

// AuditEvent is one access-control audit record.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink delivers audit events on a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
