package goTeller

import (
	"context"
	"log"
	"time"

	"github.com/MrEthical07/goTeller/internal"
	"github.com/MrEthical07/goTeller/internal/audit"
	"github.com/MrEthical07/goTeller/internal/flows"
	"github.com/MrEthical07/goTeller/internal/keylock"
	"github.com/MrEthical07/goTeller/internal/lockout"
	"github.com/MrEthical07/goTeller/registry"
	"github.com/MrEthical07/goTeller/secret"
	"github.com/MrEthical07/goTeller/session"
	"github.com/MrEthical07/goTeller/token"
)

// Engine is the account-access core: login with lockout, token-scoped
// sessions, knowledge-based unlock, and the teller operations that use them.
// Engine is safe for concurrent use; mutations of one account are serialized.
type Engine struct {
	config   Config
	registry *registry.Registry
	storage  Storage
	sessions session.Store
	tokens   *token.Manager
	policy   *lockout.Policy
	locks    *keylock.Map
	verifier secret.Verifier
	hasher   secret.Hasher
	audit    *audit.Dispatcher
	metrics  *Metrics
	now      func() time.Time
	flowDeps flows.Deps
}

// Close flushes pending audit events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricIncInt(id int) {
	e.metricInc(MetricID(id))
}

func (e *Engine) ready() bool {
	return e != nil && e.registry != nil && e.sessions != nil && e.tokens != nil && e.policy != nil
}

// CanAttempt reports ErrAccountLocked for a Locked account and nil
// otherwise, including for numbers that do not exist. Presentation layers
// call it before asking for the secret.
func (e *Engine) CanAttempt(ctx context.Context, accountNumber string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	return flows.RunCanAttempt(accountNumber, e.flowDeps.Login)
}

// Authenticate checks accountNumber and secret and, on success, invalidates
// any earlier session of the account and issues a new one.
//
// An unknown account and a wrong secret both return exactly ErrAccountNotFound.
// A Locked account returns ErrAccountLocked without evaluating the secret.
// Storage failures return ErrPersistence and leave the counter unchanged.
func (e *Engine) Authenticate(ctx context.Context, accountNumber, secret string) (*AuthSession, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	start := e.now()
	res, err := flows.RunAuthenticate(ctx, accountNumber, secret, e.flowDeps.Login)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricAuthenticateLatency, e.now().Sub(start))
	}
	if err != nil {
		return nil, err
	}

	return &AuthSession{
		Token:         res.Token,
		AccountNumber: res.AccountNumber,
		CreatedAt:     res.CreatedAt,
		ExpiresAt:     res.ExpiresAt,
	}, nil
}

// Resolve returns a copy of the account a live token grants access to.
// Stale, replaced, expired or logged-out tokens return ErrInvalidToken.
func (e *Engine) Resolve(ctx context.Context, token string) (Account, error) {
	if !e.ready() {
		return Account{}, ErrEngineNotReady
	}
	res, err := flows.RunResolve(ctx, token, e.flowDeps.Resolve)
	if err != nil {
		return Account{}, err
	}
	return res.Account, nil
}

// Logout invalidates the session behind token.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	return flows.RunLogout(ctx, token, e.flowDeps.Resolve)
}

// LockAccount locks an Active account by operator action and ends its
// session. Locking a Locked account is a no-op.
func (e *Engine) LockAccount(ctx context.Context, accountNumber string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	locked, err := flows.RunLockAccount(ctx, accountNumber, e.flowDeps.Recovery)
	if locked {
		e.metricInc(MetricAccountLocked)
	}
	return err
}

// commit saves next and, only once storage accepted it, makes it the
// in-memory record.
func (e *Engine) commit(ctx context.Context, next Account) error {
	if err := e.storage.SaveAccount(ctx, next); err != nil {
		return err
	}
	e.registry.Put(next)
	return nil
}

func (e *Engine) issueSession(ctx context.Context, accountNumber string) (*flows.LoginResult, error) {
	sid, err := internal.NewSessionID()
	if err != nil {
		return nil, err
	}

	now := e.now()
	ttl := e.config.Session.TTL
	sess := &session.Session{
		SessionID:     sid.String(),
		AccountNumber: accountNumber,
		CreatedAt:     now.Unix(),
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
		sess.ExpiresAt = expiresAt.Unix()
	}

	tok, err := e.tokens.Issue(sess.SessionID, expiresAt)
	if err != nil {
		return nil, err
	}

	replaced, err := e.sessions.Activate(ctx, sess, ttl)
	if err != nil {
		return nil, err
	}

	return &flows.LoginResult{
		Token:         tok,
		SessionID:     sess.SessionID,
		AccountNumber: accountNumber,
		CreatedAt:     now,
		ExpiresAt:     expiresAt,
		Replaced:      replaced,
	}, nil
}

func (e *Engine) invalidateAccount(ctx context.Context, accountNumber string) error {
	removed, err := e.sessions.DeleteForAccount(ctx, accountNumber)
	if err != nil {
		return err
	}
	if removed {
		e.metricInc(MetricSessionInvalidated)
	}
	return nil
}

// deleteAccount removes number from storage and, only once storage accepted
// it, from the registry.
func (e *Engine) deleteAccount(ctx context.Context, number string) error {
	if err := e.storage.DeleteAccount(ctx, number); err != nil {
		return err
	}
	e.registry.Remove(number)
	return nil
}

func (e *Engine) lock(accountNumber string) func() {
	return e.locks.Lock(accountNumber)
}

func (e *Engine) findAccount(number string) (Account, error) {
	return e.registry.Find(number)
}

func (e *Engine) findCustomer(id string) (Customer, error) {
	return e.registry.Customer(id)
}

// parseToken verifies tok and returns its session id. Ids that do not have
// the shape issueSession produces never reach the session store.
func (e *Engine) parseToken(tok string) (string, error) {
	sid, err := e.tokens.Parse(tok)
	if err != nil {
		return "", err
	}
	if _, err := internal.ParseSessionID(sid); err != nil {
		return "", err
	}
	return sid, nil
}

func (e *Engine) getSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return e.sessions.Get(ctx, sessionID)
}

func (e *Engine) deleteSession(ctx context.Context, sessionID string) (bool, error) {
	return e.sessions.Delete(ctx, sessionID)
}

func warn(format string, args ...any) {
	log.Printf(format, args...)
}
