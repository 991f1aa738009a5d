package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown, deleted, or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrBackendUnavailable wraps failures of the underlying session backend.
	ErrBackendUnavailable = errors.New("session backend unavailable")
)

// Store persists live sessions. Implementations guarantee that at most one
// session per account is live: Activate atomically replaces the previous one.
type Store interface {
	// Activate makes sess the only live session of sess.AccountNumber and
	// returns the id of the session it replaced, or "".
	Activate(ctx context.Context, sess *Session, ttl time.Duration) (string, error)
	// Get returns the live session for sessionID or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*Session, error)
	// Delete invalidates one session. It reports whether a live session was removed.
	Delete(ctx context.Context, sessionID string) (bool, error)
	// DeleteForAccount invalidates the live session of an account, if any.
	DeleteForAccount(ctx context.Context, accountNumber string) (bool, error)
}

// MemoryStore is the in-process [Store] used by the single-process simulator.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]Session
	byAccount map[string]string
	now       func() time.Time
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]Session),
		byAccount: make(map[string]string),
		now:       time.Now,
	}
}

// SetClock overrides the time source; used by expiry tests.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) Activate(_ context.Context, sess *Session, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := m.byAccount[sess.AccountNumber]
	if replaced != "" {
		delete(m.sessions, replaced)
	}
	m.sessions[sess.SessionID] = *sess
	m.byAccount[sess.AccountNumber] = sess.SessionID
	if replaced == sess.SessionID {
		replaced = ""
	}
	return replaced, nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Expired(m.now().Unix()) {
		m.removeLocked(sess)
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return false, nil
	}
	m.removeLocked(sess)
	return true, nil
}

func (m *MemoryStore) DeleteForAccount(_ context.Context, accountNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sid, ok := m.byAccount[accountNumber]
	if !ok {
		return false, nil
	}
	delete(m.byAccount, accountNumber)
	delete(m.sessions, sid)
	return true, nil
}

func (m *MemoryStore) removeLocked(sess Session) {
	delete(m.sessions, sess.SessionID)
	if m.byAccount[sess.AccountNumber] == sess.SessionID {
		delete(m.byAccount, sess.AccountNumber)
	}
}
