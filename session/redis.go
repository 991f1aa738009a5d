package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const activateSessionScript = `
local previous = redis.call("GET", KEYS[2])
if previous and previous ~= ARGV[1] then
  redis.call("DEL", ARGV[3] .. previous)
end
local ttl = tonumber(ARGV[4])
if ttl > 0 then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ttl)
  redis.call("SET", KEYS[2], ARGV[1], "PX", ttl)
else
  redis.call("SET", KEYS[1], ARGV[2])
  redis.call("SET", KEYS[2], ARGV[1])
end
if previous and previous ~= ARGV[1] then
  return previous
end
return ""
`

var activateSessionLua = redis.NewScript(activateSessionScript)

const deleteSessionScript = `
local existed = redis.call("DEL", KEYS[1])
if redis.call("GET", KEYS[2]) == ARGV[1] then
  redis.call("DEL", KEYS[2])
end
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

const deleteAccountSessionScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
redis.call("DEL", KEYS[1])
return redis.call("DEL", ARGV[1] .. current)
`

var deleteAccountSessionLua = redis.NewScript(deleteAccountSessionScript)

// RedisStore is a Redis-backed [Store]. Each live session is one key
// holding the encoded [Session]; a second key per account points at the
// live session id so replacement is a single atomic script.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a session store under the given key prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gt"
	}
	return &RedisStore{redis: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) sessionPrefix() string {
	return s.prefix + ":s:"
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.sessionPrefix() + sessionID
}

func (s *RedisStore) accountKey(accountNumber string) string {
	return s.prefix + ":a:" + accountNumber
}

func (s *RedisStore) Activate(ctx context.Context, sess *Session, ttl time.Duration) (string, error) {
	data, err := Encode(sess)
	if err != nil {
		return "", err
	}

	replaced, err := activateSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.sessionKey(sess.SessionID), s.accountKey(sess.AccountNumber)},
		sess.SessionID,
		data,
		s.sessionPrefix(),
		ttl.Milliseconds(),
	).Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return replaced, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		if _, delErr := s.Delete(ctx, sessionID); delErr != nil {
			return nil, errors.Join(err, delErr)
		}
		return nil, err
	}
	sess.SessionID = sessionID

	if sess.Expired(s.now().Unix()) {
		if _, err := s.delete(ctx, sessionID, sess.AccountNumber); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	data, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	accountNumber := ""
	if sess, err := Decode(data); err == nil {
		accountNumber = sess.AccountNumber
	}
	return s.delete(ctx, sessionID, accountNumber)
}

func (s *RedisStore) delete(ctx context.Context, sessionID, accountNumber string) (bool, error) {
	removed, err := deleteSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.sessionKey(sessionID), s.accountKey(accountNumber)},
		sessionID,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return removed == 1, nil
}

func (s *RedisStore) DeleteForAccount(ctx context.Context, accountNumber string) (bool, error) {
	removed, err := deleteAccountSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.accountKey(accountNumber)},
		s.sessionPrefix(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return removed == 1, nil
}
