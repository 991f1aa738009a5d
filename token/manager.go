package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minKeyBytes = 32

var (
	// ErrInvalid is returned for any token that fails signature, claim, or shape checks.
	ErrInvalid = errors.New("invalid token")
)

// Config configures token signing. An empty Key makes [NewManager] generate a
// random process-local key, so tokens do not survive a restart.
type Config struct {
	Key    []byte
	Issuer string
	Leeway time.Duration
}

// Manager issues and parses HS256 tokens that carry only a session id.
type Manager struct {
	key    []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// Claims is the token payload. Account data never appears in a token.
type Claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a signing manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	key := cfg.Key
	if len(key) == 0 {
		key = make([]byte, minKeyBytes)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, err
		}
	}
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("hs256 key must be at least %d bytes", minKeyBytes)
	}

	return &Manager{
		key:    append([]byte(nil), key...),
		issuer: strings.TrimSpace(cfg.Issuer),
		leeway: cfg.Leeway,
		now:    time.Now,
	}, nil
}

// Issue signs a token for sid. A zero expiresAt issues a token without exp.
func (m *Manager) Issue(sid string, expiresAt time.Time) (string, error) {
	if sid == "" {
		return "", errors.New("empty session id")
	}

	now := m.now()
	claims := Claims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   m.issuer,
		},
	}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// Parse verifies the signature and registered claims and returns the session id.
func (m *Manager) Parse(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalid
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.leeway > 0 {
		options = append(options, jwt.WithLeeway(m.leeway))
	}
	if m.issuer != "" {
		options = append(options, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.key, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SID == "" {
		return "", ErrInvalid
	}
	return claims.SID, nil
}
