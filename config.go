package goTeller

import (
	"errors"
	"time"

	"github.com/MrEthical07/goTeller/internal/lockout"
	"github.com/MrEthical07/goTeller/secret"
)

// Config is the complete engine configuration. Start from [DefaultConfig].
type Config struct {
	Lockout LockoutConfig
	Session SessionConfig
	Token   TokenConfig
	Secret  SecretConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig controls progressive lockout.
type LockoutConfig struct {
	// Threshold is the number of consecutive wrong secrets that locks an account.
	Threshold int
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session lifetime and the Redis key namespace.
type SessionConfig struct {
	// TTL bounds a session's lifetime. Zero disables expiry.
	TTL         time.Duration
	RedisPrefix string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls token signing. An empty SigningKey selects a random
// key per process.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
SECRET CONFIG
====================================
*/

// SecretConfig controls secret verification and how replacement secrets
// are stored.
type SecretConfig struct {
	// HashNewSecrets stores secrets set through recovery as argon2id hashes.
	HashNewSecrets bool
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	argon := secret.DefaultArgon2Config()
	return Config{
		Lockout: LockoutConfig{
			Threshold: lockout.DefaultThreshold,
		},
		Session: SessionConfig{
			TTL:         15 * time.Minute,
			RedisPrefix: "gt",
		},
		Token: TokenConfig{
			Issuer: "goTeller",
		},
		Secret: SecretConfig{
			HashNewSecrets: false,
			Memory:         argon.Memory,
			Time:           argon.Time,
			Parallelism:    argon.Parallelism,
			SaltLength:     argon.SaltLength,
			KeyLength:      argon.KeyLength,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.SigningKey = cloneBytes(cfg.Token.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (c SecretConfig) argon2() secret.Argon2Config {
	return secret.Argon2Config{
		Memory:      c.Memory,
		Time:        c.Time,
		Parallelism: c.Parallelism,
		SaltLength:  c.SaltLength,
		KeyLength:   c.KeyLength,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	// Lockout
	if c.Lockout.Threshold <= 0 {
		return errors.New("Lockout Threshold must be > 0")
	}

	// Session
	if c.Session.TTL < 0 {
		return errors.New("Session TTL must be >= 0")
	}
	if c.Session.TTL > 0 && c.Session.TTL < time.Second {
		return errors.New("Session TTL must be at least one second")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}

	// Token
	if len(c.Token.SigningKey) > 0 && len(c.Token.SigningKey) < 32 {
		return errors.New("Token SigningKey must be at least 32 bytes")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Secret
	if c.Secret.HashNewSecrets {
		if _, err := secret.NewArgon2(c.Secret.argon2()); err != nil {
			return err
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}
