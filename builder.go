package goTeller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goTeller/internal/audit"
	"github.com/MrEthical07/goTeller/internal/keylock"
	"github.com/MrEthical07/goTeller/internal/lockout"
	"github.com/MrEthical07/goTeller/registry"
	"github.com/MrEthical07/goTeller/secret"
	"github.com/MrEthical07/goTeller/session"
	"github.com/MrEthical07/goTeller/token"
)

// Builder assembles an [Engine]. A Builder can be used once.
type Builder struct {
	config Config

	storage      Storage
	sessionStore session.Store
	redis        redis.UniversalClient
	auditSink    AuditSink
	verifier     secret.Verifier
	clock        func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStorage sets the durable account store. Required.
func (b *Builder) WithStorage(s Storage) *Builder {
	b.storage = s
	return b
}

// WithSessionStore sets a custom session store. Without one, sessions live
// in process memory unless WithRedis was called.
func (b *Builder) WithSessionStore(s session.Store) *Builder {
	b.sessionStore = s
	return b
}

// WithRedis keeps sessions in Redis under Config.Session.RedisPrefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the audit destination. Auditing also needs
// Config.Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithVerifier overrides secret verification, mainly for tests.
func (b *Builder) WithVerifier(v secret.Verifier) *Builder {
	b.verifier = v
	return b
}

// WithClock overrides the engine time source.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Authenticate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, loads every record from storage into
// the registry and returns a ready engine.
func (b *Builder) Build(ctx context.Context) (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.storage == nil {
		return nil, errors.New("storage required")
	}

	// -------- REGISTRY --------
	accounts, customers, err := b.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	reg := registry.New()
	if err := reg.Load(accounts, customers); err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	store := b.sessionStore
	if store == nil && b.redis != nil {
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	}
	if store == nil {
		mem := session.NewMemoryStore()
		if b.clock != nil {
			mem.SetClock(b.clock)
		}
		store = mem
	}

	tokens, err := token.NewManager(token.Config{
		Key:    cloneBytes(cfg.Token.SigningKey),
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	argon, err := secret.NewArgon2(cfg.Secret.argon2())
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		registry: reg,
		storage:  b.storage,
		sessions: store,
		tokens:   tokens,
		locks:    keylock.New(),
		verifier: b.verifier,
		now:      b.clock,
	}
	if engine.verifier == nil {
		engine.verifier = secret.Auto{Argon: argon}
	}
	if cfg.Secret.HashNewSecrets {
		engine.hasher = argon
	} else {
		engine.hasher = secret.Plain{}
	}
	if engine.now == nil {
		engine.now = time.Now
	}

	engine.policy = lockout.New(lockout.Config{Threshold: cfg.Lockout.Threshold}, engine.commit)
	engine.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.flowDeps = engine.buildFlowDeps()

	b.built = true

	return engine, nil
}
